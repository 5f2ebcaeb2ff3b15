// Package benchmark compares wireforge's fixed-width wire format against
// Protocol Buffers and JSON on the same two message shapes, giving
// pkg/pirdata and pkg/codegen consumers a concrete baseline for what the
// PIR's layout decisions (spec.md §3 Size/Offset, no per-field tag
// framing) buy over a self-describing format.
package benchmark

import (
	"encoding/json"
	"testing"

	pb "github.com/blockberries/wireforge/benchmark/gen/protobuf"
	wf "github.com/blockberries/wireforge/benchmark/gen/wireforge"
	"google.golang.org/protobuf/proto"
)

// ============================================================================
// Test data
// ============================================================================

func makeWireforgeSmallMessage() *wf.SmallMessage {
	return &wf.SmallMessage{Id: 12345, Name: "test-item", Active: true}
}

func makeProtobufSmallMessage() proto.Message {
	return pb.NewSmallMessage(12345, "test-item", true)
}

type jsonSmallMessage struct {
	Id     int64  `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

func makeJSONSmallMessage() *jsonSmallMessage {
	return &jsonSmallMessage{Id: 12345, Name: "test-item", Active: true}
}

func makeWireforgeMetrics() *wf.Metrics {
	return &wf.Metrics{
		Count:      1000000,
		Sum:        12345678.90,
		Min:        0.001,
		Max:        99999.99,
		Avg:        12345.67,
		P50:        10000.0,
		P95:        50000.0,
		P99:        90000.0,
		TotalBytes: 1073741824,
		ErrorCount: 42,
	}
}

func makeProtobufMetrics() proto.Message {
	return pb.NewMetrics(1000000, 12345678.90, 0.001, 99999.99, 12345.67, 10000.0, 50000.0, 90000.0, 1073741824, 42)
}

type jsonMetrics struct {
	Count      int64   `json:"count"`
	Sum        float64 `json:"sum"`
	Min        float64 `json:"min"`
	Max        float64 `json:"max"`
	Avg        float64 `json:"avg"`
	P50        float64 `json:"p50"`
	P95        float64 `json:"p95"`
	P99        float64 `json:"p99"`
	TotalBytes int64   `json:"total_bytes"`
	ErrorCount int32   `json:"error_count"`
}

func makeJSONMetrics() *jsonMetrics {
	return &jsonMetrics{
		Count:      1000000,
		Sum:        12345678.90,
		Min:        0.001,
		Max:        99999.99,
		Avg:        12345.67,
		P50:        10000.0,
		P95:        50000.0,
		P99:        90000.0,
		TotalBytes: 1073741824,
		ErrorCount: 42,
	}
}

// ============================================================================
// Benchmarks - Small Message (variable-length field present)
// ============================================================================

func BenchmarkSmallMessage_Wireforge_Encode(b *testing.B) {
	msg := makeWireforgeSmallMessage()
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = msg.MarshalWireforge()
	}
}

func BenchmarkSmallMessage_Wireforge_Decode(b *testing.B) {
	msg := makeWireforgeSmallMessage()
	data, _ := msg.MarshalWireforge()
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		var result wf.SmallMessage
		_ = result.UnmarshalWireforge(data)
	}
}

func BenchmarkSmallMessage_Protobuf_Encode(b *testing.B) {
	msg := makeProtobufSmallMessage()
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = proto.Marshal(msg)
	}
}

func BenchmarkSmallMessage_Protobuf_Decode(b *testing.B) {
	msg := makeProtobufSmallMessage()
	data, _ := proto.Marshal(msg)
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		result := pb.NewEmptySmallMessage()
		_ = proto.Unmarshal(data, result)
	}
}

func BenchmarkSmallMessage_JSON_Encode(b *testing.B) {
	msg := makeJSONSmallMessage()
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = json.Marshal(msg)
	}
}

func BenchmarkSmallMessage_JSON_Decode(b *testing.B) {
	msg := makeJSONSmallMessage()
	data, _ := json.Marshal(msg)
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		var result jsonSmallMessage
		_ = json.Unmarshal(data, &result)
	}
}

// ============================================================================
// Benchmarks - Metrics (scalar-heavy, no variable-length fields)
// ============================================================================

func BenchmarkMetrics_Wireforge_Encode(b *testing.B) {
	msg := makeWireforgeMetrics()
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = msg.MarshalWireforge()
	}
}

func BenchmarkMetrics_Wireforge_Decode(b *testing.B) {
	msg := makeWireforgeMetrics()
	data, _ := msg.MarshalWireforge()
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		var result wf.Metrics
		_ = result.UnmarshalWireforge(data)
	}
}

func BenchmarkMetrics_Protobuf_Encode(b *testing.B) {
	msg := makeProtobufMetrics()
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = proto.Marshal(msg)
	}
}

func BenchmarkMetrics_Protobuf_Decode(b *testing.B) {
	msg := makeProtobufMetrics()
	data, _ := proto.Marshal(msg)
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		result := pb.NewEmptyMetrics()
		_ = proto.Unmarshal(data, result)
	}
}

func BenchmarkMetrics_JSON_Encode(b *testing.B) {
	msg := makeJSONMetrics()
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = json.Marshal(msg)
	}
}

func BenchmarkMetrics_JSON_Decode(b *testing.B) {
	msg := makeJSONMetrics()
	data, _ := json.Marshal(msg)
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		var result jsonMetrics
		_ = json.Unmarshal(data, &result)
	}
}

// ============================================================================
// Encoded size comparison
// ============================================================================

func TestEncodedSizes(t *testing.T) {
	tests := []struct {
		name      string
		wireforge func() ([]byte, error)
		protobuf  proto.Message
		json      any
	}{
		{
			name:      "SmallMessage",
			wireforge: func() ([]byte, error) { return makeWireforgeSmallMessage().MarshalWireforge() },
			protobuf:  makeProtobufSmallMessage(),
			json:      makeJSONSmallMessage(),
		},
		{
			name:      "Metrics",
			wireforge: func() ([]byte, error) { return makeWireforgeMetrics().MarshalWireforge() },
			protobuf:  makeProtobufMetrics(),
			json:      makeJSONMetrics(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wfBytes, err := tt.wireforge()
			if err != nil {
				t.Fatalf("%s: wireforge encode failed: %v", tt.name, err)
			}
			pbBytes, err := proto.Marshal(tt.protobuf)
			if err != nil {
				t.Fatalf("%s: protobuf encode failed: %v", tt.name, err)
			}
			jsonBytes, err := json.Marshal(tt.json)
			if err != nil {
				t.Fatalf("%s: json encode failed: %v", tt.name, err)
			}

			t.Logf("%s: wireforge=%d bytes, protobuf=%d bytes, json=%d bytes",
				tt.name, len(wfBytes), len(pbBytes), len(jsonBytes))
		})
	}
}
