// Package protobuf is the benchmark's protobuf competitor. Rather than
// shipping protoc-generated .pb.go output (which this module has no way to
// regenerate without invoking protoc), it builds the same two message
// shapes as benchmark/gen/wireforge directly from a FileDescriptorProto and
// wraps them with dynamicpb, so google.golang.org/protobuf/proto.Marshal
// and Unmarshal run against a real, reflection-backed protobuf message.
package protobuf

import (
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/dynamicpb"
)

func strPtr(s string) *string { return &s }
func i32Ptr(i int32) *int32   { return &i }

func label() *descriptorpb.FieldDescriptorProto_Label {
	l := descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL
	return &l
}

func fieldType(t descriptorpb.FieldDescriptorProto_Type) *descriptorpb.FieldDescriptorProto_Type {
	return &t
}

func field(name string, num int32, t descriptorpb.FieldDescriptorProto_Type) *descriptorpb.FieldDescriptorProto {
	return &descriptorpb.FieldDescriptorProto{
		Name:     strPtr(name),
		Number:   i32Ptr(num),
		Label:    label(),
		Type:     fieldType(t),
		JsonName: strPtr(name),
	}
}

var (
	smallMessageDesc protoreflect.MessageDescriptor
	metricsDesc      protoreflect.MessageDescriptor
)

func init() {
	fdProto := &descriptorpb.FileDescriptorProto{
		Name:    strPtr("benchmark.proto"),
		Package: strPtr("benchmark"),
		Syntax:  strPtr("proto3"),
		MessageType: []*descriptorpb.DescriptorProto{
			{
				Name: strPtr("SmallMessage"),
				Field: []*descriptorpb.FieldDescriptorProto{
					field("id", 1, descriptorpb.FieldDescriptorProto_TYPE_INT64),
					field("name", 2, descriptorpb.FieldDescriptorProto_TYPE_STRING),
					field("active", 3, descriptorpb.FieldDescriptorProto_TYPE_BOOL),
				},
			},
			{
				Name: strPtr("Metrics"),
				Field: []*descriptorpb.FieldDescriptorProto{
					field("count", 1, descriptorpb.FieldDescriptorProto_TYPE_INT64),
					field("sum", 2, descriptorpb.FieldDescriptorProto_TYPE_DOUBLE),
					field("min", 3, descriptorpb.FieldDescriptorProto_TYPE_DOUBLE),
					field("max", 4, descriptorpb.FieldDescriptorProto_TYPE_DOUBLE),
					field("avg", 5, descriptorpb.FieldDescriptorProto_TYPE_DOUBLE),
					field("p50", 6, descriptorpb.FieldDescriptorProto_TYPE_DOUBLE),
					field("p95", 7, descriptorpb.FieldDescriptorProto_TYPE_DOUBLE),
					field("p99", 8, descriptorpb.FieldDescriptorProto_TYPE_DOUBLE),
					field("total_bytes", 9, descriptorpb.FieldDescriptorProto_TYPE_INT64),
					field("error_count", 10, descriptorpb.FieldDescriptorProto_TYPE_INT32),
				},
			},
		},
	}

	fd, err := protodesc.NewFile(fdProto, protoregistry.GlobalFiles)
	if err != nil {
		panic("benchmark/gen/protobuf: building file descriptor: " + err.Error())
	}
	smallMessageDesc = fd.Messages().ByName("SmallMessage")
	metricsDesc = fd.Messages().ByName("Metrics")
}

// NewSmallMessage builds a dynamicpb message equivalent to
// wireforge.SmallMessage, ready for proto.Marshal/proto.Unmarshal.
func NewSmallMessage(id int64, name string, active bool) *dynamicpb.Message {
	m := dynamicpb.NewMessage(smallMessageDesc)
	fields := smallMessageDesc.Fields()
	m.Set(fields.ByName("id"), protoreflect.ValueOfInt64(id))
	m.Set(fields.ByName("name"), protoreflect.ValueOfString(name))
	m.Set(fields.ByName("active"), protoreflect.ValueOfBool(active))
	return m
}

// NewMetrics builds a dynamicpb message equivalent to wireforge.Metrics.
func NewMetrics(count int64, sum, min, max, avg, p50, p95, p99 float64, totalBytes int64, errorCount int32) *dynamicpb.Message {
	m := dynamicpb.NewMessage(metricsDesc)
	fields := metricsDesc.Fields()
	m.Set(fields.ByName("count"), protoreflect.ValueOfInt64(count))
	m.Set(fields.ByName("sum"), protoreflect.ValueOfFloat64(sum))
	m.Set(fields.ByName("min"), protoreflect.ValueOfFloat64(min))
	m.Set(fields.ByName("max"), protoreflect.ValueOfFloat64(max))
	m.Set(fields.ByName("avg"), protoreflect.ValueOfFloat64(avg))
	m.Set(fields.ByName("p50"), protoreflect.ValueOfFloat64(p50))
	m.Set(fields.ByName("p95"), protoreflect.ValueOfFloat64(p95))
	m.Set(fields.ByName("p99"), protoreflect.ValueOfFloat64(p99))
	m.Set(fields.ByName("total_bytes"), protoreflect.ValueOfInt64(totalBytes))
	m.Set(fields.ByName("error_count"), protoreflect.ValueOfInt32(errorCount))
	return m
}

// NewEmptySmallMessage returns a zero-valued message of the right
// descriptor, for proto.Unmarshal to decode into.
func NewEmptySmallMessage() *dynamicpb.Message { return dynamicpb.NewMessage(smallMessageDesc) }

// NewEmptyMetrics returns a zero-valued message of the right descriptor,
// for proto.Unmarshal to decode into.
func NewEmptyMetrics() *dynamicpb.Message { return dynamicpb.NewMessage(metricsDesc) }
