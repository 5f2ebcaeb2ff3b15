// Package wireforge holds the benchmark's stand-in for wireforge-compiled
// code: structs and Marshal/Unmarshal methods written by hand in exactly
// the shape pkg/codegen's Go backend emits (fixed-width fields via
// internal/wire, a u32le length prefix for the one variable-length field),
// so the benchmark has a real wire-format competitor without needing the
// compiler invoked as part of the build.
package wireforge

import (
	"fmt"

	"github.com/blockberries/wireforge/internal/wire"
)

// SmallMessage mirrors a tiny three-field protocol: an id, a name, and a
// flag — the baseline shape every format comparison starts from.
type SmallMessage struct {
	Id     int64
	Name   string
	Active bool
}

func (m *SmallMessage) MarshalWireforge() ([]byte, error) {
	buf := make([]byte, 0, 13+len(m.Name))
	buf = wire.AppendUint64LE(buf, uint64(m.Id))
	buf = wire.AppendUint32LE(buf, uint32(len(m.Name)))
	buf = append(buf, m.Name...)
	active := uint8(0)
	if m.Active {
		active = 1
	}
	buf = wire.AppendUint8(buf, active)
	return buf, nil
}

func (m *SmallMessage) UnmarshalWireforge(data []byte) error {
	_, err := m.decodeFrom(data)
	return err
}

func (m *SmallMessage) decodeFrom(data []byte) (int, error) {
	total := 0
	rest := data

	{
		v, err := wire.DecodeUint64LE(rest)
		if err != nil {
			return total, err
		}
		m.Id = int64(v)
		rest = rest[wire.Width64:]
		total += wire.Width64
	}
	{
		n, err := wire.DecodeUint32LE(rest)
		if err != nil {
			return total, err
		}
		rest = rest[wire.Width32:]
		total += wire.Width32
		if int(n) > len(rest) {
			return total, fmt.Errorf("wireforge: SmallMessage.Name: truncated: need %d bytes, have %d", n, len(rest))
		}
		m.Name = string(rest[:n])
		rest = rest[n:]
		total += int(n)
	}
	{
		v, err := wire.DecodeUint8(rest)
		if err != nil {
			return total, err
		}
		m.Active = v != 0
		total += wire.Width8
	}
	return total, nil
}

// Metrics is a scalar-heavy message — no variable-length fields, every
// byte is a fixed-width int or float — to show the format comparison at
// its most favorable for binary encodings.
type Metrics struct {
	Count      int64
	Sum        float64
	Min        float64
	Max        float64
	Avg        float64
	P50        float64
	P95        float64
	P99        float64
	TotalBytes int64
	ErrorCount int32
}

func (m *Metrics) MarshalWireforge() ([]byte, error) {
	buf := make([]byte, 0, 76)
	buf = wire.AppendUint64LE(buf, uint64(m.Count))
	buf = wire.AppendFloat64(buf, m.Sum, false)
	buf = wire.AppendFloat64(buf, m.Min, false)
	buf = wire.AppendFloat64(buf, m.Max, false)
	buf = wire.AppendFloat64(buf, m.Avg, false)
	buf = wire.AppendFloat64(buf, m.P50, false)
	buf = wire.AppendFloat64(buf, m.P95, false)
	buf = wire.AppendFloat64(buf, m.P99, false)
	buf = wire.AppendUint64LE(buf, uint64(m.TotalBytes))
	buf = wire.AppendUint32LE(buf, uint32(m.ErrorCount))
	return buf, nil
}

func (m *Metrics) UnmarshalWireforge(data []byte) error {
	_, err := m.decodeFrom(data)
	return err
}

func (m *Metrics) decodeFrom(data []byte) (int, error) {
	total := 0
	rest := data

	readU64 := func() (int64, error) {
		v, err := wire.DecodeUint64LE(rest)
		if err != nil {
			return 0, err
		}
		rest = rest[wire.Width64:]
		total += wire.Width64
		return int64(v), nil
	}
	readF64 := func() (float64, error) {
		v, err := wire.DecodeFloat64(rest, false)
		if err != nil {
			return 0, err
		}
		rest = rest[wire.Width64:]
		total += wire.Width64
		return v, nil
	}

	var err error
	if m.Count, err = readU64(); err != nil {
		return total, err
	}
	if m.Sum, err = readF64(); err != nil {
		return total, err
	}
	if m.Min, err = readF64(); err != nil {
		return total, err
	}
	if m.Max, err = readF64(); err != nil {
		return total, err
	}
	if m.Avg, err = readF64(); err != nil {
		return total, err
	}
	if m.P50, err = readF64(); err != nil {
		return total, err
	}
	if m.P95, err = readF64(); err != nil {
		return total, err
	}
	if m.P99, err = readF64(); err != nil {
		return total, err
	}
	if m.TotalBytes, err = readU64(); err != nil {
		return total, err
	}
	v, err := wire.DecodeUint32LE(rest)
	if err != nil {
		return total, err
	}
	m.ErrorCount = int32(v)
	total += wire.Width32
	return total, nil
}
