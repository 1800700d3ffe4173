package i3s

import (
	"encoding/binary"
	"fmt"
	"math"
)

var (
	byteOrder = binary.LittleEndian
)

// ValueType is the I3S scalar type name used by geometry schemas.
type ValueType string

const (
	UInt8   ValueType = "UInt8"
	UInt16  ValueType = "UInt16"
	UInt32  ValueType = "UInt32"
	UInt64  ValueType = "UInt64"
	Int8    ValueType = "Int8"
	Int16   ValueType = "Int16"
	Int32   ValueType = "Int32"
	Float32 ValueType = "Float32"
	Float64 ValueType = "Float64"
)

// GLType is the WebGL component type tag carried by a NormalizedAttribute.
type GLType uint32

const (
	GL_BYTE           GLType = 5120
	GL_UNSIGNED_BYTE  GLType = 5121
	GL_SHORT          GLType = 5122
	GL_UNSIGNED_SHORT GLType = 5123
	GL_INT            GLType = 5124
	GL_UNSIGNED_INT   GLType = 5125
	GL_FLOAT          GLType = 5126
	GL_DOUBLE         GLType = 5130
)

var glTypeMap = map[ValueType]GLType{
	UInt8:   GL_UNSIGNED_BYTE,
	UInt16:  GL_UNSIGNED_SHORT,
	UInt32:  GL_UNSIGNED_INT,
	UInt64:  GL_UNSIGNED_INT,
	Int8:    GL_BYTE,
	Int16:   GL_SHORT,
	Int32:   GL_INT,
	Float32: GL_FLOAT,
	Float64: GL_DOUBLE,
}

// GLTypeOf returns the GL component type for vt, or 0 if vt is unknown.
func GLTypeOf(vt ValueType) GLType {
	return glTypeMap[vt]
}

// SizeOf returns the byte size of one element of vt, or 0 if unknown.
func SizeOf(vt ValueType) int {
	switch vt {
	case UInt8, Int8:
		return 1
	case UInt16, Int16:
		return 2
	case UInt32, Int32, Float32:
		return 4
	case UInt64, Float64:
		return 8
	default:
		return 0
	}
}

// Array is a read-only view over a typed numeric array.
type Array interface {
	Len() int
	Float64(i int) float64
}

type Uint8Array []uint8
type Uint16Array []uint16
type Uint32Array []uint32
type Int8Array []int8
type Int16Array []int16
type Int32Array []int32
type Float32Array []float32
type Float64Array []float64

func (a Uint8Array) Len() int { return len(a) }

func (a Uint8Array) Float64(i int) float64 { return float64(a[i]) }

func (a Uint16Array) Len() int { return len(a) }

func (a Uint16Array) Float64(i int) float64 { return float64(a[i]) }

func (a Uint32Array) Len() int { return len(a) }

func (a Uint32Array) Float64(i int) float64 { return float64(a[i]) }

func (a Int8Array) Len() int { return len(a) }

func (a Int8Array) Float64(i int) float64 { return float64(a[i]) }

func (a Int16Array) Len() int { return len(a) }

func (a Int16Array) Float64(i int) float64 { return float64(a[i]) }

func (a Int32Array) Len() int { return len(a) }

func (a Int32Array) Float64(i int) float64 { return float64(a[i]) }

func (a Float32Array) Len() int { return len(a) }

func (a Float32Array) Float64(i int) float64 { return float64(a[i]) }

func (a Float64Array) Len() int { return len(a) }

func (a Float64Array) Float64(i int) float64 { return a[i] }

// decodeArray interprets the first n elements of buf as vt values.
// The caller guarantees len(buf) >= n*SizeOf(vt).
func decodeArray(vt ValueType, buf []byte, n int) (Array, error) {
	switch vt {
	case UInt8:
		out := make(Uint8Array, n)
		copy(out, buf[:n])
		return out, nil
	case Int8:
		out := make(Int8Array, n)
		for i := range out {
			out[i] = int8(buf[i])
		}
		return out, nil
	case UInt16:
		out := make(Uint16Array, n)
		for i := range out {
			out[i] = byteOrder.Uint16(buf[i*2:])
		}
		return out, nil
	case Int16:
		out := make(Int16Array, n)
		for i := range out {
			out[i] = int16(byteOrder.Uint16(buf[i*2:]))
		}
		return out, nil
	case UInt32:
		out := make(Uint32Array, n)
		for i := range out {
			out[i] = byteOrder.Uint32(buf[i*4:])
		}
		return out, nil
	case Int32:
		out := make(Int32Array, n)
		for i := range out {
			out[i] = int32(byteOrder.Uint32(buf[i*4:]))
		}
		return out, nil
	case Float32:
		out := make(Float32Array, n)
		for i := range out {
			out[i] = math.Float32frombits(byteOrder.Uint32(buf[i*4:]))
		}
		return out, nil
	case Float64:
		out := make(Float64Array, n)
		for i := range out {
			out[i] = math.Float64frombits(byteOrder.Uint64(buf[i*8:]))
		}
		return out, nil
	case UInt64:
		return decodeUint64Values(buf, n), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedValueType, vt)
	}
}

// decodeUint64Values combines two little-endian 32-bit words per element.
// Values above 2^53 lose precision.
func decodeUint64Values(buf []byte, n int) Float64Array {
	out := make(Float64Array, n)
	offset := 0
	for i := 0; i < n; i++ {
		low := byteOrder.Uint32(buf[offset:])
		high := byteOrder.Uint32(buf[offset+4:])
		out[i] = float64(low) + math.Pow(2, 32)*float64(high)
		offset += 8
	}
	return out
}

// readScalar reads one vt value at the start of buf.
func readScalar(vt ValueType, buf []byte) (float64, error) {
	size := SizeOf(vt)
	if size == 0 {
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedValueType, vt)
	}
	if len(buf) < size {
		return 0, ErrTruncatedHeader
	}
	arr, err := decodeArray(vt, buf, 1)
	if err != nil {
		return 0, err
	}
	return arr.Float64(0), nil
}
