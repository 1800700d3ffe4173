package i3s

import (
	"context"
	"fmt"
	"math"
)

const (
	passVertex  = "vertex"
	passFeature = "feature"
)

// Header is the fixed prefix of an uncompressed geometry buffer.
type Header struct {
	VertexCount  int
	FeatureCount int
	ByteOffset   int
}

// ReadHeader decodes vertexCount from bytes 0-4 and featureCount from bytes
// 4-8 using the declared header types. Unknown properties are ignored.
func ReadHeader(data []byte, header []HeaderAttribute) (Header, error) {
	var h Header
	for _, attr := range header {
		switch attr.Property {
		case HeaderVertexCount:
			v, err := readHeaderCount(data, 0, attr)
			if err != nil {
				return h, err
			}
			h.VertexCount = v
			h.ByteOffset += SizeOf(attr.Type)
		case HeaderFeatureCount:
			v, err := readHeaderCount(data, 4, attr)
			if err != nil {
				return h, err
			}
			h.FeatureCount = v
			h.ByteOffset += SizeOf(attr.Type)
		}
	}
	return h, nil
}

func readHeaderField(data []byte, offset int, attr HeaderAttribute) (float64, error) {
	if len(data) < offset+4 {
		return 0, fmt.Errorf("%w: %s needs %d bytes, have %d", ErrTruncatedHeader, attr.Property, offset+4, len(data))
	}
	return readScalar(attr.Type, data[offset:])
}

// readHeaderCount reads a header field that must hold a count.
func readHeaderCount(data []byte, offset int, attr HeaderAttribute) (int, error) {
	v, err := readHeaderField(data, offset, attr)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || v < 0 || v > math.MaxUint32 || v != math.Trunc(v) {
		return 0, fmt.Errorf("%w: %s is %v", ErrInvalidHeader, attr.Property, v)
	}
	return int(v), nil
}

// ReadAttributes decodes, in order, every attribute of order that layouts
// declares, each holding count elements. It returns the attributes and the
// byte offset after the last one decoded.
//
// When an attribute does not fit in data the pass stops: that attribute and
// every later one are absent, and the returned TruncatedError describes
// where decoding stopped. Truncation is not an error.
func ReadAttributes(data []byte, byteOffset int, order []string, layouts map[string]AttributeLayout, count int) (Attributes, int, *TruncatedError, error) {
	attributes := make(Attributes)

	for _, name := range order {
		layout, ok := layouts[name]
		if !ok {
			continue
		}
		size := SizeOf(layout.ValueType)
		if size == 0 {
			return nil, byteOffset, nil, fmt.Errorf("%w: %q for attribute %s", ErrUnsupportedValueType, layout.ValueType, name)
		}
		elements := count * layout.ValuesPerElement
		span := elements * size

		// Tiles may declare attributes, regions in particular, that the
		// buffer does not carry.
		if elements < 0 || byteOffset+elements > len(data) || byteOffset+span > len(data) {
			return attributes, byteOffset, &TruncatedError{
				Attribute: name,
				Offset:    byteOffset,
				Need:      span,
				Have:      len(data) - byteOffset,
			}, nil
		}

		value, err := decodeArray(layout.ValueType, data[byteOffset:], elements)
		if err != nil {
			return nil, byteOffset, nil, err
		}

		attr := &NormalizedAttribute{
			Value:  value,
			Type:   GLTypeOf(layout.ValueType),
			Size:   layout.ValuesPerElement,
			Source: SourceLayoutReader,
		}
		if name == AttributeColor {
			attr.Normalized = true
		}
		attributes[name] = attr

		byteOffset += span
	}

	return attributes, byteOffset, nil, nil
}

// layoutReader decodes an uncompressed geometry buffer.
type layoutReader struct {
	layout *FeatureDataLayout
}

func (r *layoutReader) produce(_ context.Context, data []byte) (*producedGeometry, error) {
	header, err := ReadHeader(data, r.layout.Header)
	if err != nil {
		return nil, err
	}

	geom := &producedGeometry{vertexCount: header.VertexCount}

	vertexAttributes, offset, truncated, err := ReadAttributes(data, header.ByteOffset,
		r.layout.AttributesOrder, r.layout.VertexAttributes, header.VertexCount)
	if err != nil {
		return nil, err
	}
	if truncated != nil {
		truncated.Pass = passVertex
		geom.truncations = append(geom.truncations, truncated)
	}

	featureAttributes, _, truncated, err := ReadAttributes(data, offset,
		r.layout.FeatureAttributeOrder, r.layout.FeatureAttributes, header.FeatureCount)
	if err != nil {
		return nil, err
	}
	if truncated != nil {
		truncated.Pass = passFeature
		geom.truncations = append(geom.truncations, truncated)
	}

	limit := header.VertexCount
	if limit > len(data) {
		limit = len(data)
	}
	if requested := flattenFeatureIdsByFaceRanges(featureAttributes, limit); requested > limit {
		geom.faceRangeOverflow = &FaceRangeOverflowError{Requested: requested, Limit: limit}
	}
	geom.attributes = concatAttributes(vertexAttributes, featureAttributes)
	return geom, nil
}
