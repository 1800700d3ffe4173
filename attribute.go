package i3s

import "context"

// Metadata keys attached by the mesh decompressor.
const (
	MetadataScaleX     = "i3s-scale_x"
	MetadataScaleY     = "i3s-scale_y"
	MetadataFeatureIDs = "i3s-feature-ids"
)

// AttributeSource tells which decode path produced an attribute.
type AttributeSource uint8

const (
	SourceLayoutReader AttributeSource = iota
	SourceDecompressor
)

func (s AttributeSource) String() string {
	switch s {
	case SourceLayoutReader:
		return "layout"
	case SourceDecompressor:
		return "decompressor"
	}
	return ""
}

type MetadataValue struct {
	Double   float64
	IntArray []int32
}

type AttributeMetadata map[string]MetadataValue

// Scale returns the scale factor stored under key, or 1 when it is absent or zero.
func (m AttributeMetadata) Scale(key string) float64 {
	if v, ok := m[key]; ok && v.Double != 0 {
		return v.Double
	}
	return 1
}

// NormalizedAttribute is the path-independent shape of one decoded attribute.
type NormalizedAttribute struct {
	Value      Array
	Type       GLType
	Size       int
	Normalized bool
	Metadata   AttributeMetadata
	Source     AttributeSource
}

type Attributes map[string]*NormalizedAttribute

// concatAttributes merges b over a. Names present in both keep b's entry.
func concatAttributes(a, b Attributes) Attributes {
	out := make(Attributes, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}

// normalizeAttribute marks attr as normalized so consumers map the integer
// range to [0, 1]. Values are left untouched.
func normalizeAttribute(attr *NormalizedAttribute) *NormalizedAttribute {
	if attr == nil {
		return nil
	}
	attr.Normalized = true
	return attr
}

type producedGeometry struct {
	attributes  Attributes
	vertexCount int
	truncations []*TruncatedError
	// faceRangeOverflow is set when face ranges address more primitives
	// than the tile holds.
	faceRangeOverflow *FaceRangeOverflowError
}

// attributeProducer is implemented by the layout reader and the
// decompressor adapter. Everything downstream only sees producedGeometry.
type attributeProducer interface {
	produce(ctx context.Context, data []byte) (*producedGeometry, error)
}
