package i3s

import (
	"encoding/json"
	"fmt"
)

// Attribute names used by geometry schemas and decompressed meshes.
const (
	AttributePosition  = "position"
	AttributeNormal    = "normal"
	AttributeUV0       = "uv0"
	AttributeColor     = "color"
	AttributeRegion    = "region"
	AttributeUVRegion  = "uvRegion"
	AttributeID        = "id"
	AttributeFaceRange = "faceRange"
	AttributeIndices   = "indices"
)

// Header property names.
const (
	HeaderVertexCount  = "vertexCount"
	HeaderFeatureCount = "featureCount"
)

type HeaderAttribute struct {
	Property string    `json:"property"`
	Type     ValueType `json:"type"`
}

type GeometryAttribute struct {
	ValueType        ValueType `json:"valueType"`
	ValuesPerElement int       `json:"valuesPerElement"`
	ByteOffset       int       `json:"byteOffset,omitempty"`
	Count            int       `json:"count,omitempty"`
	Encoding         string    `json:"encoding,omitempty"`
}

// GeometrySchema is the layer's defaultGeometrySchema.
type GeometrySchema struct {
	GeometryType          string                        `json:"geometryType"`
	Topology              string                        `json:"topology"`
	Header                []HeaderAttribute             `json:"header"`
	Ordering              []string                      `json:"ordering"`
	VertexAttributes      map[string]*GeometryAttribute `json:"vertexAttributes"`
	FeatureAttributeOrder []string                      `json:"featureAttributeOrder"`
	FeatureAttributes     map[string]*GeometryAttribute `json:"featureAttributes"`
}

type Store struct {
	Version               string          `json:"version,omitempty"`
	Profile               string          `json:"profile,omitempty"`
	ResourcePattern       []string        `json:"resourcePattern,omitempty"`
	DefaultGeometrySchema *GeometrySchema `json:"defaultGeometrySchema,omitempty"`
}

// Tileset is the subset of a 3D scene layer document needed to decode its tiles.
type Tileset struct {
	ID                  int         `json:"id"`
	Version             string      `json:"version,omitempty"`
	Name                string      `json:"name,omitempty"`
	LayerType           string      `json:"layerType,omitempty"`
	Store               Store       `json:"store"`
	MaterialDefinitions []*Material `json:"materialDefinitions,omitempty"`
}

func ParseTileset(data []byte) (*Tileset, error) {
	ts := &Tileset{}
	if err := json.Unmarshal(data, ts); err != nil {
		return nil, fmt.Errorf("parsing scene layer: %w", err)
	}
	return ts, nil
}

// AttributeLayout is the per-attribute entry of a FeatureDataLayout.
type AttributeLayout struct {
	ValueType        ValueType
	ValuesPerElement int
	ByteOffset       int
	Count            int
}

// FeatureDataLayout describes how a tile's geometry buffer is laid out.
// It is derived once per tileset and read-only while tiles are parsed.
type FeatureDataLayout struct {
	Header                []HeaderAttribute
	VertexAttributes      map[string]AttributeLayout
	AttributesOrder       []string
	FeatureAttributes     map[string]AttributeLayout
	FeatureAttributeOrder []string
}

// NewFeatureDataLayout builds the layout from the tileset's default geometry schema.
func NewFeatureDataLayout(tileset *Tileset) (*FeatureDataLayout, error) {
	if tileset == nil || tileset.Store.DefaultGeometrySchema == nil {
		return nil, ErrMissingSchema
	}
	schema := tileset.Store.DefaultGeometrySchema

	layout := &FeatureDataLayout{
		Header:                append([]HeaderAttribute(nil), schema.Header...),
		VertexAttributes:      copyAttributeLayouts(schema.VertexAttributes),
		AttributesOrder:       append([]string(nil), schema.Ordering...),
		FeatureAttributes:     copyAttributeLayouts(schema.FeatureAttributes),
		FeatureAttributeOrder: append([]string(nil), schema.FeatureAttributeOrder...),
	}
	return layout, nil
}

func copyAttributeLayouts(attrs map[string]*GeometryAttribute) map[string]AttributeLayout {
	out := make(map[string]AttributeLayout, len(attrs))
	for name, attr := range attrs {
		if attr == nil {
			continue
		}
		out[name] = AttributeLayout{
			ValueType:        attr.ValueType,
			ValuesPerElement: attr.ValuesPerElement,
			ByteOffset:       attr.ByteOffset,
			Count:            attr.Count,
		}
	}
	return out
}
