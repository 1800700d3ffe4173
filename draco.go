package i3s

import (
	"context"
	"fmt"
)

// Attribute names produced by the mesh decompressor.
const (
	DracoPosition     = "POSITION"
	DracoNormal       = "NORMAL"
	DracoColor        = "COLOR_0"
	DracoTexCoord     = "TEXCOORD_0"
	DracoFeatureIndex = "feature-index"
	DracoUVRegion     = "uv-region"
)

// DracoAttributeNameEntry is the metadata entry naming I3S attributes inside
// a compressed geometry buffer.
const DracoAttributeNameEntry = "i3s-attribute-type"

type DecompressedAttribute struct {
	Value      Array
	Type       GLType
	Size       int
	Normalized bool
}

// LoaderAttribute is an entry of the decompressor's per-attribute metadata table.
type LoaderAttribute struct {
	Name     string
	Metadata AttributeMetadata
}

type DecompressedMesh struct {
	VertexCount      int
	Indices          Array
	Attributes       map[string]*DecompressedAttribute
	LoaderAttributes map[string]LoaderAttribute
}

// MeshDecompressor decodes a compressed geometry buffer.
type MeshDecompressor interface {
	Decompress(ctx context.Context, data []byte, attributeNameEntry string) (*DecompressedMesh, error)
}

// decompressorAdapter maps decompressor output onto the attribute names used
// by the layout reader.
type decompressorAdapter struct {
	decompressor MeshDecompressor
}

var dracoAttributeNames = map[string]string{
	DracoPosition:     AttributePosition,
	DracoNormal:       AttributeNormal,
	DracoColor:        AttributeColor,
	DracoTexCoord:     AttributeUV0,
	DracoFeatureIndex: AttributeID,
	DracoUVRegion:     AttributeUVRegion,
}

func (a *decompressorAdapter) produce(ctx context.Context, data []byte) (*producedGeometry, error) {
	if a.decompressor == nil {
		return nil, ErrMissingDecompressor
	}
	mesh, err := a.decompressor.Decompress(ctx, data, DracoAttributeNameEntry)
	if err != nil {
		return nil, fmt.Errorf("decompressing geometry: %w", err)
	}

	attributes := make(Attributes, len(dracoAttributeNames)+1)
	for from, to := range dracoAttributeNames {
		src, ok := mesh.Attributes[from]
		if !ok || src == nil {
			continue
		}
		attributes[to] = &NormalizedAttribute{
			Value:      src.Value,
			Type:       src.Type,
			Size:       src.Size,
			Normalized: src.Normalized,
			Source:     SourceDecompressor,
		}
	}
	if mesh.Indices != nil {
		attributes[AttributeIndices] = &NormalizedAttribute{
			Value:  mesh.Indices,
			Size:   1,
			Source: SourceDecompressor,
		}
	}

	updateAttributesMetadata(attributes, mesh)

	if featureIds := featureIdsFromFeatureIndexMetadata(attributes[AttributeID]); featureIds != nil {
		flattenFeatureIdsByFeatureIndices(attributes, featureIds)
	}

	return &producedGeometry{
		attributes:  attributes,
		vertexCount: mesh.VertexCount,
	}, nil
}

// updateAttributesMetadata copies position scale factors and the feature id
// table from the loader metadata onto the remapped attributes.
func updateAttributesMetadata(attributes Attributes, mesh *DecompressedMesh) {
	for _, la := range mesh.LoaderAttributes {
		var target *NormalizedAttribute
		switch la.Name {
		case DracoPosition:
			target = attributes[AttributePosition]
		case DracoFeatureIndex:
			target = attributes[AttributeID]
		}
		if target != nil {
			target.Metadata = la.Metadata
		}
	}
}
