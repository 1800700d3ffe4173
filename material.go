package i3s

import (
	"encoding/json"
	"fmt"
	"strings"
)

const defaultAlphaCutoff = 0.25

var opaqueWhite = []float64{255, 255, 255, 255}

// TextureInfo is a material texture slot.
type TextureInfo struct {
	TextureSetDefinitionID *int     `json:"textureSetDefinitionId,omitempty"`
	TexCoord               int      `json:"texCoord"`
	Factor                 *float64 `json:"factor,omitempty"`
	Texture                *Texture `json:"-"`
}

type PbrMetallicRoughness struct {
	BaseColorFactor          []float64    `json:"baseColorFactor,omitempty"`
	BaseColorTexture         *TextureInfo `json:"baseColorTexture,omitempty"`
	MetallicFactor           *float64     `json:"metallicFactor,omitempty"`
	RoughnessFactor          *float64     `json:"roughnessFactor,omitempty"`
	MetallicRoughnessTexture *TextureInfo `json:"metallicRoughnessTexture,omitempty"`
}

// Material is a glTF style PBR material. Definitions read from a scene layer
// carry colors in 0-255 and a lowercase alphaMode; ones returned by
// MakePbrMaterial are normalized.
type Material struct {
	Name                 string                `json:"name,omitempty"`
	PbrMetallicRoughness *PbrMetallicRoughness `json:"pbrMetallicRoughness,omitempty"`
	NormalTexture        *TextureInfo          `json:"normalTexture,omitempty"`
	OcclusionTexture     *TextureInfo          `json:"occlusionTexture,omitempty"`
	EmissiveTexture      *TextureInfo          `json:"emissiveTexture,omitempty"`
	EmissiveFactor       []float64             `json:"emissiveFactor,omitempty"`
	AlphaMode            string                `json:"alphaMode,omitempty"`
	AlphaCutoff          float64               `json:"alphaCutoff,omitempty"`
	DoubleSided          bool                  `json:"doubleSided,omitempty"`
	CullFace             string                `json:"cullFace,omitempty"`
}

func ParseMaterialDefinition(data []byte) (*Material, error) {
	m := &Material{}
	if err := json.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("parsing material definition: %w", err)
	}
	return m, nil
}

// MakePbrMaterial builds a normalized material from an optional definition
// and an optional texture. The definition is not modified.
// It reports whether the texture found a slot.
func MakePbrMaterial(definition *Material, texture *Texture) (*Material, bool) {
	var material *Material
	if definition != nil {
		copied := *definition
		material = &copied
		if definition.PbrMetallicRoughness != nil {
			pbr := *definition.PbrMetallicRoughness
			material.PbrMetallicRoughness = &pbr
		} else {
			material.PbrMetallicRoughness = &PbrMetallicRoughness{BaseColorFactor: opaqueWhite}
		}
	} else {
		material = &Material{PbrMetallicRoughness: &PbrMetallicRoughness{}}
		if texture != nil {
			material.PbrMetallicRoughness.BaseColorTexture = &TextureInfo{TexCoord: 0}
		} else {
			material.PbrMetallicRoughness.BaseColorFactor = opaqueWhite
		}
	}

	if material.AlphaCutoff == 0 {
		material.AlphaCutoff = defaultAlphaCutoff
	}
	if material.AlphaMode != "" {
		material.AlphaMode = strings.ToUpper(material.AlphaMode)
	}

	if material.EmissiveFactor != nil {
		material.EmissiveFactor = convertColorFormat(material.EmissiveFactor)
	}
	if material.PbrMetallicRoughness.BaseColorFactor != nil {
		material.PbrMetallicRoughness.BaseColorFactor = convertColorFormat(material.PbrMetallicRoughness.BaseColorFactor)
	}

	attached := true
	if texture != nil {
		attached = setMaterialTexture(material, texture)
	}
	return material, attached
}

// convertColorFormat maps 0-255 color components to 0-1 in a new slice.
func convertColorFormat(color []float64) []float64 {
	out := make([]float64, len(color))
	for i, c := range color {
		out[i] = c / 255
	}
	return out
}

// setMaterialTexture attaches texture to the first existing slot among base
// color, emissive, metallic-roughness, normal and occlusion.
func setMaterialTexture(material *Material, texture *Texture) bool {
	pbr := material.PbrMetallicRoughness
	switch {
	case pbr != nil && pbr.BaseColorTexture != nil:
		pbr.BaseColorTexture = withTexture(pbr.BaseColorTexture, texture)
	case material.EmissiveTexture != nil:
		material.EmissiveTexture = withTexture(material.EmissiveTexture, texture)
	case pbr != nil && pbr.MetallicRoughnessTexture != nil:
		pbr.MetallicRoughnessTexture = withTexture(pbr.MetallicRoughnessTexture, texture)
	case material.NormalTexture != nil:
		material.NormalTexture = withTexture(material.NormalTexture, texture)
	case material.OcclusionTexture != nil:
		material.OcclusionTexture = withTexture(material.OcclusionTexture, texture)
	default:
		return false
	}
	return true
}

func withTexture(slot *TextureInfo, texture *Texture) *TextureInfo {
	copied := *slot
	copied.Texture = texture
	return &copied
}
