package i3s

import (
	"context"
	"errors"

	mat4d "github.com/flywave/go3d/float64/mat4"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Keys of TileContent.Attributes.
const (
	ContentPositions = "positions"
	ContentNormals   = "normals"
	ContentColors    = "colors"
	ContentTexCoords = "texCoords"
	ContentUVRegions = "uvRegions"
)

// Tile is one node of a scene layer as seen by the content parser.
type Tile struct {
	ID                 string
	TextureURL         string
	TextureFormat      TextureFormat
	MaterialDefinition *Material
	// Mbs is the minimum bounding sphere: longitude, latitude, height, radius.
	Mbs             [4]float64
	IsDracoGeometry bool
	Content         *TileContent
}

// TileContent is the renderer-ready result of parsing one tile.
type TileContent struct {
	Attributes       map[string]*NormalizedAttribute
	Indices          Array
	FeatureIds       Array
	Material         *Material
	Texture          *Texture
	ModelMatrix      mat4d.T
	CoordinateSystem CoordinateSystem
	VertexCount      int
	ByteLength       int
	FeatureData      *FeatureDataLayout
	// Truncations lists attribute passes that stopped early.
	Truncations []*TruncatedError
}

// Parser decodes tile payloads. A Parser holds no per-tile state and may be
// used from several goroutines.
type Parser struct {
	Options            Options
	Fetcher            TextureFetcher
	Images             ImageDecoder
	CompressedTextures CompressedTextureDecoder
	Decompressor       MeshDecompressor
	Logger             *zap.Logger
}

func NewParser(opts Options) *Parser {
	return &Parser{
		Options: opts,
		Fetcher: &HTTPFetcher{},
		Images:  StdImageDecoder{},
		Logger:  zap.NewNop(),
	}
}

func (p *Parser) logger() *zap.Logger {
	if p.Logger == nil {
		return zap.NewNop()
	}
	return p.Logger
}

func (p *Parser) geodesy() Geodesy {
	if p.Options.Geodesy == nil {
		return WGS84
	}
	return p.Options.Geodesy
}

// ParseTileContent decodes data into a fresh tile.Content. Missing schema,
// header and decompression failures abort the parse; texture failures and
// truncated attribute buffers do not.
func (p *Parser) ParseTileContent(ctx context.Context, data []byte, tile *Tile, tileset *Tileset) (*Tile, error) {
	if tile == nil {
		return nil, errors.New("nil tile")
	}
	log := p.logger().With(zap.String("parse", uuid.NewString()), zap.String("tile", tile.ID))

	layout, err := NewFeatureDataLayout(tileset)
	if err != nil {
		return nil, err
	}
	content := &TileContent{FeatureData: layout}

	if tile.TextureURL != "" {
		loader := &textureLoader{fetcher: p.Fetcher, images: p.Images, compressed: p.CompressedTextures}
		texture, err := loader.load(ctx, tile.TextureURL, tile.TextureFormat, p.Options.Token, p.Options.DecodeTextures)
		if err != nil {
			log.Warn("texture unavailable",
				zap.String("url", tile.TextureURL),
				zap.String("format", string(tile.TextureFormat)),
				zap.Error(err))
		} else {
			content.Texture = texture
		}
	}

	var producer attributeProducer
	if tile.IsDracoGeometry {
		producer = &decompressorAdapter{decompressor: p.Decompressor}
	} else {
		producer = &layoutReader{layout: layout}
	}
	geom, err := producer.produce(ctx, data)
	if err != nil {
		return nil, err
	}
	for _, t := range geom.truncations {
		log.Warn("attribute buffer truncated",
			zap.String("pass", t.Pass),
			zap.String("attribute", t.Attribute),
			zap.Int("offset", t.Offset),
			zap.Int("need", t.Need),
			zap.Int("have", t.Have))
	}
	content.Truncations = geom.truncations
	if o := geom.faceRangeOverflow; o != nil {
		log.Warn("face ranges exceed tile",
			zap.Int("requested", o.Requested),
			zap.Int("limit", o.Limit))
	}
	attributes := geom.attributes

	position := attributes[AttributePosition]
	if p.Options.CoordinateSystem == METER_OFFSETS {
		enu, err := parsePositions(position, tile.Mbs, p.geodesy())
		if err != nil {
			return nil, err
		}
		content.ModelMatrix = enu.Inverted()
		content.CoordinateSystem = METER_OFFSETS
	} else {
		content.ModelMatrix = modelMatrixForScale(position)
		content.CoordinateSystem = LNGLAT_OFFSETS
	}

	content.Attributes = map[string]*NormalizedAttribute{
		ContentPositions: position,
		ContentNormals:   attributes[AttributeNormal],
		ContentColors:    normalizeAttribute(attributes[AttributeColor]),
		ContentTexCoords: attributes[AttributeUV0],
		ContentUVRegions: normalizeAttribute(attributes[AttributeUVRegion]),
	}
	for key, attr := range content.Attributes {
		if attr == nil {
			delete(content.Attributes, key)
		}
	}
	if indices := attributes[AttributeIndices]; indices != nil {
		content.Indices = indices.Value
	}
	if id := attributes[AttributeID]; id != nil && id.Value != nil {
		content.FeatureIds = id.Value
	}

	content.VertexCount = geom.vertexCount
	content.ByteLength = len(data)

	material, attached := MakePbrMaterial(tile.MaterialDefinition, content.Texture)
	if !attached {
		log.Debug("texture has no material slot")
	}
	content.Material = material
	if content.Material != nil {
		content.Texture = nil
	}

	tile.Content = content
	return tile, nil
}
