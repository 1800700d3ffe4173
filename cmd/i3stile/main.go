// Command i3stile decodes one I3S geometry buffer and prints what it contains.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	i3s "github.com/flywave/go-i3s"
	"github.com/flywave/go-i3s/internal/config"
	"github.com/flywave/go-i3s/internal/logger"
)

var (
	flagConfig        = flag.String("config", "", "Path to a YAML or TOML config file")
	flagLayer         = flag.String("layer", "", "Path to the 3D scene layer JSON document")
	flagTile          = flag.String("tile", "", "Path to the tile geometry buffer")
	flagMbs           = flag.String("mbs", "0,0,0", "Bounding sphere center as lon,lat,height")
	flagTexture       = flag.String("texture", "", "Texture URL")
	flagTextureFormat = flag.String("texture-format", "jpeg", "Texture format: jpeg, png, ktx-etc2, dds, ktx2")
	flagMaterial      = flag.String("material", "", "Path to a material definition JSON document")
	flagLngLat        = flag.Bool("lnglat", false, "Keep positions as LNGLAT_OFFSETS")
	flagDebug         = flag.Bool("debug", false, "Enable debug logging")
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "i3stile:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(*flagConfig)
	if err != nil {
		return err
	}
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagLngLat {
		cfg.Decoder.CoordinateSystem = i3s.LNGLAT_OFFSETS.String()
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.LogFile)
	defer log.Sync()

	if *flagLayer == "" || *flagTile == "" {
		return errors.New("-layer and -tile are required")
	}

	opts, err := cfg.Options()
	if err != nil {
		return err
	}

	layerData, err := os.ReadFile(*flagLayer)
	if err != nil {
		return err
	}
	tileset, err := i3s.ParseTileset(layerData)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(*flagTile)
	if err != nil {
		return err
	}

	mbs, err := parseMbs(*flagMbs)
	if err != nil {
		return err
	}
	tile := &i3s.Tile{
		ID:            *flagTile,
		TextureURL:    *flagTexture,
		TextureFormat: i3s.TextureFormat(*flagTextureFormat),
		Mbs:           mbs,
	}
	if *flagMaterial != "" {
		matData, err := os.ReadFile(*flagMaterial)
		if err != nil {
			return err
		}
		if tile.MaterialDefinition, err = i3s.ParseMaterialDefinition(matData); err != nil {
			return err
		}
	}

	parser := i3s.NewParser(opts)
	parser.Fetcher = &i3s.HTTPFetcher{Client: cfg.HTTPClient()}
	parser.Logger = log

	if _, err := parser.ParseTileContent(context.Background(), data, tile, tileset); err != nil {
		if errors.Is(err, i3s.ErrMissingSchema) {
			log.Error("scene layer has no geometry schema", zap.String("layer", *flagLayer))
		}
		return err
	}

	printContent(tile.Content)
	return nil
}

func parseMbs(value string) ([4]float64, error) {
	var mbs [4]float64
	parts := strings.Split(value, ",")
	if len(parts) < 3 || len(parts) > 4 {
		return mbs, fmt.Errorf("invalid -mbs %q", value)
	}
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return mbs, fmt.Errorf("invalid -mbs %q: %w", value, err)
		}
		mbs[i] = v
	}
	return mbs, nil
}

func printContent(c *i3s.TileContent) {
	fmt.Printf("coordinate system: %s\n", c.CoordinateSystem)
	fmt.Printf("vertices: %d\n", c.VertexCount)
	fmt.Printf("bytes: %d\n", c.ByteLength)
	for _, key := range []string{i3s.ContentPositions, i3s.ContentNormals, i3s.ContentColors, i3s.ContentTexCoords, i3s.ContentUVRegions} {
		if attr, ok := c.Attributes[key]; ok {
			fmt.Printf("%s: %d values, size %d, normalized %t\n", key, attr.Value.Len(), attr.Size, attr.Normalized)
		}
	}
	if c.Indices != nil {
		fmt.Printf("indices: %d\n", c.Indices.Len())
	}
	if c.FeatureIds != nil {
		fmt.Printf("feature ids: %d\n", c.FeatureIds.Len())
	}
	for _, t := range c.Truncations {
		fmt.Printf("truncated: %v\n", t)
	}
	if m := c.Material; m != nil {
		fmt.Printf("material: alphaMode=%q alphaCutoff=%g\n", m.AlphaMode, m.AlphaCutoff)
		if m.PbrMetallicRoughness != nil && m.PbrMetallicRoughness.BaseColorFactor != nil {
			fmt.Printf("base color: %v\n", m.PbrMetallicRoughness.BaseColorFactor)
		}
	}
	fmt.Printf("model matrix: %v\n", c.ModelMatrix)
}
