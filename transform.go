package i3s

import (
	"fmt"
	"strings"

	mat4d "github.com/flywave/go3d/float64/mat4"
	vec3d "github.com/flywave/go3d/float64/vec3"
)

type CoordinateSystem int

const (
	METER_OFFSETS CoordinateSystem = iota
	LNGLAT_OFFSETS
)

func (c CoordinateSystem) String() string {
	switch c {
	case METER_OFFSETS:
		return "METER_OFFSETS"
	case LNGLAT_OFFSETS:
		return "LNGLAT_OFFSETS"
	}
	return fmt.Sprintf("CoordinateSystem(%d)", int(c))
}

// ParseCoordinateSystem accepts the names returned by String, in any case.
func ParseCoordinateSystem(value string) (CoordinateSystem, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "", "METER_OFFSETS":
		return METER_OFFSETS, nil
	case "LNGLAT_OFFSETS":
		return LNGLAT_OFFSETS, nil
	}
	return METER_OFFSETS, fmt.Errorf("unknown coordinate system %q", value)
}

// parsePositions replaces the position offsets with absolute cartesian
// coordinates around the bounding sphere center and returns the ENU frame
// at that center.
func parsePositions(position *NormalizedAttribute, mbs [4]float64, geodesy Geodesy) (mat4d.T, error) {
	origin, err := geodesy.ToCartesian(mbs[0], mbs[1], mbs[2])
	if err != nil {
		return mat4d.T{}, fmt.Errorf("converting bounding sphere center: %w", err)
	}
	enu := WGS84.EastNorthUpToFixedFrame(origin)

	if position != nil && position.Value != nil {
		positions, err := offsetsToCartesians(position.Value, position.Metadata, vec3d.T{mbs[0], mbs[1], mbs[2]}, geodesy)
		if err != nil {
			return mat4d.T{}, err
		}
		position.Value = positions
		position.Type = GL_DOUBLE
	}
	return enu, nil
}

// offsetsToCartesians scales x and y offsets, adds them to the cartographic
// origin and converts each resulting point to cartesian.
func offsetsToCartesians(vertices Array, metadata AttributeMetadata, origin vec3d.T, geodesy Geodesy) (Float64Array, error) {
	positions := make(Float64Array, vertices.Len())
	scaleX := metadata.Scale(MetadataScaleX)
	scaleY := metadata.Scale(MetadataScaleY)

	for i := 0; i+2 < len(positions); i += 3 {
		positions[i] = vertices.Float64(i)*scaleX + origin[0]
		positions[i+1] = vertices.Float64(i+1)*scaleY + origin[1]
		positions[i+2] = vertices.Float64(i+2) + origin[2]
	}

	var scratch vec3d.T
	var err error
	for i := 0; i+2 < len(positions); i += 3 {
		scratch, err = geodesy.ToCartesian(positions[i], positions[i+1], positions[i+2])
		if err != nil {
			return nil, fmt.Errorf("converting vertex %d: %w", i/3, err)
		}
		positions[i] = scratch[0]
		positions[i+1] = scratch[1]
		positions[i+2] = scratch[2]
	}

	return positions, nil
}

// modelMatrixForScale returns the scale-only model matrix used when
// positions stay as offsets.
func modelMatrixForScale(position *NormalizedAttribute) mat4d.T {
	m := mat4d.Ident
	if position == nil {
		return m
	}
	m.ScaleVec3(&vec3d.T{position.Metadata.Scale(MetadataScaleX), position.Metadata.Scale(MetadataScaleY), 1})
	return m
}
