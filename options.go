package i3s

// Options configures how tile content is decoded.
type Options struct {
	// CoordinateSystem selects absolute cartesian positions (METER_OFFSETS,
	// the default) or untouched offsets under a scale matrix (LNGLAT_OFFSETS).
	CoordinateSystem CoordinateSystem
	// DecodeTextures decodes fetched textures. When false the raw bytes are kept.
	DecodeTextures bool
	// Token is appended to texture URLs as the token query parameter.
	Token string
	// Geodesy converts cartographic positions. nil means WGS84.
	Geodesy Geodesy
}

func DefaultOptions() Options {
	return Options{
		CoordinateSystem: METER_OFFSETS,
		DecodeTextures:   true,
	}
}
