package i3s

import (
	"errors"
	"fmt"
)

var (
	ErrMissingSchema        = errors.New("tileset has no default geometry schema")
	ErrTruncatedHeader      = errors.New("truncated geometry header")
	ErrInvalidHeader        = errors.New("invalid geometry header")
	ErrUnsupportedValueType = errors.New("unsupported value type")
	ErrTextureUnavailable   = errors.New("texture unavailable")
	ErrMissingDecompressor  = errors.New("compressed geometry requires a mesh decompressor")
)

// TruncatedError records an attribute pass that stopped because the buffer
// was shorter than the declared layout. It is surfaced on TileContent and in
// logs, never returned from a parse.
type TruncatedError struct {
	Pass      string
	Attribute string
	Offset    int
	Need      int
	Have      int
}

func (e *TruncatedError) Error() string {
	return fmt.Sprintf("%s attributes truncated at %q: offset %d needs %d bytes, buffer has %d",
		e.Pass, e.Attribute, e.Offset, e.Need, e.Have)
}

// FaceRangeOverflowError records face ranges that address more triangle
// vertices than the tile holds. The feature id output is cut to Limit.
type FaceRangeOverflowError struct {
	Requested int
	Limit     int
}

func (e *FaceRangeOverflowError) Error() string {
	return fmt.Sprintf("face ranges address %d triangle vertices, tile holds %d", e.Requested, e.Limit)
}
