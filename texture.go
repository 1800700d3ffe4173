package i3s

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

type TextureFormat string

const (
	TextureJPEG    TextureFormat = "jpeg"
	TexturePNG     TextureFormat = "png"
	TextureKTXETC2 TextureFormat = "ktx-etc2"
	TextureDDS     TextureFormat = "dds"
	TextureKTX2    TextureFormat = "ktx2"
)

// MipLevel is one level of a compressed texture.
type MipLevel struct {
	Width  int
	Height int
	Format string
	Data   []byte
}

// Texture is exactly one of a decoded image, a compressed mipmap chain or,
// when decoding is disabled, the raw fetched bytes.
type Texture struct {
	Compressed bool
	Width      int
	Height     int
	Image      image.Image
	Mipmaps    []MipLevel
	Raw        []byte
}

type TextureFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

type ImageDecoder interface {
	DecodeImage(data []byte) (image.Image, error)
}

// CompressedTextureDecoder decodes GPU compressed containers (KTX, DDS, KTX2/Basis).
type CompressedTextureDecoder interface {
	DecodeCompressed(ctx context.Context, data []byte, format TextureFormat) ([]MipLevel, error)
}

// HTTPFetcher fetches textures with a plain HTTP GET.
type HTTPFetcher struct {
	Client *http.Client
}

func (f *HTTPFetcher) Fetch(ctx context.Context, u string) ([]byte, error) {
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: %s", u, resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// StdImageDecoder decodes any format registered with the image package:
// JPEG, PNG, BMP and WebP.
type StdImageDecoder struct{}

func (StdImageDecoder) DecodeImage(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	return img, err
}

// urlWithToken appends the access token as the token query parameter.
func urlWithToken(rawURL, token string) string {
	if token == "" {
		return rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL + "?token=" + url.QueryEscape(token)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String()
}

func isCompressedFormat(format TextureFormat) bool {
	switch format {
	case TextureKTXETC2, TextureDDS, TextureKTX2:
		return true
	}
	return false
}

type textureLoader struct {
	fetcher    TextureFetcher
	images     ImageDecoder
	compressed CompressedTextureDecoder
}

// load fetches the texture and, if decode is set, decodes it. Every failure
// wraps ErrTextureUnavailable.
func (l *textureLoader) load(ctx context.Context, rawURL string, format TextureFormat, token string, decode bool) (*Texture, error) {
	if l.fetcher == nil {
		return nil, fmt.Errorf("%w: no fetcher", ErrTextureUnavailable)
	}
	data, err := l.fetcher.Fetch(ctx, urlWithToken(rawURL, token))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTextureUnavailable, err)
	}
	if !decode {
		return &Texture{Raw: data}, nil
	}

	if isCompressedFormat(format) {
		if l.compressed == nil {
			return nil, fmt.Errorf("%w: no decoder for %s", ErrTextureUnavailable, format)
		}
		levels, err := l.compressed.DecodeCompressed(ctx, data, format)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTextureUnavailable, err)
		}
		if len(levels) == 0 {
			return nil, fmt.Errorf("%w: %s texture has no levels", ErrTextureUnavailable, format)
		}
		return &Texture{
			Compressed: true,
			Width:      levels[0].Width,
			Height:     levels[0].Height,
			Mipmaps:    levels,
		}, nil
	}

	if l.images == nil {
		return nil, fmt.Errorf("%w: no image decoder", ErrTextureUnavailable)
	}
	img, err := l.images.DecodeImage(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTextureUnavailable, err)
	}
	if img == nil {
		return nil, fmt.Errorf("%w: decoder returned no image", ErrTextureUnavailable)
	}
	b := img.Bounds()
	return &Texture{Width: b.Dx(), Height: b.Dy(), Image: img}, nil
}
