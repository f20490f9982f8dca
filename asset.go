package pixelnest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/hajimehoshi/ebiten/v2"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"
)

// FallbackVideoSize is used when a video probe cannot report dimensions.
var FallbackVideoSize = Size{Width: 300, Height: 300}

// ErrProbeTimeout is returned when an asset probe does not finish before its
// context is done.
var ErrProbeTimeout = errors.New("pixelnest: asset probe timed out")

// AssetKind tags the variant of an Asset.
type AssetKind uint8

const (
	AssetImage AssetKind = iota
	AssetVideo
)

// String returns "image" or "video".
func (k AssetKind) String() string {
	if k == AssetVideo {
		return "video"
	}
	return "image"
}

// Asset is a library entry that can be placed on the canvas. It is implemented
// only by *ImageAsset and *VideoAsset; callers switch on the concrete type or
// on Kind when the variants need different handling.
type Asset interface {
	AssetID() string
	AssetName() string
	Kind() AssetKind
	// NaturalSize is the native pixel size reported by the probe.
	NaturalSize() Size
	// texture returns the image drawn for this asset on the canvas.
	texture() *ebiten.Image
}

// ImageAsset is a decoded raster image.
type ImageAsset struct {
	ID   string
	Name string
	// Pixels holds the decoded image at native resolution.
	Pixels *image.NRGBA

	tex *ebiten.Image
}

func (a *ImageAsset) AssetID() string   { return a.ID }
func (a *ImageAsset) AssetName() string { return a.Name }
func (a *ImageAsset) Kind() AssetKind   { return AssetImage }

// NaturalSize returns the pixel dimensions of the decoded image.
func (a *ImageAsset) NaturalSize() Size {
	if a.Pixels == nil {
		return Size{}
	}
	b := a.Pixels.Bounds()
	return Size{b.Dx(), b.Dy()}
}

func (a *ImageAsset) texture() *ebiten.Image {
	if a.tex == nil && a.Pixels != nil {
		a.tex = ebiten.NewImageFromImage(a.Pixels)
	}
	return a.tex
}

// VideoAsset is a video referenced by source. Frames are not decoded here;
// the canvas draws the Poster when one is set and a placeholder otherwise.
type VideoAsset struct {
	ID     string
	Name   string
	Source string
	Size   Size
	// Poster is an optional still frame.
	Poster image.Image

	tex *ebiten.Image
}

func (a *VideoAsset) AssetID() string   { return a.ID }
func (a *VideoAsset) AssetName() string { return a.Name }
func (a *VideoAsset) Kind() AssetKind   { return AssetVideo }
func (a *VideoAsset) NaturalSize() Size { return a.Size }

func (a *VideoAsset) texture() *ebiten.Image {
	if a.tex != nil {
		return a.tex
	}
	if a.Poster != nil {
		a.tex = ebiten.NewImageFromImage(a.Poster)
		return a.tex
	}
	w, h := a.Size.Width, a.Size.Height
	if w <= 0 || h <= 0 {
		w, h = FallbackVideoSize.Width, FallbackVideoSize.Height
	}
	a.tex = ebiten.NewImage(w, h)
	a.tex.Fill(videoPlaceholderColor)
	return a.tex
}

// VideoProbe reports the native dimensions of a video source.
type VideoProbe interface {
	ProbeVideo(ctx context.Context, source string) (Size, error)
}

// VideoProbeFunc adapts a function to the VideoProbe interface.
type VideoProbeFunc func(ctx context.Context, source string) (Size, error)

// ProbeVideo calls f.
func (f VideoProbeFunc) ProbeVideo(ctx context.Context, source string) (Size, error) {
	return f(ctx, source)
}

// LoadImageAsset decodes data into an ImageAsset. PNG, JPEG, GIF, BMP, TIFF
// and WebP are recognized. Decoding runs on its own goroutine so a ctx
// deadline bounds how long a malformed or huge image can stall the caller.
func LoadImageAsset(ctx context.Context, name string, data []byte) (*ImageAsset, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("load %q: %w: %w", name, ErrProbeTimeout, err)
	}
	type result struct {
		img *image.NRGBA
		err error
	}
	done := make(chan result, 1)
	go func() {
		if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
			done <- result{err: fmt.Errorf("probe %q: %w", name, err)}
			return
		}
		img, err := DecodeImage(data)
		done <- result{img: img, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("load %q: %w: %w", name, ErrProbeTimeout, ctx.Err())
	case r := <-done:
		if r.err != nil {
			return nil, r.err
		}
		return &ImageAsset{ID: newID(), Name: name, Pixels: r.img}, nil
	}
}

// LoadVideoAsset asks probe for the video's dimensions. A probe that reports
// a zero width or height, or a nil probe, yields FallbackVideoSize.
func LoadVideoAsset(ctx context.Context, name, source string, probe VideoProbe) (*VideoAsset, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("load %q: %w: %w", name, ErrProbeTimeout, err)
	}
	size := FallbackVideoSize
	if probe != nil {
		type result struct {
			size Size
			err  error
		}
		done := make(chan result, 1)
		go func() {
			s, err := probe.ProbeVideo(ctx, source)
			done <- result{s, err}
		}()
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("load %q: %w: %w", name, ErrProbeTimeout, ctx.Err())
		case r := <-done:
			if r.err != nil {
				return nil, fmt.Errorf("probe %q: %w", name, r.err)
			}
			if r.size.Width > 0 {
				size.Width = r.size.Width
			}
			if r.size.Height > 0 {
				size.Height = r.size.Height
			}
		}
	}
	return &VideoAsset{ID: newID(), Name: name, Source: source, Size: size}, nil
}

// AssetRequest describes one asset for LoadAssets. Requests with a non-empty
// VideoSource are probed as videos; all others decode Data as an image.
type AssetRequest struct {
	Name        string
	Data        []byte
	VideoSource string
}

// LoadAssets probes all requests concurrently and returns the assets in
// request order. The first failure cancels the remaining probes.
func LoadAssets(ctx context.Context, reqs []AssetRequest, probe VideoProbe) ([]Asset, error) {
	out := make([]Asset, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	for i, req := range reqs {
		g.Go(func() error {
			if req.VideoSource != "" {
				a, err := LoadVideoAsset(gctx, req.Name, req.VideoSource, probe)
				if err != nil {
					return err
				}
				out[i] = a
				return nil
			}
			a, err := LoadImageAsset(gctx, req.Name, req.Data)
			if err != nil {
				return err
			}
			out[i] = a
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
