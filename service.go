package pixelnest

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
)

// ErrDeclined is returned by an ImageService that was reachable but produced
// no usable image. Any other error is treated as the service being
// unavailable.
var ErrDeclined = errors.New("pixelnest: image service declined the request")

var errServiceUnavailable = errors.New("pixelnest: image service not configured")

// User-facing notices for image service outcomes.
const (
	NoticeAIDeclined       = "AI couldn't remove the background automatically. Try using the Wand manually."
	NoticeAIUnavailable    = "AI Service Unavailable. Switching to manual tools."
	NoticeGenerateDeclined = "AI couldn't generate an image this time."
	NoticeGenerateFailed   = "Error connecting to the image service."
)

// ImageService is the external image model used for automatic background
// removal and prompt-based asset generation. Implementations may block and
// must honor ctx.
type ImageService interface {
	// RemoveBackground returns img with its background made transparent.
	RemoveBackground(ctx context.Context, img image.Image) (image.Image, error)
	// GenerateAsset returns a new image described by prompt.
	GenerateAsset(ctx context.Context, prompt string) (image.Image, error)
}

// ServiceFuncs adapts plain functions to ImageService. A nil function reports
// the service as unavailable.
type ServiceFuncs struct {
	RemoveBackgroundFunc func(ctx context.Context, img image.Image) (image.Image, error)
	GenerateAssetFunc    func(ctx context.Context, prompt string) (image.Image, error)
}

// RemoveBackground calls RemoveBackgroundFunc.
func (f ServiceFuncs) RemoveBackground(ctx context.Context, img image.Image) (image.Image, error) {
	if f.RemoveBackgroundFunc == nil {
		return nil, errServiceUnavailable
	}
	return f.RemoveBackgroundFunc(ctx, img)
}

// GenerateAsset calls GenerateAssetFunc.
func (f ServiceFuncs) GenerateAsset(ctx context.Context, prompt string) (image.Image, error) {
	if f.GenerateAssetFunc == nil {
		return nil, errServiceUnavailable
	}
	return f.GenerateAssetFunc(ctx, prompt)
}

// GenerateAsset asks svc for an image described by prompt and wraps it in a
// new ImageAsset named after the trimmed prompt. It does not touch any scene
// and is safe to call from a worker goroutine. A service that returns no
// image is reported as ErrDeclined.
func GenerateAsset(ctx context.Context, svc ImageService, prompt string) (*ImageAsset, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, ErrEmptyPrompt
	}
	if svc == nil {
		return nil, fmt.Errorf("generate %q: %w", prompt, errServiceUnavailable)
	}
	img, err := svc.GenerateAsset(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate %q: %w", prompt, err)
	}
	if img == nil {
		return nil, fmt.Errorf("generate %q: %w", prompt, ErrDeclined)
	}
	return &ImageAsset{ID: newID(), Name: prompt, Pixels: ToNRGBA(img)}, nil
}

// GenerateAsset generates an asset and adds it to the library.
func (s *Scene) GenerateAsset(ctx context.Context, svc ImageService, prompt string) (*ImageAsset, error) {
	a, err := GenerateAsset(ctx, svc, prompt)
	if err != nil {
		return nil, err
	}
	s.AddAsset(a)
	return a, nil
}

// GenerateNotice maps a GenerateAsset error to the notice shown to the user.
func GenerateNotice(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptyPrompt):
		return ""
	case errors.Is(err, ErrDeclined):
		return NoticeGenerateDeclined
	default:
		return NoticeGenerateFailed
	}
}
