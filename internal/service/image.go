package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif" // Register GIF decoder
	"image/jpeg"
	_ "image/png" // Register PNG decoder
	"path"
	"strings"

	"github.com/bbrks/go-blurhash"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder

	"github.com/pageza/recipeshare/backend/internal/apperrors"
)

const (
	// ThumbnailWidth is the width of generated thumbnails in pixels
	ThumbnailWidth = 480
	thumbQuality   = 78
	blurHashSize   = 64
)

// ImageUpload is a raw image received with a recipe
type ImageUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ProcessedImage holds the stored image references for a recipe
type ProcessedImage struct {
	URL      string
	ThumbURL string
	BlurHash string
}

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ImageService stores uploaded recipe images along with a JPEG thumbnail
// and a BlurHash placeholder
type ImageService struct {
	store  ImageStore
	logger zerolog.Logger
}

// NewImageService creates a new ImageService instance
func NewImageService(store ImageStore, logger zerolog.Logger) *ImageService {
	return &ImageService{store: store, logger: logger}
}

// Process stores the original upload and derives its thumbnail. When the
// image cannot be decoded the original doubles as the thumbnail.
func (s *ImageService) Process(ctx context.Context, upload ImageUpload) (*ProcessedImage, error) {
	if len(upload.Data) == 0 {
		return nil, apperrors.Validation("image is empty")
	}
	ext, ok := allowedImageTypes[strings.ToLower(upload.ContentType)]
	if !ok {
		return nil, apperrors.Validationf("unsupported image type %q", upload.ContentType)
	}

	id, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("generate image key: %w", err)
	}
	base := fmt.Sprintf("%s-%s", id, sanitizeStem(upload.Filename))

	url, err := s.store.Put(ctx, base+ext, upload.ContentType, upload.Data)
	if err != nil {
		return nil, fmt.Errorf("store image: %w", err)
	}
	result := &ProcessedImage{URL: url, ThumbURL: url}

	img, _, err := image.Decode(bytes.NewReader(upload.Data))
	if err != nil {
		s.logger.Warn().Err(err).Str("file", upload.Filename).Msg("could not decode image, using original as thumbnail")
		return result, nil
	}

	thumb, err := EncodeThumbnail(img)
	if err != nil {
		s.logger.Warn().Err(err).Str("file", upload.Filename).Msg("thumbnail encoding failed")
		return result, nil
	}
	thumbURL, err := s.store.Put(ctx, base+"-thumb.jpg", "image/jpeg", thumb)
	if err != nil {
		s.logger.Warn().Err(err).Str("file", upload.Filename).Msg("thumbnail upload failed")
	} else {
		result.ThumbURL = thumbURL
	}

	hash, err := blurhash.Encode(4, 3, scaleToWidth(img, blurHashSize))
	if err != nil {
		s.logger.Debug().Err(err).Msg("blurhash encoding failed")
	} else {
		result.BlurHash = hash
	}

	return result, nil
}

// EncodeThumbnail resizes img to ThumbnailWidth (never upscaling) and encodes it as JPEG
func EncodeThumbnail(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, scaleToWidth(img, ThumbnailWidth), &jpeg.Options{Quality: thumbQuality}); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

// scaleToWidth returns img scaled down to width, keeping aspect ratio
func scaleToWidth(img image.Image, width int) image.Image {
	b := img.Bounds()
	if b.Dx() <= width {
		return img
	}
	height := b.Dy() * width / b.Dx()
	if height < 1 {
		height = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

func sanitizeStem(filename string) string {
	stem := strings.TrimSuffix(path.Base(filename), path.Ext(filename))
	var b strings.Builder
	for _, r := range strings.ToLower(stem) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ' || r == '.':
			b.WriteRune('-')
		}
	}
	if b.Len() == 0 {
		return "image"
	}
	out := b.String()
	if len(out) > 40 {
		out = out[:40]
	}
	return out
}
