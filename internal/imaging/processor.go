// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package imaging normalizes uploaded exhibit, landing and advertisement
// images before they are stored.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/webp" // WebP decoder
)

// MIME types accepted as images.
const (
	MimeTypeJPEG = "image/jpeg"
	MimeTypePNG  = "image/png"
	MimeTypeGIF  = "image/gif"
	MimeTypeWebP = "image/webp"
)

// DefaultMaxDimension bounds the longest side of a stored image.
const DefaultMaxDimension = 2048

// MaxSourcePixels rejects images whose header claims more pixels than a
// phone or DSLR photo, before any pixel data is decoded.
const MaxSourcePixels = 60_000_000

// Errors returned by Normalize.
var (
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrTooLarge          = errors.New("image dimensions too large")
)

// format describes how one accepted input type is stored.
type format struct {
	mime string
	ext  string
	// store is the mime the image is re-encoded as.
	store string
}

// formats is keyed by the sniffed content type. TIFF is deliberately absent
// (CVE-2023-36308 in disintegration/imaging).
var formats = map[string]format{
	MimeTypeJPEG: {mime: MimeTypeJPEG, ext: ".jpg", store: MimeTypeJPEG},
	MimeTypePNG:  {mime: MimeTypePNG, ext: ".png", store: MimeTypePNG},
	MimeTypeGIF:  {mime: MimeTypeGIF, ext: ".gif", store: MimeTypeGIF},
	// No pure Go WebP encoder; WebP is stored as JPEG.
	MimeTypeWebP: {mime: MimeTypeWebP, ext: ".jpg", store: MimeTypeJPEG},
}

// Result is a normalized image ready to be written.
type Result struct {
	Data     []byte
	Ext      string
	MimeType string
	Width    int
	Height   int
}

// Processor applies EXIF orientation and size limits to images.
type Processor struct {
	maxDimension int
	quality      int
}

// NewProcessor creates a processor. maxDimension <= 0 uses DefaultMaxDimension.
func NewProcessor(maxDimension int) *Processor {
	if maxDimension <= 0 {
		maxDimension = DefaultMaxDimension
	}
	return &Processor{maxDimension: maxDimension, quality: 90}
}

// Normalize decodes image data, rotates it upright, fits it within the
// maximum dimension and re-encodes it without metadata.
func (p *Processor) Normalize(data []byte) (*Result, error) {
	f, ok := formats[p.DetectMimeType(data)]
	if !ok {
		return nil, ErrUnsupportedFormat
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("reading image header: %w", err)
	}
	if cfg.Width*cfg.Height > MaxSourcePixels {
		return nil, fmt.Errorf("%w: %dx%d", ErrTooLarge, cfg.Width, cfg.Height)
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	img = applyOrientation(img, readExifOrientation(bytes.NewReader(data)))

	if b := img.Bounds(); b.Dx() > p.maxDimension || b.Dy() > p.maxDimension {
		img = imaging.Fit(img, p.maxDimension, p.maxDimension, imaging.Lanczos)
	}

	var buf bytes.Buffer
	switch f.store {
	case MimeTypePNG:
		err = png.Encode(&buf, img)
	case MimeTypeGIF:
		err = gif.Encode(&buf, img, nil)
	default:
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: p.quality})
	}
	if err != nil {
		return nil, fmt.Errorf("encoding image: %w", err)
	}

	b := img.Bounds()
	return &Result{
		Data:     buf.Bytes(),
		Ext:      f.ext,
		MimeType: f.store,
		Width:    b.Dx(),
		Height:   b.Dy(),
	}, nil
}

// IsImage reports whether mimeType is an image Normalize accepts.
func (p *Processor) IsImage(mimeType string) bool {
	_, ok := formats[mimeType]
	return ok
}

// DetectMimeType sniffs the MIME type of file data, without parameters.
func (p *Processor) DetectMimeType(data []byte) string {
	contentType := http.DetectContentType(data)
	if idx := strings.Index(contentType, ";"); idx != -1 {
		contentType = contentType[:idx]
	}
	return contentType
}

// readExifOrientation returns the EXIF orientation tag, or 1 (normal) when
// there is none.
func readExifOrientation(r io.Reader) int {
	x, err := exif.Decode(r)
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	orientation, err := tag.Int(0)
	if err != nil {
		return 1
	}
	return orientation
}

// applyOrientation turns an image upright for an EXIF orientation:
// 1 normal, 2 flip H, 3 rotate 180, 4 flip V, 5 transpose, 6 rotate 90 CW,
// 7 transverse, 8 rotate 90 CCW.
func applyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.FlipH(imaging.Rotate270(img))
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.FlipH(imaging.Rotate90(img))
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}
