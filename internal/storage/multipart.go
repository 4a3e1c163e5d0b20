// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/olegiv/exhibit-cms/internal/imaging"
)

// MaxUploadSize is the largest accepted multipart file.
const MaxUploadSize = 50 << 20

// Upload kinds.
const (
	KindImage = "image"
	KindVideo = "video"
)

// ErrUnsupportedType is returned for files of a type the kind does not accept.
var ErrUnsupportedType = errors.New("unsupported file type")

// ErrTooLarge is returned for files over MaxUploadSize.
var ErrTooLarge = errors.New("file too large")

var videoExtensions = map[string]bool{
	".mp4":  true,
	".webm": true,
	".mov":  true,
}

// FileSaver stores multipart uploads through an Uploader.
type FileSaver struct {
	uploader  Uploader
	processor *imaging.Processor
}

// NewFileSaver creates a saver. Images are normalized by processor.
func NewFileSaver(uploader Uploader, processor *imaging.Processor) *FileSaver {
	return &FileSaver{uploader: uploader, processor: processor}
}

// Save stores one uploaded file of the given kind.
func (s *FileSaver) Save(ctx context.Context, fh *multipart.FileHeader, kind string) (Asset, error) {
	if fh.Size > MaxUploadSize {
		return Asset{}, ErrTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return Asset{}, fmt.Errorf("opening upload: %w", err)
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(io.LimitReader(f, MaxUploadSize+1))
	if err != nil {
		return Asset{}, fmt.Errorf("reading upload: %w", err)
	}
	if len(data) > MaxUploadSize {
		return Asset{}, ErrTooLarge
	}

	var ext string
	switch kind {
	case KindImage:
		if !s.processor.IsImage(s.processor.DetectMimeType(data)) {
			return Asset{}, ErrUnsupportedType
		}
		res, err := s.processor.Normalize(data)
		if err != nil {
			return Asset{}, fmt.Errorf("%w: %v", ErrUnsupportedType, err)
		}
		data, ext = res.Data, res.Ext
	case KindVideo:
		ext = strings.ToLower(filepath.Ext(fh.Filename))
		if !videoExtensions[ext] {
			return Asset{}, ErrUnsupportedType
		}
	default:
		return Asset{}, fmt.Errorf("unknown upload kind %q", kind)
	}

	tmp, err := WriteTemp(data, ext)
	if err != nil {
		return Asset{}, err
	}
	return s.uploader.Upload(ctx, tmp)
}

// Discard removes assets stored by Save, for requests that fail after their
// files were saved. It is a no-op when the uploader cannot remove files.
func (s *FileSaver) Discard(ctx context.Context, assets []Asset) error {
	rm, ok := s.uploader.(Remover)
	if !ok {
		return nil
	}
	var errs []error
	for _, a := range assets {
		if err := rm.Remove(ctx, a); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
