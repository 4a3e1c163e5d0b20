// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package storage moves uploaded and generated files into the public
// uploads directory and returns the URLs they are served from.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Asset is a stored file.
type Asset struct {
	URL  string `json:"url"`
	Path string `json:"-"`
	Size int64  `json:"size"`
}

// Uploader stores a local file and returns its public location. The local
// file is always removed, whether or not the upload succeeds.
type Uploader interface {
	Upload(ctx context.Context, localPath string) (Asset, error)
}

// Remover is implemented by uploaders that can delete an asset they stored.
type Remover interface {
	Remove(ctx context.Context, a Asset) error
}

// LocalStore keeps assets under a directory served at baseURL + "/uploads".
type LocalStore struct {
	root    string
	baseURL string
	now     func() time.Time
}

// NewLocalStore creates the uploads root if needed.
func NewLocalStore(root, baseURL string) (*LocalStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving uploads dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("creating uploads dir: %w", err)
	}
	return &LocalStore{
		root:    abs,
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     time.Now,
	}, nil
}

// Root returns the absolute uploads directory.
func (s *LocalStore) Root() string {
	return s.root
}

// Upload implements Uploader.
func (s *LocalStore) Upload(ctx context.Context, localPath string) (Asset, error) {
	defer func() { _ = os.Remove(localPath) }()

	if err := ctx.Err(); err != nil {
		return Asset{}, err
	}

	src, err := os.Open(localPath)
	if err != nil {
		return Asset{}, fmt.Errorf("opening source: %w", err)
	}
	defer func() { _ = src.Close() }()

	ext := strings.ToLower(filepath.Ext(localPath))
	rel := path.Join(s.now().UTC().Format("2006/01"), uuid.New().String()+ext)
	dst := filepath.Join(s.root, filepath.FromSlash(rel))

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return Asset{}, fmt.Errorf("creating directory: %w", err)
	}

	out, err := os.Create(dst)
	if err != nil {
		return Asset{}, fmt.Errorf("creating file: %w", err)
	}

	size, err := io.Copy(out, src)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(dst)
		return Asset{}, fmt.Errorf("writing file: %w", err)
	}

	return Asset{
		URL:  s.baseURL + "/uploads/" + rel,
		Path: dst,
		Size: size,
	}, nil
}

// Remove deletes an asset stored under the uploads root. A missing file is
// not an error.
func (s *LocalStore) Remove(_ context.Context, a Asset) error {
	rel, err := filepath.Rel(s.root, a.Path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") || filepath.IsAbs(rel) {
		return fmt.Errorf("asset %q is outside the uploads dir", a.Path)
	}
	if err := os.Remove(a.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing asset: %w", err)
	}
	return nil
}

// WriteTemp writes data to a new temporary file with the given extension and
// returns its path. The caller owns the file.
func WriteTemp(data []byte, ext string) (string, error) {
	f, err := os.CreateTemp("", "exhibit-*"+ext)
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	name := f.Name()

	_, err = f.Write(data)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(name)
		return "", fmt.Errorf("writing temp file: %w", err)
	}
	return name, nil
}
