// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrInvalidKey is returned for keys that would escape the media root.
var ErrInvalidKey = errors.New("invalid storage key")

// Disk stores objects as files under a root directory served at baseURL.
type Disk struct {
	root    string
	baseURL string
}

// NewDisk creates the root directory if needed.
func NewDisk(root, baseURL string) (*Disk, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create media root: %w", err)
	}
	return &Disk{root: root, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Root is the directory files are written to.
func (d *Disk) Root() string { return d.root }

func (d *Disk) path(key string) (string, error) {
	if key == "" || filepath.IsAbs(key) || !filepath.IsLocal(filepath.FromSlash(key)) {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(d.root, filepath.FromSlash(key)), nil
}

// Save writes body to the file for key, replacing any existing file.
func (d *Disk) Save(_ context.Context, key, _ string, body io.Reader, _ int64) error {
	p, err := d.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("disk mkdir %s: %w", key, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(p), ".upload-*")
	if err != nil {
		return fmt.Errorf("disk create %s: %w", key, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close()
		return fmt.Errorf("disk write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("disk close %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return fmt.Errorf("disk rename %s: %w", key, err)
	}
	return nil
}

// Delete removes the file for key. A missing file is not an error.
func (d *Disk) Delete(_ context.Context, key string) error {
	p, err := d.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("disk delete %s: %w", key, err)
	}
	return nil
}

// URL returns baseURL/key.
func (d *Disk) URL(key string) string {
	return d.baseURL + "/" + key
}

// Name identifies the backend in logs.
func (d *Disk) Name() string { return "disk" }
