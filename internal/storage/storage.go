// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package storage saves post and point images. Posts reference images by
// an opaque key such as "product_images/borshch-1a2b3c4d.jpg"; a Backend
// maps keys to bytes and to public URLs. Disk is the default, S3 is used
// when object storage credentials are configured.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"

	"myblog/internal/imaging"
	"myblog/internal/slug"
)

// Key prefixes for the two kinds of image.
const (
	PostImageDir  = "product_images"
	PointImageDir = "gallery_images"
)

// Backend stores objects by key.
type Backend interface {
	Save(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	Delete(ctx context.Context, key string) error
	URL(key string) string
	Name() string
}

// PostImageKey returns a fresh key for a post's main image.
func PostImageKey(filename, ext string) string {
	return path.Join(PostImageDir, fileName(filename, ext))
}

// PointImageKey returns a fresh key for an image attached to a point of
// the given post.
func PointImageKey(postID uuid.UUID, filename, ext string) string {
	return path.Join(PointImageDir, postID.String(), fileName(filename, ext))
}

// fileName slugs the uploaded name and adds a short random suffix so two
// uploads with the same name do not overwrite each other.
func fileName(filename, ext string) string {
	name := path.Base(strings.ReplaceAll(filename, `\`, "/"))
	stem := strings.TrimSuffix(name, path.Ext(name))
	base := slug.Generate(stem)
	if base == "" {
		base = "image"
	}
	return slug.Shorten(base, 80) + "-" + uuid.NewString()[:8] + ext
}

// Images validates uploads and writes them to a Backend.
type Images struct {
	backend Backend
}

// NewImages wraps backend.
func NewImages(backend Backend) *Images {
	return &Images{backend: backend}
}

// Backend returns the underlying backend.
func (im *Images) Backend() Backend { return im.backend }

// URL returns the public URL for a stored key. Empty keys map to "".
func (im *Images) URL(key string) string {
	if key == "" {
		return ""
	}
	return im.backend.URL(key)
}

// SavePostImage stores a post image and returns its key.
func (im *Images) SavePostImage(ctx context.Context, filename string, data []byte) (string, error) {
	return im.save(ctx, data, func(ext string) string { return PostImageKey(filename, ext) })
}

// SavePointImage stores a point image under the post's gallery directory.
func (im *Images) SavePointImage(ctx context.Context, postID uuid.UUID, filename string, data []byte) (string, error) {
	return im.save(ctx, data, func(ext string) string { return PointImageKey(postID, filename, ext) })
}

// Delete removes a stored image. An empty key is a no-op.
func (im *Images) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	return im.backend.Delete(ctx, key)
}

func (im *Images) save(ctx context.Context, data []byte, keyFor func(ext string) string) (string, error) {
	info, err := imaging.Inspect(data)
	if err != nil {
		return "", err
	}
	key := keyFor(info.Ext)
	if err := im.backend.Save(ctx, key, info.ContentType, bytes.NewReader(data), int64(len(data))); err != nil {
		return "", fmt.Errorf("save image: %w", err)
	}
	return key, nil
}
