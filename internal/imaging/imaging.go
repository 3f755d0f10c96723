// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package imaging inspects uploaded post and point images. It decodes only
// the image header, so a multi-megabyte upload is checked without being
// rasterised.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"net/http"

	_ "golang.org/x/image/webp" // register WebP decoder
)

// MaxPixels caps width*height so a small file cannot decode into a huge
// bitmap later. 10000x10000 = 100 million pixels.
const MaxPixels = 100_000_000

var (
	// ErrNotImage is returned for uploads that are not a supported image.
	ErrNotImage = errors.New("not a supported image")
	// ErrTooLarge is returned when the image dimensions exceed MaxPixels.
	ErrTooLarge = errors.New("image dimensions too large")
)

// allowedTypes maps sniffed MIME types to the file extension stored.
var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Info describes an accepted image.
type Info struct {
	ContentType string
	Ext         string // with leading dot
	Width       int
	Height      int
}

// Inspect sniffs the content type of data and reads its dimensions.
func Inspect(data []byte) (Info, error) {
	contentType := http.DetectContentType(data)
	ext, ok := allowedTypes[contentType]
	if !ok {
		return Info{}, fmt.Errorf("%w: %s", ErrNotImage, contentType)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Info{}, fmt.Errorf("%w: %v", ErrNotImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return Info{}, ErrNotImage
	}
	if cfg.Width*cfg.Height > MaxPixels {
		return Info{}, fmt.Errorf("%w: %dx%d", ErrTooLarge, cfg.Width, cfg.Height)
	}

	return Info{
		ContentType: contentType,
		Ext:         ext,
		Width:       cfg.Width,
		Height:      cfg.Height,
	}, nil
}
