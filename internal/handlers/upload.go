// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"myblog/internal/imaging"
)

// maxUploadSize is the maximum accepted image upload (10 MB).
const maxUploadSize = 10 << 20

// ImageStore saves and removes uploaded images. Implemented by
// *storage.Images.
type ImageStore interface {
	SavePostImage(ctx context.Context, filename string, data []byte) (string, error)
	SavePointImage(ctx context.Context, postID uuid.UUID, filename string, data []byte) (string, error)
	Delete(ctx context.Context, key string) error
}

var errUploadTooLarge = errors.New("upload too large")

// readUpload returns the bytes of the optional file field. A form without
// the file returns empty data and no error.
func readUpload(w http.ResponseWriter, r *http.Request, field string) ([]byte, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+1<<20)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return nil, "", errUploadTooLarge
	}

	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("read upload: %w", err)
	}
	defer file.Close()

	if header.Size > maxUploadSize {
		return nil, "", errUploadTooLarge
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", fmt.Errorf("read upload: %w", err)
	}
	return data, header.Filename, nil
}

// uploadMessage turns an upload or image error into a form message.
func uploadMessage(err error) string {
	switch {
	case errors.Is(err, errUploadTooLarge):
		return "The file is too large. Maximum size is 10 MB."
	case errors.Is(err, imaging.ErrNotImage):
		return "Upload a valid image. The file you uploaded was either not an image or a corrupted image."
	case errors.Is(err, imaging.ErrTooLarge):
		return "The image dimensions are too large."
	default:
		return "The image could not be saved."
	}
}
