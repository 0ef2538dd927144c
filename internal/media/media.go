// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package media turns uploaded files into MediaRefs. Without object
// storage a file becomes a base64 data URL embedded in the document; with
// storage configured it is uploaded and referenced by its public URL.
package media

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"folio/internal/imaging"
	"folio/internal/models"
)

var (
	// ErrTooLarge is returned for files over models.MaxMediaBytes.
	ErrTooLarge = errors.New("file exceeds 50 MiB")
	// ErrUnsupported is returned for files that are neither images nor videos.
	ErrUnsupported = errors.New("only images and videos can be uploaded")
)

// ObjectStore uploads public objects.
type ObjectStore interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	FileURL(key string) string
}

// Option configures an Encoder.
type Option func(*Encoder)

// WithStore uploads files to s instead of embedding them.
func WithStore(s ObjectStore) Option {
	return func(e *Encoder) { e.store = s }
}

// WithMaxWidth sets the width above which images are downscaled.
func WithMaxWidth(px int) Option {
	return func(e *Encoder) { e.maxWidth = px }
}

// Encoder converts uploads into MediaRefs.
type Encoder struct {
	store    ObjectStore
	maxWidth int
}

// NewEncoder returns an Encoder that embeds data URLs unless WithStore is
// given.
func NewEncoder(opts ...Option) *Encoder {
	e := &Encoder{maxWidth: imaging.DefaultMaxWidth}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Encode reads a file of the declared size and returns its ref. The
// declared size is checked before reading so oversized uploads are
// rejected without buffering them.
func (e *Encoder) Encode(ctx context.Context, r io.Reader, name string, size int64) (models.MediaRef, error) {
	data, contentType, err := read(r, name, size)
	if err != nil {
		return "", err
	}

	if imaging.Scalable(contentType) {
		res, err := imaging.Downscale(data, contentType, e.maxWidth)
		if err != nil {
			slog.Warn("downscale failed, embedding original", "name", name, "error", err)
		} else {
			data, contentType = res.Data, res.ContentType
		}
	}

	if e.store == nil {
		return dataURL(contentType, data), nil
	}

	key := objectKey(contentType, name)
	if err := e.store.Upload(ctx, key, contentType, bytes.NewReader(data), int64(len(data))); err != nil {
		return "", fmt.Errorf("store upload: %w", err)
	}
	return models.MediaRef(e.store.FileURL(key)), nil
}

// Encode returns the file as a data URL without downscaling.
func Encode(r io.Reader, name string, size int64) (models.MediaRef, error) {
	data, contentType, err := read(r, name, size)
	if err != nil {
		return "", err
	}
	return dataURL(contentType, data), nil
}

func read(r io.Reader, name string, size int64) ([]byte, string, error) {
	if size > models.MaxMediaBytes {
		return nil, "", ErrTooLarge
	}
	data, err := io.ReadAll(io.LimitReader(r, models.MaxMediaBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("read upload: %w", err)
	}
	if len(data) > models.MaxMediaBytes {
		return nil, "", ErrTooLarge
	}
	contentType := Detect(data, name)
	if !strings.HasPrefix(contentType, "image/") && !strings.HasPrefix(contentType, "video/") {
		return nil, "", fmt.Errorf("%w: %s", ErrUnsupported, contentType)
	}
	return data, contentType, nil
}

// Detect sniffs the content type of data, falling back to the extension
// of name when the content is not recognized.
func Detect(data []byte, name string) string {
	ct, _, _ := strings.Cut(http.DetectContentType(data), ";")
	if ct != "application/octet-stream" && !strings.HasPrefix(ct, "text/") {
		return ct
	}
	ext := strings.ToLower(filepath.Ext(name))
	if byExt, ok := extTypes[ext]; ok {
		return byExt
	}
	if byExt := mime.TypeByExtension(ext); byExt != "" {
		byExt, _, _ = strings.Cut(byExt, ";")
		return byExt
	}
	return ct
}

// extTypes covers formats the content sniffer does not recognize.
var extTypes = map[string]string{
	".mov":  "video/quicktime",
	".m4v":  "video/mp4",
	".mp4":  "video/mp4",
	".webm": "video/webm",
	".avif": "image/avif",
	".heic": "image/heic",
	".svg":  "image/svg+xml",
}

func dataURL(contentType string, data []byte) models.MediaRef {
	return models.MediaRef("data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data))
}

func objectKey(contentType, name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	switch contentType {
	case "image/png":
		ext = ".png"
	case "image/jpeg":
		ext = ".jpg"
	}
	return "media/" + uuid.NewString() + ext
}
