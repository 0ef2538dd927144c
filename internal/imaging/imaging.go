// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package imaging downscales uploaded images before they are embedded in
// the portfolio document. Images no wider than the limit are returned
// untouched; wider ones are resampled to the limit, preserving aspect
// ratio, and re-encoded in a web format.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// DefaultMaxWidth is the widest image kept as uploaded.
const DefaultMaxWidth = 1920

// jpegQuality is used when re-encoding photographs.
const jpegQuality = 85

// Result is a possibly downscaled image.
type Result struct {
	Data        []byte
	ContentType string
	Width       int
	Height      int
	Scaled      bool
}

// Scalable reports whether Downscale can process the content type.
// Animated GIFs are left alone since resampling keeps only one frame.
func Scalable(contentType string) bool {
	switch contentType {
	case "image/jpeg", "image/png", "image/webp":
		return true
	}
	return false
}

// Downscale shrinks data to at most maxWidth pixels wide. JPEG input is
// re-encoded as JPEG; PNG and WebP (which may carry alpha) as PNG.
func Downscale(data []byte, contentType string, maxWidth int) (Result, error) {
	if maxWidth <= 0 {
		maxWidth = DefaultMaxWidth
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Result{}, fmt.Errorf("imaging: probe failed: %w", err)
	}
	if cfg.Width <= maxWidth {
		return Result{Data: data, ContentType: contentType, Width: cfg.Width, Height: cfg.Height}, nil
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Result{}, fmt.Errorf("imaging: decode failed: %w", err)
	}

	w := maxWidth
	h := max(cfg.Height*maxWidth/cfg.Width, 1)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	out := "image/png"
	if contentType == "image/jpeg" {
		out = "image/jpeg"
		err = jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality})
	} else {
		err = png.Encode(&buf, dst)
	}
	if err != nil {
		return Result{}, fmt.Errorf("imaging: encode %s: %w", out, err)
	}

	return Result{Data: buf.Bytes(), ContentType: out, Width: w, Height: h, Scaled: true}, nil
}
