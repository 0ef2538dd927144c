// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 72, G: 52, B: 212, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestDownscaleKeepsSmallImages(t *testing.T) {
	data := encodePNG(t, 100, 50)
	res, err := Downscale(data, "image/png", 200)
	if err != nil {
		t.Fatal(err)
	}
	if res.Scaled || !bytes.Equal(res.Data, data) {
		t.Error("small image was re-encoded")
	}
	if res.Width != 100 || res.Height != 50 {
		t.Errorf("size = %dx%d", res.Width, res.Height)
	}
}

func TestDownscalePreservesAspect(t *testing.T) {
	res, err := Downscale(encodePNG(t, 400, 300), "image/png", 200)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Scaled || res.Width != 200 || res.Height != 150 {
		t.Fatalf("got %dx%d scaled=%v", res.Width, res.Height, res.Scaled)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(res.Data))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 200 || cfg.Height != 150 {
		t.Errorf("encoded size = %dx%d", cfg.Width, cfg.Height)
	}
}

func TestDownscaleJPEGStaysJPEG(t *testing.T) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 300, 100)), nil); err != nil {
		t.Fatal(err)
	}
	res, err := Downscale(buf.Bytes(), "image/jpeg", 150)
	if err != nil {
		t.Fatal(err)
	}
	if res.ContentType != "image/jpeg" || res.Height != 50 {
		t.Errorf("got %s %dx%d", res.ContentType, res.Width, res.Height)
	}
}

func TestDownscaleRejectsGarbage(t *testing.T) {
	if _, err := Downscale([]byte("not an image"), "image/png", 100); err == nil {
		t.Error("expected error")
	}
}

func TestScalable(t *testing.T) {
	for ct, want := range map[string]bool{
		"image/jpeg": true, "image/png": true, "image/webp": true,
		"image/gif": false, "video/mp4": false,
	} {
		if got := Scalable(ct); got != want {
			t.Errorf("Scalable(%q) = %v", ct, got)
		}
	}
}
