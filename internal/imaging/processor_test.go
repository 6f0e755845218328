// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strconv"
	"testing"
)

// createTestImage creates a simple test image with the given dimensions.
func createTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func TestNormalize_SmallImageUntouched(t *testing.T) {
	data := encodePNG(t, createTestImage(40, 30))

	res, err := Normalize(data, FormatPNG, Options{MaxDim: 100})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if !bytes.Equal(res.Data, data) {
		t.Error("an image within bounds should be returned unchanged")
	}
	if res.Width != 40 || res.Height != 30 || res.Format != FormatPNG {
		t.Errorf("got %dx%d %s, want 40x30 png", res.Width, res.Height, res.Format)
	}
}

func TestNormalize_Fit(t *testing.T) {
	data := encodePNG(t, createTestImage(200, 100))

	res, err := Normalize(data, FormatPNG, Options{MaxDim: 50})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if res.Width != 50 || res.Height != 25 {
		t.Errorf("got %dx%d, want 50x25", res.Width, res.Height)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(res.Data))
	if err != nil {
		t.Fatalf("DecodeConfig: %v", err)
	}
	if format != "png" || cfg.Width != 50 {
		t.Errorf("encoded %s %dpx wide, want png 50px", format, cfg.Width)
	}
}

func TestNormalize_Square(t *testing.T) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, createTestImage(120, 80), nil); err != nil {
		t.Fatalf("jpeg.Encode: %v", err)
	}

	tests := []struct {
		maxDim int
		want   int
	}{
		{0, 80},
		{200, 80},
		{64, 64},
	}
	for _, tt := range tests {
		t.Run(strconv.Itoa(tt.maxDim), func(t *testing.T) {
			res, err := Normalize(buf.Bytes(), FormatJPEG, Options{Mode: ModeSquare, MaxDim: tt.maxDim})
			if err != nil {
				t.Fatalf("Normalize: %v", err)
			}
			if res.Width != tt.want || res.Height != tt.want {
				t.Errorf("got %dx%d, want %dx%d", res.Width, res.Height, tt.want, tt.want)
			}
			if res.Format != FormatJPEG {
				t.Errorf("format = %q, want jpg", res.Format)
			}
		})
	}
}

func TestNormalize_Errors(t *testing.T) {
	if _, err := Normalize([]byte("x"), "tiff", Options{}); err != ErrUnsupportedFormat {
		t.Errorf("tiff: err = %v, want ErrUnsupportedFormat", err)
	}
	if _, err := Normalize([]byte("not an image"), FormatPNG, Options{}); err == nil {
		t.Error("garbage data should fail to decode")
	}
}

func TestIsSupported(t *testing.T) {
	for format, want := range map[string]bool{
		FormatJPEG: true, FormatPNG: true, FormatGIF: true, FormatWebP: true,
		"jpeg": false, "tiff": false, "": false,
	} {
		if got := IsSupported(format); got != want {
			t.Errorf("IsSupported(%q) = %v, want %v", format, got, want)
		}
	}
}

func TestApplyOrientation(t *testing.T) {
	img := createTestImage(20, 10)

	for orientation := 0; orientation <= 9; orientation++ {
		t.Run("orientation_"+strconv.Itoa(orientation), func(t *testing.T) {
			b := applyOrientation(img, orientation).Bounds()
			rotated := orientation >= 5 && orientation <= 8
			if rotated && (b.Dx() != 10 || b.Dy() != 20) {
				t.Errorf("orientation %d: got %dx%d, want 10x20", orientation, b.Dx(), b.Dy())
			}
			if !rotated && (b.Dx() != 20 || b.Dy() != 10) {
				t.Errorf("orientation %d: got %dx%d, want 20x10", orientation, b.Dx(), b.Dy())
			}
		})
	}
}

func TestReadExifOrientation_NoExif(t *testing.T) {
	if got := readExifOrientation(bytes.NewReader(encodePNG(t, createTestImage(2, 2)))); got != 1 {
		t.Errorf("readExifOrientation = %d, want 1", got)
	}
}
