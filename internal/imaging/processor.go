// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package imaging normalizes uploaded pictures: EXIF orientation is applied,
// oversized images are scaled down and avatars are cropped square.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/webp" // WebP decoder
)

// Supported formats, named by their canonical file extension.
const (
	FormatJPEG = "jpg"
	FormatPNG  = "png"
	FormatGIF  = "gif"
	FormatWebP = "webp"
)

// DefaultQuality is the JPEG quality of re-encoded images.
const DefaultQuality = 88

// ErrUnsupportedFormat is returned for formats outside the supported set.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Mode selects how an image is fitted to the size bound.
type Mode int

// Fitting modes.
const (
	// ModeFit scales the image down so neither side exceeds the bound.
	ModeFit Mode = iota
	// ModeSquare crops the centre square and scales it to the bound.
	ModeSquare
)

// Options control Normalize.
type Options struct {
	Mode    Mode
	MaxDim  int
	Quality int
}

// Result is a normalized image ready to be written.
type Result struct {
	Data   []byte
	Format string
	Width  int
	Height int
}

// Normalize decodes data in the given format and returns it oriented and
// bounded by opts. Images that need no change are returned byte for byte,
// which keeps animated GIFs intact. Re-encoded WebP images become JPEG
// since there is no pure Go WebP encoder.
func Normalize(data []byte, format string, opts Options) (*Result, error) {
	if !IsSupported(format) {
		return nil, ErrUnsupportedFormat
	}
	if opts.Quality <= 0 {
		opts.Quality = DefaultQuality
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	orientation := 1
	if format == FormatJPEG {
		orientation = readExifOrientation(bytes.NewReader(data))
	}
	bounds := img.Bounds()
	if orientation == 1 && !needsResize(bounds.Dx(), bounds.Dy(), opts) {
		return &Result{Data: data, Format: format, Width: bounds.Dx(), Height: bounds.Dy()}, nil
	}

	img = applyOrientation(img, orientation)
	img = resize(img, opts)

	out := format
	if out == FormatWebP {
		out = FormatJPEG
	}
	encoded, err := encodeImage(img, out, opts.Quality)
	if err != nil {
		return nil, fmt.Errorf("encoding image: %w", err)
	}

	b := img.Bounds()
	return &Result{Data: encoded, Format: out, Width: b.Dx(), Height: b.Dy()}, nil
}

// IsSupported reports whether format is one Normalize accepts.
func IsSupported(format string) bool {
	switch format {
	case FormatJPEG, FormatPNG, FormatGIF, FormatWebP:
		return true
	default:
		return false
	}
}

func needsResize(w, h int, opts Options) bool {
	if opts.MaxDim <= 0 {
		return opts.Mode == ModeSquare && w != h
	}
	if opts.Mode == ModeSquare {
		return w != h || w > opts.MaxDim
	}
	return w > opts.MaxDim || h > opts.MaxDim
}

func resize(img image.Image, opts Options) image.Image {
	b := img.Bounds()
	switch {
	case opts.Mode == ModeSquare:
		side := min(b.Dx(), b.Dy())
		if opts.MaxDim > 0 && side > opts.MaxDim {
			side = opts.MaxDim
		}
		return imaging.Fill(img, side, side, imaging.Center, imaging.Lanczos)
	case opts.MaxDim > 0 && (b.Dx() > opts.MaxDim || b.Dy() > opts.MaxDim):
		return imaging.Fit(img, opts.MaxDim, opts.MaxDim, imaging.Lanczos)
	default:
		return img
	}
}

// readExifOrientation reads the EXIF orientation tag from image data.
// Returns 1 (normal) if orientation cannot be determined.
func readExifOrientation(r io.Reader) int {
	x, err := exif.Decode(r)
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	orientation, err := tag.Int(0)
	if err != nil || orientation < 1 || orientation > 8 {
		return 1
	}
	return orientation
}

// applyOrientation turns an image stored with EXIF orientation 2-8 upright.
func applyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.FlipH(imaging.Rotate270(img))
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.FlipH(imaging.Rotate90(img))
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}

func encodeImage(img image.Image, format string, quality int) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch format {
	case FormatPNG:
		err = png.Encode(&buf, img)
	case FormatGIF:
		err = gif.Encode(&buf, img, nil)
	default:
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality})
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
