// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package imaging processes uploaded event posters using pure Go libraries.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/webp" // WebP decoder
)

// Poster size bounds. Larger uploads are scaled down to fit.
const (
	maxPosterWidth  = 1600
	maxPosterHeight = 1200
	posterQuality   = 90
)

// Result contains the outcome of processing an uploaded poster.
type Result struct {
	// Filename is the stored file name inside the uploads directory.
	Filename string
	Width    int
	Height   int
	Size     int64
}

// Processor handles poster uploads for events.
type Processor struct {
	uploadDir string
}

// NewProcessor creates a poster processor writing into uploadDir.
func NewProcessor(uploadDir string) *Processor {
	return &Processor{uploadDir: uploadDir}
}

// ProcessPoster reads an uploaded image, normalizes its EXIF orientation,
// scales it to fit the poster bounds and saves it under a random name.
// The caller is responsible for bounding the reader's size.
func (p *Processor) ProcessPoster(reader io.Reader) (*Result, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("reading image data: %w", err)
	}

	format := detectFormat(data)
	if format == "" {
		return nil, fmt.Errorf("unsupported image format")
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	// Auto-rotate per EXIF before the metadata is lost on re-encode.
	orientation := readExifOrientation(bytes.NewReader(data))
	img = applyOrientation(img, orientation)

	bounds := img.Bounds()
	if bounds.Dx() > maxPosterWidth || bounds.Dy() > maxPosterHeight {
		img = imaging.Fit(img, maxPosterWidth, maxPosterHeight, imaging.Lanczos)
		bounds = img.Bounds()
	}

	processed, err := encodeImage(img, format, posterQuality)
	if err != nil {
		return nil, fmt.Errorf("encoding image: %w", err)
	}

	filename := uuid.NewString() + outputExtension(format)
	if err := p.savePosterFile(filename, processed); err != nil {
		return nil, err
	}

	return &Result{
		Filename: filename,
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
		Size:     int64(len(processed)),
	}, nil
}

// DeletePoster removes a stored poster file. Missing files are not an error.
func (p *Processor) DeletePoster(filename string) error {
	safe := filepath.Base(filename)
	if safe == "." || safe == ".." || safe == "" {
		return fmt.Errorf("invalid filename")
	}
	if err := os.Remove(filepath.Join(p.uploadDir, safe)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting poster: %w", err)
	}
	return nil
}

// IsSupportedType checks whether a MIME type can be processed.
func (p *Processor) IsSupportedType(mimeType string) bool {
	switch mimeType {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
		return true
	default:
		return false
	}
}

// DetectMimeType detects the MIME type of image data.
func (p *Processor) DetectMimeType(data []byte) string {
	contentType := http.DetectContentType(data)
	if idx := strings.Index(contentType, ";"); idx != -1 {
		contentType = contentType[:idx]
	}
	return contentType
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
	if err != nil {
		return 1
	}

	return orientation
}

// applyOrientation applies EXIF orientation transformation to an image.
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

// encodeImage encodes an image to bytes with the specified format and quality.
func encodeImage(img image.Image, format string, quality int) ([]byte, error) {
	var buf bytes.Buffer

	switch format {
	case "jpeg", "jpg":
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, err
		}
	case "png":
		if err := png.Encode(&buf, img); err != nil {
			return nil, err
		}
	case "gif":
		if err := gif.Encode(&buf, img, nil); err != nil {
			return nil, err
		}
	default:
		// WebP encoding is not available in pure Go; fall back to JPEG.
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, err
		}
	}

	return buf.Bytes(), nil
}

// detectFormat detects the image format from raw bytes.
func detectFormat(data []byte) string {
	contentType := http.DetectContentType(data)
	// Explicitly reject TIFF (CVE-2023-36308 in disintegration/imaging)
	if strings.Contains(contentType, "tiff") {
		return ""
	}
	switch {
	case strings.Contains(contentType, "jpeg"):
		return "jpeg"
	case strings.Contains(contentType, "png"):
		return "png"
	case strings.Contains(contentType, "gif"):
		return "gif"
	case strings.Contains(contentType, "webp"):
		return "webp"
	default:
		return ""
	}
}

// outputExtension returns the extension of the stored file for a format.
func outputExtension(format string) string {
	switch format {
	case "png":
		return ".png"
	case "gif":
		return ".gif"
	default:
		// webp is re-encoded as jpeg
		return ".jpg"
	}
}

// savePosterFile writes poster data into the upload directory, refusing any
// filename that would escape it.
func (p *Processor) savePosterFile(filename string, data []byte) error {
	safe := filepath.Base(filename)
	if safe == "." || safe == ".." || safe == "" {
		return fmt.Errorf("invalid filename")
	}

	if err := os.MkdirAll(p.uploadDir, 0755); err != nil {
		return fmt.Errorf("creating upload directory: %w", err)
	}

	if err := os.WriteFile(filepath.Join(p.uploadDir, safe), data, 0644); err != nil {
		return fmt.Errorf("saving poster: %w", err)
	}
	return nil
}
