// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testImageBytes(t *testing.T, width, height int, encode func(*bytes.Buffer, image.Image) error) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, encode(&buf, img), "encoding test image")
	return buf.Bytes()
}

func encodePNG(buf *bytes.Buffer, img image.Image) error {
	return png.Encode(buf, img)
}

func encodeJPEG(buf *bytes.Buffer, img image.Image) error {
	return jpeg.Encode(buf, img, nil)
}

func TestProcessPoster(t *testing.T) {
	dir := t.TempDir()
	p := NewProcessor(dir)

	data := testImageBytes(t, 100, 80, encodeJPEG)
	result, err := p.ProcessPoster(bytes.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, 100, result.Width)
	assert.Equal(t, 80, result.Height)
	assert.True(t, strings.HasSuffix(result.Filename, ".jpg"), "Filename = %q, want .jpg suffix", result.Filename)

	_, err = os.Stat(filepath.Join(dir, result.Filename))
	assert.NoError(t, err, "stored file missing")
}

func TestProcessPosterScalesDown(t *testing.T) {
	dir := t.TempDir()
	p := NewProcessor(dir)

	data := testImageBytes(t, maxPosterWidth*2, 600, encodePNG)
	result, err := p.ProcessPoster(bytes.NewReader(data))
	require.NoError(t, err)

	assert.LessOrEqual(t, result.Width, maxPosterWidth)
	assert.LessOrEqual(t, result.Height, maxPosterHeight)
	assert.True(t, strings.HasSuffix(result.Filename, ".png"), "Filename = %q, want .png suffix", result.Filename)
}

func TestProcessPosterRejectsNonImage(t *testing.T) {
	p := NewProcessor(t.TempDir())

	_, err := p.ProcessPoster(strings.NewReader("just some text"))
	assert.Error(t, err, "non-image data must be rejected")
}

func TestDeletePoster(t *testing.T) {
	dir := t.TempDir()
	p := NewProcessor(dir)

	data := testImageBytes(t, 10, 10, encodeJPEG)
	result, err := p.ProcessPoster(bytes.NewReader(data))
	require.NoError(t, err)

	require.NoError(t, p.DeletePoster(result.Filename))
	_, err = os.Stat(filepath.Join(dir, result.Filename))
	assert.True(t, os.IsNotExist(err), "poster file should be gone")

	// Deleting again is fine.
	assert.NoError(t, p.DeletePoster(result.Filename))

	// filepath.Base strips the traversal; only empty names fail.
	assert.NoError(t, p.DeletePoster("../escape.jpg"))
}

func TestIsSupportedType(t *testing.T) {
	p := NewProcessor(t.TempDir())

	for _, mt := range []string{"image/jpeg", "image/png", "image/gif", "image/webp"} {
		assert.True(t, p.IsSupportedType(mt), "IsSupportedType(%q)", mt)
	}
	for _, mt := range []string{"image/tiff", "application/pdf", "text/html"} {
		assert.False(t, p.IsSupportedType(mt), "IsSupportedType(%q)", mt)
	}
}
