package service

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"log"

	"github.com/disintegration/imaging"
	"github.com/kolesa-team/go-webp/encoder"
	"github.com/kolesa-team/go-webp/webp"

	"wordmark/models"
)

const (
	// Quality settings
	jpegQuality = 95
	webpQuality = 90
)

// EncodeRaster encodes img in a raster format. JPEG has no alpha channel, so
// the image is flattened onto background first.
func EncodeRaster(img image.Image, format models.DownloadFormat, background color.Color) ([]byte, error) {
	var buf bytes.Buffer

	switch format {
	case models.FormatPNG:
		if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
			return nil, fmt.Errorf("failed to encode to PNG: %w", err)
		}
	case models.FormatJPEG:
		flat := flatten(img, background)
		if err := imaging.Encode(&buf, flat, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
			return nil, fmt.Errorf("failed to encode to JPEG: %w", err)
		}
	case models.FormatWebP:
		opts, err := encoder.NewLossyEncoderOptions(encoder.PresetDefault, webpQuality)
		if err != nil {
			return nil, fmt.Errorf("failed to build WebP options: %w", err)
		}
		if err := webp.Encode(&buf, img, opts); err != nil {
			return nil, fmt.Errorf("failed to encode to WebP: %w", err)
		}
	case models.FormatSVG:
		return nil, fmt.Errorf("svg is not a raster format")
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}

	log.Printf("📸 Encoded %s: bounds=%v, output_size=%d bytes", format, img.Bounds(), buf.Len())
	return buf.Bytes(), nil
}

// TranscodePNG converts a PNG screenshot into format. PNG input is returned as is.
func TranscodePNG(data []byte, format models.DownloadFormat, background color.Color) ([]byte, error) {
	if format == models.FormatPNG {
		return data, nil
	}
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return EncodeRaster(img, format, background)
}

func flatten(img image.Image, background color.Color) image.Image {
	if background == nil {
		background = color.White
	}
	b := img.Bounds()
	bg := imaging.New(b.Dx(), b.Dy(), background)
	return imaging.Overlay(bg, img, image.Pt(0, 0), 1.0)
}

// ParseColor converts an editor color into a color.Color. Hex is canonical;
// the RGB channels are only used when the hex value does not parse.
func ParseColor(c models.Color) color.NRGBA {
	alpha := c.RGB.A
	if alpha <= 0 || alpha > 1 {
		alpha = 1
	}
	if r, g, b, ok := parseHex(c.Hex); ok {
		return color.NRGBA{R: r, G: g, B: b, A: uint8(alpha * 255)}
	}
	return color.NRGBA{
		R: clampByte(c.RGB.R),
		G: clampByte(c.RGB.G),
		B: clampByte(c.RGB.B),
		A: uint8(alpha * 255),
	}
}

func parseHex(hex string) (r, g, b uint8, ok bool) {
	if len(hex) > 0 && hex[0] == '#' {
		hex = hex[1:]
	}
	var format string
	switch len(hex) {
	case 3:
		format = "%1x%1x%1x"
	case 6, 8:
		format = "%02x%02x%02x"
		hex = hex[:6]
	default:
		return 0, 0, 0, false
	}
	if _, err := fmt.Sscanf(hex, format, &r, &g, &b); err != nil {
		return 0, 0, 0, false
	}
	if len(hex) == 3 {
		r, g, b = r*17, g*17, b*17
	}
	return r, g, b, true
}

func clampByte(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v + 0.5)
}
