package detector

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"testing"
)

func TestValidateImage(t *testing.T) {
	pngData := testPNG(t, 40, 20)

	tests := []struct {
		name     string
		data     []byte
		maxBytes int64
		code     string
	}{
		{"empty", nil, DefaultMaxBytes, CodeEmpty},
		{"too large", pngData, int64(len(pngData) - 1), CodeTooLarge},
		{"plain text", []byte("just some text, not an image"), DefaultMaxBytes, CodeUnsupported},
		{"pdf", []byte("%PDF-1.4\n%âãÏÓ\n"), DefaultMaxBytes, CodeUnsupported},
		{"truncated png", []byte("\x89PNG\r\n\x1a\nnot really a png"), DefaultMaxBytes, CodeCorrupt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateImage(tt.data, "", tt.maxBytes)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Code != tt.code {
				t.Errorf("code = %q, want %q", verr.Code, tt.code)
			}
		})
	}
}

func TestValidateImage_PNG(t *testing.T) {
	data := testPNG(t, 40, 20)

	info, err := ValidateImage(data, "image/jpeg", DefaultMaxBytes)
	if err != nil {
		t.Fatalf("ValidateImage failed: %v", err)
	}

	// The sniffed type wins over the declared one.
	if info.MIMEType != "image/png" {
		t.Errorf("MIMEType = %q, want image/png", info.MIMEType)
	}
	if info.Width != 40 || info.Height != 20 {
		t.Errorf("dimensions = %dx%d, want 40x20", info.Width, info.Height)
	}
	if info.Size != len(data) {
		t.Errorf("Size = %d, want %d", info.Size, len(data))
	}
}

func TestValidateImage_GIF(t *testing.T) {
	img := image.NewPaletted(image.Rect(0, 0, 8, 8), []color.Color{color.Black, color.White})
	var buf bytes.Buffer
	if err := gif.Encode(&buf, img, nil); err != nil {
		t.Fatal(err)
	}

	info, err := ValidateImage(buf.Bytes(), "", DefaultMaxBytes)
	if err != nil {
		t.Fatalf("ValidateImage failed: %v", err)
	}
	if info.MIMEType != "image/gif" {
		t.Errorf("MIMEType = %q, want image/gif", info.MIMEType)
	}
}

// webp1x1 is a 1x1 lossless (VP8L) WebP image.
const webp1x1 = "UklGRhoAAABXRUJQVlA4TA0AAAAvAAAAEAcQERGIiP4HAA=="

func TestValidateImage_WebP(t *testing.T) {
	data, err := base64.StdEncoding.DecodeString(webp1x1)
	if err != nil {
		t.Fatal(err)
	}

	info, err := ValidateImage(data, "", DefaultMaxBytes)
	if err != nil {
		t.Fatalf("ValidateImage failed: %v", err)
	}
	if info.MIMEType != "image/webp" {
		t.Errorf("MIMEType = %q, want image/webp", info.MIMEType)
	}
	if info.Width != 1 || info.Height != 1 {
		t.Errorf("dimensions = %dx%d, want 1x1", info.Width, info.Height)
	}
}

func TestValidateImage_DeclaredTypeIgnored(t *testing.T) {
	webp, err := base64.StdEncoding.DecodeString(webp1x1)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		data     []byte
		declared string
		want     string
	}{
		{"webp declared as png", webp, "image/png", "image/webp"},
		{"png declared as webp", testPNG(t, 4, 4), "image/webp", "image/png"},
		{"png declared as text", testPNG(t, 4, 4), "text/plain", "image/png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := ValidateImage(tt.data, tt.declared, DefaultMaxBytes)
			if err != nil {
				t.Fatalf("ValidateImage failed: %v", err)
			}
			if info.MIMEType != tt.want {
				t.Errorf("MIMEType = %q, want %q", info.MIMEType, tt.want)
			}
		})
	}

	// A lying declared type does not rescue unsupported content.
	_, err = ValidateImage([]byte("plain text"), "image/png", DefaultMaxBytes)
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Code != CodeUnsupported {
		t.Fatalf("expected unsupported_type, got %v", err)
	}
}

func TestIsSupportedType(t *testing.T) {
	for _, ct := range []string{"image/jpeg", "image/png", "image/gif", "image/webp"} {
		if !IsSupportedType(ct) {
			t.Errorf("%s should be supported", ct)
		}
	}
	for _, ct := range []string{"image/bmp", "image/tiff", "application/pdf", ""} {
		if IsSupportedType(ct) {
			t.Errorf("%s should not be supported", ct)
		}
	}
}

func TestPrepareImage_Downscale(t *testing.T) {
	data := testPNG(t, 200, 100)
	info, err := ValidateImage(data, "", DefaultMaxBytes)
	if err != nil {
		t.Fatal(err)
	}

	out, mimeType, err := PrepareImage(data, info, 50)
	if err != nil {
		t.Fatalf("PrepareImage failed: %v", err)
	}
	if mimeType != "image/jpeg" {
		t.Errorf("mimeType = %q, want image/jpeg", mimeType)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("output does not decode: %v", err)
	}
	if format != "jpeg" {
		t.Errorf("format = %q, want jpeg", format)
	}
	if cfg.Width != 50 || cfg.Height != 25 {
		t.Errorf("resized to %dx%d, want 50x25", cfg.Width, cfg.Height)
	}
}

func TestPrepareImage_Unchanged(t *testing.T) {
	data := testPNG(t, 30, 30)
	info, err := ValidateImage(data, "", DefaultMaxBytes)
	if err != nil {
		t.Fatal(err)
	}

	for _, maxDim := range []int{0, 30, 1536} {
		out, mimeType, err := PrepareImage(data, info, maxDim)
		if err != nil {
			t.Fatalf("PrepareImage(%d) failed: %v", maxDim, err)
		}
		if !bytes.Equal(out, data) || mimeType != "image/png" {
			t.Errorf("PrepareImage(%d) should return the input untouched", maxDim)
		}
	}
}

func TestSniffType(t *testing.T) {
	if got := SniffType(testPNG(t, 2, 2)); got != "image/png" {
		t.Errorf("SniffType(png) = %q", got)
	}
	if got := SniffType([]byte("hello")); got != "text/plain" {
		t.Errorf("SniffType(text) = %q, want parameters stripped", got)
	}
}
