package detector

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"net/http"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// ValidateImage checks that data is a supported, decodable image no larger
// than maxBytes. The content type is sniffed from the bytes; declaredType is
// only used in error messages when it disagrees.
func ValidateImage(data []byte, declaredType string, maxBytes int64) (*ImageInfo, error) {
	if len(data) == 0 {
		return nil, &ValidationError{Code: CodeEmpty, Message: "no image data"}
	}

	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, &ValidationError{
			Code:    CodeTooLarge,
			Message: fmt.Sprintf("image is %d bytes, limit is %d", len(data), maxBytes),
		}
	}

	mimeType := SniffType(data)
	if !IsSupportedType(mimeType) {
		msg := fmt.Sprintf("content type %s is not supported", mimeType)
		if declaredType != "" && declaredType != mimeType {
			msg += fmt.Sprintf(" (declared %s)", declaredType)
		}
		return nil, &ValidationError{Code: CodeUnsupported, Message: msg}
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, &ValidationError{Code: CodeCorrupt, Message: "cannot decode image header", Cause: err}
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, &ValidationError{Code: CodeCorrupt, Message: "image has no pixels"}
	}

	return &ImageInfo{
		MIMEType: mimeType,
		Width:    cfg.Width,
		Height:   cfg.Height,
		Size:     len(data),
	}, nil
}

// SniffType returns the content type of data with parameters stripped.
func SniffType(data []byte) string {
	ct := http.DetectContentType(data)
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.TrimSpace(ct)
}

// PrepareImage downscales images whose longest side exceeds maxDim and
// re-encodes them as JPEG. Smaller images are returned unchanged.
// A maxDim of zero or less disables downscaling.
func PrepareImage(data []byte, info *ImageInfo, maxDim int) ([]byte, string, error) {
	if maxDim <= 0 || (info.Width <= maxDim && info.Height <= maxDim) {
		return data, info.MIMEType, nil
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", &ValidationError{Code: CodeCorrupt, Message: "cannot decode image", Cause: err}
	}

	resized := imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.JPEG, imaging.JPEGQuality(90)); err != nil {
		return nil, "", fmt.Errorf("encoding resized image: %w", err)
	}

	return buf.Bytes(), "image/jpeg", nil
}
