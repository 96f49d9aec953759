package utils

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // register jpeg decoder
	_ "image/png"  // register png decoder
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrInvalidImage is returned when an uploaded image payload is not a
// decodable png or jpeg data URI.
var ErrInvalidImage = errors.New("invalid image payload")

// maxImageBytes bounds decoded crop images to 5 MiB.
const maxImageBytes = 5 << 20

// SaveDataURIImage decodes a base64 data URI ("data:image/png;base64,...")
// and writes the file under dir/crops. The decoded bytes must parse as a
// real png or jpeg. It returns the stored path relative to dir.
func SaveDataURIImage(dir, dataURI string) (string, error) {
	payload, ok := strings.CutPrefix(dataURI, "data:image/")
	if !ok {
		return "", ErrInvalidImage
	}
	semi := strings.Index(payload, ";base64,")
	if semi < 0 {
		return "", ErrInvalidImage
	}
	raw, err := base64.StdEncoding.DecodeString(payload[semi+len(";base64,"):])
	if err != nil || len(raw) == 0 || len(raw) > maxImageBytes {
		return "", ErrInvalidImage
	}

	// Decode to verify the payload really is an image; the registered
	// format decides the stored extension regardless of the declared type.
	_, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil || (format != "png" && format != "jpeg") {
		return "", ErrInvalidImage
	}
	ext := ".png"
	if format == "jpeg" {
		ext = ".jpg"
	}

	sub := filepath.Join(dir, "crops")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		return "", err
	}
	name := fmt.Sprintf("crop_%d%s", time.Now().UTC().UnixNano(), ext)
	if err := os.WriteFile(filepath.Join(sub, name), raw, 0o644); err != nil {
		return "", err
	}
	return filepath.Join("crops", name), nil
}
