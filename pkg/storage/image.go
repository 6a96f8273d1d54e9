package storage

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// Magic byte signatures for allowed avatar types.
var magicBytes = map[string][][]byte{
	"image/jpeg": {{0xFF, 0xD8, 0xFF}},
	"image/png":  {{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}},
	"image/gif":  {{0x47, 0x49, 0x46, 0x38, 0x37, 0x61}, {0x47, 0x49, 0x46, 0x38, 0x39, 0x61}}, // GIF87a & GIF89a
	"image/webp": {{0x52, 0x49, 0x46, 0x46}},                                                   // RIFF header
}

const (
	// MaxAvatarBytes caps the accepted upload size before decoding.
	MaxAvatarBytes = 5 << 20 // 5 MiB

	maxAvatarDim = 512
)

var ErrUnsupportedImage = errors.New("storage: unsupported image type")

// SniffImageType matches the payload against the magic-byte whitelist and
// returns the detected MIME type. Extension claims are ignored; only content
// counts.
func SniffImageType(data []byte) (string, error) {
	for mime, sigs := range magicBytes {
		for _, sig := range sigs {
			if len(data) >= len(sig) && bytes.Equal(data[:len(sig)], sig) {
				return mime, nil
			}
		}
	}
	return "", ErrUnsupportedImage
}

// NormalizeAvatar validates, decodes and downscales an avatar image to at
// most maxAvatarDim on the longest edge, re-encoding as JPEG.
func NormalizeAvatar(data []byte) ([]byte, string, error) {
	if len(data) > MaxAvatarBytes {
		return nil, "", fmt.Errorf("storage: avatar exceeds %d bytes", MaxAvatarBytes)
	}
	if _, err := SniffImageType(data); err != nil {
		return nil, "", err
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("storage: decode avatar: %w", err)
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > maxAvatarDim || h > maxAvatarDim {
		scale := float64(maxAvatarDim) / float64(max(w, h))
		dst := image.NewRGBA(image.Rect(0, 0, int(float64(w)*scale), int(float64(h)*scale)))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
		src = dst
	}

	var out bytes.Buffer
	if err := jpeg.Encode(&out, src, &jpeg.Options{Quality: 85}); err != nil {
		return nil, "", fmt.Errorf("storage: encode avatar: %w", err)
	}
	return out.Bytes(), "image/jpeg", nil
}
