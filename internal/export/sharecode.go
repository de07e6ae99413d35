package export

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/klauspost/compress/zstd"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/piwi3910/RoomFit/internal/project"
)

// shareVersion is bumped whenever the encoded layout shape changes.
const shareVersion = 1

type sharePayload struct {
	V      int                `json:"v"`
	Layout project.LayoutFile `json:"layout"`
}

// EncodeShareCode packs a layout into a short URL-safe string: JSON,
// zstd-compressed, base64url without padding.
func EncodeShareCode(f project.LayoutFile) (string, error) {
	raw, err := json.Marshal(sharePayload{V: shareVersion, Layout: f})
	if err != nil {
		return "", fmt.Errorf("encode layout: %w", err)
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		return "", err
	}
	defer enc.Close()
	return base64.RawURLEncoding.EncodeToString(enc.EncodeAll(raw, nil)), nil
}

// DecodeShareCode reverses EncodeShareCode. The result still has to be
// replayed through LayoutFile.Session to become a valid design.
func DecodeShareCode(code string) (project.LayoutFile, error) {
	packed, err := base64.RawURLEncoding.DecodeString(code)
	if err != nil {
		return project.LayoutFile{}, fmt.Errorf("share code is not base64url: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return project.LayoutFile{}, err
	}
	defer dec.Close()
	raw, err := dec.DecodeAll(packed, nil)
	if err != nil {
		return project.LayoutFile{}, fmt.Errorf("share code is corrupt: %w", err)
	}

	var p sharePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return project.LayoutFile{}, fmt.Errorf("share code payload: %w", err)
	}
	if p.V != shareVersion {
		return project.LayoutFile{}, fmt.Errorf("unsupported share code version %d", p.V)
	}
	return p.Layout, nil
}

// ShareQR renders the share code of a layout as a PNG QR code.
func ShareQR(f project.LayoutFile, size int) ([]byte, error) {
	code, err := EncodeShareCode(f)
	if err != nil {
		return nil, err
	}
	png, err := qrcode.Encode(code, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code: %w", err)
	}
	return png, nil
}
