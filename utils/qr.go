package utils

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// qrImageSize is the rendered PNG edge length in pixels.
const qrImageSize = 256

// EncodeQRDataURL marshals the payload to JSON and renders it as a QR
// PNG returned as a base64 data URL. Pure and synchronous; safe to call
// from inside a transaction-building path.
func EncodeQRDataURL(payload interface{}) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal QR payload: %w", err)
	}
	png, err := qrcode.Encode(string(data), qrcode.Medium, qrImageSize)
	if err != nil {
		return "", fmt.Errorf("failed to encode QR image: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
