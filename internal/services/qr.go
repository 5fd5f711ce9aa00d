package services

import (
	"github.com/skip2/go-qrcode"
)

// GenerateQRCode renders a PNG QR code for a tracked link's public URL.
func GenerateQRCode(content string, size int) ([]byte, error) {
	if size <= 0 {
		size = 256
	}

	qr, err := qrcode.New(content, qrcode.Medium)
	if err != nil {
		return nil, err
	}

	return qr.PNG(size)
}
