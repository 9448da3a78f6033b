package services

import (
	"encoding/base64"

	qrcode "github.com/skip2/go-qrcode"
)

// DefaultQRSize is the edge length in pixels of generated QR codes.
const DefaultQRSize = 256

// QRService renders short URLs as QR codes.
type QRService struct{}

// PNG returns the QR code of text as a PNG image.
func (s QRService) PNG(text string, size int) ([]byte, error) {
	return qrcode.Encode(text, qrcode.Medium, size)
}

// MakeBase64 returns the QR code of text as a data URL.
func (s QRService) MakeBase64(text string, size int) (string, error) {
	png, err := s.PNG(text, size)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
