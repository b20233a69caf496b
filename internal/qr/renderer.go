package qr

import (
	"encoding/base64"
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

const imageSize = 256

// Renderer maps ticket codes onto scannable images. The payload is the
// public verification URL, so any phone camera resolves a ticket straight
// to the door's verdict page.
type Renderer struct {
	baseURL string
}

func NewRenderer(baseURL string) *Renderer {
	return &Renderer{baseURL: strings.TrimRight(baseURL, "/")}
}

func (r *Renderer) PayloadURL(code string) string {
	return fmt.Sprintf("%s/verify/%s", r.baseURL, code)
}

func (r *Renderer) PNG(code string) ([]byte, error) {
	png, err := qrcode.Encode(r.PayloadURL(code), qrcode.Medium, imageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to render QR code: %w", err)
	}
	return png, nil
}

// DataURL renders the code as an inline image for email embedding.
func (r *Renderer) DataURL(code string) (string, error) {
	png, err := r.PNG(code)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
