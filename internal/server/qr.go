package server

import (
	"net/http"

	"github.com/skip2/go-qrcode"
)

const qrSize = 256

// QRHandler serves a PNG QR code linking to the quiz page.
type QRHandler struct {
	url string
}

// NewQRHandler creates a QRHandler for url. An empty url uses the request host.
func NewQRHandler(url string) *QRHandler {
	return &QRHandler{url: url}
}

func (h *QRHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	png, err := qrcode.Encode(h.target(r), qrcode.Medium, qrSize)
	if err != nil {
		http.Error(w, "Failed to encode QR code", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(png)
}

func (h *QRHandler) target(r *http.Request) string {
	if h.url != "" {
		return h.url
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + "/"
}
