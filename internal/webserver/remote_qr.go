package webserver

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/nantokaworks/wheel-overlay/internal/shared/logger"
	qrcode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"
)

// handleRemoteQR はオーバーレイURLのQRコードをPNGで返す。
// スマートフォン等の別端末でホイールを開くためのもの。
func handleRemoteQR(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	size := 256
	if raw := r.URL.Query().Get("size"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 64 || parsed > 1024 {
			http.Error(w, "Invalid size", http.StatusBadRequest)
			return
		}
		size = parsed
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	overlayURL := fmt.Sprintf("%s://%s/", scheme, r.Host)

	png, err := qrcode.Encode(overlayURL, qrcode.Medium, size)
	if err != nil {
		logger.Error("Failed to encode QR code", zap.Error(err))
		http.Error(w, "Failed to encode QR code", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

// RegisterRemoteRoutes はリモートアクセス関連のルートを登録
func RegisterRemoteRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/remote/qr", corsMiddleware(handleRemoteQR))
}
