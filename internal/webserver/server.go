package webserver

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nantokaworks/wheel-overlay/internal/shared/logger"
	"go.uber.org/zap"
)

var httpServer *http.Server

// corsMiddleware adds CORS headers to HTTP handlers
func corsMiddleware(handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		handler(w, r)
	}
}

func StartWebServer(port int) error {
	mux := http.NewServeMux()

	// API endpoints - 静的配信より先に登録してAPIが優先されるようにする
	RegisterWheelRoutes(mux)
	RegisterSessionRoutes(mux)
	RegisterRemoteRoutes(mux)
	RegisterWebSocketRoute(mux)

	// Overlay static files (built separately; not required for the API to work)
	overlayDir := resolveOverlayDir()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		serveOverlay(w, r, overlayDir)
	})

	httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Web server error", zap.Error(err))
		}
	}()

	logger.Info("Web server started", zap.Int("port", port))
	return nil
}

// resolveOverlayDir はオーバーレイUIの静的ファイル配置場所を探す。
func resolveOverlayDir() string {
	possiblePaths := []string{}

	if execPath, err := os.Executable(); err == nil {
		execDir := filepath.Dir(execPath)
		possiblePaths = append(possiblePaths, filepath.Join(execDir, "public"))
	}

	possiblePaths = append(possiblePaths,
		"./public",
		"./web/dist",
	)

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			logger.Info("Using overlay static files directory", zap.String("path", path))
			return path
		}
	}

	logger.Warn("No overlay static files directory found, using default")
	return "./web/dist"
}

// serveOverlay は静的ファイルを配信し、見つからないパスはSPAフォールバックで
// index.htmlを返す。
func serveOverlay(w http.ResponseWriter, r *http.Request, dir string) {
	path := strings.TrimPrefix(r.URL.Path, "/")
	if path == "" {
		path = "index.html"
	}

	filePath := filepath.Join(dir, path)
	if _, err := os.Stat(filePath); err == nil {
		http.FileServer(http.Dir(dir)).ServeHTTP(w, r)
		return
	}

	http.ServeFile(w, r, filepath.Join(dir, "index.html"))
}

func Shutdown() {
	if httpServer == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown web server gracefully", zap.Error(err))
	} else {
		logger.Info("Web server shutdown complete")
	}
}
