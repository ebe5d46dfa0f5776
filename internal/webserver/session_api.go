package webserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/nantokaworks/wheel-overlay/internal/catalog"
	"github.com/nantokaworks/wheel-overlay/internal/ledger"
	"github.com/nantokaworks/wheel-overlay/internal/shared/logger"
	"github.com/nantokaworks/wheel-overlay/internal/types"
	"github.com/nantokaworks/wheel-overlay/internal/wheel"
	"go.uber.org/zap"
)

var (
	sessionMu     sync.RWMutex
	activeProfile *types.UserProfile
)

// ActiveProfile は現在の識別情報を返す（未入場ならnil）。
func ActiveProfile() *types.UserProfile {
	sessionMu.RLock()
	defer sessionMu.RUnlock()
	if activeProfile == nil {
		return nil
	}
	copied := *activeProfile
	return &copied
}

// RestoreSession は起動時に保存済みプロファイルを復元する（ソフトレジューム）。
func RestoreSession() {
	profile, err := sessionLedger.LoadProfile()
	if err != nil {
		logger.Warn("Failed to restore session profile", zap.Error(err))
		return
	}
	if profile == nil {
		return
	}

	if err := applyProfile(*profile); err != nil {
		logger.Warn("Failed to apply restored session profile", zap.Error(err))
		return
	}

	logger.Info("Session restored",
		zap.String("user", profile.Name),
		zap.String("mode", string(profile.SelectedMode)))
}

// applyProfile はプロファイルを有効化し、ホイールのカタログを
// 切り替え、該当キーのレジャーを再同期する。
func applyProfile(profile types.UserProfile) error {
	mode := profile.SelectedMode
	if !mode.IsValid() {
		mode = types.ModeReguler
		profile.SelectedMode = mode
	}

	if err := wheelAnimator.SetMode(mode, catalog.Prizes(mode)); err != nil {
		return err
	}

	sessionMu.Lock()
	activeProfile = &profile
	sessionMu.Unlock()

	if err := sessionLedger.SaveProfile(profile); err != nil {
		logger.Warn("Failed to persist session profile", zap.Error(err))
	}

	return nil
}

type sessionResponse struct {
	Profile *types.UserProfile `json:"profile"`
	Count   int                `json:"count"`
	History []types.SpinResult `json:"history"`
}

func currentSessionResponse() sessionResponse {
	resp := sessionResponse{History: []types.SpinResult{}}
	profile := ActiveProfile()
	if profile == nil {
		return resp
	}

	resp.Profile = profile
	snapshot, err := sessionLedger.Load(profile.Name, profile.SelectedMode, ledger.DateKey(time.Now()))
	if err != nil {
		logger.Warn("Failed to load session ledger", zap.Error(err))
		return resp
	}
	resp.Count = snapshot.Count
	resp.History = snapshot.History
	return resp
}

// handleSession はセッションの取得・確立・終了を処理する。
func handleSession(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		handleGetSession(w)
	case http.MethodPost:
		handlePostSession(w, r)
	case http.MethodDelete:
		handleDeleteSession(w)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func handleGetSession(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(currentSessionResponse())
}

// handlePostSession は入場操作（識別子＋モード選択）を処理する。
func handlePostSession(w http.ResponseWriter, r *http.Request) {
	var profile types.UserProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	profile.Name = strings.TrimSpace(profile.Name)
	if profile.Name == "" {
		http.Error(w, "Name is required", http.StatusBadRequest)
		return
	}
	if profile.DisplayName == "" {
		profile.DisplayName = profile.Name
	}
	if profile.SelectedMode != "" && !profile.SelectedMode.IsValid() {
		http.Error(w, "Invalid mode", http.StatusBadRequest)
		return
	}

	if err := applyProfile(profile); err != nil {
		if errors.Is(err, wheel.ErrSpinInProgress) {
			http.Error(w, "Spin in progress", http.StatusConflict)
			return
		}
		logger.Error("Failed to establish session", zap.Error(err))
		http.Error(w, "Failed to establish session", http.StatusInternalServerError)
		return
	}

	resp := currentSessionResponse()
	BroadcastWSMessage("session_changed", resp)

	logger.Info("Session established",
		zap.String("user", profile.Name),
		zap.String("mode", string(profile.SelectedMode)))

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// handleDeleteSession は入場画面へ戻る操作を処理する。
func handleDeleteSession(w http.ResponseWriter) {
	if wheelAnimator.IsSpinning() {
		http.Error(w, "Spin in progress", http.StatusConflict)
		return
	}

	sessionMu.Lock()
	activeProfile = nil
	sessionMu.Unlock()

	if err := sessionLedger.ClearProfile(); err != nil {
		logger.Warn("Failed to clear session profile", zap.Error(err))
	}

	BroadcastWSMessage("session_changed", currentSessionResponse())

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
	})
}

// handleSessionHistory は現在キーのカウンタと直近履歴を返す。
func handleSessionHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if ActiveProfile() == nil {
		http.Error(w, "No active session", http.StatusBadRequest)
		return
	}

	resp := currentSessionResponse()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"count":   resp.Count,
		"history": resp.History,
	})
}

// handleSessionNames は入場画面用の識別子一覧を返す。
func handleSessionNames(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"names": catalog.Names(),
	})
}

// RegisterSessionRoutes はセッション関連のルートを登録
func RegisterSessionRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/session", corsMiddleware(handleSession))
	mux.HandleFunc("/api/session/history", corsMiddleware(handleSessionHistory))
	mux.HandleFunc("/api/session/names", corsMiddleware(handleSessionNames))
}
