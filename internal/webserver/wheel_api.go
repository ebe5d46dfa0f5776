package webserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/nantokaworks/wheel-overlay/internal/catalog"
	"github.com/nantokaworks/wheel-overlay/internal/ledger"
	"github.com/nantokaworks/wheel-overlay/internal/shared/logger"
	"github.com/nantokaworks/wheel-overlay/internal/types"
	"github.com/nantokaworks/wheel-overlay/internal/wheel"
	"go.uber.org/zap"
)

var (
	wheelAnimator *wheel.Animator
	sessionLedger *ledger.Ledger
)

// InitWheel はアニメーターとレジャーを配線する。フレームはWebSocketで
// オーバーレイへ流し、完了時はレジャーに記録して結果を通知する。
func InitWheel(animator *wheel.Animator, l *ledger.Ledger) {
	wheelAnimator = animator
	sessionLedger = l

	animator.OnFrame(func(rotation float64) {
		BroadcastWSMessage("wheel_frame", map[string]interface{}{
			"rotation": rotation,
		})
	})
	animator.OnComplete(handleSpinComplete)
}

// handleSpinComplete は完了したスピンをレジャーへ記録し、結果を配信する。
func handleSpinComplete(prize types.Prize) {
	profile := ActiveProfile()
	if profile == nil {
		// セッションなしでスピンは開始できないため通常は到達しない
		logger.Warn("Spin completed without active session, result dropped",
			zap.String("prize", prize.Label))
		return
	}

	mode := profile.SelectedMode
	if !mode.IsValid() {
		mode = types.ModeReguler
	}

	result, err := sessionLedger.Record(prize, profile.Name, mode, ledger.DateKey(time.Now()))
	if err != nil {
		// 永続化はベストエフォート。失敗しても結果表示は止めない。
		logger.Error("Failed to record spin result", zap.Error(err))
		result = types.SpinResult{
			Prize:     prize.Label,
			Timestamp: time.Now().UnixMilli(),
			Mode:      mode,
			UserName:  profile.Name,
		}
	}

	snapshot, err := sessionLedger.Load(profile.Name, mode, ledger.DateKey(time.Now()))
	if err != nil {
		logger.Warn("Failed to reload session ledger after record", zap.Error(err))
	}

	logger.Info("Spin completed",
		zap.String("user", profile.Name),
		zap.String("mode", string(mode)),
		zap.String("prize", prize.Label),
		zap.Int("spin_number", result.SpinNumber))

	BroadcastWSMessage("spin_result", map[string]interface{}{
		"result":  result,
		"count":   snapshot.Count,
		"history": snapshot.History,
	})
}

// handleWheelSpin はスピン開始要求を処理する。スピン中の再要求はエラーに
// せず started=false で無視する。
func handleWheelSpin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if ActiveProfile() == nil {
		http.Error(w, "No active session", http.StatusBadRequest)
		return
	}

	started := wheelAnimator.Spin(time.Now())
	if started {
		state := wheelAnimator.Snapshot()
		BroadcastWSMessage("spin_started", state)
		logger.Info("Spin started",
			zap.String("mode", string(state.Mode)),
			zap.Float64("rotation", state.Rotation))
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"started": started,
		"state":   wheelAnimator.Snapshot(),
	})
}

// handleWheelState は再接続クライアント向けの状態スナップショットを返す。
func handleWheelState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(wheelAnimator.Snapshot())
}

// handleWheelPrizes はモード別の賞品カタログを返す。
func handleWheelPrizes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	mode := types.SpinMode(r.URL.Query().Get("mode"))
	if mode == "" {
		mode = types.ModeReguler
	}
	if !mode.IsValid() {
		http.Error(w, "Invalid mode", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"mode":   mode,
		"prizes": catalog.Prizes(mode),
	})
}

// RegisterWheelRoutes はホイール関連のルートを登録
func RegisterWheelRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/wheel/spin", corsMiddleware(handleWheelSpin))
	mux.HandleFunc("/api/wheel/state", corsMiddleware(handleWheelState))
	mux.HandleFunc("/api/wheel/prizes", corsMiddleware(handleWheelPrizes))
}
