package ledger

import (
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/nantokaworks/wheel-overlay/internal/shared/logger"
	"github.com/nantokaworks/wheel-overlay/internal/types"
	"go.uber.org/zap"
)

const (
	keyPrefix         = "spin_v3"
	sessionProfileKey = "session_profile"

	// HistoryLimit は1キーあたり保持する直近履歴の最大件数。
	HistoryLimit = 5
)

// Store は文字列キー・文字列値のローカル永続ストア。
// キー形式はこのパッケージ内に閉じており、ストア実装は中身を解釈しない。
type Store interface {
	GetItem(key string) (value string, ok bool, err error)
	SetItem(key, value string) error
}

// Key は1日分のカウンタ・履歴パーティションを識別する複合キー。
// 日付要素が変わると新しい空のキーになるため、カウンタは暗黙に
// 日次リセットされる（明示的なリセット操作は無い）。
type Key struct {
	UserName string
	Mode     types.SpinMode
	Date     string // ローカル日付 YYYY-MM-DD
}

func (k Key) prefix() string {
	return fmt.Sprintf("%s_%s_%s_%s", keyPrefix, k.Date, k.UserName, k.Mode)
}

// CountKey はスピン回数の格納キーを返す。
func (k Key) CountKey() string {
	return k.prefix() + "_count"
}

// HistoryKey は直近履歴の格納キーを返す。
func (k Key) HistoryKey() string {
	return k.prefix() + "_history"
}

// DateKey はローカル日付をキー用のYYYY-MM-DD文字列に変換する。
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// Snapshot は1キー分の読み出し結果。
type Snapshot struct {
	Count   int                `json:"count"`
	History []types.SpinResult `json:"history"`
}

// Ledger はユーザー×モード×日付ごとのスピン回数と直近履歴を管理する。
// load-increment-persist はミューテックスで直列化され、spinNumberの
// 単調・欠番なしの不変条件は並行呼び出しでも保たれる。
type Ledger struct {
	mu    sync.Mutex
	store Store
	now   func() time.Time
}

// New はStoreを背後に持つLedgerを返す。
func New(store Store) *Ledger {
	return &Ledger{store: store, now: time.Now}
}

// Load はキーの永続状態を読み出す。キーが存在しない場合は
// {count: 0, history: []} を返す。壊れた値はセッション装飾データに
// 過ぎないため、エラーにせず初期状態として扱う。
func (l *Ledger) Load(userName string, mode types.SpinMode, date string) (Snapshot, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loadLocked(Key{UserName: userName, Mode: mode, Date: date})
}

func (l *Ledger) loadLocked(key Key) (Snapshot, error) {
	snapshot := Snapshot{History: []types.SpinResult{}}

	rawCount, ok, err := l.store.GetItem(key.CountKey())
	if err != nil {
		return snapshot, fmt.Errorf("failed to read spin count: %w", err)
	}
	if ok {
		count, convErr := strconv.Atoi(rawCount)
		if convErr != nil || count < 0 {
			logger.Warn("Corrupted spin count, reinitializing",
				zap.String("key", key.CountKey()),
				zap.String("value", rawCount))
		} else {
			snapshot.Count = count
		}
	}

	rawHistory, ok, err := l.store.GetItem(key.HistoryKey())
	if err != nil {
		return snapshot, fmt.Errorf("failed to read spin history: %w", err)
	}
	if ok {
		var history []types.SpinResult
		if unmarshalErr := json.Unmarshal([]byte(rawHistory), &history); unmarshalErr != nil {
			logger.Warn("Corrupted spin history, reinitializing",
				zap.String("key", key.HistoryKey()),
				zap.Error(unmarshalErr))
		} else {
			snapshot.History = history
		}
	}

	return snapshot, nil
}

// Record は完了したスピンを記録する。カウンタをインクリメントし、
// 履歴の先頭に追加して直近HistoryLimit件に切り詰め、両方を永続化する。
func (l *Ledger) Record(prize types.Prize, userName string, mode types.SpinMode, date string) (types.SpinResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := Key{UserName: userName, Mode: mode, Date: date}
	current, err := l.loadLocked(key)
	if err != nil {
		return types.SpinResult{}, err
	}

	id, err := gonanoid.New()
	if err != nil {
		return types.SpinResult{}, fmt.Errorf("failed to generate result id: %w", err)
	}

	nextCount := current.Count + 1
	result := types.SpinResult{
		ID:         id,
		Prize:      prize.Label,
		Timestamp:  l.now().UnixMilli(),
		Mode:       mode,
		UserName:   userName,
		SpinNumber: nextCount,
	}

	history := append([]types.SpinResult{result}, current.History...)
	if len(history) > HistoryLimit {
		history = history[:HistoryLimit]
	}

	historyJSON, err := json.Marshal(history)
	if err != nil {
		return types.SpinResult{}, fmt.Errorf("failed to marshal spin history: %w", err)
	}

	if err := l.store.SetItem(key.CountKey(), strconv.Itoa(nextCount)); err != nil {
		return types.SpinResult{}, fmt.Errorf("failed to persist spin count: %w", err)
	}
	if err := l.store.SetItem(key.HistoryKey(), string(historyJSON)); err != nil {
		return types.SpinResult{}, fmt.Errorf("failed to persist spin history: %w", err)
	}

	return result, nil
}

// SaveProfile は最後に使われた識別情報をセッションキーに保存する。
// 認証ではなく、再起動時に入場画面を飛ばすためのソフトレジュームである。
func (l *Ledger) SaveProfile(profile types.UserProfile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to marshal user profile: %w", err)
	}
	if err := l.store.SetItem(sessionProfileKey, string(data)); err != nil {
		return fmt.Errorf("failed to persist user profile: %w", err)
	}
	return nil
}

// LoadProfile は保存済みの識別情報を返す。未保存・破損時はnilを返す。
func (l *Ledger) LoadProfile() (*types.UserProfile, error) {
	raw, ok, err := l.store.GetItem(sessionProfileKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read user profile: %w", err)
	}
	if !ok || raw == "" {
		return nil, nil
	}

	var profile types.UserProfile
	if err := json.Unmarshal([]byte(raw), &profile); err != nil {
		logger.Warn("Corrupted session profile, ignoring", zap.Error(err))
		return nil, nil
	}
	if profile.Name == "" {
		return nil, nil
	}
	return &profile, nil
}

// ClearProfile はセッションレジューム情報を消す（入場画面へ戻る操作）。
func (l *Ledger) ClearProfile() error {
	if err := l.store.SetItem(sessionProfileKey, ""); err != nil {
		return fmt.Errorf("failed to clear user profile: %w", err)
	}
	return nil
}
