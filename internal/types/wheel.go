package types

import "time"

// SpinMode はルーレットのモード（賞品ティア）を表す。
type SpinMode string

const (
	ModeReguler   SpinMode = "REGULER"
	ModeExclusive SpinMode = "EXCLUSIVE"
)

// IsValid reports whether the mode is one of the known tiers.
func (m SpinMode) IsValid() bool {
	return m == ModeReguler || m == ModeExclusive
}

// Prize はホイール上の1セグメントに対応する賞品。
type Prize struct {
	ID        int    `json:"id"`
	Label     string `json:"label"`
	Color     string `json:"color"`
	TextColor string `json:"textColor"`
}

// SpinOutcome は1回のスピンの抽選結果（アニメーション目標値）。
// 永続化されず、スピン1回分の寿命しか持たない。
type SpinOutcome struct {
	TargetIndex    int           `json:"target_index"`
	TargetRotation float64       `json:"target_rotation"`
	FullSpins      int           `json:"full_spins"`
	Duration       time.Duration `json:"duration_ms"`
}

// SpinResult は完了したスピン1回の記録。作成後は不変。
// Prizeはラベルのスナップショットであり参照ではない（カタログは
// バージョン間で変わり得るため完了時点の表示文字列を保存する）。
type SpinResult struct {
	ID         string   `json:"id"`
	Prize      string   `json:"prize"`
	Timestamp  int64    `json:"timestamp"`
	Mode       SpinMode `json:"mode"`
	UserName   string   `json:"userName"`
	SpinNumber int      `json:"spinNumber"`
}

// UserProfile は入場画面で選択された識別情報。
type UserProfile struct {
	Name         string   `json:"name"`
	DisplayName  string   `json:"displayName"`
	SelectedMode SpinMode `json:"selectedMode,omitempty"`
}

// WheelState は再接続したオーバーレイが即座に再描画するためのスナップショット。
type WheelState struct {
	Mode       SpinMode `json:"mode"`
	Rotation   float64  `json:"rotation"`
	IsSpinning bool     `json:"is_spinning"`
	PrizeCount int      `json:"prize_count"`
}
