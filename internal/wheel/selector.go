package wheel

import (
	"math"
	mrand "math/rand"
	"sync"
	"time"

	"github.com/nantokaworks/wheel-overlay/internal/types"
)

const (
	// pointerAngle はポインタ固定位置（ローカル座標系で270°＝12時方向）。
	pointerAngle = 270.0

	regulerMinDuration  = 10000 * time.Millisecond
	regulerDurationSpan = 2000 * time.Millisecond
	regulerBaseSpins    = 15
	regulerExtraSpins   = 8

	exclusiveMinDuration  = 12000 * time.Millisecond
	exclusiveDurationSpan = 3000 * time.Millisecond
	exclusiveBaseSpins    = 18
	exclusiveExtraSpins   = 10
)

// Selector は1スピン分の抽選結果（目標セグメントと回転目標）を計算する。
// 乱数源は注入可能で、固定シードならtargetIndex/duration/fullSpinsが再現できる。
type Selector struct {
	mu  sync.Mutex
	rng *mrand.Rand
}

// NewSelector は現在時刻をシードにしたSelectorを返す。
func NewSelector() *Selector {
	return NewSeededSelector(time.Now().UnixNano())
}

// NewSeededSelector は固定シードのSelectorを返す（テスト用途）。
func NewSeededSelector(seed int64) *Selector {
	return &Selector{rng: mrand.New(mrand.NewSource(seed))}
}

// SelectOutcome は [0, prizeCount) から一様に目標セグメントを選び、
// ホイールの最終停止回転量を計算する。各呼び出しは独立で、過去の結果を
// 記憶しない（同じ賞品が続けて出ることは正常）。
//
// 回転量はセッション中ずっと累積値で管理する。目標回転は現在回転の
// 360°境界に揃えた上でfullSpins分を積むため、スピンは常に前方へ回り、
// 後戻りのスナップは起きない。prizeCount >= 1 は呼び出し側の前提条件。
func (s *Selector) SelectOutcome(mode types.SpinMode, prizeCount int, currentRotation float64) types.SpinOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	targetIndex := s.rng.Intn(prizeCount)

	var (
		duration  time.Duration
		fullSpins int
	)
	if mode == types.ModeExclusive {
		duration = exclusiveMinDuration + time.Duration(s.rng.Float64()*float64(exclusiveDurationSpan))
		fullSpins = exclusiveBaseSpins + s.rng.Intn(exclusiveExtraSpins)
	} else {
		duration = regulerMinDuration + time.Duration(s.rng.Float64()*float64(regulerDurationSpan))
		fullSpins = regulerBaseSpins + s.rng.Intn(regulerExtraSpins)
	}

	segmentAngle := 360.0 / float64(prizeCount)
	segmentCenter := float64(targetIndex)*segmentAngle + segmentAngle/2

	// 現在回転を切り捨てた360°境界からfullSpins周分を足す。
	// mod 360 はセグメント中心をポインタ直下に置く角度に一致する。
	base := math.Floor(currentRotation/360.0) * 360.0
	targetRotation := base + float64(fullSpins)*360.0 + (pointerAngle - segmentCenter)

	return types.SpinOutcome{
		TargetIndex:    targetIndex,
		TargetRotation: targetRotation,
		FullSpins:      fullSpins,
		Duration:       duration,
	}
}
