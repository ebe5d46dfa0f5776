package wheel

import (
	"errors"
	"math"
	"sync"
	"time"

	"github.com/nantokaworks/wheel-overlay/internal/types"
)

// ErrSpinInProgress はスピン中に許可されない操作を表す。
var ErrSpinInProgress = errors.New("spin in progress")

const (
	stateIdle = iota
	stateSpinning
)

// Animator はホイールの回転アニメーションを駆動する状態機械。
// Idle → Spinning → Idle の遷移しか持たず、同時に1スピンしか走らない。
// 時刻は外部からTick(now)で与えられるため、本物のフレームタイミングに
// 依存せず合成タイムスタンプでテストできる。
type Animator struct {
	mu       sync.Mutex
	selector *Selector

	mode   types.SpinMode
	prizes []types.Prize

	state         int
	rotation      float64
	startRotation float64
	startTime     time.Time
	outcome       types.SpinOutcome

	onFrame    func(rotation float64)
	onComplete func(prize types.Prize)

	interval  time.Duration
	done      chan struct{}
	closeOnce sync.Once
}

// NewAnimator は指定モードのカタログを持つAnimatorを返す。
func NewAnimator(selector *Selector, mode types.SpinMode, prizes []types.Prize, frameInterval time.Duration) *Animator {
	if frameInterval <= 0 {
		frameInterval = 33 * time.Millisecond
	}
	return &Animator{
		selector: selector,
		mode:     mode,
		prizes:   prizes,
		interval: frameInterval,
		done:     make(chan struct{}),
	}
}

// OnFrame は再描画コールバックを設定する（currentRotationを受け取る）。
func (a *Animator) OnFrame(fn func(rotation float64)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onFrame = fn
}

// OnComplete はスピン完了コールバックを設定する。完了ごとに1回だけ呼ばれる。
func (a *Animator) OnComplete(fn func(prize types.Prize)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onComplete = fn
}

// Spin はスピンを開始する。既にスピン中の場合は何もせずfalseを返す
// （エラーではなく無視される呼び出し）。
func (a *Animator) Spin(now time.Time) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state == stateSpinning {
		return false
	}

	a.startRotation = a.rotation
	a.startTime = now
	a.outcome = a.selector.SelectOutcome(a.mode, len(a.prizes), a.rotation)
	a.state = stateSpinning
	return true
}

// Tick はアニメーションを1フレーム進める。Idle中は何もしない。
// progressが1に達したフレームでSpinning→Idleへ遷移し、完了コールバックを
// 対象賞品とともに1回だけ呼ぶ。
func (a *Animator) Tick(now time.Time) {
	a.mu.Lock()

	if a.state != stateSpinning {
		a.mu.Unlock()
		return
	}

	elapsed := now.Sub(a.startTime)
	progress := float64(elapsed) / float64(a.outcome.Duration)
	if progress > 1 {
		progress = 1
	}
	if progress < 0 {
		progress = 0
	}

	eased := easeOutQuint(progress)
	a.rotation = a.startRotation + (a.outcome.TargetRotation-a.startRotation)*eased

	frame := a.onFrame
	rotation := a.rotation

	var (
		complete func(prize types.Prize)
		prize    types.Prize
	)
	if progress >= 1 {
		a.state = stateIdle
		complete = a.onComplete
		prize = a.prizes[a.outcome.TargetIndex]
	}
	a.mu.Unlock()

	// コールバックはロック外で呼ぶ。
	if frame != nil {
		frame(rotation)
	}
	if complete != nil {
		complete(prize)
	}
}

// easeOutQuint は長い減速向けのイージング。(1-p)^5 が終盤の滑らかな停止を作る。
func easeOutQuint(p float64) float64 {
	return 1 - math.Pow(1-p, 5)
}

// SetMode はモードとカタログを入れ替える（入場画面へ戻った時のみ）。
// スピン中の切り替えは拒否する。
func (a *Animator) SetMode(mode types.SpinMode, prizes []types.Prize) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state == stateSpinning {
		return ErrSpinInProgress
	}
	a.mode = mode
	a.prizes = prizes
	return nil
}

// Rotation は現在の累積回転量（度）を返す。
func (a *Animator) Rotation() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.rotation
}

// IsSpinning はスピン中かどうかを返す。
func (a *Animator) IsSpinning() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state == stateSpinning
}

// Snapshot は再接続クライアント向けの状態スナップショットを返す。
func (a *Animator) Snapshot() types.WheelState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return types.WheelState{
		Mode:       a.mode,
		Rotation:   a.rotation,
		IsSpinning: a.state == stateSpinning,
		PrizeCount: len(a.prizes),
	}
}

// Start はフレームループを起動する。intervalごとにTick(time.Now())を呼ぶ。
func (a *Animator) Start() {
	go a.loop()
}

func (a *Animator) loop() {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-a.done:
			return
		case now := <-ticker.C:
			a.Tick(now)
		}
	}
}

// Close はフレームループを停止する。破棄後のTickは発火しないため、
// 破棄済みの対象にコールバックが飛ぶことはない。
func (a *Animator) Close() {
	a.closeOnce.Do(func() {
		close(a.done)
	})
}
