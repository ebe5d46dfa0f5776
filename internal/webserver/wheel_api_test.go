package webserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nantokaworks/wheel-overlay/internal/catalog"
	"github.com/nantokaworks/wheel-overlay/internal/ledger"
	"github.com/nantokaworks/wheel-overlay/internal/localdb"
	"github.com/nantokaworks/wheel-overlay/internal/types"
	"github.com/nantokaworks/wheel-overlay/internal/wheel"
)

func setupTestServer(t *testing.T, seed int64) {
	t.Helper()

	if localdb.DBClient != nil {
		_ = localdb.DBClient.Close()
		localdb.DBClient = nil
	}

	dbPath := filepath.Join(t.TempDir(), "local.db")
	db, err := localdb.SetupDB(dbPath)
	if err != nil {
		t.Fatalf("SetupDB failed: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
		localdb.DBClient = nil
	})

	store := localdb.NewKVStore(db)
	selector := wheel.NewSeededSelector(seed)
	animator := wheel.NewAnimator(selector, types.ModeReguler, catalog.Prizes(types.ModeReguler), time.Millisecond)

	InitWheel(animator, ledger.New(store))

	sessionMu.Lock()
	activeProfile = nil
	sessionMu.Unlock()
}

func enterSession(t *testing.T, name string, mode types.SpinMode) {
	t.Helper()

	body := `{"name":"` + name + `","displayName":"` + name + `","selectedMode":"` + string(mode) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/session", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handleSession(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("session POST status mismatch: got=%d want=%d body=%s", rec.Code, http.StatusOK, rec.Body.String())
	}
}

func TestWheelSpin_RequiresSession(t *testing.T) {
	setupTestServer(t, 1)

	req := httptest.NewRequest(http.MethodPost, "/api/wheel/spin", nil)
	rec := httptest.NewRecorder()
	handleWheelSpin(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("spin without session status mismatch: got=%d want=%d", rec.Code, http.StatusBadRequest)
	}
}

func TestWheelSpin_FullFlow(t *testing.T) {
	setupTestServer(t, 11)
	enterSession(t, "G109", types.ModeReguler)

	spinReq := httptest.NewRequest(http.MethodPost, "/api/wheel/spin", nil)
	spinRec := httptest.NewRecorder()
	handleWheelSpin(spinRec, spinReq)

	if spinRec.Code != http.StatusOK {
		t.Fatalf("spin status mismatch: got=%d want=%d", spinRec.Code, http.StatusOK)
	}

	var spinResp struct {
		Started bool             `json:"started"`
		State   types.WheelState `json:"state"`
	}
	if err := json.NewDecoder(spinRec.Body).Decode(&spinResp); err != nil {
		t.Fatalf("decode spin response failed: %v", err)
	}
	if !spinResp.Started {
		t.Fatalf("spin should start from idle")
	}
	if !spinResp.State.IsSpinning {
		t.Fatalf("state should report spinning")
	}

	// スピン中の再要求はエラーにならず started=false
	againRec := httptest.NewRecorder()
	handleWheelSpin(againRec, httptest.NewRequest(http.MethodPost, "/api/wheel/spin", nil))
	if againRec.Code != http.StatusOK {
		t.Fatalf("duplicate spin status mismatch: got=%d want=%d", againRec.Code, http.StatusOK)
	}

	var againResp struct {
		Started bool `json:"started"`
	}
	if err := json.NewDecoder(againRec.Body).Decode(&againResp); err != nil {
		t.Fatalf("decode duplicate spin response failed: %v", err)
	}
	if againResp.Started {
		t.Fatalf("duplicate spin should be ignored")
	}

	// 最大duration(15s)を超える合成タイムスタンプで完了させる
	wheelAnimator.Tick(time.Now().Add(20 * time.Second))
	if wheelAnimator.IsSpinning() {
		t.Fatalf("animator should be idle after completion tick")
	}

	historyReq := httptest.NewRequest(http.MethodGet, "/api/session/history", nil)
	historyRec := httptest.NewRecorder()
	handleSessionHistory(historyRec, historyReq)

	if historyRec.Code != http.StatusOK {
		t.Fatalf("history status mismatch: got=%d want=%d", historyRec.Code, http.StatusOK)
	}

	var historyResp struct {
		Count   int                `json:"count"`
		History []types.SpinResult `json:"history"`
	}
	if err := json.NewDecoder(historyRec.Body).Decode(&historyResp); err != nil {
		t.Fatalf("decode history response failed: %v", err)
	}
	if historyResp.Count != 1 {
		t.Fatalf("unexpected count after spin: got=%d want=1", historyResp.Count)
	}
	if len(historyResp.History) != 1 {
		t.Fatalf("unexpected history length: got=%d want=1", len(historyResp.History))
	}

	result := historyResp.History[0]
	if result.SpinNumber != 1 {
		t.Fatalf("unexpected spin number: got=%d want=1", result.SpinNumber)
	}
	if result.UserName != "G109" {
		t.Fatalf("unexpected user name: got=%q want=%q", result.UserName, "G109")
	}
	if result.Mode != types.ModeReguler {
		t.Fatalf("unexpected mode: got=%q", result.Mode)
	}

	// 賞品ラベルはカタログのいずれかのスナップショット
	found := false
	for _, prize := range catalog.Prizes(types.ModeReguler) {
		if prize.Label == result.Prize {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("prize label not in catalog: got=%q", result.Prize)
	}
}

func TestWheelState(t *testing.T) {
	setupTestServer(t, 1)
	enterSession(t, "G71", types.ModeExclusive)

	req := httptest.NewRequest(http.MethodGet, "/api/wheel/state", nil)
	rec := httptest.NewRecorder()
	handleWheelState(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("state status mismatch: got=%d want=%d", rec.Code, http.StatusOK)
	}

	var state types.WheelState
	if err := json.NewDecoder(rec.Body).Decode(&state); err != nil {
		t.Fatalf("decode state failed: %v", err)
	}
	if state.Mode != types.ModeExclusive {
		t.Fatalf("unexpected mode: got=%q want=%q", state.Mode, types.ModeExclusive)
	}
	if state.PrizeCount != 12 {
		t.Fatalf("unexpected prize count: got=%d want=12", state.PrizeCount)
	}
	if state.IsSpinning {
		t.Fatalf("state should be idle before spin")
	}
}

func TestWheelPrizes(t *testing.T) {
	setupTestServer(t, 1)

	req := httptest.NewRequest(http.MethodGet, "/api/wheel/prizes?mode=EXCLUSIVE", nil)
	rec := httptest.NewRecorder()
	handleWheelPrizes(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("prizes status mismatch: got=%d want=%d", rec.Code, http.StatusOK)
	}

	var resp struct {
		Mode   types.SpinMode `json:"mode"`
		Prizes []types.Prize  `json:"prizes"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode prizes failed: %v", err)
	}
	if resp.Mode != types.ModeExclusive {
		t.Fatalf("unexpected mode: got=%q", resp.Mode)
	}
	if len(resp.Prizes) != 12 {
		t.Fatalf("unexpected prize count: got=%d want=12", len(resp.Prizes))
	}

	badRec := httptest.NewRecorder()
	handleWheelPrizes(badRec, httptest.NewRequest(http.MethodGet, "/api/wheel/prizes?mode=PLATINUM", nil))
	if badRec.Code != http.StatusBadRequest {
		t.Fatalf("invalid mode status mismatch: got=%d want=%d", badRec.Code, http.StatusBadRequest)
	}
}
