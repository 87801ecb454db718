package tracker

import (
	"os"
	"strings"
	"testing"
	"time"

	"farmhand/hosttest"
	"farmhand/scriptlog"
)

var testEpoch = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func newTestLedger(t *testing.T) (*Ledger, *hosttest.Clock, *SessionLog) {
	t.Helper()
	store := NewSessionLog(t.TempDir())
	clk := hosttest.NewClock(testEpoch)
	l := NewLedger(store, scriptlog.Discard(), 10*time.Second)
	l.SetNow(clk.Now)
	return l, clk, store
}

func TestNetProfitInvariant(t *testing.T) {
	l, clk, _ := newTestLedger(t)
	const perDeath = 600
	if _, err := l.Start("Destard", perDeath); err != nil {
		t.Fatalf("Start: %v", err)
	}

	var gold, adjust, deaths int64
	check := func(step string) {
		t.Helper()
		view, ok := l.Snapshot()
		if !ok {
			t.Fatalf("%s: no snapshot", step)
		}
		want := gold + adjust - deaths*perDeath
		if view.NetProfit != want {
			t.Fatalf("%s: net profit = %d, want %d", step, view.NetProfit, want)
		}
	}

	steps := []struct {
		name string
		run  func()
	}{
		{"gold +1500", func() { l.ApplyGoldDelta(1500); gold += 1500 }},
		{"death", func() { l.RecordDeath(); deaths++ }},
		{"adjust -200", func() { l.ApplyManualAdjustment(-200); adjust -= 200 }},
		{"gold +300", func() { l.ApplyGoldDelta(300); gold += 300 }},
		{"death debounced", func() { l.RecordDeath() }}, // within window, not counted
		{"adjust +50", func() { l.ApplyManualAdjustment(50); adjust += 50 }},
	}
	for _, step := range steps {
		step.run()
		check(step.name)
		clk.Advance(3 * time.Second)
	}
}

func TestGoldAccumulatorsStaySeparate(t *testing.T) {
	l, _, _ := newTestLedger(t)
	if _, err := l.Start("Doom", 100); err != nil {
		t.Fatalf("Start: %v", err)
	}
	l.ApplyGoldDelta(1500)
	l.ApplyManualAdjustment(-200)
	l.RecordDeath()

	view, _ := l.Snapshot()
	if view.GoldLooted != 1500 {
		t.Fatalf("looted = %d, want 1500", view.GoldLooted)
	}
	if view.ManualAdjustment != -200 {
		t.Fatalf("adjustment = %d, want -200", view.ManualAdjustment)
	}
	if view.GoldGained != 1300 {
		t.Fatalf("gained = %d, want looted + adjustment = 1300", view.GoldGained)
	}
	if view.NetProfit != 1200 {
		t.Fatalf("net = %d, want 1200", view.NetProfit)
	}
}

func TestDeathDebounce(t *testing.T) {
	l, clk, _ := newTestLedger(t)
	if _, err := l.Start("Doom", 500); err != nil {
		t.Fatalf("Start: %v", err)
	}
	counted, err := l.RecordDeath()
	if err != nil || !counted {
		t.Fatalf("first death: counted=%v err=%v", counted, err)
	}
	clk.Advance(3 * time.Second)
	if counted, _ = l.RecordDeath(); counted {
		t.Fatalf("death 3s after the first was counted")
	}
	clk.Advance(11 * time.Second)
	if counted, _ = l.RecordDeath(); !counted {
		t.Fatalf("death past the debounce window was not counted")
	}
	view, _ := l.Snapshot()
	if view.Deaths != 2 {
		t.Fatalf("deaths = %d, want 2", view.Deaths)
	}
}

func TestTogglePauseAccountsElapsed(t *testing.T) {
	l, clk, _ := newTestLedger(t)
	if _, err := l.Start("Shame", 0); err != nil {
		t.Fatalf("Start: %v", err)
	}
	clk.Advance(time.Minute)

	paused, err := l.TogglePause()
	if err != nil || !paused {
		t.Fatalf("pause: paused=%v err=%v", paused, err)
	}
	clk.Advance(42 * time.Second)
	paused, err = l.TogglePause()
	if err != nil || paused {
		t.Fatalf("resume: paused=%v err=%v", paused, err)
	}

	view, _ := l.Snapshot()
	if view.PausedTime != 42*time.Second {
		t.Fatalf("paused total = %v, want 42s", view.PausedTime)
	}
	if view.Elapsed != time.Minute {
		t.Fatalf("elapsed = %v, want 1m", view.Elapsed)
	}
}

func TestSnapshotDurationFormat(t *testing.T) {
	l, clk, _ := newTestLedger(t)
	if _, err := l.Start("Wind", 0); err != nil {
		t.Fatalf("Start: %v", err)
	}
	clk.Advance(125 * time.Second)
	view, _ := l.Snapshot()
	if view.ElapsedText != "00:02:05" {
		t.Fatalf("duration = %q, want %q", view.ElapsedText, "00:02:05")
	}
}

func TestFinalizeIdempotent(t *testing.T) {
	l, clk, store := newTestLedger(t)
	if _, err := l.Start("Covetous", 0); err != nil {
		t.Fatalf("Start: %v", err)
	}
	clk.Advance(10 * time.Minute)

	first, ok := l.Finalize()
	if !ok {
		t.Fatalf("first Finalize reported no session")
	}
	clk.Advance(time.Hour)
	if _, ok := l.Finalize(); ok {
		t.Fatalf("second Finalize finalized again")
	}

	recs, err := store.All()
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("got %d rows, want 1", len(recs))
	}
	if !recs[0].EndTime.Equal(first.Started.Add(10 * time.Minute)) {
		t.Fatalf("end time moved: got %v", recs[0].EndTime)
	}
}

func TestNextIDRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := NewSessionLog(dir)
	clk := hosttest.NewClock(testEpoch)
	l := NewLedger(store, scriptlog.Discard(), 10*time.Second)
	l.SetNow(clk.Now)

	id, err := l.Start("Deceit", 0)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	l.PersistProgress()

	fresh := NewLedger(NewSessionLog(dir), scriptlog.Discard(), 10*time.Second)
	fresh.SetNow(clk.Now)
	next, err := fresh.Start("Deceit", 0)
	if err != nil {
		t.Fatalf("second Start: %v", err)
	}
	if next != id+1 {
		t.Fatalf("next id = %d, want %d", next, id+1)
	}
}

func TestNextIDToleratesCorruptRows(t *testing.T) {
	dir := t.TempDir()
	store := NewSessionLog(dir)
	data := strings.Join([]string{
		strings.Join(csvHeader, ","),
		`5,Doom,2026-03-14 09:00:00,2026-03-14 10:00:00,01:00:00,00:00:00,9000,0,0,9000,,false,`,
		`not-a-number,garbage row`,
		`11,Shame,2026-03-14 11:00:00,2026-03-14 11:30:00,00:30:00,00:00:00,400,0,0,400,,false,`,
	}, "\n") + "\n"
	if err := os.WriteFile(store.Path(), []byte(data), 0644); err != nil {
		t.Fatalf("seed log: %v", err)
	}
	next, err := store.NextID()
	if err != nil {
		t.Fatalf("NextID: %v", err)
	}
	if next != 12 {
		t.Fatalf("next id = %d, want 12", next)
	}
}

func TestDiscardRemovesOnlyItsRow(t *testing.T) {
	dir := t.TempDir()
	store := NewSessionLog(dir)
	clk := hosttest.NewClock(testEpoch)

	// Two finished sessions, then an active one with id 7.
	for i, zone := range []string{"Doom", "Shame"} {
		l := NewLedger(store, scriptlog.Discard(), 10*time.Second)
		l.SetNow(clk.Now)
		if _, err := l.Start(zone, 0); err != nil {
			t.Fatalf("Start %d: %v", i, err)
		}
		l.ApplyGoldDelta(int64(1000 * (i + 1)))
		clk.Advance(time.Hour)
		l.Finalize()
	}
	l := NewLedger(store, scriptlog.Discard(), 10*time.Second)
	l.SetNow(clk.Now)
	if _, err := l.Start("Wrong", 0); err != nil {
		t.Fatalf("Start: %v", err)
	}
	l.active.ID = 7
	l.PersistProgress()

	before := readDataRows(t, store.Path())
	if !l.Discard() {
		t.Fatalf("Discard reported no session")
	}

	after := readDataRows(t, store.Path())
	if len(after) != len(before)-1 {
		t.Fatalf("got %d rows after discard, want %d", len(after), len(before)-1)
	}
	for _, row := range after {
		if strings.HasPrefix(row, "7,") {
			t.Fatalf("row with id 7 survived discard: %q", row)
		}
		found := false
		for _, orig := range before {
			if row == orig {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("row changed by discard: %q", row)
		}
	}
}

func TestMutationsWithoutSession(t *testing.T) {
	l, _, _ := newTestLedger(t)
	if err := l.ApplyGoldDelta(100); err != ErrNoSession {
		t.Fatalf("ApplyGoldDelta err = %v, want ErrNoSession", err)
	}
	if err := l.ApplyManualAdjustment(100); err != ErrNoSession {
		t.Fatalf("ApplyManualAdjustment err = %v, want ErrNoSession", err)
	}
	if _, err := l.RecordDeath(); err != ErrNoSession {
		t.Fatalf("RecordDeath err = %v, want ErrNoSession", err)
	}
	if _, err := l.TogglePause(); err != ErrNoSession {
		t.Fatalf("TogglePause err = %v, want ErrNoSession", err)
	}
}

func TestStartWhileActive(t *testing.T) {
	l, _, _ := newTestLedger(t)
	if _, err := l.Start("Doom", 0); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := l.Start("Shame", 0); err != ErrSessionActive {
		t.Fatalf("second Start err = %v, want ErrSessionActive", err)
	}
}

func readDataRows(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	var rows []string
	for i, line := range strings.Split(strings.TrimRight(string(data), "\n"), "\n") {
		if i == 0 || line == "" {
			continue
		}
		rows = append(rows, line)
	}
	return rows
}
