// Package tracker is the gold farming session tracker: a session ledger with
// CSV persistence, a zone directory, and the panel reconciler that keeps the
// tracker UI alive across client-side window closes.
package tracker

import (
	"errors"
	"time"

	"farmhand/scriptlog"
)

var (
	// ErrSessionActive is returned by Start when a session is already running.
	ErrSessionActive = errors.New("a session is already active")
	// ErrNoSession is returned by operations that need a running session.
	ErrNoSession = errors.New("no active session")
)

// Session is the live bookkeeping for one farming run. All mutation goes
// through the Ledger so pause accounting and the death debounce stay
// consistent.
type Session struct {
	ID        int
	Zone      string
	StartTime time.Time
	EndTime   time.Time
	// GoldLooted and ManualAdjust are separate accumulators; the gold_gained
	// figure is always their sum.
	GoldLooted   int64
	ManualAdjust int64
	Deaths       int
	// InsurancePerDeath is the per-death insurance cost; the persisted
	// insurance_cost column is Deaths times this.
	InsurancePerDeath int64
	Notes             string

	paused          bool
	pausedStartedAt time.Time
	pausedTotal     time.Duration
	finalized       bool
	lastDeath       time.Time
}

// Ledger owns the active session and its persistence. A Ledger tracks at most
// one session at a time.
type Ledger struct {
	store *SessionLog
	log   *scriptlog.Logger

	// now is the clock; tests substitute a manual one.
	now func() time.Time

	// deathDebounce collapses duplicate death callbacks fired for a
	// single death into one counted death.
	deathDebounce time.Duration

	active *Session
}

// NewLedger builds a ledger over the given session log.
func NewLedger(store *SessionLog, log *scriptlog.Logger, deathDebounce time.Duration) *Ledger {
	if log == nil {
		log = scriptlog.Discard()
	}
	return &Ledger{
		store:         store,
		log:           log,
		now:           time.Now,
		deathDebounce: deathDebounce,
	}
}

// SetNow replaces the ledger's clock. Tests use this to control elapsed time.
func (l *Ledger) SetNow(now func() time.Time) { l.now = now }

// Active reports whether a session is currently running.
func (l *Ledger) Active() bool { return l.active != nil }

// Start begins a new session in the given zone. The session id comes from the
// session log so ids stay unique across restarts; an unreadable log defaults
// the id scan to zero rather than blocking the session. A provisional row is
// written immediately so a crash mid-session leaves a recoverable record.
func (l *Ledger) Start(zone string, insurancePerDeath int64) (int, error) {
	if l.active != nil {
		return 0, ErrSessionActive
	}
	id, err := l.store.NextID()
	if err != nil {
		l.log.Warn("session", "start", "id scan failed, starting from 1", map[string]any{"error": err.Error()})
		id = 1
	}
	l.active = &Session{
		ID:                id,
		Zone:              zone,
		StartTime:         l.now(),
		InsurancePerDeath: insurancePerDeath,
	}
	if err := l.store.Upsert(record(l.active, l.now())); err != nil {
		l.log.Warn("session", "persist", "provisional row write failed", map[string]any{"error": err.Error()})
	}
	l.log.Info("session", "start", "session started", map[string]any{
		"id": id, "zone": zone, "insurance": insurancePerDeath,
	})
	return id, nil
}

// ApplyGoldDelta folds a backpack gold change into the session. Increases
// count as loot; decreases are deposits or spending and are ignored. The
// driver decides when to scan, so loot gathered while paused lands here on
// resume as one delta.
func (l *Ledger) ApplyGoldDelta(delta int64) error {
	if l.active == nil {
		return ErrNoSession
	}
	if delta <= 0 {
		return nil
	}
	l.active.GoldLooted += delta
	l.log.Debug("session", "gold", "gold looted", map[string]any{
		"delta": delta, "looted": l.active.GoldLooted,
	})
	return nil
}

// ApplyManualAdjustment adds a signed correction, tracked apart from loot.
func (l *Ledger) ApplyManualAdjustment(amount int64) error {
	if l.active == nil {
		return ErrNoSession
	}
	l.active.ManualAdjust += amount
	l.log.Info("session", "adjust", "manual gold adjustment", map[string]any{
		"amount": amount, "adjustment": l.active.ManualAdjust,
	})
	return nil
}

// RecordDeath counts a player death. The client can fire the death callback
// more than once per death, so deaths inside the debounce window are dropped.
// counted reports whether this call incremented the death count.
func (l *Ledger) RecordDeath() (counted bool, err error) {
	if l.active == nil {
		return false, ErrNoSession
	}
	now := l.now()
	if !l.active.lastDeath.IsZero() && now.Sub(l.active.lastDeath) < l.deathDebounce {
		return false, nil
	}
	l.active.lastDeath = now
	l.active.Deaths++
	l.log.Info("session", "death", "player died", map[string]any{
		"deaths": l.active.Deaths,
	})
	return true, nil
}

// TogglePause flips the pause state and reports the new state. Time spent
// paused is excluded from the session duration.
func (l *Ledger) TogglePause() (paused bool, err error) {
	if l.active == nil {
		return false, ErrNoSession
	}
	s := l.active
	if s.paused {
		s.pausedTotal += l.now().Sub(s.pausedStartedAt)
		s.paused = false
	} else {
		s.pausedStartedAt = l.now()
		s.paused = true
	}
	l.log.Info("session", "pause", "pause toggled", map[string]any{"paused": s.paused})
	return s.paused, nil
}

// Paused reports whether the active session is paused.
func (l *Ledger) Paused() bool { return l.active != nil && l.active.paused }

// pausedSoFar is the total paused time including a pause still in progress.
func (s *Session) pausedSoFar(now time.Time) time.Duration {
	total := s.pausedTotal
	if s.paused {
		total += now.Sub(s.pausedStartedAt)
	}
	return total
}

// elapsed is wall time minus paused time, clamped at zero.
func (s *Session) elapsed(now time.Time) time.Duration {
	end := now
	if s.finalized {
		end = s.EndTime
	}
	d := end.Sub(s.StartTime) - s.pausedSoFar(end)
	if d < 0 {
		d = 0
	}
	return d
}

// Finalize ends the active session, closes out any running pause, persists
// the final record, and clears the active slot. Calling it with no active
// session is a no-op; ok reports whether a session was finalized. A write
// failure is logged and swallowed: the returned view stays authoritative.
func (l *Ledger) Finalize() (SessionView, bool) {
	if l.active == nil {
		return SessionView{}, false
	}
	s := l.active
	now := l.now()
	if s.paused {
		s.pausedTotal += now.Sub(s.pausedStartedAt)
		s.paused = false
	}
	s.EndTime = now
	s.finalized = true
	view := l.view(s)
	if err := l.store.Upsert(record(s, now)); err != nil {
		l.log.Warn("session", "finalize", "final row write failed", map[string]any{"error": err.Error()})
	}
	l.active = nil
	l.log.Info("session", "finalize", "session saved", map[string]any{
		"id": s.ID, "net": view.NetProfit,
	})
	return view, true
}

// Discard drops the active session and removes its autosaved row from the
// log. No-op when no session is active.
func (l *Ledger) Discard() bool {
	if l.active == nil {
		return false
	}
	id := l.active.ID
	l.active = nil
	if err := l.store.Delete(id); err != nil {
		l.log.Warn("session", "discard", "row delete failed", map[string]any{"error": err.Error()})
	}
	l.log.Info("session", "discard", "session discarded", map[string]any{"id": id})
	return true
}

// PersistProgress writes the in-progress session to the log so a crash loses
// at most one autosave interval. Best effort: a write failure is logged and
// the in-memory state stays authoritative.
func (l *Ledger) PersistProgress() {
	if l.active == nil {
		return
	}
	if err := l.store.Upsert(record(l.active, l.now())); err != nil {
		l.log.Warn("session", "persist", "autosave failed", map[string]any{"error": err.Error()})
	}
}

// insuranceTotal is what the deaths so far have cost in insurance.
func (s *Session) insuranceTotal() int64 {
	return int64(s.Deaths) * s.InsurancePerDeath
}

// goldGained is the derived total: loot plus manual corrections.
func (s *Session) goldGained() int64 {
	return s.GoldLooted + s.ManualAdjust
}

func record(s *Session, now time.Time) SessionRecord {
	// EndTime stays zero for in-progress rows; the log writes it empty.
	ins := s.insuranceTotal()
	gold := s.goldGained()
	return SessionRecord{
		ID:            s.ID,
		Zone:          s.Zone,
		StartTime:     s.StartTime,
		EndTime:       s.EndTime,
		Duration:      s.elapsed(now),
		PausedTime:    s.pausedSoFar(now),
		GoldGained:    gold,
		Deaths:        s.Deaths,
		InsuranceCost: ins,
		NetProfit:     gold - ins,
		Notes:         s.Notes,
	}
}

// SessionView is a read-only snapshot of a session for display.
type SessionView struct {
	ID          int
	Zone        string
	Started     time.Time
	Elapsed     time.Duration
	ElapsedText string // HH:MM:SS
	PausedTime  time.Duration
	PausedText  string // HH:MM:SS
	Paused      bool

	GoldLooted       int64
	ManualAdjustment int64
	GoldGained       int64 // GoldLooted + ManualAdjustment
	GoldPerHour      int64

	Deaths        int
	InsuranceCost int64
	NetProfit     int64
}

// Snapshot returns the current view of the active session; ok is false when
// no session is running.
func (l *Ledger) Snapshot() (SessionView, bool) {
	if l.active == nil {
		return SessionView{}, false
	}
	return l.view(l.active), true
}

func (l *Ledger) view(s *Session) SessionView {
	now := l.now()
	elapsed := s.elapsed(now)
	paused := s.pausedSoFar(now)
	ins := s.insuranceTotal()
	gold := s.goldGained()
	var perHour int64
	if secs := int64(elapsed / time.Second); secs > 0 {
		perHour = gold * 3600 / secs
	}
	return SessionView{
		ID:               s.ID,
		Zone:             s.Zone,
		Started:          s.StartTime,
		Elapsed:          elapsed,
		ElapsedText:      formatDuration(elapsed),
		PausedTime:       paused,
		PausedText:       formatDuration(paused),
		Paused:           s.paused,
		GoldLooted:       s.GoldLooted,
		ManualAdjustment: s.ManualAdjust,
		GoldGained:       gold,
		GoldPerHour:      perHour,
		Deaths:           s.Deaths,
		InsuranceCost:    ins,
		NetProfit:        gold - ins,
	}
}
