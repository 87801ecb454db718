package tracker

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gen2brain/beeep"
	"golang.org/x/time/rate"

	"farmhand/host"
	"farmhand/scriptlog"
)

const tickSleep = 250 * time.Millisecond

// Tracker is the gold tracker driver: it runs the zone-selection flow, the
// insurance prompt, the tracking loop, and the finalize/summary flow, all on
// the host's cooperative callback loop.
type Tracker struct {
	h   host.Host
	dir string
	cfg Config
	log *scriptlog.Logger

	ledger *Ledger
	zones  *ZoneDirectory
	rec    *Reconciler
	ui     *trackerUI

	goldSeen    int64
	cancelDeath func()
}

// New wires a tracker over the host, keeping its files under dir.
func New(h host.Host, dir string) *Tracker {
	cfg, err := LoadConfig(dir)
	log := scriptlog.New("gold_tracker", dir, cfg.Debug)
	if err != nil {
		log.Warn("config", "load", "config unreadable, using defaults", map[string]any{"error": err.Error()})
	}
	zones := LoadZones(dir, log)
	rec := NewReconciler(h, log)
	return &Tracker{
		h:      h,
		dir:    dir,
		cfg:    cfg,
		log:    log,
		ledger: NewLedger(NewSessionLog(dir), log, cfg.DeathDebounce()),
		zones:  zones,
		rec:    rec,
		ui:     newTrackerUI(h, rec, zones, log),
	}
}

// Run executes one full tracker flow: pick a zone, start a session, track it
// until the user stops or cancels, then summarize. Returns when the session
// ends or the host asks the script to stop.
func (t *Tracker) Run() {
	zone, ok := t.selectZone()
	if !ok {
		return
	}
	insurance, ok := t.readInsurance()
	if !ok {
		return
	}
	if err := t.startSession(zone, insurance); err != nil {
		t.h.SysMsg("Could not start session: "+err.Error(), hueBad)
		return
	}
	t.trackLoop()
}

// pump runs one cooperative beat: deliver host callbacks, then sleep.
func (t *Tracker) pump() {
	t.h.ProcessCallbacks()
	t.h.Pause(tickSleep)
}

// guard wraps a tick so one bad tick logs and backs off instead of ending
// the session.
func (t *Tracker) guard(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			t.log.Error("driver", "tick", "tick failed", map[string]any{"panic": fmt.Sprint(r)})
			t.h.Pause(2 * time.Second)
		}
	}()
	fn()
}

// selectZone runs the zone-picker flow until the user starts a session or
// the host stops the script.
func (t *Tracker) selectZone() (string, bool) {
	t.ui.ShowZonePicker()
	for !t.h.StopRequested() {
		t.pump()
		var zone string
		var done bool
		t.guard(func() {
			t.rec.ReconcileIfClosed()
			selection := t.ui.PollZonePicker()
			f := t.ui.consumeFlags()
			switch {
			case f.startClicked:
				text := strings.TrimSpace(selection)
				if text == "" {
					t.h.SysMsg("Pick a zone first.", hueWarn)
					return
				}
				if name, ok := t.zones.Resolve(text); ok {
					zone, done = name, true
					return
				}
				// Unknown text is a candidate new zone, not an error.
				if s := t.zones.Suggest(text, 3); len(s) > 0 {
					t.ui.SetHint("Did you mean: " + strings.Join(s, ", ") + "?")
				}
				if name, ok := t.promptNewZone(text); ok {
					zone, done = name, true
				}
			case f.newZoneClicked:
				if name, ok := t.promptNewZone(selection); ok {
					zone, done = name, true
				}
			}
		})
		if done {
			t.rec.CloseIntentional(PanelZonePicker)
			return zone, true
		}
	}
	t.rec.CloseAllForFinalize()
	return "", false
}

// promptNewZone is the blocking new-zone modal flow. It pumps callbacks in
// its own loop, recreating the modal (typed text intact) if the client
// closes it, until the user confirms or cancels.
func (t *Tracker) promptNewZone(suggested string) (string, bool) {
	t.ui.ShowNewZoneModal(suggested)
	defer t.ui.CloseModal()
	for !t.h.StopRequested() {
		t.pump()
		var name string
		var done, cancelled bool
		t.guard(func() {
			t.rec.ReconcileIfClosed()
			text := t.ui.PollModal()
			f := t.ui.consumeFlags()
			switch {
			case f.modalConfirm:
				created, err := t.zones.Add(text)
				if err != nil {
					// Input preserved for correction.
					t.h.SysMsg("Zone name needed: "+err.Error(), hueWarn)
					return
				}
				name, done = created, true
			case f.modalCancel:
				cancelled = true
			}
		})
		if done {
			return name, true
		}
		if cancelled {
			return "", false
		}
	}
	return "", false
}

// readInsurance resolves the per-death insurance cost: auto-read from the
// player's context menu when enabled, otherwise (or on failure) a manual
// modal. The read value is cached in config as the next pre-fill.
func (t *Tracker) readInsurance() (int64, bool) {
	if t.cfg.AutoReadInsurance {
		if cost, ok := autoReadInsurance(t.h, t.log); ok {
			t.cacheInsurance(cost)
			return cost, true
		}
		t.h.SysMsg("Could not read insurance, enter it manually.", hueWarn)
	}
	t.ui.ShowInsuranceModal(t.cfg.InsuranceCost)
	defer t.ui.CloseInsurance()
	for !t.h.StopRequested() {
		t.pump()
		var cost int64
		var done bool
		t.guard(func() {
			t.rec.ReconcileIfClosed()
			text := t.ui.PollInsurance()
			f := t.ui.consumeFlags()
			if !f.insuranceOK {
				return
			}
			n, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
			if err != nil || n < 0 {
				t.ui.RejectInsurance("Enter a whole number.")
				return
			}
			cost, done = n, true
		})
		if done {
			t.cacheInsurance(cost)
			return cost, true
		}
	}
	return 0, false
}

func (t *Tracker) cacheInsurance(cost int64) {
	if t.cfg.InsuranceCost == cost {
		return
	}
	t.cfg.InsuranceCost = cost
	if err := SaveConfig(t.dir, t.cfg); err != nil {
		t.log.Warn("config", "save", "could not cache insurance cost", map[string]any{"error": err.Error()})
	}
}

// startSession begins the ledger session, captures the gold baseline, and
// subscribes to death events.
func (t *Tracker) startSession(zone string, insurance int64) error {
	if _, err := t.ledger.Start(zone, insurance); err != nil {
		return err
	}
	t.goldSeen = t.scanGold()
	t.cancelDeath = t.h.OnPlayerDeath(func() {
		counted, err := t.ledger.RecordDeath()
		if err != nil || !counted {
			return
		}
		t.h.SysMsg("Death recorded.", hueBad)
		t.notify("You died. Insurance charged.")
	})
	t.h.SysMsg(fmt.Sprintf("Tracking %s. Good hunting!", zone), hueGood)
	return nil
}

// scanGold sums the gold stacks in the backpack.
func (t *Tracker) scanGold() int64 {
	var total int64
	for _, it := range t.h.FindTypeAll(t.cfg.GoldGraphicID, host.Backpack) {
		total += int64(it.Amount())
	}
	return total
}

// trackLoop is the main session loop. Flag checks run in a fixed priority
// order so a stop request always wins within a tick.
func (t *Tracker) trackLoop() {
	scanLim := rate.NewLimiter(rate.Every(t.cfg.UpdateInterval()), 1)
	saveLim := rate.NewLimiter(rate.Every(t.cfg.AutosaveInterval()), 1)

	if view, ok := t.ledger.Snapshot(); ok {
		t.ui.ShowLive(view)
	}

	for {
		t.pump()
		var finished bool
		t.guard(func() {
			f := t.ui.consumeFlags()
			if t.h.StopRequested() || f.stopClicked {
				t.finish(false)
				finished = true
				return
			}
			if f.cancelClicked {
				t.finish(true)
				finished = true
				return
			}
			if f.pauseClicked {
				if paused, err := t.ledger.TogglePause(); err == nil {
					if paused {
						t.h.SysMsg("Session paused.", hueWarn)
					} else {
						t.h.SysMsg("Session resumed.", hueGood)
					}
				}
			}
			view, ok := t.ledger.Snapshot()
			if !ok {
				finished = true
				return
			}
			if f.minimizeClicked {
				t.ui.ToggleMinimize(view)
			}
			if f.adjustClicked {
				t.applyAdjustment()
			}
			t.rec.ReconcileIfClosed()
			if scanLim.Allow() {
				t.scanTick()
			}
			if saveLim.Allow() {
				t.ledger.PersistProgress()
			}
			if view, ok := t.ledger.Snapshot(); ok {
				t.ui.ShowLive(view)
				t.ui.UpdateLive(view)
			}
		})
		if finished {
			return
		}
	}
}

// applyAdjustment parses the manual-adjustment field. The field is cleared
// only after the adjustment applied; parse failures keep the input in place
// for correction.
func (t *Tracker) applyAdjustment() {
	text := strings.TrimSpace(t.ui.AdjustText())
	if text == "" {
		return
	}
	amount, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		t.h.SysMsg("Adjustment must be a whole number.", hueWarn)
		return
	}
	if err := t.ledger.ApplyManualAdjustment(amount); err != nil {
		t.h.SysMsg(err.Error(), hueWarn)
		return
	}
	t.ui.ClearAdjust()
	t.h.SysMsg(fmt.Sprintf("Adjusted gold by %s.", strconv.FormatInt(amount, 10)), hueGood)
}

// scanTick folds the backpack gold change into the ledger. A decrease is a
// deposit or spending: the baseline resets without counting anything. While
// paused the scan is skipped entirely, so the baseline stays stale and loot
// gathered during the pause counts on resume.
func (t *Tracker) scanTick() {
	if t.ledger.Paused() {
		return
	}
	current := t.scanGold()
	delta := current - t.goldSeen
	t.goldSeen = current
	if delta < 0 {
		t.log.Debug("driver", "gold", "gold decreased, baseline reset", map[string]any{"delta": delta})
		return
	}
	if err := t.ledger.ApplyGoldDelta(delta); err != nil {
		t.log.Warn("driver", "gold", "gold delta dropped", map[string]any{"error": err.Error()})
	}
}

// finish ends the session: discard drops it, otherwise it is finalized and
// summarized. Either way every panel comes down first.
func (t *Tracker) finish(discard bool) {
	if t.cancelDeath != nil {
		t.cancelDeath()
		t.cancelDeath = nil
	}
	t.rec.CloseAllForFinalize()
	if discard {
		t.ledger.Discard()
		t.h.SysMsg("Session discarded.", hueWarn)
		return
	}
	view, ok := t.ledger.Finalize()
	if !ok {
		return
	}
	t.ui.ShowSummary(view)
	t.h.SysMsg(fmt.Sprintf("Session saved: net %s gold.", strconv.FormatInt(view.NetProfit, 10)), hueGood)
	t.notify(fmt.Sprintf("Session in %s finished: net %d gold.", view.Zone, view.NetProfit))
}

func (t *Tracker) notify(msg string) {
	if !t.cfg.DesktopNotifications {
		return
	}
	if err := beeep.Notify("Gold Tracker", msg, ""); err != nil {
		t.log.Debug("driver", "notify", "desktop notification failed", map[string]any{"error": err.Error()})
	}
}
