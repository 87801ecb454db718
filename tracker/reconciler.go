package tracker

import (
	"time"

	"farmhand/host"
	"farmhand/scriptlog"
)

// PanelKind names the logical panels the tracker shows. At most one instance
// of each kind is tracked at a time, and at most one of LiveFull/LiveMini is
// on screen.
type PanelKind int

const (
	PanelZonePicker PanelKind = iota
	PanelLiveFull
	PanelLiveMini
	PanelSummary
	PanelModal
)

func (k PanelKind) String() string {
	switch k {
	case PanelZonePicker:
		return "zone_picker"
	case PanelLiveFull:
		return "live_full"
	case PanelLiveMini:
		return "live_mini"
	case PanelSummary:
		return "summary"
	case PanelModal:
		return "modal"
	}
	return "unknown"
}

// panelState is the per-panel lifecycle state.
type panelState int

const (
	stateAbsent panelState = iota
	stateCreating
	stateVisible
	statePendingRecreate
)

// panelSlot tracks one logical panel. The build func recreates the panel
// from scratch, reading whatever user-entered state the owner preserved, so
// recreation after an external close restores what the user had typed.
type panelSlot struct {
	state     panelState
	panel     host.Panel
	createdAt time.Time
	build     func() host.Panel

	// suppressUntil time-boxes recreation after an intentional close, so
	// the asynchronous disposal callback for a close we initiated is not
	// mistaken for the user closing the window.
	suppressUntil time.Time
	// suppressCallback marks the next disposal callback for this slot's
	// panel as ours.
	suppressCallback bool
}

// Reconciler keeps the tracker's panels alive: it creates them, watches for
// the client disposing them out from under the script, and recreates them on
// the next tick unless the close was intentional.
type Reconciler struct {
	h   host.Host
	log *scriptlog.Logger
	now func() time.Time

	slots map[PanelKind]*panelSlot

	// suppressWindow covers roughly two driver ticks.
	suppressWindow time.Duration
	// creationGrace ignores disposal noise immediately after creation.
	creationGrace time.Duration
}

// NewReconciler builds a reconciler over the host's UI.
func NewReconciler(h host.Host, log *scriptlog.Logger) *Reconciler {
	if log == nil {
		log = scriptlog.Discard()
	}
	return &Reconciler{
		h:              h,
		log:            log,
		now:            time.Now,
		slots:          map[PanelKind]*panelSlot{},
		suppressWindow: 600 * time.Millisecond,
		creationGrace:  500 * time.Millisecond,
	}
}

// SetNow replaces the reconciler's clock for tests.
func (r *Reconciler) SetNow(now func() time.Time) { r.now = now }

func (r *Reconciler) slot(kind PanelKind) *panelSlot {
	s, ok := r.slots[kind]
	if !ok {
		s = &panelSlot{}
		r.slots[kind] = s
	}
	return s
}

// Show puts the panel of the given kind on screen, building it with build.
// If an instance is already visible this is a no-op; the build func is kept
// so later recreation reproduces the panel.
func (r *Reconciler) Show(kind PanelKind, build func() host.Panel) {
	s := r.slot(kind)
	s.build = build
	if s.state == stateVisible && s.panel != nil && !s.panel.Disposed() {
		return
	}
	if s.state == stateCreating {
		return
	}
	r.create(kind, s)
}

func (r *Reconciler) create(kind PanelKind, s *panelSlot) {
	if s.build == nil {
		return
	}
	s.state = stateCreating
	s.suppressCallback = false
	p := s.build()
	p.OnDispose(func() { r.onDisposed(kind, p) })
	s.panel = p
	s.createdAt = r.now()
	s.state = stateVisible
	r.log.Debug("ui", "create", "panel created", map[string]any{"panel": kind.String()})
}

// onDisposed is the host's disposal callback. It runs on ProcessCallbacks,
// possibly well after the disposal it reports, so it must re-check that it
// still describes the slot's current panel.
func (r *Reconciler) onDisposed(kind PanelKind, p host.Panel) {
	s := r.slot(kind)
	if s.panel != p {
		// Stale callback from an instance already replaced.
		return
	}
	if s.suppressCallback || r.now().Before(s.suppressUntil) {
		s.suppressCallback = false
		return
	}
	if s.state != stateVisible {
		return
	}
	s.state = statePendingRecreate
	r.log.Debug("ui", "dispose", "panel closed externally", map[string]any{"panel": kind.String()})
}

// CloseIntentional disposes the panel without triggering recreation. If the
// host refuses to dispose it, the panel is parked off screen at zero size so
// it can never block the flow.
func (r *Reconciler) CloseIntentional(kind PanelKind) {
	s := r.slot(kind)
	p := s.panel
	s.suppressUntil = r.now().Add(r.suppressWindow)
	s.suppressCallback = true
	s.state = stateAbsent
	s.panel = nil
	if p == nil || p.Disposed() {
		return
	}
	if err := p.Dispose(); err != nil {
		p.SetRect(-5000, -5000, 0, 0)
		r.log.Warn("ui", "dispose", "panel refused to close, parked off screen", map[string]any{
			"panel": kind.String(), "error": err.Error(),
		})
	}
}

// ReconcileIfClosed recreates any panel the client closed since the last
// tick. Call once per driver tick. Panels inside a suppression window or
// just created are left alone.
func (r *Reconciler) ReconcileIfClosed() {
	now := r.now()
	for kind, s := range r.slots {
		switch s.state {
		case stateVisible:
			// The disposed flag can be set before the callback is
			// delivered; pick it up here too.
			if s.panel != nil && s.panel.Disposed() && now.Sub(s.createdAt) > r.creationGrace &&
				!s.suppressCallback && !now.Before(s.suppressUntil) {
				s.state = statePendingRecreate
			}
		case statePendingRecreate:
		default:
			continue
		}
		if s.state != statePendingRecreate {
			continue
		}
		if now.Before(s.suppressUntil) {
			continue
		}
		r.log.Info("ui", "reconcile", "recreating closed panel", map[string]any{"panel": kind.String()})
		r.create(kind, s)
	}
}

// Visible reports whether the panel of the given kind is currently on screen.
func (r *Reconciler) Visible(kind PanelKind) bool {
	s, ok := r.slots[kind]
	return ok && s.state == stateVisible && s.panel != nil && !s.panel.Disposed()
}

// Panel returns the current instance for the kind, or nil.
func (r *Reconciler) Panel(kind PanelKind) host.Panel {
	s, ok := r.slots[kind]
	if !ok || s.state != stateVisible {
		return nil
	}
	return s.panel
}

// CloseAllForFinalize tears down every tracked panel. Best effort: panels
// that refuse disposal are parked off screen; nothing here can block the
// finalize flow.
func (r *Reconciler) CloseAllForFinalize() {
	for kind := range r.slots {
		r.CloseIntentional(kind)
	}
}
