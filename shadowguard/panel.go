package shadowguard

import (
	"fmt"
	"time"

	"farmhand/host"
)

const (
	panelW = 350
	panelH = 160
	barW   = 180
)

// statusPanel is the script's status window. It is created once and its
// labels and timer bar are rewritten in place.
type statusPanel struct {
	panel     host.Panel
	room      host.Label
	timeLeft  host.Label
	timerFill host.Box
	line1     host.Label
	line2     host.Label
	count     host.Label
}

func newStatusPanel(h host.Host) *statusPanel {
	p := h.NewPanel(host.PanelOptions{Movable: true, KeepOpen: true})
	p.SetRect(60, 60, panelW, panelH)
	p.AddBox(0.8, "black", 0, 0, panelW, panelH)
	p.AddLabel("Shadowguard", 0x0481, 15, 12)

	sp := &statusPanel{panel: p}
	sp.room = p.AddLabel("Room: Unknown", 0x5F, 15, 40)
	sp.timeLeft = p.AddLabel("", 0x5F, 15, 64)
	p.AddBox(1.0, "#303030", 110, 68, barW, 11)
	sp.timerFill = p.AddBox(1.0, "#20A020", 110, 68, 0, 11)
	sp.line1 = p.AddLabel("", 0x3F, 15, 95)
	sp.line2 = p.AddLabel("", 0x3F, 15, 118)
	sp.count = p.AddLabel("", 0x3F, panelW-90, 95)
	return sp
}

// update rewrites the panel for the current room. elapsed only matters
// outside the lobby; warning flips the instruction lines red.
func (sp *statusPanel) update(room Room, elapsed time.Duration, bottles, thrown int, warning bool) {
	sp.room.SetText("Room: " + room.String())

	if room == RoomBar || room == RoomUnknown {
		left := roomLimit - elapsed
		if left < 0 {
			left = 0
		}
		secs := int(left / time.Second)
		sp.timeLeft.SetText(fmt.Sprintf("%d:%02d", secs/60, secs%60))
		sp.timerFill.SetWidth(int(int64(barW) * int64(left) / int64(roomLimit)))
	} else {
		sp.timeLeft.SetText("")
		sp.timerFill.SetWidth(0)
	}

	if room == RoomBar {
		hue := 0x3F
		line1, line2 := "Run close to bottles", "Throw at pirates"
		if warning {
			hue = 0x21
			line1, line2 = "Low Health Detected", "Heal thyself!"
		}
		sp.line1.SetText(line1)
		sp.line1.SetHue(hue)
		sp.line2.SetText(line2)
		sp.line2.SetHue(hue)
		sp.count.SetText(fmt.Sprintf("x%d / %d thrown", bottles, thrown))
	} else {
		sp.line1.SetText("")
		sp.line2.SetText("")
		sp.count.SetText("")
	}
}

func (sp *statusPanel) close() {
	if sp.panel != nil && !sp.panel.Disposed() {
		_ = sp.panel.Dispose()
	}
}

// updatePanel refreshes the status window at most once a second.
func (s *Script) updatePanel() {
	now := s.now()
	if s.ui != nil && now.Sub(s.lastUpdated) < time.Second {
		return
	}
	s.lastUpdated = now
	if s.ui == nil {
		s.ui = newStatusPanel(s.h)
	}
	var elapsed time.Duration
	if !s.enteredAt.IsZero() {
		elapsed = now.Sub(s.enteredAt)
	}
	warning := s.h.Player().Hits() < lowHealth
	s.ui.update(s.room, elapsed, s.backpackBottles(), s.BottlesThrown, warning)
}
