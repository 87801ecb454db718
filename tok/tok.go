// Package tok automates the Tomb of Kings entrance: it marks the usable
// levers, pulls each one as the player walks up to it, and then speaks the
// passwords at the Flames of Order and Chaos.
package tok

import (
	"fmt"
	"time"

	"farmhand/host"
	"farmhand/scriptlog"
)

// Levers come in two graphics; the server never changes them.
var leverGraphics = [2]int{4238, 4236}

const (
	leverUsableName   = "A Lever"
	leverUnusableName = "A Lever (unusable)"

	flameGraphic   = 6571
	flameOrderName = "Flame Of Order"
	flameChaosName = "Flame Of Chaos"

	hueGreen = 0x0044
	hueRed   = 0x0021

	useDistance    = 1
	detectionRange = 25
)

// lever is a remembered lever. Everything after the initial scan works from
// this memory, never re-querying the client.
type lever struct {
	serial uint32
	x, y   int
	used   bool
}

type flame struct {
	serial uint32
	name   string
	x, y   int
	used   bool
}

// Script is the entrance helper. Step runs one beat; Run loops it.
type Script struct {
	h   host.Host
	log *scriptlog.Logger

	leversScanned bool
	levers        []*lever
	usableTotal   int
	usedCount     int

	flamesScanned bool
	flames        []*flame
	orderUsed     bool
	chaosUsed     bool
}

// New builds the script, logging under dir.
func New(h host.Host, dir string, debug bool) *Script {
	return &Script{h: h, log: scriptlog.New("tomb_of_kings", dir, debug)}
}

// Run loops until everything is used or the host asks the script to stop.
func (s *Script) Run() {
	s.h.SysMsg("Tomb of Kings - Lever & Flames Helper", 0x3F)
	s.h.SysMsg("Walk near green objects to use them", 0x3F)
	s.log.Info("main", "start", "tomb of kings helper started", nil)

	for !s.h.StopRequested() && !s.Done() {
		s.h.ProcessCallbacks()
		s.Step()
		s.h.Pause(250 * time.Millisecond)
	}
	if s.Done() {
		s.h.SysMsg("All tasks complete! Stopping script...", hueGreen)
	}
	s.Cleanup()
}

// Done reports that every usable lever and both flames were used.
func (s *Script) Done() bool {
	return s.leversScanned && s.allLeversUsed() && s.orderUsed && s.chaosUsed
}

func (s *Script) allLeversUsed() bool {
	return s.usableTotal == 0 || s.usedCount >= s.usableTotal
}

// Step runs one beat: scan once, then act on remembered objects near the
// player.
func (s *Script) Step() {
	if !s.leversScanned {
		s.scanLevers()
	}
	if s.allLeversUsed() && !s.flamesScanned {
		s.scanFlames()
	}
	s.useNearbyLevers()
	if s.flamesScanned {
		s.useNearbyFlames()
	}
}

// scanLevers runs once. Usable levers are remembered and painted green;
// levers that start out unusable are ignored for good.
func (s *Script) scanLevers() {
	for _, graphic := range leverGraphics {
		for _, it := range s.h.FindTypeGround(graphic, detectionRange) {
			if it.Name() != leverUsableName {
				continue
			}
			x, y := it.Position()
			s.levers = append(s.levers, &lever{serial: it.Serial(), x: x, y: y})
			it.SetHue(hueGreen)
			s.usableTotal++
		}
	}
	s.leversScanned = true
	s.log.Info("scan", "levers", "lever scan complete", map[string]any{"usable": s.usableTotal})
	if s.usableTotal == 0 {
		s.h.SysMsg("No usable levers found - going straight to flames", 0x3F)
	} else {
		s.h.SysMsg(fmt.Sprintf("Found %d usable levers", s.usableTotal), 0x3F)
	}
}

// scanFlames runs once, after the last lever. Both flames share a graphic;
// the name tells them apart.
func (s *Script) scanFlames() {
	s.h.SysMsg("All levers used! Scanning for flames...", 0x3F)
	for _, it := range s.h.FindTypeGround(flameGraphic, detectionRange) {
		name := it.Name()
		if name != flameOrderName && name != flameChaosName {
			continue
		}
		x, y := it.Position()
		s.flames = append(s.flames, &flame{serial: it.Serial(), name: name, x: x, y: y})
		it.SetHue(hueGreen)
	}
	s.flamesScanned = true
	s.log.Info("scan", "flames", "flame scan complete", map[string]any{"count": len(s.flames)})
	s.h.SysMsg(fmt.Sprintf("Found %d flames (green)", len(s.flames)), 0x3F)
}

// useNearbyLevers pulls any remembered lever the player is standing next to.
func (s *Script) useNearbyLevers() {
	px, py := s.h.Player().Position()
	for _, lv := range s.levers {
		if lv.used || chebyshev(px, py, lv.x, lv.y) > useDistance {
			continue
		}
		s.h.SysMsg("Using lever", 0x3F)
		if err := s.h.UseObject(lv.serial); err != nil {
			s.log.Error("lever", "use", "lever use failed", map[string]any{"error": err.Error()})
			s.h.SysMsg("ERROR using lever: "+err.Error(), hueRed)
		}
		lv.used = true
		s.usedCount++
		s.log.Info("lever", "used", "lever used", map[string]any{
			"used": s.usedCount, "total": s.usableTotal,
		})
		s.h.SysMsg(fmt.Sprintf("Lever used! (%d/%d)", s.usedCount, s.usableTotal), 0x3F)
		s.h.Pause(1500 * time.Millisecond)
	}
}

// useNearbyFlames speaks the password for any flame the player reaches, then
// repaints it red as a used marker.
func (s *Script) useNearbyFlames() {
	px, py := s.h.Player().Position()
	for _, f := range s.flames {
		if f.used || chebyshev(px, py, f.x, f.y) > useDistance {
			continue
		}
		switch f.name {
		case flameOrderName:
			s.h.SysMsg("Speaking: Ord", 0x3F)
			s.h.Say("Ord")
			s.orderUsed = true
		case flameChaosName:
			s.h.SysMsg("Speaking: Anord", 0x3F)
			s.h.Say("Anord")
			s.chaosUsed = true
		}
		f.used = true
		if it, ok := s.h.FindItem(f.serial); ok {
			it.SetHue(hueRed)
		}
		s.log.Info("flame", "used", "flame used", map[string]any{
			"flame": f.name, "order": s.orderUsed, "chaos": s.chaosUsed,
		})
		s.h.SysMsg("Flame used!", 0x3F)
		s.h.Pause(1500 * time.Millisecond)
	}
}

// Cleanup resets every marker hue so nothing stays painted after the script
// ends.
func (s *Script) Cleanup() {
	for _, lv := range s.levers {
		if it, ok := s.h.FindItem(lv.serial); ok {
			it.SetHue(0)
		}
	}
	for _, f := range s.flames {
		if it, ok := s.h.FindItem(f.serial); ok {
			it.SetHue(0)
		}
	}
	s.log.Info("cleanup", "complete", "hues reset", nil)
	s.h.SysMsg("Tomb of Kings Helper - Stopped", hueRed)
}

func chebyshev(ax, ay, bx, by int) int {
	dx := ax - bx
	if dx < 0 {
		dx = -dx
	}
	dy := ay - by
	if dy < 0 {
		dy = -dy
	}
	if dx > dy {
		return dx
	}
	return dy
}
