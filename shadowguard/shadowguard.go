// Package shadowguard automates the Shadowguard encounter's bar room:
// it detects which room the player is in and, in the bar, throws liquor
// bottles at the pirate crew while keeping a status panel current.
package shadowguard

import (
	"sort"
	"strings"
	"time"

	"farmhand/host"
	"farmhand/scriptlog"
)

// Room is the detected encounter room.
type Room int

const (
	RoomUnknown Room = iota
	RoomLobby
	RoomBar
)

func (r Room) String() string {
	switch r {
	case RoomLobby:
		return "Lobby"
	case RoomBar:
		return "Bar"
	}
	return "Unknown"
}

const (
	bottleGraphic = 0x099B
	lowHealth     = 35
	throwRange    = 6
	detectRange   = 25
	tableReach    = 2
	// roomLimit is the encounter's per-room timer shown on the panel.
	roomLimit = 30 * time.Minute
)

// Script is the bar-room helper. It is driven by Run in production and by
// Step directly in tests.
type Script struct {
	h   host.Host
	log *scriptlog.Logger
	now func() time.Time

	room      Room
	enteredAt time.Time

	BottlesThrown int
	BottlesPicked int

	ui          *statusPanel
	lastUpdated time.Time
}

// New builds the script, logging under dir.
func New(h host.Host, dir string, debug bool) *Script {
	return &Script{
		h:   h,
		log: scriptlog.New("shadowguard", dir, debug),
		now: time.Now,
	}
}

// Run loops until the host asks the script to stop.
func (s *Script) Run() {
	s.h.SysMsg("Shadowguard helper running.", 0x3F)
	for !s.h.StopRequested() {
		s.h.ProcessCallbacks()
		s.Step()
		s.h.Pause(250 * time.Millisecond)
	}
	s.Cleanup()
}

// Step runs one detection-and-act iteration.
func (s *Script) Step() {
	room := s.DetectRoom()
	if room != s.room {
		s.room = room
		s.enteredAt = s.now()
		s.h.SysMsg("Room: "+room.String(), 0x3F)
		s.log.Info("main", "room_change", "entered "+room.String(), nil)
		if room == RoomBar {
			s.BottlesThrown = 0
			s.BottlesPicked = 0
		}
	}
	switch room {
	case RoomBar:
		s.handleBar()
	case RoomLobby:
		s.h.Pause(2 * time.Second)
	default:
		s.h.Pause(time.Second)
	}
	s.updatePanel()
}

// DetectRoom classifies the player's surroundings. The bar wins over the
// lobby because its markers are more specific.
func (s *Script) DetectRoom() Room {
	if s.isBar() {
		return RoomBar
	}
	if s.isLobby() {
		return RoomLobby
	}
	return RoomUnknown
}

// isBar looks for liquor bottles on the tables, falling back to the pirate
// crew's murderer notoriety.
func (s *Script) isBar() bool {
	for _, b := range s.h.FindTypeGround(bottleGraphic, detectRange) {
		name := strings.ToLower(b.Name())
		if strings.Contains(name, "bottle") && strings.Contains(name, "liquor") {
			return true
		}
	}
	return len(s.h.Mobiles(detectRange, host.NotorietyMurderer)) > 0
}

// isLobby needs both of the lobby's fixtures on the ground nearby.
func (s *Script) isLobby() bool {
	var crystal, ankh bool
	for _, it := range s.h.GroundItems(30) {
		name := strings.ToLower(it.Name())
		if strings.Contains(name, "crystal ball") {
			crystal = true
		} else if strings.Contains(name, "ankh") {
			ankh = true
		}
		if crystal && ankh {
			return true
		}
	}
	return false
}

// handleBar runs one bar-room beat: clear stray cursors, refuse to fight at
// low health, then throw a bottle at the weakest pirate in range.
func (s *Script) handleBar() {
	if s.h.HasTarget() {
		s.h.CancelTarget()
	}

	if s.h.Player().Hits() < lowHealth {
		s.h.SysMsg("Heal thyself!", 0x21)
		s.h.Pause(5 * time.Second)
		return
	}

	// Table bottles are preferred so the backpack stock lasts.
	var tableBottle, useBottle host.Item
	if table := s.h.FindTypeGround(bottleGraphic, tableReach); len(table) > 0 {
		tableBottle = table[0]
		useBottle = tableBottle
	} else if b, ok := s.h.FindType(bottleGraphic, host.Backpack); ok {
		useBottle = b
	}
	if useBottle == nil {
		s.h.Pause(600 * time.Millisecond)
		return
	}

	target := s.pickTarget()
	if target == nil {
		// Nothing to throw at; restock from the table meanwhile.
		s.pickupTableBottle(tableBottle)
		s.h.Pause(600 * time.Millisecond)
		return
	}

	if err := s.h.UseObject(useBottle.Serial()); err != nil {
		s.log.Warn("bar", "throw", "bottle use failed", map[string]any{"error": err.Error()})
		return
	}
	if s.h.WaitForTarget(150 * time.Millisecond) {
		s.h.Pause(50 * time.Millisecond)
		s.h.Target(target.Serial())
		s.BottlesThrown++
		s.log.Debug("bar", "throw", "bottle thrown", map[string]any{
			"target": target.Name(), "thrown": s.BottlesThrown,
		})
	} else if s.h.HasTarget() {
		s.h.CancelTarget()
	}

	s.pickupTableBottle(tableBottle)
	s.h.Pause(600 * time.Millisecond)
}

// pickTarget returns the pirate with the lowest hits inside throwing range,
// skipping invulnerable ones.
func (s *Script) pickTarget() host.Mobile {
	enemies := s.h.Mobiles(throwRange, host.NotorietyMurderer)
	sort.Slice(enemies, func(i, j int) bool { return enemies[i].Hits() < enemies[j].Hits() })
	for _, e := range enemies {
		if !e.Invulnerable() {
			return e
		}
	}
	return nil
}

func (s *Script) pickupTableBottle(bottle host.Item) {
	if bottle == nil || bottle.Container() == host.Backpack {
		return
	}
	if err := s.h.MoveItem(bottle.Serial(), host.Backpack, 1); err != nil {
		s.log.Debug("bar", "pickup", "bottle pickup failed", map[string]any{"error": err.Error()})
		return
	}
	s.BottlesPicked++
	s.h.Pause(200 * time.Millisecond)
}

func (s *Script) backpackBottles() int {
	n := 0
	for _, b := range s.h.FindTypeAll(bottleGraphic, host.Backpack) {
		n += b.Amount()
	}
	return n
}

// Cleanup cancels any cursor left over and drops the panel.
func (s *Script) Cleanup() {
	if s.h.HasTarget() {
		s.h.CancelTarget()
	}
	if s.ui != nil {
		s.ui.close()
		s.ui = nil
	}
	s.log.Info("main", "stop", "shadowguard helper stopped", map[string]any{
		"thrown": s.BottlesThrown, "picked": s.BottlesPicked,
	})
}
