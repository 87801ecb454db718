package shadowguard

import (
	"testing"

	"farmhand/host"
	"farmhand/hosttest"
)

func TestDetectRoom(t *testing.T) {
	t.Run("bar by bottle name", func(t *testing.T) {
		h := hosttest.New()
		h.AddItem(bottleGraphic, "A Bottle Of Liquor", 1, host.Ground, 3, 3)
		s := New(h, t.TempDir(), false)
		if got := s.DetectRoom(); got != RoomBar {
			t.Fatalf("room = %v, want Bar", got)
		}
	})
	t.Run("bar by pirates", func(t *testing.T) {
		h := hosttest.New()
		h.AddMobile("a pirate", 80, host.NotorietyMurderer, 10, 10)
		s := New(h, t.TempDir(), false)
		if got := s.DetectRoom(); got != RoomBar {
			t.Fatalf("room = %v, want Bar", got)
		}
	})
	t.Run("lobby needs both fixtures", func(t *testing.T) {
		h := hosttest.New()
		h.AddItem(0x0E2E, "a crystal ball", 1, host.Ground, 2, 2)
		s := New(h, t.TempDir(), false)
		if got := s.DetectRoom(); got != RoomUnknown {
			t.Fatalf("room with only crystal ball = %v, want Unknown", got)
		}
		h.AddItem(0x0003, "an ankh", 1, host.Ground, 4, 4)
		if got := s.DetectRoom(); got != RoomLobby {
			t.Fatalf("room = %v, want Lobby", got)
		}
	})
	t.Run("wrong bottle graphic name is not the bar", func(t *testing.T) {
		h := hosttest.New()
		h.AddItem(bottleGraphic, "an empty bottle", 1, host.Ground, 3, 3)
		s := New(h, t.TempDir(), false)
		if got := s.DetectRoom(); got != RoomUnknown {
			t.Fatalf("room = %v, want Unknown", got)
		}
	})
}

func TestBarThrowsAtWeakestPirate(t *testing.T) {
	h := hosttest.New()
	h.TargetReady = true
	h.AddItem(bottleGraphic, "A Bottle Of Liquor", 1, host.Backpack, 0, 0)
	strong := h.AddMobile("a pirate", 90, host.NotorietyMurderer, 2, 0)
	weak := h.AddMobile("a pirate", 15, host.NotorietyMurderer, 3, 1)
	_ = strong
	invuln := h.AddMobile("a pirate", 5, host.NotorietyMurderer, 1, 1)
	invuln.SetInvulnerable(true)

	s := New(h, t.TempDir(), false)
	s.handleBar()

	if s.BottlesThrown != 1 {
		t.Fatalf("thrown = %d, want 1", s.BottlesThrown)
	}
	if len(h.Targets) != 1 || h.Targets[0] != weak.Serial() {
		t.Fatalf("targeted %v, want weakest vulnerable pirate %#x", h.Targets, weak.Serial())
	}
}

func TestBarLowHealthGuard(t *testing.T) {
	h := hosttest.New()
	h.TargetReady = true
	h.SetPlayer(0, 0, lowHealth-1)
	h.AddItem(bottleGraphic, "A Bottle Of Liquor", 1, host.Backpack, 0, 0)
	h.AddMobile("a pirate", 50, host.NotorietyMurderer, 2, 0)

	s := New(h, t.TempDir(), false)
	s.handleBar()

	if s.BottlesThrown != 0 {
		t.Fatalf("threw a bottle at low health")
	}
	if got := h.LastMsg(); got != "Heal thyself!" {
		t.Fatalf("warning = %q, want %q", got, "Heal thyself!")
	}
}

func TestBarPrefersTableBottleAndRestocks(t *testing.T) {
	h := hosttest.New()
	h.TargetReady = true
	backpack := h.AddItem(bottleGraphic, "A Bottle Of Liquor", 1, host.Backpack, 0, 0)
	table := h.AddItem(bottleGraphic, "A Bottle Of Liquor", 1, host.Ground, 1, 1)
	h.AddMobile("a pirate", 40, host.NotorietyMurderer, 2, 0)

	s := New(h, t.TempDir(), false)
	s.handleBar()

	if len(h.Used) != 1 || h.Used[0] != table.Serial() {
		t.Fatalf("used %v, want table bottle %#x over backpack %#x", h.Used, table.Serial(), backpack.Serial())
	}
	if table.Container() != host.Backpack {
		t.Fatalf("table bottle not picked up after the throw")
	}
	if s.BottlesPicked != 1 {
		t.Fatalf("picked = %d, want 1", s.BottlesPicked)
	}
}

func TestBarCancelsStrayTarget(t *testing.T) {
	h := hosttest.New()
	h.TargetReady = true
	h.UseObject(1) // leaves a target cursor up
	if !h.HasTarget() {
		t.Fatalf("fake host did not raise a cursor")
	}
	s := New(h, t.TempDir(), false)
	s.handleBar()
	if h.HasTarget() {
		t.Fatalf("stray cursor survived the bar beat")
	}
}

func TestRestockWithoutEnemies(t *testing.T) {
	h := hosttest.New()
	table := h.AddItem(bottleGraphic, "A Bottle Of Liquor", 1, host.Ground, 1, 0)

	s := New(h, t.TempDir(), false)
	s.handleBar()

	if s.BottlesThrown != 0 {
		t.Fatalf("threw with no enemies in range")
	}
	if table.Container() != host.Backpack {
		t.Fatalf("idle beat did not restock the table bottle")
	}
}
