package tok

import (
	"testing"

	"farmhand/host"
	"farmhand/hosttest"
)

func TestLeverScanMarksOnlyUsable(t *testing.T) {
	h := hosttest.New()
	usable := h.AddItem(leverGraphics[0], leverUsableName, 1, host.Ground, 5, 5)
	other := h.AddItem(leverGraphics[1], leverUsableName, 1, host.Ground, 6, 5)
	dead := h.AddItem(leverGraphics[0], leverUnusableName, 1, host.Ground, 7, 5)

	s := New(h, t.TempDir(), false)
	s.Step()

	if s.usableTotal != 2 {
		t.Fatalf("usable levers = %d, want 2", s.usableTotal)
	}
	if usable.Hue() != hueGreen || other.Hue() != hueGreen {
		t.Fatalf("usable levers not painted green: %#x, %#x", usable.Hue(), other.Hue())
	}
	if dead.Hue() != 0 {
		t.Fatalf("unusable lever painted: %#x", dead.Hue())
	}
}

func TestLeverUsedOnlyWhenAdjacent(t *testing.T) {
	h := hosttest.New()
	lever := h.AddItem(leverGraphics[0], leverUsableName, 1, host.Ground, 5, 5)

	s := New(h, t.TempDir(), false)
	s.Step()
	if len(h.Used) != 0 {
		t.Fatalf("lever used from across the room")
	}

	h.SetPlayer(5, 6, 100) // adjacent
	s.Step()
	if len(h.Used) != 1 || h.Used[0] != lever.Serial() {
		t.Fatalf("used %v, want lever %#x", h.Used, lever.Serial())
	}

	// Memory, not the world: standing there again does not re-use it.
	s.Step()
	if len(h.Used) != 1 {
		t.Fatalf("lever used twice")
	}
}

func TestFlamePhaseStartsAfterLastLever(t *testing.T) {
	h := hosttest.New()
	h.AddItem(leverGraphics[0], leverUsableName, 1, host.Ground, 5, 5)
	flame := h.AddItem(flameGraphic, flameOrderName, 1, host.Ground, 12, 0)

	s := New(h, t.TempDir(), false)
	s.Step()
	if s.flamesScanned {
		t.Fatalf("flame phase started with a lever still usable")
	}
	if flame.Hue() != 0 {
		t.Fatalf("flame painted before its phase")
	}

	h.SetPlayer(5, 6, 100)
	s.Step() // uses the lever
	s.Step() // next beat scans flames
	if !s.flamesScanned {
		t.Fatalf("flame phase did not start after the last lever")
	}
	if flame.Hue() != hueGreen {
		t.Fatalf("flame hue = %#x, want green %#x", flame.Hue(), hueGreen)
	}
}

func TestFlamesSpeakPasswordsAndFinish(t *testing.T) {
	h := hosttest.New()
	order := h.AddItem(flameGraphic, flameOrderName, 1, host.Ground, 1, 0)
	chaos := h.AddItem(flameGraphic, flameChaosName, 1, host.Ground, 0, 1)
	h.AddItem(flameGraphic, "a brazier", 1, host.Ground, 2, 2) // ignored

	s := New(h, t.TempDir(), false)
	s.Step() // no levers at all: straight to flames
	if !s.flamesScanned || len(s.flames) != 2 {
		t.Fatalf("flames scanned=%v count=%d, want both flames", s.flamesScanned, len(s.flames))
	}

	s.Step()
	if len(h.Said) != 2 {
		t.Fatalf("said %v, want both passwords", h.Said)
	}
	said := map[string]bool{}
	for _, w := range h.Said {
		said[w] = true
	}
	if !said["Ord"] || !said["Anord"] {
		t.Fatalf("said %v, want Ord and Anord", h.Said)
	}
	if order.Hue() != hueRed || chaos.Hue() != hueRed {
		t.Fatalf("used flames not repainted red: %#x, %#x", order.Hue(), chaos.Hue())
	}
	if !s.Done() {
		t.Fatalf("script not done after both flames")
	}

	s.Cleanup()
	if order.Hue() != 0 || chaos.Hue() != 0 {
		t.Fatalf("cleanup left hues set: %#x, %#x", order.Hue(), chaos.Hue())
	}
}
