package tracker

import (
	"errors"
	"testing"

	"farmhand/hosttest"
	"farmhand/scriptlog"
)

func TestAutoReadInsurance(t *testing.T) {
	h := hosttest.New()
	h.MenuText = func(serial uint32, entry int) (string, error) {
		if entry != insuranceMenuEntry {
			t.Fatalf("read entry %d, want %d", entry, insuranceMenuEntry)
		}
		return "Item Insurance Menu\nTotal Cost of Insurance: 1372 gold", nil
	}
	cost, ok := autoReadInsurance(h, scriptlog.Discard())
	if !ok || cost != 1372 {
		t.Fatalf("got %d, %v; want 1372, true", cost, ok)
	}
}

func TestAutoReadInsuranceFallsBack(t *testing.T) {
	h := hosttest.New()
	if _, ok := autoReadInsurance(h, scriptlog.Discard()); ok {
		t.Fatalf("read succeeded with no context menu support")
	}

	h.MenuText = func(uint32, int) (string, error) {
		return "", errors.New("menu closed")
	}
	if _, ok := autoReadInsurance(h, scriptlog.Discard()); ok {
		t.Fatalf("read succeeded on menu error")
	}

	h.MenuText = func(uint32, int) (string, error) {
		return "no cost in here", nil
	}
	if _, ok := autoReadInsurance(h, scriptlog.Discard()); ok {
		t.Fatalf("read succeeded without a cost line")
	}
}
