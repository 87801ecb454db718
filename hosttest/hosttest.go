// Package hosttest is an in-memory host implementation for script tests.
// Items, mobiles, panels and callbacks are all scriptable from the test;
// callbacks queue until ProcessCallbacks like the real client's cooperative
// delivery.
package hosttest

import (
	"errors"
	"fmt"
	"time"

	"farmhand/host"
)

// Host implements host.Host.
type Host struct {
	Msgs    []string // SysMsg lines, most recent last
	Slept   time.Duration
	Said    []string
	Used    []uint32 // UseObject serials in call order
	Moved   []uint32 // MoveItem serials in call order
	Targets []uint32 // Target serials in call order

	// TargetReady controls WaitForTarget's answer.
	TargetReady bool
	// MenuText answers ContextMenuText; nil means "not supported".
	MenuText func(serial uint32, entry int) (string, error)
	// FieldCaps is applied to fields created after it is set.
	FieldCaps host.FieldCaps

	Panels []*Panel

	stop       bool
	queue      []func()
	items      []*Item
	mobiles    []*Mobile
	player     *fakePlayer
	deathFns   map[int]func()
	nextDeath  int
	nextSerial uint32
	hasTarget  bool
}

// New returns an empty fake host with the player at the origin.
func New() *Host {
	h := &Host{
		FieldCaps:  host.FieldCaps{SetText: true},
		deathFns:   map[int]func(){},
		nextSerial: 0x1000,
	}
	h.player = &fakePlayer{name: "Tester", hits: 100}
	return h
}

func (h *Host) SysMsg(msg string, hue int) { h.Msgs = append(h.Msgs, msg) }

func (h *Host) Pause(d time.Duration) { h.Slept += d }

func (h *Host) ProcessCallbacks() {
	pending := h.queue
	h.queue = nil
	for _, fn := range pending {
		fn()
	}
}

// Queue schedules fn for the next ProcessCallbacks, mimicking asynchronous
// host callback delivery.
func (h *Host) Queue(fn func()) { h.queue = append(h.queue, fn) }

// RequestStop makes StopRequested return true from now on.
func (h *Host) RequestStop() { h.stop = true }

func (h *Host) StopRequested() bool { return h.stop }

// LastMsg returns the most recent SysMsg, or "" if none.
func (h *Host) LastMsg() string {
	if len(h.Msgs) == 0 {
		return ""
	}
	return h.Msgs[len(h.Msgs)-1]
}

func (h *Host) serial() uint32 {
	h.nextSerial++
	return h.nextSerial
}

// --- events ---

func (h *Host) OnPlayerDeath(fn func()) func() {
	id := h.nextDeath
	h.nextDeath++
	h.deathFns[id] = fn
	return func() { delete(h.deathFns, id) }
}

// FireDeath queues a player-death event for the next ProcessCallbacks.
func (h *Host) FireDeath() {
	for _, fn := range h.deathFns {
		h.Queue(fn)
	}
}

// --- world ---

// AddItem places a scripted item in the world or a container.
func (h *Host) AddItem(graphic int, name string, amount int, in host.Container, x, y int) *Item {
	it := &Item{
		serial: h.serial(), graphic: graphic, name: name,
		amount: amount, cont: in, x: x, y: y,
	}
	h.items = append(h.items, it)
	return it
}

// AddMobile places a scripted mobile in the world.
func (h *Host) AddMobile(name string, hits int, noto host.Notoriety, x, y int) *Mobile {
	m := &Mobile{serial: h.serial(), name: name, hits: hits, noto: noto, x: x, y: y}
	h.mobiles = append(h.mobiles, m)
	return m
}

// RemoveItem takes an item out of the world.
func (h *Host) RemoveItem(serial uint32) {
	for i, it := range h.items {
		if it.serial == serial {
			h.items = append(h.items[:i], h.items[i+1:]...)
			return
		}
	}
}

func (h *Host) FindType(graphic int, in host.Container) (host.Item, bool) {
	for _, it := range h.items {
		if it.graphic == graphic && it.cont == in {
			return it, true
		}
	}
	return nil, false
}

func (h *Host) FindTypeAll(graphic int, in host.Container) []host.Item {
	var out []host.Item
	for _, it := range h.items {
		if it.graphic == graphic && it.cont == in {
			out = append(out, it)
		}
	}
	return out
}

func (h *Host) FindTypeGround(graphic int, rng int) []host.Item {
	px, py := h.player.Position()
	var out []host.Item
	for _, it := range h.items {
		if it.cont == host.Ground && it.graphic == graphic && chebyshev(px, py, it.x, it.y) <= rng {
			out = append(out, it)
		}
	}
	return out
}

func (h *Host) GroundItems(rng int) []host.Item {
	px, py := h.player.Position()
	var out []host.Item
	for _, it := range h.items {
		if it.cont == host.Ground && chebyshev(px, py, it.x, it.y) <= rng {
			out = append(out, it)
		}
	}
	return out
}

func (h *Host) FindItem(serial uint32) (host.Item, bool) {
	for _, it := range h.items {
		if it.serial == serial {
			return it, true
		}
	}
	return nil, false
}

func (h *Host) Mobiles(rng int, notos ...host.Notoriety) []host.Mobile {
	px, py := h.player.Position()
	var out []host.Mobile
	for _, m := range h.mobiles {
		if chebyshev(px, py, m.x, m.y) > rng {
			continue
		}
		if len(notos) > 0 {
			ok := false
			for _, n := range notos {
				if m.noto == n {
					ok = true
					break
				}
			}
			if !ok {
				continue
			}
		}
		out = append(out, m)
	}
	return out
}

func (h *Host) Player() host.Player { return h.player }

// SetPlayer moves the player and sets their hit points.
func (h *Host) SetPlayer(x, y, hits int) {
	h.player.x, h.player.y, h.player.hits = x, y, hits
}

func (h *Host) UseObject(serial uint32) error {
	h.Used = append(h.Used, serial)
	if h.TargetReady {
		h.hasTarget = true
	}
	return nil
}

func (h *Host) MoveItem(serial uint32, to host.Container, amount int) error {
	for _, it := range h.items {
		if it.serial == serial {
			it.cont = to
			h.Moved = append(h.Moved, serial)
			return nil
		}
	}
	return fmt.Errorf("no item %#x", serial)
}

func (h *Host) Say(text string) { h.Said = append(h.Said, text) }

func (h *Host) HasTarget() bool { return h.hasTarget }

func (h *Host) CancelTarget() { h.hasTarget = false }

func (h *Host) WaitForTarget(timeout time.Duration) bool {
	return h.hasTarget || h.TargetReady
}

func (h *Host) Target(serial uint32) {
	h.Targets = append(h.Targets, serial)
	h.hasTarget = false
}

func (h *Host) ContextMenuText(serial uint32, entry int) (string, error) {
	if h.MenuText == nil {
		return "", errors.New("context menu read unsupported")
	}
	return h.MenuText(serial, entry)
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

type fakePlayer struct {
	name string
	hits int
	x, y int
}

func (p *fakePlayer) Serial() uint32       { return 1 }
func (p *fakePlayer) Name() string         { return p.name }
func (p *fakePlayer) Hits() int            { return p.hits }
func (p *fakePlayer) Position() (int, int) { return p.x, p.y }

// Item implements host.Item with test-settable fields.
type Item struct {
	serial  uint32
	graphic int
	name    string
	hue     int
	amount  int
	x, y    int
	cont    host.Container
}

func (it *Item) Serial() uint32            { return it.serial }
func (it *Item) Name() string              { return it.name }
func (it *Item) Graphic() int              { return it.graphic }
func (it *Item) Hue() int                  { return it.hue }
func (it *Item) SetHue(hue int)            { it.hue = hue }
func (it *Item) Amount() int               { return it.amount }
func (it *Item) Position() (int, int)      { return it.x, it.y }
func (it *Item) Container() host.Container { return it.cont }

// SetAmount changes the scripted stack size.
func (it *Item) SetAmount(n int) { it.amount = n }

// Mobile implements host.Mobile with test-settable fields.
type Mobile struct {
	serial uint32
	name   string
	hits   int
	noto   host.Notoriety
	invuln bool
	x, y   int
}

func (m *Mobile) Serial() uint32            { return m.serial }
func (m *Mobile) Name() string              { return m.name }
func (m *Mobile) Hits() int                 { return m.hits }
func (m *Mobile) Notoriety() host.Notoriety { return m.noto }
func (m *Mobile) Invulnerable() bool        { return m.invuln }

// SetInvulnerable marks the mobile untargetable.
func (m *Mobile) SetInvulnerable(v bool) { m.invuln = v }
