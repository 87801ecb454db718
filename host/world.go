package host

import "time"

// Notoriety classifies a mobile as the client reports it.
type Notoriety int

const (
	NotorietyInnocent Notoriety = iota + 1
	NotorietyAlly
	NotorietyGray
	NotorietyCriminal
	NotorietyEnemy
	NotorietyMurderer
)

// Container identifies where an item search looks.
type Container int

const (
	Ground Container = iota
	Backpack
)

// World exposes object queries and actions on the game world.
type World interface {
	// FindType returns the first item of the given graphic in a container.
	FindType(graphic int, in Container) (Item, bool)
	// FindTypeAll returns every item of the given graphic in a container.
	FindTypeAll(graphic int, in Container) []Item
	// FindTypeGround returns items of the given graphic on the ground
	// within rng tiles of the player (Chebyshev distance).
	FindTypeGround(graphic int, rng int) []Item
	// GroundItems returns all ground items within rng tiles.
	GroundItems(rng int) []Item
	// FindItem looks an item up by serial; it may have left the world.
	FindItem(serial uint32) (Item, bool)

	// Mobiles returns mobiles within rng tiles, optionally filtered to the
	// given notorieties.
	Mobiles(rng int, notos ...Notoriety) []Mobile
	Player() Player

	UseObject(serial uint32) error
	MoveItem(serial uint32, to Container, amount int) error
	Say(text string)

	HasTarget() bool
	CancelTarget()
	// WaitForTarget blocks until a target cursor appears or the timeout
	// elapses, reporting which.
	WaitForTarget(timeout time.Duration) bool
	Target(serial uint32)

	// ContextMenuText opens entry n of an object's context menu, reads the
	// text of whatever dialog the server answers with, closes it, and
	// returns the text. Used for best-effort auto-detection; callers must
	// have a manual fallback.
	ContextMenuText(serial uint32, entry int) (string, error)
}

// Player is the local player's state.
type Player interface {
	Serial() uint32
	Name() string
	Hits() int
	Position() (x, y int)
}

// Item is a live handle to a world or container item.
type Item interface {
	Serial() uint32
	Name() string
	Graphic() int
	Hue() int
	// SetHue recolors the item client-side only.
	SetHue(hue int)
	Amount() int
	Position() (x, y int)
	Container() Container
}

// Mobile is a live handle to a creature or player.
type Mobile interface {
	Serial() uint32
	Name() string
	Hits() int
	Notoriety() Notoriety
	Invulnerable() bool
}
