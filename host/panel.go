package host

// UI creates panels. Panels are owned by the host once created; the user can
// close any panel at any time, so callers must register OnDispose and be
// prepared to recreate.
type UI interface {
	NewPanel(opts PanelOptions) Panel
}

// PanelOptions configures a new panel.
type PanelOptions struct {
	Movable  bool
	KeepOpen bool // hint to the host that the panel should survive escapes
}

// ControlArea is anything controls can be added to: a panel or a group
// inside one. Coordinates are relative to the area's origin.
type ControlArea interface {
	AddBox(opacity float64, color string, x, y, w, h int) Box
	AddLabel(text string, hue int, x, y int) Label
	AddField(text string, x, y, w, h int) TextField
	AddButton(label string, x, y, w, h int, onClick func())
}

// Panel is one on-screen surface. The host may dispose it out from under
// the caller; Disposed reports the current state and OnDispose callbacks
// fire during ProcessCallbacks.
type Panel interface {
	ControlArea

	SetRect(x, y, w, h int)
	SetPos(x, y int)
	Pos() (x, y int)
	Size() (w, h int)
	Center()

	// AddGroup reserves a sub-area whose contents can be cleared and
	// rebuilt without touching the rest of the panel.
	AddGroup(x, y, w, h int) Group

	// OnDispose registers fn to run when the panel is disposed, whether by
	// the host, the user, or a Dispose call.
	OnDispose(fn func())
	// Dispose removes the panel. An error means the host refused; the
	// panel is still alive and the caller must degrade some other way.
	Dispose() error
	Disposed() bool
}

// Group is a clearable region inside a panel.
type Group interface {
	ControlArea
	Clear()
}

// Box is a solid color region. Width/height of zero hides it.
type Box interface {
	SetRect(x, y, w, h int)
	SetWidth(w int)
	SetHeight(h int)
}

// Label is a text control whose text and hue can be rewritten in place.
type Label interface {
	Text() string
	SetText(s string)
	SetHue(hue int)
}

// FieldCaps reports which optional operations a text field supports. Not
// every host field implementation can be written programmatically; callers
// branch on the flag instead of probing.
type FieldCaps struct {
	SetText bool
}

// TextField is a user-editable text control. SetText is a no-op when
// Caps().SetText is false.
type TextField interface {
	Text() string
	Caps() FieldCaps
	SetText(s string)
}
