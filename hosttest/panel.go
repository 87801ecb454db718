package hosttest

import (
	"errors"

	"farmhand/host"
)

// Panel is a recording implementation of host.Panel. Controls added to it
// stay inspectable by the test, and UserClose simulates the client closing
// the window out from under the script.
type Panel struct {
	host *Host
	controls

	x, y, w, ht int
	centered    bool
	disposed    bool
	disposeFns  []func()

	// DisposeFails makes Dispose return an error without disposing,
	// like a client that refuses to tear the window down.
	DisposeFails bool
}

func (h *Host) NewPanel(opts host.PanelOptions) host.Panel {
	p := &Panel{host: h}
	p.controls.h = h
	h.Panels = append(h.Panels, p)
	return p
}

// OpenPanels counts panels not yet disposed.
func (h *Host) OpenPanels() int {
	n := 0
	for _, p := range h.Panels {
		if !p.disposed {
			n++
		}
	}
	return n
}

func (p *Panel) SetRect(x, y, w, h int) { p.x, p.y, p.w, p.ht = x, y, w, h }
func (p *Panel) SetPos(x, y int)        { p.x, p.y = x, y }
func (p *Panel) Pos() (int, int)        { return p.x, p.y }
func (p *Panel) Size() (int, int)       { return p.w, p.ht }
func (p *Panel) Center()                { p.centered = true }

func (p *Panel) AddGroup(x, y, w, h int) host.Group {
	g := &Group{}
	g.controls.h = p.host
	p.Groups = append(p.Groups, g)
	return g
}

func (p *Panel) OnDispose(fn func()) { p.disposeFns = append(p.disposeFns, fn) }

func (p *Panel) Dispose() error {
	if p.DisposeFails {
		return errors.New("window refused to close")
	}
	p.dispose()
	return nil
}

func (p *Panel) Disposed() bool { return p.disposed }

func (p *Panel) dispose() {
	if p.disposed {
		return
	}
	p.disposed = true
	for _, fn := range p.disposeFns {
		fn()
	}
}

// UserClose simulates the user closing the window: the panel disposes
// immediately but the script's dispose callbacks arrive asynchronously,
// on the next ProcessCallbacks.
func (p *Panel) UserClose() {
	if p.disposed {
		return
	}
	p.disposed = true
	fns := p.disposeFns
	p.host.Queue(func() {
		for _, fn := range fns {
			fn()
		}
	})
}

// Group is a recording host.Group.
type Group struct {
	controls
}

func (g *Group) Clear() { g.controls = controls{h: g.controls.h} }

// controls is the shared recording control area.
type controls struct {
	h       *Host
	Boxes   []*Box
	Labels  []*Label
	Fields  []*Field
	Buttons []*Button
	Groups  []*Group
}

func (c *controls) AddBox(opacity float64, color string, x, y, w, h int) host.Box {
	b := &Box{X: x, Y: y, W: w, H: h, Color: color}
	c.Boxes = append(c.Boxes, b)
	return b
}

func (c *controls) AddLabel(text string, hue int, x, y int) host.Label {
	l := &Label{text: text, hue: hue}
	c.Labels = append(c.Labels, l)
	return l
}

func (c *controls) AddField(text string, x, y, w, h int) host.TextField {
	f := &Field{text: text, caps: c.h.FieldCaps}
	c.Fields = append(c.Fields, f)
	return f
}

func (c *controls) AddButton(label string, x, y, w, h int, onClick func()) {
	c.Buttons = append(c.Buttons, &Button{Text: label, onClick: onClick})
}

// LabelTexts returns the current text of every label, in creation order.
func (c *controls) LabelTexts() []string {
	out := make([]string, len(c.Labels))
	for i, l := range c.Labels {
		out[i] = l.text
	}
	return out
}

// Button returns the first button whose label matches, or nil.
func (c *controls) Button(label string) *Button {
	for _, b := range c.Buttons {
		if b.Text == label {
			return b
		}
	}
	for _, g := range c.Groups {
		if b := g.Button(label); b != nil {
			return b
		}
	}
	return nil
}

// Box records an AddBox call.
type Box struct {
	X, Y, W, H int
	Color      string
}

func (b *Box) SetRect(x, y, w, h int) { b.X, b.Y, b.W, b.H = x, y, w, h }
func (b *Box) SetWidth(w int)         { b.W = w }
func (b *Box) SetHeight(h int)        { b.H = h }

// Label records an AddLabel call.
type Label struct {
	text string
	hue  int
}

func (l *Label) Text() string    { return l.text }
func (l *Label) SetText(s string) { l.text = s }
func (l *Label) SetHue(hue int)  { l.hue = hue }

// Hue returns the label's current hue.
func (l *Label) Hue() int { return l.hue }

// Field records an AddField call.
type Field struct {
	text string
	caps host.FieldCaps
}

func (f *Field) Text() string         { return f.text }
func (f *Field) Caps() host.FieldCaps { return f.caps }

func (f *Field) SetText(s string) {
	if f.caps.SetText {
		f.text = s
	}
}

// Type simulates the user typing into the field, bypassing caps.
func (f *Field) Type(s string) { f.text = s }

// Button records an AddButton call.
type Button struct {
	Text    string
	Clicks  int
	onClick func()
}

// Click invokes the button's handler like a user click.
func (b *Button) Click() {
	b.Clicks++
	if b.onClick != nil {
		b.onClick()
	}
}
