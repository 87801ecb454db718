package tracker

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hako/durafmt"

	"farmhand/host"
	"farmhand/scriptlog"
)

// Text hues, matching the client's palette.
const (
	hueNormal  = 0x03B2
	hueGood    = 0x0044
	hueBad     = 0x0021
	hueWarn    = 0x0035
	hueTitle   = 0x0481
	blinkEvery = 500 * time.Millisecond
)

// Panel geometry.
const (
	pickerW, pickerH = 500, 450
	modalW, modalH   = 450, 260
	liveW, liveH     = 450, 380
	miniW, miniH     = 200, 80
)

// uiFlags are the one-shot button intents the driver consumes once per tick.
type uiFlags struct {
	startClicked    bool
	newZoneClicked  bool
	modalConfirm    bool
	modalCancel     bool
	insuranceOK     bool
	pauseClicked    bool
	stopClicked     bool
	cancelClicked   bool
	minimizeClicked bool
	adjustClicked   bool
}

// liveControls are the handles update writes into. Updating never recreates
// controls; it only rewrites text and hue.
type liveControls struct {
	zone      host.Label
	duration  host.Label
	gold      host.Label
	perHour   host.Label
	deaths    host.Label
	insurance host.Label
	net       host.Label
	updated   host.Label
	adjust    host.TextField
}

// trackerUI owns the tracker's panels and the user-entered text that must
// survive the client closing a panel. Build funcs read the preserved mirrors
// so a recreated panel comes back with what the user had typed.
type trackerUI struct {
	h     host.Host
	rec   *Reconciler
	zones *ZoneDirectory
	log   *scriptlog.Logger
	now   func() time.Time

	flags uiFlags

	// preserved user input, polled back from fields every tick
	filterText    string
	selectionText string
	modalText     string
	insuranceText string
	adjustText    string

	hint string // "did you mean" line under the picker

	filterField    host.TextField
	selectionField host.TextField
	entriesGroup   host.Group
	modalField     host.TextField
	insuranceField host.TextField
	insuranceMsg   host.Label

	live liveControls
	mini liveControls

	// anchor is the live panel's top-right corner, carried across the
	// full/mini swap so the panel does not jump.
	anchorX, anchorY int
	minimized        bool
}

func newTrackerUI(h host.Host, rec *Reconciler, zones *ZoneDirectory, log *scriptlog.Logger) *trackerUI {
	if log == nil {
		log = scriptlog.Discard()
	}
	return &trackerUI{
		h: h, rec: rec, zones: zones, log: log,
		now:     time.Now,
		anchorX: 700, anchorY: 100,
	}
}

// consumeFlags returns the pending intents and clears them.
func (ui *trackerUI) consumeFlags() uiFlags {
	f := ui.flags
	ui.flags = uiFlags{}
	return f
}

// zoneEntry is one selectable row of the picker. It holds its zone name by
// value so every entry writes its own name, not whatever a shared loop
// variable last held.
type zoneEntry struct {
	name  string
	field host.TextField
}

func (e zoneEntry) click() {
	if e.field.Caps().SetText {
		e.field.SetText(e.name)
	}
}

// ShowZonePicker puts the zone picker on screen (or re-shows it after an
// external close, with the filter text restored).
func (ui *trackerUI) ShowZonePicker() {
	ui.rec.Show(PanelZonePicker, ui.buildZonePicker)
}

func (ui *trackerUI) buildZonePicker() host.Panel {
	p := ui.h.NewPanel(host.PanelOptions{Movable: true, KeepOpen: true})
	p.SetRect(100, 100, pickerW, pickerH)
	p.AddBox(0.9, "black", 0, 0, pickerW, pickerH)
	p.AddLabel("Gold Tracker - Select Zone", hueTitle, 20, 15)
	p.AddLabel("Filter:", hueNormal, 20, 50)
	ui.filterField = p.AddField(ui.filterText, 80, 45, 260, 25)
	p.AddLabel("Zone:", hueNormal, 20, pickerH-90)
	ui.selectionField = p.AddField(ui.selectionText, 80, pickerH-95, 260, 25)
	p.AddButton("Start", 360, pickerH-95, 100, 25, func() { ui.flags.startClicked = true })
	p.AddButton("New Zone", 360, 45, 100, 25, func() { ui.flags.newZoneClicked = true })
	p.AddLabel(ui.hint, hueWarn, 20, pickerH-55)
	ui.entriesGroup = p.AddGroup(20, 85, pickerW-40, pickerH-190)
	ui.fillEntries(ui.zones.Filter(ui.filterText))
	return p
}

func (ui *trackerUI) fillEntries(names []string) {
	if ui.entriesGroup == nil {
		return
	}
	ui.entriesGroup.Clear()
	y := 0
	for _, name := range names {
		e := zoneEntry{name: name, field: ui.selectionField}
		ui.entriesGroup.AddButton(name, 0, y, pickerW-60, 22, e.click)
		y += 26
	}
}

// PollZonePicker mirrors the filter and selection fields and rebuilds the
// entry list when the filter changed. Returns the current selection text.
func (ui *trackerUI) PollZonePicker() string {
	if ui.filterField != nil {
		if text := ui.filterField.Text(); text != ui.filterText {
			ui.filterText = text
			ui.fillEntries(ui.zones.Filter(text))
		}
	}
	if ui.selectionField != nil {
		ui.selectionText = ui.selectionField.Text()
	}
	return ui.selectionText
}

// SetHint rewrites the picker's hint line on the next rebuild.
func (ui *trackerUI) SetHint(hint string) {
	if ui.hint == hint {
		return
	}
	ui.hint = hint
	if ui.rec.Visible(PanelZonePicker) {
		ui.rec.CloseIntentional(PanelZonePicker)
		ui.rec.Show(PanelZonePicker, ui.buildZonePicker)
	}
}

// ShowNewZoneModal opens the comma-separated alias modal, pre-filled.
func (ui *trackerUI) ShowNewZoneModal(prefill string) {
	ui.modalText = prefill
	ui.rec.Show(PanelModal, ui.buildNewZoneModal)
}

func (ui *trackerUI) buildNewZoneModal() host.Panel {
	p := ui.h.NewPanel(host.PanelOptions{Movable: true, KeepOpen: true})
	p.SetRect(150, 150, modalW, modalH)
	p.Center()
	p.AddBox(0.9, "black", 0, 0, modalW, modalH)
	p.AddLabel("Create New Zone", hueTitle, 20, 15)
	p.AddLabel("Name and aliases, comma separated.", hueNormal, 20, 50)
	p.AddLabel("The first entry becomes the zone name.", hueNormal, 20, 72)
	ui.modalField = p.AddField(ui.modalText, 20, 105, modalW-40, 25)
	p.AddButton("Create", 20, modalH-50, 120, 30, func() { ui.flags.modalConfirm = true })
	p.AddButton("Cancel", modalW-140, modalH-50, 120, 30, func() { ui.flags.modalCancel = true })
	return p
}

// PollModal mirrors the modal's field so recreation preserves typed text.
func (ui *trackerUI) PollModal() string {
	if ui.modalField != nil {
		ui.modalText = ui.modalField.Text()
	}
	return ui.modalText
}

// CloseModal dismisses the modal without recreation.
func (ui *trackerUI) CloseModal() {
	ui.rec.CloseIntentional(PanelModal)
	ui.modalField = nil
	ui.modalText = ""
}

// ShowInsuranceModal asks for the per-death insurance cost, pre-filled with
// the cached value.
func (ui *trackerUI) ShowInsuranceModal(prefill int64) {
	if ui.insuranceText == "" {
		ui.insuranceText = fmt.Sprintf("%d", prefill)
	}
	ui.rec.Show(PanelModal, ui.buildInsuranceModal)
}

func (ui *trackerUI) buildInsuranceModal() host.Panel {
	p := ui.h.NewPanel(host.PanelOptions{Movable: true, KeepOpen: true})
	p.SetRect(150, 150, modalW, modalH)
	p.Center()
	p.AddBox(0.9, "black", 0, 0, modalW, modalH)
	p.AddLabel("Insurance Cost", hueTitle, 20, 15)
	p.AddLabel("Gold paid per death:", hueNormal, 20, 55)
	ui.insuranceField = p.AddField(ui.insuranceText, 20, 85, 200, 25)
	ui.insuranceMsg = p.AddLabel("", hueBad, 20, 120)
	p.AddButton("OK", 20, modalH-50, 120, 30, func() { ui.flags.insuranceOK = true })
	return p
}

// PollInsurance mirrors the insurance field text.
func (ui *trackerUI) PollInsurance() string {
	if ui.insuranceField != nil {
		ui.insuranceText = ui.insuranceField.Text()
	}
	return ui.insuranceText
}

// RejectInsurance shows a parse message without touching the typed input.
func (ui *trackerUI) RejectInsurance(msg string) {
	if ui.insuranceMsg != nil {
		ui.insuranceMsg.SetText(msg)
	}
}

// CloseInsurance dismisses the insurance modal.
func (ui *trackerUI) CloseInsurance() {
	ui.rec.CloseIntentional(PanelModal)
	ui.insuranceField = nil
	ui.insuranceMsg = nil
	ui.insuranceText = ""
}

// ShowLive puts the live panel on screen in the current full/mini form.
func (ui *trackerUI) ShowLive(view SessionView) {
	if ui.minimized {
		ui.rec.Show(PanelLiveMini, func() host.Panel { return ui.buildLiveMini(view) })
	} else {
		ui.rec.Show(PanelLiveFull, func() host.Panel { return ui.buildLiveFull(view) })
	}
}

// ToggleMinimize swaps between the full and minimized live panels, keeping
// the top-right corner where it was.
func (ui *trackerUI) ToggleMinimize(view SessionView) {
	if ui.minimized {
		ui.captureAnchor(PanelLiveMini)
		ui.rec.CloseIntentional(PanelLiveMini)
		ui.minimized = false
	} else {
		ui.captureAnchor(PanelLiveFull)
		ui.rec.CloseIntentional(PanelLiveFull)
		ui.minimized = true
	}
	ui.ShowLive(view)
}

func (ui *trackerUI) captureAnchor(kind PanelKind) {
	p := ui.rec.Panel(kind)
	if p == nil {
		return
	}
	x, y := p.Pos()
	w, _ := p.Size()
	ui.anchorX, ui.anchorY = x+w, y
}

func (ui *trackerUI) buildLiveFull(view SessionView) host.Panel {
	p := ui.h.NewPanel(host.PanelOptions{Movable: true, KeepOpen: true})
	p.SetRect(ui.anchorX-liveW, ui.anchorY, liveW, liveH)
	p.AddBox(0.85, "black", 0, 0, liveW, liveH)
	p.AddLabel("Gold Tracker", hueTitle, 20, 15)

	c := &ui.live
	c.zone = p.AddLabel("Zone: "+view.Zone, hueNormal, 20, 50)
	c.duration = p.AddLabel("Time: "+view.ElapsedText, hueNormal, 20, 78)
	c.gold = p.AddLabel("Gold: "+humanize.Comma(view.GoldGained), hueNormal, 20, 106)
	c.perHour = p.AddLabel("Gold/hr: "+humanize.Comma(view.GoldPerHour), hueNormal, 20, 134)
	c.deaths = p.AddLabel(fmt.Sprintf("Deaths: %d", view.Deaths), hueNormal, 20, 162)
	c.insurance = p.AddLabel("Insurance: "+humanize.Comma(view.InsuranceCost), hueNormal, 20, 190)
	c.net = p.AddLabel("Net: "+humanize.Comma(view.NetProfit), netHue(view.NetProfit), 20, 218)
	c.updated = p.AddLabel("", hueNormal, 20, 246)

	p.AddLabel("Adjust:", hueNormal, 20, 280)
	c.adjust = p.AddField(ui.adjustText, 85, 275, 120, 25)
	p.AddButton("Apply", 215, 275, 70, 25, func() { ui.flags.adjustClicked = true })

	p.AddButton("Pause", 20, liveH-45, 90, 30, func() { ui.flags.pauseClicked = true })
	p.AddButton("Stop", 120, liveH-45, 90, 30, func() { ui.flags.stopClicked = true })
	p.AddButton("Cancel", 220, liveH-45, 90, 30, func() { ui.flags.cancelClicked = true })
	p.AddButton("_", liveW-40, 10, 25, 25, func() { ui.flags.minimizeClicked = true })
	return p
}

func (ui *trackerUI) buildLiveMini(view SessionView) host.Panel {
	p := ui.h.NewPanel(host.PanelOptions{Movable: true, KeepOpen: true})
	p.SetRect(ui.anchorX-miniW, ui.anchorY, miniW, miniH)
	p.AddBox(0.85, "black", 0, 0, miniW, miniH)

	c := &ui.mini
	c.net = p.AddLabel("Net: "+humanize.Comma(view.NetProfit), netHue(view.NetProfit), 15, 15)
	c.duration = p.AddLabel(view.ElapsedText, hueNormal, 15, 45)
	p.AddButton("+", miniW-35, 10, 25, 25, func() { ui.flags.minimizeClicked = true })
	return p
}

// UpdateLive rewrites the live panel's fields in place. While paused, the
// duration label blinks on a fixed wall-clock cadence instead of advancing.
func (ui *trackerUI) UpdateLive(view SessionView) {
	now := ui.now()
	if ui.minimized {
		c := &ui.mini
		if c.net == nil {
			return
		}
		c.net.SetText("Net: " + humanize.Comma(view.NetProfit))
		c.net.SetHue(netHue(view.NetProfit))
		ui.setDuration(c.duration, view, now)
		return
	}
	c := &ui.live
	if c.zone == nil {
		return
	}
	c.zone.SetText("Zone: " + view.Zone)
	ui.setDuration(c.duration, view, now)
	c.gold.SetText("Gold: " + humanize.Comma(view.GoldGained))
	c.perHour.SetText("Gold/hr: " + humanize.Comma(view.GoldPerHour))
	c.deaths.SetText(fmt.Sprintf("Deaths: %d", view.Deaths))
	c.insurance.SetText("Insurance: " + humanize.Comma(view.InsuranceCost))
	c.net.SetText("Net: " + humanize.Comma(view.NetProfit))
	c.net.SetHue(netHue(view.NetProfit))
	c.updated.SetText("Updated " + now.Format("15:04:05"))
	if c.adjust != nil {
		ui.adjustText = c.adjust.Text()
	}
}

func (ui *trackerUI) setDuration(l host.Label, view SessionView, now time.Time) {
	if l == nil {
		return
	}
	if view.Paused {
		l.SetText("PAUSED " + view.ElapsedText)
		if (now.UnixMilli()/int64(blinkEvery/time.Millisecond))%2 == 0 {
			l.SetHue(hueWarn)
		} else {
			l.SetHue(hueNormal)
		}
		return
	}
	l.SetText("Time: " + view.ElapsedText)
	l.SetHue(hueNormal)
}

// AdjustText returns the manual-adjustment field text. The field is left
// alone so bad input stays in place for correction; ClearAdjust empties it
// once an adjustment actually applied.
func (ui *trackerUI) AdjustText() string {
	if ui.live.adjust != nil {
		ui.adjustText = ui.live.adjust.Text()
	}
	return ui.adjustText
}

// ClearAdjust empties the manual-adjustment field.
func (ui *trackerUI) ClearAdjust() {
	ui.adjustText = ""
	if ui.live.adjust != nil && ui.live.adjust.Caps().SetText {
		ui.live.adjust.SetText("")
	}
}

// ShowSummary presents the finished session's totals. The summary is not
// reconciled: the user closing it is final.
func (ui *trackerUI) ShowSummary(view SessionView) {
	p := ui.h.NewPanel(host.PanelOptions{Movable: true, KeepOpen: false})
	p.SetRect(0, 0, modalW, modalH+40)
	p.Center()
	p.AddBox(0.9, "black", 0, 0, modalW, modalH+40)
	p.AddLabel("Session Summary", hueTitle, 20, 15)
	p.AddLabel("Zone: "+view.Zone, hueNormal, 20, 55)
	human := durafmt.Parse(view.Elapsed.Round(time.Second)).LimitFirstN(2).String()
	p.AddLabel(fmt.Sprintf("Duration: %s (%s)", view.ElapsedText, human), hueNormal, 20, 83)
	p.AddLabel("Gold gained: "+humanize.Comma(view.GoldGained), hueNormal, 20, 111)
	p.AddLabel("Gold/hr: "+humanize.Comma(view.GoldPerHour), hueNormal, 20, 139)
	p.AddLabel(fmt.Sprintf("Deaths: %d", view.Deaths), hueNormal, 20, 167)
	p.AddLabel("Insurance: "+humanize.Comma(view.InsuranceCost), hueNormal, 20, 195)
	p.AddLabel("Net profit: "+humanize.Comma(view.NetProfit), netHue(view.NetProfit), 20, 223)
	p.AddButton("Close", modalW/2-60, modalH-10, 120, 30, func() { _ = p.Dispose() })
}

func netHue(net int64) int {
	if net < 0 {
		return hueBad
	}
	return hueGood
}
