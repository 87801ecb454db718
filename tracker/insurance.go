package tracker

import (
	"regexp"
	"strconv"
	"time"

	"farmhand/host"
	"farmhand/scriptlog"
)

// insuranceMenuEntry is the context-menu slot that opens the insurance
// summary on the player.
const insuranceMenuEntry = 5

var insuranceCostRe = regexp.MustCompile(`(?i)TOTAL COST OF INSURANCE[:\s]+(\d+)`)

// autoReadInsurance tries to read the per-death insurance cost from the
// player's own context menu. ok is false when the client can't serve the
// menu or the text doesn't carry a cost; the caller falls back to asking
// the user.
func autoReadInsurance(h host.Host, log *scriptlog.Logger) (int64, bool) {
	serial := h.Player().Serial()
	text, err := h.ContextMenuText(serial, insuranceMenuEntry)
	if err != nil {
		log.Debug("insurance", "read", "context menu read failed", map[string]any{"error": err.Error()})
		return 0, false
	}
	h.Pause(100 * time.Millisecond)
	m := insuranceCostRe.FindStringSubmatch(text)
	if m == nil {
		log.Debug("insurance", "read", "no cost in menu text", map[string]any{"text": text})
		return 0, false
	}
	cost, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, false
	}
	log.Info("insurance", "read", "insurance cost read", map[string]any{"cost": cost})
	return cost, true
}
