package tracker

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"farmhand/scriptlog"

	"github.com/f1monkey/spellchecker"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// defaultZones seeds a fresh zones file with common farming spots. Keys are
// canonical names; values are the aliases a player might type.
var defaultZones = map[string][]string{
	"Tomb of Kings": {"tok", "tomb", "tomb of kings", "tumba"},
	"Shadowguard":   {"shadowguard", "sg", "roof"},
	"Citadel":       {"citadel", "ciudadela", "ninjas"},
	"Wind":          {"wind", "viento", "elementales"},
	"Doom":          {"doom", "gauntlet"},
	"Covetous":      {"covetous", "cov"},
	"Despise":       {"despise", "desp"},
	"Destard":       {"destard", "dest"},
	"Shame":         {"shame"},
	"Wrong":         {"wrong"},
	"Deceit":        {"deceit"},
	"Hythloth":      {"hythloth", "hyth"},
	"Khaldun":       {"khaldun", "khal"},
}

// ZoneDirectory maps canonical zone names to their aliases and persists the
// table as JSON. Lookups are case-insensitive; the visible name list is
// collated, not byte-ordered.
type ZoneDirectory struct {
	path    string
	zones   map[string][]string
	coll    *collate.Collator
	checker *spellchecker.Spellchecker
	log     *scriptlog.Logger
}

// LoadZones reads dir/zones.json, writing the default table when the file is
// missing. An unreadable or malformed file degrades to an empty directory
// rather than failing the tracker.
func LoadZones(dir string, log *scriptlog.Logger) *ZoneDirectory {
	zd := &ZoneDirectory{
		path:  filepath.Join(dir, "zones.json"),
		zones: map[string][]string{},
		coll:  collate.New(language.English, collate.IgnoreCase),
		log:   log,
	}
	data, err := os.ReadFile(zd.path)
	switch {
	case os.IsNotExist(err):
		for name, aliases := range defaultZones {
			zd.zones[name] = append([]string(nil), aliases...)
		}
		if err := zd.save(); err != nil && log != nil {
			log.Warn("zones", "save", "could not write default zones", map[string]any{"error": err.Error()})
		}
	case err != nil:
		if log != nil {
			log.Warn("zones", "load", "could not read zones file", map[string]any{"error": err.Error()})
		}
	default:
		if err := json.Unmarshal(data, &zd.zones); err != nil {
			zd.zones = map[string][]string{}
			if log != nil {
				log.Warn("zones", "load", "zones file malformed, starting empty", map[string]any{"error": err.Error()})
			}
		}
	}
	zd.rebuildChecker()
	return zd
}

func (zd *ZoneDirectory) save() error {
	data, err := json.MarshalIndent(zd.zones, "", "  ")
	if err != nil {
		return err
	}
	tmp := zd.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, zd.path)
}

func (zd *ZoneDirectory) rebuildChecker() {
	sc, err := spellchecker.New("abcdefghijklmnopqrstuvwxyz'", spellchecker.WithMaxErrors(2))
	if err != nil {
		return
	}
	var words []string
	for name, aliases := range zd.zones {
		words = append(words, strings.Fields(strings.ToLower(name))...)
		for _, a := range aliases {
			words = append(words, strings.Fields(strings.ToLower(a))...)
		}
	}
	sc.Add(words...)
	zd.checker = sc
}

// Names returns the canonical zone names in collation order.
func (zd *ZoneDirectory) Names() []string {
	out := make([]string, 0, len(zd.zones))
	for name := range zd.zones {
		out = append(out, name)
	}
	zd.coll.SortStrings(out)
	return out
}

// Filter returns the canonical names whose name or any alias contains the
// query, case-insensitively. An empty query returns everything.
func (zd *ZoneDirectory) Filter(query string) []string {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return zd.Names()
	}
	var out []string
	for name, aliases := range zd.zones {
		if strings.Contains(strings.ToLower(name), q) {
			out = append(out, name)
			continue
		}
		for _, a := range aliases {
			if strings.Contains(strings.ToLower(a), q) {
				out = append(out, name)
				break
			}
		}
	}
	zd.coll.SortStrings(out)
	return out
}

// Resolve maps user input to a canonical zone name: an exact canonical match
// first, then an alias match. ok is false when nothing matches.
func (zd *ZoneDirectory) Resolve(input string) (string, bool) {
	q := strings.ToLower(strings.TrimSpace(input))
	if q == "" {
		return "", false
	}
	for name := range zd.zones {
		if strings.ToLower(name) == q {
			return name, true
		}
	}
	for name, aliases := range zd.zones {
		for _, a := range aliases {
			if strings.ToLower(a) == q {
				return name, true
			}
		}
	}
	return "", false
}

// Suggest returns up to n likely zone words for a misspelled input, for a
// "did you mean" hint. Best effort; an empty slice means no idea.
func (zd *ZoneDirectory) Suggest(input string, n int) []string {
	if zd.checker == nil {
		return nil
	}
	word := strings.ToLower(strings.TrimSpace(input))
	if word == "" {
		return nil
	}
	out, err := zd.checker.Suggest(word, n)
	if err != nil {
		return nil
	}
	return out
}

// Add creates a zone from a comma-separated alias list. The first entry is
// the canonical name; every entry becomes an alias. Adding an existing zone
// appends any new aliases instead of duplicating it.
func (zd *ZoneDirectory) Add(commaList string) (string, error) {
	parts := strings.Split(commaList, ",")
	var cleaned []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			cleaned = append(cleaned, p)
		}
	}
	if len(cleaned) == 0 {
		return "", errors.New("zone name is empty")
	}
	canonical := cleaned[0]
	if existing, ok := zd.Resolve(canonical); ok {
		canonical = existing
	}
	aliases := zd.zones[canonical]
	for _, p := range cleaned {
		lower := strings.ToLower(p)
		known := false
		for _, a := range aliases {
			if strings.ToLower(a) == lower {
				known = true
				break
			}
		}
		if !known {
			aliases = append(aliases, lower)
		}
	}
	zd.zones[canonical] = aliases
	zd.rebuildChecker()
	return canonical, zd.save()
}
