// Package prefs provides JSON-based application preferences.
package prefs

import (
	"encoding/json"
	"image/color"
	"log"
	"os"
	"path/filepath"
	"sync"

	"shape-annotator/internal/app"
	"shape-annotator/internal/render"
	"shape-annotator/pkg/colorutil"
)

const prefsFile = "preferences.json"

// Preference keys.
const (
	KeyRectangleColor = "style.rectangle_color"
	KeyCircleColor    = "style.circle_color"
	KeyHighlightColor = "style.highlight_color"
	KeyLabelColor     = "style.label_color"
	KeyLineWidth      = "style.line_width"
	KeyLabelOffset    = "style.label_offset"
	KeyLabelPolicy    = "labels.policy"
	KeyOCREnabled     = "ocr.enabled"
	KeyOCRLanguage    = "ocr.language"
	KeyOCRRestricted  = "ocr.restricted"
	KeyLastDir        = "files.last_dir"
	KeyWindowWidth    = "window.width"
	KeyWindowHeight   = "window.height"
)

// Prefs stores application preferences as a key-value map.
type Prefs struct {
	mu     sync.RWMutex
	values map[string]interface{}
	path   string
}

// Load reads preferences from <UserConfigDir>/shape-annotator/preferences.json.
// Returns a Prefs with defaults if the file doesn't exist.
func Load() *Prefs {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return LoadFrom(filepath.Join(configDir, "shape-annotator", prefsFile))
}

// LoadFrom reads preferences from path.
func LoadFrom(path string) *Prefs {
	p := &Prefs{
		values: make(map[string]interface{}),
		path:   path,
	}
	data, err := os.ReadFile(p.path)
	if err != nil {
		return p
	}
	if err := json.Unmarshal(data, &p.values); err != nil {
		log.Printf("prefs: ignoring unreadable %s: %v", p.path, err)
		p.values = make(map[string]interface{})
	}
	return p
}

// Path returns the preferences file location.
func (p *Prefs) Path() string {
	return p.path
}

// Save writes preferences to disk.
func (p *Prefs) Save() error {
	p.mu.RLock()
	data, err := json.MarshalIndent(p.values, "", "  ")
	p.mu.RUnlock()
	if err != nil {
		return err
	}

	dir := filepath.Dir(p.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(p.path, data, 0o644)
}

// Float returns a float64 preference, or 0 if not set.
func (p *Prefs) Float(key string) float64 {
	return p.FloatWithFallback(key, 0)
}

// FloatWithFallback returns a float64 preference, or fallback if not set.
func (p *Prefs) FloatWithFallback(key string, fallback float64) float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if v, ok := p.values[key]; ok {
		switch n := v.(type) {
		case float64:
			return n
		case int:
			return float64(n)
		}
	}
	return fallback
}

// SetFloat stores a float64 preference.
func (p *Prefs) SetFloat(key string, val float64) {
	p.mu.Lock()
	p.values[key] = val
	p.mu.Unlock()
}

// String returns a string preference, or "" if not set.
func (p *Prefs) String(key string) string {
	return p.StringWithFallback(key, "")
}

// StringWithFallback returns a string preference, or fallback if not set.
func (p *Prefs) StringWithFallback(key, fallback string) string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if v, ok := p.values[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return fallback
}

// SetString stores a string preference.
func (p *Prefs) SetString(key string, val string) {
	p.mu.Lock()
	p.values[key] = val
	p.mu.Unlock()
}

// Bool returns a bool preference, or fallback if not set.
func (p *Prefs) Bool(key string, fallback bool) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if v, ok := p.values[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return fallback
}

// SetBool stores a bool preference.
func (p *Prefs) SetBool(key string, val bool) {
	p.mu.Lock()
	p.values[key] = val
	p.mu.Unlock()
}

// Theme builds the overlay theme, starting from render.DefaultTheme and
// overriding whatever the preferences set.
func (p *Prefs) Theme() render.Theme {
	t := render.DefaultTheme()
	t.Rectangle = p.color(KeyRectangleColor, t.Rectangle)
	t.Circle = p.color(KeyCircleColor, t.Circle)
	t.Highlight = p.color(KeyHighlightColor, t.Highlight)
	t.Label = p.color(KeyLabelColor, t.Label)
	if w := p.FloatWithFallback(KeyLineWidth, t.LineWidth); w > 0 {
		t.LineWidth = w
	}
	if off := p.FloatWithFallback(KeyLabelOffset, t.LabelOffset); off >= 0 {
		t.LabelOffset = off
	}
	return t
}

// SetTheme stores the colors and sizes of t.
func (p *Prefs) SetTheme(t render.Theme) {
	p.SetString(KeyRectangleColor, colorutil.Hex(t.Rectangle))
	p.SetString(KeyCircleColor, colorutil.Hex(t.Circle))
	p.SetString(KeyHighlightColor, colorutil.Hex(t.Highlight))
	p.SetString(KeyLabelColor, colorutil.Hex(t.Label))
	p.SetFloat(KeyLineWidth, t.LineWidth)
	p.SetFloat(KeyLabelOffset, t.LabelOffset)
}

// LabelPolicy returns the configured empty-label policy.
func (p *Prefs) LabelPolicy() app.LabelPolicy {
	policy, err := app.ParseLabelPolicy(p.String(KeyLabelPolicy))
	if err != nil {
		log.Printf("prefs: %v, using %s", err, policy)
	}
	return policy
}

func (p *Prefs) color(key string, fallback color.RGBA) color.RGBA {
	s := p.String(key)
	if s == "" {
		return fallback
	}
	c, err := colorutil.ParseHex(s)
	if err != nil {
		log.Printf("prefs: %s: %v", key, err)
		return fallback
	}
	return c
}
