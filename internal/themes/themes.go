// Package themes holds the fixed catalog of chart color themes.
package themes

import (
	"fmt"
	"image/color"
	"sort"
	"strings"
)

// Theme bundles the colors applied to a rendered chart. The palette is
// cycled when a chart needs more series colors than the palette contains.
type Theme struct {
	Name             string
	DisplayName      string
	FigureBackground string
	AxesBackground   string
	TextColor        string
	GridColor        string
	EdgeColor        string
	Palette          []string
}

// Info is the API-facing view of a theme.
type Info struct {
	Name        string   `json:"name"`
	DisplayName string   `json:"display_name"`
	Background  string   `json:"background"`
	TextColor   string   `json:"text_color"`
	Palette     []string `json:"palette"`
}

// DefaultName is the theme used when a session has not selected one.
const DefaultName = "meli_dark"

var catalog = map[string]Theme{
	"meli_dark": {
		Name:             "meli_dark",
		DisplayName:      "Meli Dark",
		FigureBackground: "#0B0C20",
		AxesBackground:   "#0B0C20",
		TextColor:        "#A5A8AD",
		GridColor:        "#2a2a38",
		EdgeColor:        "#2a2a38",
		Palette:          []string{"#3483FA", "#FFE600", "#1679ED", "#2860F6", "#00E5FF", "#00A650"},
	},
	"meli_light": {
		Name:             "meli_light",
		DisplayName:      "Meli Light",
		FigureBackground: "#FFFFFF",
		AxesBackground:   "#FFFFFF",
		TextColor:        "#333333",
		GridColor:        "#E5E5E5",
		EdgeColor:        "#E5E5E5",
		Palette:          []string{"#3483FA", "#2D3277", "#FFE600", "#1679ED", "#00A650", "#F23D4F"},
	},
	"meli_yellow": {
		Name:             "meli_yellow",
		DisplayName:      "Meli Yellow",
		FigureBackground: "#FFFFFF",
		AxesBackground:   "#FFFFFF",
		TextColor:        "#2D3277",
		GridColor:        "#E5E5E5",
		EdgeColor:        "#E5E5E5",
		Palette:          []string{"#2D3277", "#3483FA", "#0B0C20", "#005CC6", "#06255E", "#333333"},
	},
}

// Get returns the named theme.
func Get(name string) (Theme, error) {
	t, ok := catalog[name]
	if !ok {
		return Theme{}, fmt.Errorf("unknown theme %q, available: %s", name, strings.Join(Names(), ", "))
	}
	return t, nil
}

// Default returns the default theme.
func Default() Theme { return catalog[DefaultName] }

// Valid reports whether the named theme exists.
func Valid(name string) bool {
	_, ok := catalog[name]
	return ok
}

// Names returns the sorted theme names.
func Names() []string {
	names := make([]string, 0, len(catalog))
	for n := range catalog {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// List returns API metadata for every theme, sorted by name.
func List() []Info {
	out := make([]Info, 0, len(catalog))
	for _, n := range Names() {
		t := catalog[n]
		out = append(out, Info{
			Name:        t.Name,
			DisplayName: t.DisplayName,
			Background:  t.FigureBackground,
			TextColor:   t.TextColor,
			Palette:     append([]string(nil), t.Palette...),
		})
	}
	return out
}

// PaletteColor returns the i-th palette entry, cycling past the end.
func (t Theme) PaletteColor(i int) color.Color {
	if len(t.Palette) == 0 {
		return color.Black
	}
	return ParseHex(t.Palette[i%len(t.Palette)])
}

// ParseHex converts a #RRGGBB hex string to a color. Malformed input
// yields opaque black rather than an error; theme values are compiled in.
func ParseHex(s string) color.Color {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return color.Black
	}
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "%02x%02x%02x", &r, &g, &b); err != nil {
		return color.Black
	}
	return color.NRGBA{R: r, G: g, B: b, A: 0xFF}
}

// WithAlpha returns c with its alpha replaced, used for area fills.
func WithAlpha(c color.Color, alpha uint8) color.Color {
	r, g, b, _ := c.RGBA()
	return color.NRGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: alpha}
}
