package rules

import (
	"regexp"
	"slices"
	"strings"
)

// palette is closed: modern colors first, then the legacy set still found on
// older notes.
var palette = []string{
	"#FFFFFF", // Default
	"#FAAFA8", // Coral
	"#F39F76", // Peach
	"#FFF8B8", // Sand
	"#E2F6D3", // Mint
	"#B4DDD3", // Sage
	"#D4E4ED", // Fog
	"#AECCDC", // Storm
	"#D3BFDB", // Dusk
	"#F6E2DD", // Blossom
	"#E9E3D4", // Clay
	"#EFEFF1", // Chalk

	"#F28B82", // Red
	"#FBBC04", // Orange
	"#FFF475", // Yellow
	"#CCFF90", // Green
	"#A7FFEB", // Teal
	"#CBF0F8", // Cyan
	"#AECBFA", // Blue
	"#D7AEFB", // Purple
	"#FDCFE8", // Pink
	"#E6C9A8", // Brown
	"#E8EAED", // Gray
}

var hexColorPattern = regexp.MustCompile(`^#[A-Fa-f0-9]{6}$`)

// Palette returns a copy of the allowed colors in display order.
func Palette() []string {
	return slices.Clone(palette)
}

func NormalizeColor(color string) string {
	return strings.ToUpper(strings.TrimSpace(color))
}

func IsPaletteColor(color string) bool {
	return slices.Contains(palette, NormalizeColor(color))
}
