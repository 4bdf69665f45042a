// Package colors derives landing-page palettes from a base color. All
// functions are pure and deterministic.
package colors

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/pagecraft/api/internal/apperr"
)

// Count bounds for derived palettes.
const (
	MinCount = 1
	MaxCount = 20
)

// Schemes supported by Derive. Unrecognized names fall back to analogous.
const (
	SchemeMonochrome    = "monochrome"
	SchemeAnalogous     = "analogous"
	SchemeComplementary = "complementary"
	SchemeTriadic       = "triadic"
	SchemeTetradic      = "tetradic"
)

var hexPattern = regexp.MustCompile(`^#?([0-9A-Fa-f]{3}|[0-9A-Fa-f]{6})$`)

// ValidHex reports whether value is a 3- or 6-digit hex color, with or
// without the leading hash.
func ValidHex(value string) bool {
	return hexPattern.MatchString(strings.TrimSpace(value))
}

// Derive maps a base color, scheme and count onto a palette of exactly
// count colors. Scheme anchors come from fixed hue rotations; when count
// exceeds the anchors, extra colors are interpolated along a Lab-space path
// through them.
func Derive(base string, scheme string, count int) ([]string, error) {
	normalized, color, err := parseHex(base)
	if err != nil {
		return nil, err
	}
	if count < MinCount || count > MaxCount {
		return nil, apperr.Validation(fmt.Sprintf("count must be an integer between %d and %d", MinCount, MaxCount))
	}

	switch normalizeScheme(scheme) {
	case SchemeMonochrome:
		h, s, l := color.Hsl()
		anchors := []colorful.Color{
			colorful.Hsl(h, s, clamp01(l-0.2)),
			color,
			colorful.Hsl(h, s, clamp01(l+0.2)),
		}
		return hexSlice(labPath(anchors, count)), nil
	case SchemeComplementary:
		return anchorPalette(normalized, color, count, 180), nil
	case SchemeTriadic:
		return anchorPalette(normalized, color, count, 120, 240), nil
	case SchemeTetradic:
		return anchorPalette(normalized, color, count, 60, 180, 240), nil
	default: // analogous
		anchors := []colorful.Color{rotate(color, -30), color, rotate(color, 30)}
		return hexSlice(labPath(anchors, count)), nil
	}
}

// Modes and moods accepted by ThemeVariants.
const (
	ModeLight = "light"
	ModeDark  = "dark"

	MoodWarm    = "warm"
	MoodCool    = "cool"
	MoodNeutral = "neutral"
)

// ThemeVariants adjusts a set of named colors for a light/dark mode and a
// mood, then derives two scheme-dependent variants per color. The result
// holds the adjusted base under each name plus "<name>Variant1" and
// "<name>Variant2" entries.
func ThemeVariants(named map[string]string, mode, mood, scheme string) (map[string]string, error) {
	if len(named) == 0 {
		return nil, apperr.Validation("colors are required")
	}
	scheme = normalizeScheme(scheme)
	mode = strings.ToLower(strings.TrimSpace(mode))
	mood = strings.ToLower(strings.TrimSpace(mood))

	result := make(map[string]string, len(named)*3)
	for name, hex := range named {
		_, color, err := parseHex(hex)
		if err != nil {
			return nil, apperr.Validation(fmt.Sprintf("invalid color %q for %q", hex, name))
		}
		h, s, l := color.Hsl()

		switch mood {
		case MoodWarm:
			h = math.Mod(h+10, 360)
		case MoodCool:
			h = math.Mod(h+350, 360)
		}
		if mode == ModeDark {
			l = clamp01(l - 0.10)
		} else {
			l = clamp01(l + 0.05)
		}
		result[name] = colorful.Hsl(h, s, l).Clamped().Hex()

		h1, l1, h2, l2 := h, l, h, l
		switch scheme {
		case SchemeMonochrome:
			l1 = clamp01(l + 0.20)
			l2 = clamp01(l - 0.20)
		case SchemeAnalogous:
			h1 = math.Mod(h+30, 360)
			h2 = math.Mod(h+330, 360)
		case SchemeComplementary:
			h1 = math.Mod(h+180, 360)
			l2 = clamp01(l + 0.15)
		case SchemeTriadic:
			h1 = math.Mod(h+120, 360)
			h2 = math.Mod(h+240, 360)
		}
		result[name+"Variant1"] = colorful.Hsl(h1, s, l1).Clamped().Hex()
		result[name+"Variant2"] = colorful.Hsl(h2, s, l2).Clamped().Hex()
	}
	return result, nil
}

// parseHex validates and normalizes a hex color, returning the
// hash-prefixed input form alongside the parsed color.
func parseHex(value string) (string, colorful.Color, error) {
	trimmed := strings.TrimSpace(value)
	if !hexPattern.MatchString(trimmed) {
		return "", colorful.Color{}, apperr.Validation("baseColor must be a 3- or 6-digit hex color")
	}
	if !strings.HasPrefix(trimmed, "#") {
		trimmed = "#" + trimmed
	}
	color, err := colorful.Hex(trimmed)
	if err != nil {
		return "", colorful.Color{}, apperr.Validation("baseColor must be a 3- or 6-digit hex color")
	}
	return trimmed, color, nil
}

func normalizeScheme(scheme string) string {
	switch strings.ToLower(strings.TrimSpace(scheme)) {
	case SchemeMonochrome, "monochromatic":
		return SchemeMonochrome
	case SchemeComplementary:
		return SchemeComplementary
	case SchemeTriadic:
		return SchemeTriadic
	case SchemeTetradic, "rectangle":
		return SchemeTetradic
	default:
		return SchemeAnalogous
	}
}

// anchorPalette returns the base color plus its rotated anchors, trimmed or
// Lab-interpolated to exactly count entries. The base keeps its input
// spelling when no interpolation happens.
func anchorPalette(baseHex string, base colorful.Color, count int, rotations ...float64) []string {
	anchors := make([]colorful.Color, 0, len(rotations)+1)
	anchors = append(anchors, base)
	for _, deg := range rotations {
		anchors = append(anchors, rotate(base, deg))
	}
	if count <= len(anchors) {
		out := make([]string, 0, count)
		out = append(out, baseHex)
		for _, c := range anchors[1:count] {
			out = append(out, c.Hex())
		}
		return out
	}
	return hexSlice(labPath(anchors, count))
}

// rotate shifts the hue by deg degrees, wrapping at 360.
func rotate(c colorful.Color, deg float64) colorful.Color {
	h, s, l := c.Hsl()
	return colorful.Hsl(math.Mod(h+deg+360, 360), s, l)
}

// labPath samples count evenly spaced points along the piecewise Lab-space
// gradient through the anchors, endpoints included.
func labPath(anchors []colorful.Color, count int) []colorful.Color {
	if count == 1 {
		return anchors[:1]
	}
	segments := len(anchors) - 1
	out := make([]colorful.Color, 0, count)
	for i := 0; i < count; i++ {
		pos := float64(i) / float64(count-1) * float64(segments)
		idx := int(pos)
		if idx >= segments {
			idx = segments - 1
		}
		frac := pos - float64(idx)
		out = append(out, anchors[idx].BlendLab(anchors[idx+1], frac).Clamped())
	}
	return out
}

func hexSlice(cs []colorful.Color) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.Hex())
	}
	return out
}

func clamp01(v float64) float64 {
	return math.Min(math.Max(v, 0), 1)
}
