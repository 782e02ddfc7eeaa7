package models

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/annokeeper/internal/common"
)

// Color is a named palette entry.
type Color struct {
	Name string
	Hex  string
}

// Palette lists the colors annotations may use, in display order.
var Palette = []Color{
	{Name: "Blue", Hex: "#72B0D7"},
	{Name: "Green", Hex: "#80C25D"},
	{Name: "Red", Hex: "#FD7F76"},
	{Name: "Yellow", Hex: "#F5C43D"},
	{Name: "Purple", Hex: "#9B5EE3"},
}

// DefaultColor is used when a draft does not name a color.
const DefaultColor = "#72B0D7"

// ParseColor accepts a palette name or a palette hex value, case-insensitively,
// and returns the hex value.
func ParseColor(s string) (string, error) {
	s = strings.TrimSpace(s)
	for _, c := range Palette {
		if strings.EqualFold(c.Name, s) || strings.EqualFold(c.Hex, s) {
			return c.Hex, nil
		}
	}
	return "", fmt.Errorf("%w: unknown color %q", common.ErrValidation, s)
}

// ParseColors resolves a list of names or hex values.
func ParseColors(ss []string) ([]string, error) {
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		hex, err := ParseColor(s)
		if err != nil {
			return nil, err
		}
		out = append(out, hex)
	}
	return out, nil
}

// ColorName returns the palette name for hex, or hex itself when it is not
// part of the palette.
func ColorName(hex string) string {
	for _, c := range Palette {
		if strings.EqualFold(c.Hex, hex) {
			return c.Name
		}
	}
	return hex
}
