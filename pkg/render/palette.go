// Package render holds the policy shared by both render backends: the
// criticality color mapping and the deterministic force-directed layout.
// Backends consume the same built graph; nothing here knows whether the
// output is a PNG or a browser view.
package render

import (
	"fmt"
	"image/color"

	"github.com/cluster-tools/impactviz/pkg/model"
)

// Palette maps node attributes to colors. Non-member nodes (external
// dependencies) always get the External color; member nodes map through the
// criticality table, falling back to Unknown's gray.
type Palette struct {
	External color.RGBA
	High     color.RGBA
	Medium   color.RGBA
	Low      color.RGBA
	Unknown  color.RGBA
}

// DefaultPalette is the fixed four-entry criticality table plus the
// external color.
func DefaultPalette() Palette {
	return Palette{
		External: color.RGBA{R: 0x87, G: 0xa9, B: 0xd4, A: 0xff}, // muted blue
		High:     color.RGBA{R: 0xd6, G: 0x2c, B: 0x2c, A: 0xff}, // red
		Medium:   color.RGBA{R: 0xe8, G: 0x8c, B: 0x1f, A: 0xff}, // orange
		Low:      color.RGBA{R: 0x3a, G: 0xa6, B: 0x42, A: 0xff}, // green
		Unknown:  color.RGBA{R: 0x9e, G: 0x9e, B: 0x9e, A: 0xff}, // gray
	}
}

// ColorFor returns the render color for a node.
func (p Palette) ColorFor(attrs *model.NodeAttrs) color.RGBA {
	if !attrs.Member {
		return p.External
	}
	switch attrs.Criticality {
	case model.CriticalityHigh:
		return p.High
	case model.CriticalityMedium:
		return p.Medium
	case model.CriticalityLow:
		return p.Low
	default:
		return p.Unknown
	}
}

// HexFor returns the node color as a #rrggbb string for the web backend.
func (p Palette) HexFor(attrs *model.NodeAttrs) string {
	c := p.ColorFor(attrs)
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
