// Package draw renders the road to a terminal using half-block characters.
package draw

import "strings"

// Point represents a 2D coordinate.
type Point struct {
	X, Y float64
}

// Shade characters from lightest to darkest.
var Shades = []rune{' ', '░', '▒', '▓', '█'}

// ShadeLevel returns a shade character for a value between 0.0 (empty) and 1.0 (solid).
func ShadeLevel(intensity float64) rune {
	if intensity <= 0 {
		return Shades[0]
	}
	if intensity >= 1 {
		return Shades[len(Shades)-1]
	}
	idx := int(intensity * float64(len(Shades)-1))
	return Shades[idx]
}

// Block characters for drawing.
const (
	BlockFull      = '█'
	BlockLight     = '░'
	BlockEmpty     = ' '
	BlockUpperHalf = '▀'
	BlockLowerHalf = '▄'
)

// ProgressBar renders a bar of width cells filled to fraction (0..1).
// The partially filled cell uses a shade character.
func ProgressBar(fraction float64, width int) string {
	if width <= 0 {
		return ""
	}
	fraction = min(max(fraction, 0), 1)
	cells := fraction * float64(width)
	full := int(cells)

	var b strings.Builder
	b.WriteString(strings.Repeat(string(BlockFull), full))
	if full < width {
		partial := ShadeLevel(cells - float64(full))
		if partial == BlockEmpty {
			partial = BlockLight
		}
		b.WriteRune(partial)
		b.WriteString(strings.Repeat(string(BlockLight), width-full-1))
	}
	return b.String()
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
