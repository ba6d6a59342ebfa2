package world

import "fmt"

// Position is a grid coordinate. A plain comparable value, owned by nothing.
type Position struct {
	X, Y int
}

// Dist returns the grid (Chebyshev) distance to another position.
// Adjacent tiles, diagonals included, are at distance 1.
func (p Position) Dist(o Position) int {
	dx := p.X - o.X
	if dx < 0 {
		dx = -dx
	}
	dy := p.Y - o.Y
	if dy < 0 {
		dy = -dy
	}
	if dx > dy {
		return dx
	}
	return dy
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}
