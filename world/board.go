package world

import "errors"

var (
	// ErrOccupied means a placement target already holds an entity. This is
	// the one board error callers routinely recover from.
	ErrOccupied = errors.New("tile occupied")
	// ErrOutOfBounds means a position lies outside the board.
	ErrOutOfBounds = errors.New("position out of bounds")
	// ErrEmptyTile means an operation expected an occupant and found none.
	ErrEmptyTile = errors.New("tile empty")
	// ErrUnknownEntity means the registry has no entry for an ID. Seeing it
	// at runtime indicates a board/registry desync.
	ErrUnknownEntity = errors.New("unknown entity id")
)

// Tile is a single board cell holding at most one entity. Tiles route every
// occupancy change through the shared registry so position bookkeeping can
// never be skipped.
type Tile struct {
	pos     Position
	entity  Entity
	manager *EntityManager
}

func (t *Tile) Pos() Position  { return t.pos }
func (t *Tile) Occupied() bool { return t.entity != nil }
func (t *Tile) Entity() Entity { return t.entity }

// Place puts e on the tile, registering it if tracked. Fails with
// ErrOccupied when the tile already has an occupant.
func (t *Tile) Place(e Entity) error {
	if t.entity != nil {
		return ErrOccupied
	}
	t.entity = e
	if e.Tracked() {
		t.manager.Register(e, t.pos)
	}
	return nil
}

// Remove detaches and returns the occupant, dropping its registry entry.
// The entity keeps its ID; re-placing it restores the entry. Returns nil
// when the tile is empty.
func (t *Tile) Remove() Entity {
	e := t.entity
	if e == nil {
		return nil
	}
	t.entity = nil
	if e.Tracked() {
		t.manager.Unregister(e.ID())
	}
	return e
}

// Outcome tells the board what to do with a detached entity once its
// processing callback returns.
type Outcome uint8

const (
	// Keep reattaches the entity to its tile.
	Keep Outcome = iota
	// Drop discards the entity. Its registry entry is already gone.
	Drop
)

// Board is a fixed-size grid of tiles sharing one entity registry.
type Board struct {
	rows, cols int
	tiles      []Tile
	manager    *EntityManager
}

// NewBoard builds an empty rows x cols board wired to manager.
func NewBoard(rows, cols int, manager *EntityManager) *Board {
	b := &Board{
		rows:    rows,
		cols:    cols,
		tiles:   make([]Tile, rows*cols),
		manager: manager,
	}
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			t := &b.tiles[y*cols+x]
			t.pos = Position{X: x, Y: y}
			t.manager = manager
		}
	}
	return b
}

func (b *Board) Rows() int               { return b.rows }
func (b *Board) Cols() int               { return b.cols }
func (b *Board) Manager() *EntityManager { return b.manager }

func (b *Board) InBounds(p Position) bool {
	return p.X >= 0 && p.X < b.cols && p.Y >= 0 && p.Y < b.rows
}

// At returns the tile at p, or false when p is out of bounds.
func (b *Board) At(p Position) (*Tile, bool) {
	if !b.InBounds(p) {
		return nil, false
	}
	return &b.tiles[p.Y*b.cols+p.X], true
}

// Place puts e at p. Returns ErrOutOfBounds or ErrOccupied.
func (b *Board) Place(e Entity, p Position) error {
	t, ok := b.At(p)
	if !ok {
		return ErrOutOfBounds
	}
	return t.Place(e)
}

// Move shifts the occupant of from to to. The registry entry follows the
// entity through the remove/place pair.
func (b *Board) Move(from, to Position) error {
	src, ok := b.At(from)
	if !ok {
		return ErrOutOfBounds
	}
	dst, ok := b.At(to)
	if !ok {
		return ErrOutOfBounds
	}
	if !src.Occupied() {
		return ErrEmptyTile
	}
	if dst.Occupied() {
		return ErrOccupied
	}
	e := src.Remove()
	return dst.Place(e)
}

// WithEntity detaches the occupant of p, runs fn against the board, and
// reattaches it unless fn says Drop. While fn runs the entity is off the
// board, so actions it takes (eating a neighbor, placing offspring) can
// never alias its own tile state. If something claimed the vacated tile
// during fn the entity is dropped and the error reported.
func (b *Board) WithEntity(p Position, fn func(e Entity, b *Board) Outcome) error {
	t, ok := b.At(p)
	if !ok {
		return ErrOutOfBounds
	}
	e := t.Remove()
	if e == nil {
		return ErrEmptyTile
	}
	if fn(e, b) == Drop {
		return nil
	}
	return t.Place(e)
}

// Replace swaps the occupant of p for repl, carrying the old occupant's ID
// over so the registry sees one continuous entity. Used for growth stages.
func (b *Board) Replace(p Position, repl Entity) error {
	t, ok := b.At(p)
	if !ok {
		return ErrOutOfBounds
	}
	old := t.Remove()
	if old == nil {
		return ErrEmptyTile
	}
	if old.Tracked() && repl.Tracked() {
		repl.SetID(old.ID())
	}
	return t.Place(repl)
}

// Neighbors returns the in-bounds positions within dist of center, in
// row-major order, excluding center itself. Row-major order keeps target
// scans deterministic.
func (b *Board) Neighbors(center Position, dist int) []Position {
	out := make([]Position, 0, (2*dist+1)*(2*dist+1)-1)
	for y := center.Y - dist; y <= center.Y+dist; y++ {
		for x := center.X - dist; x <= center.X+dist; x++ {
			p := Position{X: x, Y: y}
			if p == center || !b.InBounds(p) {
				continue
			}
			out = append(out, p)
		}
	}
	return out
}

// FreeNeighbors filters Neighbors down to unoccupied tiles.
func (b *Board) FreeNeighbors(center Position, dist int) []Position {
	all := b.Neighbors(center, dist)
	out := all[:0]
	for _, p := range all {
		if t, _ := b.At(p); !t.Occupied() {
			out = append(out, p)
		}
	}
	return out
}
