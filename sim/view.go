package sim

import (
	"github.com/pelagic-sim/abyss/entity"
	"github.com/pelagic-sim/abyss/events"
	"github.com/pelagic-sim/abyss/world"
)

// TileView is one occupied tile as seen from outside the sandbox.
type TileView struct {
	Pos     world.Position
	Species entity.Species
	HP      int
	Hunger  int
	Mode    entity.Mode
	Animal  bool
}

// View is an immutable frame of the board, published after every tick.
type View struct {
	Tick    uint64
	Rows    int
	Cols    int
	Tiles   []TileView
	Pending events.Kind
	Summary Summary
}

// publish offers the latest frame to the view channel, replacing any
// undelivered one. Consumers that fall behind skip frames instead of
// stalling the tick loop.
func (s *Sandbox) publish(sum Summary) {
	v := s.buildView(sum)
	for {
		select {
		case s.views <- v:
			return
		default:
			select {
			case <-s.views:
			default:
			}
		}
	}
}

func (s *Sandbox) buildView(sum Summary) View {
	v := View{
		Tick:    s.tick,
		Rows:    s.board.Rows(),
		Cols:    s.board.Cols(),
		Pending: s.pending,
		Summary: sum,
	}
	for y := 0; y < s.board.Rows(); y++ {
		for x := 0; x < s.board.Cols(); x++ {
			pos := world.Position{X: x, Y: y}
			t, _ := s.board.At(pos)
			if !t.Occupied() {
				continue
			}
			tv := TileView{Pos: pos}
			switch e := t.Entity().(type) {
			case *entity.Animal:
				tv.Species = e.Species()
				tv.HP = e.HP()
				tv.Hunger = e.Hunger()
				tv.Mode = e.Mode
				tv.Animal = true
			case *entity.Plant:
				tv.Species = e.Species()
				tv.HP = e.HP()
			case *entity.Decoration:
				tv.Species = e.Species()
			default:
				continue
			}
			v.Tiles = append(v.Tiles, tv)
		}
	}
	return v
}
