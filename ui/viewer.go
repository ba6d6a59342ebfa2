// Package ui renders the board in a terminal and forwards key presses to
// the sandbox as commands.
package ui

import (
	"context"
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/pelagic-sim/abyss/entity"
	"github.com/pelagic-sim/abyss/events"
	"github.com/pelagic-sim/abyss/sim"
)

// glyphs maps species to their board characters. Display concerns stay
// out of the entity types.
var glyphs = map[entity.Species]rune{
	entity.Fish:   'f',
	entity.Crab:   'c',
	entity.Shark:  'S',
	entity.Kelp:   'K',
	entity.Sprout: 'k',
	entity.Seed:   '.',
	entity.Rock:   'o',
	entity.Shell:  '*',
}

var styles = map[entity.Species]tcell.Style{
	entity.Fish:   tcell.StyleDefault.Foreground(tcell.ColorSilver),
	entity.Crab:   tcell.StyleDefault.Foreground(tcell.ColorOrange),
	entity.Shark:  tcell.StyleDefault.Foreground(tcell.ColorRed),
	entity.Kelp:   tcell.StyleDefault.Foreground(tcell.ColorGreen),
	entity.Sprout: tcell.StyleDefault.Foreground(tcell.ColorDarkGreen),
	entity.Seed:   tcell.StyleDefault.Foreground(tcell.ColorOlive),
	entity.Rock:   tcell.StyleDefault.Foreground(tcell.ColorGray),
	entity.Shell:  tcell.StyleDefault.Foreground(tcell.ColorBeige),
}

// Viewer draws sandbox frames to a terminal.
type Viewer struct {
	screen  tcell.Screen
	sandbox *sim.Sandbox
}

// New initializes the terminal screen.
func New(sandbox *sim.Sandbox) (*Viewer, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("opening screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("initializing screen: %w", err)
	}
	screen.Clear()
	return &Viewer{screen: screen, sandbox: sandbox}, nil
}

// Run consumes frames and input until the context ends or the user quits.
// Always restores the terminal on the way out.
func (v *Viewer) Run(ctx context.Context) error {
	defer v.screen.Fini()

	keys := make(chan tcell.Event, 8)
	quit := make(chan struct{})
	defer close(quit)
	go v.screen.ChannelEvents(keys, quit)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case frame, ok := <-v.sandbox.Views():
			if !ok {
				return nil
			}
			v.draw(frame)
		case ev := <-keys:
			if done := v.handle(ev); done {
				return nil
			}
		}
	}
}

// handle translates one terminal event into sandbox commands. Returns
// true when the viewer should exit.
func (v *Viewer) handle(ev tcell.Event) bool {
	switch e := ev.(type) {
	case *tcell.EventResize:
		v.screen.Sync()
	case *tcell.EventKey:
		if e.Key() == tcell.KeyEscape || e.Key() == tcell.KeyCtrlC {
			v.sandbox.Do(sim.StopCommand{})
			return true
		}
		switch e.Rune() {
		case 'q':
			v.sandbox.Do(sim.StopCommand{})
			return true
		case 'f':
			v.sandbox.Do(sim.SpawnCommand{Species: entity.Fish})
		case 'c':
			v.sandbox.Do(sim.SpawnCommand{Species: entity.Crab})
		case 's':
			v.sandbox.Do(sim.SpawnCommand{Species: entity.Shark})
		case 'y':
			v.sandbox.Do(sim.EventResponse{Decision: events.Accept})
		case 'n':
			v.sandbox.Do(sim.EventResponse{Decision: events.Decline})
		}
	}
	return false
}

func (v *Viewer) draw(frame sim.View) {
	v.screen.Clear()

	water := tcell.StyleDefault.Foreground(tcell.ColorNavy)
	for y := 0; y < frame.Rows; y++ {
		for x := 0; x < frame.Cols; x++ {
			v.screen.SetContent(x, y, '~', nil, water)
		}
	}
	for _, tv := range frame.Tiles {
		glyph, ok := glyphs[tv.Species]
		if !ok {
			glyph = '?'
		}
		v.screen.SetContent(tv.Pos.X, tv.Pos.Y, glyph, nil, styles[tv.Species])
	}

	status := fmt.Sprintf("tick %d  animals %d  plants %d  [f/c/s spawn, q quit]",
		frame.Tick, frame.Summary.Animals, frame.Summary.Plants)
	v.drawText(0, frame.Rows, status, tcell.StyleDefault)

	if frame.Pending != events.None {
		prompt := fmt.Sprintf("EVENT: %s  respond y/n", frame.Pending)
		v.drawText(0, frame.Rows+1, prompt, tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true))
	}

	v.screen.Show()
}

func (v *Viewer) drawText(x, y int, text string, style tcell.Style) {
	for i, r := range text {
		v.screen.SetContent(x+i, y, r, nil, style)
	}
}
