package entity

import "github.com/pelagic-sim/abyss/world"

// Decoration is inert scenery (rocks, shells). It blocks its tile but
// never enters the registry or the tick pipeline.
type Decoration struct {
	id      world.ID
	species Species
}

func NewDecoration(species Species) *Decoration {
	return &Decoration{species: species}
}

func (d *Decoration) Tracked() bool     { return false }
func (d *Decoration) ID() world.ID      { return d.id }
func (d *Decoration) SetID(id world.ID) { d.id = id }
func (d *Decoration) Species() Species  { return d.species }
