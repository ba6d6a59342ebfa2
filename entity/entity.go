package entity

// Death causes reported by the life-state update, consumed by telemetry.
const (
	CauseStarved = "starved"
	CauseOldAge  = "old_age"
	CauseEaten   = "eaten"
	CauseEvent   = "event"
)

// LateOutcome is the result of an entity's end-of-tick life-state update.
type LateOutcome struct {
	Died  bool
	Cause string // set when Died
	Grew  bool   // plant is ready to advance a growth stage
}

// LateProcessor is implemented by entities that take part in the
// end-of-tick self update. These updates touch only the entity's own
// state, which is what makes them safe to run concurrently.
type LateProcessor interface {
	LateProcess() LateOutcome
}

// Edible is implemented by anything an animal can bite.
type Edible interface {
	Species() Species
	// TakeBite applies one bite of the given strength. Reports whether the
	// bite killed the target and any damage returned to the attacker.
	TakeBite(attack int) (killed bool, retaliation int)
	// BiteReward is the hunger restored to the attacker for this bite.
	BiteReward(killed bool) int
}
