package battle

// StandardAction identifies the moves available to the player and to
// normal enemies. The zero value is intentionally invalid.
type StandardAction int

const (
	ActUnknown StandardAction = iota // zero value; intentionally invalid
	ActAttack
	ActDefend
	ActSpecial
	ActItem
	ActFlee
)

// String returns the human-readable name of the StandardAction.
func (a StandardAction) String() string {
	switch a {
	case ActAttack:
		return "attack"
	case ActDefend:
		return "defend"
	case ActSpecial:
		return "special"
	case ActItem:
		return "item"
	case ActFlee:
		return "flee"
	default:
		return "unknown"
	}
}

// BossAction identifies the boss-only moves.
type BossAction int

const (
	BossHeavy BossAction = iota + 1
	BossMulti
	BossDrain
	BossCharge
	BossRepair
)

// String returns the human-readable name of the BossAction.
func (a BossAction) String() string {
	switch a {
	case BossHeavy:
		return "heavy"
	case BossMulti:
		return "multi"
	case BossDrain:
		return "drain"
	case BossCharge:
		return "charge"
	case BossRepair:
		return "repair"
	default:
		return "unknown"
	}
}

// Action is the tagged union of everything a combatant can do on a turn.
// It has exactly two variants: Standard and BossSpecial. Resolution
// dispatches on the concrete type.
type Action interface {
	isAction()
	String() string
}

// Standard wraps a StandardAction as an Action.
type Standard struct {
	Kind StandardAction
}

func (Standard) isAction() {}

// String returns the wrapped action name.
func (s Standard) String() string { return s.Kind.String() }

// BossSpecial wraps a BossAction as an Action.
type BossSpecial struct {
	Kind BossAction
}

func (BossSpecial) isAction() {}

// String returns the wrapped action name.
func (b BossSpecial) String() string { return b.Kind.String() }

// Descriptor selects the opponent for an encounter: a normal enemy type or
// a boss type. Out-of-range type ids clamp to the roster bounds.
type Descriptor struct {
	Boss bool
	Type int
}

// NormalEncounter returns a Descriptor for the normal enemy with typeID.
func NormalEncounter(typeID int) Descriptor {
	return Descriptor{Type: typeID}
}

// BossEncounter returns a Descriptor for the boss with typeID.
func BossEncounter(typeID int) Descriptor {
	return Descriptor{Boss: true, Type: typeID}
}
