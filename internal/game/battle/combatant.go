// Package battle implements the turn-based combat resolution core: the
// encounter state machine, the shared damage model, enemy and boss AI, and
// victory/defeat outcome resolution.
package battle

// Combatant represents one side of an encounter — the player or the opponent.
// The session exclusively owns both combatants for the encounter's lifetime;
// stat changes here are battle-local and only written back at exit.
type Combatant struct {
	Name     string
	IsPlayer bool

	HP    int
	MaxHP int
	SP    int
	MaxSP int

	Attack  int
	Defense int
	Speed   int

	// Defending is reset at the start of this combatant's turn unless the
	// defend-stance tie rule carries it over.
	Defending bool
	// PoisonTurns ticks down once per this combatant's turn, dealing fixed
	// damage while positive.
	PoisonTurns int
}

// ApplyDamage reduces HP by amount, flooring at zero.
//
// Precondition: amount >= 0.
// Postcondition: 0 <= HP <= MaxHP.
func (c *Combatant) ApplyDamage(amount int) {
	c.HP -= amount
	if c.HP < 0 {
		c.HP = 0
	}
}

// Heal raises HP by amount, capping at MaxHP.
//
// Precondition: amount >= 0.
// Postcondition: 0 <= HP <= MaxHP.
func (c *Combatant) Heal(amount int) {
	c.HP += amount
	if c.HP > c.MaxHP {
		c.HP = c.MaxHP
	}
}

// SpendSP consumes amount special points if available.
//
// Postcondition: returns false and leaves SP unchanged when SP < amount.
func (c *Combatant) SpendSP(amount int) bool {
	if c.SP < amount {
		return false
	}
	c.SP -= amount
	return true
}

// RestoreSP raises SP by amount, capping at MaxSP.
//
// Postcondition: 0 <= SP <= MaxSP.
func (c *Combatant) RestoreSP(amount int) {
	c.SP += amount
	if c.SP > c.MaxSP {
		c.SP = c.MaxSP
	}
}

// EffectiveDefense returns the defense used by the damage formula; a
// defending combatant counts double.
func (c *Combatant) EffectiveDefense() int {
	if c.Defending {
		return c.Defense * 2
	}
	return c.Defense
}

// LowHP reports whether the combatant is below a quarter of max HP, the
// threshold for desperation bonuses and low-HP AI shifts.
func (c *Combatant) LowHP() bool {
	return c.HP*4 < c.MaxHP
}

// Defeated reports whether the combatant has no HP left.
func (c *Combatant) Defeated() bool { return c.HP <= 0 }
