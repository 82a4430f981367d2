package battle

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kellsworth/skyquest/internal/game/bestiary"
	"github.com/kellsworth/skyquest/internal/game/item"
	"github.com/kellsworth/skyquest/internal/game/progression"
	"github.com/kellsworth/skyquest/internal/game/rng"
)

// ErrEncounterActive is returned when StartEncounter is called while an
// encounter is already running.
var ErrEncounterActive = errors.New("encounter already active")

// ErrNoEncounter is returned by Tick before the first StartEncounter.
var ErrNoEncounter = errors.New("no encounter active")

// ProgressionStore is the persistent hero collaborator. The session reads
// one snapshot at encounter start and writes back exactly once at exit.
type ProgressionStore interface {
	Snapshot(ctx context.Context) (progression.Hero, error)
	CommitVictory(ctx context.Context, wb progression.VictoryWriteback) (progression.LevelUpReport, error)
	CommitDefeat(ctx context.Context, wb progression.DefeatWriteback, severity int) error
	CommitEscape(ctx context.Context, wb progression.DefeatWriteback) error
}

// InventoryStore is the usable-item collaborator.
type InventoryStore interface {
	UsableItems(ctx context.Context) ([]item.Stack, error)
	Consume(ctx context.Context, itemID string) error
	Add(ctx context.Context, itemID, instanceID string) error
}

// State enumerates the battle state machine. Exactly one state is active
// at any time.
type State int

const (
	StateIdle State = iota // before StartEncounter and after Exit
	StateInit
	StatePlayerTurn
	StateItemSelect
	StatePlayerAct
	StateEnemyTurn
	StateEnemyAct
	StateResolve
	StateVictory
	StateLevelUp
	StateDefeat
	StateExit
)

// String returns the state name for logs.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateInit:
		return "init"
	case StatePlayerTurn:
		return "player_turn"
	case StateItemSelect:
		return "item_select"
	case StatePlayerAct:
		return "player_act"
	case StateEnemyTurn:
		return "enemy_turn"
	case StateEnemyAct:
		return "enemy_act"
	case StateResolve:
		return "resolve"
	case StateVictory:
		return "victory"
	case StateLevelUp:
		return "level_up"
	case StateDefeat:
		return "defeat"
	case StateExit:
		return "exit"
	default:
		return "unknown"
	}
}

// Status is the Tick result visible to the driver.
type Status int

const (
	StatusActive Status = iota
	StatusEnded
)

// Input is the edge-triggered menu input for one tick. Fields are true
// only on the tick the input transition happened.
type Input struct {
	Up        bool
	Down      bool
	Confirm   bool
	Cancel    bool
	Secondary bool
}

// Timing holds the pacing countdowns (in ticks) between sub-states. These
// sequence presentation only; resolution results never depend on them.
type Timing struct {
	Intro   int
	Act     int
	Resolve int
	Outcome int
}

// poisonDamage is the fixed per-turn poison tick.
const poisonDamage = 2

// menuSlots is the size of the root battle menu:
// Attack / Defend / Special / Item (Flee in non-boss encounters).
const menuSlots = 4

// Session owns all battle-local mutable state for one encounter. It is
// single-threaded and step-driven: the driver calls Tick exactly once per
// fixed time step. It must not be shared across goroutines.
type Session struct {
	log      *zap.Logger
	src      rng.Source
	sink     Sink
	heroes   ProgressionStore
	items    InventoryStore
	registry *bestiary.Registry
	catalog  *item.Catalog
	timing   Timing
	severity int

	state      State
	turnNumber int
	player     *Combatant
	opponent   *Combatant

	playerAction   Action
	opponentAction Action
	// lastDamage is signed: positive = damage, negative = heal, zero = no
	// numeric effect. Used only for event emission.
	lastDamage int

	playerActsFirst bool
	lastActor       Side
	actionTimer     int
	menuCursor      int
	itemCursor      int
	encounter       Descriptor

	hero     progression.Hero
	weakness string
	xpBase   int
	// xpEarly is partial XP already granted by boss phase transitions; it
	// is deducted from the victory award and kept on defeat.
	xpEarly int

	// attackStreak counts consecutive player Attack actions; the third in
	// a row earns a bonus and resets the counter.
	attackStreak int
	// carryDefend latches the defend-stance tie: both sides defended the
	// same round, so the player's stance survives the next turn start.
	carryDefend bool

	enemyDef *bestiary.EnemyDef // nil for boss encounters
	boss     *bossState         // nil for normal encounters

	menuItems   []item.Stack
	pendingItem string

	ended bool
}

// NewSession creates a session bound to its collaborators. One session
// value can run many encounters, one at a time.
//
// Precondition: all arguments must be non-nil; severity in [0, 5].
func NewSession(log *zap.Logger, src rng.Source, sink Sink, heroes ProgressionStore,
	items InventoryStore, registry *bestiary.Registry, catalog *item.Catalog,
	timing Timing, severity int) *Session {
	return &Session{
		log:      log,
		src:      src,
		sink:     sink,
		heroes:   heroes,
		items:    items,
		registry: registry,
		catalog:  catalog,
		timing:   timing,
		severity: severity,
		state:    StateIdle,
	}
}

// State returns the current machine state.
func (s *Session) State() State { return s.state }

// TurnNumber returns the current turn, starting at 1.
func (s *Session) TurnNumber() int { return s.turnNumber }

// Player returns a read-only view of the player combatant.
func (s *Session) Player() Combatant { return *s.player }

// Opponent returns a read-only view of the opponent combatant.
func (s *Session) Opponent() Combatant { return *s.opponent }

// PlayerActsFirst reports the initiative computed at encounter start. It
// never changes for the encounter, even if speed stats change.
func (s *Session) PlayerActsFirst() bool { return s.playerActsFirst }

// MenuCursor returns the root menu cursor position; it persists across turns.
func (s *Session) MenuCursor() int { return s.menuCursor }

// BossPhase returns the boss AI phase, or PhaseNormal for non-boss encounters.
func (s *Session) BossPhase() BossPhase {
	if s.boss == nil {
		return PhaseNormal
	}
	return s.boss.phase
}

// StartEncounter reads the hero snapshot, builds both combatants from the
// descriptor (clamping out-of-range ids), and arms the intro state.
//
// Precondition: no encounter may be active.
// Postcondition: on success the session is in StateInit with turnNumber 1.
func (s *Session) StartEncounter(ctx context.Context, desc Descriptor) error {
	if s.state != StateIdle && s.state != StateExit {
		return ErrEncounterActive
	}

	hero, err := s.heroes.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("reading hero snapshot: %w", err)
	}
	s.hero = hero
	s.player = &Combatant{
		Name:     hero.Name,
		IsPlayer: true,
		HP:       hero.HP,
		MaxHP:    hero.MaxHP,
		SP:       hero.SP,
		MaxSP:    hero.MaxSP,
		Attack:   hero.Attack,
		Defense:  hero.Defense,
		Speed:    hero.Speed,
	}

	s.encounter = desc
	if desc.Boss {
		def := s.registry.Boss(desc.Type)
		s.opponent = combatantFromStats(def.Name, def.Stats)
		s.weakness = def.Weakness
		s.xpBase = def.XP
		s.enemyDef = nil
		s.boss = newBossState(def)
	} else {
		def := s.registry.Enemy(desc.Type)
		s.opponent = combatantFromStats(def.Name, def.Stats)
		s.weakness = def.Weakness
		s.xpBase = def.XP
		s.enemyDef = def
		s.boss = nil
	}

	s.state = StateInit
	s.turnNumber = 1
	s.actionTimer = s.timing.Intro
	s.menuCursor = 0
	s.itemCursor = 0
	s.playerAction = nil
	s.opponentAction = nil
	s.lastDamage = 0
	s.attackStreak = 0
	s.carryDefend = false
	s.xpEarly = 0
	s.ended = false
	s.playerActsFirst = s.player.Speed >= s.opponent.Speed

	s.message(fmt.Sprintf("%s attacks!", s.opponent.Name))
	s.redraw(SidePlayer)
	s.redraw(SideOpponent)
	s.log.Info("encounter started",
		zap.Bool("boss", desc.Boss),
		zap.Int("type", desc.Type),
		zap.String("opponent", s.opponent.Name),
		zap.Bool("player_acts_first", s.playerActsFirst),
	)
	return nil
}

// Tick advances the session by one fixed time step.
//
// Precondition: StartEncounter must have succeeded.
// Postcondition: returns StatusEnded on and after the step that reaches
// StateExit; collaborator failures during exit surface as the error.
func (s *Session) Tick(ctx context.Context, in Input) (Status, error) {
	if s.state == StateIdle {
		return StatusEnded, ErrNoEncounter
	}
	if s.ended {
		return StatusEnded, nil
	}

	var err error
	switch s.state {
	case StateInit:
		s.tickInit()
	case StatePlayerTurn:
		s.tickPlayerTurn(ctx, in)
	case StateItemSelect:
		s.tickItemSelect(ctx, in)
	case StatePlayerAct:
		err = s.tickPlayerAct(ctx)
	case StateEnemyTurn:
		s.tickEnemyTurn()
	case StateEnemyAct:
		s.tickEnemyAct()
	case StateResolve:
		s.tickResolve()
	case StateVictory:
		err = s.tickVictory(ctx)
	case StateLevelUp:
		s.tickLevelUp()
	case StateDefeat:
		err = s.tickDefeat(ctx)
	}
	if err != nil {
		return s.status(), err
	}
	return s.status(), nil
}

func (s *Session) status() Status {
	if s.ended {
		return StatusEnded
	}
	return StatusActive
}

func (s *Session) tickInit() {
	if s.countdown() {
		return
	}
	if s.playerActsFirst {
		s.enterPlayerTurn()
	} else {
		s.enterEnemyTurn()
	}
}

// enterPlayerTurn applies the turn-start rules: stance clear (unless the
// tie rule carries it), then the poison tick.
func (s *Session) enterPlayerTurn() {
	if s.carryDefend {
		s.carryDefend = false
		s.message(fmt.Sprintf("%s holds the guard stance.", s.player.Name))
	} else {
		s.player.Defending = false
	}

	if s.tickPoison(s.player, SidePlayer) {
		s.enterDefeat()
		return
	}
	s.state = StatePlayerTurn
}

func (s *Session) tickPlayerTurn(ctx context.Context, in Input) {
	switch {
	case in.Up:
		s.menuCursor = (s.menuCursor + menuSlots - 1) % menuSlots
		s.sound(CueMenu)
	case in.Down:
		s.menuCursor = (s.menuCursor + 1) % menuSlots
		s.sound(CueMenu)
	case in.Secondary:
		s.openItemSelect(ctx)
	case in.Confirm:
		s.confirmMenu(ctx)
	}
}

func (s *Session) confirmMenu(ctx context.Context) {
	switch s.menuCursor {
	case 0:
		s.queuePlayerAction(Standard{Kind: ActAttack})
	case 1:
		s.queuePlayerAction(Standard{Kind: ActDefend})
	case 2:
		// Special is validated here; the resolution-layer fallback to
		// Attack stays unreachable in normal play.
		if s.player.SP < 1 {
			s.message("Not enough SP!")
			s.sound(CueDeny)
			return
		}
		s.queuePlayerAction(Standard{Kind: ActSpecial})
	case 3:
		if s.encounter.Boss {
			s.openItemSelect(ctx)
			return
		}
		s.queuePlayerAction(Standard{Kind: ActFlee})
	}
}

func (s *Session) queuePlayerAction(a Action) {
	s.playerAction = a
	s.state = StatePlayerAct
	s.actionTimer = s.timing.Act
	s.sound(CueMenu)
	s.log.Debug("player action chosen", zap.String("action", a.String()), zap.Int("turn", s.turnNumber))
}

// openItemSelect loads the item sub-menu. An empty inventory surfaces a
// message and stays in the player's turn without consuming it.
func (s *Session) openItemSelect(ctx context.Context) {
	stacks, err := s.items.UsableItems(ctx)
	if err != nil {
		s.log.Warn("listing items failed", zap.Error(err))
		s.message("No items!")
		s.sound(CueDeny)
		return
	}
	if len(stacks) == 0 {
		s.message("No items!")
		s.sound(CueDeny)
		return
	}
	s.menuItems = stacks
	if s.itemCursor >= len(stacks) {
		s.itemCursor = len(stacks) - 1
	}
	s.state = StateItemSelect
	s.sound(CueMenu)
}

func (s *Session) tickItemSelect(ctx context.Context, in Input) {
	switch {
	case in.Cancel:
		s.state = StatePlayerTurn
		s.sound(CueMenu)
	case in.Up:
		if s.itemCursor > 0 {
			s.itemCursor--
			s.sound(CueMenu)
		}
	case in.Down:
		if s.itemCursor < len(s.menuItems)-1 {
			s.itemCursor++
			s.sound(CueMenu)
		}
	case in.Confirm:
		chosen := s.menuItems[s.itemCursor]
		if err := s.items.Consume(ctx, chosen.ItemID); err != nil {
			s.log.Warn("consuming item failed", zap.String("item", chosen.ItemID), zap.Error(err))
			s.message("No items!")
			s.sound(CueDeny)
			s.state = StatePlayerTurn
			return
		}
		s.pendingItem = chosen.ItemID
		s.queuePlayerAction(Standard{Kind: ActItem})
	}
}

func (s *Session) tickPlayerAct(ctx context.Context) error {
	if s.countdown() {
		return nil
	}
	err := s.resolvePlayerAction(ctx)
	if s.ended || s.state == StateExit {
		return err
	}
	s.lastActor = SidePlayer
	s.state = StateResolve
	s.actionTimer = s.timing.Resolve
	return err
}

// enterEnemyTurn applies the opponent's turn-start rules and arms the
// pacing timer before the AI picks its move.
func (s *Session) enterEnemyTurn() {
	s.opponent.Defending = false
	if s.tickPoison(s.opponent, SideOpponent) {
		s.enterVictory()
		return
	}
	if s.boss != nil {
		s.bossTurnStart()
	}
	s.state = StateEnemyTurn
	s.actionTimer = s.timing.Act
}

func (s *Session) tickEnemyTurn() {
	if s.countdown() {
		return
	}
	if s.boss != nil {
		s.opponentAction = s.chooseBossAction()
	} else {
		s.opponentAction = chooseEnemyAction(s.enemyDef, s.opponent, s.src)
	}
	s.log.Debug("opponent action chosen", zap.String("action", s.opponentAction.String()), zap.Int("turn", s.turnNumber))
	s.state = StateEnemyAct
	s.actionTimer = s.timing.Act
}

func (s *Session) tickEnemyAct() {
	if s.countdown() {
		return
	}
	s.resolveOpponentAction()
	s.lastActor = SideOpponent
	s.state = StateResolve
	s.actionTimer = s.timing.Resolve
}

// tickResolve runs the termination check and the turn alternation. The
// opponent-defeated check deliberately precedes the player-defeated check.
func (s *Session) tickResolve() {
	if s.countdown() {
		return
	}

	if s.boss != nil && !s.opponent.Defeated() {
		s.checkBossPhase()
	}

	if s.opponent.Defeated() {
		s.enterVictory()
		return
	}
	if s.player.Defeated() {
		s.enterDefeat()
		return
	}

	if s.lastActor == SidePlayer {
		s.enterEnemyTurn()
		return
	}

	// Opponent acted last; control returns to the player.
	s.turnNumber++
	s.enterPlayerTurn()
}

func (s *Session) enterVictory() {
	s.state = StateVictory
	s.actionTimer = s.timing.Outcome
	s.message(fmt.Sprintf("%s is defeated!", s.opponent.Name))
	s.sound(CueVictory)
	s.shake(SideOpponent, 2)
}

func (s *Session) tickVictory(ctx context.Context) error {
	if s.countdown() {
		return nil
	}
	leveled, err := s.resolveVictory(ctx)
	if err != nil {
		s.exit()
		return err
	}
	if leveled {
		s.state = StateLevelUp
		s.actionTimer = s.timing.Outcome
		s.sound(CueLevelUp)
		return nil
	}
	s.exit()
	return nil
}

func (s *Session) tickLevelUp() {
	if s.countdown() {
		return
	}
	s.exit()
}

func (s *Session) enterDefeat() {
	s.state = StateDefeat
	s.actionTimer = s.timing.Outcome
	s.message(fmt.Sprintf("%s falls...", s.player.Name))
	s.sound(CueDefeat)
	s.shake(SidePlayer, 2)
}

func (s *Session) tickDefeat(ctx context.Context) error {
	if s.countdown() {
		return nil
	}
	err := s.resolveDefeat(ctx)
	s.exit()
	return err
}

// exit hands control back to the driver. Every Tick afterwards reports
// StatusEnded until the next StartEncounter.
func (s *Session) exit() {
	s.state = StateExit
	s.ended = true
	s.log.Info("encounter ended",
		zap.Int("turns", s.turnNumber),
		zap.Int("player_hp", s.player.HP),
		zap.Int("opponent_hp", s.opponent.HP),
	)
}

// countdown decrements the pacing timer and reports whether the state is
// still waiting.
func (s *Session) countdown() bool {
	if s.actionTimer > 0 {
		s.actionTimer--
		return true
	}
	return false
}

// tickPoison applies the fixed poison damage to c if afflicted and reports
// whether it was lethal.
func (s *Session) tickPoison(c *Combatant, side Side) bool {
	if c.PoisonTurns < 1 {
		return false
	}
	c.PoisonTurns--
	c.ApplyDamage(poisonDamage)
	s.message(fmt.Sprintf("%s is hurt by poison!", c.Name))
	s.sound(CuePoison)
	s.damage(side, poisonDamage, false)
	return c.Defeated()
}

// message emits a ShowMessage event.
func (s *Session) message(text string) {
	s.sink.Emit(Event{Kind: EventMessage, Text: text})
}

// damage emits a ShowDamage event and records lastDamage (negative for heals).
func (s *Session) damage(target Side, amount int, heal bool) {
	if heal {
		s.lastDamage = -amount
	} else {
		s.lastDamage = amount
	}
	s.sink.Emit(Event{Kind: EventDamage, Amount: amount, Heal: heal})
	s.redraw(target)
}

func (s *Session) sound(cue SoundCue) {
	s.sink.Emit(Event{Kind: EventSound, Cue: cue})
}

func (s *Session) shake(target Side, bucket int) {
	s.sink.Emit(Event{Kind: EventShake, Target: target, Bucket: bucket})
}

func (s *Session) redraw(target Side) {
	s.sink.Emit(Event{Kind: EventRedrawStats, Target: target})
}

func combatantFromStats(name string, st bestiary.Stats) *Combatant {
	return &Combatant{
		Name:    name,
		HP:      st.MaxHP,
		MaxHP:   st.MaxHP,
		SP:      st.MaxSP,
		MaxSP:   st.MaxSP,
		Attack:  st.Attack,
		Defense: st.Defense,
		Speed:   st.Speed,
	}
}
