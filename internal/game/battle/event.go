package battle

import "go.uber.org/zap"

// Side identifies one side of the encounter in events.
type Side int

const (
	SidePlayer Side = iota
	SideOpponent
)

// String returns "player" or "opponent".
func (s Side) String() string {
	if s == SidePlayer {
		return "player"
	}
	return "opponent"
}

// SoundCue names an audio trigger. The presentation layer maps cues to
// actual samples; the battle core only emits them.
type SoundCue string

const (
	CueMenu    SoundCue = "menu"
	CueDeny    SoundCue = "deny"
	CueHit     SoundCue = "hit"
	CueCrit    SoundCue = "crit"
	CueHeal    SoundCue = "heal"
	CueItem    SoundCue = "item"
	CuePoison  SoundCue = "poison"
	CueCharge  SoundCue = "charge"
	CuePhase   SoundCue = "phase"
	CueFlee    SoundCue = "flee"
	CueVictory SoundCue = "victory"
	CueDefeat  SoundCue = "defeat"
	CueLevelUp SoundCue = "levelup"
)

// EventKind discriminates the closed set of presentation events.
type EventKind int

const (
	EventMessage EventKind = iota
	EventDamage
	EventSound
	EventShake
	EventRedrawStats
)

// Event is one fire-and-forget presentation event. Only the fields for the
// given Kind are meaningful. Order of emission is the only ordering
// guarantee.
type Event struct {
	Kind EventKind

	// Text is set for EventMessage.
	Text string
	// Amount and Heal are set for EventDamage; Amount is always >= 0 and
	// Heal distinguishes restoration from damage.
	Amount int
	Heal   bool
	// Cue is set for EventSound.
	Cue SoundCue
	// Target is set for EventShake and EventRedrawStats.
	Target Side
	// Bucket is the shake intensity bucket (0 light, 1 medium, 2 heavy).
	Bucket int
}

// Sink consumes presentation events. Implementations must not call back
// into the session.
type Sink interface {
	Emit(Event)
}

// RecordingSink collects events in order, for tests and replays.
type RecordingSink struct {
	Events []Event
}

// Emit appends e to the recorded stream.
func (r *RecordingSink) Emit(e Event) {
	r.Events = append(r.Events, e)
}

// Messages returns the texts of all recorded message events, in order.
func (r *RecordingSink) Messages() []string {
	var out []string
	for _, e := range r.Events {
		if e.Kind == EventMessage {
			out = append(out, e.Text)
		}
	}
	return out
}

// ZapSink logs every event at debug level. It backs the simulator binary,
// where the "presentation layer" is the process log.
type ZapSink struct {
	Logger *zap.Logger
}

// Emit logs e with kind-appropriate fields.
func (z *ZapSink) Emit(e Event) {
	switch e.Kind {
	case EventMessage:
		z.Logger.Debug("battle message", zap.String("text", e.Text))
	case EventDamage:
		z.Logger.Debug("battle damage", zap.Int("amount", e.Amount), zap.Bool("heal", e.Heal))
	case EventSound:
		z.Logger.Debug("battle sound", zap.String("cue", string(e.Cue)))
	case EventShake:
		z.Logger.Debug("battle shake", zap.String("target", e.Target.String()), zap.Int("bucket", e.Bucket))
	case EventRedrawStats:
		z.Logger.Debug("battle redraw", zap.String("target", e.Target.String()))
	}
}
