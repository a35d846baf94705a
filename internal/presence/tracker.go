package presence

import (
	"slices"
	"time"

	"github.com/rocketscienceinc/tictactoe-online/internal/entity"
)

const (
	DefaultHeartbeatTimeout = 10 * time.Second
	DefaultPollInterval     = 3 * time.Second
	DefaultGracePeriod      = 5 * time.Second
)

type Config struct {
	HeartbeatTimeout time.Duration
	PollInterval     time.Duration
	GracePeriod      time.Duration
}

func DefaultConfig() Config {
	return Config{
		HeartbeatTimeout: DefaultHeartbeatTimeout,
		PollInterval:     DefaultPollInterval,
		GracePeriod:      DefaultGracePeriod,
	}
}

// Liveness is the tracker's belief about the opponent.
type Liveness int

const (
	Unknown Liveness = iota // no opponent seen yet
	Present
	Suspect // a leave was seen, waiting for the grace period
	Absent
)

func (that Liveness) String() string {
	switch that {
	case Present:
		return "present"
	case Suspect:
		return "suspect"
	case Absent:
		return "absent"
	default:
		return "unknown"
	}
}

// Signal is what the owner of the tracker has to report after an event.
type Signal int

const (
	None Signal = iota
	Disconnect
	Reconnect
)

func (that Signal) String() string {
	switch that {
	case Disconnect:
		return "disconnect"
	case Reconnect:
		return "reconnect"
	default:
		return "none"
	}
}

// GraceToken identifies one scheduled grace re-check.
type GraceToken uint64

// Tracker derives a single opponent verdict from row changes, presence events and polls.
//
// Disconnect is reported only when the verdict becomes Absent. Reconnect is reported only when
// an Absent or Suspect verdict becomes Present. Every transition invalidates the pending grace
// token, so a grace re-check and a poll timeout can never both report the same departure.
// Tracker is not safe for concurrent use.
type Tracker struct {
	cfg  Config
	self string

	opponentID    string
	hadOpponent   bool
	liveness      Liveness
	lastHeartbeat time.Time
	generation    uint64
}

func NewTracker(self string, cfg Config) *Tracker {
	return &Tracker{
		cfg:  cfg,
		self: self,
	}
}

func (that *Tracker) Opponent() string {
	return that.opponentID
}

func (that *Tracker) Liveness() Liveness {
	return that.liveness
}

func (that *Tracker) LastHeartbeat() time.Time {
	return that.lastHeartbeat
}

// OnRowChange follows the opponent id written on the room row.
func (that *Tracker) OnRowChange(room *entity.Room, now time.Time) Signal {
	if room.SymbolOf(that.self) == entity.EmptyCell {
		return None
	}

	opponentID := room.OpponentOf(that.self)

	switch {
	case opponentID == "" && that.opponentID == "":
		return None
	case opponentID == "":
		that.opponentID = ""
		if that.liveness == Absent {
			return None
		}
		that.transition(Absent)
		return Disconnect
	case that.opponentID == "":
		return that.adopt(opponentID, now)
	case opponentID != that.opponentID:
		that.opponentID = opponentID
		that.lastHeartbeat = now
		that.transition(Present)
		return Reconnect
	default:
		that.lastHeartbeat = now
		return None
	}
}

// OnPresenceSync handles a full presence snapshot. Absence from a snapshot is left to the poll.
func (that *Tracker) OnPresenceSync(members []string, now time.Time) Signal {
	if that.opponentID != "" {
		if slices.Contains(members, that.opponentID) {
			return that.sighted(now)
		}
		return None
	}

	for _, key := range members {
		if key != that.self {
			return that.adopt(key, now)
		}
	}

	return None
}

func (that *Tracker) OnPresenceJoin(key string, now time.Time) Signal {
	switch key {
	case that.self:
		return None
	case that.opponentID:
		return that.sighted(now)
	}

	if that.opponentID == "" {
		return that.adopt(key, now)
	}

	return None
}

// OnPresenceLeave moves a present opponent to Suspect. When ok is true the caller
// must call OnGraceExpired with the token after the grace period.
func (that *Tracker) OnPresenceLeave(key string, _ time.Time) (GraceToken, bool) {
	if key == that.self || key == "" || key != that.opponentID {
		return 0, false
	}

	if that.liveness != Present {
		return 0, false
	}

	that.transition(Suspect)

	return GraceToken(that.generation), true
}

// OnGraceExpired resolves a Suspect verdict. Stale tokens are ignored.
func (that *Tracker) OnGraceExpired(token GraceToken, present bool, now time.Time) Signal {
	if that.liveness != Suspect || uint64(token) != that.generation {
		return None
	}

	if present {
		return that.sighted(now)
	}

	that.transition(Absent)

	return Disconnect
}

// OnPoll applies one presence lookup for the tracked opponent.
func (that *Tracker) OnPoll(present bool, now time.Time) Signal {
	if that.opponentID == "" {
		return None
	}

	if present {
		return that.sighted(now)
	}

	if that.liveness == Absent || now.Sub(that.lastHeartbeat) <= that.cfg.HeartbeatTimeout {
		return None
	}

	that.transition(Absent)

	return Disconnect
}

// GracePeriod is how long a Suspect verdict waits before it is re-checked.
func (that *Tracker) GracePeriod() time.Duration {
	return that.cfg.GracePeriod
}

func (that *Tracker) adopt(opponentID string, now time.Time) Signal {
	returning := that.hadOpponent && that.liveness == Absent

	that.opponentID = opponentID
	that.hadOpponent = true
	that.lastHeartbeat = now
	that.transition(Present)

	if returning {
		return Reconnect
	}

	return None
}

func (that *Tracker) sighted(now time.Time) Signal {
	that.lastHeartbeat = now

	switch that.liveness {
	case Absent, Suspect:
		that.transition(Present)
		return Reconnect
	case Unknown:
		that.transition(Present)
		return None
	default:
		return None
	}
}

func (that *Tracker) transition(next Liveness) {
	if that.liveness == next {
		return
	}

	that.liveness = next
	that.generation++
}
