package game

import (
	"time"

	"github.com/google/uuid"
)

type Phase string

const (
	PhaseCountdown Phase = "countdown"
	PhaseDark      Phase = "dark"
	PhaseReveal    Phase = "reveal"
)

const (
	MinDuration = 3
	MinRadius   = 5
	MaxRadius   = 200
)

type Target struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Circle struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Normalized bool    `json:"normalized"`
}

// Round is the live aggregate for one question. Gen ties timer fires to
// the round they were armed for; a stale generation must never mutate a
// newer round.
type Round struct {
	Gen          uint64
	ImageURL     string
	Question     string
	Duration     int // seconds, clamped to >= MinDuration
	Remaining    int
	Target       Target
	Normalized   bool    // target coordinates are fractions of the image size
	Radius       float64 // pixel tolerance, meaningless when Normalized
	Phase        Phase
	TeamCircles  map[string]Circle
	TeamLocked   map[string]bool
	RevealClicks bool

	historySaved bool
}

type RoundConfig struct {
	ImageURL   string
	Question   string
	Duration   int
	Radius     float64
	HasTarget  bool
	Target     Target
	Normalized bool
}

// newRound clamps the admin-supplied config and starts the countdown at
// the full duration. Target defaults to the pixel origin when the admin
// sent none.
func (s *Session) newRound(cfg RoundConfig) *Round {
	if cfg.Duration < MinDuration {
		cfg.Duration = MinDuration
	}
	if cfg.Radius < MinRadius {
		cfg.Radius = MinRadius
	}
	if cfg.Radius > MaxRadius {
		cfg.Radius = MaxRadius
	}
	if !cfg.HasTarget {
		cfg.Target = Target{}
		cfg.Normalized = false
	}
	s.nextGen++
	r := &Round{
		Gen:         s.nextGen,
		ImageURL:    cfg.ImageURL,
		Question:    cfg.Question,
		Duration:    cfg.Duration,
		Remaining:   cfg.Duration,
		Target:      cfg.Target,
		Normalized:  cfg.Normalized,
		Radius:      cfg.Radius,
		Phase:       PhaseCountdown,
		TeamCircles: make(map[string]Circle),
		TeamLocked:  make(map[string]bool),
	}
	s.Round = r
	return r
}

// copyCircles snapshots the guess map. Event payloads are marshaled on
// connection writer goroutines after the actor has moved on, so they
// must never alias live round state.
func (r *Round) copyCircles() map[string]Circle {
	circles := make(map[string]Circle, len(r.TeamCircles))
	for id, c := range r.TeamCircles {
		circles[id] = c
	}
	return circles
}

type HistoryEntry struct {
	ID          string            `json:"id"`
	Timestamp   time.Time         `json:"timestamp"`
	Question    string            `json:"question"`
	ImageURL    string            `json:"imageUrl"`
	Winners     []string          `json:"winners"`
	TeamCircles map[string]Circle `json:"teamCircles"`
	Target      Target            `json:"target"`
	Radius      float64           `json:"radius"`
	Normalized  bool              `json:"isNormalized"`
}

// snapshotRound appends the current round to history with the given
// winner set. A round already snapshotted (area revealed) is not
// appended again when it is later superseded.
func (s *Session) snapshotRound(winners []string) bool {
	r := s.Round
	if r == nil || r.historySaved {
		return false
	}
	if winners == nil {
		winners = []string{}
	}
	circles := r.copyCircles()
	s.History = append(s.History, HistoryEntry{
		ID:          uuid.New().String(),
		Timestamp:   time.Now(),
		Question:    r.Question,
		ImageURL:    r.ImageURL,
		Winners:     winners,
		TeamCircles: circles,
		Target:      r.Target,
		Radius:      r.Radius,
		Normalized:  r.Normalized,
	})
	r.historySaved = true
	return true
}

// Tick advances the countdown by one second. It returns the events to
// route and whether the ticker should keep firing. A stale generation
// (superseded or cleared round) produces nothing.
func (s *Session) Tick(gen uint64) ([]Event, bool) {
	r := s.Round
	if r == nil || r.Gen != gen || r.Phase != PhaseCountdown {
		return nil, false
	}
	r.Remaining--
	if r.Remaining <= 0 {
		r.Phase = PhaseDark
		return []Event{broadcast(EvtRoundDark, struct{}{})}, false
	}
	return []Event{broadcast(EvtRoundTick, TickPayload{SecondsRemaining: r.Remaining})}, true
}
