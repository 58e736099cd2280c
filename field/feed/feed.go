// Package feed replays a scripted timeline of meaning-vector updates into a
// renderer, standing in for the upstream producer of vectors.
package feed

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"meaningfield/field/meaning"
)

// Target receives updates. *driver.Driver satisfies it.
type Target interface {
	SetMeaningVector(v *meaning.Vector)
	SetAnalyzing(on bool)
}

// Event is one timeline entry. Fields left out of the script leave the
// target's current value alone.
type Event struct {
	At time.Duration
	// SetVector is true when the entry names a vector; Vector nil then
	// clears it.
	SetVector bool
	Vector    *meaning.Vector
	Analyzing *bool
}

type rawEvent struct {
	At        string    `yaml:"at"`
	Vector    yaml.Node `yaml:"vector"`
	Analyzing *bool     `yaml:"analyzing"`
}

func (e *Event) UnmarshalYAML(node *yaml.Node) error {
	var raw rawEvent
	if err := node.Decode(&raw); err != nil {
		return err
	}
	at, err := parseAt(raw.At)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*e = Event{At: at, Analyzing: raw.Analyzing}
	if raw.Vector.Kind == 0 {
		return nil
	}
	e.SetVector = true
	if raw.Vector.Kind == yaml.ScalarNode && raw.Vector.ShortTag() == "!!null" {
		return nil
	}
	var v meaning.Vector
	if err := raw.Vector.Decode(&v); err != nil {
		return fmt.Errorf("line %d: vector: %w", raw.Vector.Line, err)
	}
	e.Vector = &v
	return nil
}

// parseAt accepts Go durations ("1.5s", "250ms") and bare seconds.
func parseAt(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		secs, perr := strconv.ParseFloat(s, 64)
		if perr != nil {
			return 0, fmt.Errorf("invalid at %q: %w", s, err)
		}
		d = time.Duration(secs * float64(time.Second))
	}
	if d < 0 {
		return 0, fmt.Errorf("negative at %q", s)
	}
	return d, nil
}

// Script is a timeline sorted by At. It is safe for concurrent use.
type Script struct {
	events []Event

	mu   sync.Mutex
	next int
}

var ErrEmptyScript = errors.New("feed: script has no events")

// Parse decodes a YAML list of {at, vector, analyzing} entries.
func Parse(data []byte) (*Script, error) {
	var events []Event
	if err := yaml.Unmarshal(data, &events); err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, ErrEmptyScript
	}
	return New(events...), nil
}

// Load reads a script file.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading script %s: %w", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing script %s: %w", path, err)
	}
	return s, nil
}

// New builds a script from events, ordering them by At. Events with equal
// times keep their given order.
func New(events ...Event) *Script {
	evs := append([]Event(nil), events...)
	sort.SliceStable(evs, func(i, j int) bool { return evs[i].At < evs[j].At })
	return &Script{events: evs}
}

func (s *Script) Events() []Event { return append([]Event(nil), s.events...) }

// Len returns the number of events.
func (s *Script) Len() int { return len(s.events) }

// Duration is the time of the last event.
func (s *Script) Duration() time.Duration {
	if len(s.events) == 0 {
		return 0
	}
	return s.events[len(s.events)-1].At
}

// Done reports whether every event has been applied.
func (s *Script) Done() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next >= len(s.events)
}

// Rewind makes every event pending again.
func (s *Script) Rewind() {
	s.mu.Lock()
	s.next = 0
	s.mu.Unlock()
}

// Apply sends every pending event due at or before elapsed to dst and
// returns how many were sent. Driving Apply from the renderer's clock
// makes offline renders deterministic.
func (s *Script) Apply(elapsed time.Duration, dst Target) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for s.next < len(s.events) && s.events[s.next].At <= elapsed {
		send(s.events[s.next], dst)
		s.next++
		n++
	}
	return n
}

// Play sends the pending events to dst on the wall clock, from the moment
// Play is called, and returns once all have been sent or ctx is done.
func (s *Script) Play(ctx context.Context, dst Target) error {
	logger := log.With().Str("component", "feed").Logger()
	start := time.Now()
	timer := time.NewTimer(0)
	defer timer.Stop()
	<-timer.C

	for {
		s.mu.Lock()
		if s.next >= len(s.events) {
			s.mu.Unlock()
			return nil
		}
		at := s.events[s.next].At
		s.mu.Unlock()

		if wait := at - time.Since(start); wait > 0 {
			timer.Reset(wait)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-timer.C:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}
		n := s.Apply(time.Since(start), dst)
		logger.Debug().Dur("at", at).Int("events", n).Msg("feed update")
	}
}

func send(e Event, dst Target) {
	if e.SetVector {
		dst.SetMeaningVector(e.Vector)
	}
	if e.Analyzing != nil {
		dst.SetAnalyzing(*e.Analyzing)
	}
}
