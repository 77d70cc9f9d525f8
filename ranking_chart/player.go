/*
	Copyright 2023 Google Inc.
	Licensed under the Apache License, Version 2.0 (the "License");
	you may not use this file except in compliance with the License.
	You may obtain a copy of the License at
		https://www.apache.org/licenses/LICENSE-2.0
	Unless required by applicable law or agreed to in writing, software
	distributed under the License is distributed on an "AS IS" BASIS,
	WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
	See the License for the specific language governing permissions and
	limitations under the License.
*/

package rankingchart

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	barpiechart "github.com/ilhamster/litviz/bar_pie_chart"
)

// Interval is the time between playback steps.
const Interval = 1000 * time.Millisecond

// Item is a ranked, labeled value.
type Item = barpiechart.Item

// Snapshot is the ranking at one timestamp, ordered by descending value.
type Snapshot struct {
	Timestamp float64
	Entries   []Item
}

// State is a Player's playback state.
type State int

// Playback states.
const (
	Idle State = iota
	Playing
)

func (s State) String() string {
	if s == Playing {
		return "playing"
	}
	return "idle"
}

// Frame is the ranking a Player is showing.
type Frame struct {
	// Entries are the shown items, ordered by descending value.
	Entries []Item
	// Index is the index of the active snapshot, or -1 if none is loaded.
	Index     int
	Timestamp float64
	State     State
}

// Player steps through a timeline of ranking snapshots.  In snapshot mode
// each step shows the next snapshot; in accumulate mode each step merges one
// more entry into a running ranking, summing values by label.
//
// Each change is reported to the Player's step callback, in order.  The
// callback must not call Pause, Stop or Reset.
type Player struct {
	clock      Clock
	accumulate bool
	onStep     func(Frame)

	// emitMu serializes state changes with their callbacks.
	emitMu sync.Mutex

	mu       sync.Mutex
	timeline []Snapshot
	shown    []Item
	current  int
	// The next entry to accumulate is timeline[cursor].Entries[item].
	cursor, item int
	state        State
	cancel       context.CancelFunc
	done         chan struct{}
}

// NewPlayer returns a new, empty Player.
func NewPlayer(clock Clock, accumulate bool, onStep func(Frame)) *Player {
	if clock == nil {
		clock = RealClock
	}
	if onStep == nil {
		onStep = func(Frame) {}
	}
	return &Player{
		clock:      clock,
		accumulate: accumulate,
		onStep:     onStep,
		current:    -1,
	}
}

// Load stops playback and replaces the receiver's timeline with a copy of
// the provided one, then shows its first snapshot.  Timestamps must be
// strictly increasing.
func (p *Player) Load(timeline []Snapshot) error {
	for idx := 1; idx < len(timeline); idx++ {
		if timeline[idx].Timestamp <= timeline[idx-1].Timestamp {
			return fmt.Errorf("timestamp %v at index %d does not follow %v", timeline[idx].Timestamp, idx, timeline[idx-1].Timestamp)
		}
	}
	p.halt()
	p.emitMu.Lock()
	defer p.emitMu.Unlock()
	p.mu.Lock()
	p.timeline = make([]Snapshot, len(timeline))
	for idx, snap := range timeline {
		p.timeline[idx] = Snapshot{
			Timestamp: snap.Timestamp,
			Entries:   append([]Item(nil), snap.Entries...),
		}
	}
	p.shown, p.current, p.cursor, p.item = nil, -1, 0, 0
	if len(p.timeline) > 0 {
		p.scrub(0)
	}
	f := p.frame()
	p.mu.Unlock()
	p.onStep(f)
	return nil
}

// Timestamps returns the timestamps of the receiver's snapshots.
func (p *Player) Timestamps() []float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	ret := make([]float64, len(p.timeline))
	for idx, snap := range p.timeline {
		ret[idx] = snap.Timestamp
	}
	return ret
}

// Frame returns the receiver's current frame.
func (p *Player) Frame() Frame {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.frame()
}

// State returns the receiver's playback state.
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Accumulate reports whether the receiver accumulates entries.
func (p *Player) Accumulate() bool {
	return p.accumulate
}

func (p *Player) frame() Frame {
	ret := Frame{
		Entries: append([]Item(nil), p.shown...),
		Index:   p.current,
		State:   p.state,
	}
	if p.current >= 0 && p.current < len(p.timeline) {
		ret.Timestamp = p.timeline[p.current].Timestamp
	}
	return ret
}

// scrub shows snapshot idx.  p.mu must be held.
func (p *Player) scrub(idx int) {
	p.shown = append([]Item(nil), p.timeline[idx].Entries...)
	p.current = idx
	p.cursor, p.item = idx+1, 0
}

// atEnd reports whether no further step is possible.  p.mu must be held.
func (p *Player) atEnd() bool {
	if !p.accumulate {
		return p.current+1 >= len(p.timeline)
	}
	for c, i := p.cursor, p.item; c < len(p.timeline); c, i = c+1, 0 {
		if i < len(p.timeline[c].Entries) {
			return false
		}
	}
	return true
}

// step advances one step, returning false at the end of the timeline.  p.mu
// must be held.
func (p *Player) step() bool {
	if p.atEnd() {
		return false
	}
	if !p.accumulate {
		p.current++
		p.shown = append([]Item(nil), p.timeline[p.current].Entries...)
		return true
	}
	for p.item >= len(p.timeline[p.cursor].Entries) {
		p.cursor, p.item = p.cursor+1, 0
	}
	p.shown = Merge(p.shown, p.timeline[p.cursor].Entries[p.item])
	p.current = p.cursor
	p.item++
	return true
}

// Merge returns a copy of ranking with it merged in: its value is added to
// the entry with the same label, or it is inserted.  The result is sorted
// by descending value, ties keeping their order, and holds at most
// barpiechart.MaxBars entries.
func Merge(ranking []Item, it Item) []Item {
	ret := append([]Item(nil), ranking...)
	found := false
	for idx := range ret {
		if ret[idx].Label == it.Label {
			ret[idx].Value += it.Value
			found = true
			break
		}
	}
	if !found {
		ret = append(ret, it)
	}
	sort.SliceStable(ret, func(a, b int) bool {
		return ret[a].Value > ret[b].Value
	})
	if len(ret) > barpiechart.MaxBars {
		ret = ret[:barpiechart.MaxBars]
	}
	return ret
}

func (p *Player) emit(change func() error) error {
	p.emitMu.Lock()
	defer p.emitMu.Unlock()
	p.mu.Lock()
	if err := change(); err != nil {
		p.mu.Unlock()
		return err
	}
	f := p.frame()
	p.mu.Unlock()
	p.onStep(f)
	return nil
}

// Advance performs one step, as a playback tick does.  At the end of the
// timeline it does nothing and returns false.
func (p *Player) Advance() bool {
	advanced := false
	p.emit(func() error {
		advanced = p.step()
		return nil
	})
	return advanced
}

// Scrub shows snapshot idx, replacing any accumulated ranking.  Accumulation
// continues with the following snapshot.
func (p *Player) Scrub(idx int) error {
	return p.emit(func() error {
		if idx < 0 || idx >= len(p.timeline) {
			return fmt.Errorf("no snapshot at index %d", idx)
		}
		p.scrub(idx)
		return nil
	})
}

// Play starts playback.  Playback at the end of the timeline halts
// immediately.
func (p *Player) Play() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == Playing || p.atEnd() {
		return
	}
	if p.cancel != nil {
		p.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	p.state, p.cancel, p.done = Playing, cancel, done
	ticker := p.clock.NewTicker(Interval)
	go p.run(ctx, ticker, done)
}

func (p *Player) run(ctx context.Context, ticker Ticker, done chan struct{}) {
	defer close(done)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			if !p.tick(ctx) {
				return
			}
		}
	}
}

// tick performs one playback step, returning false once playback is over.
func (p *Player) tick(ctx context.Context) bool {
	playing := true
	p.emitMu.Lock()
	defer p.emitMu.Unlock()
	p.mu.Lock()
	if ctx.Err() != nil {
		p.mu.Unlock()
		return false
	}
	if !p.step() || p.atEnd() {
		p.state = Idle
		playing = false
	}
	f := p.frame()
	p.mu.Unlock()
	p.onStep(f)
	return playing
}

// halt stops playback and waits for the playback goroutine to exit.
func (p *Player) halt() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.state = Idle
	p.mu.Unlock()
	if cancel != nil {
		cancel()
		<-done
	}
}

// Pause stops playback, keeping the current frame.  No step is reported
// after Pause returns.
func (p *Player) Pause() {
	p.halt()
}

// Stop stops playback and rewinds to the first snapshot.
func (p *Player) Stop() {
	p.halt()
	p.emit(func() error {
		if len(p.timeline) > 0 {
			p.scrub(0)
		}
		return nil
	})
}

// Reset stops playback and clears the shown ranking.  The timeline is
// retained.
func (p *Player) Reset() {
	p.halt()
	p.emit(func() error {
		p.shown, p.current, p.cursor, p.item = nil, -1, 0, 0
		return nil
	})
}
