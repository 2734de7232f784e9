package services

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/logger"

	"teamdraw/internal/models"
)

// DefaultPrizeLabel is used until the host names a prize.
const DefaultPrizeLabel = "Big Prize"

// DrawEngine runs lucky draws over a pool copied from a roster snapshot.
//
// The engine does no locking of its own around pool and history: callers must
// serialize Draw, Reset and Configure. Only the announcement slot, which is
// written from background goroutines, is synchronized internally.
type DrawEngine struct {
	rng       RNG
	announcer Announcer
	timeout   time.Duration
	now       func() time.Time

	snapshot    []models.Participant
	pool        []models.Participant
	history     []models.DrawResult
	allowRepeat bool
	prizeLabel  string
	lastWinner  *models.DrawResult

	slot    announcementSlot
	pending sync.WaitGroup
}

// NewDrawEngine creates an engine with an empty pool. announcer may be nil, in
// which case the local congratulation sentence is used.
func NewDrawEngine(rng RNG, announcer Announcer, timeout time.Duration) *DrawEngine {
	return &DrawEngine{
		rng:        rng,
		announcer:  announcer,
		timeout:    timeout,
		now:        time.Now,
		prizeLabel: DefaultPrizeLabel,
	}
}

// Configure sets the repeat policy. A non-empty pool is left as it is; an
// empty pool is refilled from the last snapshot when repeats become allowed.
func (e *DrawEngine) Configure(allowRepeat bool) {
	e.allowRepeat = allowRepeat
	if allowRepeat && len(e.pool) == 0 {
		e.pool = slices.Clone(e.snapshot)
	}
}

// SetPrizeLabel changes the label attached to subsequent results.
// Blank labels are ignored.
func (e *DrawEngine) SetPrizeLabel(label string) {
	if label = strings.TrimSpace(label); label != "" {
		e.prizeLabel = label
	}
}

// Reset refills the pool with a copy of snapshot and clears the history.
// Announcements still in flight for earlier draws are discarded.
func (e *DrawEngine) Reset(snapshot []models.Participant) {
	e.snapshot = slices.Clone(snapshot)
	e.pool = slices.Clone(snapshot)
	e.history = nil
	e.lastWinner = nil
	e.slot.clear()
}

// Draw selects one winner uniformly from the pool. Without repeats the winner
// leaves the pool. The result is recorded before any decorative text is
// requested, so a slow or failing announcer cannot affect it.
func (e *DrawEngine) Draw(ctx context.Context) (models.DrawResult, error) {
	if len(e.snapshot) == 0 {
		return models.DrawResult{}, ErrEmptyRoster
	}
	if len(e.pool) == 0 {
		return models.DrawResult{}, ErrEmptyPool
	}

	idx := e.rng.IntN(len(e.pool))
	winner := e.pool[idx]
	if !e.allowRepeat {
		e.pool = slices.Delete(e.pool, idx, idx+1)
	}

	result := models.DrawResult{
		Timestamp:  e.now(),
		Winner:     winner,
		PrizeLabel: e.prizeLabel,
	}
	e.history = slices.Insert(e.history, 0, result)
	e.lastWinner = &result

	e.announce(ctx, result)

	return result, nil
}

func (e *DrawEngine) announce(ctx context.Context, result models.DrawResult) {
	seq := e.slot.begin()
	name, prize := result.Winner.Name, result.PrizeLabel

	if e.announcer == nil {
		e.slot.settle(models.Announcement{Seq: seq, Winner: name, Text: congratulation(name, prize)})
		return
	}

	e.pending.Add(1)
	go func() {
		defer e.pending.Done()

		actx := context.WithoutCancel(ctx)
		if e.timeout > 0 {
			var cancel context.CancelFunc
			actx, cancel = context.WithTimeout(actx, e.timeout)
			defer cancel()
		}

		text, err := e.announcer.Announce(actx, name, prize)
		if err != nil {
			logger.Warningf("announcement for %q failed: %v", name, err)
		}
		if text = strings.TrimSpace(text); err != nil || text == "" {
			text = congratulation(name, prize)
		}

		if !e.slot.settle(models.Announcement{Seq: seq, Winner: name, Text: text}) {
			logger.Infof("dropped stale announcement for %q (draw %d)", name, seq)
		}
	}()
}

// Wait blocks until every outstanding announcement request has finished.
func (e *DrawEngine) Wait() { e.pending.Wait() }

// RollingNames samples count names from the full snapshot, with replacement,
// for the rolling animation. It never touches the pool and has no bearing on
// which participant wins.
func (e *DrawEngine) RollingNames(count int) []string {
	if len(e.snapshot) == 0 || count <= 0 {
		return nil
	}
	names := make([]string, count)
	for i := range names {
		names[i] = e.snapshot[e.rng.IntN(len(e.snapshot))].Name
	}
	return names
}

func (e *DrawEngine) Pool() []models.Participant { return slices.Clone(e.pool) }

// History returns the results, most recent first.
func (e *DrawEngine) History() []models.DrawResult { return slices.Clone(e.history) }

func (e *DrawEngine) AllowRepeat() bool { return e.allowRepeat }

func (e *DrawEngine) PrizeLabel() string { return e.prizeLabel }

// LastWinner returns the most recent result, if any.
func (e *DrawEngine) LastWinner() (models.DrawResult, bool) {
	if e.lastWinner == nil {
		return models.DrawResult{}, false
	}
	return *e.lastWinner, true
}

// Announcement returns the current decorative message. Text is empty while the
// latest draw's request is still pending.
func (e *DrawEngine) Announcement() models.Announcement { return e.slot.get() }

// announcementSlot is a last-write-wins display value. Only the response for
// the most recent draw may be written.
type announcementSlot struct {
	mu      sync.Mutex
	seq     uint64
	current models.Announcement
}

func (s *announcementSlot) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.current = models.Announcement{Seq: s.seq}
	return s.seq
}

func (s *announcementSlot) settle(a models.Announcement) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.Seq != s.seq {
		return false
	}
	s.current = a
	return true
}

func (s *announcementSlot) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.current = models.Announcement{}
}

func (s *announcementSlot) get() models.Announcement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}
