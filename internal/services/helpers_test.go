package services

import (
	"context"
	"sync"

	"teamdraw/internal/models"
)

// sequenceRNG returns values from a pre-set sequence, reduced modulo n.
type sequenceRNG struct {
	values []int
	idx    int
}

func (r *sequenceRNG) IntN(n int) int {
	v := r.values[r.idx%len(r.values)] % n
	r.idx++
	return v
}

type fixedRNG struct{ val int }

func (r fixedRNG) IntN(n int) int { return r.val % n }

type stubNamer struct {
	names []string
	err   error

	mu    sync.Mutex
	calls []int
}

func (s *stubNamer) TeamNames(_ context.Context, count int) ([]string, error) {
	s.mu.Lock()
	s.calls = append(s.calls, count)
	s.mu.Unlock()
	return s.names, s.err
}

type funcAnnouncer func(ctx context.Context, name, prize string) (string, error)

func (f funcAnnouncer) Announce(ctx context.Context, name, prize string) (string, error) {
	return f(ctx, name, prize)
}

func people(names ...string) []models.Participant {
	out := make([]models.Participant, len(names))
	for i, n := range names {
		out[i] = models.Participant{ID: "p" + string(rune('0'+i)), Name: n}
	}
	return out
}

func memberNames(groups []models.Group) []string {
	var out []string
	for _, g := range groups {
		for _, m := range g.Members {
			out = append(out, m.Name)
		}
	}
	return out
}
