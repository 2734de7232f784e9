package services

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/google/logger"
	"github.com/google/uuid"

	"teamdraw/internal/models"
)

// DefaultGroupSize is the members-per-group preset of a new session.
const DefaultGroupSize = 4

// GroupingEngine partitions a roster snapshot into randomly composed teams.
// It keeps no state between calls.
type GroupingEngine struct {
	rng     RNG
	namer   TeamNamer
	timeout time.Duration
}

func NewGroupingEngine(rng RNG, namer TeamNamer, timeout time.Duration) *GroupingEngine {
	return &GroupingEngine{rng: rng, namer: namer, timeout: timeout}
}

// ClampGroupSize keeps the members-per-group selector within [2, rosterLen].
func ClampGroupSize(size, rosterLen int) int {
	if size > rosterLen {
		size = rosterLen
	}
	if size < 2 {
		size = 2
	}
	return size
}

// Group shuffles snapshot and slices it into ceil(n/groupSize) groups. Every
// group but the last holds exactly groupSize members; the last holds the
// remainder. A groupSize of at least len(snapshot) yields a single group.
//
// Labels never cause a failure: missing or unusable creative names are
// replaced with "Team N".
func (g *GroupingEngine) Group(ctx context.Context, snapshot []models.Participant, groupSize int, mode models.NamingMode) ([]models.Group, error) {
	n := len(snapshot)
	if n == 0 {
		return nil, ErrEmptyRoster
	}
	if groupSize < 1 {
		groupSize = 1
	}
	groupSize = min(groupSize, n)

	numGroups := (n + groupSize - 1) / groupSize
	shuffled := Shuffle(snapshot, g.rng)
	labels := g.labels(ctx, numGroups, mode)

	groups := make([]models.Group, numGroups)
	for i := range groups {
		start := i * groupSize
		end := min(start+groupSize, n)
		groups[i] = models.Group{
			ID:      uuid.NewString(),
			Name:    labels[i],
			Members: slices.Clone(shuffled[start:end]),
		}
	}
	return groups, nil
}

func (g *GroupingEngine) labels(ctx context.Context, count int, mode models.NamingMode) []string {
	labels := make([]string, count)
	if mode == models.NamingClassic {
		for i := range labels {
			labels[i] = classicGroupName(i)
		}
		return labels
	}

	names := g.creativeNames(ctx, count)
	for i := range labels {
		if i < len(names) {
			if name := strings.TrimSpace(names[i]); name != "" {
				labels[i] = name
				continue
			}
		}
		labels[i] = fallbackTeamName(i)
	}
	return labels
}

func (g *GroupingEngine) creativeNames(ctx context.Context, count int) []string {
	if g.namer == nil {
		return nil
	}
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	names, err := g.namer.TeamNames(ctx, count)
	if err != nil {
		logger.Warningf("creative team names unavailable, using fallback labels: %v", err)
		return nil
	}
	if len(names) < count {
		logger.Infof("naming collaborator returned %d of %d team names", len(names), count)
	}
	return names
}
