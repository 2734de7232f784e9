package services

import (
	"context"
	"fmt"
)

// TeamNamer supplies creative team labels. Implementations may return fewer
// names than requested; callers pad the rest.
type TeamNamer interface {
	TeamNames(ctx context.Context, count int) ([]string, error)
}

// Announcer supplies a one-sentence congratulation for a draw winner.
type Announcer interface {
	Announce(ctx context.Context, name, prize string) (string, error)
}

// LocalNamer is the offline naming collaborator. It never produces creative
// names, so grouping falls back to synthesized labels.
type LocalNamer struct{}

func (LocalNamer) TeamNames(_ context.Context, _ int) ([]string, error) {
	return nil, ErrNamingUnavailable
}

func (LocalNamer) Announce(_ context.Context, name, prize string) (string, error) {
	return congratulation(name, prize), nil
}

func congratulation(name, prize string) string {
	return fmt.Sprintf("Congratulations to %s for winning %s!", name, prize)
}

func classicGroupName(i int) string { return fmt.Sprintf("Group %d", i+1) }

func fallbackTeamName(i int) string { return fmt.Sprintf("Team %d", i+1) }
