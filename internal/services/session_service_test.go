package services

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teamdraw/internal/models"
)

func newTestSessionService(namer TeamNamer, announcer Announcer) *SessionService {
	return NewSessionService(NewSeededRandom(17), namer, announcer, time.Second, time.Hour)
}

func TestSessionService_Draw(t *testing.T) {
	const testTenantID = "test-tenant"
	service := newTestSessionService(nil, nil)
	service.ApplyRoster(testTenantID, "Ann\nBen\nCid")

	t.Run("Test successful draws exhaust the pool", func(t *testing.T) {
		winners := make(map[string]bool)
		for i := range 3 {
			result, view, err := service.Draw(context.Background(), testTenantID, "Gift Card", false)
			require.NoError(t, err)
			winners[result.Winner.Name] = true
			assert.Equal(t, "Gift Card", result.PrizeLabel)
			assert.Equal(t, 2-i, view.PoolSize)
		}
		assert.Len(t, winners, 3)
	})

	t.Run("Test drawing from an empty pool", func(t *testing.T) {
		_, view, err := service.Draw(context.Background(), testTenantID, "Gift Card", false)
		require.ErrorIs(t, err, ErrEmptyPool)
		assert.Len(t, view.History, 3)
	})

	t.Run("Test allowing repeats refills an exhausted pool", func(t *testing.T) {
		_, view, err := service.Draw(context.Background(), testTenantID, "Gift Card", true)
		require.NoError(t, err)
		assert.Equal(t, 3, view.PoolSize)
		assert.Len(t, view.History, 4)
	})

	t.Run("Test reset clears history", func(t *testing.T) {
		service.ResetDraw(testTenantID)
		view := service.DrawState(testTenantID)
		assert.Empty(t, view.History)
		assert.Nil(t, view.LastWinner)
		assert.Equal(t, 3, view.PoolSize)
	})

	t.Run("Test tenants are isolated", func(t *testing.T) {
		_, _, err := service.Draw(context.Background(), "other-tenant", "", false)
		require.ErrorIs(t, err, ErrEmptyRoster)
		assert.Equal(t, 3, service.DrawState(testTenantID).RosterSize)
	})
}

func TestSessionService_RosterChangeResetsDraw(t *testing.T) {
	const tenant = "t1"
	service := newTestSessionService(nil, nil)
	service.ApplyRoster(tenant, "Ann,Ben")
	_, _, err := service.Draw(context.Background(), tenant, "", false)
	require.NoError(t, err)
	_, err = service.Group(context.Background(), tenant, 2, models.NamingClassic)
	require.NoError(t, err)

	service.ApplyRoster(tenant, "Cid,Dee,Eve")

	view := service.DrawState(tenant)
	assert.Equal(t, 3, view.PoolSize)
	assert.Empty(t, view.History)
	assert.Empty(t, service.Groups(tenant))
}

func TestSessionService_RosterOperations(t *testing.T) {
	const tenant = "t1"
	service := newTestSessionService(nil, nil)

	n, err := service.ImportRoster(tenant, strings.NewReader("Ann\nann\nBen\n"))
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	view := service.Roster(tenant)
	assert.True(t, view.HasDuplicates)
	assert.Equal(t, 2, view.Duplicates["ann"])
	assert.Equal(t, "Ann\nann\nBen", view.Text)

	assert.Equal(t, 1, service.RemoveDuplicates(tenant))
	assert.Equal(t, 0, service.RemoveDuplicates(tenant))
	assert.Equal(t, "Ann\nBen", service.Roster(tenant).Text)

	service.LoadMockRoster(tenant)
	assert.Len(t, service.Roster(tenant).Participants, 15)

	service.ClearRoster(tenant)
	assert.Empty(t, service.Roster(tenant).Participants)
	assert.Equal(t, 0, service.DrawState(tenant).PoolSize)
}

// gatedNamer blocks in TeamNames until release is closed.
type gatedNamer struct {
	started chan struct{}
	release chan struct{}
}

func (g *gatedNamer) TeamNames(ctx context.Context, _ int) ([]string, error) {
	close(g.started)
	select {
	case <-g.release:
		return []string{"Rockets", "Owls"}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestSessionService_Group(t *testing.T) {
	const tenant = "t1"

	t.Run("Test creative names are padded", func(t *testing.T) {
		namer := &stubNamer{names: []string{"Rockets"}}
		service := newTestSessionService(namer, nil)

		_, err := service.Group(context.Background(), tenant, 2, models.NamingCreative)
		require.ErrorIs(t, err, ErrEmptyRoster)

		service.ApplyRoster(tenant, "Ann,Ben,Cid,Dee,Eve")
		groups, err := service.Group(context.Background(), tenant, 1, models.NamingCreative)
		require.NoError(t, err)

		// A size of 1 is clamped to 2.
		require.Len(t, groups, 3)
		assert.Equal(t, "Rockets", groups[0].Name)
		assert.Equal(t, "Team 2", groups[1].Name)
		assert.ElementsMatch(t, []string{"Ann", "Ben", "Cid", "Dee", "Eve"}, memberNames(groups))

		state := service.GroupState(tenant)
		assert.Equal(t, 2, state.GroupSize)
		assert.Equal(t, models.NamingCreative, state.NamingMode)
		assert.Equal(t, groups, state.Groups)
	})

	t.Run("Test empty roster keeps presets", func(t *testing.T) {
		service := newTestSessionService(nil, nil)

		before := service.GroupState(tenant)
		_, err := service.Group(context.Background(), tenant, 7, models.NamingClassic)
		require.ErrorIs(t, err, ErrEmptyRoster)

		after := service.GroupState(tenant)
		assert.Equal(t, before, after)
		assert.Equal(t, DefaultGroupSize, after.GroupSize)
		assert.Equal(t, models.NamingCreative, after.NamingMode)
	})

	t.Run("Test roster replaced during naming", func(t *testing.T) {
		namer := &gatedNamer{started: make(chan struct{}), release: make(chan struct{})}
		service := NewSessionService(NewSeededRandom(3), namer, nil, 5*time.Second, time.Hour)
		service.ApplyRoster(tenant, "Ann,Ben,Cid,Dee")

		type outcome struct {
			groups []models.Group
			err    error
		}
		done := make(chan outcome, 1)
		go func() {
			groups, err := service.Group(context.Background(), tenant, 2, models.NamingCreative)
			done <- outcome{groups, err}
		}()

		<-namer.started
		service.ApplyRoster(tenant, "Eve,Fay")
		close(namer.release)
		res := <-done

		require.NoError(t, res.err)
		require.Len(t, res.groups, 2)
		assert.Equal(t, "Rockets", res.groups[0].Name)
		assert.ElementsMatch(t, []string{"Ann", "Ben", "Cid", "Dee"}, memberNames(res.groups))
		assert.Empty(t, service.Groups(tenant), "groups for a replaced roster are not stored")
		assert.Len(t, service.Roster(tenant).Participants, 2)
	})
}

func TestSessionService_AnnouncementAndRolling(t *testing.T) {
	const tenant = "t1"
	ann := funcAnnouncer(func(_ context.Context, name, prize string) (string, error) {
		return name + " takes the " + prize, nil
	})
	service := newTestSessionService(nil, ann)
	service.ApplyRoster(tenant, "Ann")

	_, _, err := service.Draw(context.Background(), tenant, "Mug", false)
	require.NoError(t, err)
	service.Wait()

	assert.Equal(t, "Ann takes the Mug", service.Announcement(tenant).Text)
	assert.Equal(t, []string{"Ann", "Ann", "Ann"}, service.RollingNames(tenant, 3))
	assert.Len(t, service.History(tenant), 1)
}

func TestSessionService_CleanUp(t *testing.T) {
	service := NewSessionService(NewSeededRandom(1), nil, nil, time.Second, time.Minute)
	service.ApplyRoster("stale", "Ann")
	service.ApplyRoster("fresh", "Ben")

	service.mu.Lock()
	service.sessions["stale"].lastActivity = time.Now().Add(-2 * time.Minute)
	service.mu.Unlock()

	assert.Equal(t, 1, service.CleanUpInactiveSessions())
	assert.Empty(t, service.Roster("stale").Participants)
	assert.Len(t, service.Roster("fresh").Participants, 1)

	service.ClearSession("fresh")
	assert.Empty(t, service.Roster("fresh").Participants)
}

func TestSessionService_WaitCoversClearedSessions(t *testing.T) {
	const tenant = "t1"
	var finished atomic.Bool
	release := make(chan struct{})
	ann := funcAnnouncer(func(_ context.Context, name, _ string) (string, error) {
		<-release
		finished.Store(true)
		return "Go " + name, nil
	})
	service := newTestSessionService(nil, ann)
	service.ApplyRoster(tenant, "Ann")
	_, _, err := service.Draw(context.Background(), tenant, "Mug", false)
	require.NoError(t, err)

	service.ClearSession(tenant)
	close(release)
	service.Wait()
	assert.True(t, finished.Load())
}
