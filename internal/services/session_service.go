package services

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/google/logger"

	"teamdraw/internal/models"
)

// Session holds the roster and engines of a single browser/tenant.
// mu serializes every operation on the session; lastActivity is guarded by
// the service lock instead.
type Session struct {
	mu           sync.Mutex
	roster       Roster
	draw         *DrawEngine
	groups       []models.Group
	groupSize    int
	namingMode   models.NamingMode
	lastActivity time.Time
}

// RosterView is what the roster page renders.
type RosterView struct {
	Participants  []models.Participant
	Text          string
	Duplicates    map[string]int
	HasDuplicates bool
}

// DrawView is what the lucky draw page renders.
type DrawView struct {
	RosterSize   int
	PoolSize     int
	AllowRepeat  bool
	PrizeLabel   string
	History      []models.DrawResult
	LastWinner   *models.DrawResult
	Announcement models.Announcement
}

// GroupView is what the grouping page renders.
type GroupView struct {
	RosterSize int
	GroupSize  int
	NamingMode models.NamingMode
	Groups     []models.Group
}

// SessionService manages one Session per tenant.
type SessionService struct {
	mu       sync.RWMutex
	sessions map[string]*Session // Key: tenantID

	rng       RNG
	announcer Announcer
	timeout   time.Duration
	ttl       time.Duration
	grouping  *GroupingEngine
	retired   sync.WaitGroup
}

// NewSessionService wires the engines to the naming collaborators. Sessions
// idle for longer than ttl are removed by CleanUpInactiveSessions.
func NewSessionService(rng RNG, namer TeamNamer, announcer Announcer, namingTimeout, ttl time.Duration) *SessionService {
	return &SessionService{
		sessions:  make(map[string]*Session),
		rng:       rng,
		announcer: announcer,
		timeout:   namingTimeout,
		ttl:       ttl,
		grouping:  NewGroupingEngine(rng, namer, namingTimeout),
	}
}

// getSession returns the session for a tenant, creating one if it doesn't exist.
func (s *SessionService) getSession(tenantID string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, exists := s.sessions[tenantID]
	if !exists {
		session = &Session{
			draw:       NewDrawEngine(s.rng, s.announcer, s.timeout),
			groupSize:  DefaultGroupSize,
			namingMode: models.NamingCreative,
		}
		s.sessions[tenantID] = session
	}
	session.lastActivity = time.Now()
	return session
}

func (s *SessionService) with(tenantID string, fn func(*Session)) {
	session := s.getSession(tenantID)
	session.mu.Lock()
	defer session.mu.Unlock()
	fn(session)
}

// setRoster replaces the roster and resets everything derived from it.
func (sess *Session) setRoster(list []models.Participant) {
	sess.roster.Replace(list)
	sess.draw.Reset(sess.roster.Snapshot())
	sess.groups = nil
}

// Roster returns the roster page data for a tenant.
func (s *SessionService) Roster(tenantID string) RosterView {
	var view RosterView
	s.with(tenantID, func(sess *Session) {
		snapshot := sess.roster.Snapshot()
		view = RosterView{
			Participants:  snapshot,
			Text:          sess.roster.Text(),
			Duplicates:    DuplicateCounts(snapshot),
			HasDuplicates: HasDuplicates(snapshot),
		}
	})
	return view
}

// ApplyRoster replaces the tenant's roster with names parsed from text.
func (s *SessionService) ApplyRoster(tenantID, text string) int {
	list := ParseRoster(text)
	s.with(tenantID, func(sess *Session) { sess.setRoster(list) })
	logger.Infof("tenant %s: roster replaced with %d names", tenantID, len(list))
	return len(list)
}

// ImportRoster replaces the tenant's roster with the contents of an uploaded file.
func (s *SessionService) ImportRoster(tenantID string, r io.Reader) (int, error) {
	list, err := ReadRoster(r)
	if err != nil {
		return 0, err
	}
	s.with(tenantID, func(sess *Session) { sess.setRoster(list) })
	logger.Infof("tenant %s: roster imported with %d names", tenantID, len(list))
	return len(list), nil
}

// LoadMockRoster fills the tenant's roster with demo names.
func (s *SessionService) LoadMockRoster(tenantID string) {
	s.with(tenantID, func(sess *Session) { sess.setRoster(MockRoster()) })
}

// ClearRoster empties the tenant's roster.
func (s *SessionService) ClearRoster(tenantID string) {
	s.with(tenantID, func(sess *Session) { sess.setRoster(nil) })
}

// RemoveDuplicates drops repeated names, keeping the first occurrence.
// It returns how many participants were removed.
func (s *SessionService) RemoveDuplicates(tenantID string) int {
	var removed int
	s.with(tenantID, func(sess *Session) {
		before := sess.roster.Snapshot()
		after := RemoveDuplicates(before)
		removed = len(before) - len(after)
		if removed > 0 {
			sess.setRoster(after)
		}
	})
	return removed
}

// DrawState returns the lucky draw page data for a tenant.
func (s *SessionService) DrawState(tenantID string) DrawView {
	var view DrawView
	s.with(tenantID, func(sess *Session) { view = drawView(sess) })
	return view
}

func drawView(sess *Session) DrawView {
	view := DrawView{
		RosterSize:   sess.roster.Len(),
		PoolSize:     len(sess.draw.Pool()),
		AllowRepeat:  sess.draw.AllowRepeat(),
		PrizeLabel:   sess.draw.PrizeLabel(),
		History:      sess.draw.History(),
		Announcement: sess.draw.Announcement(),
	}
	if last, ok := sess.draw.LastWinner(); ok {
		view.LastWinner = &last
	}
	return view
}

// Draw applies the prize label and repeat policy, then draws one winner.
// On error the session is left unchanged apart from those two settings.
func (s *SessionService) Draw(ctx context.Context, tenantID, prizeLabel string, allowRepeat bool) (models.DrawResult, DrawView, error) {
	var (
		result models.DrawResult
		view   DrawView
		err    error
	)
	s.with(tenantID, func(sess *Session) {
		sess.draw.SetPrizeLabel(prizeLabel)
		sess.draw.Configure(allowRepeat)
		result, err = sess.draw.Draw(ctx)
		view = drawView(sess)
	})
	if err != nil {
		return models.DrawResult{}, view, err
	}
	logger.Infof("tenant %s: %q won %q", tenantID, result.Winner.Name, result.PrizeLabel)
	return result, view, nil
}

// ResetDraw clears the draw history and refills the pool from the roster.
func (s *SessionService) ResetDraw(tenantID string) {
	s.with(tenantID, func(sess *Session) { sess.draw.Reset(sess.roster.Snapshot()) })
}

// Announcement returns the decorative message slot for a tenant.
func (s *SessionService) Announcement(tenantID string) models.Announcement {
	var a models.Announcement
	s.with(tenantID, func(sess *Session) { a = sess.draw.Announcement() })
	return a
}

// RollingNames returns names for the draw animation.
func (s *SessionService) RollingNames(tenantID string, count int) []string {
	var names []string
	s.with(tenantID, func(sess *Session) { names = sess.draw.RollingNames(count) })
	return names
}

// History returns the draw history, most recent first.
func (s *SessionService) History(tenantID string) []models.DrawResult {
	var history []models.DrawResult
	s.with(tenantID, func(sess *Session) { history = sess.draw.History() })
	return history
}

// GroupState returns the grouping page data for a tenant.
func (s *SessionService) GroupState(tenantID string) GroupView {
	var view GroupView
	s.with(tenantID, func(sess *Session) {
		view = GroupView{
			RosterSize: sess.roster.Len(),
			GroupSize:  sess.groupSize,
			NamingMode: sess.namingMode,
			Groups:     sess.groups,
		}
	})
	return view
}

// Group partitions the tenant's roster. An empty roster leaves the stored
// size and naming presets untouched. The session lock is released while the
// naming collaborator is consulted; the result replaces the displayed groups
// only if the roster has not been replaced in the meantime.
func (s *SessionService) Group(ctx context.Context, tenantID string, groupSize int, mode models.NamingMode) ([]models.Group, error) {
	var snapshot []models.Participant
	s.with(tenantID, func(sess *Session) {
		snapshot = sess.roster.Snapshot()
		if len(snapshot) == 0 {
			return
		}
		groupSize = ClampGroupSize(groupSize, len(snapshot))
		sess.groupSize = groupSize
		sess.namingMode = mode
	})
	if len(snapshot) == 0 {
		return nil, ErrEmptyRoster
	}

	groups, err := s.grouping.Group(ctx, snapshot, groupSize, mode)
	if err != nil {
		return nil, err
	}

	s.with(tenantID, func(sess *Session) {
		if !sameRoster(sess.roster.Snapshot(), snapshot) {
			logger.Infof("tenant %s: roster changed during grouping, result not stored", tenantID)
			return
		}
		sess.groups = groups
	})
	logger.Infof("tenant %s: %d participants split into %d groups", tenantID, len(snapshot), len(groups))
	return groups, nil
}

// Groups returns the last stored grouping result.
func (s *SessionService) Groups(tenantID string) []models.Group {
	var groups []models.Group
	s.with(tenantID, func(sess *Session) { groups = sess.groups })
	return groups
}

func sameRoster(a, b []models.Participant) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			return false
		}
	}
	return true
}

// CleanUpInactiveSessions removes sessions that have been inactive for longer than the TTL.
func (s *SessionService) CleanUpInactiveSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for tenantID, session := range s.sessions {
		idle := time.Since(session.lastActivity)
		if idle > s.ttl {
			logger.Infof("removing inactive session for tenant: %s (idle %s)", tenantID, idle.Round(time.Second))
			s.retire(session)
			delete(s.sessions, tenantID)
			removed++
		}
	}
	return removed
}

// ClearSession removes all data associated with a specific tenant.
func (s *SessionService) ClearSession(tenantID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.sessions[tenantID]; ok {
		s.retire(session)
		delete(s.sessions, tenantID)
	}
	logger.Infof("Cleared session for tenant: %s", tenantID)
}

// retire keeps announcements of a removed session visible to Wait.
// Callers hold s.mu.
func (s *SessionService) retire(session *Session) {
	s.retired.Add(1)
	go func() {
		defer s.retired.Done()
		session.draw.Wait()
	}()
}

// Wait blocks until announcements pending in any session have finished.
func (s *SessionService) Wait() {
	s.mu.RLock()
	engines := make([]*DrawEngine, 0, len(s.sessions))
	for _, session := range s.sessions {
		engines = append(engines, session.draw)
	}
	s.mu.RUnlock()

	for _, e := range engines {
		e.Wait()
	}
	s.retired.Wait()
}
