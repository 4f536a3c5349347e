package handler

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/hammers-calendar/internal/model"
	q "github.com/iliyamo/hammers-calendar/internal/queue"
	"github.com/iliyamo/hammers-calendar/internal/repository"
)

// memStore is an in-memory GameStore and AttendanceStore.
type memStore struct {
	mu       sync.Mutex
	games    map[uint64]model.Game
	attended map[[2]uint64]bool
	failSet  error

	lastQuery repository.GameSearchQuery
}

func newMemStore(games ...model.Game) *memStore {
	s := &memStore{games: map[uint64]model.Game{}, attended: map[[2]uint64]bool{}}
	for _, g := range games {
		s.games[g.ID] = g
	}
	return s
}

func (s *memStore) Seasons(context.Context) ([]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := map[int]bool{}
	var out []int
	for _, g := range s.games {
		if !seen[g.Season] {
			seen[g.Season] = true
			out = append(out, g.Season)
		}
	}
	return out, nil
}

func (s *memStore) LatestSeason(ctx context.Context) (int, error) {
	years, _ := s.Seasons(ctx)
	max := 0
	for _, y := range years {
		if y > max {
			max = y
		}
	}
	return max, nil
}

func (s *memStore) ListBySeason(_ context.Context, season int, userID uint64) ([]model.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Game{}
	for _, g := range s.games {
		if g.Season == season {
			g.Attended = s.attended[[2]uint64{userID, g.ID}]
			out = append(out, g)
		}
	}
	return out, nil
}

func (s *memStore) GetByID(_ context.Context, id, userID uint64) (*model.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.games[id]
	if !ok {
		return nil, repository.ErrGameNotFound
	}
	g.Attended = s.attended[[2]uint64{userID, id}]
	return &g, nil
}

func (s *memStore) Save(_ context.Context, g *model.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g.ID = uint64(len(s.games) + 100)
	s.games[g.ID] = *g
	return nil
}

// Search filters by opponents only; when and paging are passed through.
func (s *memStore) Search(_ context.Context, q repository.GameSearchQuery, userID uint64) ([]model.Game, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastQuery = q
	out := []model.Game{}
	for _, g := range s.games {
		if q.Opponents == "" || strings.Contains(strings.ToLower(g.Opponents), strings.ToLower(q.Opponents)) {
			g.Attended = s.attended[[2]uint64{userID, g.ID}]
			out = append(out, g)
		}
	}
	return out, int64(len(out)), nil
}

func (s *memStore) Set(_ context.Context, userID, gameID uint64, attended bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSet != nil {
		return false, s.failSet
	}
	if _, ok := s.games[gameID]; !ok {
		return false, repository.ErrGameNotFound
	}
	s.attended[[2]uint64{userID, gameID}] = attended
	return attended, nil
}

func (s *memStore) CountForSeason(_ context.Context, userID uint64, season int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k, v := range s.attended {
		if v && k[0] == userID && s.games[k[1]].Season == season {
			n++
		}
	}
	return n, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []q.AttendanceChangedEvent
}

func (p *recordingPublisher) PublishAttendanceChanged(_ context.Context, ev q.AttendanceChangedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

type recordingCache struct {
	users []uint64
}

func (c *recordingCache) InvalidateUser(_ context.Context, userID uint64) error {
	c.users = append(c.users, userID)
	return nil
}

// memUsers is an in-memory UserStore and TokenStore.
type memUsers struct {
	users   map[string]model.User
	tokens  map[string]uint64
	revoked map[string]bool

	// revokeErr, when set, is returned by the next RevokeByHash.
	revokeErr error
}

func newMemUsers(users ...model.User) *memUsers {
	m := &memUsers{users: map[string]model.User{}, tokens: map[string]uint64{}, revoked: map[string]bool{}}
	for _, u := range users {
		m.users[u.Username] = u
	}
	return m
}

func (m *memUsers) Create(_ context.Context, username, password, role string, _ int) (uint64, error) {
	if _, ok := m.users[username]; ok {
		return 0, repository.ErrUsernameExists
	}
	id := uint64(len(m.users) + 1)
	m.users[username] = model.User{ID: id, Username: username, Role: role, IsActive: true}
	return id, nil
}

func (m *memUsers) GetByUsername(_ context.Context, username string) (model.User, error) {
	u, ok := m.users[username]
	if !ok {
		return model.User{}, sql.ErrNoRows
	}
	return u, nil
}

func (m *memUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return model.User{}, sql.ErrNoRows
}

func (m *memUsers) StoreRefresh(_ context.Context, userID uint64, hash string, _ time.Time) error {
	m.tokens[hash] = userID
	return nil
}

func (m *memUsers) ValidateRefresh(_ context.Context, hash string) (uint64, error) {
	id, ok := m.tokens[hash]
	if !ok || m.revoked[hash] {
		return 0, sql.ErrNoRows
	}
	return id, nil
}

func (m *memUsers) RevokeByHash(_ context.Context, hash string) error {
	if err := m.revokeErr; err != nil {
		m.revokeErr = nil
		return err
	}
	if m.revoked[hash] {
		return repository.ErrTokenRevoked
	}
	m.revoked[hash] = true
	return nil
}

func (m *memUsers) RevokeAllForUser(_ context.Context, userID uint64) error {
	for h, id := range m.tokens {
		if id == userID {
			m.revoked[h] = true
		}
	}
	return nil
}
