package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Clash-Of-Pirates/Clash-of-pirates/internal/game"
)

// Memory is the in-process backend: mutex-guarded maps with value-copy
// semantics so callers never alias stored records. Used by tests and the
// memory STORE_BACKEND mode.
type Memory struct {
	mu         sync.Mutex
	games      map[uint32]Game
	challenges map[string]Challenge
	usernames  map[game.Address]string
	balances   map[game.Address]int64
	entries    []LedgerEntry
}

func NewMemory() *Memory {
	return &Memory{
		games:      make(map[uint32]Game),
		challenges: make(map[string]Challenge),
		usernames:  make(map[game.Address]string),
		balances:   make(map[game.Address]int64),
	}
}

func copyGame(g Game) Game {
	out := g
	if g.BattleResult != nil {
		res := *g.BattleResult
		res.TurnResults = append([]game.TurnResult(nil), g.BattleResult.TurnResults...)
		if g.BattleResult.Winner != nil {
			w := *g.BattleResult.Winner
			res.Winner = &w
		}
		out.BattleResult = &res
	}
	return out
}

func copyChallenge(c Challenge) Challenge {
	out := c
	if c.SessionID != nil {
		sid := *c.SessionID
		out.SessionID = &sid
	}
	return out
}

func (m *Memory) CreateGame(_ context.Context, g *Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.games[g.SessionID]; exists {
		return ErrAlreadyExists
	}
	m.games[g.SessionID] = copyGame(*g)
	return nil
}

func (m *Memory) GetGame(_ context.Context, sessionID uint32) (*Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	out := copyGame(g)
	return &out, nil
}

func (m *Memory) UpdateGame(_ context.Context, g *Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.games[g.SessionID]; !ok {
		return ErrNotFound
	}
	m.games[g.SessionID] = copyGame(*g)
	return nil
}

func (m *Memory) CreateChallenge(_ context.Context, c *Challenge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.challenges[c.ID]; exists {
		return ErrAlreadyExists
	}
	m.challenges[c.ID] = copyChallenge(*c)
	return nil
}

func (m *Memory) GetChallenge(_ context.Context, id string) (*Challenge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.challenges[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := copyChallenge(c)
	return &out, nil
}

func (m *Memory) UpdateChallenge(_ context.Context, c *Challenge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.challenges[c.ID]; !ok {
		return ErrNotFound
	}
	m.challenges[c.ID] = copyChallenge(*c)
	return nil
}

func (m *Memory) ListChallengesByPlayer(_ context.Context, player game.Address) ([]Challenge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []Challenge{}
	for _, c := range m.challenges {
		if c.Challenger == player || c.Challenged == player {
			out = append(out, copyChallenge(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) MarkChallengeCompleted(_ context.Context, sessionID uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, c := range m.challenges {
		if c.SessionID != nil && *c.SessionID == sessionID {
			c.IsCompleted = true
			m.challenges[id] = c
		}
	}
	return nil
}

func (m *Memory) SetUsername(_ context.Context, addr game.Address, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.usernames[addr] = name
	return nil
}

func (m *Memory) GetUsername(_ context.Context, addr game.Address) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	name, ok := m.usernames[addr]
	if !ok {
		return "", ErrNotFound
	}
	return name, nil
}

func (m *Memory) EnsureAccount(_ context.Context, addr game.Address, initial int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.balances[addr]; !ok {
		m.balances[addr] = initial
	}
	return nil
}

func (m *Memory) GetBalance(_ context.Context, addr game.Address) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	bal, ok := m.balances[addr]
	if !ok {
		return 0, ErrNotFound
	}
	return bal, nil
}

func (m *Memory) Credit(_ context.Context, addr game.Address, amount int64, entryType, refType, refID string) (int64, error) {
	if amount < 0 {
		return 0, ErrInsufficientFunds
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	bal := m.balances[addr] + amount
	m.balances[addr] = bal
	m.entries = append(m.entries, LedgerEntry{
		ID: NewID(), Address: addr, Type: entryType, Amount: amount,
		RefType: refType, RefID: refID, CreatedAt: time.Now().UTC(),
	})
	return bal, nil
}

func (m *Memory) Debit(_ context.Context, addr game.Address, amount int64, entryType, refType, refID string) (int64, error) {
	if amount < 0 {
		return 0, ErrInsufficientFunds
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	bal, ok := m.balances[addr]
	if !ok || bal < amount {
		return 0, ErrInsufficientFunds
	}
	bal -= amount
	m.balances[addr] = bal
	m.entries = append(m.entries, LedgerEntry{
		ID: NewID(), Address: addr, Type: entryType, Amount: -amount,
		RefType: refType, RefID: refID, CreatedAt: time.Now().UTC(),
	})
	return bal, nil
}

func (m *Memory) ListLedgerEntries(_ context.Context, addr string, limit, offset int) ([]LedgerEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	filtered := []LedgerEntry{}
	for _, e := range m.entries {
		if addr != "" && e.Address.String() != addr {
			continue
		}
		filtered = append(filtered, e)
	}
	// Newest first, matching the Postgres backend.
	sort.SliceStable(filtered, func(i, j int) bool { return filtered[i].CreatedAt.After(filtered[j].CreatedAt) })
	if offset >= len(filtered) {
		return []LedgerEntry{}, nil
	}
	filtered = filtered[offset:]
	if len(filtered) > limit {
		filtered = filtered[:limit]
	}
	return filtered, nil
}

func (m *Memory) Ping(context.Context) error { return nil }

func (m *Memory) Close() error { return nil }
