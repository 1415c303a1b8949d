// Package challenge manages asynchronous game offers: one player wagers
// points against another, who may accept before the offer expires. Accepting
// starts the underlying game with the challenge's stored terms. Expiry is
// lazy; nothing sweeps old challenges.
package challenge

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Clash-Of-Pirates/Clash-of-pirates/internal/app/arena"
	"github.com/Clash-Of-Pirates/Clash-of-pirates/internal/game"
	"github.com/Clash-Of-Pirates/Clash-of-pirates/internal/store"
)

type Service struct {
	store store.Store
	arena *arena.Service
	ttl   time.Duration

	// Now is replaceable in tests to step past expiry.
	Now func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewService(st store.Store, ar *arena.Service, ttl time.Duration) *Service {
	return &Service{
		store: st,
		arena: ar,
		ttl:   ttl,
		Now:   func() time.Time { return time.Now().UTC() },
		locks: make(map[string]*sync.Mutex),
	}
}

// challengeLock serializes accepts of one challenge, so the open check acts
// as a compare-and-set against a concurrent duplicate accept. Locks are never
// freed; challenges are never deleted either.
func (s *Service) challengeLock(challengeID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[challengeID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[challengeID] = l
	}
	return l
}

func (s *Service) Send(ctx context.Context, challenger, challenged game.Address, points int64) (*store.Challenge, error) {
	if challenger == challenged {
		return nil, ErrCannotChallengeSelf
	}
	if points < 0 {
		return nil, ErrInvalidWager
	}
	now := s.Now()
	c := &store.Challenge{
		ID:            store.NewID(),
		Challenger:    challenger,
		Challenged:    challenged,
		PointsWagered: points,
		CreatedAt:     now,
		ExpiresAt:     now.Add(s.ttl),
	}
	if err := s.store.CreateChallenge(ctx, c); err != nil {
		return nil, err
	}
	log.Info().Str("challenge_id", c.ID).Str("challenger", challenger.String()).
		Str("challenged", challenged.String()).Int64("points", points).Msg("challenge sent")
	return c, nil
}

// Accept starts the game for an open challenge. Only the challenged player
// may accept, and only before expiry. Both players stake the wagered amount.
func (s *Service) Accept(ctx context.Context, challengeID string, acceptor game.Address, sessionID uint32) (*store.Challenge, error) {
	l := s.challengeLock(challengeID)
	l.Lock()
	defer l.Unlock()

	c, err := s.store.GetChallenge(ctx, challengeID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrChallengeNotFound
		}
		return nil, err
	}
	if c.Challenged != acceptor {
		return nil, ErrNotChallenged
	}
	if c.IsAccepted {
		return nil, ErrAlreadyAccepted
	}
	if s.Now().After(c.ExpiresAt) {
		return nil, ErrChallengeExpired
	}

	if _, err := s.arena.StartGame(ctx, sessionID, c.Challenger, c.Challenged, c.PointsWagered, c.PointsWagered); err != nil {
		return nil, err
	}

	c.IsAccepted = true
	c.SessionID = &sessionID
	if err := s.store.UpdateChallenge(ctx, c); err != nil {
		return nil, err
	}
	log.Info().Str("challenge_id", c.ID).Uint32("session_id", sessionID).Msg("challenge accepted")
	return c, nil
}

// ChallengeLists partitions every challenge involving a player.
type ChallengeLists struct {
	Active    []store.Challenge `json:"active"`
	Completed []store.Challenge `json:"completed"`
	Expired   []store.Challenge `json:"expired"`
}

// PlayerChallenges scans all of a player's challenges and buckets them:
// open and unexpired, accepted (game started or finished), and offers that
// lapsed unaccepted.
func (s *Service) PlayerChallenges(ctx context.Context, player game.Address) (*ChallengeLists, error) {
	all, err := s.store.ListChallengesByPlayer(ctx, player)
	if err != nil {
		return nil, err
	}
	now := s.Now()
	lists := &ChallengeLists{
		Active:    []store.Challenge{},
		Completed: []store.Challenge{},
		Expired:   []store.Challenge{},
	}
	for _, c := range all {
		switch {
		case c.IsAccepted:
			lists.Completed = append(lists.Completed, c)
		case now.After(c.ExpiresAt):
			lists.Expired = append(lists.Expired, c)
		default:
			lists.Active = append(lists.Active, c)
		}
	}
	return lists, nil
}

// CompleteForSession marks the challenge that spawned a session as completed.
// Hooked to arena.OnResolved.
func (s *Service) CompleteForSession(ctx context.Context, sessionID uint32) {
	if err := s.store.MarkChallengeCompleted(ctx, sessionID); err != nil {
		log.Error().Err(err).Uint32("session_id", sessionID).Msg("marking challenge completed failed")
	}
}
