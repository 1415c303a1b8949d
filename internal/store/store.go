// Package store is the persistence boundary: one Store interface over games,
// challenges, usernames and point accounts, with an in-memory backend for
// tests and a Postgres backend for production. The state machine only ever
// talks to the interface.
package store

import (
	"context"
	"errors"

	"github.com/Clash-Of-Pirates/Clash-of-pirates/internal/game"
)

var (
	ErrNotFound          = errors.New("not_found")
	ErrAlreadyExists     = errors.New("already_exists")
	ErrInsufficientFunds = errors.New("insufficient_funds")
)

type Store interface {
	// Games. CreateGame fails with ErrAlreadyExists if the session id is
	// taken; the check and the insert are atomic.
	CreateGame(ctx context.Context, g *Game) error
	GetGame(ctx context.Context, sessionID uint32) (*Game, error)
	UpdateGame(ctx context.Context, g *Game) error

	// Challenges.
	CreateChallenge(ctx context.Context, c *Challenge) error
	GetChallenge(ctx context.Context, id string) (*Challenge, error)
	UpdateChallenge(ctx context.Context, c *Challenge) error
	ListChallengesByPlayer(ctx context.Context, player game.Address) ([]Challenge, error)
	MarkChallengeCompleted(ctx context.Context, sessionID uint32) error

	// Username registry.
	SetUsername(ctx context.Context, addr game.Address, name string) error
	GetUsername(ctx context.Context, addr game.Address) (string, error)

	// Point accounts. Debit fails with ErrInsufficientFunds without writing;
	// both Debit and Credit append a ledger entry in the same transaction and
	// return the new balance.
	EnsureAccount(ctx context.Context, addr game.Address, initial int64) error
	GetBalance(ctx context.Context, addr game.Address) (int64, error)
	Credit(ctx context.Context, addr game.Address, amount int64, entryType, refType, refID string) (int64, error)
	Debit(ctx context.Context, addr game.Address, amount int64, entryType, refType, refID string) (int64, error)
	ListLedgerEntries(ctx context.Context, addr string, limit, offset int) ([]LedgerEntry, error)

	Ping(ctx context.Context) error
	Close() error
}
