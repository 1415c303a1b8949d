// Package ledger moves wagered points between accounts around a battle:
// stakes are locked when the game starts and paid out when it resolves.
// Every movement leaves a ledger entry referencing the game session.
package ledger

import (
	"context"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/Clash-Of-Pirates/Clash-of-pirates/internal/game"
	"github.com/Clash-Of-Pirates/Clash-of-pirates/internal/store"
)

type Ledger struct {
	Store store.Store
}

func New(s store.Store) *Ledger {
	return &Ledger{Store: s}
}

func gameRef(sessionID uint32) string {
	return strconv.FormatUint(uint64(sessionID), 10)
}

// LockStakes debits both players' wagers for a new game. If the second debit
// fails the first is refunded so the game never starts half funded.
func (l *Ledger) LockStakes(ctx context.Context, sessionID uint32, player1, player2 game.Address, p1Stake, p2Stake int64) error {
	ref := gameRef(sessionID)
	if _, err := l.Store.Debit(ctx, player1, p1Stake, "stake_lock", "game", ref); err != nil {
		return err
	}
	if _, err := l.Store.Debit(ctx, player2, p2Stake, "stake_lock", "game", ref); err != nil {
		if _, rerr := l.Store.Credit(ctx, player1, p1Stake, "stake_refund", "game", ref); rerr != nil {
			log.Error().Err(rerr).Uint32("session_id", sessionID).
				Str("player", player1.String()).Msg("stake refund failed after partial lock")
		}
		return err
	}
	return nil
}

// DistributeRewards pays out a resolved battle: the winner takes the whole
// pot, a draw refunds each player their own stake.
func (l *Ledger) DistributeRewards(ctx context.Context, sessionID uint32, g *store.Game, res *game.BattleResult) error {
	ref := gameRef(sessionID)
	if res.Winner != nil {
		pot := g.Player1Points + g.Player2Points
		_, err := l.Store.Credit(ctx, *res.Winner, pot, "reward_credit", "game", ref)
		return err
	}
	if _, err := l.Store.Credit(ctx, g.Player1, g.Player1Points, "stake_refund", "game", ref); err != nil {
		return err
	}
	_, err := l.Store.Credit(ctx, g.Player2, g.Player2Points, "stake_refund", "game", ref)
	return err
}
