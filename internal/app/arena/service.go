// Package arena is the commit-reveal state machine: games start with locked
// stakes, each player commits a proof digest, reveals their moves, and the
// battle resolves exactly once. Every transition re-checks its preconditions
// under a per-session lock so concurrent duplicate calls lose cleanly.
package arena

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Clash-Of-Pirates/Clash-of-pirates/internal/game"
	"github.com/Clash-Of-Pirates/Clash-of-pirates/internal/ledger"
	"github.com/Clash-Of-Pirates/Clash-of-pirates/internal/proof"
	"github.com/Clash-Of-Pirates/Clash-of-pirates/internal/store"
)

type Service struct {
	store    store.Store
	ledger   *ledger.Ledger
	verifier proof.Verifier

	// InitialBalance seeds an account the first time an address plays.
	InitialBalance int64

	// OnResolved, if set, runs after a battle resolves and rewards are paid.
	// Wired in main to mark the originating challenge completed.
	OnResolved func(ctx context.Context, sessionID uint32)

	mu    sync.Mutex
	locks map[uint32]*sync.Mutex
}

func NewService(st store.Store, led *ledger.Ledger, v proof.Verifier, initialBalance int64) *Service {
	return &Service{
		store:          st,
		ledger:         led,
		verifier:       v,
		InitialBalance: initialBalance,
		locks:          make(map[uint32]*sync.Mutex),
	}
}

// sessionLock serializes transitions on one session. Locks are never freed;
// sessions are never deleted either.
func (s *Service) sessionLock(sessionID uint32) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[sessionID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[sessionID] = l
	}
	return l
}

func (s *Service) StartGame(ctx context.Context, sessionID uint32, player1, player2 game.Address, p1Stake, p2Stake int64) (*GameView, error) {
	if player1 == player2 {
		return nil, ErrSamePlayer
	}
	if p1Stake < 0 || p2Stake < 0 {
		return nil, ErrInvalidStake
	}
	l := s.sessionLock(sessionID)
	l.Lock()
	defer l.Unlock()

	if _, err := s.store.GetGame(ctx, sessionID); err == nil {
		return nil, ErrSessionInUse
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	if err := s.store.EnsureAccount(ctx, player1, s.InitialBalance); err != nil {
		return nil, err
	}
	if err := s.store.EnsureAccount(ctx, player2, s.InitialBalance); err != nil {
		return nil, err
	}
	if err := s.ledger.LockStakes(ctx, sessionID, player1, player2, p1Stake, p2Stake); err != nil {
		return nil, err
	}

	g := &store.Game{
		SessionID:     sessionID,
		Player1:       player1,
		Player2:       player2,
		Player1Points: p1Stake,
		Player2Points: p2Stake,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.store.CreateGame(ctx, g); err != nil {
		// Stakes are already locked; hand them back before failing.
		if rerr := s.refundStakes(ctx, sessionID, g); rerr != nil {
			log.Error().Err(rerr).Uint32("session_id", sessionID).Msg("stake refund failed after create conflict")
		}
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, ErrSessionInUse
		}
		return nil, err
	}

	log.Info().Uint32("session_id", sessionID).
		Str("player1", player1.String()).Str("player2", player2.String()).
		Int64("p1_stake", p1Stake).Int64("p2_stake", p2Stake).Msg("game started")
	return s.view(ctx, g), nil
}

func (s *Service) refundStakes(ctx context.Context, sessionID uint32, g *store.Game) error {
	draw := &game.BattleResult{IsDraw: true}
	return s.ledger.DistributeRewards(ctx, sessionID, g, draw)
}

// CommitMoves verifies the proof, checks the embedded player and session
// fields against the caller, and records the commitment digest. Each player
// commits at most once.
func (s *Service) CommitMoves(ctx context.Context, sessionID uint32, player game.Address, publicInputs, proofBytes []byte) (proof.Digest, error) {
	l := s.sessionLock(sessionID)
	l.Lock()
	defer l.Unlock()

	g, err := s.store.GetGame(ctx, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return proof.Digest{}, ErrGameNotFound
		}
		return proof.Digest{}, err
	}
	if g.HasBattleResult {
		return proof.Digest{}, ErrGameAlreadyEnded
	}
	slot, committed, ok := g.CommitmentFor(player)
	if !ok {
		return proof.Digest{}, ErrNotPlayer
	}
	if *committed {
		return proof.Digest{}, ErrAlreadyCommitted
	}

	digest, err := s.verifier.Verify(ctx, publicInputs, proofBytes)
	if err != nil {
		return proof.Digest{}, err
	}
	in, err := proof.ParseInputs(publicInputs)
	if err != nil {
		return proof.Digest{}, err
	}
	if in.Player != player || in.Session != sessionID {
		return proof.Digest{}, ErrCommitmentMismatch
	}

	slot.ProofID = digest
	*committed = true
	if err := s.store.UpdateGame(ctx, g); err != nil {
		return proof.Digest{}, err
	}
	log.Info().Uint32("session_id", sessionID).Str("player", player.String()).
		Str("proof_id", digest.Hex()).Msg("moves committed")
	return digest, nil
}

// RevealMoves opens a commitment: the fresh public inputs must carry the same
// digest that was stored at commit time, and the plaintext moves must be a
// valid sequence. Reveals are gated on both players having committed.
func (s *Service) RevealMoves(ctx context.Context, sessionID uint32, player game.Address, publicInputs []byte, moves []game.Move) error {
	l := s.sessionLock(sessionID)
	l.Lock()
	defer l.Unlock()

	g, err := s.store.GetGame(ctx, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrGameNotFound
		}
		return err
	}
	if g.HasBattleResult {
		return ErrGameAlreadyEnded
	}
	slot, _, ok := g.CommitmentFor(player)
	if !ok {
		return ErrNotPlayer
	}
	if !g.HasPlayer1Commitment || !g.HasPlayer2Commitment {
		return ErrBothPlayersNotCommitted
	}
	if slot.HasRevealed {
		return ErrAlreadyRevealed
	}

	digest, err := proof.ExtractCommitment(publicInputs)
	if err != nil {
		return err
	}
	if digest != slot.ProofID {
		return ErrCommitmentMismatch
	}
	seq, err := game.NewMoveSequence(moves)
	if err != nil {
		return err
	}

	slot.Moves = seq
	slot.HasRevealed = true
	if err := s.store.UpdateGame(ctx, g); err != nil {
		return err
	}
	log.Info().Uint32("session_id", sessionID).Str("player", player.String()).Msg("moves revealed")
	return nil
}

// ResolveBattle runs the battle once both players have revealed. Callable by
// anyone; resolving an already-ended game fails and never pays out twice.
func (s *Service) ResolveBattle(ctx context.Context, sessionID uint32) (*game.BattleResult, error) {
	l := s.sessionLock(sessionID)
	l.Lock()
	defer l.Unlock()

	g, err := s.store.GetGame(ctx, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}
	if g.HasBattleResult {
		return nil, ErrGameAlreadyEnded
	}
	if !g.Player1Commitment.HasRevealed || !g.Player2Commitment.HasRevealed {
		return nil, ErrBothPlayersNotCommitted
	}

	res := game.Resolve(g.Player1, g.Player2, g.Player1Commitment.Moves, g.Player2Commitment.Moves)
	g.BattleResult = &res
	g.HasBattleResult = true
	// Persist the result before paying out so a payout failure cannot
	// leave the game replayable.
	if err := s.store.UpdateGame(ctx, g); err != nil {
		return nil, err
	}
	if err := s.ledger.DistributeRewards(ctx, sessionID, g, &res); err != nil {
		log.Error().Err(err).Uint32("session_id", sessionID).Msg("reward distribution failed")
		return nil, err
	}
	if s.OnResolved != nil {
		s.OnResolved(ctx, sessionID)
	}

	ev := log.Info().Uint32("session_id", sessionID).Bool("is_draw", res.IsDraw)
	if res.Winner != nil {
		ev = ev.Str("winner", res.Winner.String())
	}
	ev.Msg("battle resolved")
	return &res, nil
}

func (s *Service) GetGame(ctx context.Context, sessionID uint32) (*GameView, error) {
	g, err := s.store.GetGame(ctx, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}
	return s.view(ctx, g), nil
}

func (s *Service) GetPlayback(ctx context.Context, sessionID uint32) (*Playback, error) {
	g, err := s.store.GetGame(ctx, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}
	if !g.HasBattleResult {
		return nil, ErrGameNotResolved
	}

	pb := &Playback{
		SessionID:       g.SessionID,
		Player1:         g.Player1,
		Player2:         g.Player2,
		Player1Username: s.username(ctx, g.Player1),
		Player2Username: s.username(ctx, g.Player2),
		Winner:          g.BattleResult.Winner,
		IsDraw:          g.BattleResult.IsDraw,
	}
	for i, tr := range g.BattleResult.TurnResults {
		pb.Turns = append(pb.Turns, PlaybackTurn{
			Turn:        tr.Turn,
			Player1Move: g.Player1Commitment.Moves[i],
			Player2Move: g.Player2Commitment.Moves[i],
			Result:      tr,
		})
	}
	return pb, nil
}

func (s *Service) username(ctx context.Context, addr game.Address) string {
	name, err := s.store.GetUsername(ctx, addr)
	if err != nil {
		return ""
	}
	return name
}

func (s *Service) view(ctx context.Context, g *store.Game) *GameView {
	v := &GameView{
		SessionID:       g.SessionID,
		Player1:         g.Player1,
		Player2:         g.Player2,
		Player1Username: s.username(ctx, g.Player1),
		Player2Username: s.username(ctx, g.Player2),
		Player1Points:   g.Player1Points,
		Player2Points:   g.Player2Points,
		HasBattleResult: g.HasBattleResult,
		BattleResult:    g.BattleResult,
		CreatedAt:       g.CreatedAt,
	}
	v.Player1Slot = slotView(g.HasPlayer1Commitment, g.Player1Commitment)
	v.Player2Slot = slotView(g.HasPlayer2Commitment, g.Player2Commitment)
	return v
}

func slotView(committed bool, c store.PlayerCommitment) CommitmentView {
	v := CommitmentView{Committed: committed, HasRevealed: c.HasRevealed}
	if committed {
		d := c.ProofID
		v.ProofID = &d
	}
	return v
}
