package store

import (
	"time"

	"github.com/Clash-Of-Pirates/Clash-of-pirates/internal/game"
	"github.com/Clash-Of-Pirates/Clash-of-pirates/internal/proof"
)

// PlayerCommitment is one player's slot in a game. ProofID is written exactly
// once during commit; Moves and HasRevealed are written together during
// reveal and never mutated afterwards. Moves must not be read before
// HasRevealed is true.
type PlayerCommitment struct {
	ProofID     proof.Digest      `json:"proof_id"`
	HasRevealed bool              `json:"has_revealed"`
	Moves       game.MoveSequence `json:"moves"`
}

// Game is the per-session record. There is no explicit delete; records
// persist once created.
type Game struct {
	SessionID            uint32             `json:"session_id"`
	Player1              game.Address       `json:"player1"`
	Player2              game.Address       `json:"player2"`
	Player1Points        int64              `json:"player1_points"`
	Player2Points        int64              `json:"player2_points"`
	HasPlayer1Commitment bool               `json:"has_player1_commitment"`
	Player1Commitment    PlayerCommitment   `json:"player1_commitment"`
	HasPlayer2Commitment bool               `json:"has_player2_commitment"`
	Player2Commitment    PlayerCommitment   `json:"player2_commitment"`
	HasBattleResult      bool               `json:"has_battle_result"`
	BattleResult         *game.BattleResult `json:"battle_result,omitempty"`
	CreatedAt            time.Time          `json:"created_at"`
}

// CommitmentFor returns the commitment slot and written-flag for the given
// player, or ok=false if the address is not a participant.
func (g *Game) CommitmentFor(player game.Address) (slot *PlayerCommitment, committed *bool, ok bool) {
	switch player {
	case g.Player1:
		return &g.Player1Commitment, &g.HasPlayer1Commitment, true
	case g.Player2:
		return &g.Player2Commitment, &g.HasPlayer2Commitment, true
	}
	return nil, nil, false
}

// Challenge is an asynchronous game offer. Never deleted; expiry is judged
// lazily against ExpiresAt at read time.
type Challenge struct {
	ID            string       `json:"id"`
	Challenger    game.Address `json:"challenger"`
	Challenged    game.Address `json:"challenged"`
	PointsWagered int64        `json:"points_wagered"`
	CreatedAt     time.Time    `json:"created_at"`
	ExpiresAt     time.Time    `json:"expires_at"`
	IsAccepted    bool         `json:"is_accepted"`
	IsCompleted   bool         `json:"is_completed"`
	SessionID     *uint32      `json:"session_id,omitempty"`
}

type LedgerEntry struct {
	ID        string       `json:"id"`
	Address   game.Address `json:"address"`
	Type      string       `json:"type"`
	Amount    int64        `json:"amount"`
	RefType   string       `json:"ref_type"`
	RefID     string       `json:"ref_id"`
	CreatedAt time.Time    `json:"created_at"`
}
