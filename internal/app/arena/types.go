package arena

import (
	"time"

	"github.com/Clash-Of-Pirates/Clash-of-pirates/internal/game"
	"github.com/Clash-Of-Pirates/Clash-of-pirates/internal/proof"
)

// CommitmentView exposes a player's slot without leaking moves before the
// battle has resolved.
type CommitmentView struct {
	Committed   bool          `json:"committed"`
	ProofID     *proof.Digest `json:"proof_id,omitempty"`
	HasRevealed bool          `json:"has_revealed"`
}

type GameView struct {
	SessionID       uint32             `json:"session_id"`
	Player1         game.Address       `json:"player1"`
	Player2         game.Address       `json:"player2"`
	Player1Username string             `json:"player1_username,omitempty"`
	Player2Username string             `json:"player2_username,omitempty"`
	Player1Points   int64              `json:"player1_points"`
	Player2Points   int64              `json:"player2_points"`
	Player1Slot     CommitmentView     `json:"player1_commitment"`
	Player2Slot     CommitmentView     `json:"player2_commitment"`
	HasBattleResult bool               `json:"has_battle_result"`
	BattleResult    *game.BattleResult `json:"battle_result,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
}

// PlaybackTurn pairs each turn's chosen moves with the outcome so a client
// can replay the battle.
type PlaybackTurn struct {
	Turn        int             `json:"turn"`
	Player1Move game.Move       `json:"player1_move"`
	Player2Move game.Move       `json:"player2_move"`
	Result      game.TurnResult `json:"result"`
}

type Playback struct {
	SessionID       uint32         `json:"session_id"`
	Player1         game.Address   `json:"player1"`
	Player2         game.Address   `json:"player2"`
	Player1Username string         `json:"player1_username,omitempty"`
	Player2Username string         `json:"player2_username,omitempty"`
	Turns           []PlaybackTurn `json:"turns"`
	Winner          *game.Address  `json:"winner,omitempty"`
	IsDraw          bool           `json:"is_draw"`
}
