package arena

import "errors"

var (
	ErrGameNotFound            = errors.New("game_not_found")
	ErrSessionInUse            = errors.New("session_in_use")
	ErrSamePlayer              = errors.New("same_player")
	ErrInvalidStake            = errors.New("invalid_stake")
	ErrNotPlayer               = errors.New("not_player")
	ErrAlreadyCommitted        = errors.New("already_committed")
	ErrAlreadyRevealed         = errors.New("already_revealed")
	ErrBothPlayersNotCommitted = errors.New("both_players_not_committed")
	ErrCommitmentMismatch      = errors.New("commitment_mismatch")
	ErrGameAlreadyEnded        = errors.New("game_already_ended")
	ErrGameNotResolved         = errors.New("game_not_resolved")
)
