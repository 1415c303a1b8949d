package challenge

import "errors"

var (
	ErrChallengeNotFound   = errors.New("challenge_not_found")
	ErrChallengeExpired    = errors.New("challenge_expired")
	ErrCannotChallengeSelf = errors.New("cannot_challenge_self")
	ErrNotChallenged       = errors.New("not_challenged")
	ErrAlreadyAccepted     = errors.New("already_accepted")
	ErrInvalidWager        = errors.New("invalid_wager")
)
