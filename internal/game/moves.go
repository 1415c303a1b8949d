package game

import "errors"

var ErrInvalidMoveSequence = errors.New("invalid_move_sequence")

// TurnsPerBattle is the fixed number of combat turns per game.
const TurnsPerBattle = 3

type Attack uint8

const (
	AttackSlash     Attack = 0
	AttackFireball  Attack = 1
	AttackLightning Attack = 2
)

type Defense uint8

const (
	DefenseBlock   Defense = 0
	DefenseDodge   Defense = 1
	DefenseCounter Defense = 2
)

func (a Attack) Valid() bool {
	return a <= AttackLightning
}

func (a Attack) String() string {
	switch a {
	case AttackSlash:
		return "slash"
	case AttackFireball:
		return "fireball"
	case AttackLightning:
		return "lightning"
	}
	return "unknown"
}

func (d Defense) Valid() bool {
	return d <= DefenseCounter
}

func (d Defense) String() string {
	switch d {
	case DefenseBlock:
		return "block"
	case DefenseDodge:
		return "dodge"
	case DefenseCounter:
		return "counter"
	}
	return "unknown"
}

// Move is one turn's plan: what to swing and how to guard.
type Move struct {
	Attack  Attack  `json:"attack"`
	Defense Defense `json:"defense"`
}

// MoveSequence is a full battle plan, one move per turn, order significant.
type MoveSequence [TurnsPerBattle]Move

// NewMoveSequence validates a revealed move list: exactly three moves, every
// discriminant in range. The commit proof already constrained this, but the
// reveal path re-checks so a tampered plaintext cannot slip past a digest match.
func NewMoveSequence(moves []Move) (MoveSequence, error) {
	if len(moves) != TurnsPerBattle {
		return MoveSequence{}, ErrInvalidMoveSequence
	}
	var seq MoveSequence
	for i, m := range moves {
		if !m.Attack.Valid() || !m.Defense.Valid() {
			return MoveSequence{}, ErrInvalidMoveSequence
		}
		seq[i] = m
	}
	return seq, nil
}

// MovesRawLen is the size of the packed wire form consumed by the prover:
// [attack0, attack1, attack2, defense0, defense1, defense2].
const MovesRawLen = 2 * TurnsPerBattle

// EncodeMovesRaw packs a sequence into its 6-byte wire form.
func EncodeMovesRaw(seq MoveSequence) [MovesRawLen]byte {
	var raw [MovesRawLen]byte
	for i := 0; i < TurnsPerBattle; i++ {
		raw[i] = byte(seq[i].Attack)
		raw[TurnsPerBattle+i] = byte(seq[i].Defense)
	}
	return raw
}

// DecodeMovesRaw is the inverse of EncodeMovesRaw, validating length and ranges.
func DecodeMovesRaw(raw []byte) (MoveSequence, error) {
	if len(raw) != MovesRawLen {
		return MoveSequence{}, ErrInvalidMoveSequence
	}
	var seq MoveSequence
	for i := 0; i < TurnsPerBattle; i++ {
		seq[i] = Move{Attack: Attack(raw[i]), Defense: Defense(raw[TurnsPerBattle+i])}
		if !seq[i].Attack.Valid() || !seq[i].Defense.Valid() {
			return MoveSequence{}, ErrInvalidMoveSequence
		}
	}
	return seq, nil
}
