package proof

import (
	"encoding/binary"

	"github.com/Clash-Of-Pirates/Clash-of-pirates/internal/game"
)

const (
	// FieldBytes is the serialized width of one circuit field element.
	FieldBytes = 32
	// InputsLen is the exact size of the commit circuit's public inputs:
	// player address, session id, and commitment digest, 32 bytes each.
	InputsLen = 3 * FieldBytes
)

// Inputs is the decoded 96-byte public-input buffer.
type Inputs struct {
	Player     game.Address
	Session    uint32
	Commitment Digest
}

// ExtractCommitment pulls the declared commitment out of a public-input
// buffer: the last 32-byte chunk, the circuit's public return value. The
// buffer must be a positive multiple of 32 bytes and at least 96 bytes long.
func ExtractCommitment(publicInputs []byte) (Digest, error) {
	n := len(publicInputs)
	if n < InputsLen || n%FieldBytes != 0 {
		return Digest{}, ErrInvalidPublicInputs
	}
	var d Digest
	copy(d[:], publicInputs[n-FieldBytes:])
	return d, nil
}

// ParseInputs decodes the exact commit layout. The session field is a
// big-endian u32 in the low 4 bytes of its chunk; any higher bit set is a
// layout violation.
func ParseInputs(publicInputs []byte) (Inputs, error) {
	if len(publicInputs) != InputsLen {
		return Inputs{}, ErrInvalidPublicInputs
	}
	var in Inputs
	copy(in.Player[:], publicInputs[:FieldBytes])

	sessionChunk := publicInputs[FieldBytes : 2*FieldBytes]
	for _, b := range sessionChunk[:FieldBytes-4] {
		if b != 0 {
			return Inputs{}, ErrInvalidPublicInputs
		}
	}
	in.Session = binary.BigEndian.Uint32(sessionChunk[FieldBytes-4:])

	copy(in.Commitment[:], publicInputs[2*FieldBytes:])
	return in, nil
}

// BuildInputs assembles the 96-byte public-input buffer. Inverse of
// ParseInputs; used by the prover and by tests.
func BuildInputs(player game.Address, session uint32, commitment Digest) []byte {
	buf := make([]byte, InputsLen)
	copy(buf[:FieldBytes], player[:])
	binary.BigEndian.PutUint32(buf[2*FieldBytes-4:2*FieldBytes], session)
	copy(buf[2*FieldBytes:], commitment[:])
	return buf
}
