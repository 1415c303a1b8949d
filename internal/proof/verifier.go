// Package proof defines the boundary between the game state machine and the
// zero-knowledge proof system: the public-input byte layout, the commitment
// extractor, and the verifier capability the state machine is given. The
// actual cryptography lives behind the Verifier interface.
package proof

import (
	"context"
	"encoding/hex"
	"errors"
)

var (
	// ErrInvalidProof means the proof bytes are malformed or undecodable.
	ErrInvalidProof = errors.New("invalid_proof")
	// ErrProofVerificationFailed means a well-formed proof failed the
	// cryptographic check.
	ErrProofVerificationFailed = errors.New("proof_verification_failed")
	// ErrInvalidPublicInputs means the public-input buffer violates the wire
	// layout.
	ErrInvalidPublicInputs = errors.New("invalid_public_inputs")
)

// Digest is a 32-byte commitment to a player's secret battle plan plus
// binding context.
type Digest [32]byte

func (d Digest) Hex() string {
	return hex.EncodeToString(d[:])
}

func (d Digest) IsZero() bool {
	return d == Digest{}
}

func (d Digest) MarshalText() ([]byte, error) {
	return []byte(d.Hex()), nil
}

func (d *Digest) UnmarshalText(text []byte) error {
	b, err := hex.DecodeString(string(text))
	if err != nil || len(b) != len(d) {
		return ErrInvalidPublicInputs
	}
	copy(d[:], b)
	return nil
}

// Verifier checks that proofBytes attests to publicInputs and returns the
// commitment digest declared by the circuit. It performs no business-logic
// validation; matching the embedded player and session against the caller is
// the state machine's job.
type Verifier interface {
	Verify(ctx context.Context, publicInputs, proofBytes []byte) (Digest, error)
}

// Insecure is a Verifier that skips cryptography entirely and only enforces
// the wire layout. For local development and state-machine tests.
type Insecure struct{}

func (Insecure) Verify(_ context.Context, publicInputs, proofBytes []byte) (Digest, error) {
	if len(proofBytes) == 0 {
		return Digest{}, ErrInvalidProof
	}
	return ExtractCommitment(publicInputs)
}
