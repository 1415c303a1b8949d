package commit

import (
	"bytes"
	"context"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/frontend"

	"github.com/Clash-Of-Pirates/Clash-of-pirates/internal/proof"
)

// Verifier checks commit proofs against a fixed verifying key. It implements
// proof.Verifier for the game state machine.
type Verifier struct {
	vk groth16.VerifyingKey
}

// NewVerifier deserializes a persisted verifying key.
func NewVerifier(vkBytes []byte) (*Verifier, error) {
	if len(vkBytes) == 0 {
		return nil, fmt.Errorf("empty verifying key")
	}
	vk := groth16.NewVerifyingKey(ecc.BN254)
	if _, err := vk.ReadFrom(bytes.NewReader(vkBytes)); err != nil {
		return nil, fmt.Errorf("verifying key deserialization failed: %w", err)
	}
	return &Verifier{vk: vk}, nil
}

// NewEphemeralVerifier runs an in-process setup and verifies against the
// resulting key. Only proofs from the same process's Prove pass; meant for
// development and tests.
func NewEphemeralVerifier() (*Verifier, error) {
	keys, err := Setup()
	if err != nil {
		return nil, err
	}
	return &Verifier{vk: keys.VK}, nil
}

func (v *Verifier) Verify(_ context.Context, publicInputs, proofBytes []byte) (proof.Digest, error) {
	in, err := proof.ParseInputs(publicInputs)
	if err != nil {
		return proof.Digest{}, err
	}

	assignment := &Circuit{
		Player:  new(big.Int).SetBytes(publicInputs[:proof.FieldBytes]),
		Session: in.Session,
		C:       new(big.Int).SetBytes(in.Commitment[:]),
	}
	pubWitness, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return proof.Digest{}, proof.ErrInvalidPublicInputs
	}

	grothProof := groth16.NewProof(ecc.BN254)
	if _, err := grothProof.ReadFrom(bytes.NewReader(proofBytes)); err != nil {
		return proof.Digest{}, proof.ErrInvalidProof
	}

	if err := groth16.Verify(grothProof, v.vk, pubWitness); err != nil {
		return proof.Digest{}, proof.ErrProofVerificationFailed
	}
	return in.Commitment, nil
}
