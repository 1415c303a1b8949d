package commit

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"math/big"
	"sync"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"

	"github.com/Clash-Of-Pirates/Clash-of-pirates/internal/game"
	"github.com/Clash-Of-Pirates/Clash-of-pirates/internal/proof"
)

// Keys holds the compiled constraint system and the Groth16 key pair.
type Keys struct {
	PK  groth16.ProvingKey
	VK  groth16.VerifyingKey
	CCS constraint.ConstraintSystem
}

var (
	cachedKeys *Keys
	keysMu     sync.Mutex
)

// Setup compiles the circuit and runs the Groth16 setup. The result is cached
// for the process lifetime; production deployments load a persisted VK instead
// of re-running setup.
func Setup() (*Keys, error) {
	keysMu.Lock()
	defer keysMu.Unlock()

	if cachedKeys != nil {
		return cachedKeys, nil
	}

	var c Circuit
	ccs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, &c)
	if err != nil {
		return nil, fmt.Errorf("commit circuit compilation failed: %w", err)
	}
	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		return nil, fmt.Errorf("groth16 setup failed: %w", err)
	}

	cachedKeys = &Keys{PK: pk, VK: vk, CCS: ccs}
	return cachedKeys, nil
}

// VerifyingKeyBytes serializes the VK for deployment alongside the server.
func (k *Keys) VerifyingKeyBytes() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := k.VK.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// NewSalt draws a fresh 32-byte blinding salt.
func NewSalt() ([32]byte, error) {
	var salt [32]byte
	if _, err := rand.Read(salt[:]); err != nil {
		return [32]byte{}, err
	}
	return salt, nil
}

// ComputeCommitment is the native mirror of the in-circuit hash. The prover
// uses it to fill the public C input; it must stay in lockstep with
// Circuit.Define.
func ComputeCommitment(player game.Address, session uint32, movesRaw [game.MovesRawLen]byte, salt [32]byte) proof.Digest {
	var playerFe, sessionFe, movesFe, saltFe, dstFe fr.Element
	playerFe.SetBytes(player[:])
	sessionFe.SetUint64(uint64(session))
	movesFe.SetBytes(movesRaw[:])
	saltFe.SetBytes(salt[:])
	dstFe.SetBigInt(dst())

	h := mimc.NewMiMC()
	h.Write(dstFe.Marshal())
	h.Write(playerFe.Marshal())
	h.Write(sessionFe.Marshal())
	h.Write(movesFe.Marshal())
	h.Write(saltFe.Marshal())

	var d proof.Digest
	copy(d[:], h.Sum(nil))
	return d
}

// Prove generates a commit proof for the given plan and returns the 96-byte
// public-input buffer together with the serialized proof, ready for
// commit_moves.
func Prove(keys *Keys, player game.Address, session uint32, movesRaw [game.MovesRawLen]byte, salt [32]byte) (publicInputs, proofBytes []byte, err error) {
	if keys == nil {
		keys, err = Setup()
		if err != nil {
			return nil, nil, err
		}
	}

	digest := ComputeCommitment(player, session, movesRaw, salt)

	assignment := &Circuit{
		Player:  new(big.Int).SetBytes(player[:]),
		Session: session,
		C:       new(big.Int).SetBytes(digest[:]),
		Moves:   new(big.Int).SetBytes(movesRaw[:]),
		Salt:    new(big.Int).SetBytes(salt[:]),
	}
	witness, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField())
	if err != nil {
		return nil, nil, fmt.Errorf("witness creation failed: %w", err)
	}

	grothProof, err := groth16.Prove(keys.CCS, keys.PK, witness)
	if err != nil {
		return nil, nil, fmt.Errorf("proof generation failed: %w", err)
	}

	var buf bytes.Buffer
	if _, err := grothProof.WriteTo(&buf); err != nil {
		return nil, nil, fmt.Errorf("proof serialization failed: %w", err)
	}

	return proof.BuildInputs(player, session, digest), buf.Bytes(), nil
}
