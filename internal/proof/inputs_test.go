package proof

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/Clash-Of-Pirates/Clash-of-pirates/internal/game"
)

func testAddress(b byte) game.Address {
	var a game.Address
	a[31] = b
	return a
}

func testDigest(b byte) Digest {
	var d Digest
	for i := range d {
		d[i] = b
	}
	return d
}

func TestExtractCommitment(t *testing.T) {
	digest := testDigest(0x5a)

	tests := []struct {
		name    string
		input   []byte
		wantErr bool
	}{
		{name: "exact 96", input: BuildInputs(testAddress(1), 7, digest)},
		{name: "longer multiple", input: append(make([]byte, 64), BuildInputs(testAddress(1), 7, digest)...)},
		{name: "empty", input: nil, wantErr: true},
		{name: "too short", input: make([]byte, 64), wantErr: true},
		{name: "not a multiple of 32", input: make([]byte, 100), wantErr: true},
		{name: "one byte short", input: make([]byte, 95), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractCommitment(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidPublicInputs) {
					t.Fatalf("err = %v, want ErrInvalidPublicInputs", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != digest {
				t.Fatalf("digest = %s, want %s", got.Hex(), digest.Hex())
			}
		})
	}
}

func TestParseInputsRoundTrip(t *testing.T) {
	player := testAddress(0xcc)
	digest := testDigest(0x11)
	buf := BuildInputs(player, 0xdeadbeef, digest)
	if len(buf) != InputsLen {
		t.Fatalf("len = %d, want %d", len(buf), InputsLen)
	}

	in, err := ParseInputs(buf)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if in.Player != player || in.Session != 0xdeadbeef || in.Commitment != digest {
		t.Fatalf("parsed %+v does not match built inputs", in)
	}
}

func TestParseInputsRejectsOversizedSession(t *testing.T) {
	buf := BuildInputs(testAddress(1), 1, testDigest(2))
	// Set a bit above the u32 range of the session chunk.
	buf[FieldBytes] = 0x01
	if _, err := ParseInputs(buf); !errors.Is(err, ErrInvalidPublicInputs) {
		t.Fatalf("err = %v, want ErrInvalidPublicInputs", err)
	}
}

func TestParseInputsRejectsWrongLength(t *testing.T) {
	if _, err := ParseInputs(make([]byte, 128)); !errors.Is(err, ErrInvalidPublicInputs) {
		t.Fatalf("128 bytes: err = %v", err)
	}
	if _, err := ParseInputs(make([]byte, 95)); !errors.Is(err, ErrInvalidPublicInputs) {
		t.Fatalf("95 bytes: err = %v", err)
	}
}

func TestSingleByteMutationChangesExtractedDigest(t *testing.T) {
	digest := testDigest(0x42)
	buf := BuildInputs(testAddress(9), 3, digest)
	for i := 2 * FieldBytes; i < InputsLen; i++ {
		mutated := bytes.Clone(buf)
		mutated[i] ^= 0xff
		got, err := ExtractCommitment(mutated)
		if err != nil {
			t.Fatalf("extract at %d: %v", i, err)
		}
		if got == digest {
			t.Fatalf("mutation at byte %d did not change digest", i)
		}
	}
}

func TestInsecureVerifier(t *testing.T) {
	digest := testDigest(0x77)
	buf := BuildInputs(testAddress(1), 5, digest)

	var v Insecure
	got, err := v.Verify(context.Background(), buf, []byte{0x01})
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if got != digest {
		t.Fatalf("digest = %s, want %s", got.Hex(), digest.Hex())
	}

	if _, err := v.Verify(context.Background(), buf, nil); !errors.Is(err, ErrInvalidProof) {
		t.Fatalf("empty proof: err = %v", err)
	}
	if _, err := v.Verify(context.Background(), buf[:64], []byte{0x01}); !errors.Is(err, ErrInvalidPublicInputs) {
		t.Fatalf("short inputs: err = %v", err)
	}
}
