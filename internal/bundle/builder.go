// Package bundle assembles relay-ready transaction bundles with Merkle
// inclusion proofs.
package bundle

import (
	"fmt"
	"time"

	"dex-arb-watcher/internal/merkle"
)

// Bundle carries the signed transactions plus the commitments a relay or a
// later audit can check inclusion against. Proofs[i] belongs to Txs[i].
type Bundle struct {
	Txs        []string             `json:"txs"`
	MerkleRoot string               `json:"merkle_root"`
	Proofs     [][]merkle.ProofStep `json:"proofs"`
	HashAlgo   string               `json:"hash_algo"`
	CreatedAt  time.Time            `json:"created_at"`
	Relays     []string             `json:"relays,omitempty"`
}

// Builder builds bundles with a fixed hash algorithm and relay list.
type Builder struct {
	algo   string
	relays []string
}

// NewBuilder constructs a Builder. An empty algo means sha256; unknown
// algorithms are rejected up front so Build cannot fail on them later.
func NewBuilder(algo string, relays []string) (*Builder, error) {
	_, canonical, err := merkle.HashByName(algo)
	if err != nil {
		return nil, err
	}
	return &Builder{algo: canonical, relays: relays}, nil
}

// Build hashes every signed transaction into a Merkle tree, in the order
// given, and returns the bundle with one proof per transaction. The order of
// txs defines the tree, so callers must not reorder afterwards.
func (b *Builder) Build(txs []string) (*Bundle, error) {
	tree, err := merkle.New(b.algo)
	if err != nil {
		return nil, err
	}
	if err := tree.AddLeaves(txs, true); err != nil {
		return nil, err
	}
	if err := tree.Build(); err != nil {
		return nil, fmt.Errorf("build tree: %w", err)
	}

	root, err := tree.Root()
	if err != nil {
		return nil, err
	}

	proofs := make([][]merkle.ProofStep, len(txs))
	for i := range txs {
		proof, err := tree.Proof(i)
		if err != nil {
			return nil, fmt.Errorf("proof for tx %d: %w", i, err)
		}
		proofs[i] = proof
	}

	return &Bundle{
		Txs:        append([]string(nil), txs...),
		MerkleRoot: root,
		Proofs:     proofs,
		HashAlgo:   b.algo,
		CreatedAt:  time.Now().UTC(),
		Relays:     append([]string(nil), b.relays...),
	}, nil
}

// Verify re-validates the proof for one transaction against the bundle root.
func Verify(b *Bundle, index int) (bool, error) {
	if index < 0 || index >= len(b.Txs) {
		return false, fmt.Errorf("tx %d: %w", index, merkle.ErrIndexOutOfRange)
	}
	hash, _, err := merkle.HashByName(b.HashAlgo)
	if err != nil {
		return false, err
	}
	return merkle.ValidateProof(b.Proofs[index], hash([]byte(b.Txs[index])), b.MerkleRoot, b.HashAlgo)
}
