package merkle

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyTree indicates Build was called with no leaves.
	ErrEmptyTree = errors.New("merkle: no leaves to build")
	// ErrTreeNotBuilt indicates the root or a proof was requested before Build.
	ErrTreeNotBuilt = errors.New("merkle: tree not built")
	// ErrTreeBuilt indicates a leaf was added after Build; a fresh leaf set
	// requires a fresh tree.
	ErrTreeBuilt = errors.New("merkle: tree already built")
	// ErrIndexOutOfRange indicates a proof was requested for a leaf index the
	// tree does not hold.
	ErrIndexOutOfRange = errors.New("merkle: leaf index out of range")
	// ErrMalformedProof indicates a proof step carries an unknown position
	// marker or an empty hash.
	ErrMalformedProof = errors.New("merkle: malformed proof step")
)

// Position tells a verifier which side a sibling hash joins from.
type Position string

const (
	// Left means the sibling hash is prepended: parent = H(sibling + current).
	Left Position = "left"
	// Right means the sibling hash is appended: parent = H(current + sibling).
	Right Position = "right"
)

// ProofStep is one sibling on the walk from a leaf to the root.
type ProofStep struct {
	Position Position `json:"position"`
	Hash     string   `json:"hash"`
}

// Tree is an ordered-leaf Merkle tree over lowercase hex digests. Leaf order
// defines the tree. Parent nodes hash the byte concatenation of the two child
// hex strings; an odd level duplicates its last node before pairing. Once
// built the leaf set is frozen.
type Tree struct {
	hash   HashFunc
	algo   string
	leaves []string
	levels [][]string
	built  bool
}

// New constructs an empty tree using the named hash algorithm.
func New(algo string) (*Tree, error) {
	h, name, err := HashByName(algo)
	if err != nil {
		return nil, err
	}
	return &Tree{hash: h, algo: name}, nil
}

// Algo reports the tree's hash algorithm name.
func (t *Tree) Algo() string {
	return t.algo
}

// AddLeaf appends one leaf. With hashIt the raw value is digested first;
// otherwise the value must already be a hex digest and is normalised to
// lower case.
func (t *Tree) AddLeaf(value string, hashIt bool) error {
	if t.built {
		return ErrTreeBuilt
	}
	if hashIt {
		t.leaves = append(t.leaves, t.hash([]byte(value)))
		return nil
	}
	t.leaves = append(t.leaves, strings.ToLower(value))
	return nil
}

// AddLeaves appends leaves in order.
func (t *Tree) AddLeaves(values []string, hashIt bool) error {
	for _, v := range values {
		if err := t.AddLeaf(v, hashIt); err != nil {
			return err
		}
	}
	return nil
}

// LeafCount reports the number of leaves added so far.
func (t *Tree) LeafCount() int {
	return len(t.leaves)
}

// Leaf returns the stored hash of the leaf at index.
func (t *Tree) Leaf(index int) (string, error) {
	if index < 0 || index >= len(t.leaves) {
		return "", fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	return t.leaves[index], nil
}

// Build computes all levels up to the root. Building an already built tree is
// a no-op. A single leaf builds a tree whose root is that leaf's hash.
func (t *Tree) Build() error {
	if t.built {
		return nil
	}
	if len(t.leaves) == 0 {
		return ErrEmptyTree
	}

	levels := [][]string{append([]string(nil), t.leaves...)}
	current := levels[0]
	for len(current) > 1 {
		working := current
		if len(working)%2 == 1 {
			working = append(append([]string(nil), working...), working[len(working)-1])
		}
		next := make([]string, 0, len(working)/2)
		for i := 0; i < len(working); i += 2 {
			next = append(next, t.hash([]byte(working[i]+working[i+1])))
		}
		levels = append(levels, next)
		current = next
	}

	t.levels = levels
	t.built = true
	return nil
}

// Root returns the root hash of a built tree.
func (t *Tree) Root() (string, error) {
	if !t.built {
		return "", ErrTreeNotBuilt
	}
	top := t.levels[len(t.levels)-1]
	return top[0], nil
}

// Proof returns the inclusion proof for the leaf at index. A single-leaf tree
// yields an empty proof, which validates. When a node is the duplicated last
// element of an odd level its own hash serves as the sibling.
func (t *Tree) Proof(index int) ([]ProofStep, error) {
	if !t.built {
		return nil, ErrTreeNotBuilt
	}
	if index < 0 || index >= len(t.leaves) {
		return nil, fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}

	proof := make([]ProofStep, 0, len(t.levels)-1)
	idx := index
	for _, level := range t.levels[:len(t.levels)-1] {
		if idx%2 == 0 {
			sibling := idx + 1
			if sibling >= len(level) {
				sibling = idx
			}
			proof = append(proof, ProofStep{Position: Right, Hash: level[sibling]})
		} else {
			proof = append(proof, ProofStep{Position: Left, Hash: level[idx-1]})
		}
		idx /= 2
	}
	return proof, nil
}

// Validate checks a proof against this tree's hash algorithm. A mismatched
// root is a false result, not an error.
func (t *Tree) Validate(proof []ProofStep, leafHash, root string) (bool, error) {
	return fold(t.hash, proof, leafHash, root)
}

// ValidateProof checks a proof using the named hash algorithm. It needs no
// tree: a leaf hash, the proof steps, and the expected root fully determine
// the outcome.
func ValidateProof(proof []ProofStep, leafHash, root, algo string) (bool, error) {
	h, _, err := HashByName(algo)
	if err != nil {
		return false, err
	}
	return fold(h, proof, leafHash, root)
}

func fold(h HashFunc, proof []ProofStep, leafHash, root string) (bool, error) {
	current := strings.ToLower(leafHash)
	for i, step := range proof {
		if step.Hash == "" {
			return false, fmt.Errorf("%w: empty hash at step %d", ErrMalformedProof, i)
		}
		switch step.Position {
		case Left:
			current = h([]byte(step.Hash + current))
		case Right:
			current = h([]byte(current + step.Hash))
		default:
			return false, fmt.Errorf("%w: position %q at step %d", ErrMalformedProof, step.Position, i)
		}
	}
	return current == strings.ToLower(root), nil
}
