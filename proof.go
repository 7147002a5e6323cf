package grug

import (
	"crypto/sha256"
	"encoding/json"

	"github.com/left-curve/grug-go/errors"
)

// DefaultProofType is the type of the proof op attached to a proven store
// query.
const DefaultProofType = "grug_jmt::Proof"

var (
	internalNodePrefix = []byte{0}
	leafNodePrefix     = []byte{1}
	zeroHash           = make(Hash, HashLength)
)

// Proof is a jellyfish merkle tree proof that a key is (membership) or is
// not (non membership) part of the tree under a given root hash.
//
// Sibling hashes are ordered bottom up: the first element is the sibling of
// the deepest node on the path, the last one is the sibling of a root child.
// A nil sibling stands for an empty subtree.
type Proof struct {
	Membership    *MembershipProof
	NonMembership *NonMembershipProof
}

type MembershipProof struct {
	SiblingHashes []*Hash `json:"sibling_hashes"`
}

// NonMembershipProof carries the node where the search path for a key ends.
// That is either an internal node without child in the direction of the
// key, or a leaf of another key sharing the path prefix.
type NonMembershipProof struct {
	Node          ProofNode `json:"node"`
	SiblingHashes []*Hash   `json:"sibling_hashes"`
}

// ProofNode is either an internal node or a leaf. Exactly one field is
// set.
type ProofNode struct {
	Internal *InternalNode
	Leaf     *LeafNode
}

type InternalNode struct {
	LeftHash  *Hash `json:"left_hash,omitempty"`
	RightHash *Hash `json:"right_hash,omitempty"`
}

type LeafNode struct {
	KeyHash   Hash `json:"key_hash"`
	ValueHash Hash `json:"value_hash"`
}

func (p Proof) variants() []variant {
	return []variant{
		{tag: "membership", set: p.Membership != nil, value: p.Membership},
		{tag: "non_membership", set: p.NonMembership != nil, value: p.NonMembership},
	}
}

func (p Proof) MarshalJSON() ([]byte, error) {
	return marshalUnion(errors.ErrProofValidation, "proof", p.variants())
}

func (p *Proof) UnmarshalJSON(raw []byte) error {
	var res Proof
	err := unmarshalUnion(errors.ErrProofValidation, "proof", raw, []string{"membership", "non_membership"}, func(tag string, value json.RawMessage) error {
		var dst interface{}
		if tag == "membership" {
			res.Membership = new(MembershipProof)
			dst = res.Membership
		} else {
			res.NonMembership = new(NonMembershipProof)
			dst = res.NonMembership
		}
		if err := json.Unmarshal(value, dst); err != nil {
			return errors.Wrapf(errors.ErrProofValidation, "%s: %s", tag, err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	*p = res
	return nil
}

func (n ProofNode) variants() []variant {
	return []variant{
		{tag: "internal", set: n.Internal != nil, value: n.Internal},
		{tag: "leaf", set: n.Leaf != nil, value: n.Leaf},
	}
}

func (n ProofNode) MarshalJSON() ([]byte, error) {
	return marshalUnion(errors.ErrProofValidation, "proof node", n.variants())
}

func (n *ProofNode) UnmarshalJSON(raw []byte) error {
	var res ProofNode
	err := unmarshalUnion(errors.ErrProofValidation, "proof node", raw, []string{"internal", "leaf"}, func(tag string, value json.RawMessage) error {
		var dst interface{}
		if tag == "internal" {
			res.Internal = new(InternalNode)
			dst = res.Internal
		} else {
			res.Leaf = new(LeafNode)
			dst = res.Leaf
		}
		if err := json.Unmarshal(value, dst); err != nil {
			return errors.Wrapf(errors.ErrProofValidation, "%s: %s", tag, err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	*n = res
	return nil
}

// Hash returns the hash of the node as stored in its parent.
func (n ProofNode) Hash() (Hash, error) {
	switch {
	case n.Internal != nil && n.Leaf == nil:
		return HashInternalNode(n.Internal.LeftHash, n.Internal.RightHash), nil
	case n.Leaf != nil && n.Internal == nil:
		return HashLeafNode(n.Leaf.KeyHash, n.Leaf.ValueHash), nil
	default:
		return nil, errors.Wrap(errors.ErrProofValidation, "node must be either internal or leaf")
	}
}

// HashInternalNode returns sha256(0 | left | right). A missing child is
// represented by a zero hash.
func HashInternalNode(left, right *Hash) Hash {
	h := sha256.New()
	h.Write(internalNodePrefix)
	h.Write(orZero(left))
	h.Write(orZero(right))
	return h.Sum(nil)
}

// HashLeafNode returns sha256(1 | keyHash | valueHash).
func HashLeafNode(keyHash, valueHash Hash) Hash {
	h := sha256.New()
	h.Write(leafNodePrefix)
	h.Write(keyHash)
	h.Write(valueHash)
	return h.Sum(nil)
}

func orZero(h *Hash) Hash {
	if h == nil {
		return zeroHash
	}
	return *h
}

// bitAt returns the i-th bit of the hash, counting from the most
// significant bit of the first byte.
func bitAt(h Hash, i int) byte {
	return (h[i/8] >> (7 - uint(i%8))) & 1
}

// Verify checks the proof for the given key against the root hash. A nil
// value asserts that the key is absent, any other value that the key is
// set to exactly that value.
func (p Proof) Verify(root Hash, key, value []byte) error {
	if _, err := activeVariant(errors.ErrProofValidation, "proof", p.variants()); err != nil {
		return err
	}
	keyHash := Hash(sha256Sum(key))
	if value == nil {
		if p.NonMembership == nil {
			return errors.Wrap(errors.ErrProofValidation, "value absent but membership proof given")
		}
		return p.NonMembership.Verify(root, keyHash)
	}
	if p.Membership == nil {
		return errors.Wrap(errors.ErrProofValidation, "value present but non membership proof given")
	}
	return p.Membership.Verify(root, keyHash, sha256Sum(value))
}

// Verify checks that a leaf of keyHash and valueHash is part of the tree.
func (p MembershipProof) Verify(root, keyHash, valueHash Hash) error {
	if err := keyHash.Validate(); err != nil {
		return errors.Wrap(errors.ErrProofValidation, err.Error())
	}
	if len(p.SiblingHashes) > HashLength*8 {
		return errors.Wrapf(errors.ErrProofValidation, "%d siblings exceed tree depth", len(p.SiblingHashes))
	}
	got := climb(HashLeafNode(keyHash, valueHash), keyHash, p.SiblingHashes)
	if !got.Equals(root) {
		return errors.Wrapf(errors.ErrProofValidation, "root mismatch: computed %s, want %s", got, root)
	}
	return nil
}

// Verify checks that no leaf of keyHash is part of the tree.
func (p NonMembershipProof) Verify(root, keyHash Hash) error {
	if err := keyHash.Validate(); err != nil {
		return errors.Wrap(errors.ErrProofValidation, err.Error())
	}
	depth := len(p.SiblingHashes)
	if depth >= HashLength*8 {
		return errors.Wrapf(errors.ErrProofValidation, "%d siblings exceed tree depth", depth)
	}
	switch {
	case p.Node.Internal != nil && p.Node.Leaf == nil:
		var child *Hash
		if bitAt(keyHash, depth) == 0 {
			child = p.Node.Internal.LeftHash
		} else {
			child = p.Node.Internal.RightHash
		}
		if child != nil {
			return errors.Wrap(errors.ErrProofValidation, "internal node has a child on the key path")
		}
	case p.Node.Leaf != nil && p.Node.Internal == nil:
		leaf := p.Node.Leaf
		if leaf.KeyHash.Equals(keyHash) {
			return errors.Wrap(errors.ErrProofValidation, "leaf is the key itself")
		}
		if err := leaf.KeyHash.Validate(); err != nil {
			return errors.Wrap(errors.ErrProofValidation, err.Error())
		}
		for i := 0; i < depth; i++ {
			if bitAt(leaf.KeyHash, i) != bitAt(keyHash, i) {
				return errors.Wrap(errors.ErrProofValidation, "leaf is not on the key path")
			}
		}
	}
	node, err := p.Node.Hash()
	if err != nil {
		return err
	}
	got := climb(node, keyHash, p.SiblingHashes)
	if !got.Equals(root) {
		return errors.Wrapf(errors.ErrProofValidation, "root mismatch: computed %s, want %s", got, root)
	}
	return nil
}

// climb hashes a node up to the root along the path of keyHash.
func climb(node Hash, keyHash Hash, siblings []*Hash) Hash {
	hash := node
	for i, sibling := range siblings {
		level := len(siblings) - 1 - i
		if bitAt(keyHash, level) == 0 {
			hash = HashInternalNode(&hash, sibling)
		} else {
			hash = HashInternalNode(sibling, &hash)
		}
	}
	return hash
}

func sha256Sum(bz []byte) []byte {
	h := sha256.Sum256(bz)
	return h[:]
}
