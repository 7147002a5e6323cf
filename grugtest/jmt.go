package grugtest

import (
	"bytes"
	"crypto/sha256"
	"sort"

	grug "github.com/left-curve/grug-go"
)

// The merkle tree is rebuilt from the full store content on every call.
// Test stores are small enough for that.

type leaf struct {
	keyHash   grug.Hash
	valueHash grug.Hash
}

func leavesOf(s *Store) []leaf {
	leaves := make([]leaf, 0, s.Len())
	s.Iterate(nil, nil, 0, func(key, value []byte) bool {
		leaves = append(leaves, leaf{keyHash: hash(key), valueHash: hash(value)})
		return true
	})
	sort.Slice(leaves, func(i, j int) bool {
		return bytes.Compare(leaves[i].keyHash, leaves[j].keyHash) < 0
	})
	return leaves
}

func hash(bz []byte) grug.Hash {
	h := sha256.Sum256(bz)
	return h[:]
}

func bitAt(h grug.Hash, i int) byte {
	return (h[i/8] >> (7 - uint(i%8))) & 1
}

// split partitions sorted leaves sharing the first depth bits by the bit
// at depth.
func split(leaves []leaf, depth int) (left, right []leaf) {
	i := sort.Search(len(leaves), func(i int) bool {
		return bitAt(leaves[i].keyHash, depth) == 1
	})
	return leaves[:i], leaves[i:]
}

// subtreeHash returns the hash of the subtree rooted at depth, nil for an
// empty one. Below the root a single leaf is not wrapped by internal nodes.
func subtreeHash(leaves []leaf, depth int) *grug.Hash {
	if len(leaves) == 0 {
		return nil
	}
	if len(leaves) == 1 && depth > 0 {
		h := grug.HashLeafNode(leaves[0].keyHash, leaves[0].valueHash)
		return &h
	}
	left, right := split(leaves, depth)
	h := grug.HashInternalNode(subtreeHash(left, depth+1), subtreeHash(right, depth+1))
	return &h
}

// RootHash returns the merkle root of the store content. The root is always
// an internal node, an empty store hashes to an internal node without
// children.
func RootHash(s *Store) grug.Hash {
	return *subtreeHash(leavesOf(s), 0)
}

// Prove returns a proof of the presence or absence of key in the store.
func Prove(s *Store, key []byte) grug.Proof {
	keyHash := hash(key)
	cur := leavesOf(s)

	// Collected top down, proofs carry them bottom up.
	var siblings []*grug.Hash
	bottomUp := func() []*grug.Hash {
		res := make([]*grug.Hash, len(siblings))
		for i, sib := range siblings {
			res[len(siblings)-1-i] = sib
		}
		return res
	}

	for depth := 0; ; depth++ {
		if depth > 0 && len(cur) == 1 {
			l := cur[0]
			if l.keyHash.Equals(keyHash) {
				return grug.Proof{Membership: &grug.MembershipProof{
					SiblingHashes: bottomUp(),
				}}
			}
			return grug.Proof{NonMembership: &grug.NonMembershipProof{
				Node:          grug.ProofNode{Leaf: &grug.LeafNode{KeyHash: l.keyHash, ValueHash: l.valueHash}},
				SiblingHashes: bottomUp(),
			}}
		}

		left, right := split(cur, depth)
		next, other := left, right
		if bitAt(keyHash, depth) == 1 {
			next, other = right, left
		}
		if len(next) == 0 {
			return grug.Proof{NonMembership: &grug.NonMembershipProof{
				Node: grug.ProofNode{Internal: &grug.InternalNode{
					LeftHash:  subtreeHash(left, depth+1),
					RightHash: subtreeHash(right, depth+1),
				}},
				SiblingHashes: bottomUp(),
			}}
		}
		siblings = append(siblings, subtreeHash(other, depth+1))
		cur = next
	}
}
