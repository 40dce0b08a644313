package merkle_test

import (
	"strings"
	"testing"

	"github.com/ardanlabs/powchain/foundation/blockchain/merkle"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

// =============================================================================

const (
	txA = "a5f1e8c9b44d5c3e17a20076663a6b6dd46f9c0c95a46d3d5c16e8f0a9a05b1c"
	txB = "3b1f5c0d9e8a7b6c5d4e3f2a1b0c9d8e7f6a5b4c3d2e1f0a9b8c7d6e5f4a3b2c"
	txC = "9c8b7a6f5e4d3c2b1a0f9e8d7c6b5a4f3e2d1c0b9a8f7e6d5c4b3a2f1e0d9c8b"
)

func Test_EmptyRoot(t *testing.T) {
	t.Log("Given the need to compute the root for an empty set of transactions.")
	{
		root, err := merkle.RootHex(nil)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to compute the root: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to compute the root.", success)

		if root != merkle.ZeroRoot() {
			t.Errorf("\t%s\tShould have the all zero root.", failed)
			t.Logf("\t%s\tgot: %s", failed, root)
			t.Logf("\t%s\texp: %s", failed, merkle.ZeroRoot())
		} else {
			t.Logf("\t%s\tShould have the all zero root.", success)
		}

		if len(root) != 64 || strings.Trim(root, "0") != "" {
			t.Errorf("\t%s\tShould be 64 zero characters.", failed)
		} else {
			t.Logf("\t%s\tShould be 64 zero characters.", success)
		}
	}
}

func Test_Deterministic(t *testing.T) {
	t.Log("Given the need to compute the same root for the same ordered ids.")
	{
		root1, err := merkle.RootHex([]string{txA, txB, txC})
		if err != nil {
			t.Fatalf("\t%s\tShould be able to compute the first root: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to compute the first root.", success)

		root2, err := merkle.RootHex([]string{txA, txB, txC})
		if err != nil {
			t.Fatalf("\t%s\tShould be able to compute the second root: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to compute the second root.", success)

		if root1 != root2 {
			t.Errorf("\t%s\tShould have matching roots: %s != %s", failed, root1, root2)
		} else {
			t.Logf("\t%s\tShould have matching roots.", success)
		}

		if len(root1) != 64 {
			t.Errorf("\t%s\tShould be 64 hex characters, got %d.", failed, len(root1))
		} else {
			t.Logf("\t%s\tShould be 64 hex characters.", success)
		}
	}
}

func Test_OrderSensitivity(t *testing.T) {
	t.Log("Given the need to verify reordering ids changes the root.")
	{
		root1, err := merkle.RootHex([]string{txA, txB})
		if err != nil {
			t.Fatalf("\t%s\tShould be able to compute the a,b root: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to compute the a,b root.", success)

		root2, err := merkle.RootHex([]string{txB, txA})
		if err != nil {
			t.Fatalf("\t%s\tShould be able to compute the b,a root: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to compute the b,a root.", success)

		if root1 == root2 {
			t.Errorf("\t%s\tShould have different roots for different orderings.", failed)
		} else {
			t.Logf("\t%s\tShould have different roots for different orderings.", success)
		}
	}
}

func Test_OddDuplication(t *testing.T) {
	t.Log("Given the need to verify an odd level duplicates its last id.")
	{
		// With three ids the last is paired with itself, which is the same
		// as computing over the four id sequence a,b,c,c.
		root3, err := merkle.RootHex([]string{txA, txB, txC})
		if err != nil {
			t.Fatalf("\t%s\tShould be able to compute the three id root: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to compute the three id root.", success)

		root4, err := merkle.RootHex([]string{txA, txB, txC, txC})
		if err != nil {
			t.Fatalf("\t%s\tShould be able to compute the four id root: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to compute the four id root.", success)

		if root3 != root4 {
			t.Errorf("\t%s\tShould have matching roots: %s != %s", failed, root3, root4)
		} else {
			t.Logf("\t%s\tShould have matching roots.", success)
		}
	}
}

func Test_BadHex(t *testing.T) {
	t.Log("Given the need to reject ids that are not valid hex.")
	{
		if _, err := merkle.RootHex([]string{"zz"}); err == nil {
			t.Errorf("\t%s\tShould reject a non-hex id.", failed)
		} else {
			t.Logf("\t%s\tShould reject a non-hex id.", success)
		}
	}
}
