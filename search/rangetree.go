// ABOUTME: Indexed-leaf binary tree for predecessor/successor/range-delete queries
// ABOUTME: Backs the sparse dynamic programming of the LCTS kernel

package search

import "math/bits"

// indexTree is a complete binary tree over the key space [0, leaves) whose
// internal nodes record, with two bits, whether their left and right subtrees
// contain any inserted leaf. Predecessor, successor, insert and delete all
// run in O(log n). Range query [-inf, x) is answered via predecessor(x);
// inserting x followed by deleteGreaterSuccessors(x, values) keeps the
// structure a lower envelope so that query stays correct.
type indexTree struct {
	leaves   int
	hasLeft  []bool
	hasRight []bool
}

// log2 is the floor of the base-2 logarithm.
func log2(n int) int {
	return bits.Len(uint(n)) - 1
}

// newIndexTree creates an empty tree able to hold keys [0, n].
func newIndexTree(n int) *indexTree {
	leaves := 1 << (log2(n) + 1)
	return &indexTree{
		leaves:   leaves,
		hasLeft:  make([]bool, 2*leaves),
		hasRight: make([]bool, 2*leaves),
	}
}

// insert marks leaf index and updates occupancy bits up to the root.
func (t *indexTree) insert(index int) {
	i := t.leaves + index
	for i > 1 {
		if i&1 == 0 {
			if t.hasLeft[i/2] {
				break
			}
			t.hasLeft[i/2] = true
		} else {
			if t.hasRight[i/2] {
				break
			}
			t.hasRight[i/2] = true
		}
		i /= 2
	}
}

// delete clears leaf index and updates occupancy bits up to the root.
func (t *indexTree) delete(index int) {
	i := t.leaves + index
	for i > 1 && !t.hasLeft[i] && !t.hasRight[i] {
		if i&1 == 0 {
			t.hasLeft[i/2] = false
		} else {
			t.hasRight[i/2] = false
		}
		i /= 2
	}
}

// predecessor returns the largest inserted key smaller than index, or leaves
// if there is none.
func (t *indexTree) predecessor(index int) int {
	i := t.leaves + index
	for i > 1 && (i&1 == 0 || !t.hasLeft[i/2]) {
		i /= 2
	}
	if i == 1 {
		return t.leaves
	}
	i--
	for i < t.leaves {
		if t.hasRight[i] {
			i = 2*i + 1
		} else {
			i = 2 * i
		}
	}
	return i - t.leaves
}

// successor returns the smallest inserted key larger than index, or leaves
// if there is none.
func (t *indexTree) successor(index int) int {
	i := t.leaves + index
	for i > 1 && (i&1 == 1 || !t.hasRight[i/2]) {
		i /= 2
	}
	if i == 1 {
		return t.leaves
	}
	i++
	for i < t.leaves {
		if t.hasLeft[i] {
			i = 2 * i
		} else {
			i = 2*i + 1
		}
	}
	return i - t.leaves
}

// deleteGreaterSuccessors removes successors of index while their value is
// not smaller than values[index].
func (t *indexTree) deleteGreaterSuccessors(index int, values []int) {
	j := t.successor(index)
	for j < t.leaves && values[j] >= values[index] {
		t.delete(j)
		j = t.successor(index)
	}
}
