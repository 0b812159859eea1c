package tree

import (
	"iter"
	randv2 "math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

func recursiveWalk[T any](node RBNode[T], order string, out *[]T) {
	if node == nil {
		return
	}
	if order == "pre" {
		*out = append(*out, node.Value())
	}
	recursiveWalk(node.Left(), order, out)
	if order == "in" {
		*out = append(*out, node.Value())
	}
	recursiveWalk(node.Right(), order, out)
	if order == "post" {
		*out = append(*out, node.Value())
	}
}

func levelWalk[T any](root RBNode[T]) []T {
	if root == nil {
		return nil
	}
	var out []T
	level := []RBNode[T]{root}
	for len(level) > 0 {
		next := make([]RBNode[T], 0, len(level)*2)
		for _, node := range level {
			out = append(out, node.Value())
			if node.Left() != nil {
				next = append(next, node.Left())
			}
			if node.Right() != nil {
				next = append(next, node.Right())
			}
		}
		level = next
	}
	return out
}

func TestRbtreeTraversal(t *testing.T) {
	testcases := []struct {
		name   string
		values []int
	}{
		{name: "empty"},
		{name: "single", values: []int{1}},
		{name: "scenario", values: []int{5, 3, 8, 1, 4, 7, 9}},
		{name: "sequential", values: []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}},
		{name: "duplicates", values: []int{4, 4, 2, 2, 6, 6, 4, 1, 9}},
		{name: "random", values: randv2.Perm(257)},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			tree := NewOrderedRBTree[int](WithRBTreeDuplicates[int]())
			for _, v := range tc.values {
				tree.Add(v)
			}
			// Remove some to get the rebalanced shapes.
			for i := 0; i < len(tc.values)/4; i++ {
				tree.Remove(tc.values[i*3%len(tc.values)])
			}
			require.NoError(tt, Validate[int](tree))

			var in, pre, post []int
			recursiveWalk(tree.RootNode(), "in", &in)
			recursiveWalk(tree.RootNode(), "pre", &pre)
			recursiveWalk(tree.RootNode(), "post", &post)

			require.Equal(tt, in, slices.Collect(tree.InOrder()))
			require.Equal(tt, pre, slices.Collect(tree.PreOrder()))
			require.Equal(tt, post, slices.Collect(tree.PostOrder()))
			require.Equal(tt, levelWalk(tree.RootNode()), slices.Collect(tree.LevelOrder()))

			reversed := slices.Clone(in)
			slices.Reverse(reversed)
			require.Equal(tt, reversed, slices.Collect(tree.ReverseInOrder()))
			require.True(tt, slices.IsSorted(slices.Collect(tree.InOrder())))
			require.Equal(tt, tree.Count(), int64(len(in)))
		})
	}
}

func TestRbtreeTraversal_Scenario(t *testing.T) {
	tree := NewOrderedRBTree[int]()
	for _, v := range []int{5, 3, 8, 1, 4, 7, 9} {
		tree.Add(v)
	}
	//        [5]
	//       /   \
	//     [3]   [8]
	//     / \   / \
	//   <1><4><7> <9>
	require.Equal(t, []int{5, 3, 1, 4, 8, 7, 9}, slices.Collect(tree.PreOrder()))
	require.Equal(t, []int{1, 4, 3, 7, 9, 8, 5}, slices.Collect(tree.PostOrder()))
	require.Equal(t, []int{5, 3, 8, 1, 4, 7, 9}, slices.Collect(tree.LevelOrder()))
	require.Equal(t, []int{9, 8, 7, 5, 4, 3, 1}, slices.Collect(tree.ReverseInOrder()))
	require.NotEqual(t, slices.Collect(tree.ReverseInOrder()), slices.Collect(tree.PostOrder()))
}

func TestRbtreeTraversal_EarlyStop(t *testing.T) {
	tree := NewOrderedRBTree[int]()
	for v := 0; v < 100; v++ {
		tree.Add(v)
	}
	testcases := []struct {
		name string
		seq  iter.Seq[int]
	}{
		{name: "inorder", seq: tree.InOrder()},
		{name: "reverse inorder", seq: tree.ReverseInOrder()},
		{name: "preorder", seq: tree.PreOrder()},
		{name: "postorder", seq: tree.PostOrder()},
		{name: "levelorder", seq: tree.LevelOrder()},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			visited := 0
			for range tc.seq {
				visited++
				if visited == 3 {
					break
				}
			}
			require.Equal(tt, 3, visited)

			// Each call to the sequence walks from the start again.
			all := 0
			for range tc.seq {
				all++
			}
			require.Equal(tt, 100, all)
		})
	}

	visited := int64(0)
	tree.Foreach(func(idx int64, color RBColor, val int) bool {
		visited = idx + 1
		return idx < 9
	})
	require.Equal(t, int64(10), visited)
	tree.Foreach(nil)
}
