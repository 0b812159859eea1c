package tree

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/benz9527/xtree/lib/infra"
)

func blackDepthTo[T any](target, to RBNode[T]) int {
	depth := 0
	for aux := target; aux != nil && aux != to; aux = aux.Parent() {
		if aux.IsBlack() {
			depth++
		}
	}
	return depth
}

// rbtree rule validation utilities.

// References:
// https://github1s.com/minghu6/rust-minghu6/blob/master/coll_st/src/bst/rb.rs

// Inorder traversal to validate the rbtree properties.
func RedViolationValidate[T any](tree RBTree[T]) error {
	size := tree.Count()
	aux := tree.RootNode()
	if size <= 0 || aux == nil {
		return nil
	}
	if aux.IsRed() {
		return infra.WrapErrorStackWithMessage(ErrRBTreeRedViolation, "root is red")
	}

	stack := make([]RBNode[T], 0, size>>1)
	defer func() {
		clear(stack)
	}()

	for ; aux != nil; aux = aux.Left() {
		stack = append(stack, aux)
	}

	for size = int64(len(stack)); size > 0; size = int64(len(stack)) {
		if aux = stack[size-1]; aux.IsRed() {
			if (aux.Left() != nil && aux.Left().IsRed()) ||
				(aux.Right() != nil && aux.Right().IsRed()) {
				return infra.WrapErrorStackWithMessage(ErrRBTreeRedViolation,
					fmt.Sprintf("red node %v has a red child", aux.Value()),
				)
			}
		}

		stack = stack[:size-1]
		for aux = aux.Right(); aux != nil; aux = aux.Left() {
			stack = append(stack, aux)
		}
	}
	return nil
}

// BFS traversal to load all nodes with a nil child.
func bfsLeaves[T any](tree RBTree[T]) []RBNode[T] {
	size := tree.Count()
	aux := tree.RootNode()
	if size <= 0 || aux == nil {
		return nil
	}

	leaves := make([]RBNode[T], 0, size>>1+1)
	queue := make([]RBNode[T], 0, size>>1)
	defer func() {
		clear(queue)
	}()
	queue = append(queue, aux)

	for len(queue) > 0 {
		aux = queue[0]
		l, r := aux.Left(), aux.Right()
		if /* nil leaves, keep one */ l == nil || r == nil {
			leaves = append(leaves, aux)
		}
		if l != nil {
			queue = append(queue, l)
		}
		if r != nil {
			queue = append(queue, r)
		}
		queue = queue[1:]
	}
	return leaves
}

/*
<X> is a RED node.
[X] is a BLACK node (or NIL).

	        [13]
			/  \
		 <8>    [15]
		 / \    /  \
	  [6] [11] [14] [17]
	  /              /
	<1>            [16]

2-3-4 tree like:

	       <8> --- [13] --- <15>
		  /  \             /    \
		 /    \           /      \
	  <1>-[6][11]      [14] <16>-[17]

Each leaf node to root node black depth are equal.
*/
func BlackViolationValidate[T any](tree RBTree[T]) error {
	leaves := bfsLeaves[T](tree)
	if leaves == nil {
		return nil
	}

	root := tree.RootNode()
	blackDepth := blackDepthTo[T](leaves[0], root)
	for i := 1; i < len(leaves); i++ {
		if depth := blackDepthTo[T](leaves[i], root); depth != blackDepth {
			return infra.WrapErrorStackWithMessage(ErrRBTreeBlackViolation,
				fmt.Sprintf("node %v black depth %d, expected %d", leaves[i].Value(), depth, blackDepth),
			)
		}
	}
	return nil
}

// OrderViolationValidate checks the inorder sequence is sorted by the
// comparator of the tree. Equal neighbours are allowed only with duplicates.
func OrderViolationValidate[T any](tree RBTree[T], cmp infra.Comparator[T]) error {
	if cmp == nil {
		return infra.WrapErrorStack(ErrRBTreeNilComparator)
	}
	var (
		prev  T
		first = true
	)
	for v := range tree.InOrder() {
		if !first {
			res := cmp(prev, v)
			if res > 0 || (res == 0 && !tree.AllowDuplicates()) {
				return infra.WrapErrorStackWithMessage(ErrRBTreeOrderViolation,
					fmt.Sprintf("%v is followed by %v", prev, v),
				)
			}
		}
		prev, first = v, false
	}
	return nil
}

// LinkViolationValidate checks each child points back to its parent.
func LinkViolationValidate[T any](tree RBTree[T]) error {
	root := tree.RootNode()
	if root == nil {
		return nil
	}
	if root.Parent() != nil {
		return infra.WrapErrorStackWithMessage(ErrRBTreeLinkViolation, "root has a parent")
	}

	stack := []RBNode[T]{root}
	for len(stack) > 0 {
		aux := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, child := range [2]RBNode[T]{aux.Left(), aux.Right()} {
			if child == nil {
				continue
			}
			if child.Parent() != aux {
				return infra.WrapErrorStackWithMessage(ErrRBTreeLinkViolation,
					fmt.Sprintf("child %v doesn't point back to %v", child.Value(), aux.Value()),
				)
			}
			stack = append(stack, child)
		}
	}
	return nil
}

// CountViolationValidate checks the count equals the reachable nodes.
func CountViolationValidate[T any](tree RBTree[T]) error {
	reachable := int64(0)
	for range tree.PreOrder() {
		reachable++
	}
	if count := tree.Count(); reachable != count {
		return infra.WrapErrorStackWithMessage(ErrRBTreeCountViolation,
			fmt.Sprintf("count %d, reachable %d", count, reachable),
		)
	}
	return nil
}

func comparatorOf[T any](tree RBTree[T]) infra.Comparator[T] {
	if t, ok := tree.(*rbTree[T]); ok {
		return t.cmp
	}
	return nil
}

// Validate runs every validator and combines all violations.
// The order is validated by the comparator the tree is built with.
func Validate[T any](tree RBTree[T]) error {
	if tree == nil {
		return nil
	}
	if err := LinkViolationValidate[T](tree); err != nil {
		// The traversals below follow the parent links.
		return multierr.Combine(err, RedViolationValidate[T](tree))
	}
	cmp := comparatorOf[T](tree)
	err := multierr.Combine(
		RedViolationValidate[T](tree),
		BlackViolationValidate[T](tree),
		CountViolationValidate[T](tree),
	)
	if cmp != nil {
		err = multierr.Append(err, OrderViolationValidate[T](tree, cmp))
	}
	return err
}
