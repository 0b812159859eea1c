package tree

import (
	"fmt"
	"iter"

	"github.com/emirpasic/gods/queues/linkedlistqueue"

	"github.com/benz9527/xtree/lib/infra"
)

// The traversals walk the parent links and keep no stack, except
// the level order. Mutating the tree during a walk is undefined.

func (tree *rbTree[T]) InOrder() iter.Seq[T] {
	return func(yield func(T) bool) {
		for aux := tree.root.minimum(); aux != nil; aux = aux.succ() {
			if !yield(aux.value) {
				return
			}
		}
	}
}

func (tree *rbTree[T]) ReverseInOrder() iter.Seq[T] {
	return func(yield func(T) bool) {
		for aux := tree.root.maximum(); aux != nil; aux = aux.pred() {
			if !yield(aux.value) {
				return
			}
		}
	}
}

func (tree *rbTree[T]) PreOrder() iter.Seq[T] {
	return func(yield func(T) bool) {
		for aux := tree.root; aux != nil; aux = aux.preSucc() {
			if !yield(aux.value) {
				return
			}
		}
	}
}

// PostOrder yields both subtrees before their parent. The walk from the
// maximum side down to the minimum is ReverseInOrder.
func (tree *rbTree[T]) PostOrder() iter.Seq[T] {
	return func(yield func(T) bool) {
		for aux := tree.root.postFirst(); aux != nil; aux = aux.postSucc() {
			if !yield(aux.value) {
				return
			}
		}
	}
}

func (tree *rbTree[T]) LevelOrder() iter.Seq[T] {
	return func(yield func(T) bool) {
		if tree.root == nil {
			return
		}
		queue := linkedlistqueue.New()
		queue.Enqueue(tree.root)
		for !queue.Empty() {
			e, _ := queue.Dequeue()
			aux := e.(*rbNode[T])
			if !yield(aux.value) {
				queue.Clear()
				return
			}
			if aux.left != nil {
				queue.Enqueue(aux.left)
			}
			if aux.right != nil {
				queue.Enqueue(aux.right)
			}
		}
	}
}

// Foreach walks in order, it stops if action returns false.
func (tree *rbTree[T]) Foreach(action func(idx int64, color RBColor, val T) bool) {
	if action == nil {
		return
	}
	idx := int64(0)
	for aux := tree.root.minimum(); aux != nil; aux = aux.succ() {
		if !action(idx, aux.color, aux.value) {
			return
		}
		idx++
	}
}

func (tree *rbTree[T]) Values() []T {
	values := make([]T, 0, tree.Count())
	for v := range tree.InOrder() {
		values = append(values, v)
	}
	return values
}

// CopyTo writes the elements in order into dst starting at index.
// Nothing is written if the arguments are rejected.
func (tree *rbTree[T]) CopyTo(dst []T, index int) error {
	if index < 0 || index > len(dst) {
		return infra.WrapErrorStackWithMessage(ErrRBTreeInvalidArgument,
			fmt.Sprintf("index %d out of range [0, %d]", index, len(dst)),
		)
	}
	if count := tree.Count(); int64(len(dst)-index) < count {
		return infra.WrapErrorStackWithMessage(ErrRBTreeInvalidArgument,
			fmt.Sprintf("%d slots from index %d, but %d elements", len(dst)-index, index, count),
		)
	}
	for v := range tree.InOrder() {
		dst[index] = v
		index++
	}
	return nil
}
