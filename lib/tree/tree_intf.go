package tree

import (
	"iter"
)

type RBColor uint8

const (
	Black RBColor = iota
	Red
)

func (c RBColor) String() string {
	if c == Red {
		return "Red"
	}
	return "Black"
}

type RBDirection int8

const (
	Left RBDirection = -1 + iota
	Root
	Right
)

func (d RBDirection) String() string {
	switch d {
	case Left:
		return "Left"
	case Right:
		return "Right"
	default:
	}
	return "Root"
}

type RBRemoveBorrow uint8

const (
	// RemoveBorrowAuto borrows the successor, unless the successor
	// is a black leaf, then it borrows the predecessor.
	RemoveBorrowAuto RBRemoveBorrow = iota
	RemoveBorrowSucc
	RemoveBorrowPred
)

// RBNode is a read-only view of a tree node.
// Absent links are returned as nil interface.
type RBNode[T any] interface {
	Value() T
	Color() RBColor
	Left() RBNode[T]
	Right() RBNode[T]
	Parent() RBNode[T]
	IsLeaf() bool
	IsRoot() bool
	IsBlack() bool
	IsRed() bool
}

// RBTree is not thread safe.
type RBTree[T any] interface {
	Count() int64
	AllowDuplicates() bool
	RootNode() RBNode[T]
	Height() int

	Add(item T) bool
	Remove(item T) bool
	RemoveMin() (T, error)
	RemoveMax() (T, error)
	Contains(item T) bool
	Search(fn func(RBNode[T]) int64) RBNode[T]
	MinValue() (T, error)
	MaxValue() (T, error)

	InOrder() iter.Seq[T]
	ReverseInOrder() iter.Seq[T]
	PreOrder() iter.Seq[T]
	// PostOrder is children first. Use ReverseInOrder to walk from the
	// maximum side.
	PostOrder() iter.Seq[T]
	LevelOrder() iter.Seq[T]
	Foreach(action func(idx int64, color RBColor, val T) bool)

	Values() []T
	CopyTo(dst []T, index int) error
	Clear()
}
