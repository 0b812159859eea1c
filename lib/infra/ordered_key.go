package infra

import (
	"cmp"
)

type Signed interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64
}

// Unsigned is a constraint that permits any unsigned integer type.
type Unsigned interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

type Integer interface {
	Signed | Unsigned
}

type Float interface {
	~float32 | ~float64
}

// OrderedKey
// byte => ~uint8
type OrderedKey interface {
	Integer | Float | ~string
}

// Comparator defines a total order over T.
// Assume i is the new item.
//  1. i == j (return 0)
//  2. i > j (return > 0), turn to right part.
//  3. i < j (return < 0), turn to left part.
type Comparator[T any] func(i, j T) int64

// OrderedComparator orders NaN before any other float and equal to
// itself.
func OrderedComparator[K OrderedKey]() Comparator[K] {
	return func(i, j K) int64 {
		return int64(cmp.Compare(i, j))
	}
}

// ReverseComparator flips the sign of cmp. A nil cmp stays nil.
func ReverseComparator[T any](fn Comparator[T]) Comparator[T] {
	if fn == nil {
		return nil
	}
	return func(i, j T) int64 {
		return fn(j, i)
	}
}
