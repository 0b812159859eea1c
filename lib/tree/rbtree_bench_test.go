package tree

import (
	randv2 "math/rand/v2"
	"testing"

	"github.com/emirpasic/gods/trees/redblacktree"
	"github.com/google/btree"
	"github.com/petar/GoLLRB/llrb"
)

func randomInts(n int) []int {
	rngArr := make([]int, 0, n)
	for i := 0; i < n; i++ {
		rngArr = append(rngArr, randv2.Int())
	}
	return rngArr
}

func BenchmarkRBTree_Random(b *testing.B) {
	b.StopTimer()
	tree := NewOrderedRBTree[int]()
	rngArr := randomInts(b.N)

	b.StartTimer()
	for i := 0; i < b.N; i++ {
		tree.Add(rngArr[i])
	}
}

func BenchmarkRBTree_Serial(b *testing.B) {
	b.StopTimer()
	tree := NewOrderedRBTree[int]()

	b.StartTimer()
	for i := 0; i < b.N; i++ {
		tree.Add(i)
	}
}

func BenchmarkRBTree_RandomRemove(b *testing.B) {
	b.StopTimer()
	tree := NewOrderedRBTree[int]()
	rngArr := randomInts(b.N)
	for i := 0; i < b.N; i++ {
		tree.Add(rngArr[i])
	}

	b.StartTimer()
	for i := 0; i < b.N; i++ {
		tree.Remove(rngArr[i])
	}
}

func BenchmarkRBTree_RandomWithStats(b *testing.B) {
	b.StopTimer()
	tree := NewOrderedRBTree[int](WithRBTreeStats[int]("bench"))
	rngArr := randomInts(b.N)

	b.StartTimer()
	for i := 0; i < b.N; i++ {
		tree.Add(rngArr[i])
	}
}

func BenchmarkLLRB_Random(b *testing.B) {
	b.StopTimer()
	tree := llrb.New()
	rngArr := randomInts(b.N)

	b.StartTimer()
	for i := 0; i < b.N; i++ {
		tree.ReplaceOrInsert(llrb.Int(rngArr[i]))
	}
}

func BenchmarkGodsRBTree_Random(b *testing.B) {
	b.StopTimer()
	tree := redblacktree.NewWithIntComparator()
	rngArr := randomInts(b.N)

	b.StartTimer()
	for i := 0; i < b.N; i++ {
		tree.Put(rngArr[i], struct{}{})
	}
}

func BenchmarkBTree_Random(b *testing.B) {
	b.StopTimer()
	tree := btree.NewOrderedG[int](32)
	rngArr := randomInts(b.N)

	b.StartTimer()
	for i := 0; i < b.N; i++ {
		tree.ReplaceOrInsert(rngArr[i])
	}
}
