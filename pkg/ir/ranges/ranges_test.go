package ranges

import (
	"math/rand"
	"reflect"
	"sort"
	"testing"
)

func TestFindRangesCoalescesConsecutiveRuns(t *testing.T) {
	got := FindRanges([]int64{1, 2, 3, 5, 7, 8, 9})
	want := []Range{{1, 3}, {5, 5}, {7, 9}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestFindRangesDedups(t *testing.T) {
	got := FindRanges([]int64{1, 1, 2, 2, 3})
	want := []Range{{1, 3}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestFindRangesEmpty(t *testing.T) {
	if got := FindRanges(nil); got != nil {
		t.Fatalf("expected nil for empty input, got %v", got)
	}
}

func TestFindRangesOrderIndependent(t *testing.T) {
	sorted := []int64{1, 2, 3, 4, 10, 11, 20}
	shuffled := append([]int64(nil), sorted...)
	rand.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

	got1 := FindRanges(sorted)
	got2 := FindRanges(shuffled)
	if !reflect.DeepEqual(got1, got2) {
		t.Fatalf("expected order-independent result, got %v vs %v", got1, got2)
	}
}

func TestFindRangesAreSortedAndDisjoint(t *testing.T) {
	got := FindRanges([]int64{100, 1, 2, 50, 51, 3})
	if !sort.SliceIsSorted(got, func(i, j int) bool { return got[i].Start < got[j].Start }) {
		t.Fatalf("ranges not sorted: %v", got)
	}
	for i := 1; i < len(got); i++ {
		if got[i].Start <= got[i-1].End {
			t.Fatalf("ranges not disjoint: %v", got)
		}
	}
}
