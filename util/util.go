package util

import (
	"sort"

	"golang.org/x/exp/constraints"
)

func GetKeys[A constraints.Ordered, B any](m map[A]B) []A {
	keys := make([]A, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

func GetSortedKeys[A constraints.Ordered, B any](m map[A]B) []A {
	keys := GetKeys(m)
	sort.Slice(keys, func(i, j int) bool {
		return keys[i] < keys[j]
	})
	return keys
}

func Min[A constraints.Integer](num1 A, num2 A) A {
	if num1 > num2 {
		return num2
	}
	return num1
}

func Max[A constraints.Integer](num1 A, num2 A) A {
	if num1 < num2 {
		return num2
	}
	return num1
}

func Clamp[A constraints.Integer](num, lo, hi A) A {
	return Max(lo, Min(num, hi))
}

func Sum[A constraints.Integer](nums []A) int64 {
	var total int64
	for _, v := range nums {
		total += int64(v)
	}
	return total
}

// Overlap returns the length of the intersection of [start1, end1) and
// [start2, end2), or 0 if they are disjoint.
func Overlap[A constraints.Integer](start1, end1, start2, end2 A) A {
	lo := Max(start1, start2)
	hi := Min(end1, end2)
	if hi <= lo {
		return 0
	}
	return hi - lo
}
