// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package match provides the shared matching and equivalence primitives
// used by the category analyzers: unique-key pairing, multiset and
// ordered-sequence equality, normalized member-access paths, and
// edit-distance similarity.
//
// Pairing passes are pure folds over immutable inputs: each pass
// consumes a remaining pool and returns pairs plus the leftover pool,
// so no pass ever observes another pass's intermediate mutations.
package match

// Pair joins one base-side element with one head-side element.
type Pair[T any] struct {
	Base T
	Head T
}

// Pool is the remaining unpaired elements after a pairing pass.
type Pool[T any] struct {
	Base []T
	Head []T
}

// PairByUniqueKey pairs elements whose key occurs exactly once on each
// side. Elements with duplicated or unmatched keys stay in the pool.
//
// The input slices are never mutated; the returned pool preserves the
// original relative order of the leftovers.
func PairByUniqueKey[T any](base, head []T, key func(T) string) ([]Pair[T], Pool[T]) {
	baseCount := make(map[string]int, len(base))
	headCount := make(map[string]int, len(head))
	for _, b := range base {
		baseCount[key(b)]++
	}
	for _, h := range head {
		headCount[key(h)]++
	}

	headByKey := make(map[string]T, len(head))
	for _, h := range head {
		k := key(h)
		if baseCount[k] == 1 && headCount[k] == 1 {
			headByKey[k] = h
		}
	}

	var pairs []Pair[T]
	var pool Pool[T]
	for _, b := range base {
		k := key(b)
		if h, ok := headByKey[k]; ok && baseCount[k] == 1 {
			pairs = append(pairs, Pair[T]{Base: b, Head: h})
			continue
		}
		pool.Base = append(pool.Base, b)
	}
	for _, h := range head {
		k := key(h)
		if _, ok := headByKey[k]; ok && baseCount[k] == 1 {
			continue
		}
		pool.Head = append(pool.Head, h)
	}
	return pairs, pool
}

// PairWhere pairs each remaining base element with the first head
// element the predicate accepts, folding the pool forward. Each head
// element is claimed at most once.
func PairWhere[T any](pool Pool[T], eq func(base, head T) bool) ([]Pair[T], Pool[T]) {
	var pairs []Pair[T]
	claimed := make([]bool, len(pool.Head))

	var next Pool[T]
	for _, b := range pool.Base {
		matched := false
		for i, h := range pool.Head {
			if claimed[i] {
				continue
			}
			if eq(b, h) {
				pairs = append(pairs, Pair[T]{Base: b, Head: h})
				claimed[i] = true
				matched = true
				break
			}
		}
		if !matched {
			next.Base = append(next.Base, b)
		}
	}
	for i, h := range pool.Head {
		if !claimed[i] {
			next.Head = append(next.Head, h)
		}
	}
	return pairs, next
}

// MultisetEqual reports whether two string slices contain the same
// elements with the same multiplicities, irrespective of order.
func MultisetEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	counts := make(map[string]int, len(a))
	for _, s := range a {
		counts[s]++
	}
	for _, s := range b {
		counts[s]--
		if counts[s] < 0 {
			return false
		}
	}
	return true
}

// OrderedEqual reports whether two string slices are element-wise equal.
func OrderedEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
