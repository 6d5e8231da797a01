// Copyright (c) 2016 Western Digital Corporation or its affiliates. All rights reserved.
// SPDX-License-Identifier: MIT

package slices

import (
	"cmp"
	"sort"
)

// Contains returns true if slice contains value a
func Contains[T comparable](slice []T, a T) bool {
	for _, b := range slice {
		if b == a {
			return true
		}
	}
	return false
}

// ContainsAll returns true if every element of want is in slice. An empty want
// is contained in anything.
func ContainsAll[T comparable](slice, want []T) bool {
	for _, w := range want {
		if !Contains(slice, w) {
			return false
		}
	}
	return true
}

// ContainsAny returns true if slice and want share at least one element.
func ContainsAny[T comparable](slice, want []T) bool {
	for _, w := range want {
		if Contains(slice, w) {
			return true
		}
	}
	return false
}

// EqualSets compares if two (unsorted) slices have the same elements
func EqualSets[T comparable](slice1, slice2 []T) bool {
	switch {
	case slice1 == nil && slice2 == nil:
		return true
	case len(slice1) != len(slice2):
		return false
	}

	m := map[T]bool{}
	for _, s1 := range slice1 {
		m[s1] = true
	}
	for _, s2 := range slice2 {
		if !m[s2] {
			return false
		}
	}
	return true
}

// SortedKeys returns the keys of m in ascending order.
func SortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Unique returns the distinct elements of slice, keeping first occurrences in
// order.
func Unique[T comparable](slice []T) []T {
	var out []T
	seen := make(map[T]bool, len(slice))
	for _, v := range slice {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
