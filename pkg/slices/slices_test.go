// Copyright (c) 2016 Western Digital Corporation or its affiliates. All rights reserved.
// SPDX-License-Identifier: MIT

package slices

import (
	"reflect"
	"testing"
)

func TestContains(t *testing.T) {
	s := []string{"a", "b", "c"}
	if !Contains(s, "b") || Contains(s, "d") {
		t.Errorf("Contains is wrong")
	}
	if !ContainsAll(s, []string{"c", "a"}) || ContainsAll(s, []string{"a", "d"}) {
		t.Errorf("ContainsAll is wrong")
	}
	if !ContainsAll(s, nil) {
		t.Errorf("empty want should be contained")
	}
	if !ContainsAny(s, []string{"x", "c"}) || ContainsAny(s, []string{"x"}) || ContainsAny(s, nil) {
		t.Errorf("ContainsAny is wrong")
	}
}

func TestEqualSets(t *testing.T) {
	if !EqualSets[int](nil, nil) {
		t.Errorf("nil sets should be equal")
	}
	if !EqualSets([]int{1, 2, 3}, []int{3, 1, 2}) {
		t.Errorf("permutations should be equal")
	}
	if EqualSets([]int{1, 2}, []int{1, 3}) || EqualSets([]int{1}, []int{1, 1}) {
		t.Errorf("different sets compared equal")
	}
}

func TestSortedKeysAndUnique(t *testing.T) {
	m := map[string]int{"pad": 1, "bass": 2, "lead": 3}
	if got := SortedKeys(m); !reflect.DeepEqual(got, []string{"bass", "lead", "pad"}) {
		t.Errorf("SortedKeys = %v", got)
	}
	if got := Unique([]int{3, 1, 3, 2, 1}); !reflect.DeepEqual(got, []int{3, 1, 2}) {
		t.Errorf("Unique = %v", got)
	}
}
