/*
	Copyright 2023 Google Inc.
	Licensed under the Apache License, Version 2.0 (the "License");
	you may not use this file except in compliance with the License.
	You may obtain a copy of the License at
		https://www.apache.org/licenses/LICENSE-2.0
	Unless required by applicable law or agreed to in writing, software
	distributed under the License is distributed on an "AS IS" BASIS,
	WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
	See the License for the specific language governing permissions and
	limitations under the License.
*/

// Package keyeddiff reconciles a previously-rendered list of items against
// a new one by key, partitioning them into entering, updating, and exiting
// sets.  Charts use the partition to decide which marks animate in, which
// move from their previous state, and which animate out.
package keyeddiff

// Enter is an item present only in the new list.
type Enter[T any] struct {
	Index int
	Item  T
}

// Update is an item present in both lists.
type Update[T any] struct {
	PrevIndex, Index int
	Prev, Item       T
}

// Exit is an item present only in the previous list.
type Exit[T any] struct {
	PrevIndex int
	Prev      T
}

// Result is the partition produced by Diff.  Enter and Update follow the
// order of the new list; Exit follows the order of the previous list.
type Result[T any] struct {
	Enter  []Enter[T]
	Update []Update[T]
	Exit   []Exit[T]
}

// Diff partitions prev and next by the provided key function.  Only the
// first occurrence of a key in either list participates; later duplicates
// are dropped.
func Diff[K comparable, T any](prev, next []T, key func(T) K) Result[T] {
	prevIdx := make(map[K]int, len(prev))
	for idx, item := range prev {
		k := key(item)
		if _, ok := prevIdx[k]; !ok {
			prevIdx[k] = idx
		}
	}
	var ret Result[T]
	seen := make(map[K]bool, len(next))
	outIdx := 0
	for _, item := range next {
		k := key(item)
		if seen[k] {
			continue
		}
		seen[k] = true
		if pi, ok := prevIdx[k]; ok {
			ret.Update = append(ret.Update, Update[T]{
				PrevIndex: pi,
				Index:     outIdx,
				Prev:      prev[pi],
				Item:      item,
			})
		} else {
			ret.Enter = append(ret.Enter, Enter[T]{
				Index: outIdx,
				Item:  item,
			})
		}
		outIdx++
	}
	for k, pi := range prevIdx {
		if !seen[k] {
			ret.Exit = append(ret.Exit, Exit[T]{PrevIndex: pi, Prev: prev[pi]})
		}
	}
	sortExits(ret.Exit)
	return ret
}

func sortExits[T any](exits []Exit[T]) {
	// Insertion sort; exit sets are small.
	for i := 1; i < len(exits); i++ {
		for j := i; j > 0 && exits[j].PrevIndex < exits[j-1].PrevIndex; j-- {
			exits[j], exits[j-1] = exits[j-1], exits[j]
		}
	}
}

// Keys returns the keys of next in order, with duplicates dropped.
func Keys[K comparable, T any](next []T, key func(T) K) []K {
	seen := map[K]bool{}
	ret := make([]K, 0, len(next))
	for _, item := range next {
		k := key(item)
		if !seen[k] {
			seen[k] = true
			ret = append(ret, k)
		}
	}
	return ret
}
