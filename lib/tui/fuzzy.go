// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"sort"
	"strings"

	"github.com/junegunn/fzf/src/algo"
	"github.com/junegunn/fzf/src/util"
)

// fzf builds its scoring tables in algo.Init. Without it every
// pattern fails to match.
func init() {
	algo.Init("default")
}

// FuzzyResult is the outcome of matching one candidate.
type FuzzyResult struct {
	Matched bool
	Score   int

	// Positions are the rune indices of matched characters, for
	// highlighting.
	Positions []int
}

// NewSlab returns scratch memory for FuzzyMatch. Reusing one slab
// across a batch avoids per-candidate allocation. A slab must not be
// shared between goroutines.
func NewSlab() *util.Slab {
	return util.MakeSlab(100*1024, 2048)
}

// FuzzyMatch matches pattern against text case-insensitively using
// fzf's V2 algorithm. An empty pattern matches everything with score
// zero. slab may be nil.
func FuzzyMatch(text string, pattern []rune, slab *util.Slab) FuzzyResult {
	if len(pattern) == 0 {
		return FuzzyResult{Matched: true}
	}
	lowered := []rune(strings.ToLower(string(pattern)))
	chars := util.ToChars([]byte(text))
	result, positions := algo.FuzzyMatchV2(false, true, true, &chars, lowered, true, slab)
	if result.Start < 0 || result.Score <= 0 {
		return FuzzyResult{}
	}
	match := FuzzyResult{Matched: true, Score: result.Score}
	if positions != nil {
		match.Positions = append([]int(nil), *positions...)
		sort.Ints(match.Positions)
	}
	return match
}

// Ranked pairs a candidate with its match.
type Ranked[T any] struct {
	Item  T
	Match FuzzyResult
}

// Rank returns the items whose key matches query, best score first.
// Ties keep input order. An empty query returns every item in input
// order.
func Rank[T any](items []T, key func(T) string, query string) []Ranked[T] {
	pattern := []rune(strings.TrimSpace(query))
	slab := NewSlab()
	ranked := make([]Ranked[T], 0, len(items))
	for _, item := range items {
		match := FuzzyMatch(key(item), pattern, slab)
		if match.Matched {
			ranked = append(ranked, Ranked[T]{Item: item, Match: match})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Match.Score > ranked[j].Match.Score
	})
	return ranked
}
