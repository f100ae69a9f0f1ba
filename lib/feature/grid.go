//
// Copyright (C) 2024 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package feature

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Grid lists the 5' and 3' digest lengths enumerated for each codon.
type Grid struct {
	D5 []int
	D3 []int
}

// Size returns the number of (d5, d3) pairs.
func (g Grid) Size() int {
	return len(g.D5) * len(g.D3)
}

func (g Grid) String() string {
	return fmt.Sprintf("d5=%v d3=%v", g.D5, g.D3)
}

// ParseGrid parses 5' and 3' digest lengths. Each is a comma separated list of lengths or inclusive ranges (e.g. "15:18" or "9,10,12").
func ParseGrid(d5Raw, d3Raw string) (g Grid, err error) {
	if g.D5, err = ParseLengths(d5Raw); err != nil {
		return g, fmt.Errorf("d5: %w", err)
	}
	if g.D3, err = ParseLengths(d3Raw); err != nil {
		return g, fmt.Errorf("d3: %w", err)
	}
	return g, nil
}

// ParseLengths parses a comma separated list of lengths or inclusive ranges. Lengths are returned sorted without duplicates.
func ParseLengths(raw string) ([]int, error) {
	seen := make(map[int]bool)
	var lengths []int
	add := func(l int) {
		if !seen[l] {
			seen[l] = true
			lengths = append(lengths, l)
		}
	}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if lo, hi, ok := strings.Cut(part, ":"); ok {
			start, err := strconv.Atoi(strings.TrimSpace(lo))
			if err != nil {
				return nil, err
			}
			end, err := strconv.Atoi(strings.TrimSpace(hi))
			if err != nil {
				return nil, err
			}
			if start > end || start < 0 {
				return nil, fmt.Errorf("invalid range %s", part)
			}
			for l := start; l <= end; l++ {
				add(l)
			}
		} else {
			l, err := strconv.Atoi(part)
			if err != nil {
				return nil, err
			}
			if l < 0 {
				return nil, fmt.Errorf("negative length %d", l)
			}
			add(l)
		}
	}
	if len(lengths) == 0 {
		return nil, fmt.Errorf("no length in %q", raw)
	}
	sort.Ints(lengths)
	return lengths, nil
}
