//
// Copyright (C) 2024 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package region

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.sr.ht/~vejnar/CodonAbacus/lib/transcript"
)

func TestLocate(t *testing.T) {
	transcripts := []transcript.Transcript{
		{Name: "txA", UTR5Length: 3, CDSLength: 6, UTR3Length: 2},
		{Name: "txB", UTR5Length: 0, CDSLength: 3, UTR3Length: 0},
	}
	trees, err := BuildTrees(transcripts)
	require.NoError(t, err)

	tests := []struct {
		name string
		pos  int
		want Region
	}{
		{"txA", 0, Outside},
		{"txA", 1, UTR5},
		{"txA", 3, UTR5},
		{"txA", 4, CDS},
		{"txA", 9, CDS},
		{"txA", 10, UTR3},
		{"txA", 11, UTR3},
		{"txA", 12, Outside},
		{"txB", 1, CDS},
		{"txB", 3, CDS},
		{"txB", 4, Outside},
		{"txZ", 1, Outside},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, trees.Locate(tt.name, tt.pos), "%s:%d", tt.name, tt.pos)
	}
}

func TestRegionString(t *testing.T) {
	assert.Equal(t, "utr5", UTR5.String())
	assert.Equal(t, "cds", CDS.String())
	assert.Equal(t, "utr3", UTR3.String())
	assert.Equal(t, "outside", Outside.String())
	assert.Equal(t, "unknown", Region(9).String())
}
