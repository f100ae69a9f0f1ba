//
// Copyright (C) 2024 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package esam

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRecord(t *testing.T, name string, ref *sam.Reference, pos int, cigar []sam.CigarOp, seq string, aux ...sam.Aux) *sam.Record {
	t.Helper()
	r, err := sam.NewRecord(name, ref, nil, pos, -1, 0, 255, cigar, []byte(seq), nil, aux)
	require.NoError(t, err)
	return r
}

// newRef returns a reference linked to a header, as records require.
func newRef(t *testing.T, name string, length int) *sam.Reference {
	t.Helper()
	ref, err := sam.NewReference(name, "", "", length, nil, nil)
	require.NoError(t, err)
	_, err = sam.NewHeader(nil, []*sam.Reference{ref})
	require.NoError(t, err)
	return ref
}

func TestQueryWidth(t *testing.T) {
	ref := newRef(t, "txA", 100)

	r := newRecord(t, "r1", ref, 10, []sam.CigarOp{sam.NewCigarOp(sam.CigarMatch, 28)}, strings.Repeat("A", 28))
	assert.Equal(t, 28, QueryWidth(r))

	r = newRecord(t, "r2", ref, 10, []sam.CigarOp{
		sam.NewCigarOp(sam.CigarSoftClipped, 2),
		sam.NewCigarOp(sam.CigarMatch, 20),
		sam.NewCigarOp(sam.CigarDeletion, 3),
		sam.NewCigarOp(sam.CigarInsertion, 1),
		sam.NewCigarOp(sam.CigarMatch, 7),
		sam.NewCigarOp(sam.CigarHardClipped, 5),
	}, strings.Repeat("A", 30))
	assert.Equal(t, 30, QueryWidth(r))

	r = newRecord(t, "r3", nil, -1, nil, "ACGT")
	assert.Equal(t, 4, QueryWidth(r))
}

func TestFromRecord(t *testing.T) {
	ref := newRef(t, "txA", 100)
	wi, err := sam.NewAux(sam.NewTag("ZW"), int32(7))
	require.NoError(t, err)
	wf, err := sam.NewAux(sam.NewTag("ZF"), float32(0.5))
	require.NoError(t, err)

	r := newRecord(t, "r1", ref, 9, []sam.CigarOp{sam.NewCigarOp(sam.CigarMatch, 4)}, "ACGT", wi, wf)
	a := FromRecord(r, []byte("ZW"))
	assert.Equal(t, Alignment{Name: "r1", Ref: "txA", Pos: 10, Seq: "ACGT", Width: 4, Weight: 7, HasWeight: true}, a)

	a = FromRecord(r, []byte("ZF"))
	assert.Equal(t, 0.5, a.Weight)

	a = FromRecord(r, []byte("XX"))
	assert.False(t, a.HasWeight)

	a = FromRecord(r, nil)
	assert.True(t, a.HasWeight)
	assert.Equal(t, 1., a.Weight)

	// Character and unsigned byte tags
	wa, err := sam.NewAux(sam.NewTag("ZA"), sam.ASCII('5'))
	require.NoError(t, err)
	wx, err := sam.NewAux(sam.NewTag("ZX"), sam.ASCII('x'))
	require.NoError(t, err)
	wc, err := sam.NewAux(sam.NewTag("ZC"), uint8(5))
	require.NoError(t, err)
	r = newRecord(t, "r2", ref, 9, []sam.CigarOp{sam.NewCigarOp(sam.CigarMatch, 4)}, "ACGT", wa, wx, wc)
	a = FromRecord(r, []byte("ZA"))
	assert.True(t, a.HasWeight)
	assert.Equal(t, 5., a.Weight)
	a = FromRecord(r, []byte("ZX"))
	assert.False(t, a.HasWeight)
	a = FromRecord(r, []byte("ZC"))
	assert.Equal(t, 5., a.Weight)

	u := newRecord(t, "u1", nil, -1, nil, "ACGT")
	u.Flags |= sam.Unmapped
	a = FromRecord(u, nil)
	assert.Equal(t, "", a.Ref)
}

func TestOpenBAM(t *testing.T) {
	ref, err := sam.NewReference("txA", "", "", 100, nil, nil)
	require.NoError(t, err)
	h, err := sam.NewHeader(nil, []*sam.Reference{ref})
	require.NoError(t, err)

	p := filepath.Join(t.TempDir(), "reads.bam")
	f, err := os.Create(p)
	require.NoError(t, err)
	w, err := bam.NewWriter(f, h, 1)
	require.NoError(t, err)
	for i, pos := range []int{4, 10, 20} {
		r := newRecord(t, "r"+string(rune('0'+i)), ref, pos, []sam.CigarOp{sam.NewCigarOp(sam.CigarMatch, 4)}, "ACGT")
		require.NoError(t, w.Write(r))
	}
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())

	rr, err := Open(PathSAM{Path: p, Binary: true}, nil, 1)
	require.NoError(t, err)
	defer rr.Close()
	require.Len(t, rr.Header().Refs(), 1)

	var positions []int
	for {
		r, err := rr.Read()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		a := FromRecord(r, nil)
		assert.Equal(t, "txA", a.Ref)
		positions = append(positions, a.Pos)
	}
	assert.Equal(t, []int{5, 11, 21}, positions)
}

func TestOpenSAM(t *testing.T) {
	content := "@SQ\tSN:txA\tLN:100\nr1\t0\ttxA\t5\t255\t4M\t*\t0\t0\tACGT\t*\tZW:i:3\nr2\t4\t*\t0\t0\t*\t*\t0\t0\tACGT\t*\n"
	p := filepath.Join(t.TempDir(), "reads.sam")
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))

	rr, err := Open(PathSAM{Path: p}, nil, 1)
	require.NoError(t, err)
	defer rr.Close()

	r, err := rr.Read()
	require.NoError(t, err)
	a := FromRecord(r, []byte("ZW"))
	assert.Equal(t, "txA", a.Ref)
	assert.Equal(t, 5, a.Pos)
	assert.Equal(t, 3., a.Weight)

	r, err = rr.Read()
	require.NoError(t, err)
	assert.Equal(t, "", FromRecord(r, nil).Ref)

	_, err = rr.Read()
	assert.Equal(t, io.EOF, err)
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(PathSAM{Path: filepath.Join(t.TempDir(), "missing.bam"), Binary: true}, nil, 1)
	assert.Error(t, err)
}

func writeSAM(t *testing.T, n int) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("@SQ\tSN:txA\tLN:100\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "r%d\t0\ttxA\t5\t255\t4M\t*\t0\t0\tACGT\t*\n", i)
	}
	p := filepath.Join(t.TempDir(), "reads.sam")
	require.NoError(t, os.WriteFile(p, []byte(b.String()), 0644))
	return p
}

func TestOpenCommand(t *testing.T) {
	if _, err := exec.LookPath("cat"); err != nil {
		t.Skip("cat not found")
	}
	p := writeSAM(t, 10)
	rr, err := Open(PathSAM{Path: p}, []string{"cat"}, 1)
	require.NoError(t, err)
	var n int
	for {
		_, err := rr.Read()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		n++
	}
	assert.Equal(t, 10, n)
	assert.NoError(t, rr.Close())
}

func TestOpenCommandPartialRead(t *testing.T) {
	if _, err := exec.LookPath("cat"); err != nil {
		t.Skip("cat not found")
	}
	p := writeSAM(t, 50000)
	rr, err := Open(PathSAM{Path: p}, []string{"cat"}, 1)
	require.NoError(t, err)
	_, err = rr.Read()
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		// Exit status of the interrupted command is not checked
		rr.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("Close blocked on the command")
	}
}
