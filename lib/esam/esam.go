//
// Copyright © 2015 Charles E. Vejnar
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

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"
)

// PathSAM stores Path to SAM (Binary=false) or BAM (Binary=true) file.
type PathSAM struct {
	Path   string
	Binary bool
}

// Reader reads records from a SAM or BAM file.
type Reader struct {
	sam.RecordReader
	header  *sam.Header
	closers []io.Closer
	cmd     *exec.Cmd
}

// Header returns the SAM header.
func (r *Reader) Header() *sam.Header {
	return r.header
}

// Close releases the file, the decompressor and waits for the command if any.
func (r *Reader) Close() (err error) {
	for i := len(r.closers) - 1; i >= 0; i-- {
		if e := r.closers[i].Close(); e != nil && err == nil {
			err = e
		}
	}
	if r.cmd != nil {
		if e := r.cmd.Wait(); e != nil && err == nil {
			err = e
		}
	}
	return
}

// Open opens a SAM or BAM file. BAM decompression uses nThreads goroutines.
// If cmd is not empty, the SAM path is appended to cmd and the SAM is read from the command output.
func Open(pathSAM PathSAM, cmd []string, nThreads int) (*Reader, error) {
	r := &Reader{}
	if pathSAM.Binary {
		f, err := os.Open(pathSAM.Path)
		if err != nil {
			return nil, err
		}
		br, err := bam.NewReader(f, nThreads)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("opening BAM %s: %w", pathSAM.Path, err)
		}
		r.RecordReader, r.header = br, br.Header()
		r.closers = append(r.closers, f, br)
	} else if len(cmd) == 0 {
		f, err := os.Open(pathSAM.Path)
		if err != nil {
			return nil, err
		}
		sr, err := sam.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("opening SAM %s: %w", pathSAM.Path, err)
		}
		r.RecordReader, r.header = sr, sr.Header()
		r.closers = append(r.closers, f)
	} else {
		args := append(append([]string{}, cmd[1:]...), pathSAM.Path)
		p := exec.Command(cmd[0], args...)
		pp, err := p.StdoutPipe()
		if err != nil {
			return nil, err
		}
		if err = p.Start(); err != nil {
			return nil, err
		}
		sr, err := sam.NewReader(pp)
		if err != nil {
			pp.Close()
			p.Wait()
			return nil, fmt.Errorf("opening SAM from %s: %w", cmd[0], err)
		}
		r.RecordReader, r.header = sr, sr.Header()
		// Closing the pipe first stops a command still writing
		r.closers = append(r.closers, pp)
		r.cmd = p
	}
	return r, nil
}
