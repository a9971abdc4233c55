package textfile

/*
BSD 3-Clause License

Copyright (c) 2020–21, Norbert Pillmayer

All rights reserved.

Redistribution and use in source and binary forms, with or without
modification, are permitted provided that the following conditions are met:

1. Redistributions of source code must retain the above copyright notice, this
list of conditions and the following disclaimer.

2. Redistributions in binary form must reproduce the above copyright notice,
this list of conditions and the following disclaimer in the documentation
and/or other materials provided with the distribution.

3. Neither the name of the copyright holder nor the names of its
contributors may be used to endorse or promote products derived from
this software without specific prior written permission.

THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS "AS IS"
AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE
IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE ARE
DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR CONTRIBUTORS BE LIABLE
FOR ANY DIRECT, INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR CONSEQUENTIAL
DAMAGES (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR
SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS INTERRUPTION) HOWEVER
CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN CONTRACT, STRICT LIABILITY,
OR TORT (INCLUDING NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH DAMAGE.
*/

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/guiguan/caster"
	"github.com/npillmayer/ropes"
	"github.com/npillmayer/ropes/charset"
	"golang.org/x/sync/errgroup"
)

// Some constants for fragment size defaults
const (
	twoKb     = 2048
	sixKb     = 6144
	tenKb     = 10240
	hundredKb = 102400
	oneMb     = 1048576
)

// maxReaders is the number of fragments read in parallel.
const maxReaders = 8

// ErrNotRegular is returned for paths which do not denote a regular file.
var ErrNotRegular = errors.New("file is not a regular file")

// ErrLoaded is returned if a Loader is asked to load a second time.
var ErrLoaded = errors.New("text file has already been loaded")

// Fragment is the progress event broadcast for each fragment read.
type Fragment struct {
	Index  int   // position of the fragment in the file, starting at 0
	Count  int   // total number of fragments
	Offset int64 // byte offset in the file
	Length int   // number of bytes read
}

// Loader loads one text file as a rope.
type Loader struct {
	path     string
	enc      *charset.Encoding
	info     os.FileInfo    // result from Stat(path)
	file     *os.File       // file handle
	fragSize int64          // fragment length, a multiple of 4
	cast     *caster.Caster // broadcaster for fragment events
	mx       sync.Mutex
	loaded   bool
}

// Open opens a file, which must be a regular file, for loading as a rope of
// encoding enc. Clients may indicate a recommended fragment length; if
// fragSize is 0, Open chooses one depending on the size of the file.
// Fragment lengths are rounded up to a multiple of 4 bytes.
//
// Cancelling ctx ends the broadcast of load progress.
func Open(ctx context.Context, name string, enc *charset.Encoding, fragSize int64) (*Loader, error) {
	if enc == nil {
		return nil, fmt.Errorf("loading %s without encoding: %w", name, ropes.ErrIllegalArguments)
	}
	fi, err := os.Stat(name)
	if err != nil {
		return nil, fmt.Errorf("cannot load text file: %w", err)
	} else if !fi.Mode().IsRegular() {
		return nil, fmt.Errorf("cannot load %s: %w", name, ErrNotRegular)
	}
	file, err := os.Open(name) // just open for read access
	if err != nil {
		return nil, fmt.Errorf("cannot load text file: %w", err)
	}
	l := &Loader{
		path:     name,
		enc:      enc,
		info:     fi,
		file:     file,
		fragSize: fragmentSize(fi.Size(), fragSize),
		cast:     caster.New(ctx),
	}
	tracer().Debugf("textfile: opened %s, %d bytes in %d fragments of %d",
		name, fi.Size(), l.Fragments(), l.fragSize)
	return l, nil
}

func fragmentSize(size, fragSize int64) int64 {
	if fragSize <= 0 || fragSize > tenKb {
		if size < 64 {
			fragSize = size
		} else if size < 1024 {
			fragSize = 64
		} else if size < tenKb {
			fragSize = 256
		} else if size < hundredKb {
			fragSize = 512
		} else if size < oneMb {
			fragSize = twoKb
		} else {
			fragSize = sixKb
		}
	}
	if r := fragSize % 4; r != 0 || fragSize == 0 {
		fragSize += 4 - r
	}
	return fragSize
}

// Size returns the size of the file in bytes.
func (l *Loader) Size() int64 {
	return l.info.Size()
}

// FragmentSize returns the number of bytes read per fragment.
func (l *Loader) FragmentSize() int64 {
	return l.fragSize
}

// Fragments returns the number of fragments the file is read in.
func (l *Loader) Fragments() int {
	return int((l.info.Size() + l.fragSize - 1) / l.fragSize)
}

// Subscribe returns a channel receiving a Fragment event for every fragment
// read. The channel is closed when loading has finished, or when ctx is
// done. Subscribers have to subscribe before calling Load. Events are dropped
// for subscribers which fall behind by more than the number of fragments.
func (l *Loader) Subscribe(ctx context.Context) <-chan Fragment {
	n := l.Fragments()
	out := make(chan Fragment, n)
	sub, ok := l.cast.Sub(ctx, uint(n)+1)
	if !ok {
		close(out)
		return out
	}
	go func() {
		defer close(out)
		for msg := range sub {
			f, ok := msg.(Fragment)
			if !ok {
				continue
			}
			select {
			case out <- f:
			default:
				tracer().Debugf("textfile: subscriber fell behind, dropping fragment %d", f.Index)
			}
		}
	}()
	return out
}

// Load reads the file and returns it as a balanced rope. Fragments are read
// concurrently. Load closes the file and ends the broadcast of events, thus
// it may be called only once.
func (l *Loader) Load(ctx context.Context) (*ropes.Rope, error) {
	l.mx.Lock()
	if l.loaded {
		l.mx.Unlock()
		return nil, ErrLoaded
	}
	l.loaded = true
	l.mx.Unlock()
	defer l.Close()
	//
	size := l.info.Size()
	buf := make([]byte, size)
	count := l.Fragments()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxReaders)
	for i := 0; i < count; i++ {
		pos := int64(i) * l.fragSize
		frag := buf[pos:min(pos+l.fragSize, size)]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			cnt, err := l.file.ReadAt(frag, pos)
			if err != nil && !(err == io.EOF && cnt == len(frag)) {
				if err == io.EOF {
					err = io.ErrUnexpectedEOF
				}
				return fmt.Errorf("error loading text fragment at %d of %s: %w", pos, l.path, err)
			}
			l.cast.Pub(Fragment{Index: i, Count: count, Offset: pos, Length: cnt})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		tracer().Errorf("textfile: %v", err)
		return nil, err
	}
	leaves := make([]*ropes.Rope, 0, count)
	start := 0
	for i := 1; i <= count; i++ {
		end := l.cut(buf, int64(i)*l.fragSize)
		if end > start {
			leaves = append(leaves, ropes.NewLeafDeferred(buf[start:end], l.enc))
		}
		start = end
	}
	r := ropes.Join(l.enc, leaves...)
	tracer().Debugf("textfile: loaded %s as rope of %d leaves, depth %d", l.path, len(leaves), r.Depth())
	return r, nil
}

// cut moves a fragment border to the closest preceding character boundary.
func (l *Loader) cut(buf []byte, border int64) int {
	if border >= int64(len(buf)) {
		return len(buf)
	}
	from := max(border-4, 0)
	window := buf[from:min(border+4, int64(len(buf)))]
	return int(from) + l.enc.SplitPoint(window, int(border-from))
}

// Close releases the file and ends the broadcast of events. Clients which
// decide not to call Load should call Close.
func (l *Loader) Close() error {
	l.cast.Close()
	return l.file.Close()
}

// Load reads a file, which must be a regular text file of encoding enc, and
// loads it as a rope. Clients may indicate a recommended fragment length, or
// leave it at 0 to let Load use sensible defaults.
func Load(ctx context.Context, name string, enc *charset.Encoding, fragSize int64) (*ropes.Rope, error) {
	l, err := Open(ctx, name, enc, fragSize)
	if err != nil {
		return nil, err
	}
	return l.Load(ctx)
}
