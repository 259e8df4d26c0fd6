/*******************************************************************************
*
* Copyright 2016 Stefan Majewsky <majewsky@gmx.net>
*
* This file is part of Holo.
*
* Holo is free software: you can redistribute it and/or modify it under the
* terms of the GNU General Public License as published by the Free Software
* Foundation, either version 3 of the License, or (at your option) any later
* version.
*
* Holo is distributed in the hope that it will be useful, but WITHOUT ANY
* WARRANTY; without even the implied warranty of MERCHANTABILITY or FITNESS FOR
* A PARTICULAR PURPOSE. See the GNU General Public License for more details.
*
* You should have received a copy of the GNU General Public License along with
* Holo. If not, see <http://www.gnu.org/licenses/>.
*
*******************************************************************************/

package rpmcpio

import "io"

//defaultBufferSize is the read-ahead window size for a fresh BufferedReader.
const defaultBufferSize = 32 * 1024

//BufferedReader is a read-ahead buffer over a file descriptor (or any
//io.Reader standing in for one), per spec.md §4.1. It is the only thing
//that ever calls Read on the underlying source; HeaderDecoder, Decompressor
//and CpioIterator all go through it.
type BufferedReader struct {
	src  io.Reader
	buf  []byte
	r, w int //buf[r:w] holds buffered, not-yet-consumed bytes
}

//NewBufferedReader wraps src in a BufferedReader with the default read-ahead
//window.
func NewBufferedReader(src io.Reader) *BufferedReader {
	return &BufferedReader{src: src, buf: make([]byte, defaultBufferSize)}
}

func (b *BufferedReader) compact() {
	if b.r == 0 {
		return
	}
	b.w = copy(b.buf, b.buf[b.r:b.w])
	b.r = 0
}

//fillAtLeast grows/compacts the buffer as needed and reads from src until at
//least n bytes are available, or src is exhausted (in which case it returns
//the io.Reader error, typically io.EOF, with whatever was buffered left in
//place for the caller to inspect).
func (b *BufferedReader) fillAtLeast(n int) error {
	if n > len(b.buf) {
		nb := make([]byte, n)
		b.w = copy(nb, b.buf[b.r:b.w])
		b.r = 0
		b.buf = nb
	} else {
		b.compact()
	}
	for b.w-b.r < n {
		m, err := b.src.Read(b.buf[b.w:])
		b.w += m
		if m > 0 {
			continue
		}
		if err == nil {
			//a zero-byte, nil-error read is legal per io.Reader's contract
			//but must not be treated as progress
			continue
		}
		return err
	}
	return nil
}

//Read fills p with exactly len(p) bytes, retrying short underlying reads
//until satisfied, or fails with io.ErrUnexpectedEOF (or the underlying
//error) if the source is exhausted first.
func (b *BufferedReader) Read(p []byte) error {
	need := len(p)
	if need == 0 {
		return nil
	}
	if need <= len(b.buf) {
		err := b.fillAtLeast(need)
		if b.w-b.r < need {
			if err == io.EOF || err == nil {
				return io.ErrUnexpectedEOF
			}
			return err
		}
		copy(p, b.buf[b.r:b.r+need])
		b.r += need
		return nil
	}
	//request larger than our window: drain what's buffered, then read the
	//remainder straight from the source
	n := copy(p, b.buf[b.r:b.w])
	b.r += n
	rest := p[n:]
	for len(rest) > 0 {
		m, err := b.src.Read(rest)
		rest = rest[m:]
		if len(rest) == 0 {
			return nil
		}
		if err != nil {
			if err == io.EOF {
				return io.ErrUnexpectedEOF
			}
			return err
		}
	}
	return nil
}

//Peek returns a borrowed view of at least n bytes without advancing the
//read position. At true EOF it returns whatever remains (which may be
//shorter than n, including empty) and a nil error: an empty return is the
//caller's signal that the source is exhausted.
func (b *BufferedReader) Peek(n int) ([]byte, error) {
	err := b.fillAtLeast(n)
	avail := b.w - b.r
	if avail < n {
		if err != nil && err != io.EOF {
			return nil, err
		}
		return b.buf[b.r : b.r+avail], nil
	}
	return b.buf[b.r : b.r+n], nil
}

//Skip advances n bytes, discarding buffered data first and issuing reads
//into a scratch sink for whatever remains.
func (b *BufferedReader) Skip(n int64) error {
	if n < 0 {
		panic("rpmcpio: negative skip")
	}
	avail := int64(b.w - b.r)
	if n <= avail {
		b.r += int(n)
		return nil
	}
	n -= avail
	b.r = b.w

	scratch := make([]byte, defaultBufferSize)
	for n > 0 {
		chunk := int64(len(scratch))
		if chunk > n {
			chunk = n
		}
		m, err := b.src.Read(scratch[:chunk])
		n -= int64(m)
		if m == 0 {
			if err == nil {
				continue
			}
			if err == io.EOF {
				return io.ErrUnexpectedEOF
			}
			return err
		}
	}
	return nil
}

//ReadSome is a partial, io.Reader-compatible pull used by Decompressor
//adapters: it returns whatever is already buffered, refilling the buffer at
//most once if it is currently empty. Unlike Read, short results are normal.
func (b *BufferedReader) ReadSome(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if b.r == b.w {
		if err := b.fillAtLeast(1); err != nil && b.w == b.r {
			return 0, err
		}
	}
	n := copy(p, b.buf[b.r:b.w])
	b.r += n
	return n, nil
}
