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

import (
	"io"

	kgzip "github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
	"github.com/ulikunitz/xz"
	"github.com/ulikunitz/xz/lzma"
)

//lzmaMemoryLimit bounds both the LZMA1 and xz/LZMA2 dictionary size, matching
//the 100 MiB limit of the reference implementation (spec.md §4.2).
const lzmaMemoryLimit = 100 << 20

//bufReaderAdapter exposes a BufferedReader as a plain io.Reader for the
//codec libraries, which expect ordinary (possibly short) pull reads rather
//than BufferedReader.Read's exact-fill contract.
type bufReaderAdapter struct{ br *BufferedReader }

func (a bufReaderAdapter) Read(p []byte) (int, error) { return a.br.ReadSome(p) }

//Decompressor is a pull-mode decoder presenting one contract across gzip,
//LZMA1 and xz payloads, per spec.md §4.2.
type Decompressor struct {
	algorithm string
	rc        io.ReadCloser
}

//newDecompressor initializes a Decompressor for the named algorithm
//("gzip", "lzma" or "xz"). An unknown algorithm name is a distinct failure
//from a codec that fails to initialize on the given stream.
func newDecompressor(br *BufferedReader, algorithm string) (*Decompressor, error) {
	src := bufReaderAdapter{br}
	switch algorithm {
	case "gzip":
		//klauspost/compress/gzip.Reader defaults to Multistream(true):
		//concatenated members are decoded transparently, resetting at each
		//member boundary, exactly as spec.md §4.2 requires.
		zr, err := kgzip.NewReader(src)
		if err != nil {
			return nil, errors.Wrap(err, "gzip: init failed")
		}
		return &Decompressor{algorithm: algorithm, rc: zr}, nil
	case "lzma":
		//bare LZMA1 ("lzma -F lzma") stream: no concatenation, relies on
		//the end-of-stream marker or the header-encoded uncompressed size.
		cfg := lzma.ReaderConfig{DictCap: lzmaMemoryLimit}
		lr, err := cfg.NewReader(src)
		if err != nil {
			return nil, errors.Wrap(err, "lzma: init failed")
		}
		return &Decompressor{algorithm: algorithm, rc: io.NopCloser(lr)}, nil
	case "xz":
		//SingleStream: false keeps concatenation enabled (the default);
		//DictCap is set from lzmaMemoryLimit, as in the LZMA1 case.
		cfg := xz.ReaderConfig{DictCap: lzmaMemoryLimit, SingleStream: false}
		xr, err := cfg.NewReader(src)
		if err != nil {
			return nil, errors.Wrap(err, "xz: init failed")
		}
		return &Decompressor{algorithm: algorithm, rc: io.NopCloser(xr)}, nil
	default:
		return nil, errors.Errorf("unknown payload compressor %q", algorithm)
	}
}

//Read decodes into dst until it is full or the underlying stream is
//exhausted; it returns 0 only on a clean end-of-stream. Decode failures are
//surfaced distinctly from I/O failures of the underlying reader by the
//caller inspecting the wrapped cause (see errors.go).
func (d *Decompressor) Read(dst []byte) (int, error) {
	n := 0
	for n < len(dst) {
		m, err := d.rc.Read(dst[n:])
		n += m
		if err == io.EOF {
			return n, err
		}
		if err != nil {
			return n, errors.Wrapf(err, "%s: decode failed", d.algorithm)
		}
	}
	return n, nil
}

//Close releases codec state.
func (d *Decompressor) Close() error {
	return d.rc.Close()
}
