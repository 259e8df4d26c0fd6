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
	"os"
	"path/filepath"
)

//Package is a handle on one opened RPM file: the PublicAPI surface of
//spec.md §4.6. It exclusively owns an fd, a BufferedReader, a Decompressor
//and a Header; none of it is safe for concurrent use from multiple
//goroutines, and none of it is shared between handles.
type Package struct {
	fd   *os.File
	br   *BufferedReader
	dc   *Decompressor
	hdr  *Header
	iter *CpioIterator

	name string
}

//Open opens name inside dir (conceptually "dirfd, path" per spec.md §4.6;
//Go has no portable fd-relative open without an extra syscall dependency,
//so dir is a directory path here instead of a raw descriptor), decodes the
//lead/signature/main header, and initializes the payload decompressor.
//On any failure, everything already acquired is released before returning.
func Open(dir, name string) (pkg *Package, err error) {
	path := filepath.Join(dir, name)
	fd, err := os.Open(path)
	if err != nil {
		return nil, wrapErr(KindIO, name, "", err, "opening package")
	}
	defer func() {
		if err != nil {
			fd.Close()
		}
	}()

	br := NewBufferedReader(fd)
	hdr, err := decodeHeader(br, name)
	if err != nil {
		return nil, err
	}

	dc, err := newDecompressor(br, hdr.Compressor)
	if err != nil {
		return nil, wrapErr(KindCodec, name, "", err, "initializing decompressor")
	}

	return &Package{
		fd:   fd,
		br:   br,
		dc:   dc,
		hdr:  hdr,
		iter: newCpioIterator(dc, hdr, name),
		name: name,
	}, nil
}

//Header exposes the decoded package header, e.g. for callers that want to
//walk the filelist independently of the cpio payload.
func (p *Package) Header() *Header { return p.hdr }

//Next advances to the following archive entry, returning nil once the
//trailer and any restored ghost entries have all been emitted.
func (p *Package) Next() (*CpioEntry, error) {
	return p.iter.Next()
}

//Read copies payload bytes for the entry most recently returned by Next.
func (p *Package) Read(dst []byte) (int, error) {
	return p.iter.Read(dst)
}

//ReadLink reads the symlink target for the entry most recently returned by
//Next.
func (p *Package) ReadLink(dst []byte) (int, error) {
	return p.iter.ReadLink(dst)
}

//Close tears the handle down in reverse acquisition order: decompressor,
//then fd. It is safe to call after any error from Open, Next, Read or
//ReadLink.
func (p *Package) Close() error {
	if p == nil {
		return nil
	}
	var dcErr error
	if p.dc != nil {
		dcErr = p.dc.Close()
	}
	fdErr := p.fd.Close()
	if dcErr != nil {
		return wrapErr(KindCodec, p.name, "", dcErr, "closing decompressor")
	}
	if fdErr != nil {
		return wrapErr(KindIO, p.name, "", fdErr, "closing package")
	}
	return nil
}
