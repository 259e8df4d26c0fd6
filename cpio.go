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
	"bytes"
	"io"
)

type cpioState int

const (
	stateBetweenEntries cpioState = iota
	stateRegularReady
	stateSymlinkReady
	stateGhostReady
	stateExhausted
)

const (
	cpioRecordFixedLen = 110 //6-byte magic + 13*8 hex fields
	cpioExtRecordLen   = 14  //6-byte magic + 8-hex index; 4-byte alignment adds 2 padding bytes

	maxBinaryFnameLen = 4096
	maxSourceFnameLen = 256

	modeTypeMask = 0xF000
	modeLnk      = 0xA000
	modeDir      = 0x4000
)

//CpioEntry is the per-entry record handed back by CpioIterator.Next. The
//entry and its Fname are borrowed from the iterator and are only valid until
//the following Next or Close call.
type CpioEntry struct {
	Ino    uint32
	Nlink  uint16
	Mode   uint16
	Mtime  uint32
	FFlags uint32
	Size   uint64 //or linklen, for symlinks; 0 for ghost entries
	Fname  []byte

	isGhost bool
}

//IsGhost reports whether this entry was restored from the header alone
//(GhostEntryReady) rather than read from the cpio archive.
func (e *CpioEntry) IsGhost() bool { return e.isGhost }

//IsSymlink reports whether Size is a symlink target length to be read via
//Package.ReadLink, rather than regular file content read via Package.Read.
func (e *CpioEntry) IsSymlink() bool { return e.Mode&modeTypeMask == modeLnk }

//hardlinkTracker implements the state machine of spec.md §4.5 step 7.
type hardlinkTracker struct {
	open  bool
	ino   uint32
	mode  uint16
	nlink uint16
	count uint16
}

//CpioIterator walks the "070701" cpio archive embedded in an RPM payload,
//reconciling each entry against a Header's FileIndex and tracking hardlink
//sets, per spec.md §4.5.
type CpioIterator struct {
	dc      *Decompressor
	h       *Header
	pkgName string

	state cpioState
	entry CpioEntry

	curPos int64
	endPos int64

	hl hardlinkTracker

	scratch  [cpioRecordFixedLen]byte
	fnameBuf []byte

	ghostCursor  int
	trailerSeen  bool
}

func newCpioIterator(dc *Decompressor, h *Header, pkgName string) *CpioIterator {
	return &CpioIterator{dc: dc, h: h, pkgName: pkgName, state: stateBetweenEntries}
}

func align4i64(n int64) int64 { return (n + 3) &^ 3 }

func (it *CpioIterator) err(kind ErrorKind, format string, args ...interface{}) error {
	return newErr(kind, it.pkgName, "", format, args...)
}

//readFull reads exactly len(buf) bytes from the decompressor, translating a
//clean EOF that leaves buf short into io.ErrUnexpectedEOF.
func (it *CpioIterator) readFull(buf []byte) error {
	n := 0
	for n < len(buf) {
		m, err := it.dc.Read(buf[n:])
		n += m
		if err != nil {
			if err == io.EOF {
				if n == len(buf) {
					return nil
				}
				return io.ErrUnexpectedEOF
			}
			return err
		}
	}
	return nil
}

//discard reads and throws away exactly n bytes from the decompressor.
func (it *CpioIterator) discard(n int64) error {
	var buf [4096]byte
	for n > 0 {
		chunk := int64(len(buf))
		if chunk > n {
			chunk = n
		}
		if err := it.readFull(buf[:chunk]); err != nil {
			return err
		}
		n -= chunk
	}
	return nil
}

//finishEntry advances past whatever the caller left unread of the previous
//entry, plus the 4-byte alignment padding (step 1 of spec.md §4.5).
func (it *CpioIterator) finishEntry() error {
	target := align4i64(it.endPos)
	skip := target - it.curPos
	if skip < 0 {
		return it.err(KindUsage, "cpio iterator advanced past its own entry")
	}
	if skip > 0 {
		if err := it.discard(skip); err != nil {
			return wrapErr(KindIO, it.pkgName, "", err, "skipping to next cpio record")
		}
		it.curPos = target
	}
	return nil
}

//Next drives the state machine to the following entry, or to end-of-stream
//(a nil entry, nil error) once the trailer and any restored ghost entries
//have all been emitted.
func (it *CpioIterator) Next() (*CpioEntry, error) {
	if it.state == stateExhausted {
		return nil, nil
	}
	if it.state != stateBetweenEntries {
		if err := it.finishEntry(); err != nil {
			return nil, err
		}
		it.state = stateBetweenEntries
	}

	if it.trailerSeen {
		return it.nextRestoredGhost()
	}

	var magic [6]byte
	if err := it.readFull(magic[:]); err != nil {
		return nil, wrapErr(KindIO, it.pkgName, "", err, "reading cpio record magic")
	}
	it.curPos += 6

	switch {
	case it.h.HasLongFileSizes && bytes.Equal(magic[:], []byte("07070X")):
		return it.readExtendedRecord()
	case bytes.Equal(magic[:], []byte("070701")):
		return it.readStandardRecord()
	default:
		return nil, it.err(KindCpio, "bad cpio magic %q", magic[:])
	}
}

//readExtendedRecord parses the "07070X" alternate record (step 2):
//6-byte magic (already consumed) + 8-hex file index. No file data follows;
//the 2 padding bytes up to the next 4-byte boundary are skipped by
//finishEntry on the following Next.
func (it *CpioIterator) readExtendedRecord() (*CpioEntry, error) {
	var buf [cpioExtRecordLen - 6]byte
	if err := it.readFull(buf[:]); err != nil {
		return nil, wrapErr(KindIO, it.pkgName, "", err, "reading extended cpio record")
	}
	it.curPos += int64(len(buf))

	idx, ok := decodeHex8(buf[:8])
	if !ok {
		return nil, it.err(KindCpio, "bad hex digit in extended cpio record index")
	}
	if int(idx) >= len(it.h.Files) {
		return nil, it.err(KindCpio, "extended cpio record references out-of-range file index %d", idx)
	}

	fi := &it.h.Files[int(idx)]
	if fi.seen {
		return nil, it.err(KindCpio, "file already present in payload")
	}
	fi.seen = true

	it.fnameBuf = append(it.fnameBuf[:0], it.h.Filename(int(idx))...)
	it.entry = CpioEntry{
		Ino:     it.h.Ext[idx].Inode,
		Nlink:   it.h.Ext[idx].Nlink,
		Mode:    fi.Mode,
		Mtime:   it.h.Ext[idx].Mtime,
		FFlags:  fi.FFlags,
		Size:    0,
		Fname:   it.fnameBuf,
		isGhost: true,
	}
	it.endPos = it.curPos
	it.state = stateGhostReady
	return &it.entry, nil
}

//readStandardRecord parses a full "070701" record (steps 3-9).
func (it *CpioIterator) readStandardRecord() (*CpioEntry, error) {
	buf := it.scratch[:104]
	if err := it.readFull(buf); err != nil {
		return nil, wrapErr(KindIO, it.pkgName, "", err, "reading cpio record fields")
	}
	it.curPos += 104

	var vals [13]uint32
	for i := 0; i < 13; i++ {
		v, ok := decodeHex8(buf[i*8 : i*8+8])
		if !ok {
			return nil, it.err(KindCpio, "bad hex digit in cpio record field %d", i)
		}
		vals[i] = v
	}
	ino, mode, nlink, mtime, filesize, namesize, checksum :=
		vals[0], vals[1], vals[4], vals[5], vals[6], vals[11], vals[12]
	if checksum != 0 {
		return nil, it.err(KindCpio, "non-zero cpio checksum")
	}
	if namesize < 1 {
		return nil, it.err(KindCpio, "zero-length cpio filename")
	}
	if nlink > 0xFFFF {
		return nil, it.err(KindCpio, "nlink %d exceeds 16 bits", nlink)
	}

	readLen := align4i64(cpioRecordFixedLen+int64(namesize)) - cpioRecordFixedLen
	raw := make([]byte, readLen)
	if err := it.readFull(raw); err != nil {
		return nil, wrapErr(KindIO, it.pkgName, "", err, "reading cpio filename")
	}
	it.curPos += readLen

	if raw[namesize-1] != 0 {
		return nil, it.err(KindCpio, "cpio filename missing NUL terminator")
	}
	rawName := raw[:namesize-1]

	if string(rawName) == "TRAILER!!!" {
		return it.reachTrailer()
	}

	fname, err := it.normalizeFilename(rawName)
	if err != nil {
		return nil, err
	}

	idx, ok := it.h.index.Find(fname)
	if !ok {
		return nil, it.err(KindCpio, "file %q not present in header filelist", fname)
	}
	fi := &it.h.Files[idx]
	if fi.seen {
		return nil, it.err(KindCpio, "file %q appears twice in payload", fname)
	}
	if uint32(fi.Mode) != mode {
		return nil, it.err(KindCpio, "mode mismatch for %q: cpio=%#o header=%#o", fname, mode, fi.Mode)
	}
	fi.seen = true

	size := uint64(filesize)
	isLink := mode&modeTypeMask == modeLnk
	isDir := mode&modeTypeMask == modeDir

	if err := it.handleHardlink(fname, ino, uint16(mode), uint16(nlink), isDir, &size); err != nil {
		return nil, err
	}

	if isLink {
		if size == 0 || size >= maxBinaryFnameLen {
			return nil, it.err(KindSymlink, "symlink %q has invalid target length %d", fname, size)
		}
	}

	it.entry = CpioEntry{
		Ino:     ino,
		Nlink:   uint16(nlink),
		Mode:    uint16(mode),
		Mtime:   mtime,
		FFlags:  fi.FFlags,
		Size:    size,
		Fname:   fname,
		isGhost: false,
	}
	it.endPos = it.curPos + int64(size)
	if isLink {
		it.state = stateSymlinkReady
	} else {
		it.state = stateRegularReady
	}
	return &it.entry, nil
}

//normalizeFilename implements step 4: binary packages strip a leading "./"
//(or accept a bare leading "/"); source packages use the bare basename.
func (it *CpioIterator) normalizeFilename(raw []byte) ([]byte, error) {
	it.fnameBuf = it.fnameBuf[:0]
	if it.h.IsSource {
		if len(raw) > maxSourceFnameLen {
			return nil, it.err(KindCpio, "source filename too long")
		}
		it.fnameBuf = append(it.fnameBuf, raw...)
		return it.fnameBuf, nil
	}

	switch {
	case bytes.HasPrefix(raw, []byte("./")):
		it.fnameBuf = append(it.fnameBuf, '/')
		it.fnameBuf = append(it.fnameBuf, raw[2:]...)
	case len(raw) > 0 && raw[0] == '/':
		it.fnameBuf = append(it.fnameBuf, raw...)
	default:
		return nil, it.err(KindCpio, "binary package filename %q missing './' or '/' prefix", raw)
	}
	if len(it.fnameBuf) > maxBinaryFnameLen {
		return nil, it.err(KindCpio, "filename too long")
	}
	return it.fnameBuf, nil
}

//handleHardlink implements step 7: obese/meager/fickle-mode/fickle-nlink
//set validation, folded in around the (already mode-checked) current record.
func (it *CpioIterator) handleHardlink(fname []byte, ino uint32, mode, nlink uint16, isDir bool, size *uint64) error {
	if it.hl.open && it.hl.count == it.hl.nlink && ino == it.hl.ino {
		return it.err(KindHardlink, "obese hardlink set at %q", fname)
	}
	if it.hl.open && it.hl.count == it.hl.nlink {
		it.hl = hardlinkTracker{}
	}

	partOfSet := !isDir && nlink > 1
	if !partOfSet {
		if it.hl.open && it.hl.count < it.hl.nlink {
			return it.err(KindHardlink, "meager hardlink set before %q", fname)
		}
		return nil
	}

	if mode&modeTypeMask == modeLnk {
		return it.err(KindHardlink, "hardlinked symlink at %q", fname)
	}

	if !it.hl.open {
		it.hl = hardlinkTracker{open: true, ino: ino, mode: mode, nlink: nlink, count: 1}
	} else {
		if it.hl.ino != ino || it.hl.mode != mode || it.hl.nlink != nlink {
			return it.err(KindHardlink, "fickle hardlink set at %q", fname)
		}
		it.hl.count++
	}

	if it.hl.count < it.hl.nlink {
		if it.h.HasLongFileSizes {
			*size = 0
		} else if *size != 0 {
			return it.err(KindHardlink, "non-terminal hardlink member %q carries nonzero size", fname)
		}
	}
	return nil
}

//reachTrailer implements step 5: validate no hardlink set is left open,
//require a clean decompressor tail, then begin ghost restoration.
func (it *CpioIterator) reachTrailer() (*CpioEntry, error) {
	if it.hl.open && it.hl.count < it.hl.nlink {
		return nil, it.err(KindHardlink, "meager hardlink set at end of archive")
	}
	var probe [1]byte
	n, err := it.dc.Read(probe[:])
	if err != nil && err != io.EOF {
		return nil, wrapErr(KindCodec, it.pkgName, "", err, "reading past cpio trailer")
	}
	if n > 0 {
		return nil, it.err(KindCodec, "trailing data after cpio trailer")
	}

	it.trailerSeen = true
	it.curPos = 0
	it.endPos = 0
	return it.nextRestoredGhost()
}

//nextRestoredGhost implements the post-trailer half of invariant 1 in
//spec.md §8: every header file never observed in the payload must be a
//%ghost file, restored here with no backing data.
func (it *CpioIterator) nextRestoredGhost() (*CpioEntry, error) {
	for it.ghostCursor < len(it.h.Files) {
		i := it.ghostCursor
		it.ghostCursor++
		fi := &it.h.Files[i]
		if fi.seen {
			continue
		}
		if !fi.IsGhost() {
			return nil, it.err(KindCpio, "file %q in header never appeared in payload", it.h.Filename(i))
		}
		fi.seen = true

		it.fnameBuf = append(it.fnameBuf[:0], it.h.Filename(i)...)
		var ino uint32
		var mtime uint32
		if it.h.HasLongFileSizes {
			ino = it.h.Ext[i].Inode
			mtime = it.h.Ext[i].Mtime
		}
		it.entry = CpioEntry{
			Ino:     ino,
			Nlink:   1,
			Mode:    fi.Mode,
			Mtime:   mtime,
			FFlags:  fi.FFlags,
			Size:    0,
			Fname:   it.fnameBuf,
			isGhost: true,
		}
		it.state = stateGhostReady
		return &it.entry, nil
	}

	it.state = stateExhausted
	return nil, nil
}

//Read copies decoded payload bytes for the current RegularEntryReady entry.
func (it *CpioIterator) Read(dst []byte) (int, error) {
	if it.state != stateRegularReady {
		return 0, it.err(KindUsage, "read called on non-regular entry")
	}
	remaining := it.endPos - it.curPos
	if remaining <= 0 {
		return 0, io.EOF
	}
	if int64(len(dst)) > remaining {
		dst = dst[:remaining]
	}
	n, err := it.dc.Read(dst)
	it.curPos += int64(n)
	if err != nil && err != io.EOF {
		return n, wrapErr(KindCodec, it.pkgName, "", err, "reading entry data")
	}
	return n, nil
}

//ReadLink reads the symlink target for the current SymlinkEntryReady entry,
//rejecting embedded NULs.
func (it *CpioIterator) ReadLink(dst []byte) (int, error) {
	if it.state != stateSymlinkReady {
		return 0, it.err(KindUsage, "readlink called on non-symlink entry")
	}
	linklen := int(it.entry.Size)
	if len(dst) < linklen {
		return 0, it.err(KindUsage, "readlink buffer too small: need %d, have %d", linklen, len(dst))
	}
	if err := it.readFull(dst[:linklen]); err != nil {
		return 0, wrapErr(KindIO, it.pkgName, "", err, "reading symlink target")
	}
	it.curPos += int64(linklen)
	if bytes.IndexByte(dst[:linklen], 0) >= 0 {
		return 0, it.err(KindSymlink, "embedded NUL in symlink target")
	}
	return linklen, nil
}
