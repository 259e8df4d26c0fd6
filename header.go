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
	"encoding/binary"
)

const (
	leadSize       = 96
	leadMagic      = 0xEDABEEDB
	headerBlockMagic = 0x8EADE801

	maxSignatureEntries = 32
	maxSignatureDataLen = 64 << 10
	maxHeaderEntries    = 65536
	maxHeaderDataLen    = 256 << 20

	maxFileCount = 16 << 20 //16 Mi, per spec.md §3

	maxCompressorNameLen = 32
)

//FileInfo is the per-file record kept in Header.Files, one per packaged
//file, in header (not payload) order. Strings are (offset, length) pairs
//into the owning Header's string table.
type FileInfo struct {
	bn, blen uint32 //basename
	dn, dlen uint32 //dirname; dlen == 0 for flat (source / OLDFILENAMES) packages

	Mode   uint16
	FFlags uint32

	nonRootUser  bool
	nonRootGroup bool
	seen         bool
}

//IsGhost reports whether this file is unpackaged (listed in the header but
//never materialized in the payload).
func (fi *FileInfo) IsGhost() bool { return fi.FFlags&fileFlagGhost != 0 }

//ExtendedFileInfo carries the fields that only exist when LONGFILESIZES is
//present: 48-bit sizes and precomputed hardlink counts.
type ExtendedFileInfo struct {
	Inode uint32
	Mtime uint32
	Size  uint64 //clamped to 48 bits
	Nlink uint16
}

//Header is the fully decoded lead + signature + main header of an RPM
//package: everything the CpioIterator needs to reconcile archive entries
//against the filelist, plus the FileIndex used to do so.
type Header struct {
	IsSource   bool //lead type == 1
	HasSourceRPM bool //SOURCERPM tag present (always the negation of IsSource, checked as a cross-tag invariant)
	HasLongFileSizes bool
	Compressor string

	Files  []FileInfo
	Ext    []ExtendedFileInfo //nil unless HasLongFileSizes
	Strtab []byte

	index FileIndex
}

//decodeHeader runs Stages 1-12 of spec.md §4.3 against br, which must be
//positioned at the start of the lead.
func decodeHeader(br *BufferedReader, pkgName string) (*Header, error) {
	h := &Header{}

	isSource, err := decodeLead(br, pkgName)
	if err != nil {
		return nil, err
	}
	h.IsSource = isSource

	if err := skipSignatureBlock(br, pkgName); err != nil {
		return nil, err
	}

	entries, dataLen, err := readHeaderPrefix(br, pkgName, maxHeaderEntries, maxHeaderDataLen)
	if err != nil {
		return nil, err
	}

	wanted, err := mergeScan(br, pkgName, entries)
	if err != nil {
		return nil, err
	}
	//the last matched tag's span runs to the end of the data store
	for i := len(wanted.slots) - 1; i >= 0; i-- {
		if s := &wanted.slots[i]; s.present {
			s.nextOffset = dataLen
			s.nextSet = true
			break
		}
	}

	d, err := crossValidate(pkgName, wanted, h.IsSource)
	if err != nil {
		return nil, err
	}
	h.HasSourceRPM = d.sourceRPM.present

	if err := allocate(h, d); err != nil {
		return nil, wrapErr(KindStructural, pkgName, "", err, "allocation failed")
	}

	if err := replayDataStore(br, pkgName, h, d, dataLen); err != nil {
		return nil, err
	}

	if d.fileUserName.present {
		applyOwnerCompression(h, d.fileUserName.scratch, &h.Files, true)
	}
	if d.fileGroupName.present {
		applyOwnerCompression(h, d.fileGroupName.scratch, &h.Files, false)
	}

	if h.HasLongFileSizes {
		precomputeHardlinks(h, d)
	}

	if d.payloadCompressor.present {
		name := string(bytes.TrimRight(d.payloadCompressor.scratch, "\x00"))
		if name == "" {
			return nil, newErr(KindStructural, pkgName, "", "PAYLOADCOMPRESSOR tag present but empty")
		}
		if len(name) > maxCompressorNameLen {
			return nil, newErr(KindStructural, pkgName, "", "PAYLOADCOMPRESSOR name too long")
		}
		h.Compressor = name
	} else {
		//spec.md §9: an early "lzma" default exists only to initialize the
		//variable; the observable outcome on absence is gzip.
		h.Compressor = "gzip"
	}

	if h.HasLongFileSizes {
		if err := applyLongFileSizes(h, d); err != nil {
			return nil, err
		}
	}

	if err := br.Skip(int64(dataLen) - int64(d.cursor)); err != nil {
		return nil, wrapErr(KindIO, pkgName, "", err, "seeking past header data store")
	}

	h.index = newFileIndex(h)
	return h, nil
}

//decodeLead parses the 96-byte lead (Stage 1) and returns whether this is a
//source package.
func decodeLead(br *BufferedReader, pkgName string) (bool, error) {
	var buf [leadSize]byte
	if err := br.Read(buf[:]); err != nil {
		return false, wrapErr(KindIO, pkgName, "", err, "reading lead")
	}
	magic := binary.BigEndian.Uint32(buf[0:4])
	if magic != leadMagic {
		return false, newErr(KindStructural, pkgName, "", "bad lead magic")
	}
	major := buf[4]
	if major != 3 && major != 4 {
		return false, newErr(KindStructural, pkgName, "", "unsupported lead version %d", major)
	}
	typ := binary.BigEndian.Uint16(buf[6:8])
	if typ != 0 && typ != 1 {
		return false, newErr(KindStructural, pkgName, "", "bad lead type %d", typ)
	}
	sigType := binary.BigEndian.Uint16(buf[78:80])
	if sigType != 5 {
		return false, newErr(KindStructural, pkgName, "", "bad lead signature_type %d", sigType)
	}
	return typ == 1, nil
}

//readHeaderPrefix reads the 16-byte header-block prefix (magic, il, dl)
//shared by Stage 2 and Stage 3, validating bounds.
func readHeaderPrefix(br *BufferedReader, pkgName string, maxEntries, maxData uint32) (uint32, uint32, error) {
	var buf [16]byte
	if err := br.Read(buf[:]); err != nil {
		return 0, 0, wrapErr(KindIO, pkgName, "", err, "reading header block prefix")
	}
	magic := binary.BigEndian.Uint32(buf[0:4])
	if magic != headerBlockMagic {
		return 0, 0, newErr(KindStructural, pkgName, "", "bad header block magic")
	}
	il := binary.BigEndian.Uint32(buf[8:12])
	dl := binary.BigEndian.Uint32(buf[12:16])
	if il > maxEntries {
		return 0, 0, newErr(KindStructural, pkgName, "", "header entry count %d exceeds limit", il)
	}
	if dl > maxData {
		return 0, 0, newErr(KindStructural, pkgName, "", "header data length %d exceeds limit", dl)
	}
	return il, dl, nil
}

func align8(n uint32) uint32 { return (n + 7) &^ 7 }
func align4(n uint32) uint32 { return (n + 3) &^ 3 }

//skipSignatureBlock handles Stage 2: the signature header is validated
//structurally but never parsed or verified.
func skipSignatureBlock(br *BufferedReader, pkgName string) error {
	il, dl, err := readHeaderPrefix(br, pkgName, maxSignatureEntries, maxSignatureDataLen)
	if err != nil {
		return err
	}
	span := 16*il + align8(dl)
	if err := br.Skip(int64(span)); err != nil {
		return wrapErr(KindIO, pkgName, "", err, "skipping signature block")
	}
	return nil
}

//wireEntry is one raw 16-byte index record as read from the wire.
type wireEntry struct {
	tag, typ, offset, count uint32
}

//tagSlot accumulates everything the merge-scan (Stage 4) learns about one
//wanted tag, plus the scratch buffer its data-store replay (Stage 7) fills.
type tagSlot struct {
	wantedTag
	scratch  []byte
	dirTable [][2]uint32 //only populated for the DIRNAMES slot
}

//decodedTags is the full set of tagSlots the merge-scan produced, indexed
//the same way as wantedTags() (ascending by tag).
type decodedTags struct {
	slots [15]tagSlot
	cursor uint32 //running data-store cursor, advanced by Stage 7

	oldFileNames, fileSizes, fileModes, fileMtimes, fileFlags *tagSlot
	fileUserName, fileGroupName, sourceRPM                    *tagSlot
	fileDevices, fileInodes, dirIndexes, baseNames, dirNames  *tagSlot
	payloadCompressor, longFileSizes                          *tagSlot
}

//mergeScan implements Stage 4: a single forward pass over the wire's sorted
//tag index, matched against the statically sorted wantedTags() table.
func mergeScan(br *BufferedReader, pkgName string, il uint32) (*decodedTags, error) {
	d := &decodedTags{}
	table := wantedTags()
	for i := range table {
		d.slots[i].wantedTag = table[i]
	}

	ti := 0 //index into d.slots, monotonically advancing
	var prevTag, prevOffset uint32
	var haveEntry bool

	for i := uint32(0); i < il; i++ {
		var buf [16]byte
		if err := br.Read(buf[:]); err != nil {
			return nil, wrapErr(KindIO, pkgName, "", err, "reading header index entry")
		}
		e := wireEntry{
			tag:    binary.BigEndian.Uint32(buf[0:4]),
			typ:    binary.BigEndian.Uint32(buf[4:8]),
			offset: binary.BigEndian.Uint32(buf[8:12]),
			count:  binary.BigEndian.Uint32(buf[12:16]),
		}
		if haveEntry {
			if e.tag <= prevTag {
				return nil, newErr(KindStructural, pkgName, "", "header tag order violation: %d after %d", e.tag, prevTag)
			}
			if e.offset <= prevOffset {
				return nil, newErr(KindStructural, pkgName, "", "header offset order violation for tag %d", e.tag)
			}
		}
		prevTag, prevOffset, haveEntry = e.tag, e.offset, true

		for ti < len(d.slots) && d.slots[ti].tag < e.tag {
			ti++
		}
		if ti < len(d.slots) && d.slots[ti].tag == e.tag {
			slot := &d.slots[ti]
			if slot.present {
				return nil, newErr(KindStructural, pkgName, "", "duplicate tag %d", e.tag)
			}
			if e.typ != slot.typ {
				return nil, newErr(KindStructural, pkgName, "", "tag %d has wrong wire type %d", e.tag, e.typ)
			}
			if e.count == 0 {
				return nil, newErr(KindStructural, pkgName, "", "tag %d has zero count", e.tag)
			}
			slot.present = true
			slot.offset = e.offset
			slot.count = e.count
			//patch the previously matched slot's nextOffset span now that we
			//know where it ends
			for j := ti - 1; j >= 0; j-- {
				if d.slots[j].present && !d.slots[j].nextSet {
					d.slots[j].nextOffset = e.offset
					d.slots[j].nextSet = true
					break
				}
			}
		}
	}

	d.oldFileNames = &d.slots[0]
	d.fileSizes = &d.slots[1]
	d.fileModes = &d.slots[2]
	d.fileMtimes = &d.slots[3]
	d.fileFlags = &d.slots[4]
	d.fileUserName = &d.slots[5]
	d.fileGroupName = &d.slots[6]
	d.sourceRPM = &d.slots[7]
	d.fileDevices = &d.slots[8]
	d.fileInodes = &d.slots[9]
	d.dirIndexes = &d.slots[10]
	d.baseNames = &d.slots[11]
	d.dirNames = &d.slots[12]
	d.payloadCompressor = &d.slots[13]
	d.longFileSizes = &d.slots[14]

	return d, nil
}

//crossValidate implements Stage 5, failing on the first violated invariant.
func crossValidate(pkgName string, d *decodedTags, isSource bool) (*decodedTags, error) {
	hasOld := d.oldFileNames.present
	hasSplit := d.baseNames.present && d.dirNames.present && d.dirIndexes.present
	if hasOld == hasSplit {
		return nil, newErr(KindStructural, pkgName, "", "exactly one of OLDFILENAMES or BASENAMES+DIRNAMES+DIRINDEXES must be present")
	}
	if !d.fileModes.present || !d.fileFlags.present {
		return nil, newErr(KindStructural, pkgName, "", "missing FILEMODES or FILEFLAGS")
	}
	fileCount := d.fileModes.count
	if d.fileFlags.count != fileCount {
		return nil, newErr(KindStructural, pkgName, "", "FILEFLAGS count %d != FILEMODES count %d", d.fileFlags.count, fileCount)
	}
	if fileCount > maxFileCount {
		return nil, newErr(KindStructural, pkgName, "", "file count %d exceeds cap", fileCount)
	}
	if hasOld && d.oldFileNames.count != fileCount {
		return nil, newErr(KindStructural, pkgName, "", "OLDFILENAMES count mismatch")
	}
	if hasSplit {
		if d.baseNames.count != fileCount || d.dirIndexes.count != fileCount {
			return nil, newErr(KindStructural, pkgName, "", "BASENAMES/DIRINDEXES count mismatch")
		}
		if d.dirNames.count > d.baseNames.count {
			return nil, newErr(KindStructural, pkgName, "", "dirnames_count > basenames_count")
		}
	}

	hasLFS := d.longFileSizes.present
	if hasLFS {
		if d.fileSizes.present {
			return nil, newErr(KindStructural, pkgName, "", "FILESIZES present alongside LONGFILESIZES")
		}
		if !d.fileMtimes.present || d.fileMtimes.count != fileCount {
			return nil, newErr(KindStructural, pkgName, "", "FILEMTIMES count mismatch under LONGFILESIZES")
		}
		if d.longFileSizes.count != fileCount {
			return nil, newErr(KindStructural, pkgName, "", "LONGFILESIZES count mismatch")
		}
		if !d.fileInodes.present || d.fileInodes.count != fileCount {
			return nil, newErr(KindStructural, pkgName, "", "FILEINODES count mismatch under LONGFILESIZES")
		}
	} else {
		if !d.fileSizes.present || d.fileSizes.count != fileCount {
			return nil, newErr(KindStructural, pkgName, "", "FILESIZES count mismatch")
		}
	}

	hasSourceRPM := d.sourceRPM.present
	if isSource == hasSourceRPM {
		return nil, newErr(KindStructural, pkgName, "", "SOURCERPM presence does not match lead type")
	}

	return d, nil
}

//allocate implements Stage 6: size Header.Files/Ext/Strtab in one shot.
func allocate(h *Header, d *decodedTags) error {
	fileCount := int(d.fileModes.count)
	h.HasLongFileSizes = d.longFileSizes.present
	h.Files = make([]FileInfo, fileCount)
	if h.HasLongFileSizes {
		h.Ext = make([]ExtendedFileInfo, fileCount)
	}

	strtabLen := uint32(1) //reserved zero byte at offset 0
	if d.oldFileNames.present {
		strtabLen += spanOf(d.oldFileNames)
	}
	if d.baseNames.present {
		strtabLen += spanOf(d.baseNames)
	}
	if d.dirNames.present {
		strtabLen += spanOf(d.dirNames)
	}
	h.Strtab = make([]byte, 1, strtabLen)
	h.Strtab[0] = 0
	return nil
}

func spanOf(s *tagSlot) uint32 {
	if !s.nextSet {
		return 0
	}
	return s.nextOffset - s.offset
}

//replayDataStore implements Stage 7: walk the data store in tag (== offset)
//order, skipping to each tag's recorded offset and reading its span.
func replayDataStore(br *BufferedReader, pkgName string, h *Header, d *decodedTags, dl uint32) error {
	//order slots by offset (== tag order, since the wire guarantees both)
	order := make([]*tagSlot, 0, len(d.slots))
	for i := range d.slots {
		if d.slots[i].present {
			order = append(order, &d.slots[i])
		}
	}

	readSlot := func(s *tagSlot) error {
		if s.offset < d.cursor {
			return newErr(KindStructural, pkgName, "", "data store offsets out of order")
		}
		if err := br.Skip(int64(s.offset - d.cursor)); err != nil {
			return wrapErr(KindIO, pkgName, "", err, "seeking to tag data")
		}
		span := spanOf(s)
		s.scratch = make([]byte, span)
		if span > 0 {
			if err := br.Read(s.scratch); err != nil {
				return wrapErr(KindIO, pkgName, "", err, "reading tag data")
			}
		}
		d.cursor = s.offset + span
		return nil
	}

	for _, s := range order {
		if err := readSlot(s); err != nil {
			return err
		}
	}

	fileCount := len(h.Files)

	if d.oldFileNames.present {
		if err := loadOldFileNames(h, d.oldFileNames, fileCount); err != nil {
			return wrapErr(KindStructural, pkgName, "", err, "OLDFILENAMES")
		}
	}
	if d.baseNames.present {
		if err := loadBaseNames(h, d.baseNames, fileCount); err != nil {
			return wrapErr(KindStructural, pkgName, "", err, "BASENAMES")
		}
	}
	if d.dirNames.present {
		if err := loadDirNames(h, d.dirNames); err != nil {
			return wrapErr(KindStructural, pkgName, "", err, "DIRNAMES")
		}
		if err := rewriteDirIndexes(h, d.dirIndexes, fileCount); err != nil {
			return wrapErr(KindStructural, pkgName, "", err, "DIRINDEXES")
		}
	}

	for i := 0; i < fileCount; i++ {
		h.Files[i].Mode = binary.BigEndian.Uint16(d.fileModes.scratch[i*2:])
		h.Files[i].FFlags = binary.BigEndian.Uint32(d.fileFlags.scratch[i*4:])
	}

	return nil
}

//appendStrtabArena copies a span into the string table and returns its base
//offset.
func appendStrtabArena(h *Header, span []byte) uint32 {
	base := uint32(len(h.Strtab))
	h.Strtab = append(h.Strtab, span...)
	return base
}

//loadOldFileNames handles the flat (source-package) filelist: every string
//goes straight into FileInfo.bn/blen, dn/dlen stay zero.
func loadOldFileNames(h *Header, s *tagSlot, fileCount int) error {
	base := appendStrtabArena(h, s.scratch)
	off := base
	for i := 0; i < fileCount; i++ {
		str, n, err := nextNullTerminated(h.Strtab, off)
		if err != nil {
			return err
		}
		h.Files[i].bn = str
		h.Files[i].blen = n
		off += n + 1
	}
	return nil
}

//loadBaseNames copies BASENAMES into the arena and records (offset, length)
//per file.
func loadBaseNames(h *Header, s *tagSlot, fileCount int) error {
	base := appendStrtabArena(h, s.scratch)
	off := base
	for i := 0; i < fileCount; i++ {
		str, n, err := nextNullTerminated(h.Strtab, off)
		if err != nil {
			return err
		}
		h.Files[i].bn = str
		h.Files[i].blen = n
		off += n + 1
	}
	return nil
}

//loadDirNames copies DIRNAMES into the arena; DIRINDEXES rewriting happens
//separately once this table of (offset,length) pairs exists.
func loadDirNames(h *Header, s *tagSlot) error {
	base := appendStrtabArena(h, s.scratch)
	off := base
	dirs := make([][2]uint32, s.count)
	for i := uint32(0); i < s.count; i++ {
		str, n, err := nextNullTerminated(h.Strtab, off)
		if err != nil {
			return err
		}
		if n == 0 || h.Strtab[str] != '/' {
			return newErr(KindStructural, "", "", "dirname does not start with '/'")
		}
		dirs[i] = [2]uint32{str, n}
		off += n + 1
	}
	s.dirTable = dirs
	return nil
}

//rewriteDirIndexes implements the second half of Stage 7: DIRINDEXES values
//are stashed as raw indices during the merge-scan/allocate passes, then
//rewritten in place to direct (offset, length) pairs once DIRNAMES is
//available.
func rewriteDirIndexes(h *Header, s *tagSlot, fileCount int) error {
	dirCount := uint32(len(s.dirTable))
	for i := 0; i < fileCount; i++ {
		idx := binary.BigEndian.Uint32(s.scratch[i*4:])
		if idx >= dirCount {
			return newErr(KindStructural, "", "", "DIRINDEXES value %d out of range", idx)
		}
		pair := s.dirTable[idx]
		h.Files[i].dn = pair[0]
		h.Files[i].dlen = pair[1]
	}
	return nil
}

//nextNullTerminated scans a NUL-terminated string starting at off within
//buf, returning its start offset and length (excluding the NUL).
func nextNullTerminated(buf []byte, off uint32) (uint32, uint32, error) {
	i := off
	for int(i) < len(buf) {
		if buf[i] == 0 {
			return off, i - off, nil
		}
		i++
	}
	return 0, 0, newErr(KindStructural, "", "", "unterminated string in data store")
}

//applyOwnerCompression implements Stage 8: FILEUSERNAME/FILEGROUPNAME are
//reduced to a single non-root bit per file; the strings themselves are not
//retained.
func applyOwnerCompression(h *Header, scratch []byte, files *[]FileInfo, isUser bool) {
	off := uint32(0)
	for i := range *files {
		j := off
		for int(j) < len(scratch) && scratch[j] != 0 {
			j++
		}
		nonRoot := !(j-off == 4 && string(scratch[off:j]) == "root")
		if isUser {
			(*files)[i].nonRootUser = nonRoot
		} else {
			(*files)[i].nonRootGroup = nonRoot
		}
		off = j + 1
	}
}

//precomputeHardlinks implements Stage 9: group FILEINODES, imprinting
//nlink on every member of a run of length >= 2. Only runs among regular,
//non-ghost files participate.
func precomputeHardlinks(h *Header, d *decodedTags) {
	fileCount := len(h.Files)
	inodes := make([]uint32, fileCount)
	for i := 0; i < fileCount; i++ {
		inodes[i] = binary.BigEndian.Uint32(d.fileInodes.scratch[i*4:])
		h.Ext[i].Inode = inodes[i]
		h.Ext[i].Mtime = binary.BigEndian.Uint32(d.fileMtimes.scratch[i*4:])
		h.Ext[i].Nlink = 1
	}

	sorted := true
	for i := 1; i < fileCount; i++ {
		if inodes[i] <= inodes[i-1] {
			sorted = false
			break
		}
	}
	if sorted {
		return
	}

	type pair = struct{ inode uint32; idx int }
	pairs := make([]pair, 0, fileCount)
	for i, ino := range inodes {
		fi := &h.Files[i]
		if fi.IsGhost() || fi.Mode&modeTypeMask != 0x8000 {
			continue //only regular, non-ghost files form hardlink runs
		}
		pairs = append(pairs, pair{ino, i})
	}
	stableSortPairs(pairs)

	i := 0
	for i < len(pairs) {
		j := i + 1
		for j < len(pairs) && pairs[j].inode == pairs[i].inode {
			j++
		}
		run := pairs[i:j]
		if len(run) >= 2 {
			n := uint16(len(run))
			if len(run) > 0xFFFF {
				n = 0xFFFF
			}
			for _, p := range run {
				if h.Files[p.idx].IsGhost() {
					continue
				}
				h.Ext[p.idx].Nlink = n
			}
		}
		i = j
	}
}

//stableSortPairs is an in-place insertion sort: hardlink runs are expected
//to be short, and this keeps precomputeHardlinks allocation-free beyond the
//one slice already made.
func stableSortPairs(p []struct {
	inode uint32
	idx   int
}) {
	for i := 1; i < len(p); i++ {
		v := p[i]
		j := i - 1
		for j >= 0 && p[j].inode > v.inode {
			p[j+1] = p[j]
			j--
		}
		p[j+1] = v
	}
}

//applyLongFileSizes implements Stage 11: 64-bit sizes clamped to 48 bits,
//applied uniformly to every file including symlinks (spec.md §9).
func applyLongFileSizes(h *Header, d *decodedTags) error {
	const mask48 = (uint64(1) << 48) - 1
	for i := range h.Files {
		v := binary.BigEndian.Uint64(d.longFileSizes.scratch[i*8:])
		h.Ext[i].Size = v & mask48
	}
	return nil
}

//Filename reconstructs the absolute (binary package) or bare (source
//package) filename for file i.
func (h *Header) Filename(i int) []byte {
	fi := &h.Files[i]
	if fi.dlen == 0 && fi.dn == 0 {
		return h.Strtab[fi.bn : fi.bn+fi.blen]
	}
	out := make([]byte, 0, fi.dlen+fi.blen)
	out = append(out, h.Strtab[fi.dn:fi.dn+fi.dlen]...)
	out = append(out, h.Strtab[fi.bn:fi.bn+fi.blen]...)
	return out
}
