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

package rpmfixture

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"

	kgzip "github.com/klauspost/compress/gzip"
	"github.com/ulikunitz/xz"
	"github.com/ulikunitz/xz/lzma"
)

const (
	modeLnk = 0xA000
	modeDir = 0x4000

	fileFlagGhost = 1 << 6
)

type cpioHeader struct {
	Magic            [6]byte
	InodeNumber      [8]byte
	Mode             [8]byte
	UID              [8]byte
	GID              [8]byte
	NumberOfLinks    [8]byte
	ModificationTime [8]byte
	FileSize         [8]byte
	DevMajor         [8]byte
	DevMinor         [8]byte
	RdevMajor        [8]byte
	RdevMinor        [8]byte
	NameSize         [8]byte
	Checksum         [8]byte
}

var cpioMagic = [6]byte{'0', '7', '0', '7', '0', '1'}

var hexDigits = []byte("0123456789ABCDEF")

func cpioFormatInt(value uint32) [8]byte {
	var str [8]byte
	for idx := 7; idx >= 0; idx-- {
		str[idx] = hexDigits[value&0xF]
		value = value >> 4
	}
	return str
}

//cpioWriteData writes data followed by NUL padding out to the next 4-byte
//boundary, same as holo-build's original archive writer.
func cpioWriteData(buf *bytes.Buffer, data []byte) {
	buf.Write(data)
	for buf.Len()%4 != 0 {
		buf.Write([]byte{0})
	}
}

//File describes one packaged file for Builder. Name is an absolute path for
//binary packages ("/usr/bin/true") or a bare basename for source packages.
type File struct {
	Name       string
	Mode       uint32 //full st_mode including type bits
	Content    []byte
	LinkTarget string //set for symlinks (Mode&0xF000 == modeLnk)
	Ghost      bool
	Ino        uint32 //0 lets Builder assign one sequentially
	Nlink      uint16 //>1 groups consecutive same-ino entries into a hardlink set
}

func (f *File) isSymlink() bool { return f.Mode&0xF000 == modeLnk }

func (f *File) data() []byte {
	if f.isSymlink() {
		return []byte(f.LinkTarget)
	}
	return f.Content
}

//Builder assembles a minimal-but-structurally-valid RPM byte stream: lead,
//signature block, main header and a compressed "070701" cpio payload. It
//adapts holo-build's own header/lead/signature/payload writers (which built
//real installable packages) into an in-process fixture generator for
//rpmcpio's tests; the cpio record encoding (cpioHeader, cpioFormatInt,
//cpioWriteData) is kept verbatim from that writer.
type Builder struct {
	NVR           string
	IsSource      bool
	SourceRPMName string //defaults to NVR+".src.rpm" for binary packages
	Compressor    string //"", "gzip", "lzma" or "xz"; "" omits the PAYLOADCOMPRESSOR tag
	LongFileSizes bool
	Files         []File
}

//Build renders the full RPM byte stream.
func (b *Builder) Build() ([]byte, error) {
	cpioArchive := b.buildCpio()
	compressed, err := compress(b.effectiveCompressor(), cpioArchive)
	if err != nil {
		return nil, err
	}

	mainHeader := b.buildMainHeader().ToBinary()

	lead := NewLead(b.NVR, b.IsSource).ToBinary()
	sig := padTo8(MakeSignatureSection(mainHeader, compressed))

	var out bytes.Buffer
	out.Write(lead)
	out.Write(sig)
	out.Write(mainHeader)
	out.Write(compressed)
	return out.Bytes(), nil
}

func (b *Builder) effectiveCompressor() string {
	if b.Compressor == "" {
		return "gzip"
	}
	return b.Compressor
}

//buildCpio assembles every File into a "070701" cpio archive, skipping
//ghost files entirely (they are restored from the header alone) and
//zeroing the size on non-terminal hardlink-set members. With LongFileSizes
//set, each non-ghost file is written instead as a "07070X" record holding
//only its header file index, with no file data after it.
func (b *Builder) buildCpio() []byte {
	var buf bytes.Buffer
	cpioOne := cpioFormatInt(1)
	cpioZero := cpioFormatInt(0)

	hlSeen := map[uint32]uint16{}

	for i, f := range b.Files {
		if f.Ghost {
			continue
		}

		if b.LongFileSizes {
			idx := cpioFormatInt(uint32(i))
			buf.WriteString("07070X")
			buf.Write(idx[:])
			cpioWriteData(&buf, nil)
			continue
		}

		var name []byte
		if b.IsSource {
			name = append([]byte(f.Name), 0)
		} else {
			name = append([]byte("."+f.Name), 0)
		}

		ino := f.Ino
		if ino == 0 {
			ino = uint32(i + 1)
		}
		nlink := f.Nlink
		if nlink == 0 {
			nlink = 1
		}

		size := uint32(len(f.data()))
		if nlink > 1 {
			hlSeen[ino]++
			if hlSeen[ino] < nlink {
				size = 0
			}
		}

		header := cpioHeader{
			Magic:            cpioMagic,
			InodeNumber:      cpioFormatInt(ino),
			Mode:             cpioFormatInt(f.Mode),
			UID:              cpioZero,
			GID:              cpioZero,
			NumberOfLinks:    cpioFormatInt(uint32(nlink)),
			ModificationTime: cpioZero,
			FileSize:         cpioFormatInt(size),
			DevMajor:         cpioZero,
			DevMinor:         cpioZero,
			RdevMajor:        cpioZero,
			RdevMinor:        cpioZero,
			NameSize:         cpioFormatInt(uint32(len(name))),
			Checksum:         cpioZero,
		}
		binary.Write(&buf, binary.BigEndian, &header)
		cpioWriteData(&buf, name)
		if size > 0 {
			cpioWriteData(&buf, f.data()[:size])
		} else {
			cpioWriteData(&buf, nil)
		}
	}

	trailerName := append([]byte("TRAILER!!!"), 0)
	binary.Write(&buf, binary.BigEndian, &cpioHeader{
		Magic:         cpioMagic,
		InodeNumber:   cpioZero,
		Mode:          cpioZero,
		UID:           cpioZero,
		GID:           cpioZero,
		NumberOfLinks: cpioOne,
		FileSize:      cpioZero,
		DevMajor:      cpioZero,
		DevMinor:      cpioZero,
		RdevMajor:     cpioZero,
		RdevMinor:     cpioZero,
		NameSize:      cpioFormatInt(uint32(len(trailerName))),
		Checksum:      cpioZero,
	})
	cpioWriteData(&buf, trailerName)

	return buf.Bytes()
}

func padTo8(b []byte) []byte {
	for len(b)%8 != 0 {
		b = append(b, 0)
	}
	return b
}

func compress(algorithm string, data []byte) ([]byte, error) {
	var buf bytes.Buffer
	switch algorithm {
	case "gzip":
		w := kgzip.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
	case "lzma":
		w, err := lzma.NewWriter(&buf)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(data); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
	case "xz":
		w, err := xz.NewWriter(&buf)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(data); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("rpmfixture: unknown compressor %q", algorithm)
	}
	return buf.Bytes(), nil
}

//buildMainHeader lays out every tag in ascending numeric order, as
//rpmcpio's merge-scan requires.
func (b *Builder) buildMainHeader() *HeaderBuilder {
	hb := &HeaderBuilder{}
	n := len(b.Files)

	basenames := make([]string, n)
	dirnames := make([]string, n)
	for i, f := range b.Files {
		if b.IsSource {
			basenames[i] = f.Name
			continue
		}
		dir, base := splitPath(f.Name)
		dirnames[i] = dir
		basenames[i] = base
	}

	if b.IsSource {
		hb.AddStringArray(TagOldFileNames, basenames)
	}

	if !b.LongFileSizes {
		sizes := make([]uint32, n)
		for i, f := range b.Files {
			if !f.Ghost {
				sizes[i] = uint32(len(f.data()))
			}
		}
		hb.AddInt32Array(TagFileSizes, sizes)
	}

	modes := make([]uint16, n)
	for i, f := range b.Files {
		modes[i] = uint16(f.Mode)
	}
	hb.AddInt16Array(TagFileModes, modes)

	mtimes := make([]uint32, n)
	hb.AddInt32Array(TagFileMtimes, mtimes)

	flags := make([]uint32, n)
	for i, f := range b.Files {
		if f.Ghost {
			flags[i] = fileFlagGhost
		}
	}
	hb.AddInt32Array(TagFileFlags, flags)

	users := make([]string, n)
	groups := make([]string, n)
	for i := range b.Files {
		users[i] = "root"
		groups[i] = "root"
	}
	hb.AddStringArray(TagFileUserName, users)
	hb.AddStringArray(TagFileGroupName, groups)

	if !b.IsSource {
		srpm := b.SourceRPMName
		if srpm == "" {
			srpm = b.NVR + ".src.rpm"
		}
		hb.AddString(TagSourceRPM, srpm)
	}

	if b.LongFileSizes {
		inodes := make([]uint32, n)
		for i, f := range b.Files {
			ino := f.Ino
			if ino == 0 {
				ino = uint32(i + 1)
			}
			inodes[i] = ino
		}
		hb.AddInt32Array(TagFileInodes, inodes)
	}

	if !b.IsSource {
		dirList := uniqueStrings(dirnames)
		dirIndex := make(map[string]uint32, len(dirList))
		for i, d := range dirList {
			dirIndex[d] = uint32(i)
		}
		indexes := make([]uint32, n)
		for i, d := range dirnames {
			indexes[i] = dirIndex[d]
		}
		hb.AddInt32Array(TagDirIndexes, indexes)
		hb.AddStringArray(TagBaseNames, basenames)
		hb.AddStringArray(TagDirNames, dirList)
	}

	if b.Compressor != "" {
		hb.AddString(TagPayloadCompressor, b.Compressor)
	}

	if b.LongFileSizes {
		sizes := make([]uint64, n)
		for i, f := range b.Files {
			if !f.Ghost {
				sizes[i] = uint64(len(f.data()))
			}
		}
		hb.AddInt64Array(TagLongFileSizes, sizes)
	}

	return hb
}

func splitPath(name string) (dir, base string) {
	idx := strings.LastIndexByte(name, '/')
	if idx < 0 {
		return "/", name
	}
	return name[:idx+1], name[idx+1:]
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
