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

//Package rpmfixture builds synthetic, minimal-but-valid RPM byte streams for
//exercising rpmcpio, adapting holo-build's own header/lead/signature/payload
//writers (originally used to emit real packages) into an in-memory fixture
//generator. The binary encoding idioms (big-endian struct writes, hex-coded
//cpio fields) are kept as-is; the surrounding package-description type
//(common.Package et al.) is replaced with a plain declarative File list.
package rpmfixture

import (
	"bytes"
	"encoding/binary"
)

//Tag and type numbers mirror the ones rpmcpio's header decoder looks for.
//Kept as a private, duplicated table rather than imported: rpmcpio's own
//tag constants are unexported, and a fixture-only package pulling in wire
//format numbers is normal even across real RPM tooling (rpmbuild, rpm2cpio,
//alien all keep their own copies).
const (
	rpmInt16Type       = 3
	rpmInt32Type       = 4
	rpmInt64Type       = 5
	rpmStringType      = 6
	rpmBinType         = 7
	rpmStringArrayType = 8

	RpmsigtagSize        = 1000
	RpmsigtagPayloadSize = 1007
	RpmsigtagSHA1        = 269
	RpmsigtagMD5         = 1004

	TagOldFileNames      = 1027
	TagFileSizes         = 1028
	TagFileModes         = 1030
	TagFileMtimes        = 1034
	TagFileFlags         = 1037
	TagFileUserName      = 1039
	TagFileGroupName     = 1040
	TagSourceRPM         = 1044
	TagFileInodes        = 1096
	TagDirIndexes        = 1116
	TagBaseNames         = 1117
	TagDirNames          = 1118
	TagPayloadCompressor = 1125
	TagLongFileSizes     = 5008
)

var headerBlockMagic = [8]byte{0x8E, 0xAD, 0xE8, 0x01, 0x00, 0x00, 0x00, 0x00}

type headerEntry struct {
	Tag, Type, Offset, Count uint32
}

//HeaderBuilder accumulates tag entries and their data-store bytes. Tags must
//be added in ascending numeric order: rpmcpio's decoder requires both tag
//and offset to strictly increase across the wire index, and offsets here
//are assigned as a monotonically advancing cursor into the data store.
type HeaderBuilder struct {
	entries []headerEntry
	data    bytes.Buffer
}

func (b *HeaderBuilder) add(tag, typ, count uint32, payload []byte) {
	off := uint32(b.data.Len())
	b.data.Write(payload)
	b.entries = append(b.entries, headerEntry{Tag: tag, Type: typ, Offset: off, Count: count})
}

//AddInt16Array adds a fixed-width INT16 array tag.
func (b *HeaderBuilder) AddInt16Array(tag uint32, values []uint16) {
	var buf bytes.Buffer
	for _, v := range values {
		binary.Write(&buf, binary.BigEndian, v)
	}
	b.add(tag, rpmInt16Type, uint32(len(values)), buf.Bytes())
}

//AddInt32Array adds a fixed-width INT32 array tag.
func (b *HeaderBuilder) AddInt32Array(tag uint32, values []uint32) {
	var buf bytes.Buffer
	for _, v := range values {
		binary.Write(&buf, binary.BigEndian, v)
	}
	b.add(tag, rpmInt32Type, uint32(len(values)), buf.Bytes())
}

//AddInt64Array adds a fixed-width INT64 array tag.
func (b *HeaderBuilder) AddInt64Array(tag uint32, values []uint64) {
	var buf bytes.Buffer
	for _, v := range values {
		binary.Write(&buf, binary.BigEndian, v)
	}
	b.add(tag, rpmInt64Type, uint32(len(values)), buf.Bytes())
}

//AddString adds a single NUL-terminated STRING tag.
func (b *HeaderBuilder) AddString(tag uint32, s string) {
	payload := append([]byte(s), 0)
	b.add(tag, rpmStringType, 1, payload)
}

//AddBinary adds a raw BIN tag (e.g. a digest).
func (b *HeaderBuilder) AddBinary(tag uint32, data []byte) {
	b.add(tag, rpmBinType, uint32(len(data)), data)
}

//AddStringArray adds a STRING_ARRAY tag: each element NUL-terminated and
//concatenated.
func (b *HeaderBuilder) AddStringArray(tag uint32, values []string) {
	var buf bytes.Buffer
	for _, s := range values {
		buf.WriteString(s)
		buf.WriteByte(0)
	}
	b.add(tag, rpmStringArrayType, uint32(len(values)), buf.Bytes())
}

//ToBinary serializes the magic, il/dl prefix, sorted index and data store.
func (b *HeaderBuilder) ToBinary() []byte {
	var buf bytes.Buffer
	buf.Write(headerBlockMagic[:])
	binary.Write(&buf, binary.BigEndian, uint32(len(b.entries)))
	binary.Write(&buf, binary.BigEndian, uint32(b.data.Len()))
	for _, e := range b.entries {
		binary.Write(&buf, binary.BigEndian, e.Tag)
		binary.Write(&buf, binary.BigEndian, e.Type)
		binary.Write(&buf, binary.BigEndian, e.Offset)
		binary.Write(&buf, binary.BigEndian, e.Count)
	}
	buf.Write(b.data.Bytes())
	return buf.Bytes()
}
