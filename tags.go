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

//Tag type codes, as used in the type field of a header index entry
//(wireEntry.typ). [LSB, 25.2.2.2.1]
const (
	rpmInt16Type      = 3
	rpmInt32Type      = 4
	rpmInt64Type      = 5
	rpmStringType     = 6
	rpmStringArrayType = 8
)

//Tags consumed by the header decoder. Kept in ascending order: the merge-scan
//in mergeScan() relies on this table being sorted, and on wantedTags()
//producing a fresh copy every call since decoding mutates offsets/counts.
const (
	tagOldFileNames      = 1027
	tagFileSizes         = 1028
	tagFileModes         = 1030
	tagFileMtimes        = 1034
	tagFileFlags         = 1037
	tagFileUserName      = 1039
	tagFileGroupName     = 1040
	tagSourceRPM         = 1044
	tagFileDevices       = 1095
	tagFileInodes        = 1096
	tagDirIndexes        = 1116
	tagBaseNames         = 1117
	tagDirNames          = 1118
	tagPayloadCompressor = 1125
	tagLongFileSizes     = 5008
)

//fileFlagGhost is the FILEFLAGS bit that marks a file as unpackaged (listed
//in the header, but never materialized in the payload). [LSB, 25.2.4.14]
const fileFlagGhost = 1 << 6

//wantedTag is one entry of the static, sorted table that mergeScan()
//merge-scans against the wire index. offset/count/present are filled in as
//matches are found; nextOffset is patched in by the entry that follows it
//(or by dl, for whichever tag matched last).
type wantedTag struct {
	tag        uint32
	typ        uint32
	offset     uint32
	count      uint32
	nextOffset uint32
	present    bool
	nextSet    bool
}

//wantedTags returns a fresh, tag-ascending table of every tag the header
//decoder looks for. Must stay sorted to match the merge-scan in mergeScan().
func wantedTags() []wantedTag {
	return []wantedTag{
		{tag: tagOldFileNames, typ: rpmStringArrayType},
		{tag: tagFileSizes, typ: rpmInt32Type},
		{tag: tagFileModes, typ: rpmInt16Type},
		{tag: tagFileMtimes, typ: rpmInt32Type},
		{tag: tagFileFlags, typ: rpmInt32Type},
		{tag: tagFileUserName, typ: rpmStringArrayType},
		{tag: tagFileGroupName, typ: rpmStringArrayType},
		{tag: tagSourceRPM, typ: rpmStringType},
		{tag: tagFileDevices, typ: rpmInt32Type},
		{tag: tagFileInodes, typ: rpmInt32Type},
		{tag: tagDirIndexes, typ: rpmInt32Type},
		{tag: tagBaseNames, typ: rpmStringArrayType},
		{tag: tagDirNames, typ: rpmStringArrayType},
		{tag: tagPayloadCompressor, typ: rpmStringType},
		{tag: tagLongFileSizes, typ: rpmInt64Type},
	}
}
