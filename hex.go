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

//hexDigitValue is the program-wide hex digit lookup table the cpio record
//parser uses to reject any non-hex character outright; -1 marks an invalid
//byte. A table beats a switch here since every one of the 13 fixed fields
//in a "070701" record is decoded one nibble at a time.
var hexDigitValue = func() [256]int8 {
	var tbl [256]int8
	for i := range tbl {
		tbl[i] = -1
	}
	for d := byte(0); d <= 9; d++ {
		tbl['0'+d] = int8(d)
	}
	for d := byte(0); d <= 5; d++ {
		tbl['a'+d] = int8(10 + d)
		tbl['A'+d] = int8(10 + d)
	}
	return tbl
}()

//decodeHex8 parses an 8-character big-endian hex field, as used throughout
//the "070701" cpio record. Any non-hex byte is rejected.
func decodeHex8(b []byte) (uint32, bool) {
	var v uint32
	for _, c := range b {
		d := hexDigitValue[c]
		if d < 0 {
			return 0, false
		}
		v = v<<4 | uint32(d)
	}
	return v, true
}
