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
)

//Lead is the 96-byte RPM lead.
type Lead struct {
	Magic              [4]byte
	Version            [2]byte
	Type               uint16
	Architecture       uint16
	NameVersionRelease [66]byte
	OperatingSystem    uint16
	SignatureType      uint16
	Reserved           [16]byte
}

//NewLead builds a lead for nvr, source being true for a source package
//(lead type 1) and false for a binary package (lead type 0).
func NewLead(nvr string, source bool) *Lead {
	l := &Lead{
		Magic:           [4]byte{0xed, 0xab, 0xee, 0xdb},
		Version:         [2]byte{0x03, 0x00},
		Architecture:    1,
		OperatingSystem: 1,
		SignatureType:   5,
	}
	if source {
		l.Type = 1
	}
	n := []byte(nvr)
	for idx := 0; idx < 65; idx++ {
		if idx < len(n) {
			l.NameVersionRelease[idx] = n[idx]
		}
	}
	return l
}

//ToBinary returns the 96-byte encoding of this lead.
func (l *Lead) ToBinary() []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, l)
	return buf.Bytes()
}
