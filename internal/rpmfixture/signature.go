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
	"crypto/md5"
	"crypto/sha1"
	"encoding/hex"
)

//MakeSignatureSection produces a structurally valid signature block.
//rpmcpio never parses its contents beyond the il/dl bounds check, but the
//digests are computed anyway for texture, same as a real package would
//carry.
func MakeSignatureSection(headerSection, compressedPayload []byte) []byte {
	b := &HeaderBuilder{}

	b.AddInt32Array(RpmsigtagSize, []uint32{uint32(len(headerSection) + len(compressedPayload))})
	b.AddInt32Array(RpmsigtagPayloadSize, []uint32{uint32(len(compressedPayload))})

	sha1sum := sha1.Sum(headerSection)
	b.AddString(RpmsigtagSHA1, hex.EncodeToString(sha1sum[:]))

	md5digest := md5.New()
	md5digest.Write(headerSection)
	md5digest.Write(compressedPayload)
	b.AddBinary(RpmsigtagMD5, md5digest.Sum(nil))

	return b.ToBinary()
}
