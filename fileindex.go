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

import "bytes"

//FileIndex binary-searches a Header's filelist by absolute filename, per
//spec.md §4.4. It is hot-started from the previous match, since payload
//entries arrive in nearly filelist order.
type FileIndex struct {
	h *Header

	prevFound int //-1 until the first successful find

	memoValid  bool
	memoDnOff  uint32
	memoResult int
}

func newFileIndex(h *Header) FileIndex {
	return FileIndex{h: h, prevFound: -1}
}

//Find looks up name (an absolute path for binary packages, a bare basename
//for source packages) and returns its file index, or false if absent.
func (fx *FileIndex) Find(name []byte) (int, bool) {
	n := len(fx.h.Files)
	if n == 0 {
		return 0, false
	}
	//the dirname memo is only valid for the query it was computed against
	fx.memoValid = false

	if probe := fx.prevFound + 1; probe >= 0 && probe < n {
		if fx.compare(probe, name) == 0 {
			fx.prevFound = probe
			return probe, true
		}
	}

	lo, hi := 0, n
	for lo < hi {
		mid := lo + (hi-lo)/2
		c := fx.compare(mid, name)
		switch {
		case c == 0:
			fx.prevFound = mid
			return mid, true
		case c < 0:
			lo = mid + 1
		default:
			hi = mid
		}
	}
	return 0, false
}

//compare returns candidate-vs-name ordering: negative if Files[i] sorts
//before name, positive if after, zero on equality.
func (fx *FileIndex) compare(i int, name []byte) int {
	fi := &fx.h.Files[i]
	if fi.dlen == 0 && fi.dn == 0 {
		//flat regime: source packages, or binary packages using OLDFILENAMES
		cand := fx.h.Strtab[fi.bn : fi.bn+fi.blen]
		return bytes.Compare(cand, name)
	}

	//split regime: query is an absolute path, split at the last '/' so that
	//dn keeps the trailing slash, matching how DIRNAMES entries are stored
	slash := bytes.LastIndexByte(name, '/')
	var dn, bn []byte
	if slash < 0 {
		bn = name
	} else {
		dn, bn = name[:slash+1], name[slash+1:]
	}

	fdn := fx.h.Strtab[fi.dn : fi.dn+fi.dlen]

	var dcmp int
	if fx.memoValid && fx.memoDnOff == fi.dn {
		dcmp = fx.memoResult
	} else {
		dcmp = bytes.Compare(fdn, dn)
		fx.memoValid = true
		fx.memoDnOff = fi.dn
		fx.memoResult = dcmp
	}
	if dcmp != 0 {
		return dcmp
	}

	fbn := fx.h.Strtab[fi.bn : fi.bn+fi.blen]
	return bytes.Compare(fbn, bn)
}
