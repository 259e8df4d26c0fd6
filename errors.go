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
	"fmt"

	"github.com/pkg/errors"
)

//ErrorKind categorizes a failure the way spec.md §7 requires: every failure
//this package returns is tagged with exactly one of these.
type ErrorKind int

const (
	//KindIO covers underlying file-descriptor read/open failures.
	KindIO ErrorKind = iota
	//KindStructural covers malformed lead/header data: bad magic, bad
	//bounds, tag ordering violations, cross-tag mismatches, bad string
	//termination, out-of-range counts.
	KindStructural
	//KindCodec covers decompressor init failure and mid-stream decode
	//failure, including trailing garbage after a stream's logical end.
	KindCodec
	//KindCpio covers cpio record-level problems: bad magic, non-zero
	//checksum, bad hex digits, bad filename prefixes, filelist mismatches,
	//mode mismatches, unexpected extra entries.
	KindCpio
	//KindHardlink covers malformed hardlink sets (obese, meager, fickle
	//mode/nlink) and hardlinked symlinks.
	KindHardlink
	//KindSymlink covers zero-length/overlong symlink targets and embedded
	//NULs in a readlink buffer.
	KindSymlink
	//KindUsage covers API misuse: read/readlink called against the wrong
	//entry kind, or a readlink buffer too small for the target.
	KindUsage
)

func (k ErrorKind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindStructural:
		return "structural"
	case KindCodec:
		return "codec"
	case KindCpio:
		return "cpio"
	case KindHardlink:
		return "hardlink"
	case KindSymlink:
		return "symlink"
	case KindUsage:
		return "usage"
	default:
		return "unknown"
	}
}

//Error is the single categorized failure type every rpmcpio entry point
//returns. User-visible messages name the package basename and, where
//applicable, the offending filename, per spec.md §7.
type Error struct {
	Kind    ErrorKind
	Package string
	File    string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.File != "":
		return fmt.Sprintf("%s: %s: %s: %s", e.Package, e.Kind, e.File, e.Err)
	case e.Package != "":
		return fmt.Sprintf("%s: %s: %s", e.Package, e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Err)
	}
}

//Unwrap exposes the underlying cause for errors.Is/errors.As.
func (e *Error) Unwrap() error { return e.Err }

func newErr(kind ErrorKind, pkg, file, format string, args ...interface{}) *Error {
	var cause error
	if len(args) > 0 {
		cause = errors.Errorf(format, args...)
	} else {
		cause = errors.New(format)
	}
	return &Error{Kind: kind, Package: pkg, File: file, Err: cause}
}

func wrapErr(kind ErrorKind, pkg, file string, cause error, context string) *Error {
	return &Error{Kind: kind, Package: pkg, File: file, Err: errors.Wrap(cause, context)}
}
