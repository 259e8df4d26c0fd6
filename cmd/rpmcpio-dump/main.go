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

//Command rpmcpio-dump streams the entries of an RPM package's cpio payload
//to stdout, one line per entry. It exists to exercise the rpmcpio.Package
//API (Open/Next/Read/ReadLink/Close) end to end without buffering the
//package into memory.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/holocm/rpmcpio"
)

func main() {
	args := os.Args[1:]
	printChecksums := false
	var path string
	for _, arg := range args {
		if arg == "--with-checksums" {
			printChecksums = true
			continue
		}
		path = arg
	}
	if path == "" {
		showError(fmt.Errorf("usage: rpmcpio-dump [--with-checksums] <path-to-rpm>"))
		os.Exit(1)
	}

	dir, name := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	pkg, err := rpmcpio.Open(dir, name)
	if err != nil {
		showError(err)
		os.Exit(1)
	}
	defer pkg.Close()

	if err := dump(pkg, printChecksums); err != nil {
		showError(err)
		os.Exit(2)
	}
}

func dump(pkg *rpmcpio.Package, printChecksums bool) error {
	var buf [32 * 1024]byte
	for {
		entry, err := pkg.Next()
		if err != nil {
			return err
		}
		if entry == nil {
			return nil
		}

		kind := "file"
		switch {
		case entry.IsGhost():
			kind = "ghost"
		case entry.IsSymlink():
			kind = "symlink"
		}
		fmt.Printf("%s\t%#o\t%d\t%s\n", kind, entry.Mode, entry.Size, entry.Fname)

		switch {
		case entry.IsGhost():
			//no payload bytes to drain
		case entry.IsSymlink():
			target := make([]byte, entry.Size)
			if _, err := pkg.ReadLink(target); err != nil {
				return err
			}
			if printChecksums {
				fmt.Printf("\t-> %s\n", target)
			}
		default:
			if err := drain(pkg, buf[:]); err != nil {
				return err
			}
		}
	}
}

//drain reads out an entry's full content; rpmcpio-dump doesn't keep the
//bytes, since its job is to prove the reader streams rather than to inspect
//file contents.
func drain(pkg *rpmcpio.Package, buf []byte) error {
	for {
		_, err := pkg.Read(buf)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func showError(err error) {
	fmt.Fprintf(os.Stderr, "\x1b[31m\x1b[1m!!\x1b[0m %s\n", err.Error())
}
