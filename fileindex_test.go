package rpmcpio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//buildFlatHeader constructs a Header in the flat (OLDFILENAMES / source
//package) regime, one FileInfo per name in names, sorted ascending.
func buildFlatHeader(names []string) *Header {
	h := &Header{Strtab: []byte{0}}
	h.Files = make([]FileInfo, len(names))
	for i, n := range names {
		base := uint32(len(h.Strtab))
		h.Strtab = append(h.Strtab, n...)
		h.Files[i].bn = base
		h.Files[i].blen = uint32(len(n))
	}
	return h
}

//buildSplitHeader constructs a Header in the split (BASENAMES/DIRNAMES)
//regime from a sorted list of absolute paths.
func buildSplitHeader(paths []string) *Header {
	h := &Header{Strtab: []byte{0}}
	h.Files = make([]FileInfo, len(paths))
	for i, p := range paths {
		slash := -1
		for j := len(p) - 1; j >= 0; j-- {
			if p[j] == '/' {
				slash = j
				break
			}
		}
		dir, base := p[:slash+1], p[slash+1:]

		dbase := uint32(len(h.Strtab))
		h.Strtab = append(h.Strtab, dir...)
		h.Files[i].dn = dbase
		h.Files[i].dlen = uint32(len(dir))

		bbase := uint32(len(h.Strtab))
		h.Strtab = append(h.Strtab, base...)
		h.Files[i].bn = bbase
		h.Files[i].blen = uint32(len(base))
	}
	return h
}

func TestFileIndexFlatFind(t *testing.T) {
	names := []string{"bin/sh", "etc/fstab", "usr/bin/true", "var/log/messages"}
	h := buildFlatHeader(names)
	fx := newFileIndex(h)

	for i, n := range names {
		idx, ok := fx.Find([]byte(n))
		require.True(t, ok, "expected %q to be found", n)
		assert.Equal(t, i, idx)
	}

	_, ok := fx.Find([]byte("nonexistent"))
	assert.False(t, ok)
}

func TestFileIndexSplitFind(t *testing.T) {
	paths := []string{"/bin/sh", "/etc/fstab", "/etc/passwd", "/usr/bin/true", "/usr/bin/zsh"}
	h := buildSplitHeader(paths)
	fx := newFileIndex(h)

	for i, p := range paths {
		idx, ok := fx.Find([]byte(p))
		require.True(t, ok, "expected %q to be found", p)
		assert.Equal(t, i, idx)
	}

	_, ok := fx.Find([]byte("/does/not/exist"))
	assert.False(t, ok)
}

func TestFileIndexHotStartMatchesBisection(t *testing.T) {
	paths := []string{"/a", "/b", "/c", "/d", "/e"}
	h := buildSplitHeader(paths)

	//hot-start traversal, as cpio entries mostly arrive in filelist order
	fxHot := newFileIndex(h)
	for i, p := range paths {
		idx, ok := fxHot.Find([]byte(p))
		require.True(t, ok)
		assert.Equal(t, i, idx)
	}

	//fresh index per lookup forces pure bisection every time
	for i, p := range paths {
		fxCold := newFileIndex(h)
		idx, ok := fxCold.Find([]byte(p))
		require.True(t, ok)
		assert.Equal(t, i, idx)
	}
}

func TestFileIndexEmptyHeader(t *testing.T) {
	h := &Header{Strtab: []byte{0}}
	fx := newFileIndex(h)
	_, ok := fx.Find([]byte("/anything"))
	assert.False(t, ok)
}
