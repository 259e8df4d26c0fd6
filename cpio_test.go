package rpmcpio

import (
	"bytes"
	"io"
	"testing"

	kgzip "github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holocm/rpmcpio/internal/rpmfixture"
)

//openFixture builds an RPM byte stream and decodes it through the real
//Header + Decompressor + CpioIterator stack, mirroring what Package.Open
//does internally but without requiring a file on disk.
func openFixture(t *testing.T, b *rpmfixture.Builder, pkgName string) (*Header, *CpioIterator) {
	t.Helper()
	raw, err := b.Build()
	require.NoError(t, err)

	br := NewBufferedReader(bytes.NewReader(raw))
	h, err := decodeHeader(br, pkgName)
	require.NoError(t, err)

	dc, err := newDecompressor(br, h.Compressor)
	require.NoError(t, err)

	return h, newCpioIterator(dc, h, pkgName)
}

func TestCpioIteratorBinaryGzipSingleFile(t *testing.T) {
	content := bytes.Repeat([]byte{'x'}, 26)
	b := &rpmfixture.Builder{
		NVR:        "somepkg-1.0-1.x86_64",
		Compressor: "gzip",
		Files: []rpmfixture.File{
			{Name: "/usr/bin/true", Mode: 0100755, Content: content},
		},
	}
	_, it := openFixture(t, b, "somepkg")

	e, err := it.Next()
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, "/usr/bin/true", string(e.Fname))
	assert.EqualValues(t, 26, e.Size)
	assert.EqualValues(t, 1, e.Nlink)
	assert.False(t, e.IsGhost())
	assert.False(t, e.IsSymlink())

	got, err := io.ReadAll(readerFunc(func(p []byte) (int, error) { return it.Read(p) }))
	require.NoError(t, err)
	assert.Equal(t, content, got)

	e2, err := it.Next()
	require.NoError(t, err)
	assert.Nil(t, e2)
}

//readerFunc adapts a plain read method to io.Reader for io.ReadAll.
type readerFunc func([]byte) (int, error)

func (f readerFunc) Read(p []byte) (int, error) { return f(p) }

func TestCpioIteratorSourcePackage(t *testing.T) {
	b := &rpmfixture.Builder{
		NVR:      "somepkg-1.0-1.src",
		IsSource: true,
		Files: []rpmfixture.File{
			{Name: "somepkg.spec", Mode: 0100644, Content: []byte("Name: somepkg\n")},
		},
	}
	_, it := openFixture(t, b, "somepkg-src")

	e, err := it.Next()
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, "somepkg.spec", string(e.Fname))
	assert.NotContains(t, string(e.Fname), "/")
}

func TestCpioIteratorLongFileSizesGhostRecord(t *testing.T) {
	content := bytes.Repeat([]byte{'z'}, 4096)
	b := &rpmfixture.Builder{
		NVR:           "bigpkg-1.0-1.x86_64",
		Compressor:    "xz",
		LongFileSizes: true,
		Files: []rpmfixture.File{
			{Name: "/var/lib/bigpkg/blob", Mode: 0100644, Content: content},
		},
	}
	h, it := openFixture(t, b, "bigpkg")

	e, err := it.Next()
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, "/var/lib/bigpkg/blob", string(e.Fname))
	//under LONGFILESIZES the fixture writes a "07070X" record, which is
	//emitted with size = 0; the real size lives in ExtendedFileInfo
	assert.EqualValues(t, 0, e.Size)
	assert.EqualValues(t, len(content), h.Ext[0].Size)
}

func TestCpioIteratorHardlinkSet(t *testing.T) {
	content := []byte("shared content\n")
	b := &rpmfixture.Builder{
		NVR: "hlpkg-1.0-1.x86_64",
		Files: []rpmfixture.File{
			{Name: "/a", Mode: 0100644, Content: content, Ino: 42, Nlink: 3},
			{Name: "/b", Mode: 0100644, Content: content, Ino: 42, Nlink: 3},
			{Name: "/c", Mode: 0100644, Content: content, Ino: 42, Nlink: 3},
		},
	}
	_, it := openFixture(t, b, "hlpkg")

	e1, err := it.Next()
	require.NoError(t, err)
	assert.Equal(t, "/a", string(e1.Fname))
	assert.EqualValues(t, 0, e1.Size)

	e2, err := it.Next()
	require.NoError(t, err)
	assert.Equal(t, "/b", string(e2.Fname))
	assert.EqualValues(t, 0, e2.Size)

	e3, err := it.Next()
	require.NoError(t, err)
	assert.Equal(t, "/c", string(e3.Fname))
	assert.EqualValues(t, len(content), e3.Size)

	got, err := io.ReadAll(readerFunc(func(p []byte) (int, error) { return it.Read(p) }))
	require.NoError(t, err)
	assert.Equal(t, content, got)

	e4, err := it.Next()
	require.NoError(t, err)
	assert.Nil(t, e4)
}

func TestCpioIteratorMissingTerminalHardlinkMemberIsMeager(t *testing.T) {
	content := []byte("shared content\n")
	b := &rpmfixture.Builder{
		NVR: "hlpkg-1.0-1.x86_64",
		Files: []rpmfixture.File{
			//claims nlink=3 but only 2 members are ever written: the
			//fixture itself is internally inconsistent on purpose
			{Name: "/a", Mode: 0100644, Content: content, Ino: 7, Nlink: 3},
			{Name: "/b", Mode: 0100644, Content: content, Ino: 7, Nlink: 3},
		},
	}
	_, it := openFixture(t, b, "hlpkg")

	_, err := it.Next()
	require.NoError(t, err)
	_, err = it.Next()
	require.NoError(t, err)

	//next() now hits TRAILER!!! with the hardlink set still open
	_, err = it.Next()
	require.Error(t, err)
	var rerr *Error
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, KindHardlink, rerr.Kind)
}

func TestCpioIteratorNonZeroChecksumIsRejected(t *testing.T) {
	h := &Header{
		Strtab: []byte{0},
		Files:  []FileInfo{{}},
	}
	h.Strtab = append(h.Strtab, "/a"...)
	h.Files[0].bn = 1
	h.Files[0].blen = 2
	h.Files[0].Mode = 0100644

	var raw bytes.Buffer
	writeCpioRecordWithChecksum(&raw, "./a", 0100644, 1, 0xBAD)
	writeCpioTrailer(&raw)

	var gz bytes.Buffer
	w := kgzip.NewWriter(&gz)
	_, err := w.Write(raw.Bytes())
	require.NoError(t, err)
	require.NoError(t, w.Close())

	br := NewBufferedReader(bytes.NewReader(gz.Bytes()))
	dc, err := newDecompressor(br, "gzip")
	require.NoError(t, err)

	it := newCpioIterator(dc, h, "checksumpkg")
	_, err = it.Next()
	require.Error(t, err)
	var rerr *Error
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, KindCpio, rerr.Kind)
}

//writeCpioRecordWithChecksum hand-encodes a single "070701" record with an
//explicit (possibly invalid) checksum field, bypassing rpmfixture.Builder
//(which always writes a zero checksum) so the corruption-handling path in
//readStandardRecord can be exercised directly.
func writeCpioRecordWithChecksum(buf *bytes.Buffer, name string, mode, nlink, checksum uint32) {
	nameBytes := append([]byte(name), 0)
	buf.WriteString("070701")
	buf.WriteString(hex8(0))               //ino
	buf.WriteString(hex8(mode))            //mode
	buf.WriteString(hex8(0))                //uid
	buf.WriteString(hex8(0))                //gid
	buf.WriteString(hex8(nlink))            //nlink
	buf.WriteString(hex8(0))                //mtime
	buf.WriteString(hex8(0))                //filesize
	buf.WriteString(hex8(0))                //devmajor
	buf.WriteString(hex8(0))                //devminor
	buf.WriteString(hex8(0))                //rdevmajor
	buf.WriteString(hex8(0))                //rdevminor
	buf.WriteString(hex8(uint32(len(nameBytes)))) //namesize
	buf.WriteString(hex8(checksum))
	buf.Write(nameBytes)
	for buf.Len()%4 != 0 {
		buf.WriteByte(0)
	}
}

func writeCpioTrailer(buf *bytes.Buffer) {
	name := append([]byte("TRAILER!!!"), 0)
	buf.WriteString("070701")
	buf.WriteString(hex8(0))
	buf.WriteString(hex8(0))
	buf.WriteString(hex8(0))
	buf.WriteString(hex8(0))
	buf.WriteString(hex8(1))
	buf.WriteString(hex8(0))
	buf.WriteString(hex8(0))
	buf.WriteString(hex8(0))
	buf.WriteString(hex8(0))
	buf.WriteString(hex8(0))
	buf.WriteString(hex8(0))
	buf.WriteString(hex8(uint32(len(name))))
	buf.WriteString(hex8(0))
	buf.Write(name)
	for buf.Len()%4 != 0 {
		buf.WriteByte(0)
	}
}

func hex8(v uint32) string {
	const digits = "0123456789abcdef"
	out := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		out[i] = digits[v&0xF]
		v >>= 4
	}
	return string(out)
}
