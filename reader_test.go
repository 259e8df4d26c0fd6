package rpmcpio

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holocm/rpmcpio/internal/rpmfixture"
)

func writeFixtureRPM(t *testing.T, b *rpmfixture.Builder) (dir, name string) {
	t.Helper()
	raw, err := b.Build()
	require.NoError(t, err)

	dir = t.TempDir()
	name = "fixture.rpm"
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), raw, 0644))
	return dir, name
}

func TestOpenNextReadCloseEndToEnd(t *testing.T) {
	content := bytes.Repeat([]byte{'x'}, 26)
	dir, name := writeFixtureRPM(t, &rpmfixture.Builder{
		NVR:        "somepkg-1.0-1.x86_64",
		Compressor: "gzip",
		Files: []rpmfixture.File{
			{Name: "/usr/bin/true", Mode: 0100755, Content: content},
		},
	})

	pkg, err := Open(dir, name)
	require.NoError(t, err)
	defer pkg.Close()

	assert.False(t, pkg.Header().IsSource)

	e, err := pkg.Next()
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, "/usr/bin/true", string(e.Fname))

	got, err := io.ReadAll(readerFunc(func(p []byte) (int, error) { return pkg.Read(p) }))
	require.NoError(t, err)
	assert.Equal(t, content, got)

	e2, err := pkg.Next()
	require.NoError(t, err)
	assert.Nil(t, e2)

	require.NoError(t, pkg.Close())
}

func TestOpenMissingFile(t *testing.T) {
	dir := t.TempDir()
	_, err := Open(dir, "does-not-exist.rpm")
	require.Error(t, err)
	var rerr *Error
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, KindIO, rerr.Kind)
}

func TestOpenSymlinkEntry(t *testing.T) {
	dir, name := writeFixtureRPM(t, &rpmfixture.Builder{
		NVR: "linkpkg-1.0-1.x86_64",
		Files: []rpmfixture.File{
			{Name: "/usr/bin/python", Mode: 0120777, LinkTarget: "python3"},
		},
	})

	pkg, err := Open(dir, name)
	require.NoError(t, err)
	defer pkg.Close()

	e, err := pkg.Next()
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.True(t, e.IsSymlink())

	target := make([]byte, e.Size)
	n, err := pkg.ReadLink(target)
	require.NoError(t, err)
	assert.Equal(t, "python3", string(target[:n]))
}

func TestOpenGhostFileRestoredAfterTrailer(t *testing.T) {
	dir, name := writeFixtureRPM(t, &rpmfixture.Builder{
		NVR: "ghostpkg-1.0-1.x86_64",
		Files: []rpmfixture.File{
			{Name: "/etc/ghostpkg.conf", Mode: 0100644, Ghost: true},
			{Name: "/etc/ghostpkg.d", Mode: 0100644, Content: []byte("real\n")},
		},
	})

	pkg, err := Open(dir, name)
	require.NoError(t, err)
	defer pkg.Close()

	var names []string
	var ghostSeen bool
	for {
		e, err := pkg.Next()
		require.NoError(t, err)
		if e == nil {
			break
		}
		names = append(names, string(e.Fname))
		if e.IsGhost() {
			ghostSeen = true
			assert.EqualValues(t, 0, e.Size)
		} else {
			_, err := io.ReadAll(readerFunc(func(p []byte) (int, error) { return pkg.Read(p) }))
			require.NoError(t, err)
		}
	}
	assert.True(t, ghostSeen)
	assert.ElementsMatch(t, []string{"/etc/ghostpkg.conf", "/etc/ghostpkg.d"}, names)
}
