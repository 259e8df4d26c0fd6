package rpmcpio

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//shortReader dribbles out data a few bytes at a time, to exercise
//BufferedReader's retry-on-short-read behavior.
type shortReader struct {
	data []byte
	step int
}

func (r *shortReader) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, io.EOF
	}
	n := r.step
	if n > len(p) {
		n = len(p)
	}
	if n > len(r.data) {
		n = len(r.data)
	}
	copy(p, r.data[:n])
	r.data = r.data[n:]
	return n, nil
}

func TestBufferedReaderExactFill(t *testing.T) {
	src := &shortReader{data: []byte("abcdefghij"), step: 3}
	br := NewBufferedReader(src)

	buf := make([]byte, 7)
	require.NoError(t, br.Read(buf))
	assert.Equal(t, "abcdefg", string(buf))

	buf2 := make([]byte, 3)
	require.NoError(t, br.Read(buf2))
	assert.Equal(t, "hij", string(buf2))
}

func TestBufferedReaderShortSourceIsUnexpectedEOF(t *testing.T) {
	br := NewBufferedReader(bytes.NewReader([]byte("short")))
	buf := make([]byte, 10)
	err := br.Read(buf)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestBufferedReaderPeekDoesNotAdvance(t *testing.T) {
	br := NewBufferedReader(bytes.NewReader([]byte("hello world")))
	p1, err := br.Peek(5)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(p1))

	buf := make([]byte, 5)
	require.NoError(t, br.Read(buf))
	assert.Equal(t, "hello", string(buf))
}

func TestBufferedReaderPeekAtEOFReturnsShort(t *testing.T) {
	br := NewBufferedReader(bytes.NewReader([]byte("ab")))
	p, err := br.Peek(10)
	require.NoError(t, err)
	assert.Equal(t, "ab", string(p))
}

func TestBufferedReaderSkip(t *testing.T) {
	br := NewBufferedReader(bytes.NewReader([]byte("0123456789")))
	require.NoError(t, br.Skip(4))
	buf := make([]byte, 3)
	require.NoError(t, br.Read(buf))
	assert.Equal(t, "456", string(buf))

	err := br.Skip(100)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestBufferedReaderReadSomeIsShortTolerant(t *testing.T) {
	src := &shortReader{data: []byte("abcdef"), step: 2}
	br := NewBufferedReader(src)
	buf := make([]byte, 6)
	n, err := br.ReadSome(buf)
	require.NoError(t, err)
	assert.Less(t, n, 6)
	assert.Equal(t, "ab", string(buf[:n]))
}

func TestBufferedReaderReadLargerThanWindow(t *testing.T) {
	data := bytes.Repeat([]byte("x"), defaultBufferSize*2)
	br := NewBufferedReader(bytes.NewReader(data))
	buf := make([]byte, len(data))
	require.NoError(t, br.Read(buf))
	assert.Equal(t, data, buf)
}
