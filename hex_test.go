package rpmcpio

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeHex8(t *testing.T) {
	cases := []struct {
		in   string
		want uint32
		ok   bool
	}{
		{"00000000", 0, true},
		{"000002a4", 0x2a4, true},
		{"ffffffff", 0xffffffff, true},
		{"FFFFFFFF", 0xffffffff, true},
		{"deadbeef", 0xdeadbeef, true},
		{"0000000g", 0, false},
		{"TRAILER!", 0, false},
	}
	for _, c := range cases {
		got, ok := decodeHex8([]byte(c.in))
		assert.Equal(t, c.ok, ok, "input %q", c.in)
		if c.ok {
			assert.Equal(t, c.want, got, "input %q", c.in)
		}
	}
}
