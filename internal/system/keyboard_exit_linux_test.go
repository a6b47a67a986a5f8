//go:build linux

package system

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
)

func inputEvent(typ, code uint16, value int32) []byte {
	rec := make([]byte, eventSize)
	binary.LittleEndian.PutUint16(rec[timevalSize:], typ)
	binary.LittleEndian.PutUint16(rec[timevalSize+2:], code)
	binary.LittleEndian.PutUint32(rec[timevalSize+4:], uint32(value))
	return rec
}

func concat(recs ...[]byte) []byte {
	var out []byte
	for _, r := range recs {
		out = append(out, r...)
	}
	return out
}

func TestContainsF4Press(t *testing.T) {
	const evSyn = 0x00
	tests := []struct {
		name string
		data []byte
		want bool
	}{
		{"empty", nil, false},
		{"press", inputEvent(evKey, keyF4, keyPressed), true},
		{"release", inputEvent(evKey, keyF4, 0), false},
		{"autorepeat", inputEvent(evKey, keyF4, 2), false},
		{"other key", inputEvent(evKey, keyF4+1, keyPressed), false},
		{"sync event", inputEvent(evSyn, keyF4, keyPressed), false},
		{"after others", concat(inputEvent(evSyn, 0, 0), inputEvent(evKey, 30, 1), inputEvent(evKey, keyF4, keyPressed)), true},
		{"partial record", inputEvent(evKey, keyF4, keyPressed)[:eventSize-1], false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, containsF4Press(tc.data))
		})
	}
}
