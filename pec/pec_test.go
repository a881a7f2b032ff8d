package pec

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChecksum_KnownVectors(t *testing.T) {
	tests := []struct {
		given    []byte
		expected byte
	}{
		// standard CRC-8 check value
		{[]byte("123456789"), 0xF4},
		{[]byte{}, 0x00},
		{[]byte{0x00}, 0x00},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%x", test.given), func(t *testing.T) {
			assert.Equal(t, test.expected, Checksum(test.given))
		})
	}
}

func TestVerify_RoundTrip(t *testing.T) {
	frames := [][]byte{
		{0x90, 0x01, 0x00, 0x40},
		{0x9E, 0x00, 0x9F, 0x32, 0x00},
		{0xFF, 0xFF, 0xFF},
		{0x00},
	}
	for _, frame := range frames {
		assert.True(t, Verify(frame, Checksum(frame)), "frame %x", frame)
	}
}

func TestVerify_DetectsSingleBitErrors(t *testing.T) {
	frame := []byte{0x9E, 0x01, 0x9F, 0x00, 0x40}
	crc := Checksum(frame)
	for i := range frame {
		for bit := 0; bit < 8; bit++ {
			corrupted := make([]byte, len(frame))
			copy(corrupted, frame)
			corrupted[i] ^= 1 << bit
			assert.False(t, Verify(corrupted, crc), "flip byte %d bit %d went undetected", i, bit)
		}
	}
	// a corrupted checksum byte must fail as well
	assert.False(t, Verify(frame, crc^0x01))
}
