package max31875

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeTemperature(t *testing.T) {
	tests := []struct {
		given    []byte
		res      Resolution
		format   Format
		expected float64
	}{
		{[]byte{0x32, 0x00}, Resolution10Bit, FormatNormal, 50.0},
		{[]byte{0x32, 0x00}, Resolution12Bit, FormatNormal, 50.0},
		{[]byte{0x32, 0x00}, Resolution9Bit, FormatNormal, 50.0},
		{[]byte{0x32, 0x00}, Resolution8Bit, FormatNormal, 50.0},
		{[]byte{0x19, 0x10}, Resolution12Bit, FormatNormal, 25.0625},
		{[]byte{0x00, 0x40}, Resolution10Bit, FormatNormal, 0.25},
		{[]byte{0xE7, 0x00}, Resolution12Bit, FormatNormal, -25.0},
		{[]byte{0xC8, 0x00}, Resolution10Bit, FormatNormal, -56.0},
		{[]byte{0xFF, 0xF0}, Resolution12Bit, FormatNormal, -0.0625},
		// extended format: one fraction bit traded for range
		{[]byte{0x19, 0x00}, Resolution12Bit, FormatExtended, 50.0},
		{[]byte{0x50, 0x00}, Resolution12Bit, FormatExtended, 160.0},
		{[]byte{0x00, 0x00}, Resolution12Bit, FormatExtended, 0.0},
	}
	for _, test := range tests {
		t.Run(hex.EncodeToString(test.given), func(t *testing.T) {
			got := decodeTemperature(test.given[0], test.given[1], test.res, test.format)
			assert.Equal(t, test.expected, got)
		})
	}
}

func TestEncodeTemperature(t *testing.T) {
	tests := []struct {
		given    float64
		res      Resolution
		format   Format
		expected []byte
	}{
		{56.0, Resolution10Bit, FormatNormal, []byte{0x38, 0x00}},
		{-56.0, Resolution10Bit, FormatNormal, []byte{0xC8, 0x00}},
		{25.0625, Resolution12Bit, FormatNormal, []byte{0x19, 0x10}},
		{0.0, Resolution12Bit, FormatNormal, []byte{0x00, 0x00}},
		{-0.25, Resolution10Bit, FormatNormal, []byte{0xFF, 0xC0}},
		{50.0, Resolution12Bit, FormatExtended, []byte{0x19, 0x00}},
	}
	for _, test := range tests {
		t.Run(hex.EncodeToString(test.expected), func(t *testing.T) {
			msb, lsb := encodeTemperature(test.given, test.res, test.format)
			assert.Equal(t, test.expected, []byte{msb, lsb})
		})
	}
}

func TestTemperature_EncodeDecodeRoundTrip(t *testing.T) {
	for _, format := range []Format{FormatNormal, FormatExtended} {
		for res := Resolution8Bit; res <= Resolution12Bit; res++ {
			weight := lsbWeight(res, format)
			span := 1 << (res.bits() - 1)
			for v := -span; v < span; v++ {
				want := float64(v) * weight
				msb, lsb := encodeTemperature(want, res, format)
				got := decodeTemperature(msb, lsb, res, format)
				if got != want {
					t.Fatalf("res %s format %s: round trip of %v gave %v", res, format, want, got)
				}
			}
		}
	}
}

func TestDecodeTemperature_Monotonic(t *testing.T) {
	prev := 0.0
	for v := -2048; v < 2048; v++ {
		raw := uint16(v) << 4
		got := decodeTemperature(byte(raw>>8), byte(raw), Resolution12Bit, FormatNormal)
		if v > -2048 && got <= prev {
			t.Fatalf("decode not monotonic at raw %d: %v <= %v", v, got, prev)
		}
		prev = got
	}
}
