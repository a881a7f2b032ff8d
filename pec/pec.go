// Package pec implements SMBus Packet Error Checking: an 8-bit CRC
// with polynomial x^8 + x^2 + x + 1 (0x07), initial value 0, appended
// as the last byte of a bus transaction by devices that support it.
package pec

import "github.com/sigurn/crc8"

// crc8.CRC8 carries exactly the SMBus PEC parameters (poly 0x07,
// init 0x00, no reflection, no final xor).
var table = crc8.MakeTable(crc8.CRC8)

// Checksum returns the PEC byte covering data. The caller is
// responsible for assembling the covered bytes the way they appear on
// the wire, including the framing address bytes.
func Checksum(data []byte) byte {
	return crc8.Checksum(data, table)
}

// Verify reports whether received matches the checksum of data.
func Verify(data []byte, received byte) bool {
	return Checksum(data) == received
}
