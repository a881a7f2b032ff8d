package max31875

import (
	"context"
	"math"
)

// Temperature and threshold registers are transacted as two data
// bytes; resolution and format decide which of those bits carry value
// and what the least significant one weighs.
const temperatureRegSize = 2

// lsbWeight returns the Celsius weight of the least significant
// temperature bit. Normal format carries resolution-8 fraction bits;
// extended format gives one of them up for an extra integer bit.
func lsbWeight(res Resolution, format Format) float64 {
	if format == FormatExtended {
		return math.Ldexp(1, 9-res.bits())
	}
	return math.Ldexp(1, 8-res.bits())
}

// decodeTemperature converts the two register bytes to degrees
// Celsius. The value is two's complement, left justified in the 16-bit
// register; the arithmetic shift keeps the sign while discarding the
// bits below the active resolution.
func decodeTemperature(msb, lsb byte, res Resolution, format Format) float64 {
	raw := int16(uint16(msb)<<8 | uint16(lsb))
	v := raw >> uint(16-res.bits())
	return float64(v) * lsbWeight(res, format)
}

// encodeTemperature converts degrees Celsius to the two register
// bytes, rounding to the active resolution.
func encodeTemperature(t float64, res Resolution, format Format) (byte, byte) {
	v := int(math.Round(t / lsbWeight(res, format)))
	raw := uint16(v) << uint(16-res.bits())
	return byte(raw >> 8), byte(raw)
}

// GetTemperature reads the temperature register and converts it using
// the active resolution and format. On a PEC checksum failure it
// returns ErrNoValidData and no temperature.
func (d *MAX31875) GetTemperature(ctx context.Context) (float64, error) {
	return d.readTemperature(ctx, regTemperature)
}

// TOS returns the over-temperature threshold in degrees Celsius.
func (d *MAX31875) TOS(ctx context.Context) (float64, error) {
	return d.readTemperature(ctx, regTOS)
}

// SetTOS writes the over-temperature threshold. Unlike configuration
// fields, threshold writes reach the sensor immediately; there is no
// separate commit step.
func (d *MAX31875) SetTOS(ctx context.Context, t float64) error {
	return d.writeTemperature(ctx, regTOS, t)
}

// THyst returns the hysteresis threshold in degrees Celsius.
func (d *MAX31875) THyst(ctx context.Context) (float64, error) {
	return d.readTemperature(ctx, regTHyst)
}

// SetTHyst writes the hysteresis threshold immediately.
func (d *MAX31875) SetTHyst(ctx context.Context, t float64) error {
	return d.writeTemperature(ctx, regTHyst, t)
}

func (d *MAX31875) readTemperature(ctx context.Context, register byte) (float64, error) {
	buf, err := d.readChecked(ctx, register, temperatureRegSize)
	if err != nil {
		return 0, err
	}
	return decodeTemperature(buf[0], buf[1], d.active.Resolution, d.active.Format), nil
}

func (d *MAX31875) writeTemperature(ctx context.Context, register byte, t float64) error {
	msb, lsb := encodeTemperature(t, d.active.Resolution, d.active.Format)
	return d.Write(ctx, register, []byte{msb, lsb})
}
