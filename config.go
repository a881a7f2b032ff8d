package max31875

import (
	"context"
	"fmt"
)

var ErrInvalidFieldValue = fmt.Errorf("field value out of range")

// Format selects the temperature data format.
type Format uint8

const (
	// FormatNormal carries resolution-8 fraction bits.
	FormatNormal Format = 0
	// FormatExtended trades one fraction bit for a wider range.
	FormatExtended Format = 1
)

func (f Format) String() string {
	if f == FormatExtended {
		return "extended"
	}
	return "normal"
}

// Resolution selects the conversion resolution of the sensor.
type Resolution uint8

const (
	Resolution8Bit  Resolution = 0
	Resolution9Bit  Resolution = 1
	Resolution10Bit Resolution = 2
	Resolution12Bit Resolution = 3
)

// bits returns the number of significant bits carried by the
// temperature registers at this resolution.
func (r Resolution) bits() int {
	switch r {
	case Resolution8Bit:
		return 8
	case Resolution9Bit:
		return 9
	case Resolution10Bit:
		return 10
	default:
		return 12
	}
}

func (r Resolution) String() string {
	return fmt.Sprintf("%d-bit", r.bits())
}

// ConversionRate selects how often the sensor runs a conversion in
// continuous mode.
type ConversionRate uint8

const (
	ConversionRateQuarterHz ConversionRate = 0
	ConversionRate1Hz       ConversionRate = 1
	ConversionRate4Hz       ConversionRate = 2
	ConversionRate8Hz       ConversionRate = 3
)

func (c ConversionRate) String() string {
	switch c {
	case ConversionRateQuarterHz:
		return "0.25Hz"
	case ConversionRate1Hz:
		return "1Hz"
	case ConversionRate4Hz:
		return "4Hz"
	default:
		return "8Hz"
	}
}

// FaultQueue selects how many consecutive over-temperature faults must
// occur before the over-temperature status asserts.
type FaultQueue uint8

const (
	FaultQueue1 FaultQueue = 0
	FaultQueue2 FaultQueue = 1
	FaultQueue4 FaultQueue = 2
	FaultQueue6 FaultQueue = 3
)

func (q FaultQueue) String() string {
	switch q {
	case FaultQueue1:
		return "1 fault"
	case FaultQueue2:
		return "2 faults"
	case FaultQueue4:
		return "4 faults"
	default:
		return "6 faults"
	}
}

// Config mirrors the sensor's configuration register as logical
// fields. The zero value is not the power-on state; use the driver's
// accessors or start from a ReadConfig.
type Config struct {
	Format          Format         `yaml:"format"`
	PEC             bool           `yaml:"pec"`
	Resolution      Resolution     `yaml:"resolution"`
	ConversionRate  ConversionRate `yaml:"conversion_rate"`
	TimeoutDisabled bool           `yaml:"timeout_disabled"`
	FaultQueue      FaultQueue     `yaml:"fault_queue"`
	Shutdown        bool           `yaml:"shutdown"`
	InterruptMode   bool           `yaml:"interrupt_mode"`
}

// Validate checks every field against its enumeration. Fields are
// validated before any encoding; out-of-range values are rejected,
// never masked.
func (c Config) Validate() error {
	if c.Format > FormatExtended {
		return fmt.Errorf("invalid format %d: %w", c.Format, ErrInvalidFieldValue)
	}
	if c.Resolution > Resolution12Bit {
		return fmt.Errorf("invalid resolution %d: %w", c.Resolution, ErrInvalidFieldValue)
	}
	if c.ConversionRate > ConversionRate8Hz {
		return fmt.Errorf("invalid conversion rate %d: %w", c.ConversionRate, ErrInvalidFieldValue)
	}
	if c.FaultQueue > FaultQueue6 {
		return fmt.Errorf("invalid fault queue %d: %w", c.FaultQueue, ErrInvalidFieldValue)
	}
	return nil
}

// configLayout describes where each field sits in the packed register
// value and how wide the register is on the wire. It is resolved once
// at construction from the part-number suffix so encode and decode
// never branch on the variant.
type configLayout struct {
	width int // register width in bytes

	format          uint
	pec             uint
	resolution      uint
	conversionRate  uint
	timeoutDisabled uint
	faultQueue      uint
	shutdown        uint
	interruptMode   uint
}

// wide16 is the two-byte layout of the MAX31875 configuration
// register. Bit offsets are within the big-endian packed value: the
// first wire byte holds the fault queue, comp/int and shutdown bits,
// the second everything else.
var wide16 = configLayout{
	width:           2,
	format:          7,
	pec:             3,
	resolution:      5,
	conversionRate:  1,
	timeoutDisabled: 4,
	faultQueue:      11,
	shutdown:        8,
	interruptMode:   9,
}

// configLayouts maps the part-number suffix (MAX31875R0..R7) to its
// register layout. Every suffix currently ships the wide register; a
// narrow-register variant is a table entry, not a code change.
var configLayouts = [8]configLayout{
	wide16, wide16, wide16, wide16, wide16, wide16, wide16, wide16,
}

func (l configLayout) pack(c Config) uint16 {
	v := uint16(c.Format)<<l.format |
		uint16(c.Resolution)<<l.resolution |
		uint16(c.ConversionRate)<<l.conversionRate |
		uint16(c.FaultQueue)<<l.faultQueue
	if c.PEC {
		v |= 1 << l.pec
	}
	if c.TimeoutDisabled {
		v |= 1 << l.timeoutDisabled
	}
	if c.Shutdown {
		v |= 1 << l.shutdown
	}
	if c.InterruptMode {
		v |= 1 << l.interruptMode
	}
	return v
}

func (l configLayout) unpack(v uint16) Config {
	return Config{
		Format:          Format(v >> l.format & 0x1),
		PEC:             v>>l.pec&0x1 == 1,
		Resolution:      Resolution(v >> l.resolution & 0x3),
		ConversionRate:  ConversionRate(v >> l.conversionRate & 0x3),
		TimeoutDisabled: v>>l.timeoutDisabled&0x1 == 1,
		FaultQueue:      FaultQueue(v >> l.faultQueue & 0x3),
		Shutdown:        v>>l.shutdown&0x1 == 1,
		InterruptMode:   v>>l.interruptMode&0x1 == 1,
	}
}

// wire serializes the packed value to register bytes, most significant
// byte first for the wide register.
func (l configLayout) wire(v uint16) []byte {
	if l.width == 1 {
		return []byte{byte(v)}
	}
	return []byte{byte(v >> 8), byte(v)}
}

func (l configLayout) value(buf []byte) uint16 {
	if l.width == 1 {
		return uint16(buf[0])
	}
	return uint16(buf[0])<<8 | uint16(buf[1])
}

// Staging accessors. Setters mutate the staged configuration only;
// nothing reaches the sensor before WriteConfig. Getters report the
// active mirror, i.e. the last state known to be on the device.

func (d *MAX31875) Format() Format { return d.active.Format }

func (d *MAX31875) SetFormat(f Format) error {
	if f > FormatExtended {
		return fmt.Errorf("max31875: invalid format %d: %w", f, ErrInvalidFieldValue)
	}
	d.staged.Format = f
	return nil
}

func (d *MAX31875) PEC() bool { return d.active.PEC }

// SetPEC stages packet error checking. Enabling it also flips the
// active mirror right away: the commit transaction itself has to carry
// the checksum or the device rejects it.
func (d *MAX31875) SetPEC(enabled bool) {
	d.staged.PEC = enabled
	if enabled {
		d.active.PEC = true
	}
}

func (d *MAX31875) Resolution() Resolution { return d.active.Resolution }

func (d *MAX31875) SetResolution(r Resolution) error {
	if r > Resolution12Bit {
		return fmt.Errorf("max31875: invalid resolution %d: %w", r, ErrInvalidFieldValue)
	}
	d.staged.Resolution = r
	return nil
}

func (d *MAX31875) ConversionRate() ConversionRate { return d.active.ConversionRate }

func (d *MAX31875) SetConversionRate(r ConversionRate) error {
	if r > ConversionRate8Hz {
		return fmt.Errorf("max31875: invalid conversion rate %d: %w", r, ErrInvalidFieldValue)
	}
	d.staged.ConversionRate = r
	return nil
}

// TimeoutDisabled reports whether the bus timeout (interface reset
// when SCL is held low for more than 30ms) is switched off.
func (d *MAX31875) TimeoutDisabled() bool { return d.active.TimeoutDisabled }

func (d *MAX31875) SetTimeoutDisabled(disabled bool) {
	d.staged.TimeoutDisabled = disabled
}

func (d *MAX31875) FaultQueue() FaultQueue { return d.active.FaultQueue }

func (d *MAX31875) SetFaultQueue(q FaultQueue) error {
	if q > FaultQueue6 {
		return fmt.Errorf("max31875: invalid fault queue %d: %w", q, ErrInvalidFieldValue)
	}
	d.staged.FaultQueue = q
	return nil
}

// Shutdown reports whether the sensor is in shutdown mode instead of
// continuous conversion.
func (d *MAX31875) Shutdown() bool { return d.active.Shutdown }

func (d *MAX31875) SetShutdown(shutdown bool) {
	d.staged.Shutdown = shutdown
}

// InterruptMode reports whether the over-temperature status operates
// in interrupt mode (true) or comparator mode (false).
func (d *MAX31875) InterruptMode() bool { return d.active.InterruptMode }

func (d *MAX31875) SetInterruptMode(interrupt bool) {
	d.staged.InterruptMode = interrupt
}

// ApplyConfig validates cfg and stages it wholesale, e.g. from a
// deserialized preset. PEC follows the same immediate-activation rule
// as SetPEC.
func (d *MAX31875) ApplyConfig(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("max31875: %w", err)
	}
	d.staged = cfg
	if cfg.PEC {
		d.active.PEC = true
	}
	return nil
}

// WriteConfig commits the staged configuration to the sensor in a
// single register transaction and promotes it to the active mirror.
func (d *MAX31875) WriteConfig(ctx context.Context) error {
	if err := d.Write(ctx, regConfig, d.layout.wire(d.layout.pack(d.staged))); err != nil {
		return err
	}
	d.active = d.staged
	return nil
}

// ReadConfig refreshes the active mirror from the sensor's actual
// register, overwriting every field. A failed or corrupted read leaves
// the mirror untouched; the staged fields are never affected.
func (d *MAX31875) ReadConfig(ctx context.Context) error {
	buf, err := d.readChecked(ctx, regConfig, d.layout.width)
	if err != nil {
		return err
	}
	d.active = d.layout.unpack(d.layout.value(buf))
	return nil
}

// ConfigBits returns the packed value of the active configuration
// mirror without touching the bus. It matches the device register only
// right after a ReadConfig or WriteConfig.
func (d *MAX31875) ConfigBits() uint16 {
	return d.layout.pack(d.active)
}

// ActiveConfig returns a copy of the active configuration mirror.
func (d *MAX31875) ActiveConfig() Config {
	return d.active
}
