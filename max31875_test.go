package max31875

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/mklimuk/max31875/pec"
)

func TestNew(t *testing.T) {
	bus := new(MockI2CBus)

	dev, err := New(bus, 7)
	assert.NoError(t, err)
	assert.Equal(t, byte(0x4F), dev.Address())

	dev, err = New(bus, 0)
	assert.NoError(t, err)
	assert.Equal(t, byte(0x48), dev.Address())
	assert.Equal(t, porConfigBits, dev.ConfigBits())

	_, err = New(bus, 8)
	assert.ErrorIs(t, err, ErrInvalidFieldValue)
}

func TestWriteConfig(t *testing.T) {
	bus := new(MockI2CBus)
	dev, err := New(bus, 7)
	assert.NoError(t, err)
	ctx := context.Background()

	// committing the reset state writes the POR bits verbatim
	bus.On("WriteToAddr", mock.Anything, byte(0x4F), []byte{0x01, 0x00, 0x40}).
		Return(nil).Once()
	assert.NoError(t, dev.WriteConfig(ctx))

	// a staged change reaches the wire and the active mirror on commit
	assert.NoError(t, dev.SetResolution(Resolution12Bit))
	assert.Equal(t, Resolution10Bit, dev.Resolution())
	bus.On("WriteToAddr", mock.Anything, byte(0x4F), []byte{0x01, 0x00, 0x60}).
		Return(nil).Once()
	assert.NoError(t, dev.WriteConfig(ctx))
	assert.Equal(t, Resolution12Bit, dev.Resolution())

	bus.AssertExpectations(t)
}

func TestWriteConfig_TransportFailureKeepsMirror(t *testing.T) {
	bus := new(MockI2CBus)
	dev, err := New(bus, 7)
	assert.NoError(t, err)

	assert.NoError(t, dev.SetResolution(Resolution12Bit))
	bus.On("WriteToAddr", mock.Anything, byte(0x4F), mock.Anything).
		Return(errors.New("address not acknowledged")).Once()

	err = dev.WriteConfig(context.Background())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "address not acknowledged")
	assert.Equal(t, Resolution10Bit, dev.Resolution())

	bus.AssertExpectations(t)
}

func TestWrite_PECFraming(t *testing.T) {
	bus := new(MockI2CBus)
	dev, err := New(bus, 7)
	assert.NoError(t, err)

	dev.SetPEC(true)

	// the checksum covers the framed transaction as observed on the
	// wire: address byte with the write bit, register, data
	crc := pec.Checksum([]byte{0x4F << 1, 0x01, 0x00, 0x40})
	bus.On("WriteToAddr", mock.Anything, byte(0x4F), []byte{0x01, 0x00, 0x40, crc}).
		Return(nil).Once()

	assert.NoError(t, dev.Write(context.Background(), regConfig, []byte{0x00, 0x40}))
	bus.AssertExpectations(t)
}

func TestRead_PEC(t *testing.T) {
	bus := new(MockI2CBus)
	dev, err := New(bus, 7)
	assert.NoError(t, err)
	ctx := context.Background()

	dev.SetPEC(true)

	// both phases of the transaction are covered by one checksum
	crc := pec.Checksum([]byte{0x4F << 1, 0x00, 0x4F<<1 | 1, 0x32, 0x00})
	bus.On("WriteToAddr", mock.Anything, byte(0x4F), []byte{0x00}).Return(nil).Twice()
	bus.On("ReadFromAddr", mock.Anything, byte(0x4F), mock.Anything).
		Return([]byte{0x32, 0x00, crc}, nil).Once()

	data, err := dev.Read(ctx, regTemperature, 2)
	assert.NoError(t, err)
	assert.Equal(t, []byte{0x32, 0x00}, data)

	// a corrupted trailing byte is an explicit I/O error on raw Read
	bus.On("ReadFromAddr", mock.Anything, byte(0x4F), mock.Anything).
		Return([]byte{0x32, 0x00, crc ^ 0x01}, nil).Once()
	_, err = dev.Read(ctx, regTemperature, 2)
	assert.ErrorIs(t, err, ErrCRCMismatch)

	bus.AssertExpectations(t)
}

func TestGetTemperature(t *testing.T) {
	bus := new(MockI2CBus)
	dev, err := New(bus, 7)
	assert.NoError(t, err)

	bus.On("WriteToAddr", mock.Anything, byte(0x4F), []byte{0x00}).Return(nil).Once()
	bus.On("ReadFromAddr", mock.Anything, byte(0x4F), mock.Anything).
		Return([]byte{0x32, 0x00}, nil).Once()

	// POR configuration: 10-bit resolution, normal format
	temp, err := dev.GetTemperature(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 50.0, temp)

	bus.AssertExpectations(t)
}

func TestGetTemperature_CRCFailureYieldsNoData(t *testing.T) {
	bus := new(MockI2CBus)
	dev, err := New(bus, 7)
	assert.NoError(t, err)

	dev.SetPEC(true)

	bus.On("WriteToAddr", mock.Anything, byte(0x4F), []byte{0x00}).Return(nil).Once()
	bus.On("ReadFromAddr", mock.Anything, byte(0x4F), mock.Anything).
		Return([]byte{0x32, 0x00, 0xFF}, nil).Once()

	_, err = dev.GetTemperature(context.Background())
	assert.ErrorIs(t, err, ErrNoValidData)
	assert.NotErrorIs(t, err, ErrCRCMismatch)

	bus.AssertExpectations(t)
}

func TestGetTemperature_TransportFailure(t *testing.T) {
	bus := new(MockI2CBus)
	dev, err := New(bus, 3)
	assert.NoError(t, err)

	bus.On("WriteToAddr", mock.Anything, byte(0x4B), []byte{0x00}).
		Return(errors.New("bus read from 4b failed")).Once()

	_, err = dev.GetTemperature(context.Background())
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoValidData)

	bus.AssertExpectations(t)
}

func TestSetTOS_ImmediateWrite(t *testing.T) {
	bus := new(MockI2CBus)
	dev, err := New(bus, 7)
	assert.NoError(t, err)
	ctx := context.Background()

	// 56°C at the POR 10-bit resolution: 224 quarter-degree steps,
	// left justified
	bus.On("WriteToAddr", mock.Anything, byte(0x4F), []byte{0x03, 0x38, 0x00}).
		Return(nil).Once()
	assert.NoError(t, dev.SetTOS(ctx, 56))
	bus.AssertNumberOfCalls(t, "WriteToAddr", 1)

	// reading it back decodes the same value
	bus.On("WriteToAddr", mock.Anything, byte(0x4F), []byte{0x03}).Return(nil).Once()
	bus.On("ReadFromAddr", mock.Anything, byte(0x4F), mock.Anything).
		Return([]byte{0x38, 0x00}, nil).Once()
	tos, err := dev.TOS(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 56.0, tos)

	bus.AssertExpectations(t)
}

func TestSetTHyst_UsesActiveScale(t *testing.T) {
	bus := new(MockI2CBus)
	dev, err := New(bus, 7)
	assert.NoError(t, err)
	ctx := context.Background()

	// switch the committed resolution to 12-bit first
	assert.NoError(t, dev.SetResolution(Resolution12Bit))
	bus.On("WriteToAddr", mock.Anything, byte(0x4F), []byte{0x01, 0x00, 0x60}).
		Return(nil).Once()
	assert.NoError(t, dev.WriteConfig(ctx))

	// -25°C encodes with 4 fraction bits now
	bus.On("WriteToAddr", mock.Anything, byte(0x4F), []byte{0x02, 0xE7, 0x00}).
		Return(nil).Once()
	assert.NoError(t, dev.SetTHyst(ctx, -25))

	bus.AssertExpectations(t)
}

func TestReadConfig(t *testing.T) {
	bus := new(MockI2CBus)
	dev, err := New(bus, 7)
	assert.NoError(t, err)

	bus.On("WriteToAddr", mock.Anything, byte(0x4F), []byte{0x01}).Return(nil).Once()
	bus.On("ReadFromAddr", mock.Anything, byte(0x4F), mock.Anything).
		Return([]byte{0x1B, 0xF6}, nil).Once()

	assert.NoError(t, dev.ReadConfig(context.Background()))
	assert.Equal(t, FormatExtended, dev.Format())
	assert.Equal(t, Resolution12Bit, dev.Resolution())
	assert.Equal(t, ConversionRate8Hz, dev.ConversionRate())
	assert.True(t, dev.TimeoutDisabled())
	assert.False(t, dev.PEC())
	assert.Equal(t, FaultQueue6, dev.FaultQueue())
	assert.True(t, dev.Shutdown())
	assert.True(t, dev.InterruptMode())
	assert.Equal(t, uint16(0x1BF6), dev.ConfigBits())

	bus.AssertExpectations(t)
}

func TestReadConfig_NoPartialUpdate(t *testing.T) {
	bus := new(MockI2CBus)
	dev, err := New(bus, 7)
	assert.NoError(t, err)
	ctx := context.Background()

	dev.SetPEC(true)
	before := dev.ConfigBits()

	// corrupted checksum: the mirror must not change at all
	bus.On("WriteToAddr", mock.Anything, byte(0x4F), []byte{0x01}).Return(nil).Once()
	bus.On("ReadFromAddr", mock.Anything, byte(0x4F), mock.Anything).
		Return([]byte{0x00, 0x60, 0xFF}, nil).Once()
	assert.ErrorIs(t, dev.ReadConfig(ctx), ErrNoValidData)
	assert.Equal(t, before, dev.ConfigBits())

	// transport failure: same guarantee
	bus.On("WriteToAddr", mock.Anything, byte(0x4F), []byte{0x01}).Return(nil).Once()
	bus.On("ReadFromAddr", mock.Anything, byte(0x4F), mock.Anything).
		Return(nil, errors.New("i2c read failed")).Once()
	err = dev.ReadConfig(ctx)
	assert.Error(t, err)
	assert.Equal(t, before, dev.ConfigBits())

	bus.AssertExpectations(t)
}

func TestConfig_WriteReadRoundTrip(t *testing.T) {
	bus := new(MockI2CBus)
	dev, err := New(bus, 7)
	assert.NoError(t, err)
	ctx := context.Background()

	assert.NoError(t, dev.SetFormat(FormatExtended))
	assert.NoError(t, dev.SetResolution(Resolution12Bit))
	assert.NoError(t, dev.SetFaultQueue(FaultQueue4))
	dev.SetShutdown(true)

	var written []byte
	bus.On("WriteToAddr", mock.Anything, byte(0x4F), mock.MatchedBy(func(frame []byte) bool {
		if len(frame) == 3 && frame[0] == 0x01 {
			written = append([]byte{}, frame[1:]...)
			return true
		}
		return frame[0] == 0x01 && len(frame) == 1
	})).Return(nil)
	assert.NoError(t, dev.WriteConfig(ctx))

	// feeding the written bytes back reproduces the same mirror
	committed := dev.ConfigBits()
	bus.On("ReadFromAddr", mock.Anything, byte(0x4F), mock.Anything).
		Return(written, nil).Once()
	assert.NoError(t, dev.ReadConfig(ctx))
	assert.Equal(t, committed, dev.ConfigBits())
}

func TestMockThermometer(t *testing.T) {
	m := NewMockThermometer(func(ctx context.Context) (float64, error) { return 21.5, nil })
	temp, err := m.GetTemperature(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 21.5, temp)
}
