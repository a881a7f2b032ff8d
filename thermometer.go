package max31875

import "context"

// Thermometer is the read-side contract of the driver, small enough
// for consumers to mock.
type Thermometer interface {
	GetTemperature(ctx context.Context) (float64, error)
}

var _ Thermometer = (*MAX31875)(nil)

// TemperatureBehaviorFunc produces a temperature in Celsius or an
// error whenever the mock is read.
type TemperatureBehaviorFunc func(ctx context.Context) (float64, error)

// MockThermometer is a Thermometer backed by a behavior function, so
// consumers can test without hardware.
//
// Example usage:
//
//	m := NewMockThermometer(func(ctx context.Context) (float64, error) { return 25.0, nil })
type MockThermometer struct {
	behavior TemperatureBehaviorFunc
}

func NewMockThermometer(behavior TemperatureBehaviorFunc) *MockThermometer {
	return &MockThermometer{behavior: behavior}
}

// GetTemperature returns whatever the behavior function produces.
func (m *MockThermometer) GetTemperature(ctx context.Context) (float64, error) {
	return m.behavior(ctx)
}
