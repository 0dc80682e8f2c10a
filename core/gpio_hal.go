package core

// Pin identifies a hardware GPIO pin number.
type Pin uint32

// GPIODriver is the narrow GPIO surface the actors use.
// Platform-specific implementations handle actual hardware control;
// register access never appears above this interface.
type GPIODriver interface {
	// ConfigureOutput claims pin as a push-pull digital output
	ConfigureOutput(pin Pin) error

	// ConfigureInputPullUp claims pin as a digital input with pull-up resistor
	ConfigureInputPullUp(pin Pin) error

	// ConfigureInputPullDown claims pin as a digital input with pull-down resistor
	ConfigureInputPullDown(pin Pin) error

	// SetPin drives the pin high (true) or low (false)
	SetPin(pin Pin, level bool)

	// ReadPin samples the current electrical level
	ReadPin(pin Pin) bool
}

// Global singleton used by core code.
var gpioDriver GPIODriver

// SetGPIODriver is called by target-specific code to register its driver.
func SetGPIODriver(d GPIODriver) {
	gpioDriver = d
}

// MustGPIO returns the configured driver or panics if missing.
func MustGPIO() GPIODriver {
	if gpioDriver == nil {
		panic("GPIO driver not configured")
	}
	return gpioDriver
}
