package core

// DisplayDriver is the character-display surface the LCD actor drives.
// The method set is shaped after HD44780-class panel drivers so target
// adapters are one-to-one.
type DisplayDriver interface {
	// Configure brings the panel up for the given geometry. The LCD
	// actor retries on a timer until this stops returning an error.
	Configure(cols, rows uint8) error

	// Clear wipes the panel and homes the cursor
	Clear() error

	// SetCursor moves the write position (column, then row)
	SetCursor(col, row uint8) error

	// Print writes text at the current cursor position
	Print(text []byte) error
}

// Global singleton used by the LCD actor.
var displayDriver DisplayDriver

// SetDisplayDriver is called by target-specific code to register its display.
func SetDisplayDriver(d DisplayDriver) {
	displayDriver = d
}

// MustDisplay returns the configured display or panics if missing.
func MustDisplay() DisplayDriver {
	if displayDriver == nil {
		panic("display driver not configured")
	}
	return displayDriver
}
