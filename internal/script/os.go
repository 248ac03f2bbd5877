package script

import "runtime"

// OperatingSystem is the platform constraint a command may declare.
type OperatingSystem string

const (
	Windows OperatingSystem = "windows"
	Linux   OperatingSystem = "linux"
	MacOS   OperatingSystem = "macos"
)

// CurrentOS reports the running platform as an OperatingSystem value.
// It is captured once at script entry and threaded through the run context
// rather than consulted ad hoc during execution.
func CurrentOS() OperatingSystem {
	switch runtime.GOOS {
	case "windows":
		return Windows
	case "darwin":
		return MacOS
	default:
		return Linux
	}
}

// Valid reports whether the value is one of the recognized platforms.
func (o OperatingSystem) Valid() bool {
	switch o {
	case Windows, Linux, MacOS:
		return true
	}
	return false
}
