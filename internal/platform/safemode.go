package platform

import "os"

// SafeBootEnv is set by Windows to the safe-boot option ("Minimal",
// "Network", ...) when the system was started in safe mode.
const SafeBootEnv = "SAFEBOOT"

// SafeModeAdvisory is shown at startup when the system is not in safe mode.
const (
	SafeModeAdvisoryTitle   = "Attention"
	SafeModeAdvisoryMessage = "AmdDriverManager detected that you are NOT in safe mode...\n" +
		"For an error-free cleanup, it is recommended to restart in safe mode."
)

// InSafeMode reports whether getenv returns a non-empty SAFEBOOT value.
// A nil getenv reads the process environment.
func InSafeMode(getenv func(string) string) bool {
	if getenv == nil {
		getenv = os.Getenv
	}
	return getenv(SafeBootEnv) != ""
}
