//go:build !windows

package driverversion

import (
	"fmt"
	"runtime"
)

func readLocalMachineValue(_, _ string) (string, bool, error) {
	return "", false, fmt.Errorf("%w: registry is not available on %s", ErrSourceUnavailable, runtime.GOOS)
}
