//go:build !windows

package driverversion

import (
	"context"
	"fmt"
	"runtime"
)

func queryPnPSignedDrivers(_ context.Context, _ string) ([]DriverRecord, error) {
	return nil, fmt.Errorf("%w: WMI is not available on %s", ErrSourceUnavailable, runtime.GOOS)
}
