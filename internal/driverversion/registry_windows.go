//go:build windows

package driverversion

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/sys/windows/registry"
)

// readLocalMachineValue reads a string, multi-string or integer value. The
// key handle is closed on every return path.
func readLocalMachineValue(keyPath, valueName string) (string, bool, error) {
	key, err := registry.OpenKey(registry.LOCAL_MACHINE, keyPath, registry.QUERY_VALUE)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("open HKLM\\%s: %w", keyPath, err)
	}
	defer key.Close()

	s, _, err := key.GetStringValue(valueName)
	switch {
	case err == nil:
		return s, true, nil
	case errors.Is(err, registry.ErrNotExist):
		return "", false, nil
	case !errors.Is(err, registry.ErrUnexpectedType):
		return "", false, fmt.Errorf("read %s: %w", valueName, err)
	}

	if n, _, err := key.GetIntegerValue(valueName); err == nil {
		return strconv.FormatUint(n, 10), true, nil
	}
	if list, _, err := key.GetStringsValue(valueName); err == nil {
		return strings.Join(list, " "), true, nil
	}
	return "", false, fmt.Errorf("read %s: unsupported value type", valueName)
}
