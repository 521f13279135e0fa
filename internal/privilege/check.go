package privilege

import "github.com/breeze-rmm/amd-driver-manager/internal/uninstall"

// RequiresElevation reports whether the directive removes drivers or changes
// power state. Resolving the driver version never needs elevation.
func RequiresElevation(d uninstall.Directive) bool {
	return d != uninstall.DirectiveNone
}
