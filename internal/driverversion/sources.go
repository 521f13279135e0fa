package driverversion

import "github.com/breeze-rmm/amd-driver-manager/internal/config"

// DefaultSources returns the sources in priority order: device enumeration,
// vendor CLI tool, registry.
func DefaultSources(cfg *config.Config, runner Runner) []Source {
	return []Source{
		NewEnumerationSource(cfg.DeviceFilter),
		NewVendorToolSource(runner, cfg.VendorToolLabel, cfg.VendorTool, cfg.VendorToolArgs...),
		NewRegistrySource(cfg.RegistryKey, cfg.RegistryValue),
	}
}
