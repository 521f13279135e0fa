package config

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode"
)

var validLogLevels = map[string]bool{
	"debug":   true,
	"info":    true,
	"warn":    true,
	"warning": true,
	"error":   true,
}

var validOutputs = map[string]bool{
	"text": true,
	"json": true,
	"yaml": true,
}

const maxCommandTimeoutSeconds = 3600

// Validate checks the config for invalid values and returns all errors found.
// Values that would break a lookup are reset to their defaults; the rest are
// reported as warnings and do not prevent startup.
func (c *Config) Validate() []error {
	var errs []error
	def := Default()

	if c.LogLevel != "" && !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Errorf("log_level %q is not valid (use debug, info, warn, error)", c.LogLevel))
	}

	if c.LogFormat != "" && c.LogFormat != "text" && c.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("log_format %q is not valid (use text or json)", c.LogFormat))
	}

	if c.Output == "" {
		c.Output = def.Output
	} else if !validOutputs[strings.ToLower(c.Output)] {
		errs = append(errs, fmt.Errorf("output %q is not valid (use text, json or yaml), using %q", c.Output, def.Output))
		c.Output = def.Output
	}

	if strings.TrimSpace(c.DeviceFilter) == "" {
		errs = append(errs, fmt.Errorf("device_filter is empty, using %q", def.DeviceFilter))
		c.DeviceFilter = def.DeviceFilter
	} else if strings.IndexFunc(c.DeviceFilter, unicode.IsControl) >= 0 {
		errs = append(errs, fmt.Errorf("device_filter contains control characters, using %q", def.DeviceFilter))
		c.DeviceFilter = def.DeviceFilter
	}

	if strings.TrimSpace(c.VendorTool) == "" {
		errs = append(errs, fmt.Errorf("vendor_tool is empty, using %q", def.VendorTool))
		c.VendorTool = def.VendorTool
		c.VendorToolArgs = def.VendorToolArgs
	}
	if c.VendorToolLabel == "" {
		c.VendorToolLabel = def.VendorToolLabel
	}

	if c.RegistryKey == "" || c.RegistryValue == "" {
		errs = append(errs, fmt.Errorf("registry_key and registry_value are required, using %s\\%s", def.RegistryKey, def.RegistryValue))
		c.RegistryKey = def.RegistryKey
		c.RegistryValue = def.RegistryValue
	}

	if c.CommandTimeoutSeconds < 0 {
		errs = append(errs, fmt.Errorf("command_timeout_seconds %d is negative, clamping to 0 (no timeout)", c.CommandTimeoutSeconds))
		c.CommandTimeoutSeconds = 0
	} else if c.CommandTimeoutSeconds > maxCommandTimeoutSeconds {
		errs = append(errs, fmt.Errorf("command_timeout_seconds %d exceeds maximum %d, clamping", c.CommandTimeoutSeconds, maxCommandTimeoutSeconds))
		c.CommandTimeoutSeconds = maxCommandTimeoutSeconds
	}

	if c.LogMaxSizeMB < 1 {
		c.LogMaxSizeMB = def.LogMaxSizeMB
	}
	if c.LogMaxBackups < 1 {
		c.LogMaxBackups = def.LogMaxBackups
	}
	if c.AuditMaxSizeMB < 1 {
		c.AuditMaxSizeMB = def.AuditMaxSizeMB
	}
	if c.AuditMaxBackups < 1 {
		c.AuditMaxBackups = def.AuditMaxBackups
	}

	for _, err := range errs {
		slog.Warn("config validation", "error", err)
	}

	return errs
}
