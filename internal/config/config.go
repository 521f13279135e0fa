package config

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/viper"
)

const configName = "amd-driver-manager"

type Config struct {
	LogLevel      string `mapstructure:"log_level"`
	LogFormat     string `mapstructure:"log_format"`
	LogFile       string `mapstructure:"log_file"`
	LogMaxSizeMB  int    `mapstructure:"log_max_size_mb"`
	LogMaxBackups int    `mapstructure:"log_max_backups"`

	// DeviceFilter is matched case-sensitively against PnP device names.
	DeviceFilter string `mapstructure:"device_filter"`

	VendorTool      string   `mapstructure:"vendor_tool"`
	VendorToolArgs  []string `mapstructure:"vendor_tool_args"`
	VendorToolLabel string   `mapstructure:"vendor_tool_label"`

	RegistryKey   string `mapstructure:"registry_key"`
	RegistryValue string `mapstructure:"registry_value"`

	// CommandTimeoutSeconds bounds every external process. 0 waits forever.
	CommandTimeoutSeconds int `mapstructure:"command_timeout_seconds"`

	AuditEnabled    bool `mapstructure:"audit_enabled"`
	AuditMaxSizeMB  int  `mapstructure:"audit_max_size_mb"`
	AuditMaxBackups int  `mapstructure:"audit_max_backups"`

	MetricsTextfile string `mapstructure:"metrics_textfile"`
	Output          string `mapstructure:"output"`

	// File is the config file that was read, empty when none was found.
	File string `mapstructure:"-"`
}

func Default() *Config {
	return &Config{
		LogLevel:        "warn",
		LogFormat:       "text",
		LogMaxSizeMB:    10,
		LogMaxBackups:   3,
		DeviceFilter:    "AMD Radeon",
		VendorTool:      "amd-smi",
		VendorToolArgs:  []string{"--query-gpu=driver_version", "--format=csv,noheader"},
		VendorToolLabel: "AMDSMI",
		RegistryKey:     `SOFTWARE\AMD\Driver`,
		RegistryValue:   "DriverVersion",
		AuditEnabled:    true,
		AuditMaxSizeMB:  10,
		AuditMaxBackups: 3,
		Output:          "text",
	}
}

// Load reads the config file (explicit path or the default search path) and
// AMDDRIVER_* environment overrides on top of Default(). A missing file is
// not an error.
func Load(cfgFile string) (*Config, error) {
	cfg := Default()
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		v.AddConfigPath(configDir())
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("AMDDRIVER")
	v.AutomaticEnv()
	bindDefaults(v, cfg)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	cfg.File = v.ConfigFileUsed()

	return cfg, nil
}

// bindDefaults registers every key so AutomaticEnv can see it during
// Unmarshal even when the key is absent from the file.
func bindDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("log_format", cfg.LogFormat)
	v.SetDefault("log_file", cfg.LogFile)
	v.SetDefault("log_max_size_mb", cfg.LogMaxSizeMB)
	v.SetDefault("log_max_backups", cfg.LogMaxBackups)
	v.SetDefault("device_filter", cfg.DeviceFilter)
	v.SetDefault("vendor_tool", cfg.VendorTool)
	v.SetDefault("vendor_tool_args", cfg.VendorToolArgs)
	v.SetDefault("vendor_tool_label", cfg.VendorToolLabel)
	v.SetDefault("registry_key", cfg.RegistryKey)
	v.SetDefault("registry_value", cfg.RegistryValue)
	v.SetDefault("command_timeout_seconds", cfg.CommandTimeoutSeconds)
	v.SetDefault("audit_enabled", cfg.AuditEnabled)
	v.SetDefault("audit_max_size_mb", cfg.AuditMaxSizeMB)
	v.SetDefault("audit_max_backups", cfg.AuditMaxBackups)
	v.SetDefault("metrics_textfile", cfg.MetricsTextfile)
	v.SetDefault("output", cfg.Output)
}

// ConfigFilePath returns the default config file location for this platform.
func ConfigFilePath() string {
	return filepath.Join(configDir(), configName+".yaml")
}

// GetDataDir returns the directory for audit and log files.
func GetDataDir() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(programData(), "AmdDriverManager", "data")
	case "darwin":
		return "/Library/Application Support/AmdDriverManager/data"
	default:
		return "/var/lib/amd-driver-manager"
	}
}

func configDir() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(programData(), "AmdDriverManager")
	case "darwin":
		return "/Library/Application Support/AmdDriverManager"
	default:
		return "/etc/amd-driver-manager"
	}
}

func programData() string {
	if dir := os.Getenv("ProgramData"); dir != "" {
		return dir
	}
	return `C:\ProgramData`
}
