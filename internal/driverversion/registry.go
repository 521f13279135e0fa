package driverversion

import (
	"context"
	"fmt"
)

// RegistryReadFunc reads one value below HKEY_LOCAL_MACHINE. found is false
// when the key or value does not exist.
type RegistryReadFunc func(keyPath, valueName string) (value string, found bool, err error)

// RegistrySource reads the version the AMD installer leaves in the
// machine-wide registry.
type RegistrySource struct {
	KeyPath   string
	ValueName string
	read      RegistryReadFunc
}

// NewRegistrySource creates a RegistrySource reading HKLM\keyPath\valueName.
func NewRegistrySource(keyPath, valueName string) *RegistrySource {
	return &RegistrySource{KeyPath: keyPath, ValueName: valueName, read: readLocalMachineValue}
}

func (s *RegistrySource) ID() string { return "registry" }

func (s *RegistrySource) Name() string { return `HKLM\` + s.KeyPath + `\` + s.ValueName }

func (s *RegistrySource) Lookup(ctx context.Context) (Finding, error) {
	if err := ctx.Err(); err != nil {
		return Finding{}, &SourceError{Source: s.ID(), Err: err}
	}

	value, found, err := s.read(s.KeyPath, s.ValueName)
	if err != nil {
		return Finding{}, &SourceError{Source: s.ID(), Err: err}
	}
	if !found || value == "" {
		return Finding{}, nil
	}

	return Finding{Candidate: fmt.Sprintf("Version (Registry): %s", value)}, nil
}
