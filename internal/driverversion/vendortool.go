package driverversion

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/breeze-rmm/amd-driver-manager/internal/executor"
)

// Runner runs a command to completion and reports its output and exit code.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (*executor.Result, error)
}

// VendorToolSource asks the vendor CLI for the driver version in a
// single-line, header-less CSV format.
type VendorToolSource struct {
	Command string
	Args    []string
	Label   string
	runner  Runner
}

// NewVendorToolSource creates a VendorToolSource. label names the tool in
// the candidate string, e.g. "AMDSMI".
func NewVendorToolSource(runner Runner, label, command string, args ...string) *VendorToolSource {
	return &VendorToolSource{Command: command, Args: args, Label: label, runner: runner}
}

func (s *VendorToolSource) ID() string { return "vendor-tool" }

func (s *VendorToolSource) Name() string { return s.Command }

// Lookup blocks until the tool exits. Success needs exit code 0 and
// non-blank stdout.
func (s *VendorToolSource) Lookup(ctx context.Context) (Finding, error) {
	result, err := s.runner.Run(ctx, s.Command, s.Args...)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			err = fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
		}
		return Finding{}, &SourceError{Source: s.ID(), Err: err}
	}

	out := strings.TrimSpace(result.Stdout)
	if result.ExitCode != 0 {
		return Finding{}, &SourceError{
			Source: s.ID(),
			Err:    fmt.Errorf("%s exited with code %d: %s", s.Command, result.ExitCode, strings.TrimSpace(result.Stderr)),
		}
	}
	if out == "" {
		return Finding{}, nil
	}

	return Finding{Candidate: fmt.Sprintf("Version (%s): %s", s.Label, out)}, nil
}
