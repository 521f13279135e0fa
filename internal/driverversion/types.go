package driverversion

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrSourceUnavailable means the lookup mechanism cannot run on this host
// (wrong platform, COM/WMI unavailable, tool not installed). It is treated
// the same as a source that found nothing.
var ErrSourceUnavailable = errors.New("source unavailable")

// DriverRecord is one device/driver pair reported by device enumeration.
type DriverRecord struct {
	DeviceName string `json:"deviceName" yaml:"deviceName"`
	Version    string `json:"version" yaml:"version"`
}

// String formats the record the way it is listed and used as a candidate.
func (r DriverRecord) String() string {
	return fmt.Sprintf("Device: %s, Version: %s", r.DeviceName, r.Version)
}

// Finding is what a single source produced. Records is only filled by
// enumeration-style sources; Candidate is empty when the source found nothing.
type Finding struct {
	Records   []DriverRecord
	Candidate string
}

// Source is one independent place a driver version can come from.
type Source interface {
	ID() string
	Name() string
	Lookup(ctx context.Context) (Finding, error)
}

// Outcome classifies a single source attempt.
type Outcome string

const (
	OutcomeFound   Outcome = "found"
	OutcomeEmpty   Outcome = "empty"
	OutcomeFailed  Outcome = "failed"
	OutcomeSkipped Outcome = "skipped"
)

// Attempt records what happened when the resolver reached a source.
type Attempt struct {
	Source   string        `json:"source" yaml:"source"`
	Outcome  Outcome       `json:"outcome" yaml:"outcome"`
	Error    string        `json:"error,omitempty" yaml:"error,omitempty"`
	Duration time.Duration `json:"durationNs" yaml:"durationNs"`
}

// Resolution is the result of one pass over all sources. It is built fresh
// on every call to Resolve.
type Resolution struct {
	Records []DriverRecord `json:"records" yaml:"records"`
	// Lines is what a list view shows: one formatted entry per record, or
	// a single "not found" entry.
	Lines       []string  `json:"lines" yaml:"lines"`
	Candidate   string    `json:"candidate,omitempty" yaml:"candidate,omitempty"`
	Source      string    `json:"source,omitempty" yaml:"source,omitempty"`
	DisplayText string    `json:"displayText" yaml:"displayText"`
	Attempts    []Attempt `json:"attempts" yaml:"attempts"`
	Err         error     `json:"-" yaml:"-"`
}

// Found reports whether any source produced a candidate.
func (r Resolution) Found() bool {
	return r.Candidate != ""
}

// SourceError wraps a failure from a named source.
type SourceError struct {
	Source string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Source, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}
