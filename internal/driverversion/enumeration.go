package driverversion

import (
	"context"
	"strings"
)

// DriverQueryFunc returns every signed PnP driver whose device name matches
// filter, in enumeration order.
type DriverQueryFunc func(ctx context.Context, filter string) ([]DriverRecord, error)

// EnumerationSource asks the platform's PnP driver inventory for devices
// whose name contains Filter.
type EnumerationSource struct {
	Filter string
	query  DriverQueryFunc
}

// NewEnumerationSource creates an EnumerationSource backed by the platform
// WMI query. On platforms without WMI every lookup is ErrSourceUnavailable.
func NewEnumerationSource(filter string) *EnumerationSource {
	return &EnumerationSource{Filter: filter, query: queryPnPSignedDrivers}
}

func (s *EnumerationSource) ID() string { return "enumeration" }

func (s *EnumerationSource) Name() string { return "WMI Win32_PnPSignedDriver" }

// Lookup returns one record per matching device. The first record's
// formatted string is the candidate.
func (s *EnumerationSource) Lookup(ctx context.Context) (Finding, error) {
	rows, err := s.query(ctx, s.Filter)
	if err != nil {
		return Finding{}, &SourceError{Source: s.ID(), Err: err}
	}

	records := matchingRecords(rows, s.Filter)
	if len(records) == 0 {
		return Finding{}, nil
	}
	return Finding{Records: records, Candidate: records[0].String()}, nil
}

// matchingRecords drops rows with a missing name or version and applies the
// filter case-sensitively (WQL LIKE is case-insensitive).
func matchingRecords(rows []DriverRecord, filter string) []DriverRecord {
	var out []DriverRecord
	for _, row := range rows {
		if row.DeviceName == "" || row.Version == "" {
			continue
		}
		if !strings.Contains(row.DeviceName, filter) {
			continue
		}
		out = append(out, row)
	}
	return out
}

// pnpDriverQuery builds the WQL statement for filter.
func pnpDriverQuery(filter string) string {
	return "SELECT DriverVersion, DeviceName FROM Win32_PnPSignedDriver WHERE DeviceName LIKE '%" + escapeWQLLike(filter) + "%'"
}

// escapeWQLLike makes filter literal inside a single-quoted WQL LIKE pattern.
func escapeWQLLike(filter string) string {
	var b strings.Builder
	for _, r := range filter {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\'':
			b.WriteString(`\'`)
		case '%', '_', '[':
			b.WriteByte('[')
			b.WriteRune(r)
			b.WriteByte(']')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
