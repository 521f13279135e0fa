package driverversion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

type fakeSource struct {
	id      string
	finding Finding
	err     error
	panics  bool
	calls   int
}

func (s *fakeSource) ID() string { return s.id }

func (s *fakeSource) Name() string { return s.id }

func (s *fakeSource) Lookup(ctx context.Context) (Finding, error) {
	s.calls++
	if s.panics {
		panic("boom")
	}
	return s.finding, s.err
}

func enumerationFinding(records ...DriverRecord) Finding {
	if len(records) == 0 {
		return Finding{}
	}
	return Finding{Records: records, Candidate: records[0].String()}
}

func TestResolveUsesEnumerationRecordsAndSkipsLaterSources(t *testing.T) {
	recs := []DriverRecord{
		{DeviceName: "AMD Radeon RX 6800 XT", Version: "31.0.21905.1"},
		{DeviceName: "AMD Radeon(TM) Graphics", Version: "31.0.14057.5004"},
	}
	enum := &fakeSource{id: "enumeration", finding: enumerationFinding(recs...)}
	tool := &fakeSource{id: "vendor-tool", finding: Finding{Candidate: "Version (AMDSMI): 24.10.1"}}
	reg := &fakeSource{id: "registry", finding: Finding{Candidate: "Version (Registry): 24.10.1"}}

	res := NewResolver(enum, tool, reg).Resolve(context.Background())

	if len(res.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %v", len(res.Lines), res.Lines)
	}
	if res.Lines[0] != "Device: AMD Radeon RX 6800 XT, Version: 31.0.21905.1" {
		t.Fatalf("unexpected first line %q", res.Lines[0])
	}
	if res.Lines[1] != "Device: AMD Radeon(TM) Graphics, Version: 31.0.14057.5004" {
		t.Fatalf("unexpected second line %q", res.Lines[1])
	}
	if res.Candidate != res.Lines[0] {
		t.Fatalf("candidate = %q, want first record %q", res.Candidate, res.Lines[0])
	}
	// Truncation applies to the full formatted candidate, not the bare version.
	want := "AMD Driver " + res.Candidate[len(res.Candidate)-6:]
	if res.DisplayText != want || res.DisplayText != "AMD Driver 1905.1" {
		t.Fatalf("DisplayText = %q, want %q", res.DisplayText, want)
	}
	if res.Source != "enumeration" {
		t.Fatalf("Source = %q", res.Source)
	}
	if tool.calls != 0 || reg.calls != 0 {
		t.Fatalf("later sources should not run: tool=%d registry=%d", tool.calls, reg.calls)
	}
	if len(res.Attempts) != 3 || res.Attempts[1].Outcome != OutcomeSkipped || res.Attempts[2].Outcome != OutcomeSkipped {
		t.Fatalf("unexpected attempts: %+v", res.Attempts)
	}
}

func TestResolvePreservesDuplicateDevices(t *testing.T) {
	rec := DriverRecord{DeviceName: "AMD Radeon RX 7900 XTX", Version: "32.0.11021.1011"}
	enum := &fakeSource{id: "enumeration", finding: enumerationFinding(rec, rec)}

	res := NewResolver(enum).Resolve(context.Background())

	if len(res.Records) != 2 || len(res.Lines) != 2 {
		t.Fatalf("duplicates should be preserved, got %d records", len(res.Records))
	}
}

func TestResolveFallsBackToVendorTool(t *testing.T) {
	enum := &fakeSource{id: "enumeration"}
	tool := &fakeSource{id: "vendor-tool", finding: Finding{Candidate: "Version (AMDSMI): 24.10.1"}}
	reg := &fakeSource{id: "registry", finding: Finding{Candidate: "Version (Registry): 23.1"}}

	res := NewResolver(enum, tool, reg).Resolve(context.Background())

	if len(res.Lines) != 1 || res.Lines[0] != NoEnumerationText {
		t.Fatalf("expected synthetic enumeration line, got %v", res.Lines)
	}
	if res.Candidate != "Version (AMDSMI): 24.10.1" {
		t.Fatalf("Candidate = %q", res.Candidate)
	}
	if res.DisplayText != "AMD Driver 4.10.1" {
		t.Fatalf("DisplayText = %q", res.DisplayText)
	}
	if reg.calls != 0 {
		t.Fatal("registry should not run after the vendor tool succeeded")
	}
}

func TestResolveFallsBackToRegistryWhenToolFails(t *testing.T) {
	enum := &fakeSource{id: "enumeration", err: ErrSourceUnavailable}
	tool := &fakeSource{id: "vendor-tool", err: errors.New("exit status 1")}
	reg := &fakeSource{id: "registry", finding: Finding{Candidate: "Version (Registry): 31.0.21905.1"}}

	res := NewResolver(enum, tool, reg).Resolve(context.Background())

	if res.Candidate != "Version (Registry): 31.0.21905.1" {
		t.Fatalf("Candidate = %q", res.Candidate)
	}
	if res.DisplayText != "AMD Driver 1905.1" {
		t.Fatalf("DisplayText = %q", res.DisplayText)
	}
	if res.Err != nil {
		t.Fatalf("source failures must not surface as Err: %v", res.Err)
	}
	if res.Attempts[0].Outcome != OutcomeFailed || res.Attempts[1].Outcome != OutcomeFailed || res.Attempts[2].Outcome != OutcomeFound {
		t.Fatalf("unexpected attempts: %+v", res.Attempts)
	}
}

func TestResolveAllSourcesExhausted(t *testing.T) {
	enum := &fakeSource{id: "enumeration", err: ErrSourceUnavailable}
	tool := &fakeSource{id: "vendor-tool", finding: Finding{}}
	reg := &fakeSource{id: "registry", err: errors.New("access denied")}

	res := NewResolver(enum, tool, reg).Resolve(context.Background())

	if res.DisplayText != NotFoundText {
		t.Fatalf("DisplayText = %q, want %q", res.DisplayText, NotFoundText)
	}
	if res.Found() {
		t.Fatal("Found() should be false")
	}
	if len(res.Lines) != 1 || res.Lines[0] != NoEnumerationText {
		t.Fatalf("unexpected lines %v", res.Lines)
	}
	if res.Err != nil {
		t.Fatalf("exhausted sources are not an error: %v", res.Err)
	}
}

func TestResolveNoSources(t *testing.T) {
	res := NewResolver().Resolve(context.Background())
	if res.DisplayText != NotFoundText {
		t.Fatalf("DisplayText = %q", res.DisplayText)
	}
}

func TestResolveRecoversFromPanickingSource(t *testing.T) {
	enum := &fakeSource{id: "enumeration", panics: true}
	reg := &fakeSource{id: "registry", finding: Finding{Candidate: "Version (Registry): 1.2"}}

	res := NewResolver(enum, reg).Resolve(context.Background())

	if res.Attempts[0].Outcome != OutcomeFailed || !strings.Contains(res.Attempts[0].Error, "panic") {
		t.Fatalf("expected panic recorded as failure, got %+v", res.Attempts[0])
	}
	if res.Candidate != "Version (Registry): 1.2" {
		t.Fatalf("Candidate = %q", res.Candidate)
	}
}

type panickyName struct{ fakeSource }

func (p *panickyName) ID() string { panic("bad source id") }

func TestResolveTopLevelPanicBecomesErrorText(t *testing.T) {
	res := NewResolver(&panickyName{}).Resolve(context.Background())

	if res.Err == nil {
		t.Fatal("expected Err to be set")
	}
	if res.DisplayText != "Error loading AMD driver info: bad source id" {
		t.Fatalf("DisplayText = %q", res.DisplayText)
	}
	if len(res.Lines) != 1 || res.Lines[0] != res.DisplayText {
		t.Fatalf("Lines = %q, want the error text as the only line", res.Lines)
	}
}

func TestResolveIsFreshEachPass(t *testing.T) {
	enum := &fakeSource{id: "enumeration", finding: enumerationFinding(DriverRecord{DeviceName: "AMD Radeon Pro W6800", Version: "31.0.1"})}
	r := NewResolver(enum)

	first := r.Resolve(context.Background())
	second := r.Resolve(context.Background())

	if len(first.Records) != 1 || len(second.Records) != 1 {
		t.Fatalf("records leaked between passes: %d then %d", len(first.Records), len(second.Records))
	}
	if enum.calls != 2 {
		t.Fatalf("source should be queried on every pass, got %d calls", enum.calls)
	}
}

func TestFormatDisplay(t *testing.T) {
	tests := []struct {
		candidate string
		want      string
	}{
		{"", NotFoundText},
		{"1.2", "AMD Driver 1.2"},
		{"12345", "AMD Driver 12345"},
		{"123456", "AMD Driver 123456"},
		{"1234567", "AMD Driver 234567"},
		{"Version (Registry): 31.0.21905.1", "AMD Driver 1905.1"},
		{"Version (AMDSMI): 24.10.1", "AMD Driver 4.10.1"},
		{"Gerät: Ä", "AMD Driver rät: Ä"},
	}
	for _, tt := range tests {
		if got := FormatDisplay(tt.candidate); got != tt.want {
			t.Errorf("FormatDisplay(%q) = %q, want %q", tt.candidate, got, tt.want)
		}
	}
}

func TestFormatDisplaySuffixProperty(t *testing.T) {
	for n := 1; n <= 20; n++ {
		c := strings.Repeat("v", n-1) + fmt.Sprint(n%10)
		got := FormatDisplay(c)
		want := "AMD Driver " + c
		if len(c) >= 6 {
			want = "AMD Driver " + c[len(c)-6:]
		}
		if got != want {
			t.Fatalf("FormatDisplay(%q) = %q, want %q", c, got, want)
		}
	}
}
