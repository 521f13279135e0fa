package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/breeze-rmm/amd-driver-manager/internal/driverversion"
	"github.com/breeze-rmm/amd-driver-manager/internal/uninstall"
)

func resolution() driverversion.Resolution {
	return driverversion.Resolution{
		Candidate:   "Version (Registry): 31.0.21905.1",
		Source:      "registry",
		DisplayText: "AMD Driver 1905.1",
		Attempts: []driverversion.Attempt{
			{Source: "enumeration", Outcome: driverversion.OutcomeFailed, Duration: 120 * time.Millisecond},
			{Source: "vendor-tool", Outcome: driverversion.OutcomeEmpty, Duration: 40 * time.Millisecond},
			{Source: "registry", Outcome: driverversion.OutcomeFound, Duration: time.Millisecond},
		},
	}
}

func TestObserveResolution(t *testing.T) {
	r := New()
	r.ObserveResolution(resolution())

	if got := testutil.ToFloat64(r.sourceAttempts.WithLabelValues("enumeration", "failed")); got != 1 {
		t.Fatalf("enumeration failed = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.sourceAttempts.WithLabelValues("registry", "found")); got != 1 {
		t.Fatalf("registry found = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.driverFound); got != 1 {
		t.Fatalf("driver_found = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.driverInfo.WithLabelValues("registry", "AMD Driver 1905.1")); got != 1 {
		t.Fatalf("driver_info = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.sourceDuration.WithLabelValues("enumeration")); got != 0.12 {
		t.Fatalf("enumeration duration = %v, want 0.12", got)
	}
}

func TestObserveResolutionNotFound(t *testing.T) {
	r := New()
	r.ObserveResolution(driverversion.Resolution{DisplayText: driverversion.NotFoundText})
	if got := testutil.ToFloat64(r.driverFound); got != 0 {
		t.Fatalf("driver_found = %v, want 0", got)
	}
	if n := testutil.CollectAndCount(r.driverInfo); n != 0 {
		t.Fatalf("driver_info series = %d, want 0", n)
	}
}

func TestObserveDispatch(t *testing.T) {
	r := New()
	r.ObserveDispatch(uninstall.DirectiveNone, uninstall.OutcomeSkipped)
	r.ObserveDispatch(uninstall.DirectiveRestartAfter, uninstall.OutcomeDeclined)
	r.ObserveDispatch(uninstall.DirectiveRestartAfter, uninstall.OutcomeDeclined)

	if n := testutil.CollectAndCount(r.dispatches); n != 1 {
		t.Fatalf("dispatch series = %d, want 1", n)
	}
	if got := testutil.ToFloat64(r.dispatches.WithLabelValues("restart", "declined")); got != 2 {
		t.Fatalf("restart/declined = %v, want 2", got)
	}
}

func TestWriteTextfile(t *testing.T) {
	r := New()
	r.ObserveResolution(resolution())

	path := filepath.Join(t.TempDir(), "textfile", "amd_driver_manager.prom")
	if err := r.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	for _, want := range []string{
		"amd_driver_manager_driver_found 1",
		`amd_driver_manager_source_attempts_total{outcome="found",source="registry"} 1`,
	} {
		if !strings.Contains(string(data), want) {
			t.Errorf("textfile missing %q:\n%s", want, data)
		}
	}
}

func TestWriteTextfileEmptyPathIsNoop(t *testing.T) {
	if err := New().WriteTextfile(""); err != nil {
		t.Fatalf("WriteTextfile(\"\") = %v", err)
	}
}
