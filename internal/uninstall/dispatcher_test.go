package uninstall

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/breeze-rmm/amd-driver-manager/internal/audit"
	"github.com/breeze-rmm/amd-driver-manager/internal/executor"
)

// recorder captures prompter, runner and audit calls in a single ordered log.
type recorder struct {
	calls   []string
	confirm bool

	confirmErr error
	notifyErr  error
	runErr     error
	startErr   error

	titles []string
	alerts []string
	events []string

	runCtxErr error
}

func (r *recorder) Confirm(title, message string) (bool, error) {
	r.calls = append(r.calls, "confirm")
	r.titles = append(r.titles, title+"|"+message)
	return r.confirm, r.confirmErr
}

func (r *recorder) Notify(title, message string) error {
	r.calls = append(r.calls, "notify")
	r.titles = append(r.titles, title+"|"+message)
	return r.notifyErr
}

func (r *recorder) Alert(title, message string) {
	r.calls = append(r.calls, "alert")
	r.alerts = append(r.alerts, title+"|"+message)
}

func (r *recorder) Run(ctx context.Context, name string, args ...string) (*executor.Result, error) {
	r.calls = append(r.calls, "run "+name+" "+strings.Join(args, " "))
	r.runCtxErr = ctx.Err()
	if r.runErr != nil {
		return &executor.Result{ExitCode: -1}, r.runErr
	}
	return &executor.Result{Command: name, ExitCode: 0, Duration: time.Millisecond}, nil
}

func (r *recorder) Start(name string, args ...string) error {
	r.calls = append(r.calls, "start "+name+" "+strings.Join(args, " "))
	return r.startErr
}

func (r *recorder) Log(eventType string, runID string, details map[string]any) {
	r.events = append(r.events, eventType)
}

func dispatch(r *recorder, d Directive) Outcome {
	return NewDispatcher(r, r, r, "run-test").Dispatch(context.Background(), d)
}

func TestDispatchRestartOrder(t *testing.T) {
	r := &recorder{confirm: true}
	if got := dispatch(r, DirectiveRestartAfter); got != OutcomeCompleted {
		t.Fatalf("outcome = %s", got)
	}
	want := []string{
		"confirm",
		"run pnputil /delete-driver oem*.inf /uninstall /force",
		"notify",
		"start shutdown /r /f /t 0",
	}
	assertCalls(t, r.calls, want)
	if r.titles[0] != "Confirm Uninstall|Are you sure you want to uninstall the AMD driver and restart?" {
		t.Fatalf("confirm prompt = %q", r.titles[0])
	}
	if r.titles[1] != "Success|Uninstall command executed. Your computer will restart now." {
		t.Fatalf("notice = %q", r.titles[1])
	}
	wantEvents := []string{audit.EventUninstallConfirmed, audit.EventDriversRemoved, audit.EventPowerAction}
	assertCalls(t, r.events, wantEvents)
}

func TestDispatchShutdownOrder(t *testing.T) {
	r := &recorder{confirm: true}
	if got := dispatch(r, DirectiveShutdownAfter); got != OutcomeCompleted {
		t.Fatalf("outcome = %s", got)
	}
	if r.calls[len(r.calls)-1] != "start shutdown /s /f /t 0" {
		t.Fatalf("last call = %q", r.calls[len(r.calls)-1])
	}
	if !strings.HasPrefix(r.titles[0], "Confirm Uninstall and Shutdown|") {
		t.Fatalf("confirm title = %q", r.titles[0])
	}
	if r.titles[1] != "Success|Uninstall command executed. Your computer will shut down now." {
		t.Fatalf("notice = %q", r.titles[1])
	}
}

func TestDispatchNoRestartSkipsPowerAction(t *testing.T) {
	r := &recorder{confirm: true}
	if got := dispatch(r, DirectiveNoRestart); got != OutcomeCompleted {
		t.Fatalf("outcome = %s", got)
	}
	assertCalls(t, r.calls, []string{"confirm", "run pnputil /delete-driver oem*.inf /uninstall /force", "notify"})
	if r.titles[1] != "Success|Uninstall command executed. No restart will be performed." {
		t.Fatalf("notice = %q", r.titles[1])
	}
}

func TestDispatchDeclinedRunsNothing(t *testing.T) {
	for _, d := range []Directive{DirectiveRestartAfter, DirectiveNoRestart, DirectiveShutdownAfter} {
		r := &recorder{confirm: false}
		if got := dispatch(r, d); got != OutcomeDeclined {
			t.Fatalf("%s: outcome = %s", d, got)
		}
		assertCalls(t, r.calls, []string{"confirm"})
		assertCalls(t, r.events, []string{audit.EventUninstallDeclined})
	}
}

func TestDispatchNoneIsSkipped(t *testing.T) {
	r := &recorder{confirm: true}
	if got := dispatch(r, DirectiveNone); got != OutcomeSkipped {
		t.Fatalf("outcome = %s", got)
	}
	if len(r.calls) != 0 {
		t.Fatalf("expected no calls, got %v", r.calls)
	}
}

func TestDispatchFailures(t *testing.T) {
	tests := []struct {
		name      string
		r         *recorder
		wantCalls []string
	}{
		{
			name:      "uninstall spawn fails",
			r:         &recorder{confirm: true, runErr: errors.New("start pnputil: access denied")},
			wantCalls: []string{"confirm", "run pnputil /delete-driver oem*.inf /uninstall /force", "alert"},
		},
		{
			name: "power action spawn fails",
			r:    &recorder{confirm: true, startErr: errors.New("start shutdown: not found")},
			wantCalls: []string{
				"confirm",
				"run pnputil /delete-driver oem*.inf /uninstall /force",
				"notify",
				"start shutdown /r /f /t 0",
				"alert",
			},
		},
		{
			name:      "confirmation unavailable",
			r:         &recorder{confirmErr: errors.New("no terminal")},
			wantCalls: []string{"confirm", "alert"},
		},
		{
			name:      "notice fails",
			r:         &recorder{confirm: true, notifyErr: errors.New("dialog closed")},
			wantCalls: []string{"confirm", "run pnputil /delete-driver oem*.inf /uninstall /force", "notify", "alert"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := dispatch(tt.r, DirectiveRestartAfter); got != OutcomeFailed {
				t.Fatalf("outcome = %s", got)
			}
			assertCalls(t, tt.r.calls, tt.wantCalls)
			if len(tt.r.alerts) != 1 || !strings.HasPrefix(tt.r.alerts[0], "Error|Error during uninstallation: ") {
				t.Fatalf("alerts = %v", tt.r.alerts)
			}
			if tt.r.events[len(tt.r.events)-1] != audit.EventDispatchFailed {
				t.Fatalf("last audit event = %v", tt.r.events)
			}
		})
	}
}

func TestDispatchErrKeepsFailureCause(t *testing.T) {
	cause := errors.New("no terminal")
	r := &recorder{confirmErr: cause}
	d := NewDispatcher(r, r, r, "run-test")

	if got := d.Dispatch(context.Background(), DirectiveShutdownAfter); got != OutcomeFailed {
		t.Fatalf("outcome = %s", got)
	}
	if !errors.Is(d.Err(), cause) {
		t.Fatalf("Err() = %v, want wrapped %v", d.Err(), cause)
	}

	r.confirmErr = nil
	r.confirm = true
	if got := d.Dispatch(context.Background(), DirectiveNoRestart); got != OutcomeCompleted {
		t.Fatalf("outcome = %s", got)
	}
	if d.Err() != nil {
		t.Fatalf("Err() after success = %v, want nil", d.Err())
	}
}

func TestDispatchRemovalIgnoresCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &recorder{confirm: true}
	if got := NewDispatcher(r, r, r, "run-test").Dispatch(ctx, DirectiveNoRestart); got != OutcomeCompleted {
		t.Fatalf("outcome = %s", got)
	}
	if r.runCtxErr != nil {
		t.Fatalf("driver removal ran with a cancelled context: %v", r.runCtxErr)
	}
}

func TestDispatchWithoutRecorder(t *testing.T) {
	r := &recorder{confirm: true}
	got := NewDispatcher(r, r, nil, "").Dispatch(context.Background(), DirectiveNoRestart)
	if got != OutcomeCompleted {
		t.Fatalf("outcome = %s", got)
	}
}

func TestParseDirective(t *testing.T) {
	tests := []struct {
		argv []string
		want Directive
	}{
		{[]string{"app.exe"}, DirectiveNone},
		{nil, DirectiveNone},
		{[]string{"app.exe", "/uninstallrestart"}, DirectiveRestartAfter},
		{[]string{"app.exe", "/UNINSTALLRESTART"}, DirectiveRestartAfter},
		{[]string{"app.exe", "/UninstallNoRestart"}, DirectiveNoRestart},
		{[]string{"app.exe", "/uninstallshutdown"}, DirectiveShutdownAfter},
		{[]string{"app.exe", "/uninstall"}, DirectiveNone},
		{[]string{"app.exe", "uninstallrestart"}, DirectiveNone},
		{[]string{"app.exe", "/uninstallrestart "}, DirectiveNone},
		{[]string{"app.exe", "--verbose", "/uninstallrestart"}, DirectiveNone},
	}
	for _, tt := range tests {
		if got := ParseDirective(tt.argv); got != tt.want {
			t.Errorf("ParseDirective(%q) = %s, want %s", tt.argv, got, tt.want)
		}
	}
}

func TestDirectiveByName(t *testing.T) {
	for _, name := range []string{"restart", "NoRestart", "SHUTDOWN"} {
		if _, ok := DirectiveByName(name); !ok {
			t.Errorf("DirectiveByName(%q) not found", name)
		}
	}
	if _, ok := DirectiveByName("none"); ok {
		t.Error("none should not be a valid uninstall name")
	}
}

func assertCalls(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("calls = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("call %d = %q, want %q (all: %q)", i, got[i], want[i], got)
		}
	}
}
