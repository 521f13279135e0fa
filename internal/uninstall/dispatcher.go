package uninstall

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/breeze-rmm/amd-driver-manager/internal/audit"
	"github.com/breeze-rmm/amd-driver-manager/internal/executor"
	"github.com/breeze-rmm/amd-driver-manager/internal/logging"
)

var log = logging.L("uninstall")

// Outcome is how a Dispatch call ended.
type Outcome string

const (
	OutcomeSkipped   Outcome = "skipped"
	OutcomeDeclined  Outcome = "declined"
	OutcomeCompleted Outcome = "completed"
	OutcomeFailed    Outcome = "failed"
)

// Prompter is the user-facing surface the dispatcher talks to.
type Prompter interface {
	// Confirm asks a yes/no question and reports whether the answer was yes.
	Confirm(title, message string) (bool, error)
	Notify(title, message string) error
	Alert(title, message string)
}

// Runner runs external commands. Run blocks until exit; Start does not wait.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (*executor.Result, error)
	Start(name string, args ...string) error
}

// Recorder receives audit events. A nil *audit.Logger is a valid Recorder.
type Recorder interface {
	Log(eventType string, runID string, details map[string]any)
}

type command struct {
	name string
	args []string
}

// DeleteDriversCommand force-removes every staged third-party (oem*.inf)
// driver package.
var DeleteDriversCommand = command{name: "pnputil", args: []string{"/delete-driver", "oem*.inf", "/uninstall", "/force"}}

var (
	restartCommand  = &command{name: "shutdown", args: []string{"/r", "/f", "/t", "0"}}
	shutdownCommand = &command{name: "shutdown", args: []string{"/s", "/f", "/t", "0"}}
)

type plan struct {
	confirmTitle   string
	confirmMessage string
	doneMessage    string
	power          *command
}

var plans = map[Directive]plan{
	DirectiveRestartAfter: {
		confirmTitle:   "Confirm Uninstall",
		confirmMessage: "Are you sure you want to uninstall the AMD driver and restart?",
		doneMessage:    "Uninstall command executed. Your computer will restart now.",
		power:          restartCommand,
	},
	DirectiveNoRestart: {
		confirmTitle:   "Confirm Uninstall",
		confirmMessage: "Are you sure you want to uninstall the AMD driver without restarting?",
		doneMessage:    "Uninstall command executed. No restart will be performed.",
	},
	DirectiveShutdownAfter: {
		confirmTitle:   "Confirm Uninstall and Shutdown",
		confirmMessage: "Are you sure you want to uninstall the AMD driver and shut down the computer?",
		doneMessage:    "Uninstall command executed. Your computer will shut down now.",
		power:          shutdownCommand,
	},
}

// Dispatcher runs the confirm, execute, notify, power-action sequence for a
// directive. It is linear: no retries and no rollback.
type Dispatcher struct {
	prompter Prompter
	runner   Runner
	recorder Recorder
	runID    string
	err      error
}

// NewDispatcher creates a Dispatcher. recorder may be nil.
func NewDispatcher(prompter Prompter, runner Runner, recorder Recorder, runID string) *Dispatcher {
	return &Dispatcher{prompter: prompter, runner: runner, recorder: recorder, runID: runID}
}

// Dispatch performs the directive's workflow and reports how it ended. A
// failure at any step is shown through Prompter.Alert; steps that already
// ran are not undone, so the driver may be gone even when the outcome is
// OutcomeFailed.
func (d *Dispatcher) Dispatch(ctx context.Context, directive Directive) Outcome {
	d.err = nil
	p, ok := plans[directive]
	if !ok {
		return OutcomeSkipped
	}

	logger := logging.WithRun(log, d.runID).With(logging.KeyDirective, directive.String())

	outcome, err := d.run(ctx, directive, p, logger)
	if err != nil {
		logger.Error("uninstall failed", logging.KeyError, err)
		d.record(audit.EventDispatchFailed, map[string]any{"directive": directive.String(), "error": err.Error()})
		d.prompter.Alert("Error", fmt.Sprintf("Error during uninstallation: %v", err))
		d.err = err
		return OutcomeFailed
	}
	return outcome
}

// Err returns the cause of the last OutcomeFailed, or nil.
func (d *Dispatcher) Err() error {
	return d.err
}

func (d *Dispatcher) run(ctx context.Context, directive Directive, p plan, logger *slog.Logger) (Outcome, error) {
	confirmed, err := d.prompter.Confirm(p.confirmTitle, p.confirmMessage)
	if err != nil {
		return OutcomeFailed, fmt.Errorf("confirmation: %w", err)
	}
	if !confirmed {
		logger.Info("uninstall declined")
		d.record(audit.EventUninstallDeclined, map[string]any{"directive": directive.String()})
		return OutcomeDeclined, nil
	}
	d.record(audit.EventUninstallConfirmed, map[string]any{"directive": directive.String()})

	// The exit code is recorded but not checked: pnputil reports per-package
	// failures through it and the workflow proceeds regardless. Once started,
	// removal is not interruptible; only the executor's timeout bounds it.
	logger.Warn("removing staged driver packages", "command", DeleteDriversCommand.name)
	result, err := d.runner.Run(context.WithoutCancel(ctx), DeleteDriversCommand.name, DeleteDriversCommand.args...)
	if err != nil {
		return OutcomeFailed, fmt.Errorf("run %s: %w", DeleteDriversCommand.name, err)
	}
	logger.Info("driver removal finished", "exitCode", result.ExitCode, logging.KeyDurationMs, result.Duration.Milliseconds())
	d.record(audit.EventDriversRemoved, map[string]any{
		"directive":  directive.String(),
		"command":    result.Command,
		"exitCode":   result.ExitCode,
		"durationMs": result.Duration.Milliseconds(),
	})

	if err := d.prompter.Notify("Success", p.doneMessage); err != nil {
		return OutcomeFailed, fmt.Errorf("notify: %w", err)
	}

	if p.power != nil {
		if err := d.runner.Start(p.power.name, p.power.args...); err != nil {
			return OutcomeFailed, fmt.Errorf("power action: %w", err)
		}
		logger.Warn("power action issued", "command", p.power.name, "args", p.power.args)
		d.record(audit.EventPowerAction, map[string]any{
			"directive": directive.String(),
			"command":   p.power.name,
			"args":      p.power.args,
			"issuedAt":  time.Now().UTC().Format(time.RFC3339),
		})
	}

	return OutcomeCompleted, nil
}

func (d *Dispatcher) record(eventType string, details map[string]any) {
	if d.recorder == nil {
		return
	}
	d.recorder.Log(eventType, d.runID, details)
}
