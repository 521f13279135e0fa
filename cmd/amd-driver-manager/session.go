package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/breeze-rmm/amd-driver-manager/internal/audit"
	"github.com/breeze-rmm/amd-driver-manager/internal/config"
	"github.com/breeze-rmm/amd-driver-manager/internal/driverversion"
	"github.com/breeze-rmm/amd-driver-manager/internal/executor"
	"github.com/breeze-rmm/amd-driver-manager/internal/logging"
	"github.com/breeze-rmm/amd-driver-manager/internal/metrics"
	"github.com/breeze-rmm/amd-driver-manager/internal/platform"
	"github.com/breeze-rmm/amd-driver-manager/internal/privilege"
	"github.com/breeze-rmm/amd-driver-manager/internal/ui"
	"github.com/breeze-rmm/amd-driver-manager/internal/uninstall"
)

// session is everything one invocation needs: config, logging, audit,
// metrics, the prompter and the process runner.
type session struct {
	cfg      *config.Config
	runID    string
	log      *slog.Logger
	audit    *audit.Logger
	metrics  *metrics.Recorder
	prompter ui.Prompter
	exec     *executor.Executor
	host     platform.HostInfo
	out      io.Writer
	closers  []io.Closer
}

func newSession() (*session, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if outputFmt != "" {
		cfg.Output = outputFmt
	}

	s := &session{
		cfg:     cfg,
		runID:   uuid.NewString(),
		metrics: metrics.New(),
		exec:    executor.New(cfg.CommandTimeoutSeconds),
		out:     os.Stdout,
	}

	if err := s.initLogging(); err != nil {
		return nil, err
	}
	// Validate after logging so clamped values are reported through the
	// configured handler.
	cfg.Validate()

	s.log = logging.WithRun(logging.L("main"), s.runID)

	if cfg.AuditEnabled {
		al, err := audit.NewLogger(config.GetDataDir(), cfg.AuditMaxSizeMB, cfg.AuditMaxBackups)
		if err != nil {
			// Audit is best effort: an unprivileged user may not be able to
			// write the data dir.
			s.log.Warn("audit log unavailable", logging.KeyError, err)
		} else {
			s.audit = al
			s.closers = append(s.closers, al)
		}
	}

	prompter, err := ui.NewPrompter(useDialog, assumeYes)
	if err != nil {
		s.log.Warn("falling back to terminal prompts", logging.KeyError, err)
		prompter = ui.NewTerminalPrompter(assumeYes)
	}
	if tp, ok := prompter.(*ui.TerminalPrompter); ok && !strings.EqualFold(cfg.Output, ui.FormatText) {
		// Keep stdout parseable for json/yaml.
		tp.Out = os.Stderr
	}
	s.prompter = prompter

	s.host = platform.DescribeHost(nil)
	s.audit.Log(audit.EventRunStarted, s.runID, map[string]any{
		"version":  version,
		"hostname": s.host.Hostname,
		"safeMode": s.host.SafeMode,
		"elevated": privilege.IsElevated(),
		"args":     os.Args[1:],
	})
	s.log.Debug("session started", "configFile", cfg.File, "safeMode", s.host.SafeMode)
	return s, nil
}

func (s *session) initLogging() error {
	var w io.Writer = os.Stderr
	if s.cfg.LogFile != "" {
		path := s.cfg.LogFile
		if !filepath.IsAbs(path) {
			path = filepath.Join(config.GetDataDir(), path)
		}
		rw, err := logging.NewRotatingWriter(path, s.cfg.LogMaxSizeMB, s.cfg.LogMaxBackups, s.logRotated)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		s.closers = append(s.closers, rw)
		w = logging.TeeWriter(os.Stderr, rw)
	}
	logging.Init(s.cfg.LogFormat, s.cfg.LogLevel, w)
	return nil
}

// logRotated records a diagnostic log rollover in the audit trail, so a gap
// in the diagnostic log can be matched to the backup that holds it.
func (s *session) logRotated(r logging.Rotation) {
	details := map[string]any{"path": r.Path, "backup": r.Backup, "bytes": r.Size}
	if r.Err != nil {
		details["error"] = r.Err.Error()
		logging.WithRun(logging.L("main"), s.runID).Warn("diagnostic log backups not shifted cleanly", logging.KeyError, r.Err)
	}
	s.audit.Log(audit.EventDiagnosticLogRotated, s.runID, details)
}

func (s *session) Close() {
	if err := s.metrics.WriteTextfile(s.cfg.MetricsTextfile); err != nil {
		s.log.Warn("metrics textfile not written", logging.KeyError, err)
	}
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i].Close()
	}
}

// advise shows the safe-mode advisory when the system is not in safe mode.
func (s *session) advise() {
	if s.host.SafeMode {
		return
	}
	s.prompter.Warn(platform.SafeModeAdvisoryTitle, platform.SafeModeAdvisoryMessage)
}

func (s *session) resolve(ctx context.Context) driverversion.Resolution {
	sources := driverversion.DefaultSources(s.cfg, s.exec)
	ctx = logging.NewContext(ctx, logging.WithRun(logging.L("driverversion"), s.runID))
	res := driverversion.NewResolver(sources...).Resolve(ctx)

	s.metrics.ObserveResolution(res)
	s.audit.Log(audit.EventDriverResolved, s.runID, map[string]any{
		"displayText": res.DisplayText,
		"source":      res.Source,
		"records":     len(res.Records),
	})
	return res
}

func (s *session) report(res driverversion.Resolution) error {
	return ui.Render(s.out, ui.NewReport(s.runID, s.host, res), s.cfg.Output)
}

func (s *session) dispatch(ctx context.Context, d uninstall.Directive) (uninstall.Outcome, error) {
	if privilege.RequiresElevation(d) && !privilege.IsElevated() {
		s.log.Warn("uninstall requested without elevation; driver removal will likely fail",
			logging.KeyDirective, d.String())
	}
	dispatcher := uninstall.NewDispatcher(s.prompter, s.exec, s.audit, s.runID)
	outcome := dispatcher.Dispatch(ctx, d)
	s.metrics.ObserveDispatch(d, outcome)
	s.log.Info("dispatch finished", logging.KeyDirective, d.String(), "outcome", string(outcome))
	return outcome, dispatcher.Err()
}

// runStartup is the root command: advisory, resolve and show, then the
// directive if one was given.
func runStartup(ctx context.Context, d uninstall.Directive) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	defer s.Close()

	s.advise()
	if err := s.report(s.resolve(ctx)); err != nil {
		return err
	}
	return outcomeError(s.dispatch(ctx, d))
}

func runResolve(ctx context.Context) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	defer s.Close()

	res := s.resolve(ctx)
	if err := s.report(res); err != nil {
		return err
	}
	if res.Err != nil {
		return &exitError{code: 1}
	}
	return nil
}

func runUninstall(ctx context.Context, d uninstall.Directive) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	defer s.Close()

	s.advise()
	return outcomeError(s.dispatch(ctx, d))
}

func runStatus() error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if outputFmt != "" {
		cfg.Output = outputFmt
	}
	logging.Init(cfg.LogFormat, cfg.LogLevel, nil)
	cfg.Validate()

	status := ui.Status{
		Host:       platform.DescribeHost(nil),
		Elevated:   privilege.IsElevated(),
		ConfigFile: cfg.File,
		DataDir:    config.GetDataDir(),
	}
	if cfg.AuditEnabled {
		status.AuditStatus = auditStatus(filepath.Join(status.DataDir, audit.FileName))
	}
	return ui.RenderStatus(os.Stdout, status, cfg.Output)
}

func auditStatus(path string) string {
	n, err := audit.Verify(path)
	switch {
	case os.IsNotExist(err):
		return "no entries"
	case err != nil:
		return fmt.Sprintf("chain broken after %d entries: %v", n, err)
	default:
		return fmt.Sprintf("%d entries, chain intact", n)
	}
}

// outcomeError maps a dispatch outcome and its failure cause to the process
// exit status. Failures have already been shown through the prompter; a
// declined confirmation is not a failure. A confirmation that could not be
// asked for lack of a terminal exits 2 so scripts can tell it apart.
func outcomeError(o uninstall.Outcome, cause error) error {
	if o != uninstall.OutcomeFailed {
		return nil
	}
	if errors.Is(cause, ui.ErrNoTerminal) {
		return &exitError{code: 2}
	}
	return &exitError{code: 1}
}
