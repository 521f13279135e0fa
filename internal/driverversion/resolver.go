package driverversion

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/breeze-rmm/amd-driver-manager/internal/logging"
)

var log = logging.L("driverversion")

const (
	displayPrefix     = "AMD Driver "
	displaySuffixLen  = 6
	NotFoundText      = "No AMD driver version found."
	NoEnumerationText = "No AMD drivers found via WMI."
	errorTextPrefix   = "Error loading AMD driver info: "
)

// Resolver walks sources in priority order until one yields a candidate.
type Resolver struct {
	sources []Source
}

// NewResolver creates a Resolver that consults sources in the given order.
func NewResolver(sources ...Source) *Resolver {
	return &Resolver{sources: sources}
}

// Resolve runs one resolution pass. It never panics and never returns an
// error: source failures are logged and skipped, and an unexpected failure
// becomes an error display string.
//
// Each source blocks for as long as its lookup takes. ctx is the only bound;
// nothing here adds a timeout.
func (r *Resolver) Resolve(ctx context.Context) (res Resolution) {
	logger := logging.FromContextOr(ctx, log)

	defer func() {
		if p := recover(); p != nil {
			err := fmt.Errorf("%v", p)
			logger.Error("driver version resolution aborted", logging.KeyError, err)
			text := errorTextPrefix + err.Error()
			res = Resolution{
				Attempts:    res.Attempts,
				Lines:       []string{text},
				DisplayText: text,
				Err:         err,
			}
		}
	}()

	for _, src := range r.sources {
		if res.Candidate != "" {
			res.Attempts = append(res.Attempts, Attempt{Source: src.ID(), Outcome: OutcomeSkipped})
			continue
		}

		start := time.Now()
		finding, err := lookup(ctx, src)
		attempt := Attempt{Source: src.ID(), Duration: time.Since(start)}

		res.Records = append(res.Records, finding.Records...)

		switch {
		case err != nil:
			attempt.Outcome = OutcomeFailed
			attempt.Error = err.Error()
			if errors.Is(err, ErrSourceUnavailable) {
				logger.Debug("source unavailable", logging.KeySource, src.ID(), logging.KeyError, err)
			} else {
				logger.Info("source failed", logging.KeySource, src.ID(), logging.KeyError, err)
			}
		case finding.Candidate == "":
			attempt.Outcome = OutcomeEmpty
			logger.Debug("source found nothing", logging.KeySource, src.ID())
		default:
			attempt.Outcome = OutcomeFound
			res.Candidate = finding.Candidate
			res.Source = src.ID()
			logger.Info("driver version candidate", logging.KeySource, src.ID(), "candidate", finding.Candidate)
		}
		res.Attempts = append(res.Attempts, attempt)
	}

	if len(res.Records) > 0 {
		res.Lines = make([]string, 0, len(res.Records))
		for _, rec := range res.Records {
			res.Lines = append(res.Lines, rec.String())
		}
	} else {
		res.Lines = []string{NoEnumerationText}
	}

	res.DisplayText = FormatDisplay(res.Candidate)
	return res
}

// lookup calls src, converting a panic inside the source into an error so
// one misbehaving source cannot abort the chain.
func lookup(ctx context.Context, src Source) (f Finding, err error) {
	defer func() {
		if p := recover(); p != nil {
			f = Finding{}
			err = &SourceError{Source: src.ID(), Err: fmt.Errorf("panic: %v", p)}
		}
	}()
	return src.Lookup(ctx)
}

// FormatDisplay builds the summary label from a candidate. The label keeps
// only the last six characters of the whole candidate string, prefix
// included; it is cosmetic and does not parse a version number.
func FormatDisplay(candidate string) string {
	if candidate == "" {
		return NotFoundText
	}
	runes := []rune(candidate)
	if len(runes) < displaySuffixLen {
		return displayPrefix + candidate
	}
	return displayPrefix + string(runes[len(runes)-displaySuffixLen:])
}
