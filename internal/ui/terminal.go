package ui

import (
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// ErrNoTerminal is returned by Confirm when stdin cannot be prompted and the
// caller did not pre-confirm.
var ErrNoTerminal = errors.New("confirmation required but stdin is not a terminal (use --yes)")

// TerminalPrompter asks for confirmation with a bubbletea dialog and prints
// notices to the terminal.
type TerminalPrompter struct {
	In  io.Reader
	Out io.Writer
	// Err receives alerts; defaults to Out.
	Err io.Writer
	// AssumeYes answers every confirmation affirmatively without prompting.
	AssumeYes bool

	isTTY func() bool
}

// NewTerminalPrompter prompts on the process's stdin/stdout.
func NewTerminalPrompter(assumeYes bool) *TerminalPrompter {
	return &TerminalPrompter{
		In:        os.Stdin,
		Out:       os.Stdout,
		Err:       os.Stderr,
		AssumeYes: assumeYes,
		isTTY:     stdinIsTerminal,
	}
}

func stdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func (p *TerminalPrompter) Confirm(title, message string) (bool, error) {
	if p.AssumeYes {
		fmt.Fprintln(p.Out, mutedStyle.Render(title+": "+message+" (confirmed by --yes)"))
		return true, nil
	}
	if p.isTTY == nil || !p.isTTY() {
		return false, ErrNoTerminal
	}
	return runConfirm(p.In, p.Out, title, message)
}

func (p *TerminalPrompter) Notify(title, message string) error {
	_, err := fmt.Fprintln(p.Out, renderNotice(noticeInfo, title, message))
	return err
}

// Warn prints an advisory, such as the safe-mode notice.
func (p *TerminalPrompter) Warn(title, message string) {
	fmt.Fprintln(p.Out, renderNotice(noticeWarning, title, message))
}

func (p *TerminalPrompter) Alert(title, message string) {
	w := p.Err
	if w == nil {
		w = p.Out
	}
	fmt.Fprintln(w, renderNotice(noticeError, title, message))
}

func renderNotice(kind noticeKind, title, message string) string {
	return noticeStyles[kind].Render(title+":") + " " + message
}
