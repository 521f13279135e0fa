package ui

import (
	"errors"

	"github.com/breeze-rmm/amd-driver-manager/internal/uninstall"
)

// ErrDialogUnsupported is returned by NewDialogPrompter on platforms without
// native message boxes.
var ErrDialogUnsupported = errors.New("native dialogs are only available on Windows")

// Prompter is the dispatcher's prompter plus a non-blocking advisory.
type Prompter interface {
	uninstall.Prompter
	Warn(title, message string)
}

// NewPrompter returns native message boxes when useDialog is set, otherwise a
// terminal prompter. assumeYes pre-confirms every confirmation.
func NewPrompter(useDialog, assumeYes bool) (Prompter, error) {
	if useDialog {
		p, err := NewDialogPrompter()
		if err != nil {
			return nil, err
		}
		p.AssumeYes = assumeYes
		return p, nil
	}
	return NewTerminalPrompter(assumeYes), nil
}
