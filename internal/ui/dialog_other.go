//go:build !windows

package ui

// DialogPrompter is unavailable off Windows.
type DialogPrompter struct {
	AssumeYes bool
}

// NewDialogPrompter always fails off Windows.
func NewDialogPrompter() (*DialogPrompter, error) {
	return nil, ErrDialogUnsupported
}

func (p *DialogPrompter) Confirm(title, message string) (bool, error) {
	return false, ErrDialogUnsupported
}

func (p *DialogPrompter) Notify(title, message string) error {
	return ErrDialogUnsupported
}

func (p *DialogPrompter) Warn(title, message string) {}

func (p *DialogPrompter) Alert(title, message string) {}
