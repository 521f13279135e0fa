//go:build windows

package ui

import (
	"fmt"

	"golang.org/x/sys/windows"
)

const (
	mbOK              = 0x00000000
	mbYesNo           = 0x00000004
	mbIconError       = 0x00000010
	mbIconWarning     = 0x00000030
	mbIconInformation = 0x00000040
	mbSetForeground   = 0x00010000
	mbTopMost         = 0x00040000
	idYes             = 6
)

// DialogPrompter shows native Win32 message boxes: confirmations with a
// warning icon, notices and advisories with an information icon, alerts with
// an error icon.
type DialogPrompter struct {
	AssumeYes bool
}

// NewDialogPrompter returns a prompter backed by MessageBoxW.
func NewDialogPrompter() (*DialogPrompter, error) {
	return &DialogPrompter{}, nil
}

func (p *DialogPrompter) Confirm(title, message string) (bool, error) {
	if p.AssumeYes {
		return true, nil
	}
	ret, err := messageBox(title, message, mbYesNo|mbIconWarning)
	if err != nil {
		return false, err
	}
	return ret == idYes, nil
}

func (p *DialogPrompter) Notify(title, message string) error {
	_, err := messageBox(title, message, mbOK|mbIconInformation)
	return err
}

func (p *DialogPrompter) Warn(title, message string) {
	_, _ = messageBox(title, message, mbOK|mbIconInformation)
}

func (p *DialogPrompter) Alert(title, message string) {
	_, _ = messageBox(title, message, mbOK|mbIconError)
}

func messageBox(title, message string, flags uint32) (int32, error) {
	text, err := windows.UTF16PtrFromString(message)
	if err != nil {
		return 0, fmt.Errorf("message box text: %w", err)
	}
	caption, err := windows.UTF16PtrFromString(title)
	if err != nil {
		return 0, fmt.Errorf("message box caption: %w", err)
	}
	ret, err := windows.MessageBox(0, text, caption, flags|mbSetForeground|mbTopMost)
	if ret == 0 {
		return 0, fmt.Errorf("MessageBoxW: %w", err)
	}
	return ret, nil
}
