//go:build windows

package driverversion

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"
)

const (
	hresultSFalse         = 0x00000001
	hresultRPCChangedMode = 0x80010106
	wmiNamespace          = `root\cimv2`
	wmiLocatorProgID      = "WbemScripting.SWbemLocator"
)

// queryPnPSignedDrivers runs the Win32_PnPSignedDriver query on a locked OS
// thread with its own COM apartment. Every COM object is released before
// returning, on success and on failure.
func queryPnPSignedDrivers(ctx context.Context, filter string) ([]DriverRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	uninit, err := initCOM()
	if err != nil {
		return nil, fmt.Errorf("%w: initialize COM: %v", ErrSourceUnavailable, err)
	}
	if uninit {
		defer ole.CoUninitialize()
	}

	unknown, err := oleutil.CreateObject(wmiLocatorProgID)
	if err != nil {
		return nil, fmt.Errorf("%w: create WMI locator: %v", ErrSourceUnavailable, err)
	}
	defer unknown.Release()

	locator, err := unknown.QueryInterface(ole.IID_IDispatch)
	if err != nil {
		return nil, fmt.Errorf("query WMI locator: %w", err)
	}
	defer locator.Release()

	serviceVar, err := oleutil.CallMethod(locator, "ConnectServer", nil, wmiNamespace)
	if err != nil {
		return nil, fmt.Errorf("%w: connect %s: %v", ErrSourceUnavailable, wmiNamespace, err)
	}
	defer serviceVar.Clear()
	service := serviceVar.ToIDispatch()

	resultVar, err := oleutil.CallMethod(service, "ExecQuery", pnpDriverQuery(filter))
	if err != nil {
		return nil, fmt.Errorf("exec WMI query: %w", err)
	}
	defer resultVar.Clear()
	result := resultVar.ToIDispatch()

	var records []DriverRecord
	err = oleutil.ForEach(result, func(item *ole.VARIANT) error {
		defer item.Clear()
		obj := item.ToIDispatch()
		if obj == nil {
			return nil
		}
		records = append(records, DriverRecord{
			DeviceName: stringProperty(obj, "DeviceName"),
			Version:    stringProperty(obj, "DriverVersion"),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("enumerate WMI results: %w", err)
	}

	return records, nil
}

// initCOM initializes COM for the current thread. uninit reports whether
// the caller owns a matching CoUninitialize.
func initCOM() (uninit bool, err error) {
	err = ole.CoInitializeEx(0, ole.COINIT_MULTITHREADED)
	if err == nil {
		return true, nil
	}

	var oleErr *ole.OleError
	if errors.As(err, &oleErr) {
		switch oleErr.Code() {
		case hresultSFalse:
			return true, nil
		case hresultRPCChangedMode:
			return false, nil
		}
	}
	return false, err
}

// stringProperty returns a string property, or "" when it is missing or NULL.
func stringProperty(obj *ole.IDispatch, name string) string {
	v, err := oleutil.GetProperty(obj, name)
	if err != nil {
		return ""
	}
	defer v.Clear()
	return v.ToString()
}
