package platform

import (
	"runtime"

	"github.com/shirou/gopsutil/v3/host"
)

// HostInfo describes the machine the tool runs on.
type HostInfo struct {
	Hostname     string `json:"hostname" yaml:"hostname"`
	OS           string `json:"os" yaml:"os"`
	OSVersion    string `json:"osVersion,omitempty" yaml:"osVersion,omitempty"`
	OSBuild      string `json:"osBuild,omitempty" yaml:"osBuild,omitempty"`
	Architecture string `json:"architecture" yaml:"architecture"`
	SafeMode     bool   `json:"safeMode" yaml:"safeMode"`
}

// DescribeHost collects host details. Lookup failures leave fields empty;
// the tool's workflow never depends on them.
func DescribeHost(getenv func(string) string) HostInfo {
	info := HostInfo{
		OS:           runtime.GOOS,
		Architecture: runtime.GOARCH,
		SafeMode:     InSafeMode(getenv),
	}

	hostInfo, err := host.Info()
	if err == nil {
		info.Hostname = hostInfo.Hostname
		info.OS = hostInfo.OS
		info.OSVersion = joinNonEmpty(hostInfo.Platform, hostInfo.PlatformVersion)
		info.OSBuild = hostInfo.KernelVersion
	}

	return info
}

func joinNonEmpty(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + " " + b
	}
}
