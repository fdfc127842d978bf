// Package platform resolves the running environment to one of a closed
// set of platform tags. Sources in the manifest may be restricted to a
// subset of tags; unrestricted sources apply everywhere.
package platform

import (
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// Tag identifies a supported platform.
type Tag string

const (
	Linux   Tag = "linux"
	Darwin  Tag = "darwin"
	WSL     Tag = "wsl"
	Unknown Tag = "unknown"
)

// ValidTags lists the tags accepted in manifests and CLI arguments.
// Unknown is a resolver result, never a valid restriction.
var ValidTags = []Tag{Linux, Darwin, WSL}

// IsValid reports whether s names a tag usable as a source restriction.
func IsValid(s string) bool {
	for _, t := range ValidTags {
		if string(t) == s {
			return true
		}
	}
	return false
}

// Resolve determines the current platform tag. The result is stable
// within a single process run.
func Resolve() Tag {
	return classify(runtime.GOOS, kernelVersion())
}

// classify maps OS signals to a tag. WSL presents as linux with a
// Microsoft marker in the kernel version string.
func classify(goos, kernel string) Tag {
	switch goos {
	case "darwin":
		return Darwin
	case "linux":
		if strings.Contains(strings.ToLower(kernel), "microsoft") {
			return WSL
		}
		return Linux
	default:
		return Unknown
	}
}

// kernelVersion reads the kernel version string, preferring
// /proc/version and falling back to uname -r.
func kernelVersion() string {
	if data, err := os.ReadFile("/proc/version"); err == nil {
		return string(data)
	}
	if out, err := exec.Command("uname", "-r").Output(); err == nil {
		return string(out)
	}
	return ""
}

// Matches reports whether a source restricted to the given tags applies
// on the current platform. An absent or empty restriction means the
// source applies everywhere, including on Unknown platforms.
func Matches(current Tag, restriction []Tag) bool {
	if len(restriction) == 0 {
		return true
	}
	for _, t := range restriction {
		if t == current {
			return true
		}
	}
	return false
}
