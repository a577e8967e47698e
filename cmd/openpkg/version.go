package main

import (
	_ "embed"
	"runtime/debug"
	"strings"
)

//go:embed VERSION
var embeddedVersion string

// Version reports the CLI version. Builds installed via `go install` carry
// the module version; anything else is a development build, reported as the
// embedded version plus the VCS revision when the build has one.
func Version() string {
	version := "openpkg " + strings.TrimSpace(embeddedVersion)

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return version
	}
	if v := info.Main.Version; v != "" && v != "(devel)" {
		return "openpkg " + v
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && len(s.Value) >= 7 {
			return version + "-dev (" + s.Value[:7] + ")"
		}
	}
	return version + "-dev"
}
