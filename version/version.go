// Package version provides the secrets-to-env version strings.
package version

import (
	_ "embed"
	"runtime"
	"strings"
)

// buildVersion can be set at compile time with:
//
//	go build -ldflags "-X github.com/buildkite/secrets-to-env/version.buildVersion=abc" .

//go:embed VERSION
var baseVersion string
var buildVersion string

func Version() string {
	return strings.TrimSpace(baseVersion)
}

func BuildVersion() string {
	if buildVersion == "" {
		return "x"
	}
	return buildVersion
}

// FullVersion includes the build and platform, e.g. "1.0.0+x (linux; amd64)".
func FullVersion() string {
	return Version() + "+" + BuildVersion() + " (" + runtime.GOOS + "; " + runtime.GOARCH + ")"
}
