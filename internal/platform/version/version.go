// Package version reports the build of the running binary. The variables are
// set with -ldflags "-X github.com/pscheid92/lingobridge/internal/platform/version.Version=...".
package version

import (
	"fmt"
	"runtime"
)

var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

const appName = "lingobridge"

// Info is served on /version and exported as the build_info metric.
type Info struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
}

func Get() Info {
	return Info{
		Name:      appName,
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
	}
}

// ShortCommit trims a full SHA to the first seven characters.
func (i Info) ShortCommit() string {
	if len(i.Commit) > 7 {
		return i.Commit[:7]
	}
	return i.Commit
}

func (i Info) String() string {
	return fmt.Sprintf("%s %s (%s, built %s, %s)", i.Name, i.Version, i.ShortCommit(), i.BuildTime, i.GoVersion)
}
