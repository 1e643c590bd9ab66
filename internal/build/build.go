// Package build holds version information set with -ldflags at release time.
package build

import (
	"runtime/debug"
	"time"
)

var (
	commit  = ""
	date    = ""
	version = "dev"
	repoURL = ""
)

var Current = newBuild()

type Build struct {
	Commit    string    `json:"commit,omitempty"`
	Version   string    `json:"version"`
	Date      time.Time `json:"date,omitempty"`
	GoVersion string    `json:"go_version"`
	RepoURL   string    `json:"repo_url,omitempty"`
	CommitURL string    `json:"commit_url,omitempty"`
}

func newBuild() Build {
	date, _ := time.Parse(time.RFC3339, date)

	b := Build{
		Commit:  commit,
		Version: version,
		Date:    date,
		RepoURL: repoURL,
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		b.GoVersion = info.GoVersion
	}
	if repoURL != "" && commit != "" {
		b.CommitURL = repoURL + "/tree/" + commit
	}

	return b
}
