package contracts

import (
	"fmt"
	"runtime"

	"github.com/jonathanmorenozapico-source/Tsv-Project/pkg/contracts/events"
)

const (
	Version = "1.0.0"

	// TableLayoutVersion changes whenever the exported table layout
	// (index column, group column, one column per document) changes.
	TableLayoutVersion = "v1"

	APIVersion = "v1"
)

// Set with -ldflags "-X github.com/jonathanmorenozapico-source/Tsv-Project/pkg/contracts.GitCommit=..."
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// VersionInfo describes a build and the contracts it speaks
type VersionInfo struct {
	Version       string `json:"version"`
	BuildTime     string `json:"build_time"`
	GitCommit     string `json:"git_commit"`
	GoVersion     string `json:"go_version"`
	Platform      string `json:"platform"`
	TableLayout   string `json:"table_layout"`
	APIVersion    string `json:"api_version"`
	EventProtocol string `json:"event_protocol"`
}

func GetVersionInfo() VersionInfo {
	return VersionInfo{
		Version:       Version,
		BuildTime:     BuildTime,
		GitCommit:     GitCommit,
		GoVersion:     runtime.Version(),
		Platform:      runtime.GOOS + "/" + runtime.GOARCH,
		TableLayout:   TableLayoutVersion,
		APIVersion:    APIVersion,
		EventProtocol: events.ProtocolVersion,
	}
}

// GetFullVersionString is what `tsvmerge version` prints
func GetFullVersionString() string {
	info := GetVersionInfo()
	return fmt.Sprintf("tsvmerge v%s (commit %s, built %s, %s %s, table layout %s)",
		info.Version, info.GitCommit, info.BuildTime, info.GoVersion, info.Platform, info.TableLayout)
}
