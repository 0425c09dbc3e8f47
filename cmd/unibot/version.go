package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// Build information variables (set by Makefile during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitBranch = "unknown"
	GitCommit = "unknown"
)

var versionJSON bool

// VersionOutput represents the version output structure
type VersionOutput struct {
	Version   string `json:"version"`
	BuildTime string `json:"build_time"`
	GitBranch string `json:"git_branch"`
	GitCommit string `json:"git_commit"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  "Display version number, build time, git branch, and commit ID",
	RunE: func(cmd *cobra.Command, args []string) error {
		return writeVersion(cmd.OutOrStdout(), versionJSON)
	},
}

func writeVersion(w io.Writer, asJSON bool) error {
	version := VersionOutput{
		Version:   Version,
		BuildTime: BuildTime,
		GitBranch: GitBranch,
		GitCommit: GitCommit,
	}

	if asJSON {
		return printJSON(w, version)
	}
	fmt.Fprintln(w, "unibot version information:")
	fmt.Fprintf(w, "  Version:   %s\n", version.Version)
	fmt.Fprintf(w, "  BuildTime: %s\n", version.BuildTime)
	fmt.Fprintf(w, "  GitBranch: %s\n", version.GitBranch)
	fmt.Fprintf(w, "  GitCommit: %s\n", version.GitCommit)
	return nil
}

func init() {
	versionCmd.Flags().BoolVar(&versionJSON, "json", false, "Output in JSON format")
}
