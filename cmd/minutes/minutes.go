// Package minutescmder
package minutescmder

import (
	"github.com/spf13/cobra"

	askcmder "github.com/minuteshq/minutes/cmd/minutes/ask"
	ingestcmder "github.com/minuteshq/minutes/cmd/minutes/ingest"
	initcmder "github.com/minuteshq/minutes/cmd/minutes/initialize"
	projectscmder "github.com/minuteshq/minutes/cmd/minutes/projects"
	purgecmder "github.com/minuteshq/minutes/cmd/minutes/purge"
	servecmder "github.com/minuteshq/minutes/cmd/minutes/serve"
)

const minutesLongDesc string = `Minutes indexes your meeting transcripts and answers questions about them.

Common workflows:
  minutes init                 Write a default config.toml
  minutes serve                Run the API server
  minutes ingest <file>        Segment and index a transcript
  minutes ask "..."            Ask a question over indexed meetings
  minutes projects             List discovered projects
  minutes purge                Remove a user's indexed data`

const minutesShortDesc string = "Minutes - Meeting transcript search and answers"

func NewMinutesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "minutes",
		Short: minutesShortDesc,
		Long:  minutesLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().StringP("config", "c", "", "Directory holding config.toml")

	// Add subcommands
	cmd.AddCommand(initcmder.NewInitCmd())
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(ingestcmder.NewIngestCmd())
	cmd.AddCommand(askcmder.NewAskCmd())
	cmd.AddCommand(projectscmder.NewProjectsCmd())
	cmd.AddCommand(purgecmder.NewPurgeCmd())

	return cmd
}
