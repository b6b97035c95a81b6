// Package ingestcmder provides the ingest command for indexing a
// transcript file.
package ingestcmder

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/minuteshq/minutes/cmd/minutes/services"
	"github.com/minuteshq/minutes/pkg/config"
	"github.com/minuteshq/minutes/pkg/ingest"
	"github.com/minuteshq/minutes/pkg/logger"
)

type IngestCommander struct {
	userID    int64
	chatID    int64
	meetingID string
	date      string
	title     string
	force     bool
	configDir string
	debug     bool
	logger    *zap.Logger
}

const ingestLongDesc string = `Segment a transcript file into episodes and index it for retrieval.

The transcript is split into topical episodes by the configured text
generation model, chunked, and upserted into the user's vector
namespace. Discovered project aliases are merged into the project
registry.

Examples:
  minutes ingest standup.txt --user 42
  minutes ingest planning.txt --user 42 --date 2026-08-28 --title "Sprint planning"
  minutes ingest planning.txt --user 42 --meeting mtg_123 --force`

const ingestShortDesc string = "Segment and index a meeting transcript"

func NewIngestCmd() *cobra.Command {
	cmder := &IngestCommander{}

	cmd := &cobra.Command{
		Use:   "ingest <transcript-file>",
		Short: ingestShortDesc,
		Long:  ingestLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}
			cmder.configDir, err = cmd.Flags().GetString("config")
			if err != nil {
				return fmt.Errorf("could not get config flag: %v", err)
			}
			return cmder.run(args[0])
		},
	}

	cmd.Flags().Int64VarP(&cmder.userID, "user", "u", 0, "User id owning the meeting (required)")
	cmd.Flags().Int64Var(&cmder.chatID, "chat", 0, "Chat id the transcript came from")
	cmd.Flags().StringVarP(&cmder.meetingID, "meeting", "m", "", "Meeting id (default: generated)")
	cmd.Flags().StringVar(&cmder.date, "date", "", "Meeting date (e.g. 2026-08-28)")
	cmd.Flags().StringVarP(&cmder.title, "title", "t", "", "Meeting title")
	cmd.Flags().BoolVarP(&cmder.force, "force", "f", false, "Re-plan segmentation even when cached")
	cmd.MarkFlagRequired("user")

	return cmd
}

func (c *IngestCommander) run(path string) error {
	c.logger = logger.NewLogger(c.debug)
	defer c.logger.Sync()

	transcriptText, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading transcript: %w", err)
	}

	v, err := config.InitViper(c.configDir)
	if err != nil {
		return err
	}
	cfg := config.FromViper(v)

	svcs, err := services.Build(cfg, c.logger)
	if err != nil {
		return err
	}
	defer svcs.Close()

	meetingID := c.meetingID
	if meetingID == "" {
		meetingID = uuid.NewString()
	}

	metadata := map[string]string{}
	if c.date != "" {
		metadata["meeting_date"] = c.date
	}
	if c.title != "" {
		metadata["title"] = c.title
	}

	episodes, err := svcs.Pipeline.IngestMeeting(context.Background(), ingest.Request{
		UserID:     c.userID,
		ChatID:     c.chatID,
		MeetingID:  meetingID,
		Transcript: string(transcriptText),
		Metadata:   metadata,
		Force:      c.force,
	})
	if err != nil {
		return err
	}

	if len(episodes) == 0 {
		fmt.Println("Nothing indexed (indexing disabled or empty transcript).")
		return nil
	}

	fmt.Printf("Indexed meeting %s: %d episode(s)\n", meetingID, len(episodes))
	for _, episode := range episodes {
		fmt.Printf("  %s [%d:%d]", episode.EpisodeID, episode.StartChar, episode.EndChar)
		if episode.Summary != "" {
			fmt.Printf("  %s", episode.Summary)
		}
		fmt.Println()
	}

	return nil
}
