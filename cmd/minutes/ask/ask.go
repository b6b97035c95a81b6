// Package askcmder provides the ask command for querying indexed meetings.
package askcmder

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/minuteshq/minutes/cmd/minutes/services"
	"github.com/minuteshq/minutes/pkg/config"
	"github.com/minuteshq/minutes/pkg/logger"
	"github.com/minuteshq/minutes/pkg/query"
)

type AskCommander struct {
	userID    int64
	configDir string
	debug     bool
	logger    *zap.Logger
}

const askLongDesc string = `Ask a free-form question over your indexed meetings.

The question is parsed into a structured intent, relevant transcript
chunks are retrieved from the vector store, and a cited answer is
synthesized. Follow-up questions within the session window inherit
context from the previous one.

Examples:
  minutes ask --user 42 "What did we decide about Piggy Bank last week?"
  minutes ask --user 42 "What are my action items from yesterday?"`

const askShortDesc string = "Ask a question over indexed meetings"

func NewAskCmd() *cobra.Command {
	cmder := &AskCommander{}

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: askShortDesc,
		Long:  askLongDesc,
		Args:  cobra.MinimumNArgs(1),
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
			return cmder.run(strings.Join(args, " "))
		},
	}

	cmd.Flags().Int64VarP(&cmder.userID, "user", "u", 0, "User id to query (required)")
	cmd.MarkFlagRequired("user")

	return cmd
}

func (c *AskCommander) run(message string) error {
	c.logger = logger.NewLogger(c.debug)
	defer c.logger.Sync()

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

	answer, err := svcs.Queries.AnswerQuery(context.Background(), c.userID, message)
	if err != nil {
		return err
	}

	if answer == "" {
		fmt.Println(query.NoAnswerMessage(message))
		return nil
	}

	fmt.Println(answer)
	return nil
}
