// Package purgecmder provides the purge command for removing a user's
// indexed data.
package purgecmder

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/minuteshq/minutes/cmd/minutes/services"
	"github.com/minuteshq/minutes/pkg/config"
	"github.com/minuteshq/minutes/pkg/logger"
)

type PurgeCommander struct {
	userID    int64
	chatID    int64
	configDir string
	debug     bool
	logger    *zap.Logger
}

const purgeLongDesc string = `Remove a user's stored state: indexing settings and meeting records,
plus the project registry and the vector namespace when no chat filter
is given.

Examples:
  minutes purge --user 42
  minutes purge --user 42 --chat 1001`

const purgeShortDesc string = "Remove a user's indexed data"

func NewPurgeCmd() *cobra.Command {
	cmder := &PurgeCommander{}

	cmd := &cobra.Command{
		Use:   "purge",
		Short: purgeShortDesc,
		Long:  purgeLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}
			cmder.configDir, err = cmd.Flags().GetString("config")
			if err != nil {
				return fmt.Errorf("could not get config flag: %v", err)
			}
			chatSet := cmd.Flags().Changed("chat")
			return cmder.run(chatSet)
		},
	}

	cmd.Flags().Int64VarP(&cmder.userID, "user", "u", 0, "User id to purge (required)")
	cmd.Flags().Int64Var(&cmder.chatID, "chat", 0, "Limit the purge to one chat")
	cmd.MarkFlagRequired("user")

	return cmd
}

func (c *PurgeCommander) run(chatSet bool) error {
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

	ctx := context.Background()

	var chatID *int64
	if chatSet {
		chatID = &c.chatID
	}

	if err := svcs.Store.PurgeUser(ctx, c.userID, chatID); err != nil {
		return err
	}
	svcs.Sessions.Forget(c.userID)

	if chatID == nil {
		if err := svcs.Vectors.DeleteNamespace(ctx, c.userID); err != nil {
			return err
		}
	}

	fmt.Printf("Purged user %d\n", c.userID)
	return nil
}
