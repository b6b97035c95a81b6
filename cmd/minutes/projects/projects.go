// Package projectscmder provides the projects command for listing the
// project registry.
package projectscmder

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/minuteshq/minutes/cmd/minutes/services"
	"github.com/minuteshq/minutes/pkg/config"
	"github.com/minuteshq/minutes/pkg/logger"
)

type ProjectsCommander struct {
	userID    int64
	configDir string
	debug     bool
	logger    *zap.Logger
}

const projectsLongDesc string = `List the project aliases discovered in a user's indexed meetings,
with occurrence counts and the last observed confidence.

Examples:
  minutes projects --user 42`

const projectsShortDesc string = "List discovered projects"

func NewProjectsCmd() *cobra.Command {
	cmder := &ProjectsCommander{}

	cmd := &cobra.Command{
		Use:   "projects",
		Short: projectsShortDesc,
		Long:  projectsLongDesc,
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
			return cmder.run()
		},
	}

	cmd.Flags().Int64VarP(&cmder.userID, "user", "u", 0, "User id to list projects for (required)")
	cmd.MarkFlagRequired("user")

	return cmd
}

func (c *ProjectsCommander) run() error {
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

	entries, err := svcs.Projects.List(context.Background(), c.userID)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Println("No projects discovered yet.")
		return nil
	}

	for _, entry := range entries {
		fmt.Printf("%-30s occurrences=%-4d confidence=%.2f last_seen=%s\n",
			entry.Alias, entry.Occurrences, entry.Confidence, entry.LastSeen.Format("2006-01-02"))
	}

	return nil
}
