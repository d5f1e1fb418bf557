package main

import (
	"os"
	"path/filepath"
	"time"

	"github.com/orgball2608/wedding-gallery/internal/likes"
	"github.com/orgball2608/wedding-gallery/pkg/config"
	"github.com/orgball2608/wedding-gallery/pkg/logger"
	"github.com/spf13/cobra"
)

const requestTimeout = 30 * time.Second

type commandContext struct {
	serverURL string
	stateDir  string

	cfg *config.Config
	log logger.Logger
}

func (c *commandContext) config() *config.Config {
	if c.cfg == nil {
		c.cfg, _ = config.New()
	}
	return c.cfg
}

func (c *commandContext) logger() logger.Logger {
	if c.log == nil {
		c.log = logger.New(logger.Opts{Env: c.config().App.Env, Output: os.Stderr})
	}
	return c.log
}

func (c *commandContext) client() *likes.Client {
	return likes.NewClient(c.serverURL, requestTimeout)
}

func (c *commandContext) storage() (*likes.FileStorage, error) {
	return likes.NewFileStorage(c.stateDir)
}

func defaultStateDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "wedding-gallery")
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "galleryctl",
		Short:         "Operate the wedding gallery",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&ctx.serverURL, "server", "http://localhost:8080", "Gallery server base URL")
	rootCmd.PersistentFlags().StringVar(&ctx.stateDir, "state-dir", defaultStateDir(), "Directory holding this visitor's likes and thumbnails")

	rootCmd.AddCommand(newMigrateCommand(ctx))
	rootCmd.AddCommand(newCleanupCommand(ctx))
	rootCmd.AddCommand(newLikeCommand(ctx))
	rootCmd.AddCommand(newThumbnailsCommand(ctx))

	return rootCmd
}
