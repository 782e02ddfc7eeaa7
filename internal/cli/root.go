package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dmitrijs2005/annokeeper/internal/config"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags and the App built for the running command.
type RootOptions struct {
	ConfigPath string
	Format     string // "text" | "json"

	app    *App
	newApp func(ctx context.Context, cfg *config.Config) (*App, error)
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the annokeeper command tree.
func NewRootCommand() *cobra.Command {
	return newRootCommand(NewApp)
}

func newRootCommand(newApp func(ctx context.Context, cfg *config.Config) (*App, error)) *cobra.Command {
	opts := &RootOptions{newApp: newApp}

	cmd := &cobra.Command{
		Use:           "annokeeper",
		Short:         "Keep card annotations and the warehouse in step",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.Format != "text" && opts.Format != "json" {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return opts.open(cmd)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to a JSON or YAML config file")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(newShowCommand(opts))
	cmd.AddCommand(newAddCommand(opts))
	cmd.AddCommand(newDeleteCommand(opts))
	cmd.AddCommand(newSyncCommand(opts))
	cmd.AddCommand(newPushCommand(opts))
	cmd.AddCommand(newListCommand(opts))
	cmd.AddCommand(newJournalCommand(opts))

	// The App is closed after every command, failed ones included.
	for _, sub := range cmd.Commands() {
		run := sub.RunE
		sub.RunE = func(c *cobra.Command, args []string) error {
			return errors.Join(run(c, args), opts.close())
		}
	}

	return cmd
}

func (o *RootOptions) open(cmd *cobra.Command) error {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return err
	}
	if cfg.DeveloperToken == "" {
		token, err := promptToken(cmd.ErrOrStderr(), int(os.Stdin.Fd()))
		if err != nil {
			return err
		}
		cfg.DeveloperToken = token
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	app, err := o.newApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	o.app = app
	return nil
}

func (o *RootOptions) close() error {
	if o.app == nil {
		return nil
	}
	err := o.app.Close()
	o.app = nil
	return err
}
