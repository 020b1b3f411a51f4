package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mkrupp/newsletterhub/internal/infra/logging"
)

const loggerName = "newsletterhub.hubctl"

var errAppNotInitialized = errors.New("app not initialized")

type rootOptions struct {
	configPath string
	driver     string
	path       string
	output     string
}

// state is shared by the command tree of one invocation.
type state struct {
	app    *App
	output OutputFormat
	now    func() time.Time
}

func newState() *state {
	return &state{now: time.Now}
}

func (s *state) close() error {
	if s.app == nil {
		return nil
	}

	err := s.app.Close()
	s.app = nil

	return err
}

func (s *state) requireApp() (*App, error) {
	if s.app == nil {
		return nil, errAppNotInitialized
	}

	return s.app, nil
}

// newRootCmd builds the hubctl command tree around st.
func newRootCmd(st *state) *cobra.Command {
	var opts rootOptions

	cmd := &cobra.Command{
		Use:           "hubctl",
		Short:         "Inspect and maintain the newsletter hub store",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			format, err := parseOutputFormat(opts.output)
			if err != nil {
				return err
			}

			st.output = format

			if !requiresApp(cmd) || st.app != nil {
				return nil
			}

			cfg, err := LoadConfig(opts.configPath)
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("driver") {
				cfg.Store.Driver = opts.driver
			}

			if cmd.Flags().Changed("path") {
				cfg.Store.Path = opts.path
			}

			//nolint:exhaustruct
			err = logging.Configure(cmd.Context(), logging.LoggerConfig{
				Output: "stderr",
				Level:  cfg.LogLevel,
				Color:  "auto",
			}, loggerName)
			if err != nil {
				return err
			}

			app, err := NewApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			st.app = app

			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/newsletterhub/hubctl.toml)")
	flags.StringVar(&opts.driver, "driver", "", "Store driver: file, sqlite")
	flags.StringVar(&opts.path, "path", "", "Store location")
	flags.StringVarP(&opts.output, "output", "o", string(OutputTable), "Output format: table, json")

	cmd.AddCommand(newUsersCmd(st))
	cmd.AddCommand(newFeedsCmd(st))
	cmd.AddCommand(newSessionsCmd(st))
	cmd.AddCommand(newStatsCmd(st))

	return cmd
}

func requiresApp(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if name := c.Name(); name == "help" || name == "completion" {
			return false
		}
	}

	return true
}

// Execute runs hubctl with the process arguments and returns the exit status.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	st := newState()

	cmd := newRootCmd(st)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := errors.Join(cmd.ExecuteContext(ctx), st.close())
	PrintError(stderr, err)

	return ErrorExitCode(err)
}

// Main is the hubctl entry point.
func Main() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return Execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
}
