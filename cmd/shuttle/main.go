// Command shuttle is the terminal client for the point2point commuter
// shuttle service: browse and propose routes, join proposals, and manage
// semester subscriptions, with an interactive TUI as the default mode.
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"point2point/cmd/shuttle/ui"
	"point2point/internal/api"
	"point2point/internal/config"
	"point2point/internal/fallback"
	"point2point/internal/logging"
	"point2point/internal/session"
)

var (
	// Global flags
	verbose    bool
	configPath string
	serviceURL string
)

// env is the wired-up application: config, gateway client, session
// store, and fallback provider. Every subcommand builds one.
type env struct {
	cfg      config.Config
	client   *api.Client
	store    *session.Store
	fallback *fallback.Provider
}

// newEnv loads configuration and wires the client stack. The session
// store feeds bearer tokens back into the client that authenticates it.
func newEnv() (*env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if serviceURL != "" {
		cfg.Services.Composite = serviceURL
	}

	var store *session.Store
	client := api.New(cfg, api.TokenFunc(func() string {
		if store == nil {
			return ""
		}
		return store.Token()
	}))

	dir, err := config.Dir()
	if err != nil {
		return nil, err
	}
	store = session.Open(dir, client)

	return &env{
		cfg:      cfg,
		client:   client,
		store:    store,
		fallback: fallback.New(),
	}, nil
}

func (e *env) deps() ui.Deps {
	return ui.Deps{
		Gateway:  e.client,
		Fallback: e.fallback,
		Session:  e.store,
		Semester: e.cfg.Semester,
		Services: e.cfg.Services,
	}
}

var rootCmd = &cobra.Command{
	Use:   "shuttle",
	Short: "point2point - commuter shuttle coordination for Columbia students",
	Long: `shuttle is the terminal client for point2point, the commuter
shuttle coordination service.

Browse proposed and active routes, join a proposal to help it reach
critical mass, subscribe to an active route for the semester, and manage
your upcoming trips.

Run without arguments to start the interactive interface.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if _, err := logging.Init(verbose); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInteractive()
	},
}

// runInteractive starts the TUI.
func runInteractive() error {
	e, err := newEnv()
	if err != nil {
		return err
	}

	p := tea.NewProgram(
		ui.NewApp(e.deps()),
		tea.WithAltScreen(),
	)
	_, err = p.Run()
	return err
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: ~/.point2point/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&serviceURL, "service-url", "", "Composite service base URL override")

	rootCmd.AddCommand(routesCmd)
	rootCmd.AddCommand(proposeCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(signupCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(semesterCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
