package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"quartermaster/cmd/quartermaster/chat"
	"quartermaster/internal/config"
	"quartermaster/internal/llm"
	"quartermaster/internal/logging"
	"quartermaster/internal/session"
	"quartermaster/internal/shell"
	"quartermaster/internal/store"
)

var (
	// Global flags
	verbose   bool
	workspace string

	// Logger for non-interactive subcommands
	logger *zap.Logger
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "quartermaster",
	Short: "Quartermaster - chat-driven package and power management",
	Long: `Quartermaster is a chat assistant for managing software installs and
system power settings. User requests are interpreted by a language model
into a small fixed set of directives (winget search, winget install,
standby timeout), and every install passes an explicit confirmation gate
before anything runs.

Run without arguments to start the interactive chat interface.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// The chat UI owns the terminal; zap is for the plain subcommands.
		if cmd.Use == "quartermaster" && cmd.CalledAs() == "quartermaster" {
			return nil
		}

		cfg := zap.NewProductionConfig()
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = cfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInteractiveChat()
	},
}

// runCmd sends a single request through the pipeline without the TUI.
var runCmd = &cobra.Command{
	Use:   "run [request]",
	Short: "Process one request and print the result",
	Long: `Interprets a single natural language request and dispatches the
resulting directive. Confirmation gates are answered on stdin.

Example:
  quartermaster run "install 7zip"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runOnce,
}

// sessionsCmd lists recorded sessions, or prints one transcript.
var sessionsCmd = &cobra.Command{
	Use:   "sessions [session-id]",
	Short: "List recorded chat sessions or print one transcript",
	Args:  cobra.MaximumNArgs(1),
	RunE:  listSessions,
}

// statusCmd reports the effective configuration.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show effective configuration and credential state",
	RunE:  showStatus,
}

// ping makes status issue a live model request.
var ping bool

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", ".", "workspace directory")

	statusCmd.Flags().BoolVar(&ping, "ping", false, "verify the model is reachable with a live request")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(statusCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bootEnv is everything a session needs, assembled in parallel.
type bootEnv struct {
	cfg     config.Config
	client  llm.Client
	store   *store.Store
	watcher *config.Watcher
}

// boot loads config first, then brings up the independent pieces together.
func boot(ctx context.Context) (*bootEnv, error) {
	cfg, err := config.Load(workspace)
	if err != nil {
		return nil, err
	}
	if err := logging.Initialize(workspace); err != nil {
		return nil, err
	}

	env := &bootEnv{cfg: cfg}

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		client, err := llm.New(cfg.LLM)
		if err != nil {
			return err
		}
		env.client = client
		return nil
	})
	g.Go(func() error {
		st, err := store.Open(store.DefaultPath(workspace))
		if err != nil {
			return err
		}
		env.store = st
		return nil
	})
	g.Go(func() error {
		w, err := config.WatchLogging(workspace)
		if err != nil {
			// Hot reload is a convenience; boot proceeds without it.
			logging.Boot("config watcher unavailable: %v", err)
			return nil
		}
		env.watcher = w
		return nil
	})

	if err := g.Wait(); err != nil {
		env.close()
		return nil, err
	}

	logging.Boot("boot complete: provider=%s model=%s", cfg.LLM.Provider, cfg.LLM.Model)
	return env, nil
}

func (e *bootEnv) close() {
	if e.watcher != nil {
		e.watcher.Close()
	}
	if e.store != nil {
		e.store.Close()
	}
	logging.CloseAll()
}

func (e *bootEnv) newSession() *session.Session {
	runner := shell.NewRunner(shell.RunnerConfig{
		DefaultTimeout: e.cfg.Execution.CommandTimeout,
	})
	return session.New(e.client, runner, e.cfg.Execution, session.WithRecorder(e.store))
}

func runInteractiveChat() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env, err := boot(ctx)
	if err != nil {
		return err
	}
	defer env.close()

	return chat.Run(ctx, env.newSession())
}

func runOnce(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env, err := boot(ctx)
	if err != nil {
		return err
	}
	defer env.close()

	sess := env.newSession()
	reply, err := sess.Submit(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	printMessages(reply.Messages)

	stdin := bufio.NewScanner(os.Stdin)
	for {
		switch sess.State() {
		case session.StateSelectingPackage:
			fmt.Print("package name> ")
			if !stdin.Scan() {
				return nil
			}
			reply, err = sess.Choose(ctx, strings.TrimSpace(stdin.Text()))
		case session.StateConfirmingInstall, session.StateConfirmingRawCommand:
			fmt.Print("confirm [y/n]> ")
			if !stdin.Scan() {
				return nil
			}
			answer := strings.ToLower(strings.TrimSpace(stdin.Text()))
			reply, err = sess.Confirm(ctx, answer == "y" || answer == "yes")
		default:
			return nil
		}
		if err != nil {
			return err
		}
		printMessages(reply.Messages)
	}
}

func printMessages(msgs []session.Message) {
	for _, m := range msgs {
		fmt.Printf("[%s] %s\n", m.Role, m.Content)
	}
}

func listSessions(cmd *cobra.Command, args []string) error {
	st, err := store.Open(store.DefaultPath(workspace))
	if err != nil {
		return err
	}
	defer st.Close()

	if len(args) == 1 {
		turns, err := st.Turns(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if len(turns) == 0 {
			fmt.Printf("No turns recorded for session %s.\n", args[0])
			return nil
		}
		logger.Info("printing transcript", zap.String("session", args[0]), zap.Int("turns", len(turns)))
		renderTranscript(os.Stdout, turns)
		return nil
	}

	sessions, err := st.ListSessions(cmd.Context())
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Println("No recorded sessions.")
		return nil
	}

	logger.Info("listing sessions", zap.Int("count", len(sessions)))
	renderSessions(os.Stdout, sessions)
	return nil
}

// renderSessions writes the session listing, one row per session.
func renderSessions(w io.Writer, sessions []store.SessionSummary) {
	for _, s := range sessions {
		fmt.Fprintf(w, "%s  %s  %d turns\n", s.ID, s.StartedAt.Format("2006-01-02 15:04"), s.Turns)
	}
}

// renderTranscript writes one stored transcript in append order.
func renderTranscript(w io.Writer, turns []store.Turn) {
	for _, t := range turns {
		fmt.Fprintf(w, "%s  [%s] %s\n", t.Time.Format("2006-01-02 15:04:05"), t.Role, t.Content)
	}
}

func showStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(workspace)
	if err != nil {
		return err
	}

	keyState := "missing"
	if cfg.LLM.APIKey != "" {
		keyState = "configured"
	}

	fmt.Printf("workspace:        %s\n", workspace)
	fmt.Printf("provider:         %s\n", cfg.LLM.Provider)
	fmt.Printf("model:            %s\n", cfg.LLM.Model)
	fmt.Printf("api key:          %s\n", keyState)
	fmt.Printf("command timeout:  %s\n", cfg.Execution.CommandTimeout)
	fmt.Printf("raw commands:     %t\n", cfg.Execution.AllowRawCommands)

	if !ping {
		return nil
	}

	client, err := llm.New(cfg.LLM)
	if err != nil {
		return err
	}
	if err := pingModel(cmd.Context(), client); err != nil {
		fmt.Printf("model ping:       failed: %v\n", err)
		return fmt.Errorf("model unreachable: %w", err)
	}
	fmt.Printf("model ping:       ok\n")
	return nil
}

// pingModel issues a minimal completion to verify the model responds.
func pingModel(ctx context.Context, client llm.Client) error {
	_, err := client.Complete(ctx, "Say hello")
	return err
}
