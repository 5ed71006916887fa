// Package cli implements the seqprep command tree.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/turtacn/SeqPrep/internal/config"
	"github.com/turtacn/SeqPrep/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/SeqPrep/pkg/errors"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// cliContextKey is the context key for CLIContext.
type cliContextKey struct{}

// RootOptions holds global CLI flags.
type RootOptions struct {
	ConfigPath   string
	EnvFile      string
	LogLevel     string
	OutputFormat string
	Verbose      bool
	NoColor      bool
	Timeout      time.Duration
}

// CLIContext carries initialized dependencies through the command tree.
type CLIContext struct {
	Config       *config.Config
	ConfigPath   string
	Logger       logging.Logger
	OutputFormat string
	Verbose      bool
	Timeout      time.Duration
}

// NewRootCommand creates the root command with all global flags and
// subcommands.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "seqprep",
		Short: "SeqPrep prepares biological sequences for model training",
		Long: "SeqPrep turns raw DNA sequences into fixed-length k-mer id sequences.\n" +
			"Sequences are augmented, tokenized into k-mers, padded and truncated,\n" +
			"then mapped through a vocabulary. Pipelines run from the CLI, over HTTP\n" +
			"or as a Kafka stream worker.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return persistentPreRun(cmd, opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (default: ./seqprep.yaml)")
	pf.StringVar(&opts.EnvFile, "env-file", ".env", "dotenv file loaded before the configuration")
	pf.StringVar(&opts.LogLevel, "log-level", "", "log level (debug, info, warn, error); overrides log.level")
	pf.StringVarP(&opts.OutputFormat, "output", "o", "text", "output format (text, json, table)")
	pf.BoolVarP(&opts.Verbose, "verbose", "v", false, "enable verbose output")
	pf.BoolVar(&opts.NoColor, "no-color", false, "disable colored output")
	pf.DurationVar(&opts.Timeout, "timeout", 5*time.Minute, "timeout of one-shot commands (0 disables)")

	cmd.AddCommand(
		newVocabCmd(),
		newProcessCmd(),
		newBatchCmd(),
		newScenarioCmd(),
		newServeCmd(),
		newWorkerCmd(),
		newVersionCmd(),
	)
	return cmd
}

// persistentPreRun loads config and logger, then stores the CLIContext.
func persistentPreRun(cmd *cobra.Command, opts *RootOptions) error {
	if opts.NoColor {
		color.NoColor = true
	}
	if err := config.LoadDotEnv(opts.EnvFile); err != nil {
		return err
	}

	cfg, path, err := initConfig(opts)
	if err != nil {
		return err
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
	if opts.Verbose {
		cfg.Log.Level = "debug"
	}

	logger, err := initLogger(cfg)
	if err != nil {
		return errors.Wrap(err, errors.CodeInvalidConfig, "logger initialization failed")
	}
	logging.SetDefault(logger)

	cliCtx := &CLIContext{
		Config:       cfg,
		ConfigPath:   path,
		Logger:       logger,
		OutputFormat: opts.OutputFormat,
		Verbose:      opts.Verbose,
		Timeout:      opts.Timeout,
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, cliContextKey{}, cliCtx))
	return nil
}

// initConfig loads configuration with priority: flag path, search paths,
// then environment and defaults alone.  It returns the path it loaded.
func initConfig(opts *RootOptions) (*config.Config, string, error) {
	if opts.ConfigPath != "" {
		cfg, err := config.Load(opts.ConfigPath)
		if err != nil {
			return nil, "", errors.Wrap(err, errors.CodeInvalidConfig, "failed to load config").WithDetail("path=" + opts.ConfigPath)
		}
		return cfg, opts.ConfigPath, nil
	}

	searchPaths := []string{"./seqprep.yaml", "./configs/seqprep.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		searchPaths = append(searchPaths, filepath.Join(home, ".seqprep", "config.yaml"))
	}
	for _, p := range searchPaths {
		if _, err := os.Stat(p); err == nil {
			cfg, err := config.Load(p)
			if err != nil {
				return nil, "", errors.Wrap(err, errors.CodeInvalidConfig, "failed to load config").WithDetail("path=" + p)
			}
			return cfg, p, nil
		}
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, "", errors.Wrap(err, errors.CodeInvalidConfig, "failed to load config from environment")
	}
	return cfg, "", nil
}

// initLogger writes to stderr so that stdout carries only command output.
func initLogger(cfg *config.Config) (logging.Logger, error) {
	format := cfg.Log.Format
	if format == "" {
		format = "console"
	}
	return logging.NewLogger(logging.LogConfig{
		Level:            cfg.Log.Level,
		Format:           format,
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	})
}

// GetCLIContext extracts CLIContext from a command's context.
func GetCLIContext(cmd *cobra.Command) (*CLIContext, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return nil, errors.Internal("command context is nil")
	}
	cliCtx, ok := ctx.Value(cliContextKey{}).(*CLIContext)
	if !ok || cliCtx == nil {
		return nil, errors.Internal("CLIContext not found in command context")
	}
	return cliCtx, nil
}

// commandContext bounds one-shot commands by the --timeout flag.
func commandContext(cmd *cobra.Command, cliCtx *CLIContext) (context.Context, context.CancelFunc) {
	if cliCtx.Timeout > 0 {
		return context.WithTimeout(cmd.Context(), cliCtx.Timeout)
	}
	return context.WithCancel(cmd.Context())
}

// Execute is the main entry point for the CLI application.
func Execute(ctx context.Context) error {
	rootCmd := NewRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		PrintError(rootCmd, err)
		return err
	}
	return nil
}

// PrintResult outputs data in the format selected by --output.
func PrintResult(cmd *cobra.Command, data interface{}) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return printJSON(cmd, data)
	}

	switch strings.ToLower(cliCtx.OutputFormat) {
	case "json":
		return printJSON(cmd, data)
	case "table":
		return printTable(cmd, data)
	default:
		return printText(cmd, data)
	}
}

func printJSON(cmd *cobra.Command, data interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func printText(cmd *cobra.Command, data interface{}) error {
	switch v := data.(type) {
	case string:
		fmt.Fprintln(cmd.OutOrStdout(), v)
	case fmt.Stringer:
		fmt.Fprintln(cmd.OutOrStdout(), v.String())
	default:
		fmt.Fprintf(cmd.OutOrStdout(), "%+v\n", v)
	}
	return nil
}

// tableProvider is implemented by results that render as a table.
type tableProvider interface {
	TableHeaders() []string
	TableRows() [][]string
}

func printTable(cmd *cobra.Command, data interface{}) error {
	if tp, ok := data.(tableProvider); ok {
		fmt.Fprint(cmd.OutOrStdout(), FormatTable(tp.TableHeaders(), tp.TableRows()))
		return nil
	}
	return printText(cmd, data)
}

// PrintError writes a formatted error message to stderr.
func PrintError(cmd *cobra.Command, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", color.RedString("Error:"), err.Error())
}

// PrintSuccess writes a formatted success message to stdout.
func PrintSuccess(cmd *cobra.Command, msg string) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", color.GreenString("OK:"), msg)
}

// FormatTable renders headers and rows as an aligned ASCII table.
func FormatTable(headers []string, rows [][]string) string {
	if len(headers) == 0 {
		return ""
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			widths[i] = max(widths[i], len(row[i]))
		}
	}

	var sb strings.Builder
	writeRow := func(cells []string) {
		for i := range headers {
			if i > 0 {
				sb.WriteString("  ")
			}
			val := ""
			if i < len(cells) {
				val = cells[i]
			}
			sb.WriteString(padRight(val, widths[i]))
		}
		sb.WriteString("\n")
	}

	writeRow(headers)
	sep := make([]string, len(widths))
	for i, w := range widths {
		sep[i] = strings.Repeat("-", w)
	}
	writeRow(sep)
	for _, row := range rows {
		writeRow(row)
	}
	return sb.String()
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return PrintResult(cmd, versionInfo{Version: Version, Commit: GitCommit, BuildDate: BuildDate})
		},
	}
}

type versionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
}

func (v versionInfo) String() string {
	return fmt.Sprintf("seqprep %s (commit: %s, built: %s)", v.Version, v.Commit, v.BuildDate)
}
