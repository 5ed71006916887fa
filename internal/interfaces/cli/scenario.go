package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/SeqPrep/internal/application/scenario"
	"github.com/turtacn/SeqPrep/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/SeqPrep/internal/infrastructure/storage/minio"
	"github.com/turtacn/SeqPrep/pkg/errors"
)

type scenarioGenerateOptions struct {
	Dir string
	Ks  []int
}

type scenarioRunOptions struct {
	RunsDir    string
	NoProgress bool
	Upload     bool
}

func newScenarioCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scenario",
		Short: "Generate and run grids of pipeline configurations",
	}

	genOpts := &scenarioGenerateOptions{}
	genCmd := &cobra.Command{
		Use:   "generate",
		Short: "Write one configuration file per grid point",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScenarioGenerate(cmd, genOpts)
		},
	}
	genCmd.Flags().StringVar(&genOpts.Dir, "dir", "scenarios", "output directory")
	genCmd.Flags().IntSliceVar(&genOpts.Ks, "k", nil, "k values of the grid (default 3,5)")

	runOpts := &scenarioRunOptions{}
	runCmd := &cobra.Command{
		Use:   "run <file|dir>",
		Short: "Run one scenario file or every scenario file of a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarioRun(cmd, args[0], runOpts)
		},
	}
	runCmd.Flags().StringVar(&runOpts.RunsDir, "runs-dir", "", "override scenario.runs_dir")
	runCmd.Flags().BoolVar(&runOpts.NoProgress, "no-progress", false, "disable the progress bar")
	runCmd.Flags().BoolVar(&runOpts.Upload, "upload", false, "upload run artefacts to object storage")

	cmd.AddCommand(genCmd, runCmd)
	return cmd
}

// ScenarioGenerateResult lists the written files.
type ScenarioGenerateResult struct {
	Dir   string   `json:"dir"`
	Files []string `json:"files"`
}

func (r ScenarioGenerateResult) String() string {
	return fmt.Sprintf("%d scenarios written to %s", len(r.Files), r.Dir)
}

func runScenarioGenerate(cmd *cobra.Command, opts *scenarioGenerateOptions) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	grid := scenario.DefaultGrid()
	if len(opts.Ks) > 0 {
		grid.Ks = opts.Ks
	}
	files, err := scenario.WriteAll(opts.Dir, scenario.Generate(grid))
	if err != nil {
		return err
	}
	cliCtx.Logger.Debug("scenarios generated", logging.Int("count", len(files)), logging.String("dir", opts.Dir))
	return PrintResult(cmd, ScenarioGenerateResult{Dir: opts.Dir, Files: files})
}

// ScenarioReports renders a run summary table.
type ScenarioReports []*scenario.Report

func (rs ScenarioReports) TableHeaders() []string {
	return []string{"NAME", "RECORDS", "OK", "FAILED", "MS", "DIR"}
}

func (rs ScenarioReports) TableRows() [][]string {
	rows := make([][]string, len(rs))
	for i, r := range rs {
		rows[i] = []string{
			r.Name,
			strconv.Itoa(r.Records),
			strconv.Itoa(r.Succeeded),
			strconv.Itoa(r.Failed),
			strconv.FormatInt(r.DurationMs, 10),
			r.Dir,
		}
	}
	return rows
}

func (rs ScenarioReports) String() string {
	return strings.TrimRight(FormatTable(rs.TableHeaders(), rs.TableRows()), "\n")
}

func runScenarioRun(cmd *cobra.Command, target string, opts *scenarioRunOptions) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd, cliCtx)
	defer cancel()

	runOpts := scenario.RunOptions{
		RunsDir:     opts.RunsDir,
		Logger:      cliCtx.Logger,
		Concurrency: cliCtx.Config.Worker.Concurrency,
	}
	if !opts.NoProgress {
		runOpts.Progress = cmd.ErrOrStderr()
	}
	if opts.Upload {
		client, err := newMinIOClient(cliCtx.Config, cliCtx.Logger)
		if err != nil {
			return err
		}
		defer client.Close()
		runOpts.Store = minio.NewArtifactStore(client)
	}

	info, err := os.Stat(target)
	if err != nil {
		return errors.Wrap(err, errors.CodeInvalidParam, "scenario not found").WithDetail("path=" + target)
	}
	var reports ScenarioReports
	if info.IsDir() {
		reports, err = scenario.RunAll(ctx, target, runOpts)
	} else {
		var r *scenario.Report
		if r, err = scenario.Run(ctx, target, runOpts); r != nil {
			reports = ScenarioReports{r}
		}
	}
	if err != nil {
		if len(reports) > 0 {
			_ = PrintResult(cmd, reports)
		}
		return err
	}
	return PrintResult(cmd, reports)
}
