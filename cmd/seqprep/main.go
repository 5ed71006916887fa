// Command seqprep is the SeqPrep CLI: vocabulary management, one-shot and
// batch encoding, scenario runs, the HTTP API and the Kafka stream worker.
package main

import (
	"context"
	"os"

	"github.com/turtacn/SeqPrep/internal/interfaces/cli"
)

// Build-time variables injected via ldflags.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func init() {
	cli.Version = version
	cli.GitCommit = commit
	cli.BuildDate = buildDate
}

func main() {
	// Execute prints the error itself.
	if err := cli.Execute(context.Background()); err != nil {
		os.Exit(1)
	}
}
