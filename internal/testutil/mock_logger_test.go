package testutil_test

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/SeqPrep/internal/infrastructure/fasta"
	"github.com/turtacn/SeqPrep/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/SeqPrep/internal/testutil"
)

func TestMockLogger(t *testing.T) {
	logger := testutil.NewMockLogger()
	logger.Info("batch encoded", logging.Int("records", 3))

	messages := logger.Messages()
	require.Len(t, messages, 1)
	assert.Equal(t, "info", messages[0].Level)
	v, ok := messages[0].Field("records")
	assert.True(t, ok)
	assert.Equal(t, 3, v)

	logger.Clear()
	assert.Empty(t, logger.Messages())

	logger.Error("publish failed")
	assert.True(t, logger.HasMessage("error", "publish failed"))
	assert.False(t, logger.HasMessage("info", "publish failed"))
	assert.True(t, logger.Contains("publish"))
}

func TestMockLogger_ChildrenShareSink(t *testing.T) {
	logger := testutil.NewMockLogger()
	child := logger.Named("stream").With(logging.String("topic", "raw")).Named("worker")
	child.Warn("retrying")

	e, ok := logger.Find("warn", "retrying")
	require.True(t, ok)
	assert.Equal(t, "stream.worker", e.Logger)
	topic, _ := e.Field("topic")
	assert.Equal(t, "raw", topic)
}

func TestWriteFASTA(t *testing.T) {
	long := make([]byte, 130)
	for i := range long {
		long[i] = "ACGT"[i%4]
	}
	path := testutil.WriteFASTA(t, t.TempDir(), "in/x.fasta",
		testutil.FASTARecord{Header: "s1 first", Sequence: string(long)},
		testutil.FASTARecord{Header: "s2", Sequence: "ACGT"})

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimRight(string(data), "\n"), "\n"), 6)

	recs, err := fasta.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, string(long), recs[0].Sequence)
	assert.Equal(t, "s2", recs[1].ID)
}

func TestIdentityPipeline(t *testing.T) {
	pre := testutil.NewPreprocessor(t, testutil.IdentityPipeline(4))
	assert.True(t, pre.Deterministic())
	assert.Equal(t, "identity", pre.Describe()["augmentation"])
}
