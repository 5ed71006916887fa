package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/turtacn/SeqPrep/pkg/errors"
)

func newTestLogger() (Logger, *zaptest.Buffer) {
	buf := &zaptest.Buffer{}
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), buf, zapcore.DebugLevel)
	return &zapLogger{z: zap.New(core)}, buf
}

func TestNewLogger_Formats(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		l, err := NewLogger(LogConfig{Level: "debug", Format: format})
		require.NoError(t, err)
		assert.NotNil(t, l)
	}
}

func TestNewLogger_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seqprep.log")
	l, err := NewLogger(LogConfig{Level: "info", OutputPaths: []string{path}})
	require.NoError(t, err)

	l.Debug("hidden")
	l.Info("vocabulary built", Int("size", 66))
	require.NoError(t, l.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), `"size":66`)
}

func TestFields_AreEncoded(t *testing.T) {
	l, buf := newTestLogger()

	l.Info("processed",
		String("strategy", "kmer"),
		Int("k", 3),
		Int64("bytes", 12),
		Float64("p", 0.05),
		Bool("cached", true),
		Duration("took", 2*time.Millisecond),
		Stage("padding"),
		SequenceID("seq-1"),
		Any("lengths", []int{8, 8}),
	)

	lines := buf.Lines()
	require.Len(t, lines, 1)
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "processed", entry["msg"])
	assert.Equal(t, "kmer", entry["strategy"])
	assert.Equal(t, float64(3), entry["k"])
	assert.Equal(t, true, entry["cached"])
	assert.Equal(t, "padding", entry["stage"])
	assert.Equal(t, "seq-1", entry["sequence_id"])
}

func TestErrFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewLoggerFromCore(core)

	err := errors.IndexOutOfRange(5, 3)
	l.Error("augmentation failed", Err(err), ErrCode(err))
	l.Warn("nothing", Err(nil))

	require.Equal(t, 2, logs.Len())
	ctx := logs.All()[0].ContextMap()
	assert.Contains(t, ctx["error"], "index=5 length=3")
	assert.Equal(t, "SEQ_001", ctx["error_code"])
	assert.Equal(t, "<nil>", logs.All()[1].ContextMap()["error"])
}

func TestWithAndNamed(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := NewLoggerFromCore(core).Named("encoder").With(String("run_id", "r1"))

	l.Info("batch done")
	l.Debug("filtered")

	require.Equal(t, 1, logs.Len())
	e := logs.All()[0]
	assert.Equal(t, "encoder", e.LoggerName)
	assert.Equal(t, "r1", e.ContextMap()["run_id"])
}

func TestSetLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "level.log")
	l, err := NewLogger(LogConfig{Level: "info", OutputPaths: []string{path}})
	require.NoError(t, err)
	child := l.Named("child")

	require.True(t, SetLevel(l, "debug"))
	child.Debug("now visible")
	require.NoError(t, l.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "now visible"))

	assert.False(t, SetLevel(NewNopLogger(), "debug"))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("WARN"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("bogus"))
}

func TestNopLogger(t *testing.T) {
	l := NewNopLogger()
	l.Debug("msg")
	l.Info("msg")
	l.Warn("msg")
	l.Error("msg")
	assert.Equal(t, l, l.With(String("a", "b")).Named("x"))
	assert.NoError(t, l.Sync())
}

func TestDefault(t *testing.T) {
	orig := Default()
	t.Cleanup(func() { SetDefault(orig) })

	l, _ := newTestLogger()
	SetDefault(l)
	assert.Same(t, l, Default())

	SetDefault(nil)
	assert.Same(t, l, Default())
}
