package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ToLogLevel("debug"))
	assert.Equal(t, slog.LevelInfo, ToLogLevel("info"))
	assert.Equal(t, slog.LevelWarn, ToLogLevel("warn"))
	assert.Equal(t, slog.LevelError, ToLogLevel("error"))
	assert.Panics(t, func() { ToLogLevel("verbose") })
}

func TestErrFmtHandlerAddsStacktrace(t *testing.T) {
	var buf bytes.Buffer
	handler := WrapByErrFmtHandler(slog.NewJSONHandler(&buf, nil))
	logger := slog.New(handler)

	err := errors.WithStack(errors.New("fold 2 failed"))
	logger.LogAttrs(context.Background(), slog.LevelError, "cross-fit aborted",
		ErrAttr(err),
		slog.String(MeasureKey, "r_squared"),
	)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "cross-fit aborted", record["msg"])
	assert.Equal(t, "r_squared", record[MeasureKey])
	assert.Contains(t, record, StacktraceAttrKey)
}

func TestErrFmtHandlerPassesThroughPlainRecords(t *testing.T) {
	var buf bytes.Buffer
	handler := WrapByErrFmtHandler(slog.NewJSONHandler(&buf, nil))
	logger := slog.New(handler)

	logger.Info("fold assignment drawn",
		InnerFoldsKey, 5,
		SamplesKey, 103,
	)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, float64(5), record[InnerFoldsKey])
	assert.Equal(t, float64(103), record[SamplesKey])
	assert.NotContains(t, record, StacktraceAttrKey)
}
