package logger

import (
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arkadix/hostforge/common"
)

func formatEntry(t *testing.T, f *Formatter, level logrus.Level, msg string, fields logrus.Fields) string {
	t.Helper()
	entry := &logrus.Entry{
		Logger:  logrus.New(),
		Time:    time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Level:   level,
		Message: msg,
		Data:    fields,
	}
	out, err := f.Format(entry)
	require.NoError(t, err)
	return string(out)
}

func TestFormatterBasicLine(t *testing.T) {
	f := &Formatter{NoColors: true}
	line := formatEntry(t, f, logrus.InfoLevel, "hello", nil)
	assert.Equal(t, "2024-01-02 03:04:05.000 [INFO] hello\n", line)
}

func TestFormatterTruncatesLevelName(t *testing.T) {
	f := &Formatter{NoColors: true, DisableTimestamp: true}
	line := formatEntry(t, f, logrus.WarnLevel, "careful", nil)
	assert.Equal(t, "[WARN] careful\n", line)

	line = formatEntry(t, f, logrus.ErrorLevel, "boom", nil)
	assert.Equal(t, "[ERRO] boom\n", line)
}

func TestFormatterOrderedFieldsFirst(t *testing.T) {
	f := &Formatter{
		NoColors:         true,
		DisableTimestamp: true,
		FieldsOrder:      []string{common.LogFieldStep, common.LogFieldPhase},
	}
	line := formatEntry(t, f, logrus.InfoLevel, "running", logrus.Fields{
		"attempt":            1,
		common.LogFieldPhase: "action",
		common.LogFieldStep:  "build-openssl",
	})
	// Ordered keys first, then remaining keys alphabetically.
	assert.Equal(t, "[INFO] [step:build-openssl | phase:action | attempt:1] running\n", line)
}

func TestFormatterHideKeys(t *testing.T) {
	f := &Formatter{
		NoColors:         true,
		DisableTimestamp: true,
		HideKeys:         true,
		FieldsOrder:      []string{common.LogFieldStep},
	}
	line := formatEntry(t, f, logrus.InfoLevel, "running", logrus.Fields{
		common.LogFieldStep: "install-ansible",
	})
	assert.Equal(t, "[INFO] [install-ansible] running\n", line)
}

func TestFormatterColorsWrapLevel(t *testing.T) {
	f := &Formatter{DisableTimestamp: true}
	line := formatEntry(t, f, logrus.ErrorLevel, "boom", nil)
	assert.True(t, strings.HasPrefix(line, "\x1b[31m[ERRO]\x1b[0m "), "got %q", line)
}

func TestInitConsoleOnly(t *testing.T) {
	require.NoError(t, Init("", true))
	assert.Equal(t, logrus.DebugLevel, Log.GetLevel())

	require.NoError(t, Init("", false))
	assert.Equal(t, logrus.InfoLevel, Log.GetLevel())
}

func TestInitWithFileOutput(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Init(dir, false))

	Log.WithField(common.LogFieldStep, "probe").Debug("file-only line")
	// Level is raised to debug internally so the file hook sees everything.
	assert.Equal(t, logrus.DebugLevel, Log.GetLevel())
}
