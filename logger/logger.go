package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"

	"github.com/arkadix/hostforge/common"
	"github.com/arkadix/hostforge/file"
)

// Log is the global logger instance.
var Log *ForgeLog

// ForgeLog wraps *logrus.Logger for application-specific logging.
type ForgeLog struct {
	*logrus.Logger
}

func init() {
	// A usable console-only logger exists before Init is called, so early
	// failures (bad flags, unreadable config) still produce output.
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(consoleFormatter(false))
	Log = &ForgeLog{Logger: l}
}

// Init configures the global logger. When outputDir is non-empty, full debug
// output is additionally written to rotated files under that directory via an
// lfshook writer map: app.log for everything, error.log for warnings and up.
func Init(outputDir string, verbose bool) error {
	level := logrus.InfoLevel
	if verbose {
		level = logrus.DebugLevel
	}
	Log.SetLevel(level)
	Log.SetOutput(os.Stdout)
	Log.SetFormatter(consoleFormatter(verbose))

	if outputDir == "" {
		return nil
	}

	if err := file.CreateDir(outputDir); err != nil {
		return fmt.Errorf("failed to create log output directory %s: %w", outputDir, err)
	}

	appWriter, err := newRotatingWriter(filepath.Join(outputDir, "app.log"))
	if err != nil {
		return err
	}
	errWriter, err := newRotatingWriter(filepath.Join(outputDir, "error.log"))
	if err != nil {
		return err
	}

	fileFormatter := &Formatter{
		TimestampFormat: "2006-01-02 15:04:05.000 MST",
		NoColors:        true,
		FieldsOrder:     fieldOrder(),
	}

	writers := lfshook.WriterMap{
		logrus.TraceLevel: appWriter,
		logrus.DebugLevel: appWriter,
		logrus.InfoLevel:  appWriter,
		logrus.WarnLevel:  io.MultiWriter(appWriter, errWriter),
		logrus.ErrorLevel: io.MultiWriter(appWriter, errWriter),
		logrus.FatalLevel: io.MultiWriter(appWriter, errWriter),
		logrus.PanicLevel: io.MultiWriter(appWriter, errWriter),
	}
	Log.Hooks.Add(lfshook.NewHook(writers, fileFormatter))

	// File hooks capture debug output even when the console stays at info.
	if !verbose {
		Log.SetLevel(logrus.DebugLevel)
		Log.SetOutput(io.Discard)
		Log.Hooks.Add(&consoleHook{
			writer:    os.Stdout,
			minLevel:  logrus.InfoLevel,
			formatter: consoleFormatter(false),
		})
	}
	return nil
}

func newRotatingWriter(path string) (io.Writer, error) {
	w, err := rotatelogs.New(
		path+".%Y%m%d",
		rotatelogs.WithLinkName(path),
		rotatelogs.WithMaxAge(7*24*time.Hour),
		rotatelogs.WithRotationTime(24*time.Hour),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize rotatelogs for %s: %w", path, err)
	}
	return w, nil
}

func consoleFormatter(verbose bool) *Formatter {
	return &Formatter{
		TimestampFormat:  "15:04:05",
		DisableTimestamp: !verbose,
		FieldsOrder:      fieldOrder(),
		HideKeys:         !verbose,
	}
}

func fieldOrder() []string {
	return []string{
		common.LogFieldRunID,
		common.LogFieldSequence,
		common.LogFieldStep,
		common.LogFieldPhase,
		common.LogFieldHost,
	}
}

// consoleHook forwards entries at or above minLevel to a writer with its own
// formatter. Used to keep console output at info while files get debug.
type consoleHook struct {
	writer    io.Writer
	minLevel  logrus.Level
	formatter logrus.Formatter
}

func (h *consoleHook) Levels() []logrus.Level {
	levels := make([]logrus.Level, 0, h.minLevel+1)
	for l := logrus.PanicLevel; l <= h.minLevel; l++ {
		levels = append(levels, l)
	}
	return levels
}

func (h *consoleHook) Fire(entry *logrus.Entry) error {
	line, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}
	_, err = h.writer.Write(line)
	return err
}
