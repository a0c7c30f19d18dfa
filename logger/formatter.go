package logger

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	defaultTimestampFormat = "2006-01-02 15:04:05.000"
	defaultFieldSeparator  = " | "
)

// Formatter renders log entries as a timestamped line with a bracketed level,
// ordered fields and the message. It implements logrus.Formatter.
type Formatter struct {
	// TimestampFormat overrides the default timestamp layout.
	TimestampFormat string
	// NoColors disables ANSI level coloring (always disabled for file output).
	NoColors bool
	// DisableTimestamp drops the leading timestamp.
	DisableTimestamp bool
	// FieldsOrder lists field keys to render first, in this order. Remaining
	// fields are appended alphabetically.
	FieldsOrder []string
	// FieldSeparator separates rendered fields. Default " | ".
	FieldSeparator string
	// HideKeys renders only field values, as "[value]" instead of "[key:value]".
	HideKeys bool
}

// Format implements logrus.Formatter.
func (f *Formatter) Format(entry *logrus.Entry) ([]byte, error) {
	b := &bytes.Buffer{}

	if !f.DisableTimestamp {
		layout := f.TimestampFormat
		if layout == "" {
			layout = defaultTimestampFormat
		}
		b.WriteString(entry.Time.Format(layout))
		b.WriteByte(' ')
	}

	level := strings.ToUpper(entry.Level.String())
	if len(level) > 4 {
		level = level[:4]
	}
	if f.NoColors {
		fmt.Fprintf(b, "[%s] ", level)
	} else {
		fmt.Fprintf(b, "\x1b[%dm[%s]\x1b[0m ", colorByLevel(entry.Level), level)
	}

	if len(entry.Data) > 0 {
		b.WriteByte('[')
		f.writeFields(b, entry)
		b.WriteString("] ")
	}

	b.WriteString(entry.Message)
	b.WriteByte('\n')
	return b.Bytes(), nil
}

func (f *Formatter) writeFields(b *bytes.Buffer, entry *logrus.Entry) {
	sep := f.FieldSeparator
	if sep == "" {
		sep = defaultFieldSeparator
	}

	written := 0
	seen := make(map[string]bool, len(entry.Data))
	for _, key := range f.FieldsOrder {
		val, ok := entry.Data[key]
		if !ok {
			continue
		}
		if written > 0 {
			b.WriteString(sep)
		}
		f.writeKeyValue(b, key, val)
		seen[key] = true
		written++
	}

	rest := make([]string, 0, len(entry.Data))
	for key := range entry.Data {
		if !seen[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	for _, key := range rest {
		if written > 0 {
			b.WriteString(sep)
		}
		f.writeKeyValue(b, key, entry.Data[key])
		written++
	}
}

func (f *Formatter) writeKeyValue(b *bytes.Buffer, key string, value interface{}) {
	if f.HideKeys {
		fmt.Fprintf(b, "%v", value)
		return
	}
	fmt.Fprintf(b, "%s:%v", key, value)
}

func colorByLevel(level logrus.Level) int {
	switch level {
	case logrus.DebugLevel, logrus.TraceLevel:
		return 37 // gray
	case logrus.WarnLevel:
		return 33 // yellow
	case logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel:
		return 31 // red
	default:
		return 36 // cyan
	}
}
