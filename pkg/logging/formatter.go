/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: formatter.go
Description: Custom log formatter for causalnet. Produces compact key=value lines with
optional ANSI colors and a short prefix naming the event kind.
*/

package logging

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// CustomFormatter renders one readable line per entry
type CustomFormatter struct {
	Timestamp bool
	Caller    bool
	Colors    bool
	Prefixes  bool
}

// Format formats a log entry
func (f *CustomFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var output strings.Builder

	if f.Timestamp {
		f.write(&output, 36, entry.Time.Format("2006-01-02 15:04:05.000"))
	}

	f.write(&output, f.levelColor(entry.Level), strings.ToUpper(entry.Level.String()))

	if f.Prefixes {
		if prefix := eventPrefix(entry.Message); prefix != "" {
			f.write(&output, 35, "["+prefix+"]")
		}
	}

	if f.Caller && entry.HasCaller() {
		f.write(&output, 33, fmt.Sprintf("[%s:%d]", entry.Caller.File, entry.Caller.Line))
	}

	output.WriteString(entry.Message)

	if len(entry.Data) > 0 {
		output.WriteString(" ")
		output.WriteString(f.formatFields(entry.Data))
	}

	output.WriteString("\n")
	return []byte(output.String()), nil
}

func (f *CustomFormatter) write(b *strings.Builder, color int, s string) {
	if f.Colors {
		fmt.Fprintf(b, "\033[%dm%s\033[0m ", color, s)
		return
	}
	b.WriteString(s)
	b.WriteString(" ")
}

// levelColor returns the ANSI color code for a log level
func (f *CustomFormatter) levelColor(level logrus.Level) int {
	switch level {
	case logrus.InfoLevel:
		return 32
	case logrus.WarnLevel:
		return 33
	case logrus.ErrorLevel:
		return 31
	case logrus.FatalLevel, logrus.PanicLevel:
		return 35
	default:
		return 37
	}
}

// formatFields renders fields sorted by key
func (f *CustomFormatter) formatFields(fields logrus.Fields) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, key := range keys {
		value := formatValue(key, fields[key])
		if f.Colors {
			parts[i] = fmt.Sprintf("\033[34m%s\033[0m=\033[32m%s\033[0m", key, value)
		} else {
			parts[i] = fmt.Sprintf("%s=%s", key, value)
		}
	}
	return strings.Join(parts, " ")
}

func formatValue(key string, value interface{}) string {
	switch v := value.(type) {
	case time.Duration:
		return v.String()
	case time.Time:
		return v.Format("15:04:05.000")
	case string:
		if key == "query_id" && len(v) > 8 {
			return v[:8]
		}
		if len(v) > 50 {
			return v[:50] + "..."
		}
		return v
	case map[string]string:
		return formatAssignment(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// formatAssignment renders a variable assignment as {a=1,b=0}
func formatAssignment(a map[string]string) string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + a[k]
	}
	return "{" + strings.Join(parts, ",") + "}"
}

// eventPrefix tags the well-known events
func eventPrefix(message string) string {
	switch {
	case strings.HasPrefix(message, "Network"):
		return "PARSE"
	case strings.HasPrefix(message, "Query"), strings.HasPrefix(message, "Batch"):
		return "QUERY"
	case strings.HasPrefix(message, "Edge"):
		return "EDGE"
	default:
		return ""
	}
}
