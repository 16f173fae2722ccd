package logger

import (
	"fmt"
	"math"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

// theme holds the ANSI color palette for console output.
type theme struct {
	dim     string
	level   map[zapcore.Level]string
	name    string
	field   string
	value   string
	message string
	reset   string
}

var gruvbox = theme{
	dim: "\x1b[38;5;245m",
	level: map[zapcore.Level]string{
		zapcore.DebugLevel: "\x1b[38;5;109m", // blue
		zapcore.InfoLevel:  "\x1b[38;5;142m", // green
		zapcore.WarnLevel:  "\x1b[38;5;214m", // yellow
		zapcore.ErrorLevel: "\x1b[38;5;167m", // red
		zapcore.FatalLevel: "\x1b[38;5;167m",
		zapcore.PanicLevel: "\x1b[38;5;167m",
	},
	name:    "\x1b[38;5;108m",
	field:   "\x1b[38;5;245m",
	value:   "\x1b[38;5;223m",
	message: "\x1b[0m",
	reset:   "\x1b[0m",
}

var everforest = theme{
	dim: "\x1b[38;5;244m",
	level: map[zapcore.Level]string{
		zapcore.DebugLevel: "\x1b[38;5;110m",
		zapcore.InfoLevel:  "\x1b[38;5;144m",
		zapcore.WarnLevel:  "\x1b[38;5;179m",
		zapcore.ErrorLevel: "\x1b[38;5;174m",
		zapcore.FatalLevel: "\x1b[38;5;174m",
		zapcore.PanicLevel: "\x1b[38;5;174m",
	},
	name:    "\x1b[38;5;108m",
	field:   "\x1b[38;5;244m",
	value:   "\x1b[38;5;187m",
	message: "\x1b[0m",
	reset:   "\x1b[0m",
}

var plain = theme{
	level:   map[zapcore.Level]string{},
	message: "",
}

// levelGlyphs maps log levels to single-character markers.
var levelGlyphs = map[zapcore.Level]string{
	zapcore.DebugLevel: "·",
	zapcore.InfoLevel:  "•",
	zapcore.WarnLevel:  "!",
	zapcore.ErrorLevel: "✗",
	zapcore.FatalLevel: "✗",
	zapcore.PanicLevel: "✗",
}

// Active palette, read per log line so theme changes apply to a live logger
// (the config watcher calls SetTheme on reload).
var (
	activeThemeMu sync.RWMutex
	activeTheme   = selectTheme()
)

func currentTheme() theme {
	activeThemeMu.RLock()
	defer activeThemeMu.RUnlock()
	return activeTheme
}

// SetTheme selects the console palette by name (from the log.theme config
// key). The NO_COLOR and GWA_THEME environment variables take precedence so
// shell overrides survive config reloads. Unknown names are ignored.
func SetTheme(name string) {
	if os.Getenv("NO_COLOR") != "" || os.Getenv("GWA_THEME") != "" {
		return
	}
	var t theme
	switch name {
	case "gruvbox":
		t = gruvbox
	case "everforest":
		t = everforest
	case "plain":
		t = plain
	default:
		return
	}
	activeThemeMu.Lock()
	activeTheme = t
	activeThemeMu.Unlock()
}

// minimalEncoder renders log entries as a single calm line:
//
//	14:02:31 • run J1713+0747 iter=25000 lnpost=-41234.2
//
// Structured fields the operator cares about during a sampling run are
// surfaced inline; everything else stays available via -vv JSON output.
type minimalEncoder struct {
	zapcore.Encoder
	pool buffer.Pool
}

func newMinimalEncoder() *minimalEncoder {
	cfg := zapcore.EncoderConfig{
		MessageKey:     "msg",
		LevelKey:       "level",
		TimeKey:        "time",
		NameKey:        "name",
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}
	return &minimalEncoder{
		Encoder: zapcore.NewConsoleEncoder(cfg),
		pool:    buffer.NewPool(),
	}
}

func selectTheme() theme {
	if os.Getenv("NO_COLOR") != "" {
		return plain
	}
	switch os.Getenv("GWA_THEME") {
	case "everforest":
		return everforest
	default:
		return gruvbox
	}
}

// interestingFields are surfaced inline in the console line, in this order.
// The rest of the structured payload is dropped from console output (it is
// still present in JSON mode).
var interestingFields = []string{
	"pulsar", "model", "run", "iter", "lnpost", "lnlike",
	"accept", "params", "toas", "file", "dir", "count", "duration", "error",
}

func (e *minimalEncoder) Clone() zapcore.Encoder {
	return &minimalEncoder{
		Encoder: e.Encoder.Clone(),
		pool:    e.pool,
	}
}

func (e *minimalEncoder) EncodeEntry(entry zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	line := e.pool.Get()
	t := currentTheme()

	line.AppendString(t.dim)
	line.AppendString(entry.Time.Format("15:04:05"))
	line.AppendString(t.reset)
	line.AppendString(" ")

	glyph := levelGlyphs[entry.Level]
	if glyph == "" {
		glyph = "•"
	}
	if c, ok := t.level[entry.Level]; ok {
		line.AppendString(c)
	}
	line.AppendString(glyph)
	line.AppendString(t.reset)
	line.AppendString(" ")

	if entry.LoggerName != "" {
		line.AppendString(t.name)
		line.AppendString(abbreviateName(entry.LoggerName))
		line.AppendString(t.reset)
		line.AppendString(" ")
	}

	line.AppendString(t.message)
	line.AppendString(entry.Message)
	line.AppendString(t.reset)

	values := extractFields(fields)
	for _, key := range interestingFields {
		if v, ok := values[key]; ok {
			line.AppendString(" ")
			line.AppendString(t.field)
			line.AppendString(key)
			line.AppendString("=")
			line.AppendString(t.reset)
			line.AppendString(t.value)
			line.AppendString(v)
			line.AppendString(t.reset)
		}
	}

	line.AppendString("\n")
	return line, nil
}

// abbreviateName shortens dotted logger names so long component paths do
// not dominate the line: "gwa.sampler.jumps" becomes "g.s.jumps".
func abbreviateName(name string) string {
	parts := strings.Split(name, ".")
	if len(parts) <= 1 {
		return name
	}
	var b strings.Builder
	for i, p := range parts {
		if i == len(parts)-1 {
			b.WriteString(p)
			break
		}
		if len(p) > 0 {
			b.WriteByte(p[0])
		}
		b.WriteString(".")
	}
	return b.String()
}

// extractFields renders each zap field to a short display string.
func extractFields(fields []zapcore.Field) map[string]string {
	out := make(map[string]string, len(fields))
	for _, f := range fields {
		out[f.Key] = fieldValue(f)
	}
	return out
}

func fieldValue(f zapcore.Field) string {
	switch f.Type {
	case zapcore.StringType:
		return f.String
	case zapcore.Int64Type, zapcore.Int32Type, zapcore.Int16Type, zapcore.Int8Type:
		return fmt.Sprintf("%d", f.Integer)
	case zapcore.Uint64Type, zapcore.Uint32Type, zapcore.Uint16Type, zapcore.Uint8Type:
		return fmt.Sprintf("%d", uint64(f.Integer))
	case zapcore.Float64Type:
		return formatFloat(f)
	case zapcore.Float32Type:
		return formatFloat(f)
	case zapcore.BoolType:
		if f.Integer == 1 {
			return "true"
		}
		return "false"
	case zapcore.DurationType:
		return time.Duration(f.Integer).Round(time.Millisecond).String()
	case zapcore.ErrorType:
		if err, ok := f.Interface.(error); ok {
			return err.Error()
		}
		return fmt.Sprintf("%v", f.Interface)
	default:
		if f.Interface != nil {
			return fmt.Sprintf("%v", f.Interface)
		}
		return f.String
	}
}

// formatFloat keeps likelihood values readable without drowning the line
// in digits. Chain statistics rarely need more than one decimal inline.
func formatFloat(f zapcore.Field) string {
	var v float64
	if f.Type == zapcore.Float32Type {
		v = float64(math.Float32frombits(uint32(f.Integer)))
	} else {
		v = math.Float64frombits(uint64(f.Integer))
	}
	if v == float64(int64(v)) && v < 1e9 && v > -1e9 {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.4g", v)
}
