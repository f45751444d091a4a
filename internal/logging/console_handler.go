package logging

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
)

const consoleTimestampLayout = "2006-01-02 15:04:05"

// prettyHandler renders one header line per record followed by an indented
// list of fields. The component, run and file attributes are lifted into the
// header; an error hint, when present, closes the record.
type prettyHandler struct {
	mu        *sync.Mutex
	writer    io.Writer
	level     *slog.LevelVar
	attrs     []slog.Attr
	groups    []string
	addSource bool
}

func newPrettyHandler(w io.Writer, lvl *slog.LevelVar, addSource bool) slog.Handler {
	return &prettyHandler{mu: &sync.Mutex{}, writer: w, level: lvl, addSource: addSource}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *prettyHandler) Handle(_ context.Context, record slog.Record) error {
	if !h.Enabled(context.Background(), record.Level) {
		return nil
	}

	var fields fieldSet
	fields.addAll(h.groups, h.attrs)
	record.Attrs(func(attr slog.Attr) bool {
		fields.add(h.groups, attr)
		return true
	})
	component := fields.take(FieldComponent)
	runID := fields.take(FieldRunID)
	file := fields.take(FieldFile)
	hint := fields.take(FieldErrorHint)

	var buf bytes.Buffer
	h.writeHeader(&buf, record, component, formatSubject(runID, file))
	for _, f := range fields.items {
		fmt.Fprintf(&buf, "    - %s: %s\n", f.key, formatValue(f.value))
	}
	if hint != "" {
		fmt.Fprintf(&buf, "    → %s\n", hint)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.writer.Write(buf.Bytes())
	return err
}

func (h *prettyHandler) writeHeader(buf *bytes.Buffer, record slog.Record, component, subject string) {
	ts := record.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	parts := []string{ts.In(time.Local).Format(consoleTimestampLayout), levelLabel(record.Level)}
	if component != "" {
		parts = append(parts, "["+component+"]")
	}
	if subject != "" {
		parts = append(parts, subject)
	}
	message := strings.TrimSpace(record.Message)
	if message == "" {
		message = "(no message)"
	}
	parts = append(parts, "–", message)
	if h.addSource {
		if src := record.Source(); src != nil && src.File != "" {
			parts = append(parts, fmt.Sprintf("[%s:%d]", filepath.Base(src.File), src.Line))
		}
	}
	buf.WriteString(strings.Join(parts, " "))
	buf.WriteByte('\n')
}

// formatSubject shortens the run ID to its first block so console lines stay
// readable; the JSON log keeps the full value.
func formatSubject(runID, file string) string {
	if short, _, ok := strings.Cut(strings.TrimSpace(runID), "-"); ok {
		runID = short
	}
	var parts []string
	if runID = strings.TrimSpace(runID); runID != "" {
		parts = append(parts, "run "+runID)
	}
	if file = strings.TrimSpace(file); file != "" {
		parts = append(parts, filepath.Base(file))
	}
	return strings.Join(parts, " · ")
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(slices.Clip(h.attrs), attrs...)
	return &clone
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	clone := *h
	clone.groups = append(slices.Clip(h.groups), name)
	return &clone
}

type field struct {
	key   string
	value slog.Value
}

// fieldSet collects flattened attributes in first-seen key order; a repeated
// key overwrites the earlier value in place.
type fieldSet struct {
	items []field
	index map[string]int
}

func (s *fieldSet) addAll(groups []string, attrs []slog.Attr) {
	for _, attr := range attrs {
		s.add(groups, attr)
	}
}

func (s *fieldSet) add(groups []string, attr slog.Attr) {
	if attr.Equal(slog.Attr{}) {
		return
	}
	value := attr.Value.Resolve()
	if value.Kind() == slog.KindGroup {
		if attr.Key != "" {
			groups = append(slices.Clip(groups), attr.Key)
		}
		s.addAll(groups, value.Group())
		return
	}
	key := attr.Key
	if len(groups) > 0 {
		key = strings.Join(groups, ".") + "." + key
	}
	if key == "" {
		return
	}
	if s.index == nil {
		s.index = make(map[string]int)
	}
	if pos, ok := s.index[key]; ok {
		s.items[pos].value = value
		return
	}
	s.index[key] = len(s.items)
	s.items = append(s.items, field{key: key, value: value})
}

// take removes key from the set and returns its value as plain text.
func (s *fieldSet) take(key string) string {
	pos, ok := s.index[key]
	if !ok {
		return ""
	}
	value := s.items[pos].value
	s.items = slices.Delete(s.items, pos, pos+1)
	delete(s.index, key)
	for k, p := range s.index {
		if p > pos {
			s.index[k] = p - 1
		}
	}
	return plainText(value)
}

func plainText(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		return v.String()
	case slog.KindAny:
		return anyText(v.Any())
	default:
		return formatValue(v)
	}
}

func anyText(v any) string {
	if err, ok := v.(error); ok {
		return err.Error()
	}
	return fmt.Sprint(v)
}

func formatValue(v slog.Value) string {
	var s string
	switch v.Kind() {
	case slog.KindTime:
		return v.Time().In(time.Local).Format(consoleTimestampLayout)
	case slog.KindBool, slog.KindInt64, slog.KindUint64, slog.KindFloat64, slog.KindDuration:
		return v.String()
	case slog.KindAny:
		s = anyText(v.Any())
	default:
		s = v.String()
	}
	if s == "" || strings.ContainsFunc(s, func(r rune) bool { return r < ' ' || r == '"' }) {
		return strconv.Quote(s)
	}
	return s
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	}
	return "DEBUG"
}
