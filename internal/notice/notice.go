// Package notice carries the transient, user-facing messages the dashboard
// raises after loads, saves and deletes.
package notice

import (
	"log/slog"
	"sync"
	"time"
)

// Level is the severity shown to the user.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
)

// Notice is a single transient message.
type Notice struct {
	Seq     uint64    `json:"seq"`
	Level   Level     `json:"level"`
	Source  string    `json:"source,omitempty"`
	Message string    `json:"message"`
	Detail  string    `json:"detail,omitempty"`
	Time    time.Time `json:"time"`
}

// Notifier receives notices. Implementations must be safe for concurrent use.
type Notifier interface {
	Notify(n Notice)
}

// Success builds a success notice.
func Success(source, message string) Notice {
	return Notice{Level: LevelSuccess, Source: source, Message: message, Time: time.Now()}
}

// Info builds an informational notice.
func Info(source, message string) Notice {
	return Notice{Level: LevelInfo, Source: source, Message: message, Time: time.Now()}
}

// Failure builds an error notice. err, when present, becomes the detail.
func Failure(source, message string, err error) Notice {
	n := Notice{Level: LevelError, Source: source, Message: message, Time: time.Now()}
	if err != nil {
		n.Detail = err.Error()
	}
	return n
}

// Func adapts a function to a Notifier.
type Func func(n Notice)

func (f Func) Notify(n Notice) { f(n) }

// Discard drops every notice.
var Discard Notifier = Func(func(Notice) {})

type multi []Notifier

func (m multi) Notify(n Notice) {
	for _, target := range m {
		target.Notify(n)
	}
}

// Multi fans a notice out to every non-nil notifier.
func Multi(notifiers ...Notifier) Notifier {
	var m multi
	for _, n := range notifiers {
		if n != nil {
			m = append(m, n)
		}
	}
	return m
}

type logNotifier struct {
	logger *slog.Logger
}

// Log writes notices to a structured logger.
func Log(logger *slog.Logger) Notifier {
	return &logNotifier{logger: logger}
}

func (l *logNotifier) Notify(n Notice) {
	attrs := []any{"source", n.Source, "level", string(n.Level)}
	if n.Detail != "" {
		attrs = append(attrs, "detail", n.Detail)
	}
	if n.Level == LevelError {
		l.logger.Warn(n.Message, attrs...)
		return
	}
	l.logger.Info(n.Message, attrs...)
}

// Feed keeps the most recent notices in memory so the UI can poll them.
type Feed struct {
	mu    sync.Mutex
	max   int
	seq   uint64
	items []Notice
}

// NewFeed returns a feed holding at most max notices.
func NewFeed(max int) *Feed {
	if max <= 0 {
		max = 50
	}
	return &Feed{max: max}
}

func (f *Feed) Notify(n Notice) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.seq++
	n.Seq = f.seq
	if n.Time.IsZero() {
		n.Time = time.Now()
	}
	f.items = append(f.items, n)
	if len(f.items) > f.max {
		f.items = append([]Notice(nil), f.items[len(f.items)-f.max:]...)
	}
}

// Since returns the notices with a sequence number greater than after,
// oldest first.
func (f *Feed) Since(after uint64) []Notice {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := []Notice{}
	for _, n := range f.items {
		if n.Seq > after {
			out = append(out, n)
		}
	}
	return out
}

// Last returns the most recent notice, if any.
func (f *Feed) Last() (Notice, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.items) == 0 {
		return Notice{}, false
	}
	return f.items[len(f.items)-1], true
}
