package electives

import (
	"io"
	"strings"
	"sync"
	"time"

	"github.com/kataras/golog"
)

// Log level names accepted by SetLogLevel.
const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

func init() {
	golog.SetTimeFormat("2006-01-02 15:04:05")
}

// SetLogLevel changes the minimum level printed. Unknown names fall back to info.
func SetLogLevel(level string) {
	switch strings.ToLower(level) {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		golog.SetLevel(strings.ToLower(level))
	default:
		golog.SetLevel(LogLevelInfo)
	}
}

// SetLogOutput redirects every log line to w.
func SetLogOutput(w io.Writer) {
	golog.SetOutput(w)
}

// Log debug
func LogD(format string, v ...interface{}) {
	golog.Debugf(format, v...)
}

// Log info
func LogI(format string, v ...interface{}) {
	golog.Infof(format, v...)
}

// Log warning
func LogW(format string, v ...interface{}) {
	golog.Warnf(format, v...)
}

// Log error
func LogE(format string, v ...interface{}) {
	golog.Errorf(format, v...)
}

// Log error value
func LogErr(err error) {
	if err == nil {
		return
	}
	golog.Error(err.Error())
}

// Log fatal, exits the process.
func LogF(format string, v ...interface{}) {
	golog.Fatalf(format, v...)
}

// throttle remembers, per key, the earliest time the key may be logged again.
type throttle struct {
	sync.Mutex
	window time.Duration
	until  map[string]time.Time
	clock  func() time.Time
}

func newThrottle(window time.Duration) *throttle {
	return &throttle{window: window, until: map[string]time.Time{}, clock: time.Now}
}

func (t *throttle) pass(key string) bool {
	t.Lock()
	defer t.Unlock()
	now := t.clock()
	if now.Before(t.until[key]) {
		return false
	}
	t.until[key] = now.Add(t.window)
	return true
}

func (t *throttle) forget(key string) {
	t.Lock()
	delete(t.until, key)
	t.Unlock()
}

// Repeats of a keyed line inside this window are dropped.
var logThrottle = newThrottle(30 * time.Second)

func logKeyed(key string, emit func(string, ...interface{}), format string, v []interface{}) {
	if logThrottle.pass(key) {
		emit(format, v...)
	}
}

// LogERL logs an error at most once per window for key, e.g. "pool-exhausted".
func LogERL(key string, format string, v ...interface{}) {
	logKeyed(key, golog.Errorf, format, v)
}

// LogWRL is LogERL at warning level.
func LogWRL(key string, format string, v ...interface{}) {
	logKeyed(key, golog.Warnf, format, v)
}

// LogIRL is LogERL at info level.
func LogIRL(key string, format string, v ...interface{}) {
	logKeyed(key, golog.Infof, format, v)
}
