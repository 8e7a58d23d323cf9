package supervisor

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/natansdj/electives"
)

// DefaultTimeout is the per-request deadline when none is configured
const DefaultTimeout = 5 * time.Second

var timeoutBody = []byte(`{"error":"Request timed out"}`)

type Config struct {
	Timeout time.Duration
}

// Timeout answers 504 when the handler has not started its response before the
// deadline. The handler keeps running; whatever it writes afterwards is dropped.
// Register it before any route so the 404 handler is covered as well.
func Timeout(config Config) gin.HandlerFunc {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return func(c *gin.Context) {
		w := &guardedWriter{
			ResponseWriter: c.Writer,
			header:         c.Writer.Header().Clone(),
			method:         c.Request.Method,
			path:           c.Request.URL.Path,
		}

		w.mu.Lock()
		w.timer = time.AfterFunc(timeout, w.expire)
		w.mu.Unlock()

		c.Writer = w

		finished := false
		defer func() {
			if !finished {
				// panic on its way to Recovery
				w.stop()
				c.Writer = w.ResponseWriter
			}
		}()

		c.Next()

		finished = true
		w.finish()
		c.Writer = w.ResponseWriter
	}
}

// guardedWriter buffers status and headers until the handler commits, so that
// exactly one of the handler and the deadline gets to answer.
type guardedWriter struct {
	gin.ResponseWriter

	mu        sync.Mutex
	timer     *time.Timer
	header    http.Header
	code      int
	committed bool
	timedOut  bool
	done      bool

	method string
	path   string
}

func (w *guardedWriter) expire() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.committed || w.done {
		return
	}
	w.timedOut = true

	electives.LogW("Request timed out: %s %s", w.method, w.path)

	h := w.ResponseWriter.Header()
	h.Set("Content-Type", "application/json; charset=utf-8")
	h.Set("Content-Length", strconv.Itoa(len(timeoutBody)))
	w.ResponseWriter.WriteHeader(http.StatusGatewayTimeout)
	w.ResponseWriter.Write(timeoutBody)
	w.ResponseWriter.Flush()
}

// commitLocked hands the buffered status and headers to the real writer.
// It reports false once the deadline has answered.
func (w *guardedWriter) commitLocked() bool {
	if w.timedOut {
		return false
	}
	if w.committed {
		return true
	}

	w.committed = true
	w.timer.Stop()
	w.copyHeaderLocked()
	return true
}

func (w *guardedWriter) copyHeaderLocked() {
	dst := w.ResponseWriter.Header()
	for k := range dst {
		delete(dst, k)
	}
	for k, v := range w.header {
		dst[k] = v
	}
	if w.code != 0 {
		w.ResponseWriter.WriteHeader(w.code)
	}
}

func (w *guardedWriter) stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.done = true
	w.timer.Stop()
}

// finish passes on a status set without a body, gin writes it after the chain returns
func (w *guardedWriter) finish() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.done = true
	w.timer.Stop()
	if !w.committed && !w.timedOut {
		w.committed = true
		w.copyHeaderLocked()
	}
}

func (w *guardedWriter) Header() http.Header {
	return w.header
}

func (w *guardedWriter) WriteHeader(code int) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.committed || w.timedOut || code <= 0 {
		return
	}
	w.code = code
}

func (w *guardedWriter) WriteHeaderNow() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.commitLocked() {
		w.ResponseWriter.WriteHeaderNow()
	}
}

func (w *guardedWriter) Write(b []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.commitLocked() {
		return len(b), nil
	}
	return w.ResponseWriter.Write(b)
}

func (w *guardedWriter) WriteString(s string) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.commitLocked() {
		return len(s), nil
	}
	return w.ResponseWriter.WriteString(s)
}

func (w *guardedWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.commitLocked() {
		w.ResponseWriter.Flush()
	}
}

func (w *guardedWriter) Status() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.committed && !w.timedOut && w.code != 0 {
		return w.code
	}
	return w.ResponseWriter.Status()
}

func (w *guardedWriter) Written() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.timedOut || (w.committed && w.ResponseWriter.Written())
}
