package supervisor

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/natansdj/electives"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) count(s string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.Count(b.buf.String(), s)
}

func captureLog(t *testing.T) *syncBuffer {
	t.Helper()
	buf := &syncBuffer{}
	electives.SetLogOutput(buf)
	t.Cleanup(func() { electives.SetLogOutput(os.Stdout) })
	return buf
}

func newServer(t *testing.T, timeout time.Duration, routes func(e *gin.Engine)) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	e := gin.New()
	e.Use(gin.Recovery(), Timeout(Config{Timeout: timeout}))
	routes(e)

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	res, err := http.Get(url)
	require.NoError(t, err)
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res, string(body)
}

func TestFastHandlerRespondsOnce(t *testing.T) {
	logs := captureLog(t)
	srv := newServer(t, 5000*time.Millisecond, func(e *gin.Engine) {
		e.GET("/modules/all", func(c *gin.Context) {
			time.Sleep(10 * time.Millisecond)
			c.JSON(http.StatusOK, gin.H{"ok": true})
		})
	})

	res, body := get(t, srv.URL+"/modules/all")

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.JSONEq(t, `{"ok":true}`, body)
	assert.Contains(t, res.Header.Get("Content-Type"), "application/json")

	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, logs.count("Request timed out"))
}

func TestStuckHandlerTimesOut(t *testing.T) {
	logs := captureLog(t)
	release := make(chan struct{})
	late := make(chan error, 1)

	srv := newServer(t, 50*time.Millisecond, func(e *gin.Engine) {
		e.GET("/modules/:module_code", func(c *gin.Context) {
			c.Header("X-Partial", "1")
			<-release

			n, err := c.Writer.WriteString(`{"module_code":"CS2030"}`)
			if err == nil && n != len(`{"module_code":"CS2030"}`) {
				err = io.ErrShortWrite
			}
			late <- err
		})
	})

	start := time.Now()
	res, body := get(t, srv.URL+"/modules/CS2030")

	assert.Equal(t, http.StatusGatewayTimeout, res.StatusCode)
	assert.Equal(t, `{"error":"Request timed out"}`, body)
	assert.Empty(t, res.Header.Get("X-Partial"))
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, 1, logs.count("Request timed out: GET /modules/CS2030"))

	close(release)
	assert.NoError(t, <-late, "late write is a silent no-op")

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, logs.count("Request timed out"))
}

func TestLateJSONDoesNotReplaceTimeout(t *testing.T) {
	captureLog(t)
	release := make(chan struct{})
	handled := make(chan struct{})

	srv := newServer(t, 30*time.Millisecond, func(e *gin.Engine) {
		e.GET("/slow", func(c *gin.Context) {
			<-release
			c.JSON(http.StatusOK, gin.H{"late": true})
			close(handled)
		})
	})

	res, body := get(t, srv.URL+"/slow")
	assert.Equal(t, http.StatusGatewayTimeout, res.StatusCode)
	assert.NotContains(t, body, "late")

	close(release)
	<-handled
}

func TestNoRouteIsSupervised(t *testing.T) {
	logs := captureLog(t)
	release := make(chan struct{})
	defer close(release)

	srv := newServer(t, 30*time.Millisecond, func(e *gin.Engine) {
		e.GET("/fast-missing", func(c *gin.Context) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		})
		e.NoRoute(func(c *gin.Context) {
			<-release
		})
	})

	res, _ := get(t, srv.URL+"/fast-missing")
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	res, _ = get(t, srv.URL+"/nowhere")
	assert.Equal(t, http.StatusGatewayTimeout, res.StatusCode)
	assert.Equal(t, 1, logs.count("Request timed out: GET /nowhere"))
}

func TestStatusWithoutBodyIsPassedOn(t *testing.T) {
	srv := newServer(t, time.Second, func(e *gin.Engine) {
		e.GET("/empty", func(c *gin.Context) {
			c.Header("X-Test", "1")
			c.Status(http.StatusNoContent)
		})
	})

	res, body := get(t, srv.URL+"/empty")
	assert.Equal(t, http.StatusNoContent, res.StatusCode)
	assert.Equal(t, "1", res.Header.Get("X-Test"))
	assert.Empty(t, body)
}

func TestPanicReachesRecovery(t *testing.T) {
	logs := captureLog(t)
	srv := newServer(t, 50*time.Millisecond, func(e *gin.Engine) {
		e.GET("/panic", func(c *gin.Context) {
			panic("handler bug")
		})
	})

	res, _ := get(t, srv.URL+"/panic")
	assert.Equal(t, http.StatusInternalServerError, res.StatusCode)

	time.Sleep(80 * time.Millisecond)
	assert.Zero(t, logs.count("Request timed out"))
}

func TestDefaultTimeout(t *testing.T) {
	assert.NotNil(t, Timeout(Config{}))
	assert.Equal(t, 5*time.Second, DefaultTimeout)
}
