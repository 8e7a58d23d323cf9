package types

import (
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMySQLDsn(t *testing.T) {
	m := &MySQL{
		Host:     "db.example.internal",
		Port:     "3307",
		Username: "reviewer",
		Password: "s3cret",
		Database: "electives",
	}

	cfg, err := mysql.ParseDSN(m.GetDsn())
	require.NoError(t, err)
	assert.Equal(t, "reviewer", cfg.User)
	assert.Equal(t, "s3cret", cfg.Passwd)
	assert.Equal(t, "tcp", cfg.Net)
	assert.Equal(t, "db.example.internal:3307", cfg.Addr)
	assert.Equal(t, "electives", cfg.DBName)
	assert.True(t, cfg.ParseTime)
}

func TestMySQLDefaults(t *testing.T) {
	m := &MySQL{}

	assert.Equal(t, MYSQL_DB_HOST, m.GetHost())
	assert.Equal(t, MYSQL_DB_PORT, m.GetPort())
	assert.Equal(t, MYSQL_DB_MAX_RETRIES, m.GetMaxRetries())
}

func TestPoolDefaults(t *testing.T) {
	p := &Pool{}

	assert.Equal(t, 55, p.GetSize())
	assert.True(t, p.GetWaitForConnections())
	assert.Equal(t, 0, p.GetQueueLimit())
	assert.Equal(t, 6*time.Hour, p.GetKeepAliveInterval())

	wait := false
	p = &Pool{Size: 8, WaitForConnections: &wait, QueueLimit: 4}
	assert.Equal(t, 8, p.GetSize())
	assert.False(t, p.GetWaitForConnections())
	assert.Equal(t, 4, p.GetQueueLimit())
}

func TestHttpServerDefaults(t *testing.T) {
	h := &HttpServer{Mode: "bogus"}

	assert.Equal(t, gin.ReleaseMode, h.GetMode())
	assert.Equal(t, 5*time.Second, h.GetRequestTimeout())
	assert.Equal(t, 3*time.Second, h.GetHealthTimeout())
	assert.NotNil(t, h.GetRouter())
	assert.NotNil(t, h.GetMiddleware())
}

func TestConfigDriver(t *testing.T) {
	assert.Equal(t, DRIVER_MYSQL, (&Config{}).GetDriver())
	assert.Equal(t, DRIVER_SQLITE, (&Config{Driver: "sqlite"}).GetDriver())
}
