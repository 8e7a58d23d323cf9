package types

import (
	"net"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/natansdj/electives"
)

const (
	MYSQL_DB_HOST        = "localhost"
	MYSQL_DB_PORT        = "3306"
	MYSQL_DB_USERNAME    = "root"
	MYSQL_DB_PASSWORD    = ""
	MYSQL_DB_DATABASE    = "electives"
	MYSQL_DB_CHARSET     = "utf8mb4"
	MYSQL_DB_MAX_RETRIES = 3
	MYSQL_DB_DIAL        = 10 * time.Second
)

type IMySQL interface {
	GetHost() string
	GetPort() string
	GetUsername() string
	GetPassword() string
	GetDatabase() string
	GetDsn() string
	DebugMode() bool
	GetMaxRetries() int
	GetPool() IPool
}

type MySQL struct {
	Host       string
	Port       string
	Username   string
	Password   string
	Database   string
	Debug      bool
	MaxRetries int
	Pool       Pool
}

func (m *MySQL) GetHost() string {
	if m.Host == "" {
		electives.LogW("Configs MySQL: DB_HOST is not set in .env file, using default configuration.")
		return MYSQL_DB_HOST
	}
	return m.Host
}

func (m *MySQL) GetPort() string {
	if m.Port == "" {
		electives.LogW("Configs MySQL: DB_PORT is not set in .env file, using default configuration.")
		return MYSQL_DB_PORT
	}
	return m.Port
}

func (m *MySQL) GetUsername() string {
	if m.Username == "" {
		electives.LogW("Configs MySQL: DB_USER is not set in .env file, using default configuration.")
		return MYSQL_DB_USERNAME
	}
	return m.Username
}

func (m *MySQL) GetPassword() string {
	return m.Password
}

func (m *MySQL) GetDatabase() string {
	if m.Database == "" {
		electives.LogW("Configs MySQL: DB_NAME is not set in .env file, using default configuration.")
		return MYSQL_DB_DATABASE
	}
	return m.Database
}

func (m *MySQL) DebugMode() bool {
	return m.Debug
}

// GetMaxRetries returns the maximum number of attempts for the first connection
func (m *MySQL) GetMaxRetries() int {
	if m.MaxRetries <= 0 {
		return MYSQL_DB_MAX_RETRIES
	}
	return m.MaxRetries
}

func (m *MySQL) GetPool() IPool {
	return &m.Pool
}

// GetDsn builds the go-sql-driver DSN. Times are parsed into time.Time in local time.
func (m *MySQL) GetDsn() string {
	cfg := mysql.NewConfig()
	cfg.User = m.GetUsername()
	cfg.Passwd = m.GetPassword()
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(m.GetHost(), m.GetPort())
	cfg.DBName = m.GetDatabase()
	cfg.ParseTime = true
	cfg.Loc = time.Local
	cfg.Timeout = MYSQL_DB_DIAL
	cfg.Params = map[string]string{"charset": MYSQL_DB_CHARSET}
	return cfg.FormatDSN()
}
