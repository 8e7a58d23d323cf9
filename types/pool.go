package types

import "time"

const (
	DB_POOL_SIZE            = 55
	DB_WAIT_FOR_CONNECTIONS = true
	DB_QUEUE_LIMIT          = 0
	DB_ACQUIRE_TIMEOUT      = 10 * time.Second
	DB_CONN_MAX_LIFETIME    = 0
	DB_CONN_MAX_IDLE_TIME   = 0
	DB_KEEPALIVE_INTERVAL   = 6 * time.Hour
	DB_KEEPALIVE_TIMEOUT    = 10 * time.Second
)

// IPool carries connection pool tuning shared by every database driver
type IPool interface {
	GetSize() int
	GetWaitForConnections() bool
	GetQueueLimit() int
	GetAcquireTimeout() time.Duration
	GetConnMaxLifetime() time.Duration
	GetConnMaxIdleTime() time.Duration
	GetKeepAliveInterval() time.Duration
	GetKeepAliveTimeout() time.Duration
}

type Pool struct {
	Size               int
	WaitForConnections *bool
	QueueLimit         int
	AcquireTimeout     time.Duration
	ConnMaxLifetime    time.Duration
	ConnMaxIdleTime    time.Duration
	KeepAliveInterval  time.Duration
	KeepAliveTimeout   time.Duration
}

func (p *Pool) GetSize() int {
	if p.Size <= 0 {
		return DB_POOL_SIZE
	}
	return p.Size
}

func (p *Pool) GetWaitForConnections() bool {
	if p.WaitForConnections == nil {
		return DB_WAIT_FOR_CONNECTIONS
	}
	return *p.WaitForConnections
}

// GetQueueLimit returns the wait queue bound, 0 is unbounded
func (p *Pool) GetQueueLimit() int {
	if p.QueueLimit < 0 {
		return DB_QUEUE_LIMIT
	}
	return p.QueueLimit
}

func (p *Pool) GetAcquireTimeout() time.Duration {
	if p.AcquireTimeout <= 0 {
		return DB_ACQUIRE_TIMEOUT
	}
	return p.AcquireTimeout
}

func (p *Pool) GetConnMaxLifetime() time.Duration {
	if p.ConnMaxLifetime < 0 {
		return DB_CONN_MAX_LIFETIME
	}
	return p.ConnMaxLifetime
}

func (p *Pool) GetConnMaxIdleTime() time.Duration {
	if p.ConnMaxIdleTime < 0 {
		return DB_CONN_MAX_IDLE_TIME
	}
	return p.ConnMaxIdleTime
}

func (p *Pool) GetKeepAliveInterval() time.Duration {
	if p.KeepAliveInterval <= 0 {
		return DB_KEEPALIVE_INTERVAL
	}
	return p.KeepAliveInterval
}

func (p *Pool) GetKeepAliveTimeout() time.Duration {
	if p.KeepAliveTimeout <= 0 {
		return DB_KEEPALIVE_TIMEOUT
	}
	return p.KeepAliveTimeout
}
