package types

const (
	DRIVER_MYSQL  = "mysql"
	DRIVER_SQLITE = "sqlite"
)

// Config is the whole service configuration
type Config struct {
	Environment Environment
	Driver      string
	MySQL       MySQL
	SqLite      SqLite
	Http        HttpServer
}

// GetDriver returns the selected database driver, mysql unless sqlite is requested
func (c *Config) GetDriver() string {
	if c.Driver == DRIVER_SQLITE {
		return DRIVER_SQLITE
	}
	return DRIVER_MYSQL
}
