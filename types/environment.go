package types

import "github.com/natansdj/electives"

const (
	SERVICE_NAME      = "electives"
	SERVICE_LOG_LEVEL = electives.LogLevelInfo
)

type IEnvironment interface {
	GetName() string
	GetLogLevel() string
}

// Serve information
type Environment struct {
	Name     string
	LogLevel string
}

func (e *Environment) GetName() string {
	if e.Name == "" {
		return SERVICE_NAME
	}
	return e.Name
}

func (e *Environment) GetLogLevel() string {
	if e.LogLevel == "" {
		return SERVICE_LOG_LEVEL
	}
	return e.LogLevel
}
