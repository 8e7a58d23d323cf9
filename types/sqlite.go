package types

import "github.com/natansdj/electives"

const SQLITE_DB_PATH = "electives.db"

type ISqLite interface {
	GetPath() string
	DebugMode() bool
	GetPool() IPool
}

// SqLite backs local development without a MySQL server
type SqLite struct {
	Path  string
	Debug bool
	Pool  Pool
}

func (s *SqLite) GetPath() string {
	if s.Path == "" {
		electives.LogW("Configs SqLite: DB_SQLITE_PATH is not set in .env file, using default configuration.")
		return SQLITE_DB_PATH
	}
	return s.Path
}

func (s *SqLite) DebugMode() bool {
	return s.Debug
}

func (s *SqLite) GetPool() IPool {
	return &s.Pool
}
