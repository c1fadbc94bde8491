package db

import "errors"

// Sentinel errors for database operations.
var (
	ErrRecordNotFound = errors.New("db: record not found")
	ErrRecordExists   = errors.New("db: record already exists")
)

// Op constants name the underlying command or statement for error context.
const (
	OpPing          = "PING"
	OpExists        = "EXISTS"
	OpGet           = "GET"
	OpSet           = "SET"
	OpHGet          = "HGET"
	OpHSet          = "HSET"
	OpHSetNX        = "HSETNX"
	OpHGetAll       = "HGETALL"
	OpZAdd          = "ZADD"
	OpZRangeByScore = "ZRANGEBYSCORE"
	OpZRevRange     = "ZREVRANGE"
	OpRPush         = "RPUSH"
	OpLRange        = "LRANGE"
	OpExec          = "EXEC"
	OpQuery         = "QUERY"
	OpMigrate       = "MIGRATE"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
