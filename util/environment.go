package util

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"skat.com/server/logging"
)

var environmentLogger = log.With().Str("logger_name", "util::environment").Logger()

type skatServerEnvironment struct {
	TickRate         string
	ListenPort       string
	RestPort         string
	TableName        string
	AcceptRate       string
	HandshakeTimeout string
	PersistMethod    string
	RedisHost        string
	RedisPort        string
	RedisPW          string
	RedisDB          string
	NatsURL          string
	PostgresHost     string
	PostgresPort     string
	PostgresDB       string
	PostgresUser     string
	PostgresPW       string
	TimingFile       string
	LogLevel         string
	EnableWebsocket  string
	EnableCrashTest  string
	StateKey         string
}

// Env is a helper object for accessing environment variables.
var Env = &skatServerEnvironment{
	TickRate:         "TICK_RATE",
	ListenPort:       "LISTEN_PORT",
	RestPort:         "REST_PORT",
	TableName:        "TABLE_NAME",
	AcceptRate:       "ACCEPT_RATE",
	HandshakeTimeout: "HANDSHAKE_TIMEOUT_SEC",
	PersistMethod:    "PERSIST_METHOD",
	RedisHost:        "REDIS_HOST",
	RedisPort:        "REDIS_PORT",
	RedisPW:          "REDIS_PASSWORD",
	RedisDB:          "REDIS_DB",
	NatsURL:          "NATS_URL",
	PostgresHost:     "POSTGRES_HOST",
	PostgresPort:     "POSTGRES_PORT",
	PostgresDB:       "POSTGRES_DB",
	PostgresUser:     "POSTGRES_USER",
	PostgresPW:       "POSTGRES_PASSWORD",
	TimingFile:       "TIMING_FILE",
	LogLevel:         "LOG_LEVEL",
	EnableWebsocket:  "ENABLE_WEBSOCKET",
	EnableCrashTest:  "ENABLE_CRASH_TEST",
	StateKey:         "STATE_KEY",
}

func (e *skatServerEnvironment) getInt(name string, defaultValue int) int {
	s := os.Getenv(name)
	if s == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		msg := fmt.Sprintf("Invalid value for %s: %s", name, s)
		environmentLogger.Error().Msg(msg)
		panic(msg)
	}
	return v
}

func (e *skatServerEnvironment) getString(name string, defaultValue string) string {
	s := os.Getenv(name)
	if s == "" {
		return defaultValue
	}
	return s
}

// GetTickRate returns the tick loop frequency in Hz.
func (e *skatServerEnvironment) GetTickRate() int {
	hz := e.getInt(e.TickRate, 30)
	if hz <= 0 {
		msg := fmt.Sprintf("%s must be positive, got %d", e.TickRate, hz)
		environmentLogger.Error().Msg(msg)
		panic(msg)
	}
	return hz
}

func (e *skatServerEnvironment) GetListenPort() int {
	return e.getInt(e.ListenPort, 4242)
}

func (e *skatServerEnvironment) GetRestPort() int {
	return e.getInt(e.RestPort, 8080)
}

func (e *skatServerEnvironment) GetTableName() string {
	return e.getString(e.TableName, "skat")
}

// GetAcceptRate returns how many connections per second the listener accepts.
func (e *skatServerEnvironment) GetAcceptRate() int {
	return e.getInt(e.AcceptRate, 20)
}

func (e *skatServerEnvironment) GetHandshakeTimeout() time.Duration {
	return time.Duration(e.getInt(e.HandshakeTimeout, 10)) * time.Second
}

func (e *skatServerEnvironment) GetPersistMethod() string {
	method := strings.ToLower(e.getString(e.PersistMethod, "memory"))
	if method != "memory" && method != "redis" {
		msg := fmt.Sprintf("Invalid %s: %s", e.PersistMethod, method)
		environmentLogger.Error().Msg(msg)
		panic(msg)
	}
	return method
}

func (e *skatServerEnvironment) GetRedisHost() string {
	host := os.Getenv(e.RedisHost)
	if host == "" {
		msg := fmt.Sprintf("%s is not defined", e.RedisHost)
		environmentLogger.Error().Msg(msg)
		panic(msg)
	}
	return host
}

func (e *skatServerEnvironment) GetRedisPort() int {
	return e.getInt(e.RedisPort, 6379)
}

func (e *skatServerEnvironment) GetRedisPW() string {
	return os.Getenv(e.RedisPW)
}

// GetStateKey returns the UUID that seals checkpoints in redis, or an empty
// string to store them in plain JSON.
func (e *skatServerEnvironment) GetStateKey() string {
	return os.Getenv(e.StateKey)
}

func (e *skatServerEnvironment) GetRedisDB() int {
	return e.getInt(e.RedisDB, 0)
}

// GetNatsURL returns an empty string when the observer feed is disabled.
func (e *skatServerEnvironment) GetNatsURL() string {
	return os.Getenv(e.NatsURL)
}

func (e *skatServerEnvironment) GetPostgresHost() string {
	return os.Getenv(e.PostgresHost)
}

func (e *skatServerEnvironment) GetPostgresPort() int {
	return e.getInt(e.PostgresPort, 5432)
}

func (e *skatServerEnvironment) GetPostgresDB() string {
	return e.getString(e.PostgresDB, "skat")
}

func (e *skatServerEnvironment) GetPostgresUser() string {
	return e.getString(e.PostgresUser, "skat")
}

func (e *skatServerEnvironment) GetPostgresPW() string {
	return os.Getenv(e.PostgresPW)
}

func (e *skatServerEnvironment) GetPostgresConnStr() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		e.GetPostgresHost(), e.GetPostgresPort(), e.GetPostgresUser(), e.GetPostgresPW(), e.GetPostgresDB())
}

func (e *skatServerEnvironment) GetTimingFile() string {
	return e.getString(e.TimingFile, "timing.yaml")
}

func (e *skatServerEnvironment) GetZeroLogLogLevel() zerolog.Level {
	return logging.ParseLevel(os.Getenv(e.LogLevel))
}

func (e *skatServerEnvironment) ShouldEnableWebsocket() bool {
	s := strings.ToLower(e.getString(e.EnableWebsocket, "true"))
	return s == "1" || s == "true"
}

func (e *skatServerEnvironment) ShouldEnableCrashTest() bool {
	s := strings.ToLower(e.getString(e.EnableCrashTest, "false"))
	return s == "1" || s == "true"
}
