package core

import (
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

func MustLoadBaseConfig(path string) CoreConfig {
	if path == "" {
		return LoadBaseConfigFromENV()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	conf := &CoreConfig{}
	conf.SetConfigBytes(raw)

	if err = toml.Unmarshal(raw, conf); err != nil {
		panic(err)
	}

	return *conf
}

func (c CoreConfig) LoadCustomConfig(cfg any) error {
	if len(c.bytes) == 0 {
		return nil
	}
	if err := toml.Unmarshal(c.bytes, cfg); err != nil {
		return err
	}
	return nil
}

func LoadBaseConfigFromENV() CoreConfig {
	var c CoreConfig
	c.FromENV()
	return c
}

type CoreConfig struct {
	Addr     string      `toml:"addr"`
	Appid    string      `toml:"appid"`
	Log      Log         `toml:"log"`
	Postgres PGConfig    `toml:"postgres"`
	Redis    RedisConfig `toml:"redis"`

	Query     QueryConfig     `toml:"query"`
	RateLimit RateLimitConfig `toml:"rate_limit"`
	Stock     StockConfig     `toml:"stock"`

	bytes []byte `toml:"-"`
}

func (c *CoreConfig) SetConfigBytes(raw []byte) {
	c.bytes = raw
}

func (c *CoreConfig) FromENV() {
	c.Addr = os.Getenv("GRIDBASE_SERVICE_ADDRESS")
	c.Appid = os.Getenv("GRIDBASE_APPID")
	c.Log.FromENV()
	c.Postgres.FromENV()
	c.Redis.FromENV()
	c.Query.FromENV()
}

// QueryConfig 公开查询接口的窗口限制
type QueryConfig struct {
	// MaxLimit 单次查询返回的最大行数
	MaxLimit uint64 `toml:"max_limit"`
	// DefaultLimit 未显式传 limit 时的默认行数
	DefaultLimit uint64 `toml:"default_limit"`
}

func (q *QueryConfig) FromENV() {
	if v := os.Getenv("GRIDBASE_QUERY_MAX_LIMIT"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			q.MaxLimit = n
		}
	}
}

func (q QueryConfig) Normalize() QueryConfig {
	if q.MaxLimit == 0 {
		q.MaxLimit = 100
	}
	if q.DefaultLimit == 0 || q.DefaultLimit > q.MaxLimit {
		q.DefaultLimit = 50
	}
	return q
}

type RateLimitConfig struct {
	RPS   float64 `toml:"rps"`
	Burst int     `toml:"burst"`
}

// StockConfig 库存巡检配置
type StockConfig struct {
	// LowThreshold 低库存阈值，数量小于等于该值且大于 0 时告警
	LowThreshold float64 `toml:"low_threshold"`
	// SweepCron 巡检周期，cron 表达式，空则按每小时执行
	SweepCron string `toml:"sweep_cron"`
}

func (s StockConfig) Normalize() StockConfig {
	if s.LowThreshold <= 0 {
		s.LowThreshold = 5
	}
	return s
}

type PGConfig struct {
	DSN string `toml:"dsn"`
}

func (m *PGConfig) FromENV() {
	m.DSN = os.Getenv("GRIDBASE_POSTGRESQL_DSN")
}

func (c PGConfig) FormatDSN() string {
	return c.DSN
}

type RedisConfig struct {
	Addr     string `toml:"addr"`     // Redis地址，格式: host:port
	Password string `toml:"password"` // Redis密码
	DB       int    `toml:"db"`       // Redis数据库索引 (0-15)

	// 连接池配置
	PoolSize     int `toml:"pool_size"`      // 连接池大小，默认10
	MinIdleConns int `toml:"min_idle_conns"` // 最小空闲连接数，默认0

	KeyPrefix string `toml:"key_prefix"` // Redis键前缀，用于隔离不同环境
}

func (r *RedisConfig) FromENV() {
	r.Addr = os.Getenv("GRIDBASE_REDIS_ADDR")
	r.Password = os.Getenv("GRIDBASE_REDIS_PASSWORD")
	if dbStr := os.Getenv("GRIDBASE_REDIS_DB"); dbStr != "" {
		if db, err := strconv.Atoi(dbStr); err == nil {
			r.DB = db
		}
	}
}

type Log struct {
	Level string `toml:"level"`
	Path  string `toml:"path"`
}

func (l *Log) FromENV() {
	l.Level = os.Getenv("GRIDBASE_LOG_LEVEL")
	l.Path = os.Getenv("GRIDBASE_LOG_PATH")
}

func (l *Log) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "info":
		return slog.LevelInfo
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelDebug
	}
}
