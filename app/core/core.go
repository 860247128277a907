package core

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/gridbase/gridbase/app/core/srv"
	"github.com/gridbase/gridbase/app/store/sqlstore"
	"github.com/gridbase/gridbase/pkg/modules"
	"github.com/gridbase/gridbase/pkg/types"
	"github.com/gridbase/gridbase/pkg/utils"
)

type Core struct {
	cfg CoreConfig
	srv *srv.Srv

	stores     func() *sqlstore.Provider
	httpClient *http.Client
	httpEngine *gin.Engine

	cache   types.Cache
	modules modules.Registry
	metrics *Metrics
}

func MustSetupCore(cfg CoreConfig) *Core {
	{
		var writer io.Writer = os.Stdout
		if cfg.Log.Path != "" {
			writer = &lumberjack.Logger{
				Filename:   cfg.Log.Path,
				MaxSize:    500, // megabytes
				MaxBackups: 3,
				MaxAge:     28,   //days
				Compress:   true, // disabled by default
			}
		}
		l := slog.New(slog.NewJSONHandler(writer, &slog.HandlerOptions{
			Level: cfg.Log.SlogLevel(),
		}))
		slog.SetDefault(l)
	}

	cfg.Query = cfg.Query.Normalize()
	cfg.Stock = cfg.Stock.Normalize()

	utils.SetupIDWorker(1)

	core := &Core{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: time.Second * 3},
		metrics:    NewMetrics("gridbase", "core"),
		httpEngine: gin.New(),
		cache:      setupCache(cfg.Redis),
		modules:    modules.NewMemoryRegistry(),
	}

	// setup store
	setupSqlStore(core)

	core.srv = srv.SetupSrvs(
		srv.ApplyRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
	)

	return core
}

func (s *Core) Cfg() CoreConfig {
	return s.cfg
}

func (s *Core) DefaultAppid() string {
	if s.cfg.Appid == "" {
		return types.DEFAULT_APPID
	}
	return s.cfg.Appid
}

func (s *Core) HttpEngine() *gin.Engine {
	return s.httpEngine
}

func (s *Core) Metrics() *Metrics {
	return s.metrics
}

func (s *Core) Cache() types.Cache {
	return s.cache
}

func (s *Core) Modules() modules.Registry {
	return s.modules
}

func setupSqlStore(core *Core) {
	core.stores = sqlstore.MustSetup(core.cfg.Postgres)
	// 执行数据库表初始化
	if err := core.stores().Install(); err != nil {
		panic(err)
	}
	fmt.Println("setupSqlStore done")
}

func (s *Core) Store() *sqlstore.Provider {
	return s.stores()
}

func (s *Core) Srv() *srv.Srv {
	return s.srv
}
