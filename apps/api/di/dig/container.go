package dig_container

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/trezcool/kazi/apps/api/echo"
	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/insight"
	"github.com/trezcool/kazi/core/ratelimit"
	"github.com/trezcool/kazi/core/session"
	"github.com/trezcool/kazi/core/task"
	"github.com/trezcool/kazi/core/user"
	emailsvc "github.com/trezcool/kazi/services/email"
	logsvc "github.com/trezcool/kazi/services/logger"
	rediscache "github.com/trezcool/kazi/storage/cache/redis"
	"github.com/trezcool/kazi/storage/database"
	sqlxrepos "github.com/trezcool/kazi/storage/database/sqlx"
)

const rateLimitStoreRedis = "redis"

type (
	DBLoggerParam struct {
		dig.In
		Logger core.Logger `name:"dbLogger"`
	}

	ServerParams struct {
		dig.In

		Conf       *core.Config
		Logger     core.Logger
		DB         *sqlx.DB
		Validate   *validator.Validate
		Translator ut.Translator
		UserSvc    *user.Service
		Sessions   *session.Manager
		TaskSvc    *task.Service
		InsightSvc *insight.Service
		Limiter    *ratelimit.Limiter
	}
)

func newLogger(conf *core.Config) core.Logger {
	logger := logsvc.NewRollbarLogger(logsvc.NewZap("API", conf), conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newDBLogger(conf *core.Config) core.Logger {
	logger := logsvc.NewRollbarLogger(logsvc.NewZap("DB", conf), conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newDB(conf *core.Config, loggerParam DBLoggerParam) (*sqlx.DB, core.DBExecutor) {
	setUp := func() (*sqlx.DB, error) {
		if err := database.CreateIfNotExist(conf); err != nil {
			return nil, err
		}

		db, err := database.Open(conf)
		if err != nil {
			return nil, err
		}

		if err = database.Migrate(db.DB); err != nil {
			return nil, err
		}
		return db, nil
	}

	db, err := setUp()
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return db, db
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug {
		return emailsvc.NewConsoleService(conf, logger)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

func newRateLimitStore(conf *core.Config, exec core.DBExecutor, loggerParam DBLoggerParam) ratelimit.Store {
	if conf.AI.RateLimitStore != rateLimitStoreRedis {
		return sqlxrepos.NewRateLimitStore(exec)
	}
	rdb, err := rediscache.NewClient(context.Background(), conf)
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("connecting to redis: %v", err), err)
	}
	return rediscache.NewRateLimitStore(rdb, conf)
}

func newTaskSource(svc *task.Service) insight.TaskSource { return svc }

func newGenerator() insight.Generator { return insight.NewFallbackGenerator() }

// newServer builds the API server. It stops on SIGINT and SIGTERM.
func newServer(p ServerParams) *echoapi.Server {
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	return echoapi.NewServer(p.Conf.Server.Host, shutdown, &echoapi.Deps{
		Conf:       p.Conf,
		Logger:     p.Logger,
		Validate:   p.Validate,
		Translator: p.Translator,
		HealthCheck: func(ctx context.Context) error {
			return database.StatusCheck(ctx, p.DB)
		},
		UserSvc:    p.UserSvc,
		Sessions:   p.Sessions,
		TaskSvc:    p.TaskSvc,
		InsightSvc: p.InsightSvc,
		Limiter:    p.Limiter,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newDB))
	must(c.Provide(database.NewTransactor))
	must(c.Provide(newEmailService))
	must(c.Provide(validator.New))
	must(c.Provide(newTranslator))

	// repositories
	must(c.Provide(sqlxrepos.NewUserRepository, dig.As(new(user.Repository))))
	must(c.Provide(sqlxrepos.NewTaskRepository, dig.As(new(task.Repository))))
	must(c.Provide(sqlxrepos.NewProgressRepository, dig.As(new(task.ProgressRepository))))
	must(c.Provide(sqlxrepos.NewInsightRepository, dig.As(new(insight.Repository))))
	must(c.Provide(newRateLimitStore))

	// services
	must(c.Provide(user.NewService))
	must(c.Provide(session.NewManager))
	must(c.Provide(task.NewService))
	must(c.Provide(newTaskSource))
	must(c.Provide(newGenerator))
	must(c.Provide(insight.NewService))
	must(c.Provide(ratelimit.NewLimiter))

	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
