package bootstrap

import (
	"context"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/threedv/saiban/internal/config"
	"github.com/threedv/saiban/internal/infra/board"
	"github.com/threedv/saiban/internal/infra/cache"
	"github.com/threedv/saiban/internal/infra/db"
	"github.com/threedv/saiban/internal/infra/logger"
	"github.com/threedv/saiban/internal/infra/mailer"
	mq "github.com/threedv/saiban/internal/infra/queue"
	"github.com/threedv/saiban/internal/modules/handler"
	"github.com/threedv/saiban/internal/modules/model"
	"github.com/threedv/saiban/internal/modules/repo"
	"github.com/threedv/saiban/internal/modules/service"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func BuildContainer() *do.Injector {
	inj := do.New()

	// config
	do.Provide(inj, func(i *do.Injector) (*config.Config, error) {
		return config.Load()
	})

	// logger
	do.Provide(inj, func(i *do.Injector) (*zap.Logger, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return logger.New(cfg.Log.Level, cfg.App.Env)
	})

	// DB
	do.Provide(inj, func(i *do.Injector) (*gorm.DB, error) {
		cfg := do.MustInvoke[*config.Config](i)
		log := do.MustInvoke[*zap.Logger](i)
		d, err := db.New(cfg)
		if err != nil {
			return nil, err
		}

		if cfg.Telemetry.Enabled {
			if err := db.RegisterOpenTelemetryPlugin(d); err != nil {
				return nil, err
			}
		}

		if cfg.Database.AutoMigrate {
			if err := d.AutoMigrate(
				&model.Employee{},
				&model.Project{},
				&model.EditHistory{},
			); err != nil {
				return nil, err
			}
		}

		if err := EnsureAdminExists(context.Background(), d, cfg, log); err != nil {
			return nil, err
		}

		return d, nil
	})

	// Redis
	do.Provide(inj, func(i *do.Injector) (*redis.Client, error) {
		cfg := do.MustInvoke[*config.Config](i)
		if cfg.Redis.Addr == "" {
			// no cache configured, board lookups go direct
			return nil, nil
		}
		rdb, err := cache.New(cfg)
		if err != nil {
			return nil, err
		}
		if cfg.Telemetry.Enabled {
			if err := cache.RegisterOpenTelemetryPlugin(rdb); err != nil {
				return nil, err
			}
		}
		return rdb, nil
	})

	// RabbitMQ connection (optional)
	do.Provide(inj, func(i *do.Injector) (*amqp.Connection, error) {
		cfg := do.MustInvoke[*config.Config](i)
		if cfg.RabbitMQ.URL == "" {
			return nil, nil
		}
		return amqp.Dial(cfg.RabbitMQ.URL)
	})

	// RabbitMQ publisher
	do.Provide(inj, func(i *do.Injector) (*mq.Publisher, error) {
		conn := do.MustInvoke[*amqp.Connection](i)
		if conn == nil {
			return nil, nil
		}
		cfg := do.MustInvoke[*config.Config](i)
		log := do.MustInvoke[*zap.Logger](i)
		return mq.NewPublisher(conn, log, cfg)
	})

	// Board API client, with the list cache in front when Redis is up
	do.Provide(inj, func(i *do.Injector) (board.Client, error) {
		cfg := do.MustInvoke[*config.Config](i)
		log := do.MustInvoke[*zap.Logger](i)
		client := board.NewClient(cfg, log)
		rdb := do.MustInvoke[*redis.Client](i)
		return board.WithListCache(client, rdb, cfg.Board.ListCacheTTL, log), nil
	})

	// Mailer
	do.Provide(inj, func(i *do.Injector) (mailer.Sender, error) {
		cfg := do.MustInvoke[*config.Config](i)
		log := do.MustInvoke[*zap.Logger](i)
		return mailer.New(cfg, log), nil
	})

	// Repo
	do.Provide(inj, func(i *do.Injector) (repo.ProjectRepo, error) {
		return repo.NewProjectRepo(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.EmployeeRepo, error) {
		return repo.NewEmployeeRepo(do.MustInvoke[*gorm.DB](i)), nil
	})

	// Service
	do.Provide(inj, func(i *do.Injector) (*service.NumberGenerator, error) {
		return service.NewNumberGenerator(do.MustInvoke[repo.ProjectRepo](i), nil), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.Notifier, error) {
		return service.NewNotifier(
			do.MustInvoke[board.Client](i),
			do.MustInvoke[mailer.Sender](i),
			do.MustInvoke[*mq.Publisher](i),
			do.MustInvoke[*config.Config](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.ProjectService, error) {
		return service.NewProjectService(
			do.MustInvoke[repo.ProjectRepo](i),
			do.MustInvoke[repo.EmployeeRepo](i),
			do.MustInvoke[*service.NumberGenerator](i),
			do.MustInvoke[board.Client](i),
			do.MustInvoke[service.Notifier](i),
			nil,
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.EmployeeService, error) {
		return service.NewEmployeeService(do.MustInvoke[repo.EmployeeRepo](i)), nil
	})

	// Handler
	do.Provide(inj, func(i *do.Injector) (*handler.ProjectHandler, error) {
		return handler.NewProjectHandler(do.MustInvoke[service.ProjectService](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.AccountHandler, error) {
		return handler.NewAccountHandler(do.MustInvoke[service.EmployeeService](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.EmployeeHandler, error) {
		return handler.NewEmployeeHandler(do.MustInvoke[service.EmployeeService](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.BoardHandler, error) {
		return handler.NewBoardHandler(
			do.MustInvoke[board.Client](i),
			do.MustInvoke[*config.Config](i),
		), nil
	})
	return inj
}
