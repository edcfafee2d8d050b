// Package app assembles the storefront bot from configuration.
package app

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/shopbot/core/bootstrap"
	corecmd "github.com/m3rciful/shopbot/core/cmd"
	coredatabase "github.com/m3rciful/shopbot/core/database"
	coretelegram "github.com/m3rciful/shopbot/core/telegram"
	"github.com/m3rciful/shopbot/internal/bot"
	"github.com/m3rciful/shopbot/internal/config"
	"github.com/m3rciful/shopbot/internal/menu"
	"github.com/m3rciful/shopbot/internal/news"
	"github.com/m3rciful/shopbot/internal/seed"
	"github.com/m3rciful/shopbot/internal/storage/postgres"
	"github.com/m3rciful/shopbot/migrations"
)

// App owns the database pool for the lifetime of the bot.
type App struct {
	*bot.App
	db *sqlx.DB
}

// Load is the cmd.Options.LoadConfig hook.
func Load(path string) (corecmd.ConfigCarrier, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Bootstrap is the cmd.Options.Bootstrap hook: logger, migrations, pool, seeding.
func Bootstrap(ctx context.Context, carrier corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
	cfg := carrier.(*config.Config)

	res, err := bootstrap.Run(ctx, bootstrap.Options{
		Config:   cfg.CoreConfig(),
		Database: cfg.Database,
		Migrate:  coredatabase.Migrator{Source: migrations.FS}.Run,
		Modules: bootstrap.Modules{
			Seeders: []bootstrap.Seeder{seed.CatalogSeeder(cfg.Seed.CatalogFile)},
		},
	})
	if err != nil {
		return nil, err
	}
	return New(cfg, res.DB), nil
}

// New wires the store, page builder, scraper and dispatcher around db.
func New(cfg *config.Config, db *sqlx.DB) *App {
	store := postgres.New(db)
	pages := menu.NewBuilder(menu.Content{
		Welcome:   cfg.Content.Welcome,
		Reference: cfg.Content.Reference,
		Help:      cfg.Content.Help,
		Currency:  cfg.Content.Currency,
	})
	disp := bot.NewDispatcher(store, pages, news.NewFetcher(cfg.News.URL, cfg.News.Timeout))
	return &App{App: bot.NewApp(cfg.CoreConfig(), store, disp), db: db}
}

// TelegramRunOptions closes the pool once the bot stops.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	opts, err := a.App.TelegramRunOptions()
	if err != nil {
		return opts, err
	}
	prev := opts.OnStop
	opts.OnStop = func(ctx context.Context, rt coretelegram.Runtime) error {
		if prev != nil {
			if err := prev(ctx, rt); err != nil {
				return err
			}
		}
		return a.db.Close()
	}
	return opts, nil
}
