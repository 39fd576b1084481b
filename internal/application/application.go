package application

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"fx_desk/internal/config"
	"fx_desk/internal/domain/service/ledger"
	"fx_desk/internal/domain/service/pricing"
	"fx_desk/internal/infrastructure/notifier"
	"fx_desk/internal/infrastructure/persistence"
	"fx_desk/internal/infrastructure/rates"
	"fx_desk/internal/infrastructure/sheets"
	"fx_desk/internal/server"
	"fx_desk/internal/transport/bot"
	"fx_desk/internal/worker"
	"fx_desk/pkg/application/connectors"
	"fx_desk/pkg/application/modules"
	"fx_desk/pkg/contextx"
	"fx_desk/pkg/logx"
	"fx_desk/pkg/middlewarex"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

const (
	appName        = "fx_desk"
	appVersion     = "dev"
	logFieldMaxLen = 4096
)

func Run(ctx context.Context) error {
	// 1. Config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config.Load: %w", err)
	}

	curatorShare, err := decimal.NewFromString(cfg.Policy.CuratorShare)
	if err != nil {
		return fmt.Errorf("parse curator share: %w", err)
	}

	// 2. Database
	pg := &connectors.Postgres{
		DSN:             cfg.Postgres.DSN,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: cfg.Postgres.ConnMaxLifetime,
	}
	db := pg.Client(ctx)
	defer pg.Close(ctx)

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("db ping: %w", err)
	}
	logger(ctx).Info("database connection OK")

	// 3. Repositories
	curatorRepo := persistence.NewCuratorRepository(db)
	dealRepo := persistence.NewDealRepository(db)

	// 4. Источники курса и админской конфигурации
	quotes := rates.NewCachedSource(rates.NewChain(
		rates.NewBinanceProvider(),
		rates.NewExchangerateHostProvider(),
		rates.NewExchangerateAPIProvider(),
	)).WithTTL(cfg.Quotes.CacheTTL, cfg.Quotes.MaxStaleness)

	sheetsClient := sheets.NewClient(cfg.Sheets.CSVURL, cfg.Sheets.CacheTTL)

	// 5. Сервисы
	calc := pricing.NewCalculator(quotes, sheetsClient)
	ledgerService := ledger.NewService(curatorRepo, dealRepo, curatorShare)

	g, ctx := errgroup.WithContext(ctx)

	// 6. Бот-уведомитель слушает события леджера
	alertBot, err := notifier.NewTelegramBot(cfg.Bot.Token, cfg.Bot.ChatID)
	if err != nil {
		return fmt.Errorf("notifier.NewTelegramBot: %w", err)
	}

	g.Go(func() error {
		if err := alertBot.Run(ctx, ledgerService.Events()); err != nil && ctx.Err() == nil {
			return fmt.Errorf("alertBot.Run: %w", err)
		}

		return nil
	})

	// 7. Периодическое обновление конфигурации и прогрев котировки
	refresher := worker.NewConfigRefresher(sheetsClient, quotes, cfg.Quotes.RefreshInterval)

	if err := refresher.Start(ctx); err != nil {
		return fmt.Errorf("refresher.Start: %w", err)
	}

	g.Go(func() error {
		<-ctx.Done()
		refresher.Stop()

		return nil
	})

	// 8. Админский бот
	adminBot, err := bot.New(cfg, calc, ledgerService, sheetsClient)
	if err != nil {
		return fmt.Errorf("bot.New: %w", err)
	}

	g.Go(func() error {
		if err := adminBot.Run(ctx); err != nil && ctx.Err() == nil {
			return fmt.Errorf("adminBot.Run: %w", err)
		}

		return nil
	})

	// 9. HTTP API
	srv := server.NewServer(
		server.NewRateServer(calc, quotes, sheetsClient),
		server.NewCuratorServer(ledgerService),
		server.NewDealServer(ledgerService),
	)

	masker := logx.NewNopSensitiveDataMasker()

	router := chi.NewRouter()
	router.Use(
		middlewarex.TraceID,
		middlewarex.Logger,
		middlewarex.RequestLogging(masker, logFieldMaxLen),
		middlewarex.ResponseLogging(masker, logFieldMaxLen),
		middlewarex.Recovery,
	)
	srv.RegisterRoutes(router)

	modules.HTTPServer{ShutdownTimeout: cfg.HTTP.ShutdownTimeout}.Run(ctx, g, &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           router,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
	})

	modules.ProbeServer{
		Name:          appName,
		Version:       appVersion,
		ListenAddress: cfg.Probe.Address,
	}.Run(ctx, g)

	modules.MetricServer{ListenAddress: cfg.Metrics.Address}.Run(ctx, g)

	if err := g.Wait(); err != nil {
		return fmt.Errorf("g.Wait: %w", err)
	}

	return nil
}
