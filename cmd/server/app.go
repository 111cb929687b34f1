package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	gemsapp "mint-server/internal/application/gems"
	mintapp "mint-server/internal/application/mint"
	"mint-server/internal/domain/gems"
	"mint-server/internal/domain/period"
	"mint-server/internal/domain/service"
	"mint-server/internal/domain/tokenmath"
	"mint-server/internal/domain/user"
	"mint-server/internal/infrastructure/config"
	"mint-server/internal/infrastructure/lock"
	otelinfra "mint-server/internal/infrastructure/observability/otel"
	"mint-server/internal/infrastructure/persistence/mysql"
)

// application 起動時に組み立てる依存関係
type application struct {
	cfg         *config.Config
	db          *mysql.DB
	logger      *otelinfra.Logger
	metrics     *otelinfra.Metrics
	mintService *mintapp.MintApplicationService
	gemsService *gemsapp.GemsApplicationService
	system      user.Principal
	closers     []func(context.Context) error
}

// newApplication 設定から依存関係を組み立てる
func newApplication(cfg *config.Config) (*application, error) {
	app := &application{
		cfg:    cfg,
		system: user.SystemPrincipal(cfg.Mint.SystemActor),
	}

	tracerShutdown, err := otelinfra.InitTracer(&cfg.OpenTelemetry)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracer: %w", err)
	}
	app.closers = append(app.closers, tracerShutdown)

	meterShutdown, err := otelinfra.InitMeter(&cfg.OpenTelemetry)
	if err != nil {
		app.close()
		return nil, fmt.Errorf("failed to initialize meter: %w", err)
	}
	app.closers = append(app.closers, meterShutdown)

	app.logger = otelinfra.NewLogger(otelinfra.Tracer("mint-server"), otelinfra.LogLevel(cfg.Log.Level))
	app.metrics, err = otelinfra.NewMetrics("mint-server")
	if err != nil {
		app.close()
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}

	arith, err := newArithmetic(&cfg.Mint)
	if err != nil {
		app.close()
		return nil, err
	}
	settings, err := newMintSettings(&cfg.Mint)
	if err != nil {
		app.close()
		return nil, err
	}
	categories, err := gems.Categories(gems.Factors{
		View:    cfg.Gems.ViewFactor,
		Like:    cfg.Gems.LikeFactor,
		Dislike: cfg.Gems.DislikeFactor,
		Comment: cfg.Gems.CommentFactor,
	})
	if err != nil {
		app.close()
		return nil, fmt.Errorf("invalid gems factors: %w", err)
	}

	app.db, err = mysql.NewDB(&cfg.Database)
	if err != nil {
		app.close()
		return nil, err
	}
	app.closers = append(app.closers, func(context.Context) error { return app.db.Close() })

	// リポジトリ
	userRepo := mysql.NewUserRepository(app.db)
	accountRepo := mysql.NewAccountRepository(app.db)
	transferRepo := mysql.NewTransferRepository(app.db)
	gemsRepo := mysql.NewGemsRepository(app.db)
	mintRepo := mysql.NewMintRepository(app.db)
	mintAccountRepo := mysql.NewMintAccountRepository(app.db, cfg.Mint.AccountID)
	txManager := mysql.NewTransactionManager(app.db)

	// ドメインサービス
	tokenLedger := service.NewTokenLedger(accountRepo, transferRepo, time.Now)
	authorizer := service.NewAuthorizer(userRepo)

	app.mintService = mintapp.NewMintApplicationService(
		gemsRepo,
		mintRepo,
		mintAccountRepo,
		userRepo,
		tokenLedger,
		authorizer,
		txManager,
		arith,
		settings,
		app.logger,
		app.metrics,
	)
	app.gemsService = gemsapp.NewGemsApplicationService(
		gemsRepo,
		authorizer,
		txManager,
		arith,
		categories,
		app.logger,
		app.metrics,
	)

	return app, nil
}

// newLocker Redisが有効なら分散ロックを、無効ならロックなしを返す
func (a *application) newLocker() lock.Locker {
	if !a.cfg.Redis.Enabled {
		return lock.NoopLocker{}
	}
	client := lock.NewRedisClient(&a.cfg.Redis)
	a.closers = append(a.closers, func(context.Context) error { return client.Close() })
	return lock.NewRedisLocker(client, a.cfg.Scheduler.LockTTL)
}

// close 後から開いたものから順に閉じる
func (a *application) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		log.Printf("Failed to release resources: %v", err)
	}
}

func newArithmetic(cfg *config.MintConfig) (*tokenmath.Arithmetic, error) {
	mode, err := tokenmath.NewRoundingMode(cfg.RoundingMode)
	if err != nil {
		return nil, err
	}
	arith, err := tokenmath.NewArithmetic(cfg.DecimalScale, mode)
	if err != nil {
		return nil, fmt.Errorf("MINT_DECIMAL_SCALE %d: %w", cfg.DecimalScale, err)
	}
	return arith, nil
}

func newMintSettings(cfg *config.MintConfig) (mintapp.Settings, error) {
	codes := make([]period.Code, 0, len(cfg.PeriodCodes))
	for _, s := range cfg.PeriodCodes {
		code, err := period.NewCode(s)
		if err != nil {
			return mintapp.Settings{}, fmt.Errorf("MINT_PERIOD_CODES: %w", err)
		}
		if !code.IsDay() {
			return mintapp.Settings{}, fmt.Errorf("MINT_PERIOD_CODES: %s is not a day period", code)
		}
		codes = append(codes, code)
	}
	return mintapp.Settings{
		Budget:        cfg.DailyBudget,
		PeriodCodes:   codes,
		MessagePrefix: cfg.MessagePrefix,
	}, nil
}
