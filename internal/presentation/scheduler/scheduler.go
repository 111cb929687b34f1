package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	gemsapp "mint-server/internal/application/gems"
	mintapp "mint-server/internal/application/mint"
	"mint-server/internal/domain/mint"
	"mint-server/internal/domain/user"
	"mint-server/internal/infrastructure/config"
	"mint-server/internal/infrastructure/lock"
	otelinfra "mint-server/internal/infrastructure/observability/otel"

	"github.com/robfig/cron/v3"
)

// ジョブのロックキー
const (
	gemsJobKey = "job:gems-generate"
	mintJobKey = "job:mint"
)

// MintRunner スケジューラが起動するミント操作
type MintRunner interface {
	DistributeTokensFromGems(ctx context.Context, principal user.Principal, periodCode string) (*mintapp.MintSummary, error)
}

// GemsRunner スケジューラが起動するジェム生成操作
type GemsRunner interface {
	GenerateGemsFromActions(ctx context.Context, principal user.Principal) (*gemsapp.GenerateResult, error)
}

// Scheduler ジェム生成とミントの定期実行
//
// 各ジョブは分散ロックの取得に成功したレプリカだけが実行する。
// ロックは重複起動を減らすためのもので、二重ミントの防止は期間キーの一意制約が担う。
type Scheduler struct {
	cron       *cron.Cron
	cfg        *config.SchedulerConfig
	principal  user.Principal
	locker     lock.Locker
	mintRunner MintRunner
	gemsRunner GemsRunner
	logger     *otelinfra.Logger
	jobTimeout time.Duration
}

// NewScheduler 新しいSchedulerを作成
func NewScheduler(
	cfg *config.SchedulerConfig,
	principal user.Principal,
	locker lock.Locker,
	mintRunner MintRunner,
	gemsRunner GemsRunner,
	logger *otelinfra.Logger,
) *Scheduler {
	if locker == nil {
		locker = lock.NoopLocker{}
	}
	cl := &cronLogger{logger: logger}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		cfg:        cfg,
		principal:  principal,
		locker:     locker,
		mintRunner: mintRunner,
		gemsRunner: gemsRunner,
		logger:     logger,
		jobTimeout: cfg.LockTTL,
	}
}

// Register ジョブを登録する（スケジュールが不正な場合はエラー）
func (s *Scheduler) Register() error {
	if _, err := s.cron.AddFunc(s.cfg.GemsSchedule, func() { s.runJob(gemsJobKey, s.RunGems) }); err != nil {
		return fmt.Errorf("invalid gems schedule %q: %w", s.cfg.GemsSchedule, err)
	}
	if _, err := s.cron.AddFunc(s.cfg.MintSchedule, func() { s.runJob(mintJobKey, s.RunMint) }); err != nil {
		return fmt.Errorf("invalid mint schedule %q: %w", s.cfg.MintSchedule, err)
	}

	s.logger.Info(context.Background(), "Scheduled jobs registered", map[string]interface{}{
		"gems_schedule": s.cfg.GemsSchedule,
		"mint_schedule": s.cfg.MintSchedule,
		"mint_period":   s.cfg.MintPeriodCode,
	})
	return nil
}

// Start スケジューラを開始
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop スケジューラを停止し、実行中のジョブが終わると完了するコンテキストを返す
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// Entries 登録済みジョブ数を返す
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

// RunGems ジェム生成を1回実行
func (s *Scheduler) RunGems(ctx context.Context) error {
	result, err := s.gemsRunner.GenerateGemsFromActions(ctx, s.principal)
	if err != nil {
		return err
	}
	s.logger.Info(ctx, "Scheduled gems generation finished", map[string]interface{}{
		"status":   result.Status,
		"inserted": result.Inserted,
	})
	return nil
}

// RunMint 設定された期間のミントを1回実行
//
// 既にミント済みの期間は成功として扱う。
func (s *Scheduler) RunMint(ctx context.Context) error {
	summary, err := s.mintRunner.DistributeTokensFromGems(ctx, s.principal, s.cfg.MintPeriodCode)
	if err != nil {
		if mint.CodeOf(err) == mint.CodeAlreadyMinted {
			s.logger.Info(ctx, "Period already minted", map[string]interface{}{
				"period_code": s.cfg.MintPeriodCode,
			})
			return nil
		}
		return err
	}
	s.logger.Info(ctx, "Scheduled mint finished", map[string]interface{}{
		"status":            summary.Status,
		"period_key":        summary.PeriodKey,
		"mint_id":           summary.MintID,
		"total_distributed": summary.TotalDistributed.String(),
	})
	return nil
}

// runJob ロックを取得してジョブを実行する
func (s *Scheduler) runJob(key string, fn func(ctx context.Context) error) {
	ctx := context.Background()
	if s.jobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.jobTimeout)
		defer cancel()
	}

	err := lock.WithLock(ctx, s.locker, key, fn)
	switch {
	case err == nil:
	case errors.Is(err, lock.ErrLocked):
		s.logger.Debug(ctx, "Job skipped, lock held elsewhere", map[string]interface{}{"job": key})
	default:
		s.logger.Error(ctx, "Scheduled job failed", err, map[string]interface{}{"job": key})
	}
}

// cronLogger cron.Logger をアプリケーションのロガーへ橋渡しする
type cronLogger struct {
	logger *otelinfra.Logger
}

func (l *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(context.Background(), "cron: "+msg, toFields(keysAndValues))
}

func (l *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(context.Background(), "cron: "+msg, err, toFields(keysAndValues))
}

func toFields(keysAndValues []interface{}) map[string]interface{} {
	if len(keysAndValues) == 0 {
		return nil
	}
	fields := make(map[string]interface{}, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = fmt.Sprint(keysAndValues[i+1])
	}
	return fields
}
