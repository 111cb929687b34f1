package gems

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"mint-server/internal/domain/gems"
	"mint-server/internal/domain/mint"
	"mint-server/internal/domain/period"
	"mint-server/internal/domain/service"
	"mint-server/internal/domain/tokenmath"
	"mint-server/internal/domain/transaction"
	"mint-server/internal/domain/user"
	otelinfra "mint-server/internal/infrastructure/observability/otel"
)

// GemsApplicationService ジェムアプリケーションサービス
type GemsApplicationService struct {
	gemsRepo   gems.GemsRepository
	authorizer *service.Authorizer
	txManager  transaction.TransactionManager
	arith      *tokenmath.Arithmetic
	categories []gems.Category
	logger     *otelinfra.Logger
	metrics    *otelinfra.Metrics
	tracer     trace.Tracer
	now        func() time.Time
}

// NewGemsApplicationService 新しいGemsApplicationServiceを作成
func NewGemsApplicationService(
	gemsRepo gems.GemsRepository,
	authorizer *service.Authorizer,
	txManager transaction.TransactionManager,
	arith *tokenmath.Arithmetic,
	categories []gems.Category,
	logger *otelinfra.Logger,
	metrics *otelinfra.Metrics,
) *GemsApplicationService {
	return &GemsApplicationService{
		gemsRepo:   gemsRepo,
		authorizer: authorizer,
		txManager:  txManager,
		arith:      arith,
		categories: categories,
		logger:     logger,
		metrics:    metrics,
		tracer:     otel.Tracer("gems-service"),
		now:        time.Now,
	}
}

// GenerateGemsFromActions 未回収の行動からジェムを生成
//
// カテゴリごとに別のトランザクションで処理し、失敗したカテゴリはログに残して読み飛ばす。
// すべてのカテゴリが失敗した場合のみエラーを返す。
func (s *GemsApplicationService) GenerateGemsFromActions(ctx context.Context, principal user.Principal) (*GenerateResult, error) {
	ctx, span := s.tracer.Start(ctx, "GemsApplicationService.GenerateGemsFromActions")
	defer span.End()

	span.SetAttributes(attribute.String("principal", principal.UserID))

	if err := s.authorizer.AuthorizeAdmin(ctx, principal); err != nil {
		return nil, s.fail(ctx, span, "Gems generation caller rejected", err)
	}

	result := &GenerateResult{Status: StatusNothingToDo}
	var failures []error
	for _, category := range s.categories {
		cr, err := s.generateCategory(ctx, category)
		if err != nil {
			s.logger.Error(ctx, "Failed to generate gems", err, map[string]interface{}{
				"category": category.Name,
			})
			s.metrics.RecordError(ctx, "gems_generation")
			cr.Error = err.Error()
			failures = append(failures, fmt.Errorf("%s: %w", category.Name, err))
		} else if cr.Inserted > 0 {
			s.metrics.RecordGemsGenerated(ctx, category.Name, cr.Inserted)
		}
		result.Inserted += cr.Inserted
		result.Categories = append(result.Categories, cr)
	}

	if len(s.categories) > 0 && len(failures) == len(s.categories) {
		return nil, s.fail(ctx, span, "Gems generation failed for every category",
			mint.NewError(mint.CodeGenerationFailed, errors.Join(failures...)))
	}

	if result.Inserted > 0 {
		result.Status = StatusGenerated
	}

	span.SetAttributes(
		attribute.String("status", result.Status),
		attribute.Int64("inserted", result.Inserted),
		attribute.Int("failed_categories", len(failures)),
	)
	span.SetStatus(otelcodes.Ok, result.Status)

	s.logger.Info(ctx, "Gems generated", map[string]interface{}{
		"status":            result.Status,
		"inserted":          result.Inserted,
		"failed_categories": len(failures),
	})

	return result, nil
}

// generateCategory 1カテゴリ分のジェムを1トランザクションで生成
func (s *GemsApplicationService) generateCategory(ctx context.Context, category gems.Category) (*CategoryResult, error) {
	cr := &CategoryResult{Category: category.Name}

	err := s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		interactions, err := s.gemsRepo.FindUncollectedInteractions(ctx, category)
		if err != nil {
			return err
		}
		if len(interactions) == 0 {
			return nil
		}

		records := make([]*gems.GemRecord, 0, len(interactions))
		ids := make([]string, 0, len(interactions))
		for _, i := range interactions {
			g, err := category.ToGem(i)
			if err != nil {
				return fmt.Errorf("interaction %s: %w", i.InteractionID, err)
			}
			records = append(records, g)
			ids = append(ids, i.InteractionID)
		}

		inserted, err := s.gemsRepo.InsertGems(ctx, records)
		if err != nil {
			return err
		}
		if err := s.gemsRepo.MarkCollected(ctx, category, ids); err != nil {
			return err
		}

		cr.Interactions = len(interactions)
		cr.Inserted = inserted
		return nil
	})
	if err != nil {
		// ロールバックされたので件数は0
		cr.Interactions, cr.Inserted = 0, 0
		return cr, err
	}
	return cr, nil
}

// GemsStats 期間ごとの未回収ジェム件数と合計を取得
func (s *GemsApplicationService) GemsStats(ctx context.Context, principal user.Principal) (*GemsStatsResponse, error) {
	ctx, span := s.tracer.Start(ctx, "GemsApplicationService.GemsStats")
	defer span.End()

	if err := s.authorizer.AuthorizeAdmin(ctx, principal); err != nil {
		return nil, s.fail(ctx, span, "Gems stats caller rejected", err)
	}

	now := s.now().UTC()
	resp := &GemsStatsResponse{Windows: make([]*WindowStat, 0, len(period.StatsCodes))}
	for _, code := range period.StatsCodes {
		window, err := code.Resolve(now)
		if err != nil {
			return nil, s.fail(ctx, span, "Failed to resolve period", err)
		}
		stat, err := s.gemsRepo.CountUncollected(ctx, window)
		if err != nil {
			return nil, s.fail(ctx, span, "Failed to count uncollected gems", err)
		}
		resp.Windows = append(resp.Windows, &WindowStat{
			PeriodCode: code.String(),
			PeriodKey:  window.Key(),
			Count:      stat.Count,
			TotalGems:  stat.TotalGems,
		})
	}

	span.SetStatus(otelcodes.Ok, "gems stats collected")
	return resp, nil
}

// AllGemsForPeriod 期間内の未回収ジェムをユーザー別に集計
func (s *GemsApplicationService) AllGemsForPeriod(ctx context.Context, principal user.Principal, periodCode string) (*PeriodGemsResponse, error) {
	ctx, span := s.tracer.Start(ctx, "GemsApplicationService.AllGemsForPeriod")
	defer span.End()

	span.SetAttributes(attribute.String("period_code", periodCode))

	if err := s.authorizer.AuthorizeAdmin(ctx, principal); err != nil {
		return nil, s.fail(ctx, span, "Period gems caller rejected", err)
	}

	code, err := period.NewCode(periodCode)
	if err != nil || !code.In(period.ReportCodes) {
		return nil, s.fail(ctx, span, "Invalid report period", mint.NewError(mint.CodeInvalidPeriod, mint.ErrInvalidPeriod))
	}
	window, err := code.Resolve(s.now().UTC())
	if err != nil {
		return nil, s.fail(ctx, span, "Invalid report period", mint.NewError(mint.CodeInvalidPeriod, mint.ErrInvalidPeriod))
	}

	records, err := s.gemsRepo.FetchUncollectedForPeriod(ctx, window)
	if err != nil {
		return nil, s.fail(ctx, span, "Failed to fetch uncollected gems", err)
	}
	uncollected, err := gems.Aggregate(records, s.arith)
	if err != nil {
		return nil, s.fail(ctx, span, "Failed to aggregate gems", err)
	}

	resp := &PeriodGemsResponse{
		PeriodCode:   code.String(),
		PeriodKey:    window.Key(),
		OverallTotal: uncollected.OverallTotal,
		Users:        make([]*UserGems, 0, len(uncollected.Rows)),
	}
	for _, row := range uncollected.Rows {
		resp.Users = append(resp.Users, &UserGems{
			UserID:     row.UserID,
			TotalGems:  row.TotalGems,
			Percentage: row.Percentage,
			GemCount:   len(row.Gems),
		})
	}

	span.SetAttributes(attribute.Int("users", len(resp.Users)))
	span.SetStatus(otelcodes.Ok, "period gems aggregated")
	return resp, nil
}

func (s *GemsApplicationService) fail(ctx context.Context, span trace.Span, message string, err error) error {
	span.RecordError(err)
	span.SetStatus(otelcodes.Error, err.Error())

	code := mint.CodeOf(err)
	switch code {
	case mint.CodeUnauthorized, mint.CodeForbidden, mint.CodeInvalidPeriod:
		s.logger.Warn(ctx, message, map[string]interface{}{"code": code.String()})
	default:
		s.logger.Error(ctx, message, err, map[string]interface{}{"code": code.String()})
	}
	s.metrics.RecordError(ctx, "gems")
	return err
}
