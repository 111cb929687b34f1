package mint

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"mint-server/internal/domain/gems"
	"mint-server/internal/domain/ledger"
	"mint-server/internal/domain/mint"
	"mint-server/internal/domain/period"
	"mint-server/internal/domain/service"
	"mint-server/internal/domain/tokenmath"
	"mint-server/internal/domain/transaction"
	"mint-server/internal/domain/user"
	otelinfra "mint-server/internal/infrastructure/observability/otel"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// Settings ミントの実行設定
type Settings struct {
	Budget        decimal.Decimal // 1期間あたりに分配するトークン量
	PeriodCodes   []period.Code   // 受け付ける期間コード
	MessagePrefix string
}

// MintApplicationService ミントアプリケーションサービス
type MintApplicationService struct {
	gemsRepo        gems.GemsRepository
	mintRepo        mint.MintPeriodRepository
	mintAccountRepo mint.MintAccountRepository
	userRepo        user.UserRepository
	tokenLedger     *service.TokenLedger
	authorizer      *service.Authorizer
	txManager       transaction.TransactionManager
	arith           *tokenmath.Arithmetic
	settings        Settings
	strategy        ledger.Strategy
	logger          *otelinfra.Logger
	metrics         *otelinfra.Metrics
	tracer          trace.Tracer
	now             func() time.Time
	newID           func() string
}

// NewMintApplicationService 新しいMintApplicationServiceを作成
func NewMintApplicationService(
	gemsRepo gems.GemsRepository,
	mintRepo mint.MintPeriodRepository,
	mintAccountRepo mint.MintAccountRepository,
	userRepo user.UserRepository,
	tokenLedger *service.TokenLedger,
	authorizer *service.Authorizer,
	txManager transaction.TransactionManager,
	arith *tokenmath.Arithmetic,
	settings Settings,
	logger *otelinfra.Logger,
	metrics *otelinfra.Metrics,
) *MintApplicationService {
	return &MintApplicationService{
		gemsRepo:        gemsRepo,
		mintRepo:        mintRepo,
		mintAccountRepo: mintAccountRepo,
		userRepo:        userRepo,
		tokenLedger:     tokenLedger,
		authorizer:      authorizer,
		txManager:       txManager,
		arith:           arith,
		settings:        settings,
		strategy:        ledger.NewUUIDStrategy(),
		logger:          logger,
		metrics:         metrics,
		tracer:          otel.Tracer("mint-service"),
		now:             time.Now,
		newID:           uuid.NewString,
	}
}

// DistributeTokensFromGems 期間内の未回収ジェムに比例して予算分のトークンを分配
//
// 全処理は1つのトランザクションで行われ、途中で失敗した場合は何も残らない。
// 分配対象のジェムがなければ何も記録せずに nothing_to_mint を返す。
func (s *MintApplicationService) DistributeTokensFromGems(ctx context.Context, principal user.Principal, periodCode string) (*MintSummary, error) {
	ctx, span := s.tracer.Start(ctx, "MintApplicationService.DistributeTokensFromGems")
	defer span.End()

	span.SetAttributes(
		attribute.String("principal", principal.UserID),
		attribute.String("period_code", periodCode),
	)

	s.logger.Info(ctx, "Distributing tokens from gems", map[string]interface{}{
		"principal":   principal.UserID,
		"period_code": periodCode,
	})

	if err := s.authorizer.AuthorizeAdmin(ctx, principal); err != nil {
		return nil, s.failMint(ctx, span, "Mint caller rejected", err)
	}

	code, err := period.NewCode(periodCode)
	if err != nil || !code.IsDay() || !code.In(s.settings.PeriodCodes) {
		return nil, s.failMint(ctx, span, "Invalid mint period", mint.NewError(mint.CodeInvalidPeriod, mint.ErrInvalidPeriod))
	}

	window, err := code.Resolve(s.now().UTC())
	if err != nil {
		return nil, s.failMint(ctx, span, "Invalid mint period", mint.NewError(mint.CodeInvalidPeriod, mint.ErrInvalidPeriod))
	}
	span.SetAttributes(attribute.String("period_key", window.Key()))

	// 同じ期間のミントは一度だけ
	if _, err := s.mintRepo.FindByPeriodKey(ctx, window.Key()); err == nil {
		return nil, s.failMint(ctx, span, "Period already minted", mint.NewError(mint.CodeAlreadyMinted, mint.ErrAlreadyMinted))
	} else if !errors.Is(err, mint.ErrMintNotFound) {
		return nil, s.failMint(ctx, span, "Failed to check mint period", mint.NewError(mint.CodeMintFailed, err))
	}

	var summary *MintSummary
	err = s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		var txErr error
		summary, txErr = s.distribute(ctx, window)
		return txErr
	})
	if err != nil {
		errCode := mint.CodeMintFailed
		if errors.Is(err, mint.ErrAlreadyMinted) {
			errCode = mint.CodeAlreadyMinted
		}
		return nil, s.failMint(ctx, span, "Token minting failed", mint.NewError(errCode, err))
	}

	distributed, _ := summary.TotalDistributed.Float64()
	s.metrics.RecordMint(ctx, summary.Status, distributed)

	span.SetAttributes(
		attribute.String("status", summary.Status),
		attribute.Int("recipients", len(summary.Users)),
		attribute.String("total_distributed", summary.TotalDistributed.String()),
	)
	span.SetStatus(otelcodes.Ok, summary.Status)

	s.logger.Info(ctx, "Tokens distributed", map[string]interface{}{
		"mint_id":           summary.MintID,
		"period_key":        summary.PeriodKey,
		"status":            summary.Status,
		"recipients":        len(summary.Users),
		"total_distributed": summary.TotalDistributed.String(),
	})

	return summary, nil
}

// distribute トランザクション内でミントを実行
func (s *MintApplicationService) distribute(ctx context.Context, window period.Window) (*MintSummary, error) {
	records, err := s.gemsRepo.FetchUncollectedForPeriod(ctx, window)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch uncollected gems: %w", err)
	}

	uncollected, err := gems.Aggregate(records, s.arith)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", mint.ErrArithmetic, err)
	}

	summary := &MintSummary{
		PeriodCode:       window.Code.String(),
		PeriodKey:        window.Key(),
		Status:           StatusNothingToMint,
		TotalDistributed: decimal.Zero,
	}
	if uncollected.IsEmpty() {
		return summary, nil
	}

	conversion, err := mint.ComputeGemsInToken(s.arith, s.settings.Budget, uncollected.OverallTotal)
	if err != nil {
		return nil, err
	}

	// 送金前に全員分の金額を確定させ、予算を超えないことを確認する
	amounts := make([]decimal.Decimal, len(uncollected.Rows))
	for i, row := range uncollected.Rows {
		amount := conversion.TokensFor(s.arith, row.TotalGems)
		if !amount.IsPositive() {
			return nil, fmt.Errorf("%w: user %s would receive %s", mint.ErrInvalidAmount, row.UserID, amount)
		}
		amounts[i] = amount
	}
	total := s.arith.Sum(amounts...)
	if total.GreaterThan(s.settings.Budget) {
		return nil, fmt.Errorf("%w: distribution %s exceeds budget %s", mint.ErrArithmetic, total, s.settings.Budget)
	}

	mintAccount, err := s.mintAccountRepo.FindForUpdate(ctx)
	if err != nil {
		return nil, err
	}

	mintID := s.newID()
	createdAt := s.now().UTC()
	message := fmt.Sprintf("%s %s", s.settings.MessagePrefix, window.Key())

	var attributions []*mint.MintAttribution
	for i, row := range uncollected.Rows {
		if err := s.ensureRecipient(ctx, row.UserID); err != nil {
			return nil, err
		}

		transfer, err := s.tokenLedger.Transfer(ctx, mintAccount.AccountID(), row.UserID, amounts[i], s.strategy, message)
		if err != nil {
			return nil, fmt.Errorf("%w: recipient %s: %w", mint.ErrTransferFailed, row.UserID, err)
		}
		s.metrics.RecordTransfer(ctx, transfer.Category().String())

		payout := &UserPayout{
			UserID:        row.UserID,
			TotalGems:     row.TotalGems,
			Percentage:    row.Percentage,
			Tokens:        amounts[i],
			OperationID:   transfer.OperationID(),
			TransactionID: transfer.TransactionID(),
		}
		for _, g := range row.Gems {
			tokenAmount := conversion.TokensFor(s.arith, g.Amount())
			attributions = append(attributions, &mint.MintAttribution{
				MintID:        mintID,
				GemID:         g.GemID(),
				UserID:        row.UserID,
				TransactionID: transfer.TransactionID(),
				OperationID:   transfer.OperationID(),
				TokenAmount:   tokenAmount,
				CreatedAt:     createdAt,
			})
			payout.Attributions = append(payout.Attributions, &Attribution{
				GemID:       g.GemID(),
				Gems:        g.Amount(),
				TokenAmount: tokenAmount,
			})
		}
		summary.Users = append(summary.Users, payout)
	}

	mintPeriod, err := mint.NewMintPeriod(mintID, window.Key(), window.Code, conversion.GemsInToken, conversion.TotalGems, total, createdAt)
	if err != nil {
		return nil, err
	}
	if err := s.mintRepo.Insert(ctx, mintPeriod); err != nil {
		return nil, err
	}
	if err := s.mintRepo.InsertAttributions(ctx, attributions); err != nil {
		return nil, err
	}

	summary.MintID = mintID
	summary.Status = StatusMinted
	summary.Conversion = &Conversion{
		TotalGems:      conversion.TotalGems,
		GemsInToken:    conversion.GemsInToken,
		ConfirmedTotal: conversion.ConfirmedTotal,
	}
	summary.TotalDistributed = total
	return summary, nil
}

// ensureRecipient 受け取りユーザーが存在し有効であることを確認
func (s *MintApplicationService) ensureRecipient(ctx context.Context, userID string) error {
	u, err := s.userRepo.FindByID(ctx, userID)
	if errors.Is(err, user.ErrUserNotFound) {
		return fmt.Errorf("%w: %s", mint.ErrRecipientNotFound, userID)
	}
	if err != nil {
		return fmt.Errorf("failed to find recipient %s: %w", userID, err)
	}
	if !u.IsActive() {
		return fmt.Errorf("%w: %s is %s", mint.ErrRecipientNotFound, userID, u.Status())
	}
	return nil
}

// GetMintAccount ミントアカウントを取得
func (s *MintApplicationService) GetMintAccount(ctx context.Context, principal user.Principal) (*MintAccountResponse, error) {
	ctx, span := s.tracer.Start(ctx, "MintApplicationService.GetMintAccount")
	defer span.End()

	if err := s.authorizer.AuthorizeAdmin(ctx, principal); err != nil {
		return nil, s.fail(ctx, span, "Mint account caller rejected", err)
	}

	account, err := s.mintAccountRepo.Find(ctx)
	if err != nil {
		return nil, s.fail(ctx, span, "Failed to find mint account", mint.NewError(mint.CodeMintFailed, err))
	}

	span.SetStatus(otelcodes.Ok, "mint account found")
	return &MintAccountResponse{
		AccountID:      account.AccountID(),
		InitialBalance: account.InitialBalance(),
		CurrentBalance: account.CurrentBalance(),
		Distributed:    account.Distributed(),
		UpdatedAt:      account.UpdatedAt(),
	}, nil
}

// MintHistory 記録済みのミントを新しい順に取得
func (s *MintApplicationService) MintHistory(ctx context.Context, principal user.Principal, req *MintHistoryRequest) (*MintHistoryResponse, error) {
	ctx, span := s.tracer.Start(ctx, "MintApplicationService.MintHistory")
	defer span.End()

	if err := s.authorizer.AuthorizeAdmin(ctx, principal); err != nil {
		return nil, s.fail(ctx, span, "Mint history caller rejected", err)
	}

	limit, offset := req.Limit, req.Offset
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	if offset < 0 {
		offset = 0
	}
	span.SetAttributes(attribute.Int("limit", limit), attribute.Int("offset", offset))

	periods, err := s.mintRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, s.fail(ctx, span, "Failed to list mint periods", mint.NewError(mint.CodeMintFailed, err))
	}

	resp := &MintHistoryResponse{
		Periods: make([]*MintPeriodResponse, 0, len(periods)),
		Limit:   limit,
		Offset:  offset,
	}
	for _, p := range periods {
		resp.Periods = append(resp.Periods, &MintPeriodResponse{
			MintID:           p.MintID(),
			PeriodKey:        p.PeriodKey(),
			PeriodCode:       p.PeriodCode().String(),
			ConversionRate:   p.ConversionRate(),
			TotalGems:        p.TotalGems(),
			TotalDistributed: p.TotalDistributed(),
			CreatedAt:        p.CreatedAt(),
		})
	}

	span.SetStatus(otelcodes.Ok, "mint history listed")
	return resp, nil
}

// fail エラーをスパン・ログ・メトリクスに記録して返す
func (s *MintApplicationService) fail(ctx context.Context, span trace.Span, message string, err error) error {
	span.RecordError(err)
	span.SetStatus(otelcodes.Error, err.Error())

	code := mint.CodeOf(err)
	fields := map[string]interface{}{"code": code.String()}
	if code == mint.CodeMintFailed {
		// 内部エラーの原因はログにのみ残す
		s.logger.Error(ctx, message, errors.Unwrap(err), fields)
	} else {
		s.logger.Warn(ctx, message, fields)
	}
	s.metrics.RecordError(ctx, code.String())
	return err
}

// failMint ミント失敗を記録して返す
func (s *MintApplicationService) failMint(ctx context.Context, span trace.Span, message string, err error) error {
	status := "failed"
	if code := mint.CodeOf(err); code != mint.CodeMintFailed {
		status = code.String()
	}
	s.metrics.RecordMint(ctx, status, 0)
	return s.fail(ctx, span, message, err)
}
