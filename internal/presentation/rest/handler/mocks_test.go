package handler

import (
	"context"

	gemsapp "mint-server/internal/application/gems"
	mintapp "mint-server/internal/application/mint"
	"mint-server/internal/domain/user"

	"github.com/stretchr/testify/mock"
)

// MockMintService モックミントサービス
type MockMintService struct {
	mock.Mock
}

func (m *MockMintService) DistributeTokensFromGems(ctx context.Context, principal user.Principal, periodCode string) (*mintapp.MintSummary, error) {
	args := m.Called(ctx, principal, periodCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mintapp.MintSummary), args.Error(1)
}

func (m *MockMintService) GetMintAccount(ctx context.Context, principal user.Principal) (*mintapp.MintAccountResponse, error) {
	args := m.Called(ctx, principal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mintapp.MintAccountResponse), args.Error(1)
}

func (m *MockMintService) MintHistory(ctx context.Context, principal user.Principal, req *mintapp.MintHistoryRequest) (*mintapp.MintHistoryResponse, error) {
	args := m.Called(ctx, principal, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mintapp.MintHistoryResponse), args.Error(1)
}

// MockGemsService モックジェムサービス
type MockGemsService struct {
	mock.Mock
}

func (m *MockGemsService) GenerateGemsFromActions(ctx context.Context, principal user.Principal) (*gemsapp.GenerateResult, error) {
	args := m.Called(ctx, principal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gemsapp.GenerateResult), args.Error(1)
}

func (m *MockGemsService) GemsStats(ctx context.Context, principal user.Principal) (*gemsapp.GemsStatsResponse, error) {
	args := m.Called(ctx, principal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gemsapp.GemsStatsResponse), args.Error(1)
}

func (m *MockGemsService) AllGemsForPeriod(ctx context.Context, principal user.Principal, periodCode string) (*gemsapp.PeriodGemsResponse, error) {
	args := m.Called(ctx, principal, periodCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gemsapp.PeriodGemsResponse), args.Error(1)
}
