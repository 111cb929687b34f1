package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	mintapp "mint-server/internal/application/mint"
	"mint-server/internal/domain/user"
	restmiddleware "mint-server/internal/presentation/rest/middleware"

	"github.com/labstack/echo/v4"
)

// MintService ハンドラーが利用するミント操作
type MintService interface {
	DistributeTokensFromGems(ctx context.Context, principal user.Principal, periodCode string) (*mintapp.MintSummary, error)
	GetMintAccount(ctx context.Context, principal user.Principal) (*mintapp.MintAccountResponse, error)
	MintHistory(ctx context.Context, principal user.Principal, req *mintapp.MintHistoryRequest) (*mintapp.MintHistoryResponse, error)
}

// MintHandler ミント関連ハンドラー
type MintHandler struct {
	mintService MintService
}

// NewMintHandler 新しいMintHandlerを作成
func NewMintHandler(mintService MintService) *MintHandler {
	return &MintHandler{
		mintService: mintService,
	}
}

// Mint 期間のジェムをトークンに換算して分配する
//
// POST /api/v1/admin/mint/:period
func (h *MintHandler) Mint(c echo.Context) error {
	summary, err := h.mintService.DistributeTokensFromGems(
		c.Request().Context(),
		restmiddleware.PrincipalFrom(c),
		c.Param("period"),
	)
	if err != nil {
		return err
	}

	status := http.StatusCreated
	if summary.Status == mintapp.StatusNothingToMint {
		status = http.StatusOK
	}
	return c.JSON(status, toMintSummaryResponse(summary))
}

// GetMintAccount ミントアカウントを取得する
//
// GET /api/v1/admin/mint/account
func (h *MintHandler) GetMintAccount(c echo.Context) error {
	resp, err := h.mintService.GetMintAccount(c.Request().Context(), restmiddleware.PrincipalFrom(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, MintAccountResponse{
		AccountID:      resp.AccountID,
		InitialBalance: resp.InitialBalance.String(),
		CurrentBalance: resp.CurrentBalance.String(),
		Distributed:    resp.Distributed.String(),
		UpdatedAt:      resp.UpdatedAt.UTC().Format(time.RFC3339),
	})
}

// MintHistory ミント履歴を取得する
//
// GET /api/v1/admin/mint/history?limit=20&offset=0
func (h *MintHandler) MintHistory(c echo.Context) error {
	limit, err := queryInt(c, "limit")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	offset, err := queryInt(c, "offset")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid offset")
	}

	resp, err := h.mintService.MintHistory(c.Request().Context(), restmiddleware.PrincipalFrom(c), &mintapp.MintHistoryRequest{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return err
	}

	periods := make([]MintPeriodResponse, 0, len(resp.Periods))
	for _, p := range resp.Periods {
		periods = append(periods, MintPeriodResponse{
			MintID:           p.MintID,
			PeriodKey:        p.PeriodKey,
			PeriodCode:       p.PeriodCode,
			ConversionRate:   p.ConversionRate.String(),
			TotalGems:        p.TotalGems.String(),
			TotalDistributed: p.TotalDistributed.String(),
			CreatedAt:        p.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	return c.JSON(http.StatusOK, MintHistoryResponse{
		Periods: periods,
		Limit:   resp.Limit,
		Offset:  resp.Offset,
	})
}

func toMintSummaryResponse(s *mintapp.MintSummary) MintSummaryResponse {
	resp := MintSummaryResponse{
		MintID:           s.MintID,
		PeriodCode:       s.PeriodCode,
		PeriodKey:        s.PeriodKey,
		Status:           s.Status,
		Users:            make([]UserPayoutResponse, 0, len(s.Users)),
		TotalDistributed: s.TotalDistributed.String(),
	}
	if s.Conversion != nil {
		resp.Conversion = &ConversionResponse{
			TotalGems:      s.Conversion.TotalGems.String(),
			GemsInToken:    s.Conversion.GemsInToken.String(),
			ConfirmedTotal: s.Conversion.ConfirmedTotal.String(),
		}
	}
	for _, u := range s.Users {
		payout := UserPayoutResponse{
			UserID:        u.UserID,
			TotalGems:     u.TotalGems.String(),
			Percentage:    u.Percentage.String(),
			Tokens:        u.Tokens.String(),
			OperationID:   u.OperationID,
			TransactionID: u.TransactionID,
			Attributions:  make([]AttributionResponse, 0, len(u.Attributions)),
		}
		for _, a := range u.Attributions {
			payout.Attributions = append(payout.Attributions, AttributionResponse{
				GemID:       a.GemID,
				Gems:        a.Gems.String(),
				TokenAmount: a.TokenAmount.String(),
			})
		}
		resp.Users = append(resp.Users, payout)
	}
	return resp
}

// queryInt クエリパラメータを整数として取得（未指定は0）
func queryInt(c echo.Context, name string) (int, error) {
	v := c.QueryParam(name)
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}
