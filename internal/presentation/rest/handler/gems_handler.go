package handler

import (
	"context"
	"net/http"

	gemsapp "mint-server/internal/application/gems"
	"mint-server/internal/domain/user"
	restmiddleware "mint-server/internal/presentation/rest/middleware"

	"github.com/labstack/echo/v4"
)

// GemsService ハンドラーが利用するジェム操作
type GemsService interface {
	GenerateGemsFromActions(ctx context.Context, principal user.Principal) (*gemsapp.GenerateResult, error)
	GemsStats(ctx context.Context, principal user.Principal) (*gemsapp.GemsStatsResponse, error)
	AllGemsForPeriod(ctx context.Context, principal user.Principal, periodCode string) (*gemsapp.PeriodGemsResponse, error)
}

// GemsHandler ジェム関連ハンドラー
type GemsHandler struct {
	gemsService GemsService
}

// NewGemsHandler 新しいGemsHandlerを作成
func NewGemsHandler(gemsService GemsService) *GemsHandler {
	return &GemsHandler{
		gemsService: gemsService,
	}
}

// Generate 未回収のアクションからジェムを生成する
//
// POST /api/v1/admin/gems/generate
func (h *GemsHandler) Generate(c echo.Context) error {
	result, err := h.gemsService.GenerateGemsFromActions(c.Request().Context(), restmiddleware.PrincipalFrom(c))
	if err != nil {
		return err
	}

	categories := make([]CategoryResultResponse, 0, len(result.Categories))
	for _, cr := range result.Categories {
		categories = append(categories, CategoryResultResponse{
			Category:     cr.Category,
			Interactions: cr.Interactions,
			Inserted:     cr.Inserted,
			Error:        cr.Error,
		})
	}

	return c.JSON(http.StatusOK, GenerateGemsResponse{
		Status:     result.Status,
		Inserted:   result.Inserted,
		Categories: categories,
	})
}

// Stats 期間ごとの未回収ジェム統計を取得する
//
// GET /api/v1/admin/gems/stats
func (h *GemsHandler) Stats(c echo.Context) error {
	resp, err := h.gemsService.GemsStats(c.Request().Context(), restmiddleware.PrincipalFrom(c))
	if err != nil {
		return err
	}

	windows := make([]WindowStatResponse, 0, len(resp.Windows))
	for _, w := range resp.Windows {
		windows = append(windows, WindowStatResponse{
			PeriodCode: w.PeriodCode,
			PeriodKey:  w.PeriodKey,
			Count:      w.Count,
			TotalGems:  w.TotalGems.String(),
		})
	}

	return c.JSON(http.StatusOK, GemsStatsResponse{Windows: windows})
}

// ForPeriod 期間内のユーザー別ジェム集計を取得する
//
// GET /api/v1/admin/gems/:period
func (h *GemsHandler) ForPeriod(c echo.Context) error {
	resp, err := h.gemsService.AllGemsForPeriod(c.Request().Context(), restmiddleware.PrincipalFrom(c), c.Param("period"))
	if err != nil {
		return err
	}

	users := make([]UserGemsResponse, 0, len(resp.Users))
	for _, u := range resp.Users {
		users = append(users, UserGemsResponse{
			UserID:     u.UserID,
			TotalGems:  u.TotalGems.String(),
			Percentage: u.Percentage.String(),
			GemCount:   u.GemCount,
		})
	}

	return c.JSON(http.StatusOK, PeriodGemsResponse{
		PeriodCode:   resp.PeriodCode,
		PeriodKey:    resp.PeriodKey,
		OverallTotal: resp.OverallTotal.String(),
		Users:        users,
	})
}
