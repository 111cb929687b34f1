package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	gemsapp "mint-server/internal/application/gems"
	"mint-server/internal/domain/mint"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestGemsHandler_Generate(t *testing.T) {
	tests := []struct {
		name       string
		setupMock  func(*MockGemsService)
		wantStatus int
		wantBody   *GenerateGemsResponse
	}{
		{
			name: "正常系: 一部カテゴリ失敗でも成功",
			setupMock: func(m *MockGemsService) {
				m.On("GenerateGemsFromActions", mock.Anything, adminPrincipal).Return(&gemsapp.GenerateResult{
					Status:   gemsapp.StatusGenerated,
					Inserted: 3,
					Categories: []*gemsapp.CategoryResult{
						{Category: "views", Interactions: 3, Inserted: 3},
						{Category: "likes", Error: "table missing"},
					},
				}, nil)
			},
			wantStatus: http.StatusOK,
			wantBody: &GenerateGemsResponse{
				Status:   "generated",
				Inserted: 3,
				Categories: []CategoryResultResponse{
					{Category: "views", Interactions: 3, Inserted: 3},
					{Category: "likes", Error: "table missing"},
				},
			},
		},
		{
			name: "異常系: 全カテゴリ失敗",
			setupMock: func(m *MockGemsService) {
				m.On("GenerateGemsFromActions", mock.Anything, adminPrincipal).
					Return(nil, mint.NewError(mint.CodeGenerationFailed, errors.New("db down")))
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEcho(t)
			svc := new(MockGemsService)
			tt.setupMock(svc)

			h := NewGemsHandler(svc)
			e.POST("/api/v1/admin/gems/generate", h.Generate)

			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/admin/gems/generate", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != nil {
				var resp GenerateGemsResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.Equal(t, *tt.wantBody, resp)
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestGemsHandler_Stats(t *testing.T) {
	e := newTestEcho(t)
	svc := new(MockGemsService)
	svc.On("GemsStats", mock.Anything, adminPrincipal).Return(&gemsapp.GemsStatsResponse{
		Windows: []*gemsapp.WindowStat{
			{PeriodCode: "D0", PeriodKey: "2026-10-16", Count: 2, TotalGems: decimal.RequireFromString("5.25")},
			{PeriodCode: "Y0", PeriodKey: "2026", Count: 40, TotalGems: decimal.NewFromInt(120)},
		},
	}, nil)

	h := NewGemsHandler(svc)
	e.GET("/api/v1/admin/gems/stats", h.Stats)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/admin/gems/stats", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp GemsStatsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Windows, 2)
	assert.Equal(t, "5.25", resp.Windows[0].TotalGems)
	assert.Equal(t, int64(40), resp.Windows[1].Count)
}

func TestGemsHandler_ForPeriod(t *testing.T) {
	tests := []struct {
		name       string
		period     string
		setupMock  func(*MockGemsService)
		wantStatus int
	}{
		{
			name:   "正常系: 期間集計",
			period: "W0",
			setupMock: func(m *MockGemsService) {
				m.On("AllGemsForPeriod", mock.Anything, adminPrincipal, "W0").Return(&gemsapp.PeriodGemsResponse{
					PeriodCode:   "W0",
					PeriodKey:    "2026-W42",
					OverallTotal: decimal.NewFromInt(100),
					Users: []*gemsapp.UserGems{
						{UserID: "alice", TotalGems: decimal.NewFromInt(30), Percentage: decimal.NewFromInt(30), GemCount: 2},
						{UserID: "bob", TotalGems: decimal.NewFromInt(70), Percentage: decimal.NewFromInt(70), GemCount: 1},
					},
				}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "異常系: 集計対象外のコード",
			period: "D7",
			setupMock: func(m *MockGemsService) {
				m.On("AllGemsForPeriod", mock.Anything, adminPrincipal, "D7").
					Return(nil, mint.NewError(mint.CodeInvalidPeriod, mint.ErrInvalidPeriod))
			},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEcho(t)
			svc := new(MockGemsService)
			tt.setupMock(svc)

			h := NewGemsHandler(svc)
			e.GET("/api/v1/admin/gems/:period", h.ForPeriod)

			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/admin/gems/"+tt.period, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				var resp PeriodGemsResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.Equal(t, "2026-W42", resp.PeriodKey)
				require.Len(t, resp.Users, 2)
				assert.Equal(t, "30", resp.Users[0].Percentage)
			}
			svc.AssertExpectations(t)
		})
	}
}
