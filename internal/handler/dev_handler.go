package handler

import (
	"context"
	"net/http"
)

// StoreResetService はスタブストアのリセットを提供するサービス。
type StoreResetService interface {
	ResetStubStore(ctx context.Context) (bool, error)
}

// DevHandler は開発・テスト環境向けのHTTPハンドラー。
type DevHandler struct {
	service StoreResetService
}

// NewDevHandler はDevHandlerを生成する。
func NewDevHandler(service StoreResetService) *DevHandler {
	return &DevHandler{service: service}
}

type resetResponse struct {
	Reset bool `json:"reset"`
}

// Reset はスタブストアを初期データに戻す。
// POST /api/dev/reset
func (h *DevHandler) Reset(w http.ResponseWriter, r *http.Request) {
	reset, err := h.service.ResetStubStore(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resetResponse{Reset: reset})
}
