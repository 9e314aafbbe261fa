package handler

import "net/http"

// HealthStatus は/healthで公開する起動時の構成情報。
type HealthStatus struct {
	DeploymentMode string `json:"deploymentMode"`
	AuthStub       bool   `json:"authStub"`
	PostsStub      bool   `json:"postsStub"`
}

type healthResponse struct {
	Status string `json:"status"`
	HealthStatus
}

// NewHealthHandler はヘルスチェックハンドラーを返す。
// GET /health
func NewHealthHandler(status HealthStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, healthResponse{Status: "ok", HealthStatus: status})
	}
}
