package config

// StubGate はスタブ実装へルーティングするかどうかの判定結果を保持する。
// 起動時に1回だけ解決し、リポジトリやセッションプロバイダへ値として渡す。
// 認証用と投稿用は独立したインスタンスで、状態を共有しない。
type StubGate struct {
	name       string
	enabled    bool
	production bool
}

// ShouldUseStub はスタブを使うべきかを判定する純粋関数。
// オプトインフラグが厳密に "true" で、かつデプロイモードが production でない場合のみ true を返す。
// production では オプトインの値に関わらず常に false となり、上書き手段はない。
func ShouldUseStub(optIn, deploymentMode string) bool {
	return optIn == "true" && deploymentMode != string(DeploymentProduction)
}

// NewStubGate はオプトインフラグとデプロイモードからStubGateを生成する。
func NewStubGate(name, optIn, deploymentMode string) StubGate {
	return StubGate{
		name:       name,
		enabled:    ShouldUseStub(optIn, deploymentMode),
		production: deploymentMode == string(DeploymentProduction),
	}
}

// Name はゲートの識別名（ログ用）を返す。
func (g StubGate) Name() string {
	return g.name
}

// Enabled はスタブへルーティングする場合にtrueを返す。
func (g StubGate) Enabled() bool {
	return g.enabled
}

// Production は本番デプロイモードで解決されたゲートかどうかを返す。
func (g StubGate) Production() bool {
	return g.production
}
