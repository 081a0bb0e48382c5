package dto

// PlaybackResult 播放凭证解析结果
// Allowed 为 false 时 Credential 必为 nil
type PlaybackResult struct {
	Allowed    bool                `json:"allowed"`
	Reason     string              `json:"reason"`
	Credential *PlaybackCredential `json:"credential,omitempty"`
}

// PlaybackCredential 签名播放凭证
// Token 为空表示服务未配置签名密钥（仅限开发环境）
type PlaybackCredential struct {
	AssetRef  string `json:"asset_ref"`
	Token     string `json:"token,omitempty"`
	SignedRef string `json:"signed_ref"`
	ExpiresAt string `json:"expires_at"`
}
