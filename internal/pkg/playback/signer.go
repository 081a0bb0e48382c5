// Package playback 签发带过期时间的播放凭证
// 签名算法与下游视频边缘节点约定一致：HMAC-SHA256(base64解码的私钥, "assetRef?exp=<unix>")，
// 签名本身 URL-safe base64 编码（无填充）。边缘节点持对应密钥独立验签后才回源流媒体，
// 本包只负责签发，不负责拦截
package playback

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
)

var ErrEmptyAssetRef = errors.New("播放资源引用为空")

// SigningKey 签名密钥对标识
type SigningKey struct {
	ID         string
	PrivateKey string // base64 编码
}

// KeyProvider 提供当前签名密钥
// 返回 (nil, nil) 表示显式未配置签名（仅限开发环境）；
// 返回 error 表示密钥获取失败，调用方必须报错而不是退回无签名模式
type KeyProvider interface {
	Current() (*SigningKey, error)
}

// StaticKeyProvider 从配置加载一次、进程内只读的密钥提供者
type StaticKeyProvider struct {
	key *SigningKey
}

// NewStaticKeyProvider 创建静态密钥提供者，keyID 和 privateKey 均为空表示未配置
func NewStaticKeyProvider(keyID, privateKey string) *StaticKeyProvider {
	if keyID == "" && privateKey == "" {
		return &StaticKeyProvider{}
	}
	return &StaticKeyProvider{key: &SigningKey{ID: keyID, PrivateKey: privateKey}}
}

func (p *StaticKeyProvider) Current() (*SigningKey, error) {
	return p.key, nil
}

// Credential 播放凭证，每次放行判定后新签发，从不落库
// Token 可以记录是否为 nil，但绝不能明文写入日志
type Credential struct {
	AssetRef  string
	Token     *string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Signer 播放凭证签发器
type Signer struct {
	keys         KeyProvider
	ttl          time.Duration
	insecureOnce sync.Once
}

func NewSigner(keys KeyProvider, ttl time.Duration) *Signer {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Signer{keys: keys, ttl: ttl}
}

// Issue 签发播放凭证，只能在准入判定放行后调用
// 未配置密钥时返回无 token 的凭证（过期时间设为远未来），
// 该状态在进程生命周期内只告警一次；密钥配置了但解码失败则直接报错
func (s *Signer) Issue(assetRef string, now time.Time) (*Credential, error) {
	if assetRef == "" {
		return nil, ErrEmptyAssetRef
	}

	key, err := s.keys.Current()
	if err != nil {
		return nil, fmt.Errorf("获取签名密钥失败: %w", err)
	}

	if key == nil {
		s.insecureOnce.Do(func() {
			log.Printf("WARNING: 播放凭证签名密钥未配置，所有视频地址实际公开可访问，严禁在生产环境使用此模式")
		})
		return &Credential{
			AssetRef:  assetRef,
			Token:     nil,
			IssuedAt:  now,
			ExpiresAt: now.AddDate(100, 0, 0),
		}, nil
	}

	raw, err := base64.StdEncoding.DecodeString(key.PrivateKey)
	if err != nil {
		// 配置损坏不等于未配置，绝不退回无签名模式
		return nil, fmt.Errorf("签名私钥 base64 解码失败: %w", err)
	}

	expiresAt := now.Add(s.ttl)
	base := fmt.Sprintf("%s?exp=%d", assetRef, expiresAt.Unix())

	mac := hmac.New(sha256.New, raw)
	mac.Write([]byte(base))
	token := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))

	return &Credential{
		AssetRef:  assetRef,
		Token:     &token,
		IssuedAt:  now,
		ExpiresAt: expiresAt,
	}, nil
}

// SignedRef 拼接可直接交给播放器的带签名引用: assetRef?token=<sig>&exp=<unix>
// 未签名凭证原样返回 assetRef
func (c *Credential) SignedRef() string {
	if c.Token == nil {
		return c.AssetRef
	}
	return fmt.Sprintf("%s?token=%s&exp=%d", c.AssetRef, *c.Token, c.ExpiresAt.Unix())
}
