package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ByLCY/justify/layout"
)

// Cache stores finished breaking results by request key.
type Cache interface {
	Get(ctx context.Context, key string) (*layout.Result, bool, error)
	Set(ctx context.Context, key string, res *layout.Result) error
}

// Key 对规范化后的请求取 SHA-256：文本按空白重新连接，未开启断词时忽略断词参数，
// 因此只在空白上不同的请求共享同一个缓存项。
func Key(text string, opts layout.Options) string {
	algo, err := layout.ParseAlgorithm(string(opts.Algorithm))
	if err != nil {
		algo = opts.Algorithm
	}
	req := struct {
		Text      string           `json:"t"`
		Width     int              `json:"w"`
		Exponent  int              `json:"e"`
		Algorithm layout.Algorithm `json:"a"`
		Hyphenate bool             `json:"h,omitempty"`
		Penalty   layout.Cost      `json:"p,omitempty"`
		Marker    string           `json:"m,omitempty"`
		Oracle    string           `json:"o,omitempty"`
	}{
		Text:      strings.Join(strings.Fields(text), " "),
		Width:     opts.Width,
		Exponent:  opts.Exponent,
		Algorithm: algo,
	}
	if opts.Hyphenate && algo == layout.AlgorithmOptimal {
		req.Hyphenate = true
		req.Penalty = opts.HyphenPenalty
		req.Marker = opts.Marker
		if opts.Hyphenator != nil {
			req.Oracle = fmt.Sprintf("%T%+v", opts.Hyphenator, opts.Hyphenator)
		}
	}
	data, _ := json.Marshal(req)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// encode drops the debug table; cached results never carry it.
func encode(res *layout.Result) ([]byte, error) {
	if res == nil {
		return nil, fmt.Errorf("cache: 结果为空")
	}
	cp := *res
	cp.Table = nil
	data, err := json.Marshal(&cp)
	if err != nil {
		return nil, fmt.Errorf("cache: 编码结果失败: %w", err)
	}
	return data, nil
}

func decode(data []byte) (*layout.Result, error) {
	var res layout.Result
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("cache: 解码结果失败: %w", err)
	}
	return &res, nil
}
