package layout

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidWidth     = errors.New("layout: 行宽必须为正整数")
	ErrInvalidExponent  = errors.New("layout: badness 指数不能为负")
	ErrInvalidPenalty   = errors.New("layout: 断词惩罚不能为负")
	ErrInvalidMarker    = errors.New("layout: 连接符不能包含空白")
	ErrUnknownAlgorithm = errors.New("layout: 未知的断行算法")
	ErrInfeasible       = errors.New("layout: 不存在可行的断行方案")
)

// InfeasibleError names a token that cannot be placed within the line width,
// even alone and even hyphenated.
type InfeasibleError struct {
	Index int
	Token Token
	Width int
	Limit int
}

func (e *InfeasibleError) Error() string {
	return fmt.Sprintf("layout: 第 %d 个词 %q 宽度 %d 超过行宽 %d，不存在可行的断行方案", e.Index, e.Token, e.Width, e.Limit)
}

func (e *InfeasibleError) Unwrap() error { return ErrInfeasible }

func newInfeasibleError(tokens Tokens, limit int) error {
	for i, tok := range tokens {
		if w := tok.Width(); w > limit {
			return &InfeasibleError{Index: i, Token: tok, Width: w, Limit: limit}
		}
	}
	return ErrInfeasible
}
