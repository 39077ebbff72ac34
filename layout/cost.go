package layout

import (
	"bytes"
	"math"
	"strconv"
)

// Cost 表示断行的 badness。Infinite 表示该方案不可行。
type Cost int64

const (
	// Infinite marks a segment that cannot physically fit on a line.
	Infinite Cost = math.MaxInt64
	// MaxFinite is where finite arithmetic saturates.
	MaxFinite Cost = Infinite - 1
)

// Default cost parameters.
const (
	DefaultExponent      = 3
	DefaultHyphenPenalty = Cost(50)
)

// IsInfinite reports whether c is the infeasible sentinel.
func (c Cost) IsInfinite() bool { return c == Infinite }

// Add 返回 c+d；任一为 Infinite 时结果为 Infinite，有限值在 MaxFinite 处饱和。
func (c Cost) Add(d Cost) Cost {
	if c == Infinite || d == Infinite {
		return Infinite
	}
	if d > 0 && c > MaxFinite-d {
		return MaxFinite
	}
	return c + d
}

func (c Cost) String() string {
	if c == Infinite {
		return "inf"
	}
	return strconv.FormatInt(int64(c), 10)
}

// MarshalJSON encodes Infinite as the string "inf".
func (c Cost) MarshalJSON() ([]byte, error) {
	if c == Infinite {
		return []byte(`"inf"`), nil
	}
	return strconv.AppendInt(nil, int64(c), 10), nil
}

// UnmarshalJSON accepts both numbers and "inf".
func (c *Cost) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte(`"inf"`)) {
		*c = Infinite
		return nil
	}
	v, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return err
	}
	*c = Cost(v)
	return nil
}

// Power 计算 base^exp，结果在 MaxFinite 处饱和；约定 0^0 = 1。
func Power(base, exp int) Cost {
	if base < 0 || exp < 0 {
		return Infinite
	}
	result := Cost(1)
	b := Cost(base)
	for i := 0; i < exp; i++ {
		if b != 0 && result > MaxFinite/b {
			return MaxFinite
		}
		result *= b
	}
	return result
}

// CostModel 描述一行的 badness 计算方式：slack^Exponent，
// 以断词结尾的行再加上 HyphenPenalty。
type CostModel struct {
	Exponent      int
	HyphenPenalty Cost
}

// DefaultCostModel returns the cubic model with the default hyphen penalty.
func DefaultCostModel() CostModel {
	return CostModel{Exponent: DefaultExponent, HyphenPenalty: DefaultHyphenPenalty}
}

// Validate rejects negative exponents and penalties.
func (m CostModel) Validate() error {
	if m.Exponent < 0 {
		return ErrInvalidExponent
	}
	if m.HyphenPenalty < 0 {
		return ErrInvalidPenalty
	}
	return nil
}

// Badness returns the cost of placing seg on a single line of the given width.
// markerWidth is the visual width of the joining marker appended when seg
// ends with a split fragment.
func (m CostModel) Badness(tokens Tokens, seg Segment, width, markerWidth int) Cost {
	slack := width - seg.Width(tokens, markerWidth)
	return m.lineCost(slack, seg.Split == 0 && seg.End == len(tokens), seg.Split > 0)
}

// lineCost: final lines are left-justified, so their slack is free.
func (m CostModel) lineCost(slack int, final, hyphenated bool) Cost {
	if slack < 0 {
		return Infinite
	}
	if final {
		return 0
	}
	c := Power(slack, m.Exponent)
	if hyphenated {
		c = c.Add(m.HyphenPenalty)
	}
	return c
}
