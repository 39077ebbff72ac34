package layout

// Options 配置一次断行。零值不可直接使用（Width 必须为正），
// 通常从 DefaultOptions 开始修改。
type Options struct {
	Width         int
	Exponent      int
	Algorithm     Algorithm
	Hyphenate     bool
	HyphenPenalty Cost
	Marker        string
	Hyphenator    Hyphenator // nil 时使用 FragmentHyphenator
	Debug         DebugOptions
}

// DebugOptions 控制调试相关输出。
type DebugOptions struct {
	Table bool // 在 Result 中保留 DP 表
}

// DefaultOptions returns options for the optimal breaker with cubic badness
// and hyphenation disabled.
func DefaultOptions(width int) Options {
	return Options{
		Width:         width,
		Exponent:      DefaultExponent,
		Algorithm:     AlgorithmOptimal,
		HyphenPenalty: DefaultHyphenPenalty,
		Marker:        DefaultMarker,
	}
}

// Validate 在断行开始前检查调用方输入。
func (o Options) Validate() error {
	if o.Width <= 0 {
		return ErrInvalidWidth
	}
	if _, err := ParseAlgorithm(string(o.Algorithm)); err != nil {
		return err
	}
	if err := o.CostModel().Validate(); err != nil {
		return err
	}
	if o.Hyphenate {
		return o.Hyphenation().validate()
	}
	return nil
}

// CostModel returns the cost model described by the options.
func (o Options) CostModel() CostModel {
	return CostModel{Exponent: o.Exponent, HyphenPenalty: o.HyphenPenalty}
}

// Hyphenation returns nil when hyphenation is disabled.
func (o Options) Hyphenation() *Hyphenation {
	if !o.Hyphenate {
		return nil
	}
	return &Hyphenation{Oracle: o.Hyphenator, Marker: o.Marker}
}

func (o Options) marker() string {
	if o.Marker == "" {
		return DefaultMarker
	}
	return o.Marker
}
