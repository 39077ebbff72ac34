package layout

import (
	"fmt"
	"strconv"
	"strings"
)

// 页面几何（PDF 输出的字号、页边距、行距）使用带单位的长度。
// 断行本身只关心视觉单位，不使用这些类型。

// Unit is the unit a length was written in.
type Unit int

const (
	UnitNone Unit = iota
	UnitMM
	UnitCM
	UnitIN
	UnitPT
)

// Conversion constants between pt and mm.
const (
	PtToMm = 25.4 / 72
	MmToPt = 72 / 25.4
)

func (u Unit) String() string {
	switch u {
	case UnitMM:
		return "mm"
	case UnitCM:
		return "cm"
	case UnitIN:
		return "in"
	case UnitPT:
		return "pt"
	}
	return ""
}

var unitSuffixes = []struct {
	s string
	u Unit
}{{"mm", UnitMM}, {"cm", UnitCM}, {"in", UnitIN}, {"pt", UnitPT}}

// Length keeps a numeric value together with its unit.
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

func (l Length) IsZero() bool { return l.Value == 0 }

// ToMM converts to millimetres; unit-less values are taken as millimetres.
func (l Length) ToMM() float64 {
	switch l.Unit {
	case UnitCM:
		return l.Value * 10
	case UnitIN:
		return l.Value * 25.4
	case UnitPT:
		return l.Value * PtToMm
	}
	return l.Value
}

// ToPT converts to points.
func (l Length) ToPT() float64 {
	if l.Unit == UnitPT {
		return l.Value
	}
	return l.ToMM() * MmToPt
}

func (l Length) String() string {
	return strconv.FormatFloat(l.Value, 'g', -1, 64) + l.Unit.String()
}

// ParseLength 解析 "12pt"、"18mm"、"1in" 等长度，无单位时 Unit 为 UnitNone。
func ParseLength(value string) (Length, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return Length{}, fmt.Errorf("长度为空")
	}
	unit := UnitNone
	num := v
	for _, suf := range unitSuffixes {
		if strings.HasSuffix(v, suf.s) {
			unit = suf.u
			num = strings.TrimSpace(strings.TrimSuffix(v, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Length{}, fmt.Errorf("无法解析长度 %q: %w", value, err)
	}
	if f < 0 {
		return Length{}, fmt.Errorf("长度 %q 不能为负", value)
	}
	return Length{Value: f, Unit: unit}, nil
}

// LineHeight 是行距：倍数（如 1.4x）或绝对长度（如 16pt）。
type LineHeight struct {
	Factor float64 `json:"factor,omitempty"`
	Len    Length  `json:"len,omitempty"`
}

// ParseLineHeight accepts "1.4x", "1.4" or an absolute length.
func ParseLineHeight(value string) (LineHeight, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if f, err := strconv.ParseFloat(strings.TrimSuffix(v, "x"), 64); err == nil {
		if f <= 0 {
			return LineHeight{}, fmt.Errorf("行距 %q 必须为正", value)
		}
		return LineHeight{Factor: f}, nil
	}
	l, err := ParseLength(v)
	if err != nil {
		return LineHeight{}, err
	}
	return LineHeight{Len: l}, nil
}

// ResolvePT returns the line height in points for the given font size in points.
// The zero value resolves to 1.4 times the font size.
func (h LineHeight) ResolvePT(fontSizePT float64) float64 {
	switch {
	case h.Factor > 0:
		return fontSizePT * h.Factor
	case !h.Len.IsZero():
		return h.Len.ToPT()
	}
	return fontSizePT * 1.4
}
