package layout

import (
	"strings"
	"unicode/utf8"
)

// Token 是断行的最小单位：一个词，或断词后的词片段。Token 内部不含空白。
type Token string

// Width 返回 token 的视觉宽度（不缓存，避免片段替换后宽度过期）。
func (t Token) Width() int { return Width(string(t)) }

// Tokens 是一次断行使用的有序输入序列，构造后只读。
type Tokens []Token

// Strings 返回 token 的字符串拷贝。
func (ts Tokens) Strings() []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = string(t)
	}
	return out
}

// Width counts visual units in s: one per encoded character, however many
// bytes its encoding takes. Input is assumed to be well-formed UTF-8.
func Width(s string) int { return utf8.RuneCountInString(s) }

// Tokenize 按空白切分文本。连续空白视为一个分隔，首尾空白不产生空 token。
func Tokenize(text string) Tokens {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return Tokens{}
	}
	tokens := make(Tokens, len(fields))
	for i, f := range fields {
		tokens[i] = Token(f)
	}
	return tokens
}

// unitOffset converts a visual offset into a byte offset within s.
func unitOffset(s string, units int) int {
	if units <= 0 {
		return 0
	}
	n := 0
	for i := range s {
		if n == units {
			return i
		}
		n++
	}
	return len(s)
}

// sliceUnits returns s[from:to] measured in visual units.
func sliceUnits(s string, from, to int) string {
	return s[unitOffset(s, from):unitOffset(s, to)]
}
