package dsl

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	dslLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r]+`},
		{Name: "Newline", Pattern: `\n+`},
		{Name: "BlockComment", Pattern: `/\*[^*]*\*+(?:[^/*][^*]*\*+)*/`},
		{Name: "LineComment", Pattern: `//[^\n]*`},
		{Name: "Color", Pattern: `#(?:[0-9A-Fa-f]{8}|[0-9A-Fa-f]{6}|[0-9A-Fa-f]{3})\b`},
		{Name: "HashComment", Pattern: `#[^\n]*`},
		{Name: "Number", Pattern: `-?(?:\d+\.\d+|\d+)(?:pt|mm|cm|in|x)?`},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_-]*`},
		{Name: "Symbol", Pattern: `[][,;:]`},
		{Name: "LBrace", Pattern: `{`},
		{Name: "RBrace", Pattern: `}`},
	})

	documentParser = participle.MustBuild[Document](
		participle.Lexer(dslLexer),
		participle.Elide("Whitespace", "LineComment", "BlockComment", "HashComment"),
	)
)

// Document is the root AST node of a justify job file.
//
//	justify Report v1 {
//	  width: 40
//	  page { size: 11pt margin: 18mm }
//	  text { "first sentence" "second sentence" }
//	}
type Document struct {
	Pos      lexer.Position `parser:"" json:"-"`
	Name     string         `parser:"Newline* 'justify' @Ident"`
	Version  string         `parser:"@Ident"`
	Sections []*Section     `parser:"'{' Newline* ( @@ ( ';' | Newline )* )* '}' Newline*"`
}

// Section is one top-level entry: a page/meta/text block or a breaking setting.
type Section struct {
	Page    *PageSection `parser:"  @@"`
	Meta    *MetaSection `parser:"| @@"`
	Text    *TextSection `parser:"| @@"`
	Setting *Assignment  `parser:"| @@"`
}

// Kind returns the human-readable section type.
func (s *Section) Kind() string {
	switch {
	case s == nil:
		return "unknown"
	case s.Page != nil:
		return "page"
	case s.Meta != nil:
		return "meta"
	case s.Text != nil:
		return "text"
	case s.Setting != nil:
		return "setting"
	default:
		return "unknown"
	}
}

// PageSection 描述 PDF 输出的页面几何与字体。
type PageSection struct {
	Block *Block `parser:"'page' @@"`
}

// MetaSection captures document metadata (title, author, keywords).
type MetaSection struct {
	Block *Block `parser:"'meta' @@"`
}

// TextSection holds the paragraph as one or more string literals.
type TextSection struct {
	Lines []*TextLiteral `parser:"'text' '{' Newline* ( @@ ( ';' | Newline )* )* '}'"`
}

// Block is a delimited list of assignments.
type Block struct {
	Entries []*Assignment `parser:"'{' Newline* ( @@ ( ';' | Newline )* )* '}'"`
}

// Assignment uses colon syntax (key: value).
type Assignment struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Key   string         `parser:"@Ident"`
	Value *Value         `parser:"':' Newline* @@"`
}

// TextLiteral is a single quoted string inside a text block.
type TextLiteral struct {
	Value StringLiteral `parser:"@String"`
}

// Value represents setting values.
type Value struct {
	String *StringLiteral `parser:"  @String"`
	Number *string        `parser:"| @Number"`
	Color  *string        `parser:"| @Color"`
	Array  *ArrayValue    `parser:"| @@"`
	Ident  *string        `parser:"| @Ident"`
}

// ArrayValue captures `[ ... ]` expressions.
type ArrayValue struct {
	Values []*Value `parser:"'[' Newline* ( @@ ( (',' | Newline+) Newline* @@ )* )? Newline* ']'"`
}

// Interface 把值转换为普通的 Go 值：整数为 int，小数为 float64，
// true/false 为 bool，带单位的数字、颜色与标识符保持为字符串。
func (v *Value) Interface() any {
	switch {
	case v == nil:
		return nil
	case v.String != nil:
		return string(*v.String)
	case v.Number != nil:
		if n, err := strconv.Atoi(*v.Number); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(*v.Number, 64); err == nil {
			return f
		}
		return *v.Number
	case v.Color != nil:
		return *v.Color
	case v.Array != nil:
		out := make([]any, 0, len(v.Array.Values))
		for _, item := range v.Array.Values {
			out = append(out, item.Interface())
		}
		return out
	case v.Ident != nil:
		switch *v.Ident {
		case "true", "yes", "on":
			return true
		case "false", "no", "off":
			return false
		}
		return *v.Ident
	}
	return nil
}

// StringLiteral unquotes Go-style strings on capture.
type StringLiteral string

// Capture implements participle.Capture.
func (s *StringLiteral) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("string literal capture requires value")
	}
	val, err := strconv.Unquote(values[0])
	if err != nil {
		return err
	}
	*s = StringLiteral(val)
	return nil
}

// Parse parses a job document from an io.Reader.
func Parse(r io.Reader) (*Document, error) {
	return documentParser.Parse("", r)
}

// ParseString parses a job document from a string.
func ParseString(input string) (*Document, error) {
	return documentParser.ParseString("", input)
}

// ParseBytes parses a job document; filename only appears in error positions.
func ParseBytes(filename string, data []byte) (*Document, error) {
	return documentParser.ParseBytes(filename, data)
}

// LooksLikeDocument 判断输入是否以 justify 头开始，用于区分任务文件与纯文本。
func LooksLikeDocument(data []byte) bool {
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "//") || strings.HasPrefix(line, "#") {
			continue
		}
		return strings.HasPrefix(line, "justify ")
	}
	return false
}

// Settings returns the top-level breaking settings.
func (d *Document) Settings() (map[string]any, error) {
	var entries []*Assignment
	for _, s := range d.Sections {
		if s.Setting != nil {
			entries = append(entries, s.Setting)
		}
	}
	return toMap(entries)
}

// Page returns the merged page block entries; nil when no page block exists.
func (d *Document) Page() (map[string]any, error) {
	return d.blocks(func(s *Section) *Block {
		if s.Page != nil {
			return s.Page.Block
		}
		return nil
	})
}

// Meta returns the merged meta block entries; nil when no meta block exists.
func (d *Document) Meta() (map[string]any, error) {
	return d.blocks(func(s *Section) *Block {
		if s.Meta != nil {
			return s.Meta.Block
		}
		return nil
	})
}

// Text 用单个空格连接所有 text 块中的字符串，得到一个段落。
func (d *Document) Text() string {
	var parts []string
	for _, s := range d.Sections {
		if s.Text == nil {
			continue
		}
		for _, lit := range s.Text.Lines {
			parts = append(parts, string(lit.Value))
		}
	}
	return strings.Join(parts, " ")
}

func (d *Document) blocks(pick func(*Section) *Block) (map[string]any, error) {
	var entries []*Assignment
	found := false
	for _, s := range d.Sections {
		if b := pick(s); b != nil {
			found = true
			entries = append(entries, b.Entries...)
		}
	}
	if !found {
		return nil, nil
	}
	return toMap(entries)
}

func toMap(entries []*Assignment) (map[string]any, error) {
	out := make(map[string]any, len(entries))
	seen := make(map[string]lexer.Position, len(entries))
	for _, a := range entries {
		if prev, ok := seen[a.Key]; ok {
			return nil, fmt.Errorf("%s: 重复的设置 %q（首次出现在 %s）", a.Pos, a.Key, prev)
		}
		seen[a.Key] = a.Pos
		out[a.Key] = a.Value.Interface()
	}
	return out, nil
}
