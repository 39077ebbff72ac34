package canvasrenderer

import (
	"bytes"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/justify/layout"
	"github.com/ByLCY/justify/renderer"
)

const (
	defaultColor    = "#1e1e1e"
	defaultFontSize = 11 // pt
	defaultMargin   = 18 // mm
)

// Renderer draws justified paragraphs into a PDF via github.com/tdewolff/canvas.
//
// 断行以视觉单位（字符）计宽，因此 PDF 使用等宽字体：每个词按它在渲染行中的
// 列号放在网格上，两端对齐的效果与终端输出一致。
type Renderer struct {
	opts Options

	fontMu sync.Mutex
	family *canvas.FontFamily
}

var _ renderer.Renderer = (*Renderer)(nil)

// Options configures the canvas renderer.
type Options struct {
	BaseDir string
	Font    Resource
	// 字号与页边距；零值使用 11pt 与 18mm。
	FontSize layout.Length
	Margin   layout.Length
	Leading  layout.LineHeight
	Color    string
	// LinesPerPage 为 0 时整个段落放在一页上，页面高度随行数变化。
	LinesPerPage int
	Meta         Meta
}

// Resource can be provided either by Bytes or by Path.
type Resource struct {
	Bytes []byte
	Path  string
}

// Meta is written into the PDF document info.
type Meta struct {
	Title    string
	Subject  string
	Author   string
	Creator  string
	Keywords []string
}

// NewRenderer creates a PDF renderer.
func NewRenderer(opts Options) *Renderer {
	return &Renderer{opts: opts}
}

// Render renders the result into a PDF byte slice.
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	face, err := r.fontFace()
	if err != nil {
		return nil, err
	}
	m := gridMetrics{
		advance:    face.TextWidth("M"),
		ascent:     face.Metrics().Ascent,
		lineHeight: r.opts.Leading.ResolvePT(r.fontSizePT()) * layout.PtToMm,
	}
	pages := layoutPages(result, m, r.marginMM(), r.opts.LinesPerPage)

	var buf bytes.Buffer
	writer := pdf.New(&buf, pages[0].width, pages[0].height, nil)
	meta := r.opts.Meta
	writer.SetInfo(meta.Title, meta.Subject, strings.Join(meta.Keywords, ", "), meta.Author, meta.Creator)
	for i, page := range pages {
		if i > 0 {
			writer.NewPage(page.width, page.height)
		}
		c := canvas.New(page.width, page.height)
		ctx := canvas.NewContext(c)
		ctx.SetCoordSystem(canvas.CartesianIV) // 左上角为原点，与行号递增方向一致
		for _, w := range page.words {
			ctx.DrawText(w.x, w.baseline, canvas.NewTextLine(face, w.text, canvas.Left))
		}
		c.RenderTo(writer)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) fontSizePT() float64 {
	if r.opts.FontSize.IsZero() {
		return defaultFontSize
	}
	if r.opts.FontSize.Unit == layout.UnitNone {
		return r.opts.FontSize.Value
	}
	return r.opts.FontSize.ToPT()
}

func (r *Renderer) marginMM() float64 {
	if r.opts.Margin.IsZero() {
		return defaultMargin
	}
	return r.opts.Margin.ToMM()
}

func (r *Renderer) fontFace() (*canvas.FontFace, error) {
	family, err := r.ensureFontFamily()
	if err != nil {
		return nil, err
	}
	col, err := parseColor(r.opts.Color)
	if err != nil {
		return nil, err
	}
	return family.Face(r.fontSizePT(), col, canvas.FontRegular, canvas.FontNormal), nil
}

func (r *Renderer) ensureFontFamily() (*canvas.FontFamily, error) {
	r.fontMu.Lock()
	defer r.fontMu.Unlock()
	if r.family != nil {
		return r.family, nil
	}
	data, err := r.loadFontBytes()
	if err != nil {
		return nil, err
	}
	family := canvas.NewFontFamily("justify-mono")
	if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, fmt.Errorf("加载字体失败: %w", err)
	}
	r.family = family
	return family, nil
}

func (r *Renderer) loadFontBytes() ([]byte, error) {
	if len(r.opts.Font.Bytes) > 0 {
		return r.opts.Font.Bytes, nil
	}
	path := r.opts.Font.Path
	if path == "" {
		return nil, fmt.Errorf("PDF 输出需要等宽字体：请在 page 段落设置 font 或使用 --font")
	}
	if !filepath.IsAbs(path) && r.opts.BaseDir != "" {
		path = filepath.Join(r.opts.BaseDir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取字体 %s 失败: %w", path, err)
	}
	return data, nil
}

func parseColor(value string) (color.Color, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		v = defaultColor
	}
	if !strings.HasPrefix(v, "#") {
		return nil, fmt.Errorf("颜色 %q 需要以 # 开头", value)
	}
	switch len(v) {
	case 4, 7, 9:
		return canvas.Hex(v), nil
	}
	return nil, fmt.Errorf("无法解析颜色 %q", value)
}
