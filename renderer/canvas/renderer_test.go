package canvasrenderer

import (
	"bytes"
	"math"
	"os"
	"strings"
	"testing"

	"github.com/ByLCY/justify/config"
	"github.com/ByLCY/justify/layout"
)

func TestWordColumns(t *testing.T) {
	cols := wordColumns("ab   cd  бичвэр ")
	want := []column{{0, "ab"}, {5, "cd"}, {9, "бичвэр"}}
	if len(cols) != len(want) {
		t.Fatalf("期望 %d 个词，实际 %+v", len(want), cols)
	}
	for i := range want {
		if cols[i] != want[i] {
			t.Fatalf("第 %d 个词期望 %+v，实际 %+v", i, want[i], cols[i])
		}
	}
	if got := wordColumns("    "); len(got) != 0 {
		t.Fatalf("空白行不应有词: %+v", got)
	}
}

// TestGridKeepsJustification 验证：每个非末行的最后一个词都贴住右边界。
func TestGridKeepsJustification(t *testing.T) {
	res, err := layout.Build("the quick brown fox jumps over the lazy dog", layout.DefaultOptions(15))
	if err != nil {
		t.Fatalf("断行失败: %v", err)
	}
	m := gridMetrics{advance: 2, ascent: 3, lineHeight: 5}
	pages := layoutPages(res, m, 10, 0)
	if len(pages) != 1 {
		t.Fatalf("期望 1 页，实际 %d", len(pages))
	}
	p := pages[0]
	if p.width != 2*10+15*2 {
		t.Fatalf("页面宽度不正确: %g", p.width)
	}
	if want := 2*10 + float64(len(res.Rendered))*5; p.height != want {
		t.Fatalf("页面高度期望 %g，实际 %g", want, p.height)
	}

	rightEdge := 10 + 15*m.advance
	lastOnRow := map[float64]placedWord{}
	for _, w := range p.words {
		if prev, ok := lastOnRow[w.baseline]; !ok || w.x > prev.x {
			lastOnRow[w.baseline] = w
		}
	}
	for i := 0; i < len(res.Rendered)-1; i++ {
		if len(res.Lines[i].Words) < 2 {
			continue
		}
		w := lastOnRow[10+float64(i)*5+3]
		end := w.x + float64(layout.Width(w.text))*m.advance
		if math.Abs(end-rightEdge) > 1e-9 {
			t.Fatalf("第 %d 行右边界 %g，期望 %g", i, end, rightEdge)
		}
	}
}

func TestLayoutPagesSplitsRows(t *testing.T) {
	res := &layout.Result{Width: 4, Rendered: []string{"a  b", "cc d", "e   ", "f   ", "g   "}}
	pages := layoutPages(res, gridMetrics{advance: 1, ascent: 1, lineHeight: 2}, 0, 2)
	if len(pages) != 3 {
		t.Fatalf("期望 3 页，实际 %d", len(pages))
	}
	if len(pages[2].words) != 1 || pages[2].words[0].text != "g" || pages[2].words[0].baseline != 1 {
		t.Fatalf("最后一页内容不正确: %+v", pages[2].words)
	}

	empty := layoutPages(&layout.Result{Width: 4}, gridMetrics{advance: 1, lineHeight: 2}, 5, 0)
	if len(empty) != 1 || len(empty[0].words) != 0 {
		t.Fatalf("空段落应得到一个空白页: %+v", empty)
	}
}

func TestFromJob(t *testing.T) {
	opts, err := FromJob(config.Page{Size: "12pt", Margin: "1in", Leading: "1.5x", Font: "mono.ttf"}, config.Meta{Title: "T"}, "/tmp")
	if err != nil {
		t.Fatalf("转换失败: %v", err)
	}
	r := NewRenderer(opts)
	if r.fontSizePT() != 12 || math.Abs(r.marginMM()-25.4) > 1e-9 {
		t.Fatalf("字号或页边距不正确: %g %g", r.fontSizePT(), r.marginMM())
	}
	if opts.Meta.Creator != "justify" || opts.Font.Path != "mono.ttf" {
		t.Fatalf("选项不正确: %+v", opts)
	}

	for _, bad := range []config.Page{{Size: "big"}, {Margin: "-1mm"}, {Leading: "tall"}, {Color: "red"}} {
		if _, err := FromJob(bad, config.Meta{}, ""); err == nil {
			t.Fatalf("%+v 应转换失败", bad)
		}
	}
}

func TestRenderRequiresFont(t *testing.T) {
	res, err := layout.Build("a b", layout.DefaultOptions(5))
	if err != nil {
		t.Fatalf("断行失败: %v", err)
	}
	_, err = NewRenderer(Options{}).Render(res)
	if err == nil || !strings.Contains(err.Error(), "字体") {
		t.Fatalf("缺少字体时应报错，实际 %v", err)
	}
}

// TestRenderPDF 需要一个等宽 TrueType 字体，通过 JUSTIFY_TEST_FONT 指定。
func TestRenderPDF(t *testing.T) {
	fontPath := os.Getenv("JUSTIFY_TEST_FONT")
	if fontPath == "" {
		t.Skip("未设置 JUSTIFY_TEST_FONT")
	}
	res, err := layout.Build("Dynamic programming solves the problem optimally.", layout.DefaultOptions(20))
	if err != nil {
		t.Fatalf("断行失败: %v", err)
	}
	out, err := NewRenderer(Options{Font: Resource{Path: fontPath}, LinesPerPage: 2}).Render(res)
	if err != nil {
		t.Fatalf("渲染失败: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatalf("输出不是 PDF")
	}
}
