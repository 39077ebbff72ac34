package report

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"golang.org/x/sync/errgroup"

	"github.com/ByLCY/justify/layout"
)

// Run is the outcome of one algorithm on the paragraph.
type Run struct {
	Algorithm layout.Algorithm
	Result    *layout.Result
	Elapsed   time.Duration
	Footprint int   // DP 表估算字节数，仅最优断行
	Err       error // 不可行等断行错误；校验错误由 Compare 直接返回
}

// Report compares the greedy and the optimal breaker on one paragraph.
type Report struct {
	Title   string
	Width   int
	Tokens  int
	Greedy  Run
	Optimal Run
}

// Compare 并发运行两种算法。两次调用互不共享状态，谁先完成不影响结果。
// 不可行只记录在对应的 Run 中（贪心断行总能给出结果）。
func Compare(ctx context.Context, text string, opts layout.Options) (*Report, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	tokens := layout.Tokenize(text)
	rep := &Report{Width: opts.Width, Tokens: len(tokens)}

	g, gctx := errgroup.WithContext(ctx)
	run := func(algo layout.Algorithm, out *Run) {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			o := opts
			o.Algorithm = algo
			o.Debug.Table = algo == layout.AlgorithmOptimal
			start := time.Now()
			res, err := layout.BuildTokens(tokens, o)
			*out = Run{Algorithm: algo, Elapsed: time.Since(start)}
			if err != nil {
				if errors.Is(err, layout.ErrInfeasible) {
					out.Err = err
					return nil
				}
				return err
			}
			if res.Table != nil {
				out.Footprint = res.Table.Footprint()
				res.Table = nil
			}
			out.Result = res
			return nil
		})
	}
	run(layout.AlgorithmGreedy, &rep.Greedy)
	run(layout.AlgorithmOptimal, &rep.Optimal)
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("比较断行失败: %w", err)
	}
	return rep, nil
}

// Markdown formats the report. Lines are framed as |line| (width) inside
// code blocks so padding stays visible.
func (r *Report) Markdown() string {
	var b strings.Builder
	title := r.Title
	if title == "" {
		title = "Greedy vs Optimal"
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "Line width **%d**, %d tokens.\n\n", r.Width, r.Tokens)

	b.WriteString("| | greedy | optimal |\n|---|---|---|\n")
	fmt.Fprintf(&b, "| lines | %s | %s |\n", lineCount(r.Greedy), lineCount(r.Optimal))
	fmt.Fprintf(&b, "| badness | %s | %s |\n", badness(r.Greedy), badness(r.Optimal))
	fmt.Fprintf(&b, "| hyphenations | %s | %s |\n", hyphenations(r.Greedy), hyphenations(r.Optimal))
	fmt.Fprintf(&b, "| time | %s | %s |\n", r.Greedy.Elapsed, r.Optimal.Elapsed)
	fmt.Fprintf(&b, "| DP table | - | %s |\n", formatBytes(r.Optimal.Footprint))
	if r.Greedy.Elapsed > 0 && r.Optimal.Result != nil {
		ratio := float64(r.Optimal.Elapsed) / float64(r.Greedy.Elapsed)
		fmt.Fprintf(&b, "\nOptimal took **%.2fx** the time of greedy.\n", ratio)
	}

	for _, run := range []Run{r.Greedy, r.Optimal} {
		fmt.Fprintf(&b, "\n## %s\n\n", run.Algorithm)
		if run.Err != nil {
			fmt.Fprintf(&b, "> %v\n", run.Err)
			continue
		}
		b.WriteString("```\n")
		for _, ln := range run.Result.Rendered {
			fmt.Fprintf(&b, "|%s| (%d)\n", ln, layout.Width(ln))
		}
		b.WriteString("```\n")
	}
	return b.String()
}

func lineCount(run Run) string {
	if run.Result == nil {
		return "-"
	}
	return fmt.Sprint(len(run.Result.Lines))
}

func badness(run Run) string {
	if run.Result == nil {
		return "infeasible"
	}
	return run.Result.Badness.String()
}

func hyphenations(run Run) string {
	if run.Result == nil {
		return "-"
	}
	return fmt.Sprint(run.Result.Hyphenations)
}

func formatBytes(n int) string {
	switch {
	case n <= 0:
		return "-"
	case n < 1024:
		return fmt.Sprintf("%d B", n)
	case n < 1<<20:
		return fmt.Sprintf("%.1f KiB", float64(n)/1024)
	default:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	}
}

// Render 通过 glamour 把 Markdown 渲染为终端文本；plain 为真时原样返回。
func Render(markdown string, plain bool) (string, error) {
	if plain {
		return markdown, nil
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(0),
	)
	if err != nil {
		return "", fmt.Errorf("初始化 markdown 渲染器失败: %w", err)
	}
	out, err := r.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("渲染报告失败: %w", err)
	}
	return out, nil
}
