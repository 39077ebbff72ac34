package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ByLCY/justify/binding"
	"github.com/ByLCY/justify/config"
	"github.com/ByLCY/justify/dsl"
	"github.com/ByLCY/justify/internal/metrics"
	"github.com/ByLCY/justify/layout"
	"github.com/ByLCY/justify/renderer"
	canvasrenderer "github.com/ByLCY/justify/renderer/canvas"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// input 是读入的一段文本，以及它来自任务文件时的任务描述。
type input struct {
	Text    string
	Job     *config.Job
	BaseDir string
}

// readInput 读取文件或标准输入（path 为空或 "-"），以 justify 头开始的内容按任务文件解析。
func readInput(path string, stdin io.Reader) (*input, error) {
	var (
		raw []byte
		err error
	)
	in := &input{BaseDir: "."}
	if path == "" || path == "-" {
		raw, err = io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("读取标准输入失败: %w", err)
		}
	} else {
		raw, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("无法打开输入文件 %s: %w", path, err)
		}
		in.BaseDir = filepath.Dir(path)
	}

	if !dsl.LooksLikeDocument(raw) {
		in.Text = string(raw)
		return in, nil
	}
	doc, err := dsl.ParseBytes(path, raw)
	if err != nil {
		return nil, fmt.Errorf("解析任务文件失败: %w", err)
	}
	job, err := config.FromDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("解析任务文件失败: %w", err)
	}
	in.Job = job
	in.Text = job.Text
	return in, nil
}

// parseData accepts inline JSON or @path to a JSON/YAML file.
func parseData(value string) (any, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	if path, ok := strings.CutPrefix(value, "@"); ok {
		return binding.LoadFile(path)
	}
	return binding.Decode([]byte(value), false)
}

// outputs 描述一次 run 除终端文本以外的产物。
type outputs struct {
	PDF     string
	Font    string
	Debug   string
	Metrics string
}

// run 串联插值、断行与输出。
func run(in *input, data any, opts layout.Options, out outputs, text renderer.Renderer, stdout io.Writer, logger *slog.Logger) error {
	if text == nil {
		return errors.New("renderer 不能为空")
	}
	body := in.Text
	if data != nil {
		var err error
		if body, err = binding.InterpolateStrict(body, data); err != nil {
			return err
		}
	}

	var m *metrics.Metrics
	if out.Metrics != "" {
		m = metrics.New()
	}
	opts.Debug.Table = out.Debug != ""

	start := time.Now()
	result, err := layout.Build(body, opts)
	m.ObserveBreak(opts.Algorithm, time.Since(start), result, err)
	if err != nil {
		if werr := writeMetrics(m, out.Metrics); werr != nil {
			logger.Warn("写出指标失败", "error", werr)
		}
		return fmt.Errorf("断行失败: %w", err)
	}
	logger.Debug("paragraph broken",
		"algorithm", result.Algorithm,
		"tokens", result.Tokens,
		"lines", len(result.Lines),
		"badness", result.Badness.String(),
		"elapsed", time.Since(start),
	)

	if out.Debug != "" {
		if err := writeDebug(result, out.Debug); err != nil {
			return err
		}
	}

	rendered, err := text.Render(result)
	if err != nil {
		return fmt.Errorf("渲染文本失败: %w", err)
	}
	if _, err := stdout.Write(rendered); err != nil {
		return fmt.Errorf("写出文本失败: %w", err)
	}

	if out.PDF != "" {
		if err := writePDF(in, result, out); err != nil {
			return err
		}
		logger.Info("已生成 PDF", "path", out.PDF)
	}
	return writeMetrics(m, out.Metrics)
}

func writePDF(in *input, result *layout.Result, out outputs) error {
	var page config.Page
	var meta config.Meta
	if in.Job != nil {
		page, meta = in.Job.Page, in.Job.Meta
		if meta.Title == "" {
			meta.Title = in.Job.Name
		}
	}
	opts, err := canvasrenderer.FromJob(page, meta, in.BaseDir)
	if err != nil {
		return fmt.Errorf("解析页面设置失败: %w", err)
	}
	if out.Font != "" {
		font, err := filepath.Abs(out.Font)
		if err != nil {
			return fmt.Errorf("解析字体路径失败: %w", err)
		}
		opts.Font = canvasrenderer.Resource{Path: font}
	}

	if err := os.MkdirAll(filepath.Dir(out.PDF), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	pdfBytes, err := canvasrenderer.NewRenderer(opts).Render(result)
	if err != nil {
		return fmt.Errorf("渲染 PDF 失败: %w", err)
	}
	if err := os.WriteFile(out.PDF, pdfBytes, 0o644); err != nil {
		return fmt.Errorf("写入 PDF 文件失败: %w", err)
	}
	return nil
}

func writeDebug(result *layout.Result, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := layout.WriteDebugJSON(result, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}

func writeMetrics(m *metrics.Metrics, path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建指标目录失败: %w", err)
	}
	return m.WriteToTextfile(path)
}
