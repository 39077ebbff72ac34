package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ByLCY/justify/config"
	"github.com/ByLCY/justify/internal/cache"
	"github.com/ByLCY/justify/internal/logging"
	"github.com/ByLCY/justify/internal/metrics"
	"github.com/ByLCY/justify/internal/report"
	"github.com/ByLCY/justify/internal/server"
	"github.com/ByLCY/justify/layout"
	textrenderer "github.com/ByLCY/justify/renderer/text"
)

// app 保存所有子命令共享的状态，在 PersistentPreRunE 中初始化。
type app struct {
	configPath string
	logLevel   string
	verbose    bool

	cfg    config.Config
	level  slog.Level
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "justify",
		Short: "Optimal paragraph line breaking",
		Long: `justify breaks a paragraph into fully justified lines of a fixed width,
either greedily or with a dynamic program that minimizes total badness.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", config.DefaultPath, "YAML 默认配置文件")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "日志级别: debug, info, warn, error")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "等同于 --log-level debug")

	root.AddCommand(newRunCmd(a), newCompareCmd(a), newServeCmd(a), newVersionCmd())
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	base := config.Default()
	if w := terminalWidth(cmd.OutOrStdout()); w > 0 {
		base.Width = w
	}
	cfg, err := config.LoadOver(a.configPath, base)
	if err != nil {
		return err
	}
	a.cfg = cfg

	name := cfg.LogLevel
	if a.logLevel != "" {
		name = a.logLevel
	}
	if a.verbose {
		name = "debug"
	}
	if a.level, err = logging.ParseLevel(name); err != nil {
		return err
	}
	a.logger = logging.NewWithWriter(cmd.ErrOrStderr(), a.level, false)
	return nil
}

// terminalWidth 在输出是终端时返回其列数，否则返回 0。
func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return width
}

// breakFlags 是 run 与 compare 共用的断行参数，只有显式给出的标志才覆盖配置。
type breakFlags struct {
	width       int
	exponent    int
	algorithm   string
	hyphenate   bool
	penalty     int64
	marker      string
	minFragment int
}

func (f *breakFlags) register(cmd *cobra.Command, withAlgorithm bool) {
	fs := cmd.Flags()
	fs.IntVarP(&f.width, "width", "w", 0, "行宽（默认：终端宽度，非终端时为 40）")
	fs.IntVarP(&f.exponent, "exponent", "e", layout.DefaultExponent, "badness 指数")
	if withAlgorithm {
		fs.StringVarP(&f.algorithm, "algorithm", "a", string(layout.AlgorithmOptimal), "断行算法: optimal 或 greedy")
	}
	fs.BoolVar(&f.hyphenate, "hyphenate", false, "允许最优断行拆分单词")
	fs.Int64Var(&f.penalty, "penalty", int64(layout.DefaultHyphenPenalty), "每次断词的额外代价")
	fs.StringVar(&f.marker, "marker", layout.DefaultMarker, "断词连接符")
	fs.IntVar(&f.minFragment, "min-fragment", layout.DefaultMinFragment, "断词后前后片段的最短宽度")
}

func (f *breakFlags) apply(cmd *cobra.Command, c config.Config) config.Config {
	fs := cmd.Flags()
	if fs.Changed("width") {
		c.Width = f.width
	}
	if fs.Changed("exponent") {
		c.Exponent = f.exponent
	}
	if fs.Changed("algorithm") {
		c.Algorithm = f.algorithm
	}
	if fs.Changed("hyphenate") {
		c.Hyphenate = f.hyphenate
	}
	if fs.Changed("penalty") {
		c.Penalty = f.penalty
	}
	if fs.Changed("marker") {
		c.Marker = f.marker
	}
	if fs.Changed("min-fragment") {
		c.MinFragment = f.minFragment
	}
	return c
}

// resolve applies defaults < YAML < job < flags.
func (a *app) resolve(cmd *cobra.Command, flags *breakFlags, in *input) (layout.Options, error) {
	cfg := a.cfg
	if in != nil && in.Job != nil {
		cfg = cfg.Apply(in.Job.Settings)
	}
	cfg = flags.apply(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return layout.Options{}, err
	}
	return cfg.Options(), nil
}

func newRunCmd(a *app) *cobra.Command {
	var (
		flags breakFlags
		data  string
		frame bool
		color string
		out   outputs
	)
	cmd := &cobra.Command{
		Use:   "run [file]",
		Short: "Justify a paragraph from a job file, a text file or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			in, err := readInput(path, cmd.InOrStdin())
			if err != nil {
				return err
			}
			opts, err := a.resolve(cmd, &flags, in)
			if err != nil {
				return err
			}
			values, err := parseData(data)
			if err != nil {
				return err
			}
			useColor, err := colorEnabled(color, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			text := textrenderer.New(textrenderer.Options{
				Frame:   frame,
				Color:   useColor,
				Profile: termenv.EnvColorProfile(),
			})
			return run(in, values, opts, out, text, cmd.OutOrStdout(), a.logger)
		},
	}
	flags.register(cmd, true)
	fs := cmd.Flags()
	fs.StringVar(&data, "data", "", "插值数据：JSON 字符串，或 @文件（.json/.yaml）")
	fs.BoolVar(&frame, "frame", false, "以 |行| (宽度) 形式输出")
	fs.StringVar(&color, "color", "auto", "着色断词行与超宽行: auto, always, never")
	fs.StringVar(&out.PDF, "pdf", "", "PDF 输出路径")
	fs.StringVar(&out.Font, "font", "", "PDF 使用的等宽字体文件，覆盖任务文件中的 page.font")
	fs.StringVar(&out.Debug, "debug", "", "调试 JSON 输出路径（含 DP 表）")
	fs.StringVar(&out.Metrics, "metrics-file", "", "以 Prometheus textfile 格式写出指标")
	return cmd
}

func colorEnabled(mode string, w io.Writer) (bool, error) {
	switch mode {
	case "auto", "":
		f, ok := w.(*os.File)
		return ok && term.IsTerminal(int(f.Fd())), nil
	case "always":
		return true, nil
	case "never":
		return false, nil
	}
	return false, fmt.Errorf("未知的 --color 取值 %q", mode)
}

func newCompareCmd(a *app) *cobra.Command {
	var (
		flags  breakFlags
		random int
		seed   uint64
		sample string
		plain  bool
	)
	cmd := &cobra.Command{
		Use:   "compare [file]",
		Short: "Compare greedy and optimal breaking on the same paragraph",
		Long: `compare runs both breakers on one paragraph and reports their output,
total badness, wall-clock time and the estimated size of the DP table.

Without input it uses a built-in sample paragraph.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				in    *input
				title string
				err   error
			)
			switch {
			case random > 0:
				if !cmd.Flags().Changed("seed") {
					seed = uint64(time.Now().UnixNano())
				}
				r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
				in = &input{Text: report.RandomText(r, random, 5)}
				title = fmt.Sprintf("%d random words (seed %d)", random, seed)
			case len(args) == 1:
				if in, err = readInput(args[0], cmd.InOrStdin()); err != nil {
					return err
				}
				title = args[0]
			default:
				text, err := report.Sample(sample)
				if err != nil {
					return err
				}
				in = &input{Text: text}
				title = "sample: " + sample
			}

			opts, err := a.resolve(cmd, &flags, in)
			if err != nil {
				return err
			}
			rep, err := report.Compare(cmd.Context(), in.Text, opts)
			if err != nil {
				return err
			}
			rep.Title = title
			out, err := report.Render(rep.Markdown(), plain)
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), out)
			return err
		},
	}
	flags.register(cmd, false)
	fs := cmd.Flags()
	fs.IntVar(&random, "random", 0, "使用 N 个随机单词代替输入")
	fs.Uint64Var(&seed, "seed", 0, "随机文本的种子（默认取当前时间）")
	fs.StringVar(&sample, "sample", "en", "没有输入时使用的内置段落: en, mn")
	fs.BoolVar(&plain, "plain", false, "输出原始 Markdown，不经 glamour 渲染")
	return cmd
}

func newServeCmd(a *app) *cobra.Command {
	var (
		addr  string
		redis string
		rps   float64
		burst int
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the breaking engine over HTTP",
		Long: `serve exposes POST /v1/justify, GET /healthz and GET /metrics.
Results are cached in memory, or in Redis when --redis (or cache.redis) is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("redis") {
				cfg.Cache.Redis = redis
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			logger := logging.NewWithWriter(cmd.ErrOrStderr(), a.level, true)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			store, closeStore, err := openCache(ctx, cfg.Cache, logger)
			if err != nil {
				return err
			}
			defer closeStore()

			srv := server.New(server.Options{
				Defaults: cfg.Options(),
				Cache:    store,
				Metrics:  metrics.New(),
				Logger:   logger,
				MaxBody:  cfg.Server.MaxBody,
				RPS:      rps,
				Burst:    burst,
			})
			return srv.ListenAndServe(ctx, cfg.Server.Addr)
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&addr, "addr", ":8080", "监听地址")
	fs.StringVar(&redis, "redis", "", "Redis 地址，为空时使用内存缓存")
	fs.Float64Var(&rps, "rps", 0, "每秒允许的断行请求数，0 表示不限流")
	fs.IntVar(&burst, "burst", 0, "限流的突发容量")
	return cmd
}

// openCache 优先连接 Redis；连接不上时退回内存缓存，服务照常启动。
func openCache(ctx context.Context, c config.CacheConfig, logger *slog.Logger) (cache.Cache, func(), error) {
	if c.Redis == "" {
		return cache.NewMemory(c.Size, c.TTL), func() {}, nil
	}
	store := cache.NewRedis(c.Redis, "", 0, cache.WithTTL(c.TTL), cache.WithPrefix(c.Prefix))
	if err := cache.WaitReady(ctx, store, 5); err != nil {
		_ = store.Close()
		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}
		logger.Warn("redis 不可用，使用内存缓存", "addr", c.Redis, "error", err)
		return cache.NewMemory(c.Size, c.TTL), func() {}, nil
	}
	logger.Info("using redis cache", "addr", c.Redis)
	return cache.NewGuarded("redis", store, logger), func() { _ = store.Close() }, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of justify",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "justify version %s\n", version)
		},
	}
}
