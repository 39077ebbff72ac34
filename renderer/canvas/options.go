package canvasrenderer

import (
	"fmt"

	"github.com/ByLCY/justify/config"
	"github.com/ByLCY/justify/layout"
)

// FromJob 把任务文件的 page/meta 段落转换为渲染选项。
func FromJob(p config.Page, meta config.Meta, baseDir string) (Options, error) {
	opts := Options{
		BaseDir: baseDir,
		Font:    Resource{Path: p.Font},
		Color:   p.Color,
		Meta: Meta{
			Title:    meta.Title,
			Subject:  meta.Subject,
			Author:   meta.Author,
			Creator:  "justify",
			Keywords: meta.Keywords,
		},
	}
	var err error
	if p.Size != "" {
		if opts.FontSize, err = layout.ParseLength(p.Size); err != nil {
			return opts, fmt.Errorf("page.size: %w", err)
		}
	}
	if p.Margin != "" {
		if opts.Margin, err = layout.ParseLength(p.Margin); err != nil {
			return opts, fmt.Errorf("page.margin: %w", err)
		}
	}
	if p.Leading != "" {
		if opts.Leading, err = layout.ParseLineHeight(p.Leading); err != nil {
			return opts, fmt.Errorf("page.leading: %w", err)
		}
	}
	if _, err := parseColor(p.Color); err != nil {
		return opts, fmt.Errorf("page.color: %w", err)
	}
	return opts, nil
}
