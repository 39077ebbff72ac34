package config

import (
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/ByLCY/justify/dsl"
	"github.com/ByLCY/justify/layout"
)

// Settings 是任务文件中的断行设置；nil 字段表示未设置，保留上一层的值。
type Settings struct {
	Width       *int    `mapstructure:"width"`
	Exponent    *int    `mapstructure:"exponent"`
	Algorithm   *string `mapstructure:"algorithm"`
	Hyphenate   *bool   `mapstructure:"hyphenate"`
	Penalty     *int64  `mapstructure:"penalty"`
	Marker      *string `mapstructure:"marker"`
	MinFragment *int    `mapstructure:"min_fragment"`
}

// Page describes PDF geometry. Lengths stay as written and are parsed by the
// canvas renderer.
type Page struct {
	Size    string `mapstructure:"size"`
	Margin  string `mapstructure:"margin"`
	Font    string `mapstructure:"font"`
	Leading string `mapstructure:"leading"`
	Color   string `mapstructure:"color"`
}

// Meta is copied into the PDF document info.
type Meta struct {
	Title    string   `mapstructure:"title"`
	Subject  string   `mapstructure:"subject"`
	Author   string   `mapstructure:"author"`
	Keywords []string `mapstructure:"keywords"`
}

// Job 是解析后的任务文件。
type Job struct {
	Name     string
	Settings Settings
	Page     Page
	Meta     Meta
	Text     string
}

// FromDocument 把 DSL 文档解码为 Job，未知的键会报错。
func FromDocument(doc *dsl.Document) (*Job, error) {
	if doc == nil {
		return nil, fmt.Errorf("文档为空")
	}
	job := &Job{Name: doc.Name, Text: doc.Text()}

	settings, err := doc.Settings()
	if err != nil {
		return nil, err
	}
	if err := decode(settings, &job.Settings); err != nil {
		return nil, fmt.Errorf("解析断行设置失败: %w", err)
	}
	page, err := doc.Page()
	if err != nil {
		return nil, err
	}
	if err := decode(page, &job.Page); err != nil {
		return nil, fmt.Errorf("解析 page 段落失败: %w", err)
	}
	meta, err := doc.Meta()
	if err != nil {
		return nil, err
	}
	if err := decode(meta, &job.Meta); err != nil {
		return nil, fmt.Errorf("解析 meta 段落失败: %w", err)
	}
	return job, nil
}

func decode(input map[string]any, out any) error {
	if input == nil {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

// Apply overlays the job settings on c.
func (c Config) Apply(s Settings) Config {
	if s.Width != nil {
		c.Width = *s.Width
	}
	if s.Exponent != nil {
		c.Exponent = *s.Exponent
	}
	if s.Algorithm != nil {
		c.Algorithm = *s.Algorithm
	}
	if s.Hyphenate != nil {
		c.Hyphenate = *s.Hyphenate
	}
	if s.Penalty != nil {
		c.Penalty = *s.Penalty
	}
	if s.Marker != nil {
		c.Marker = *s.Marker
	}
	if s.MinFragment != nil {
		c.MinFragment = *s.MinFragment
	}
	return c
}

// Options resolves the job against the defaults in c.
func (j *Job) Options(c Config) layout.Options {
	return c.Apply(j.Settings).Options()
}
