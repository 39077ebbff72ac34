package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/justify/dsl"
	"github.com/ByLCY/justify/layout"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "justify.yaml")
	yml := "width: 60\nhyphenate: true\nlog_level: debug\ncache:\n  redis: localhost:6379\n  ttl: 30s\n"
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 60, cfg.Width)
	assert.True(t, cfg.Hyphenate)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "localhost:6379", cfg.Cache.Redis)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
	assert.Equal(t, "justify:", cfg.Cache.Prefix, "未出现的键保留默认值")
	assert.Equal(t, 3, cfg.Exponent)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("width: [1, 2"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestConfigOptions(t *testing.T) {
	cfg := Default()
	cfg.MinFragment = 2
	opts := cfg.Options()
	assert.Equal(t, 40, opts.Width)
	assert.Equal(t, layout.AlgorithmOptimal, opts.Algorithm)
	assert.Equal(t, layout.FragmentHyphenator{MinFragment: 2}, opts.Hyphenator)
	require.NoError(t, cfg.Validate())

	cfg.Width = 0
	assert.ErrorIs(t, cfg.Validate(), layout.ErrInvalidWidth)
}

func TestFromDocument(t *testing.T) {
	doc, err := dsl.ParseString(`justify Job v1 {
  width: 24
  hyphenate: true
  page { size: 12pt; margin: 10mm; font: "mono.ttf" }
  meta { title: "T"; keywords: ["a", "b"] }
  text { "one two" "three" }
}`)
	require.NoError(t, err)

	job, err := FromDocument(doc)
	require.NoError(t, err)
	assert.Equal(t, "Job", job.Name)
	assert.Equal(t, "one two three", job.Text)
	assert.Equal(t, "12pt", job.Page.Size)
	assert.Equal(t, "mono.ttf", job.Page.Font)
	assert.Equal(t, []string{"a", "b"}, job.Meta.Keywords)
	require.NotNil(t, job.Settings.Width)
	assert.Nil(t, job.Settings.Exponent)

	base := Default()
	base.Exponent = 2
	opts := job.Options(base)
	assert.Equal(t, 24, opts.Width)
	assert.Equal(t, 2, opts.Exponent, "任务文件未设置的值沿用配置文件")
	assert.True(t, opts.Hyphenate)
}

func TestFromDocumentRejectsUnknownKeys(t *testing.T) {
	doc, err := dsl.ParseString("justify Job v1 {\n  widht: 24\n}")
	require.NoError(t, err)
	_, err = FromDocument(doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "widht")
}

func TestLoadOverKeepsBaseForAbsentKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "justify.yaml")
	require.NoError(t, os.WriteFile(path, []byte("exponent: 2\n"), 0o644))

	base := Default()
	base.Width = 100
	cfg, err := LoadOver(path, base)
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.Width)
	assert.Equal(t, 2, cfg.Exponent)

	cfg, err = LoadOver("", base)
	require.NoError(t, err)
	assert.Equal(t, base, cfg)
}
