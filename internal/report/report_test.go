package report

import (
	"context"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ByLCY/justify/layout"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestCompareSample(t *testing.T) {
	text, err := Sample("en")
	require.NoError(t, err)

	rep, err := Compare(context.Background(), text, layout.DefaultOptions(40))
	require.NoError(t, err)
	require.NotNil(t, rep.Greedy.Result)
	require.NotNil(t, rep.Optimal.Result)

	assert.Equal(t, layout.AlgorithmGreedy, rep.Greedy.Algorithm)
	assert.Equal(t, layout.AlgorithmOptimal, rep.Optimal.Algorithm)
	assert.Equal(t, len(layout.Tokenize(text)), rep.Tokens)
	assert.LessOrEqual(t, rep.Optimal.Result.Badness, rep.Greedy.Result.Badness)
	assert.Positive(t, rep.Optimal.Footprint)
	assert.Nil(t, rep.Optimal.Result.Table, "报告不保留 DP 表")
	assert.Zero(t, rep.Greedy.Footprint)
}

func TestCompareMongolianWidths(t *testing.T) {
	text, err := Sample("mn")
	require.NoError(t, err)
	rep, err := Compare(context.Background(), text, layout.DefaultOptions(40))
	require.NoError(t, err)
	for _, run := range []Run{rep.Greedy, rep.Optimal} {
		for _, ln := range run.Result.Rendered {
			assert.Equal(t, 40, layout.Width(ln), "%s: %q", run.Algorithm, ln)
		}
	}
}

func TestCompareInfeasibleOptimal(t *testing.T) {
	rep, err := Compare(context.Background(), "a abcdefghij b", layout.DefaultOptions(5))
	require.NoError(t, err)
	require.NotNil(t, rep.Greedy.Result)
	assert.True(t, rep.Greedy.Result.Lines[1].Overflow)
	assert.Nil(t, rep.Optimal.Result)
	assert.ErrorIs(t, rep.Optimal.Err, layout.ErrInfeasible)

	md := rep.Markdown()
	assert.Contains(t, md, "infeasible")
	assert.Contains(t, md, "abcdefghij")
}

func TestCompareRejectsInvalidOptions(t *testing.T) {
	_, err := Compare(context.Background(), "text", layout.DefaultOptions(0))
	assert.ErrorIs(t, err, layout.ErrInvalidWidth)
}

func TestCompareCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Compare(ctx, "some words", layout.DefaultOptions(10))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMarkdown(t *testing.T) {
	rep, err := Compare(context.Background(), "aaa bb cc ddddd", layout.Options{Width: 6, Exponent: 2})
	require.NoError(t, err)
	rep.Title = "Demo"
	md := rep.Markdown()

	assert.True(t, strings.HasPrefix(md, "# Demo\n"))
	assert.Contains(t, md, "Line width **6**, 4 tokens.")
	assert.Contains(t, md, "| badness | 16 | 10 |")
	assert.Contains(t, md, "|aaa bb| (6)")
	assert.Contains(t, md, "|bb  cc| (6)")
	assert.Contains(t, md, "## greedy")
	assert.Contains(t, md, "## optimal")
}

func TestRenderPlain(t *testing.T) {
	out, err := Render("# Title\n", true)
	require.NoError(t, err)
	assert.Equal(t, "# Title\n", out)
}

func TestRenderGlamour(t *testing.T) {
	out, err := Render("# Title\n\nbody text\n", false)
	require.NoError(t, err)
	assert.Contains(t, out, "Title")
	assert.Contains(t, out, "body text")
}

func TestRandomText(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	text := RandomText(r, 500, 5)
	words := strings.Fields(text)
	require.Len(t, words, 500)
	for _, w := range words {
		assert.GreaterOrEqual(t, len(w), 3)
		assert.LessOrEqual(t, len(w), 8)
		assert.Equal(t, strings.ToLower(w), w)
	}

	again := RandomText(rand.New(rand.NewPCG(1, 2)), 500, 5)
	assert.Equal(t, text, again, "相同种子生成相同文本")
	assert.Empty(t, RandomText(r, 0, 5))
}

func TestSample(t *testing.T) {
	assert.Equal(t, []string{"en", "mn"}, SampleNames())
	_, err := Sample("fr")
	assert.ErrorContains(t, err, "en, mn")
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "-", formatBytes(0))
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "1.5 KiB", formatBytes(1536))
	assert.Equal(t, "2.0 MiB", formatBytes(2<<20))
}
