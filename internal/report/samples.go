package report

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
)

// 内置示例段落，用于 compare 命令在没有输入时的演示。
var samples = map[string]string{
	"en": "Algorithms are great. Dynamic programming solves the text justification problem optimally. " +
		"The Greedy approach is faster but does not guarantee the best overall solution. " +
		"We must analyze both time complexity and the quality of the output.",
	"mn": "Оновчлолын алгоритмууд нь програм хангамжийн бүтцэд чухал үүрэг гүйцэтгэдэг. " +
		"Динамик программчлал нь бичвэрийг хамгийн бага алдагдалтайгаар жигдлэх оновчтой шийдлийг олох боломжийг олгодог. " +
		"Шуналтай арга нь хурдан боловч оновчтой бус байх магадлалтай. " +
		"Бидний гол зорилго бол хурд болон үр дүнгийн чанарыг харьцуулах явдал юм.",
}

// SampleNames lists the built-in paragraphs.
func SampleNames() []string {
	names := make([]string, 0, len(samples))
	for name := range samples {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Sample returns a built-in paragraph by name.
func Sample(name string) (string, error) {
	text, ok := samples[name]
	if !ok {
		return "", fmt.Errorf("未知的示例 %q，可选: %s", name, strings.Join(SampleNames(), ", "))
	}
	return text, nil
}

// RandomText 生成 words 个随机小写单词，长度在 [3, avgLen+3] 之间均匀分布。
func RandomText(r *rand.Rand, words, avgLen int) string {
	if words <= 0 {
		return ""
	}
	if avgLen <= 0 {
		avgLen = 5
	}
	var b strings.Builder
	for i := 0; i < words; i++ {
		if i > 0 {
			b.WriteByte(' ')
		}
		n := 3 + r.IntN(avgLen+1)
		for j := 0; j < n; j++ {
			b.WriteByte(byte('a' + r.IntN(26)))
		}
	}
	return b.String()
}
