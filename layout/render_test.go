package layout

import "testing"

func TestRenderLine(t *testing.T) {
	cases := []struct {
		name      string
		words     []string
		width     int
		leftAlign bool
		want      string
	}{
		{"final", []string{"a", "b", "c"}, 7, true, "a b c  "},
		{"even", []string{"a", "b", "c"}, 7, false, "a  b  c"},
		{"extra-left", []string{"a", "b", "c"}, 8, false, "a   b  c"},
		{"single-word", []string{"hi"}, 5, false, "hi   "},
		{"empty", nil, 3, false, "   "},
		{"too-tight", []string{"aaa", "bbb", "ccc"}, 9, false, "aaa bbb ccc"},
		{"multibyte", []string{"бичвэр", "ба"}, 10, false, "бичвэр  ба"},
	}
	for _, c := range cases {
		if got := RenderLine(c.words, c.width, c.leftAlign); got != c.want {
			t.Fatalf("%s: 期望 %q，实际 %q", c.name, c.want, got)
		}
	}
}

func TestPadIdempotent(t *testing.T) {
	for _, line := range []string{"", "ab", "a  b", "бичвэр", "wider than five"} {
		once := Pad(line, 5)
		if twice := Pad(once, 5); twice != once {
			t.Fatalf("Pad 不幂等: %q -> %q -> %q", line, once, twice)
		}
		if Width(line) <= 5 && Width(once) != 5 {
			t.Fatalf("Pad(%q) 宽度 %d", line, Width(once))
		}
	}
}

func TestLineRenderLeftAlignsHyphenated(t *testing.T) {
	ln := Line{Words: []string{"ab", "cd-"}, Hyphenated: true}
	if got := ln.Render(8); got != "ab cd-  " {
		t.Fatalf("断词行应左对齐，实际 %q", got)
	}
}
