package feed

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestCleanDescription(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"plain text", "Seramik kupa", "Seramik kupa"},
		{"strips tags", "<p>Seramik <b>kupa</b></p>", "Seramik kupa"},
		{"strips tags with attributes", `<a href="/x" class="y">link</a>`, "link"},
		{"decodes entities", "A &amp; B &lt;3 &gt; &quot;q&quot; &#39;s&#39;", `A & B <3 > "q" 's'`},
		{"nbsp becomes space", "a&nbsp;&nbsp;b", "a b"},
		{"leaves other entities", "&copy; &#8217; &euro;", "&copy; &#8217; &euro;"},
		{"entities decode in sequence", "&amp;lt;b&amp;gt;", "<b>"},
		{"collapses whitespace", "  a \n\t b\r\n\nc  ", "a b c"},
		{"tags then whitespace", "<p>a</p>\n<p>b</p>", "a b"},
		{"decoded angle brackets survive", "&lt;p&gt;kept&lt;/p&gt;", "<p>kept</p>"},
		{"only tags", "<br/><hr>", ""},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := cleanDescription(test.input); got != test.expected {
				t.Errorf("cleanDescription(%q) = %q, expected %q", test.input, got, test.expected)
			}
		})
	}
}

func TestCleanDescriptionTruncation(t *testing.T) {
	exact := strings.Repeat("a", 500)
	if got := cleanDescription(exact); got != exact {
		t.Error("500 characters should not be truncated")
	}

	long := strings.Repeat("a", 501)
	got := cleanDescription(long)
	if utf8.RuneCountInString(got) != 500 {
		t.Errorf("Expected 500 characters, got %d", utf8.RuneCountInString(got))
	}
	if !strings.HasSuffix(got, "...") {
		t.Error("Truncated description should end with ellipsis")
	}
	if got[:497] != strings.Repeat("a", 497) {
		t.Error("Truncated description should keep the first 497 characters")
	}
}

func TestCleanDescriptionTruncatesByCodePoint(t *testing.T) {
	long := strings.Repeat("ş", 600)
	got := cleanDescription(long)

	if !utf8.ValidString(got) {
		t.Fatal("Truncation should not split multi-byte characters")
	}
	if utf8.RuneCountInString(got) != 500 {
		t.Errorf("Expected 500 code points, got %d", utf8.RuneCountInString(got))
	}
	if !strings.HasPrefix(got, strings.Repeat("ş", 497)) {
		t.Error("Expected the first 497 code points to be kept")
	}
}

func TestCleanDescriptionKeepsCombiningMarks(t *testing.T) {
	// "e" + U+0301 COMBINING ACUTE ACCENT stays two code points
	if got := cleanDescription("Cafe\u0301"); got != "Cafe\u0301" {
		t.Errorf("Expected decomposed text to pass through unchanged, got %q", got)
	}

	decomposed := strings.Repeat("s\u0327", 300)
	got := cleanDescription(decomposed)

	if utf8.RuneCountInString(got) != 500 {
		t.Errorf("Expected 500 code points, got %d", utf8.RuneCountInString(got))
	}
	if !strings.HasPrefix(decomposed, strings.TrimSuffix(got, "...")) {
		t.Error("Expected the first 497 code points of the input to be kept")
	}
}

func TestCleanDescriptionLengthBound(t *testing.T) {
	inputs := []string{
		strings.Repeat("<b>word</b> ", 200),
		strings.Repeat("&amp;", 1000),
		strings.Repeat("x ", 1000),
		strings.Repeat("ğ\n", 700),
	}

	for _, input := range inputs {
		got := cleanDescription(input)
		if n := utf8.RuneCountInString(got); n > 500 {
			t.Errorf("Output length %d exceeds 500", n)
		}
	}
}

func TestCleanDescriptionIdempotentOnCleanText(t *testing.T) {
	inputs := []string{
		"Seramik kupa",
		"El yapımı, fırınlanmış çamur.",
		strings.Repeat("b", 500),
		"",
	}

	for _, input := range inputs {
		once := cleanDescription(input)
		twice := cleanDescription(once)
		if once != twice {
			t.Errorf("cleanDescription not idempotent for %q: %q vs %q", input, once, twice)
		}
	}
}

func TestSplitTags(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"", nil},
		{"   ", nil},
		{"a, b ,c", []string{"a", "b", "c"}},
		{"single", []string{"single"}},
		{"a,b,", []string{"a", "b"}},
		{"a,,b", []string{"a", "b"}},
		{" , a , ", []string{"a"}},
		{"el yapımı, hediye", []string{"el yapımı", "hediye"}},
	}

	for _, test := range tests {
		got := splitTags(test.input)
		if strings.Join(got, "|") != strings.Join(test.expected, "|") || len(got) != len(test.expected) {
			t.Errorf("splitTags(%q) = %v, expected %v", test.input, got, test.expected)
		}
	}
}
