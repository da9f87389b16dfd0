package excerpt

import "testing"

func TestPlain(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain text", in: "  Breaking   news\n today ", want: "Breaking news today"},
		{name: "paragraphs", in: "<p>Hello</p><p>world</p>", want: "Hello world"},
		{name: "inline markup", in: "<p>Hello <strong>big</strong> world</p>", want: "Hello big world"},
		{name: "entities", in: "Tom &amp; Jerry &lt;3", want: "Tom & Jerry <3"},
		{name: "script dropped", in: "<p>Safe</p><script>alert(1)</script><style>p{}</style>", want: "Safe"},
		{name: "line break", in: "one<br/>two", want: "one two"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Plain(tc.in); got != tc.want {
				t.Fatalf("Plain(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		width int
		want  string
	}{
		{name: "fits", in: "short", width: 10, want: "short"},
		{name: "exact", in: "abcde", width: 5, want: "abcde"},
		{name: "cut", in: "abcdefgh", width: 5, want: "abcd…"},
		{name: "trailing space trimmed", in: "abc defgh", width: 5, want: "abc…"},
		{name: "wide runes", in: "日本語テキスト", width: 7, want: "日本語…"},
		{name: "zero width", in: "abc", width: 0, want: ""},
		{name: "only ellipsis fits", in: "abc", width: 1, want: "…"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Truncate(tc.in, tc.width); got != tc.want {
				t.Fatalf("Truncate(%q, %d) = %q, want %q", tc.in, tc.width, got, tc.want)
			}
		})
	}
}

func TestSummary(t *testing.T) {
	got := Summary("<p>Elections in <em>Kinshasa</em> draw record turnout</p>", 20)
	if got != "Elections in Kinsha…" {
		t.Fatalf("Summary() = %q", got)
	}
}
