package ghost

import "testing"

func TestParseVariants(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "plain array", input: `["a", "b", "c"]`, want: []string{"a", "b", "c"}},
		{name: "fenced", input: "```json\n[\"x\", \"y\", \"z\"]\n```", want: []string{"x", "y", "z"}},
		{name: "leading prose", input: "Sure! Here you go: [\"one\", \"two\", \"three\"] enjoy", want: []string{"one", "two", "three"}},
		{name: "truncated to three", input: `["1","2","3","4"]`, want: []string{"1", "2", "3"}},
		{name: "unescaped quotes fall back to split", input: `["He said "hi" twice", "plain", "x"]`, want: []string{`He said "hi" twice`, "plain", "x"}},
		{name: "blank entries dropped", input: `["", "ok", " "]`, want: []string{"ok"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseVariants(tc.input)
			if len(got) != len(tc.want) {
				t.Fatalf("expected %d variants, got %d: %q", len(tc.want), len(got), got)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("variant %d: expected %q, got %q", i, tc.want[i], got[i])
				}
			}
		})
	}
}
