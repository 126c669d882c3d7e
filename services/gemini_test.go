package services

import "testing"

func TestCleanJSONStripsMarkdownFences(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"fenced no lang", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"whitespace", "  {\"a\":1}  \n", `{"a":1}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CleanJSON(tc.in); got != tc.want {
				t.Errorf("CleanJSON(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestParseJSONObjectNeverErrors(t *testing.T) {
	if got := ParseJSONObject("not json at all"); len(got) != 0 {
		t.Errorf("malformed input must collapse to empty object, got %v", got)
	}
	if got := ParseJSONObject("null"); len(got) != 0 {
		t.Errorf("null must collapse to empty object, got %v", got)
	}
	got := ParseJSONObject("```json\n{\"feedback\": \"ok\"}\n```")
	if got["feedback"] != "ok" {
		t.Errorf("fenced object not parsed, got %v", got)
	}
}
