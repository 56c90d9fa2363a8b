package httpmsg

import "testing"

func TestPercentDecode(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"hello", "hello"},
		{"a%20b", "a b"},
		{"a+b", "a+b"}, // '+' is never mapped to a space
		{"100%25", "100%"},
		{"%2e%2e", ".."},
		{"trailing%", "trailing%"},    // truncated escape passes through
		{"trailing%2", "trailing%2"},  // truncated escape passes through
		{"%gg", "%gg"},                // non-hex digits: not an escape
	}
	for _, c := range cases {
		if got := PercentDecode(c.in); got != c.want {
			t.Errorf("PercentDecode(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
