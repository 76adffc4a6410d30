package prompt

import (
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	units := []string{"node-a", "node-b"}

	cases := []struct {
		in   string
		want Request
	}{
		{"all", Request{Merged: true}},
		{"  ALL  ", Request{Merged: true}},
		{"All", Request{Merged: true}},
		{"node-a", Request{Unit: "node-a"}},
		{" node-b ", Request{Unit: "node-b"}},
		{"1", Request{Unit: "node-a"}},
		{"2", Request{Unit: "node-b"}},
		{"3", Request{Unit: "3"}}, // out of range, taken verbatim
		{"0", Request{Unit: "0"}}, // numbering is 1-based
		{"-1", Request{Unit: "-1"}},
		{"", Request{}},
	}

	for _, c := range cases {
		if got := Parse(c.in, units); got != c.want {
			t.Errorf("Parse(%q) = %+v, want %+v", c.in, got, c.want)
		}
	}
}

func TestFprintMenu(t *testing.T) {
	var sb strings.Builder
	FprintMenu(&sb, []string{"node-a", "node-b"})
	out := sb.String()

	for _, want := range []string{"Available Units:", "1. node-a", "2. node-b", "'all'"} {
		if !strings.Contains(out, want) {
			t.Errorf("menu missing %q:\n%s", want, out)
		}
	}
}
