package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPick(t *testing.T) {
	all := map[string]string{"li_at": "a", "JSESSIONID": "b", "lidc": ""}

	got, missing := pick(all, []string{"li_at", "JSESSIONID"})
	if missing != "" {
		t.Fatalf("pick() missing = %q, want none", missing)
	}
	if diff := cmp.Diff(map[string]string{"li_at": "a", "JSESSIONID": "b"}, got); diff != "" {
		t.Errorf("pick() mismatch (-want +got):\n%s", diff)
	}

	for _, names := range [][]string{{"li_at", "lidc"}, {"bcookie"}} {
		if _, missing := pick(all, names); missing != names[len(names)-1] {
			t.Errorf("pick(%q) missing = %q, want %q", names, missing, names[len(names)-1])
		}
	}
}

func TestMask(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"short", "*****"},
		{"AQEDAR0123456789xyz", "AQED***********9xyz"},
	}
	for _, tt := range tests {
		if got := mask(tt.in); got != tt.want {
			t.Errorf("mask(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSummarize(t *testing.T) {
	var buf bytes.Buffer
	summarize(&buf, []string{"li_at", "JSESSIONID"})
	if !strings.Contains(buf.String(), "  - li_at\n  - JSESSIONID\n") {
		t.Errorf("summarize() = %q, want both cookies listed", buf.String())
	}

	buf.Reset()
	summarize(&buf, nil)
	if !strings.Contains(buf.String(), "all combinations failed") {
		t.Errorf("summarize(nil) = %q, want failure note", buf.String())
	}
}
