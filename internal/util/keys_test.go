package util

import (
	"reflect"
	"testing"
)

func TestStorageKey(t *testing.T) {
	if got := StorageKey("", "k"); got != "k" {
		t.Fatalf("empty ns: got %q", got)
	}
	if got := StorageKey("user", "k"); got != "user:k" {
		t.Fatalf("ns: got %q", got)
	}
}

func TestGlobEscape(t *testing.T) {
	cases := map[string]string{
		"demo":     "demo",
		"a*b":      `a\*b`,
		"q?":       `q\?`,
		"[x]":      `\[x\]`,
		`back\sl`:  `back\\sl`,
		"caret^1":  `caret\^1`,
		"":         "",
		"demo:1:*": `demo:1:\*`,
	}
	for in, want := range cases {
		if got := GlobEscape(in); got != want {
			t.Fatalf("GlobEscape(%q) = %q want %q", in, got, want)
		}
	}
}

func TestMatchingKeysIsLiteralPrefix(t *testing.T) {
	keys := []string{"demo:1", "demo:2", "xdemo:1", "xxx:1", "demo"}
	got := MatchingKeys(keys, "demo")
	want := []string{"demo:1", "demo:2", "demo"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
	if got := MatchingKeys(keys, "nope"); len(got) != 0 {
		t.Fatalf("expected no matches, got %v", got)
	}
}
