package text

import "testing"

func TestCollapseWhitespace(t *testing.T) {
	cases := []struct{ in, want string }{
		{"  hello   world  ", "hello world"},
		{"a\tb\nc", "a b c"},
		{"", ""},
		{"   ", ""},
	}
	for _, tc := range cases {
		if got := CollapseWhitespace(tc.in); got != tc.want {
			t.Errorf("CollapseWhitespace(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFold(t *testing.T) {
	if got := Fold("  Robot   ARM "); got != "robot arm" {
		t.Errorf("Fold() = %q", got)
	}
}

func TestNormalizeURL_StripsTrackingParams(t *testing.T) {
	a := NormalizeURL("https://example.com/post?utm_source=x&utm_medium=social")
	b := NormalizeURL("https://example.com/post")
	if a != b {
		t.Errorf("tracking params should not matter: %q vs %q", a, b)
	}
}

func TestNormalizeURL_SchemeInsensitive(t *testing.T) {
	a := NormalizeURL("http://example.com/post")
	b := NormalizeURL("https://example.com/post")
	if a != b {
		t.Errorf("scheme should not matter: %q vs %q", a, b)
	}
}

func TestNormalizeURL_TrailingSlashAndCase(t *testing.T) {
	a := NormalizeURL("https://Example.COM/post/")
	b := NormalizeURL("https://example.com/post")
	if a != b {
		t.Errorf("host case and trailing slash should not matter: %q vs %q", a, b)
	}
}

func TestNormalizeURL_KeepsMeaningfulParamsSorted(t *testing.T) {
	a := NormalizeURL("https://example.com/a?b=2&a=1&fbclid=zzz")
	b := NormalizeURL("https://example.com/a?a=1&b=2")
	if a != b {
		t.Errorf("meaningful params should survive in stable order: %q vs %q", a, b)
	}
	c := NormalizeURL("https://example.com/a?a=1&b=3")
	if a == c {
		t.Error("different param values must not collide")
	}
}

func TestNormalizeURL_Unparseable(t *testing.T) {
	if got := NormalizeURL("Not a URL/"); got != "not a url" {
		t.Errorf("NormalizeURL() = %q, want lowercase fallback", got)
	}
	if got := NormalizeURL(""); got != "" {
		t.Errorf("NormalizeURL(\"\") = %q", got)
	}
}

func TestValidURL(t *testing.T) {
	valid := []string{"https://example.com/x", "http://a.b/c?d=1"}
	for _, u := range valid {
		if !ValidURL(u) {
			t.Errorf("ValidURL(%q) = false", u)
		}
	}
	invalid := []string{"example.com/x", "ftp://example.com", "http://", "://bad", "just words"}
	for _, u := range invalid {
		if ValidURL(u) {
			t.Errorf("ValidURL(%q) = true", u)
		}
	}
}
