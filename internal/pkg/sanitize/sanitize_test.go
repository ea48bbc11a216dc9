package sanitize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

var maliciousCorpus = []string{
	"<script>alert(1)</script>",
	"<img src=x onerror=alert(1)>",
	"javascript:alert(1)",
	"<svg/onload=alert(1)>",
	"<scr<script>ipt>alert(1)</scr</script>ipt>",
	"JaVaScRiPt:alert(document.cookie)",
	"<iframe src=\"https://evil.example\"></iframe>",
	"<div onclick='steal()'>press</div>",
	"<a href=\"vbscript:msgbox(1)\">x</a>",
	"data:text/html;base64,PHNjcmlwdD4=",
	"eval(atob('YWxlcnQoMSk='))",
	"x.innerHTML = payload",
	"document.write('<script src=//evil>')",
	"&#106;avascript:alert(1)",
	"<style>@import url(evil)</style>",
}

func TestBlocksScriptVectors(t *testing.T) {
	s := New(DefaultMaxLen)
	for _, payload := range maliciousCorpus {
		out := s.Clean(payload)
		lower := strings.ToLower(out)
		assert.NotContains(t, lower, "<script", "payload %q", payload)
		assert.NotContains(t, lower, "<iframe", "payload %q", payload)
		assert.NotContains(t, lower, "onerror=", "payload %q", payload)
		assert.NotContains(t, lower, "onload=", "payload %q", payload)
		assert.NotContains(t, lower, "onclick=", "payload %q", payload)
		assert.NotContains(t, lower, "javascript:", "payload %q", payload)
		assert.NotContains(t, lower, "vbscript:", "payload %q", payload)
	}
}

func TestIdempotent(t *testing.T) {
	s := New(DefaultMaxLen)
	corpus := append([]string{
		"hello world",
		"  plain text with spaces  ",
		"my favorite song is great!",
		"check out 10.0.0.1 and https://example.com/page",
		"a < b but c > d",
		"tom & jerry &amp; friends",
		"",
	}, maliciousCorpus...)
	for _, payload := range corpus {
		once := s.Clean(payload)
		assert.Equal(t, once, s.Clean(once), "payload %q", payload)
	}
}

func TestPlainTextSurvives(t *testing.T) {
	s := New(DefaultMaxLen)
	assert.Equal(t, "just saying hi to everyone", s.Clean("just saying hi to everyone"))
	assert.Equal(t, "what a great track", s.Clean("  what a great track  "))
}

func TestKeywordWordBoundaries(t *testing.T) {
	s := New(DefaultMaxLen)
	assert.Equal(t, "description and prescription", s.Clean("description and prescription"),
		"keywords inside larger words stay untouched")
	assert.Contains(t, s.Clean("run script now"), Blocked)
}

func TestRedactsAddressesAndLinks(t *testing.T) {
	s := New(DefaultMaxLen)
	out := s.Clean("ping 192.168.1.1 or visit http://example.com/a?b=c")
	assert.NotContains(t, out, "192.168.1.1")
	assert.NotContains(t, out, "http://")
	assert.Contains(t, out, Redacted)
}

func TestStripTagsAndEntities(t *testing.T) {
	s := New(DefaultMaxLen)
	assert.Equal(t, "boldtext", s.Clean("<b>bold</b>text"))
	assert.Equal(t, "ab", s.Clean("a&amp;b"))
}

func TestTruncates(t *testing.T) {
	s := New(10)
	long := strings.Repeat("a", 50)
	assert.Len(t, s.Clean(long), 10)

	assert.Equal(t, s.Clean(long), s.Clean(s.Clean(long)), "truncation stays idempotent")
}

func TestObfuscatedNesting(t *testing.T) {
	s := New(DefaultMaxLen)
	out := strings.ToLower(s.Clean("<scr<script>ipt>alert(1)</script>"))
	assert.NotContains(t, out, "<script")
	assert.NotContains(t, out, "alert(")
}
