package format

import "testing"

func TestEscapeAndWrap(t *testing.T) {
	if got := Bold("Tom & <Jerry>"); got != "<b>Tom &amp; &lt;Jerry&gt;</b>" {
		t.Fatalf("Bold = %q", got)
	}
	if got := Link(`say "hi"`, "https://example.com/?a=1&b=2"); got != `<a href="https://example.com/?a=1&amp;b=2">say &#34;hi&#34;</a>` {
		t.Fatalf("Link = %q", got)
	}
	if got := Link("plain", " "); got != "plain" {
		t.Fatalf("Link without href = %q", got)
	}
}

func TestLinesSkipsEmpty(t *testing.T) {
	if got := Lines("a", "", "b"); got != "a\nb" {
		t.Fatalf("Lines = %q", got)
	}
}
