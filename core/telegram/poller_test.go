package telegram

import (
	"errors"
	"strings"
	"testing"
	"time"

	tele "gopkg.in/telebot.v4"
)

func TestBuildPollerWebhook(t *testing.T) {
	p := BuildPoller(PollerOptions{
		RunMode: "Webhook",
		Webhook: WebhookOptions{Listen: "0.0.0.0", Port: 8443, URL: "https://bot.example.com/hook"},
	})
	wh, ok := p.(*tele.Webhook)
	if !ok {
		t.Fatalf("expected *tele.Webhook, got %T", p)
	}
	if wh.Listen != "0.0.0.0:8443" {
		t.Fatalf("listen = %q", wh.Listen)
	}
	if wh.Endpoint == nil || wh.Endpoint.PublicURL != "https://bot.example.com/hook" {
		t.Fatalf("unexpected endpoint: %+v", wh.Endpoint)
	}
}

func TestBuildPollerLongpollDefaultTimeout(t *testing.T) {
	p := BuildPoller(PollerOptions{RunMode: "longpoll"})
	lp, ok := p.(*tele.LongPoller)
	if !ok {
		t.Fatalf("expected *tele.LongPoller, got %T", p)
	}
	if lp.Timeout != 10*time.Second {
		t.Fatalf("timeout = %v, want 10s", lp.Timeout)
	}
}

func TestBuildHTTPClientOutlivesPoll(t *testing.T) {
	c := BuildHTTPClient(25 * time.Second)
	if c.Timeout <= 25*time.Second {
		t.Fatalf("client timeout %v must exceed poll timeout", c.Timeout)
	}
}

func TestRedactToken(t *testing.T) {
	err := errors.New(`Post "https://api.telegram.org/bot123:abc/getMe": dial tcp: timeout`)
	got := redactToken(err, "123:abc").Error()
	if strings.Contains(got, "123:abc") || !strings.Contains(got, "bot<redacted>/getMe") {
		t.Fatalf("token not redacted: %s", got)
	}
	if redactToken(nil, "123:abc") != nil {
		t.Fatal("nil error must stay nil")
	}
}
