package logger

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	coreconfig "github.com/m3rciful/shopbot/core/config"
)

// captureLine logs one event through a fresh handler and returns the written line.
func captureLine(t *testing.T, ctx context.Context, format logFormat, component string, level slog.Level, event string, attrs ...slog.Attr) string {
	t.Helper()
	buf := &bytes.Buffer{}
	aw := newAsyncWriter([]io.Writer{buf}, 64)
	h := newStructuredHandler(handlerConfig{
		level:    slog.LevelDebug,
		writer:   aw,
		format:   format,
		keyOrder: append([]string(nil), defaultKeyOrder...),
	})
	LogEvent(ctx, slog.New(h).With("component", component), level, event, attrs...)
	if err := aw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return strings.TrimSpace(buf.String())
}

func TestKVLineFollowsKeyOrder(t *testing.T) {
	ctx := WithMeta(Background(), Meta{RID: "rid-cart", UpdateID: 42, UserID: 7, ChatID: 9})
	line := captureLine(t, ctx, formatKV, "service.cart", slog.LevelInfo, "cart.add",
		slog.Int("quantity", 3),
		slog.Int64("service_id", 10),
		slog.String("status", "ok"),
		slog.Int("delta", 1),
	)

	order := []string{"ts=", "level=INFO", "component=service.cart", "event=cart.add", "status=ok", "rid=rid-cart",
		"update_id=42", "user_id=7", "chat_id=9", "service_id=10", "delta=1", "quantity=3"}
	pos := -1
	for _, key := range order {
		idx := strings.Index(line, key)
		if idx == -1 || idx < pos {
			t.Fatalf("%q missing or out of order in %s", key, line)
		}
		pos = idx
	}
}

func TestJSONLineCarriesErrorCode(t *testing.T) {
	ctx := WithMeta(Background(), Meta{RID: "11:22:33"})
	line := captureLine(t, ctx, formatJSON, "tg", slog.LevelError, "dispatch.failed",
		slog.String("status", "fail"),
		slog.String("token", "categoryList"),
		slog.String("err", "open: store unavailable"),
		slog.String("err_code", "STORE_UNAVAILABLE"),
	)
	for _, want := range []string{
		`{"ts":`, `"level":"ERROR"`, `"component":"tg"`, `"event":"dispatch.failed"`,
		`"rid":"` + CompactRID("11:22:33") + `"`, `"rid_full":"11:22:33"`,
		`"token":"categoryList"`, `"err_code":"STORE_UNAVAILABLE"`, `"ts_unix_nano"`,
	} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %s in %s", want, line)
		}
	}
}

func TestKVLineCompactsRIDWithoutFullForm(t *testing.T) {
	raw := "123:456:789"
	line := captureLine(t, WithMeta(Background(), Meta{RID: raw}), formatKV, "tg", slog.LevelInfo, "handler.handled",
		slog.String("status", "ok"),
	)
	if !strings.Contains(line, "rid="+CompactRID(raw)) {
		t.Fatalf("expected compact rid, got %s", line)
	}
	if strings.Contains(line, "rid_full=") {
		t.Fatalf("rid_full should be omitted in KV output, got %s", line)
	}
}

func TestDurationsAreMilliseconds(t *testing.T) {
	line := captureLine(t, Background(), formatKV, "news", slog.LevelDebug, "news.fetch",
		slog.Duration("duration", 1500*time.Millisecond),
		slog.Duration("startup_duration", 2*time.Second),
	)
	if !strings.Contains(line, "duration_ms=1500") || !strings.Contains(line, "startup_duration_ms=2000") {
		t.Fatalf("unexpected duration rendering: %s", line)
	}
}

func TestUnknownOutcomeDropped(t *testing.T) {
	line := captureLine(t, Background(), formatKV, "tg", slog.LevelInfo, "handler.handled",
		slog.String("outcome", "weird"),
	)
	if strings.Contains(line, "outcome=") {
		t.Fatalf("unexpected outcome in %s", line)
	}
}

func TestDurationKey(t *testing.T) {
	cases := map[string]string{
		"duration":         "duration_ms",
		"startup_duration": "startup_duration_ms",
		"took_ms":          "took_ms",
		"timeout":          "timeout_ms",
	}
	for in, want := range cases {
		if got := durationKey(in); got != want {
			t.Fatalf("durationKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRatioSampler(t *testing.T) {
	s := newRatioSampler(1, 3)
	var passed int
	for range 9 {
		if s.Allow() {
			passed++
		}
	}
	if passed != 3 {
		t.Fatalf("passed = %d, want 3", passed)
	}
	s.Set(0, 0)
	if !s.Allow() {
		t.Fatal("disabled sampler must allow everything")
	}
	if n, d := parseRatioSpec("2/10"); n != 2 || d != 10 {
		t.Fatalf("parseRatioSpec = %d/%d", n, d)
	}
}

func TestDiscardLoggerBeforeInit(t *testing.T) {
	if L.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("base logger should discard before InitLogger")
	}
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := &coreconfig.Config{}
	cfg.Logging.Level = "debug"
	cfg.Logging.Profile = "Dev"
	cfg.Logging.KeysOrder = "ts, event ,level"
	cfg.Logging.DebugSample = "5"
	cfg.Logging.Dir = "logs"
	cfg.Logging.BotFile = "shopbot.log"

	opts := optionsFrom(cfg)
	if opts.level != slog.LevelDebug || opts.format != formatKV || opts.profile != "dev" {
		t.Fatalf("unexpected options: %+v", opts)
	}
	if strings.Join(opts.keyOrder, ",") != "ts,event,level" {
		t.Fatalf("key order = %v", opts.keyOrder)
	}
	if opts.sample != [2]int{1, 5} {
		t.Fatalf("sample = %v", opts.sample)
	}
	if opts.file != filepath.Join("logs", "shopbot.log") {
		t.Fatalf("file = %q", opts.file)
	}

	if def := optionsFrom(nil); def.format != formatJSON || def.level != slog.LevelInfo {
		t.Fatalf("unexpected defaults: %+v", def)
	}
}

func TestWriterRejectsWritesAfterClose(t *testing.T) {
	buf := &bytes.Buffer{}
	w := newAsyncWriter([]io.Writer{buf}, 0)
	if err := w.Write([]byte("one\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := w.Write([]byte("two\n")); err == nil {
		t.Fatal("expected error after close")
	}
	if buf.String() != "one\n" {
		t.Fatalf("buffer = %q", buf.String())
	}
}

func TestSanitizeLimit(t *testing.T) {
	if got := SanitizeLimit("a\x00b\u200bc\td", 3); got != "abc" {
		t.Fatalf("SanitizeLimit = %q", got)
	}
	if got := SanitizeLimit("héllo", 0); got != "" {
		t.Fatalf("zero limit = %q", got)
	}
}
