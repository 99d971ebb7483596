package translate

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"whisperxsubs/internal/config"
	"whisperxsubs/internal/logging"
	"whisperxsubs/internal/services"
	"whisperxsubs/internal/services/deepseek"
	"whisperxsubs/internal/services/llm"
	"whisperxsubs/internal/transcache"
)

type countingTranslator struct {
	calls  int
	result string
	err    error
}

func (c *countingTranslator) Translate(_ context.Context, text, _, target string) (string, error) {
	c.calls++
	if c.err != nil {
		return "", c.err
	}
	if c.result != "" {
		return c.result, nil
	}
	return target + ":" + text, nil
}

func TestFuncAndIdentity(t *testing.T) {
	var f Translator = Func(func(_ context.Context, text, source, target string) (string, error) {
		return source + ">" + target + ":" + text, nil
	})
	got, err := f.Translate(context.Background(), "hi", "en", "fr")
	if err != nil || got != "en>fr:hi" {
		t.Fatalf("Func.Translate = %q, %v", got, err)
	}
	got, _ = Identity.Translate(context.Background(), "same", "en", "fr")
	if got != "same" {
		t.Fatalf("Identity.Translate = %q", got)
	}
}

func TestCachedServesRepeatsFromStore(t *testing.T) {
	ctx := services.WithRunID(context.Background(), "run-1")
	store, err := transcache.Open(ctx, filepath.Join(t.TempDir(), "t.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	next := &countingTranslator{}
	cached := &Cached{Next: next, Store: store, Provider: "fake", Logger: logging.NewNop()}

	for i := 0; i < 3; i++ {
		got, err := cached.Translate(ctx, "Hello", "en", "fr")
		if err != nil || got != "fr:Hello" {
			t.Fatalf("Translate = %q, %v", got, err)
		}
	}
	if next.calls != 1 {
		t.Fatalf("expected one upstream call, got %d", next.calls)
	}

	if _, err := cached.Translate(ctx, "Hello", "en", "de"); err != nil {
		t.Fatal(err)
	}
	if next.calls != 2 {
		t.Fatalf("expected a separate call per target, got %d", next.calls)
	}
}

func TestCachedDoesNotStoreFailures(t *testing.T) {
	ctx := context.Background()
	store, err := transcache.Open(ctx, filepath.Join(t.TempDir(), "t.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	boom := errors.New("boom")
	next := &countingTranslator{err: boom}
	cached := &Cached{Next: next, Store: store, Provider: "fake"}
	if _, err := cached.Translate(ctx, "Hello", "en", "fr"); !errors.Is(err, boom) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	stats, err := store.Stats(ctx)
	if err != nil || stats.Entries != 0 {
		t.Fatalf("expected nothing cached, got %+v, %v", stats, err)
	}
}

func TestCachedWithoutStoreDelegates(t *testing.T) {
	next := &countingTranslator{result: "ok"}
	cached := &Cached{Next: next}
	for i := 0; i < 2; i++ {
		if got, _ := cached.Translate(context.Background(), "x", "en", "fr"); got != "ok" {
			t.Fatalf("Translate = %q", got)
		}
	}
	if next.calls != 2 {
		t.Fatalf("expected 2 calls, got %d", next.calls)
	}
}

func TestNewSelectsProvider(t *testing.T) {
	cfg := config.Default()

	cfg.Translation.Provider = config.ProviderNone
	if tr, err := New(&cfg); err != nil || tr != nil {
		t.Fatalf("expected nil translator for none, got %T, %v", tr, err)
	}

	cfg.Translation.Provider = config.ProviderLLM
	tr, err := New(&cfg)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := tr.(*llm.Client); !ok {
		t.Fatalf("expected *llm.Client, got %T", tr)
	}
	if _, ok := tr.(HealthChecker); !ok {
		t.Fatal("expected llm client to support health checks")
	}

	cfg.Translation.Provider = config.ProviderDeepSeek
	tr, err = New(&cfg)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := tr.(*deepseek.Client); !ok {
		t.Fatalf("expected *deepseek.Client, got %T", tr)
	}

	cfg.Translation.Provider = "babelfish"
	if _, err := New(&cfg); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestProviderID(t *testing.T) {
	cfg := config.Default()
	cfg.LLM.Model = "m1"
	if got := ProviderID(&cfg); got != "llm:m1" {
		t.Fatalf("ProviderID = %q", got)
	}
	cfg.Translation.Provider = config.ProviderNone
	if got := ProviderID(&cfg); got != "none" {
		t.Fatalf("ProviderID = %q", got)
	}
}
