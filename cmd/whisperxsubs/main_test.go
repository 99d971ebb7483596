package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"whisperxsubs/internal/testsupport"
)

type cliTestEnv struct {
	baseDir    string
	configPath string
	outputDir  string
	cacheDir   string
	input      string
}

type envOption func(*envConfig)

type envConfig struct {
	targets  []string
	provider string
	baseURL  string
}

func withTranslation(baseURL string, targets ...string) envOption {
	return func(c *envConfig) {
		c.provider = "llm"
		c.baseURL = baseURL
		c.targets = targets
	}
}

func setupCLITestEnv(t *testing.T, opts ...envOption) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	home := filepath.Join(base, "home")
	if err := os.MkdirAll(home, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", home)
	t.Setenv("OPENROUTER_API_KEY", "")
	t.Setenv("LLM_API_KEY", "")
	t.Setenv("DEEPSEEK_API_KEY", "")
	t.Setenv("NO_COLOR", "1")

	ec := envConfig{provider: "none"}
	for _, opt := range opts {
		opt(&ec)
	}

	env := &cliTestEnv{
		baseDir:    base,
		configPath: filepath.Join(base, "config.toml"),
		outputDir:  filepath.Join(base, "out"),
		cacheDir:   filepath.Join(base, "cache"),
		input:      filepath.Join(base, "input", "talk.json"),
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[subtitles]\nmax_chars = 15\ntarget_languages = [%s]\n\n", quoteList(ec.targets))
	fmt.Fprintf(&b, "[translation]\nprovider = %q\n\n", ec.provider)
	if ec.baseURL != "" {
		fmt.Fprintf(&b, "[llm]\napi_key = \"test-key\"\nbase_url = %q\nmodel = \"test/model\"\n\n", ec.baseURL)
	}
	fmt.Fprintf(&b, "[paths]\noutput_dir = %q\ncache_dir = %q\nlog_dir = %q\n\n",
		env.outputDir, env.cacheDir, filepath.Join(base, "logs"))
	if err := os.WriteFile(env.configPath, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	testsupport.WriteTranscript(t, env.input, testsupport.Greeting())
	return env
}

func quoteList(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return strings.Join(quoted, ", ")
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

// translationServer answers every chat completion with a fixed translation
// per target language, detected from the system prompt.
func translationServer(t *testing.T, translations map[string]string) (*httptest.Server, *int) {
	t.Helper()
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		var req struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		content := `{"ok":true}`
		if len(req.Messages) > 0 {
			system := req.Messages[0].Content
			for name, text := range translations {
				if strings.Contains(system, name) {
					payload, _ := json.Marshal(map[string]string{"translation": text})
					content = string(payload)
				}
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{map[string]any{
				"finish_reason": "stop",
				"message":       map[string]any{"content": content},
			}},
		})
	}))
	t.Cleanup(server.Close)
	return server, &calls
}
