package dispatcher

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"quicktranslate/internal/service/translate"
	"quicktranslate/internal/service/translate/glm"
	"quicktranslate/internal/service/translate/tencent"
	"quicktranslate/internal/settings"
)

type fakeSource struct {
	snap  settings.Snapshot
	err   error
	calls int
}

func (f *fakeSource) Snapshot() (settings.Snapshot, error) {
	f.calls++
	return f.snap, f.err
}

type countingTransport struct{ calls atomic.Int32 }

func (c *countingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	c.calls.Add(1)
	return nil, errors.New("transport must not be used")
}

type stubEngine struct {
	name string
	out  string
	err  error
}

func (s stubEngine) Name() string { return s.name }
func (s stubEngine) Translate(context.Context, translate.Request, settings.Snapshot) (string, error) {
	return s.out, s.err
}

func TestTranslateEndToEndWithChatEngine(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		var body struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if len(body.Messages) != 2 {
			t.Errorf("messages = %+v", body.Messages)
		} else {
			sys := body.Messages[0].Content
			if !strings.Contains(sys, "中文") || !strings.Contains(sys, translate.ToneFormal.Instruction()) {
				t.Errorf("system prompt = %q", sys)
			}
			if body.Messages[1].Content != "Hello" {
				t.Errorf("user content = %q", body.Messages[1].Content)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"` + "```text\\n您好\\n```" + `"}}]}`))
	}))
	defer srv.Close()

	src := &fakeSource{snap: settings.Snapshot{
		ActiveEngine: settings.EngineZhipu,
		Zhipu:        settings.APIKeyCredentials{APIKey: "zk"},
	}}
	d := New(src, nil, glm.New(glm.Config{BaseURL: srv.URL, HTTPClient: srv.Client()}))

	out, err := d.Translate(context.Background(), "Hello", "zh", "Formal")
	if err != nil {
		t.Fatalf("Translate() error: %v", err)
	}
	if out != "您好" {
		t.Fatalf("Translate() = %q", out)
	}
	if requests.Load() != 1 {
		t.Fatalf("requests = %d, want exactly one", requests.Load())
	}
	if src.calls != 1 {
		t.Fatalf("settings read %d times, want once", src.calls)
	}
}

func TestTranslateMissingCredentialDoesNoIO(t *testing.T) {
	rt := &countingTransport{}
	client := &http.Client{Transport: rt}
	tc, err := tencent.New(tencent.Config{HTTPClient: client})
	if err != nil {
		t.Fatal(err)
	}
	engines := []translate.Engine{glm.New(glm.Config{HTTPClient: client}), tc}

	for _, active := range []string{settings.EngineZhipu, settings.EngineTencent} {
		src := &fakeSource{snap: settings.Snapshot{ActiveEngine: active}}
		_, err := New(src, nil, engines...).Translate(context.Background(), "Hello", "zh", "")
		if !errors.Is(err, translate.ErrMissingCredential) {
			t.Fatalf("%s: err = %v, want ErrMissingCredential", active, err)
		}
		if translate.KindOf(err) != translate.KindConfig {
			t.Fatalf("%s: kind = %v, want config", active, translate.KindOf(err))
		}
	}
	if n := rt.calls.Load(); n != 0 {
		t.Fatalf("transport invoked %d times", n)
	}
}

func TestTranslateUnknownEngine(t *testing.T) {
	src := &fakeSource{snap: settings.Snapshot{ActiveEngine: "deepl"}}
	_, err := New(src, nil, stubEngine{name: settings.EngineZhipu}).Translate(context.Background(), "x", "en", "")
	if !errors.Is(err, translate.ErrUnknownEngine) {
		t.Fatalf("err = %v, want ErrUnknownEngine", err)
	}
}

func TestTranslateSettingsFailure(t *testing.T) {
	src := &fakeSource{err: errors.New("parse settings: unexpected EOF")}
	_, err := New(src, nil).Translate(context.Background(), "x", "en", "")
	if translate.KindOf(err) != translate.KindConfig {
		t.Fatalf("kind = %v, want config (err %v)", translate.KindOf(err), err)
	}
}

func TestTranslateLogsPlaceholderAtWarn(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	src := &fakeSource{snap: settings.Snapshot{ActiveEngine: settings.EngineZhipu}}
	d := New(src, zap.New(core).Sugar(), stubEngine{name: settings.EngineZhipu, out: translate.NoContentPlaceholder})

	out, err := d.Translate(context.Background(), "x", "en", "")
	if err != nil || out != translate.NoContentPlaceholder {
		t.Fatalf("Translate() = %q, %v", out, err)
	}
	if got := logs.FilterLevelExact(zapcore.WarnLevel).FilterMessage("Engine returned no choices").Len(); got != 1 {
		t.Fatalf("warn entries = %d, want 1", got)
	}
}

func TestTranslatePassesEngineErrorsThrough(t *testing.T) {
	want := translate.ProviderError(settings.EngineTencent, "LimitExceeded", "quota")
	src := &fakeSource{snap: settings.Snapshot{ActiveEngine: settings.EngineTencent}}
	_, err := New(src, nil, stubEngine{name: settings.EngineTencent, err: want}).Translate(context.Background(), "x", "en", "")
	if !errors.Is(err, want) {
		t.Fatalf("err = %v, want %v", err, want)
	}
}

func TestEnginesOrder(t *testing.T) {
	d := New(&fakeSource{}, nil, stubEngine{name: settings.EngineAWS}, stubEngine{name: settings.EngineZhipu})
	got := strings.Join(d.Engines(), ",")
	if got != "zhipu,aws" {
		t.Fatalf("Engines() = %s", got)
	}
}
