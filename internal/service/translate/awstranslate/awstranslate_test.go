package awstranslate

import (
	"context"
	"encoding/json"
	"encoding/pem"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	qt "quicktranslate/internal/service/translate"
	"quicktranslate/internal/settings"
)

func snapshot(id, secret string) settings.Snapshot {
	return settings.Snapshot{
		ActiveEngine: settings.EngineAWS,
		AWS:          settings.SecretCredentials{SecretID: id, SecretKey: secret, Region: "eu-west-1"},
	}
}

func isolateSharedConfig(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("AWS_CONFIG_FILE", filepath.Join(dir, "config"))
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(dir, "credentials"))
	t.Setenv("AWS_CA_BUNDLE", "")
}

func serve(t *testing.T, status int, body string, inspect func(*http.Request)) *Engine {
	t.Helper()
	isolateSharedConfig(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if inspect != nil {
			inspect(r)
		}
		w.Header().Set("Content-Type", "application/x-amz-json-1.1")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return New(Config{Endpoint: srv.URL})
}

func TestTranslate(t *testing.T) {
	e := serve(t, http.StatusOK, `{"TranslatedText":"你好","SourceLanguageCode":"en","TargetLanguageCode":"zh"}`, func(r *http.Request) {
		if got := r.Header.Get("X-Amz-Target"); got != "AWSShineFrontendService_20170701.TranslateText" {
			t.Errorf("X-Amz-Target = %q", got)
		}
		if auth := r.Header.Get("Authorization"); !strings.Contains(auth, "Credential=AKIATEST/") || !strings.Contains(auth, "/eu-west-1/translate/aws4_request") {
			t.Errorf("Authorization = %q", auth)
		}
		var in struct {
			Text               string
			SourceLanguageCode string
			TargetLanguageCode string
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			t.Errorf("decode: %v", err)
		}
		if in.Text != "Hello" || in.SourceLanguageCode != "auto" || in.TargetLanguageCode != "zh" {
			t.Errorf("input = %+v", in)
		}
	})

	out, err := e.Translate(context.Background(), qt.Request{Text: "Hello", Target: "Chinese"}, snapshot("AKIATEST", "secret"))
	if err != nil {
		t.Fatalf("Translate() error: %v", err)
	}
	if out != "你好" {
		t.Fatalf("Translate() = %q", out)
	}
}

func TestTranslateServiceError(t *testing.T) {
	e := serve(t, http.StatusBadRequest,
		`{"__type":"UnsupportedLanguagePairException","message":"Unsupported language pair: en to xx"}`, nil)

	_, err := e.Translate(context.Background(), qt.Request{Text: "Hello", Target: "xx"}, snapshot("AKIATEST", "secret"))
	var te *qt.Error
	if !errors.As(err, &te) || te.Kind != qt.KindProtocol {
		t.Fatalf("err = %v, want protocol error", err)
	}
	if te.Code != "UnsupportedLanguagePairException" || te.StatusCode != http.StatusBadRequest {
		t.Fatalf("code/status = %q/%d", te.Code, te.StatusCode)
	}
}

func TestTranslateParseError(t *testing.T) {
	e := serve(t, http.StatusOK, `{"TranslatedText": 42`, nil)
	_, err := e.Translate(context.Background(), qt.Request{Text: "Hello", Target: "en"}, snapshot("AKIATEST", "secret"))
	if qt.KindOf(err) != qt.KindParse {
		t.Fatalf("kind = %v, want parse (err %v)", qt.KindOf(err), err)
	}
}

func TestTranslateTransportError(t *testing.T) {
	isolateSharedConfig(t)
	srv := httptest.NewServer(http.NotFoundHandler())
	e := New(Config{Endpoint: srv.URL, Timeout: time.Second})
	srv.Close()

	_, err := e.Translate(context.Background(), qt.Request{Text: "Hello", Target: "en"}, snapshot("AKIATEST", "secret"))
	if qt.KindOf(err) != qt.KindTransport {
		t.Fatalf("kind = %v, want transport (err %v)", qt.KindOf(err), err)
	}
}

func TestTranslateMissingCredentials(t *testing.T) {
	e := New(Config{Endpoint: "http://127.0.0.1:1"})
	for _, snap := range []settings.Snapshot{snapshot("", "secret"), snapshot("AKIA", "")} {
		if _, err := e.Translate(context.Background(), qt.Request{Text: "x"}, snap); !errors.Is(err, qt.ErrMissingCredential) {
			t.Fatalf("err = %v, want ErrMissingCredential", err)
		}
	}
}

func TestTranslateTrustsCABundle(t *testing.T) {
	isolateSharedConfig(t)
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/x-amz-json-1.1")
		_, _ = w.Write([]byte(`{"TranslatedText":"Bonjour","SourceLanguageCode":"en","TargetLanguageCode":"fr"}`))
	}))
	t.Cleanup(srv.Close)

	bundle := filepath.Join(t.TempDir(), "ca.pem")
	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: srv.Certificate().Raw})
	if err := os.WriteFile(bundle, certPEM, 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("AWS_CA_BUNDLE", bundle)

	e := New(Config{Endpoint: srv.URL, Timeout: 5 * time.Second})
	out, err := e.Translate(context.Background(), qt.Request{Text: "Hello", Target: "fr"}, snapshot("AKIATEST", "secret"))
	if err != nil {
		t.Fatalf("Translate() with AWS_CA_BUNDLE: %v", err)
	}
	if out != "Bonjour" {
		t.Fatalf("Translate() = %q", out)
	}
}

func TestTranslateUnreadableCABundle(t *testing.T) {
	isolateSharedConfig(t)
	t.Setenv("AWS_CA_BUNDLE", filepath.Join(t.TempDir(), "missing.pem"))

	e := New(Config{Endpoint: "http://127.0.0.1:1"})
	_, err := e.Translate(context.Background(), qt.Request{Text: "Hello", Target: "en"}, snapshot("AKIATEST", "secret"))
	if qt.KindOf(err) != qt.KindConfig || !errors.Is(err, qt.ErrEngineConfig) {
		t.Fatalf("err = %v, want engine config error", err)
	}
}
