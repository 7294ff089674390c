package tencent

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"quicktranslate/internal/service/translate"
	"quicktranslate/internal/settings"
	"quicktranslate/internal/signer"
)

var fixedNow = time.Date(2024, 3, 15, 8, 0, 0, 0, time.UTC)

func snapshot(id, key, region string) settings.Snapshot {
	return settings.Snapshot{
		ActiveEngine: settings.EngineTencent,
		Tencent:      settings.SecretCredentials{SecretID: id, SecretKey: key, Region: region},
	}
}

func newEngine(t *testing.T, srv *httptest.Server) *Engine {
	t.Helper()
	e, err := New(Config{Endpoint: srv.URL, HTTPClient: srv.Client(), Now: func() time.Time { return fixedNow }})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return e
}

func TestTranslateSignsTransmittedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		var payload map[string]any
		if err := json.Unmarshal(body, &payload); err != nil {
			t.Errorf("payload is not JSON: %v", err)
		}
		if payload["SourceText"] != "Hello" || payload["Source"] != "auto" || payload["Target"] != "zh" || payload["ProjectId"] != float64(0) {
			t.Errorf("payload = %v", payload)
		}

		for k, want := range map[string]string{
			"Content-Type":   "application/json",
			"X-TC-Action":    "TextTranslate",
			"X-TC-Version":   "2018-03-21",
			"X-TC-Region":    "ap-shanghai",
			"X-TC-Timestamp": "1710489600",
		} {
			if got := r.Header.Get(k); got != want {
				t.Errorf("header %s = %q, want %q", k, got, want)
			}
		}

		// Recompute the signature over the bytes that actually arrived.
		want := signer.Headers(signer.Params{
			SecretID:    "AKIDtest",
			SecretKey:   "secret",
			Host:        r.Host,
			Service:     "tmt",
			Action:      "TextTranslate",
			Version:     "2018-03-21",
			Region:      "ap-shanghai",
			ContentType: "application/json",
			Timestamp:   fixedNow,
			Payload:     body,
		})["Authorization"]
		if got := r.Header.Get("Authorization"); got != want {
			t.Errorf("Authorization = %q, want %q", got, want)
		}

		_, _ = w.Write([]byte(`{"Response":{"TargetText":"你好","Source":"en","Target":"zh","RequestId":"r-1"}}`))
	}))
	defer srv.Close()

	out, err := newEngine(t, srv).Translate(context.Background(),
		translate.Request{Text: "Hello", Target: "ZH-CN"}, snapshot("AKIDtest", "secret", "ap-shanghai"))
	if err != nil {
		t.Fatalf("Translate() error: %v", err)
	}
	if out != "你好" {
		t.Fatalf("Translate() = %q", out)
	}
}

func TestTranslateDefaultsRegion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-TC-Region"); got != settings.DefaultTencentRegion {
			t.Errorf("X-TC-Region = %q", got)
		}
		_, _ = w.Write([]byte(`{"Response":{"TargetText":"ok"}}`))
	}))
	defer srv.Close()

	if _, err := newEngine(t, srv).Translate(context.Background(), translate.Request{Text: "x", Target: "en"}, snapshot("id", "key", "")); err != nil {
		t.Fatalf("Translate() error: %v", err)
	}
}

func TestTranslateEnvelopeErrorOnHTTP200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Response":{"Error":{"Code":"AuthFailure.SignatureFailure","Message":"The provided credentials could not be validated."},"RequestId":"r-2"}}`))
	}))
	defer srv.Close()

	_, err := newEngine(t, srv).Translate(context.Background(), translate.Request{Text: "x", Target: "en"}, snapshot("id", "key", ""))
	var te *translate.Error
	if !errors.As(err, &te) || te.Kind != translate.KindProtocol {
		t.Fatalf("err = %v, want protocol error", err)
	}
	if te.Code != "AuthFailure.SignatureFailure" || !strings.Contains(err.Error(), "could not be validated") {
		t.Fatalf("error should carry provider code and message, got %q", err.Error())
	}
	if te.StatusCode != 0 {
		t.Fatalf("StatusCode = %d, want 0 for envelope errors", te.StatusCode)
	}
}

func TestTranslateFailureKinds(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   translate.Kind
	}{
		{"bad gateway", http.StatusBadGateway, "upstream down", translate.KindProtocol},
		{"not json", http.StatusOK, "<html>", translate.KindParse},
		{"no target text", http.StatusOK, `{"Response":{"RequestId":"r-3"}}`, translate.KindParse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := newEngine(t, srv).Translate(context.Background(), translate.Request{Text: "x"}, snapshot("id", "key", ""))
			if translate.KindOf(err) != tt.want {
				t.Fatalf("kind = %v, want %v (err %v)", translate.KindOf(err), tt.want, err)
			}
		})
	}
}

func TestTranslateMissingCredentials(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { calls.Add(1) }))
	defer srv.Close()
	e := newEngine(t, srv)

	for _, snap := range []settings.Snapshot{snapshot("", "key", ""), snapshot("id", " ", "")} {
		_, err := e.Translate(context.Background(), translate.Request{Text: "x"}, snap)
		if !errors.Is(err, translate.ErrMissingCredential) {
			t.Fatalf("err = %v, want ErrMissingCredential", err)
		}
	}
	if calls.Load() != 0 {
		t.Fatalf("server called %d times", calls.Load())
	}
}

func TestNewRejectsEndpointWithoutHost(t *testing.T) {
	if _, err := New(Config{Endpoint: "not a url"}); err == nil {
		t.Fatal("New() should reject an endpoint without host")
	}
	e, err := New(Config{})
	if err != nil {
		t.Fatal(err)
	}
	u, _ := url.Parse(DefaultEndpoint)
	if e.host != u.Host {
		t.Fatalf("default host = %q", e.host)
	}
}
