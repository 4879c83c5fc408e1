//go:build !integration

package copygen

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"recoEngine/domain"

	"github.com/goccy/go-json"
)

func TestClient_Generate(t *testing.T) {
	var got generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/generate" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer secret" {
			t.Errorf("missing auth header")
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"content":"  Roll out in comfort.  "}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL + "/", APIKey: "secret", Timeout: time.Second})
	text, err := c.Generate(context.Background(), domain.Product{ID: 3, Name: "Yoga Mat", Category: "Fitness"})
	if err != nil {
		t.Fatal(err)
	}
	if text != "Roll out in comfort." {
		t.Fatalf("text = %q", text)
	}
	if got.ProductID != 3 || got.Name != "Yoga Mat" || got.Type != domain.ContentDescription {
		t.Fatalf("request = %+v", got)
	}
}

func TestClient_Errors(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"status": func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
		},
		"empty": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"content":""}`))
		},
		"garbage": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`<html>`))
		},
	}
	for name, h := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(h)
			defer srv.Close()
			if _, err := NewClient(Config{BaseURL: srv.URL}).Generate(context.Background(), domain.Product{ID: 1}); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestClient_Personalize(t *testing.T) {
	var got generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"content":"Made for your morning flow."}`))
	}))
	defer srv.Close()

	text, err := NewClient(Config{BaseURL: srv.URL}).Personalize(context.Background(), "u-7", domain.Product{ID: 3, Name: "Yoga Mat"})
	if err != nil {
		t.Fatal(err)
	}
	if text != "Made for your morning flow." {
		t.Fatalf("text = %q", text)
	}
	if got.Type != domain.ContentPersonalized || got.SubjectID != "u-7" || got.ProductID != 3 {
		t.Fatalf("request = %+v", got)
	}
}
