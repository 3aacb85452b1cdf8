package viber

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"cryptobot/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{Token: "vtok", BaseURL: srv.URL, Logger: testLogger()})
}

func TestSend_OK(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/pa/send_message" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("X-Viber-Auth-Token"); got != "vtok" {
			t.Errorf("auth token = %q", got)
		}
		var req sendRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if req.Receiver != "U1" || req.Type != "text" || req.Text != "hello" {
			t.Errorf("unexpected request: %+v", req)
		}
		json.NewEncoder(w).Encode(apiResponse{Status: 0, StatusMessage: "ok"})
	})

	if err := client.Send(context.Background(), "U1", "hello"); err != nil {
		t.Fatalf("Send: %v", err)
	}
}

func TestSend_VendorStatusError(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(apiResponse{Status: 2, StatusMessage: "invalid auth token"})
	})

	err := client.Send(context.Background(), "U1", "hello")
	if !errors.Is(err, domain.ErrRemoteRejected) {
		t.Fatalf("err = %v, want ErrRemoteRejected", err)
	}
}

func TestSendKeyboard_EncodesButtons(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req sendRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if req.MinAPIVersion != minAPIVersion {
			t.Errorf("min_api_version = %d, want %d", req.MinAPIVersion, minAPIVersion)
		}
		if req.Keyboard == nil || req.Keyboard.Type != "keyboard" {
			t.Fatalf("keyboard missing or wrong type: %+v", req.Keyboard)
		}
		if len(req.Keyboard.Buttons) != 2 {
			t.Fatalf("got %d buttons, want 2", len(req.Keyboard.Buttons))
		}
		b := req.Keyboard.Buttons[0]
		if b.ActionType != "reply" || b.ActionBody != "quick_report" || b.Text != "📊 Quick" {
			t.Errorf("button = %+v", b)
		}
		json.NewEncoder(w).Encode(apiResponse{})
	})

	kb := domain.Keyboard{Buttons: []domain.Button{
		{Text: "📊 Quick", ActionBody: "quick_report", Columns: 3},
		{Text: "⬅️ Back", ActionBody: "back_to_main", Columns: 3},
	}}
	if err := client.SendKeyboard(context.Background(), "U1", "menu", kb); err != nil {
		t.Fatalf("SendKeyboard: %v", err)
	}
}

func TestSetWebhook_SubscribesEventTypes(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/pa/set_webhook" {
			t.Errorf("path = %q", r.URL.Path)
		}
		var req setWebhookRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if req.URL != "https://bot.example/webhook" {
			t.Errorf("url = %q", req.URL)
		}
		if len(req.EventTypes) != len(webhookEventTypes) {
			t.Errorf("event types = %v", req.EventTypes)
		}
		json.NewEncoder(w).Encode(apiResponse{})
	})

	if err := client.SetWebhook(context.Background(), "https://bot.example/webhook"); err != nil {
		t.Fatalf("SetWebhook: %v", err)
	}
}

func TestSend_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	client := NewClient(Config{Token: "t", BaseURL: srv.URL, Logger: testLogger()})
	if err := client.Send(context.Background(), "U1", "x"); !errors.Is(err, domain.ErrTransport) {
		t.Fatalf("err = %v, want ErrTransport", err)
	}
}
