package notion

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
	return NewClient(Config{
		Token:      "secret",
		DatabaseID: "db1",
		BaseURL:    srv.URL,
		Logger:     testLogger(),
	})
}

func page(id string) Page {
	return Page{ID: id, Properties: map[string]Property{}}
}

func TestQueryAll_FollowsCursor(t *testing.T) {
	var calls int
	var cursors []string

	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("Notion-Version"); got == "" {
			t.Error("Notion-Version header missing")
		}

		var req struct {
			PageSize    int    `json:"page_size"`
			StartCursor string `json:"start_cursor"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.PageSize != maxPageSize {
			t.Errorf("page_size = %d, want %d", req.PageSize, maxPageSize)
		}
		cursors = append(cursors, req.StartCursor)

		calls++
		switch calls {
		case 1:
			json.NewEncoder(w).Encode(queryResponse{
				Results:    []Page{page("a"), page("b")},
				HasMore:    true,
				NextCursor: "cur-2",
			})
		case 2:
			json.NewEncoder(w).Encode(queryResponse{
				Results: []Page{page("c")},
				HasMore: false,
			})
		default:
			t.Error("fetch did not stop after has_more=false")
		}
	})

	pages, err := client.QueryAll(context.Background(), nil)
	if err != nil {
		t.Fatalf("QueryAll: %v", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
	if len(pages) != 3 {
		t.Fatalf("got %d pages, want 3", len(pages))
	}
	for i, want := range []string{"a", "b", "c"} {
		if pages[i].ID != want {
			t.Errorf("pages[%d].ID = %q, want %q (remote order must be preserved)", i, pages[i].ID, want)
		}
	}
	if cursors[0] != "" || cursors[1] != "cur-2" {
		t.Errorf("cursors = %v, want [\"\" cur-2]", cursors)
	}
}

func TestQueryAll_EmptyCursorWithMoreAborts(t *testing.T) {
	var calls int
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		json.NewEncoder(w).Encode(queryResponse{
			Results: []Page{page("a")},
			HasMore: true,
			// no next_cursor: refetching would loop on page one forever
		})
	})

	_, err := client.QueryAll(context.Background(), nil)
	if !errors.Is(err, domain.ErrMalformedPayload) {
		t.Fatalf("err = %v, want ErrMalformedPayload", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (fetch must abort, not refetch)", calls)
	}
}

func TestQueryAll_RemoteRejected(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"unauthorized"}`, http.StatusUnauthorized)
	})

	_, err := client.QueryAll(context.Background(), nil)
	if !errors.Is(err, domain.ErrRemoteRejected) {
		t.Fatalf("err = %v, want ErrRemoteRejected", err)
	}
	if got := domain.RemoteStatus(err); got != 401 {
		t.Errorf("status = %d, want 401", got)
	}
}

func TestQueryAll_MalformedResponse(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json at all"))
	})

	_, err := client.QueryAll(context.Background(), nil)
	if !errors.Is(err, domain.ErrMalformedPayload) {
		t.Fatalf("err = %v, want ErrMalformedPayload", err)
	}
}

func TestQueryAll_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // connection refused from here on

	client := NewClient(Config{Token: "t", DatabaseID: "db", BaseURL: srv.URL, Logger: testLogger()})
	_, err := client.QueryAll(context.Background(), nil)
	if !errors.Is(err, domain.ErrTransport) {
		t.Fatalf("err = %v, want ErrTransport", err)
	}
}

func TestCheckConnection_UsesSinglePageProbe(t *testing.T) {
	var probed int
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			PageSize int `json:"page_size"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		if req.PageSize != 1 {
			t.Errorf("probe page_size = %d, want 1", req.PageSize)
		}
		probed++
		json.NewEncoder(w).Encode(queryResponse{})
	})

	if err := client.CheckConnection(context.Background()); err != nil {
		t.Fatalf("CheckConnection: %v", err)
	}
	if probed != 1 {
		t.Errorf("probe calls = %d, want 1", probed)
	}
}

func TestProp_AbsentNameYieldsZeroProperty(t *testing.T) {
	p := page("x")
	if got := p.Prop("nope"); got.Type != "" {
		t.Errorf("absent property Type = %q, want zero value", got.Type)
	}
}
