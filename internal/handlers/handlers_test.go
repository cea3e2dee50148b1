package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/jagadeesh/repofeed/internal/events"
	"github.com/jagadeesh/repofeed/internal/format"
	"github.com/jagadeesh/repofeed/internal/store/memstore"
)

func get(t *testing.T, h fiber.Handler) (int, []byte) {
	t.Helper()
	app := fiber.New()
	app.Get("/", h)
	res, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()
	b, _ := io.ReadAll(res.Body)
	return res.StatusCode, b
}

func TestEventsListCapsAndFormats(t *testing.T) {
	s := memstore.New()
	for i := 0; i < 120; i++ {
		_ = s.Insert(context.Background(), events.Event{
			RequestID: "r", Author: events.UnknownAuthor, Action: events.ActionPush, Timestamp: "1st January 2026 - 9:00 AM UTC",
		})
	}

	status, b := get(t, NewEventsHandler(s, format.New("Owner")).List())
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	var views []format.View
	if err := json.Unmarshal(b, &views); err != nil {
		t.Fatal(err)
	}
	if len(views) != 100 {
		t.Fatalf("expected reads capped at 100, got %d", len(views))
	}
	if views[0].Author != "Owner" || views[0].Message != "Owner pushed to main on 1st January 2026 - 9:00 AM UTC" {
		t.Fatalf("unexpected view %+v", views[0])
	}
}

func TestEventsListEmptyIsArray(t *testing.T) {
	status, b := get(t, NewEventsHandler(memstore.New(), nil).List())
	if status != http.StatusOK || string(b) != "[]" {
		t.Fatalf("expected empty array, got %d %s", status, b)
	}
}

func TestHealthClosedStore(t *testing.T) {
	s := memstore.New()
	_ = s.Close()

	status, b := get(t, Health(s))
	if status != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", status)
	}
	var body map[string]any
	_ = json.Unmarshal(b, &body)
	if body["reason"] != "store_unreachable" || body["ok"] != false {
		t.Fatalf("unexpected body %v", body)
	}
}
