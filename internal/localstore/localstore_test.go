package localstore

import (
	"reflect"
	"testing"

	"github.com/rfduarte/feira/internal/database"
	"github.com/rfduarte/feira/internal/model"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewStore(db)
}

func TestGetSetRemove(t *testing.T) {
	s := setupTestStore(t)

	got, err := s.Get("missing")
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if got != "" {
		t.Errorf("missing key = %q, want empty", got)
	}

	if err := s.Set("k", "v1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Set("k", "v2"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	got, err = s.Get("k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != "v2" {
		t.Errorf("value = %q, want %q", got, "v2")
	}

	if err := s.Remove("k"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	got, _ = s.Get("k")
	if got != "" {
		t.Errorf("after remove = %q, want empty", got)
	}
}

func TestItemSnapshotRoundTrip(t *testing.T) {
	s := setupTestStore(t)
	email := "alice@example.com"

	items, err := s.LoadItems(email)
	if err != nil {
		t.Fatalf("load empty items: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected no items, got %d", len(items))
	}

	want := []model.Item{
		{ID: "a", Name: "Rice", Quantity: 2, Category: "grains", UnitPrice: 8.5, Status: model.StatusPending, CreatedAt: "01/09/2026"},
	}
	if err := s.SaveItems(email, want); err != nil {
		t.Fatalf("save items: %v", err)
	}

	got, err := s.LoadItems(email)
	if err != nil {
		t.Fatalf("load items: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("items = %+v, want %+v", got, want)
	}

	// Scoped per email — other users see nothing.
	other, _ := s.LoadItems("bob@example.com")
	if len(other) != 0 {
		t.Errorf("expected other user's items empty, got %d", len(other))
	}
}

func TestHistorySnapshotRoundTrip(t *testing.T) {
	s := setupTestStore(t)
	email := "alice@example.com"

	want := []model.HistoryEntry{
		{Date: "01/09/2026", ItemName: "Rice", Quantity: 2, UnitPrice: 8.5, Category: "grains", Store: model.DefaultStore, Total: 17.0, SourceItemID: "a"},
	}
	if err := s.SaveHistory(email, want); err != nil {
		t.Fatalf("save history: %v", err)
	}

	got, err := s.LoadHistory(email)
	if err != nil {
		t.Fatalf("load history: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("history = %+v, want %+v", got, want)
	}
}

func TestUserPointer(t *testing.T) {
	s := setupTestStore(t)

	u, err := s.LoadUser()
	if err != nil {
		t.Fatalf("load user: %v", err)
	}
	if u != nil {
		t.Fatalf("expected nil user, got %+v", u)
	}

	session := model.UserSession{Email: "alice@example.com", DisplayName: "Alice"}
	if err := s.SaveUser(session); err != nil {
		t.Fatalf("save user: %v", err)
	}

	u, err = s.LoadUser()
	if err != nil {
		t.Fatalf("load user: %v", err)
	}
	if u == nil || u.Email != "alice@example.com" {
		t.Errorf("user = %+v, want alice@example.com", u)
	}

	if err := s.RemoveUser(); err != nil {
		t.Fatalf("remove user: %v", err)
	}
	u, _ = s.LoadUser()
	if u != nil {
		t.Errorf("expected nil user after remove, got %+v", u)
	}
}

func TestTokenAndSpreadsheetID(t *testing.T) {
	s := setupTestStore(t)
	email := "alice@example.com"

	if err := s.SaveToken(email, "tok-1"); err != nil {
		t.Fatalf("save token: %v", err)
	}
	if err := s.SaveSpreadsheetID(email, "sheet-1"); err != nil {
		t.Fatalf("save spreadsheet id: %v", err)
	}

	tok, _ := s.Token(email)
	if tok != "tok-1" {
		t.Errorf("token = %q, want %q", tok, "tok-1")
	}
	id, _ := s.SpreadsheetID(email)
	if id != "sheet-1" {
		t.Errorf("spreadsheet id = %q, want %q", id, "sheet-1")
	}

	s.RemoveToken(email)
	s.RemoveSpreadsheetID(email)

	tok, _ = s.Token(email)
	id, _ = s.SpreadsheetID(email)
	if tok != "" || id != "" {
		t.Errorf("after remove: token=%q id=%q, want empty", tok, id)
	}
}
