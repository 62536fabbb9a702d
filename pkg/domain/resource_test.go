package domain

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestCategoryOrdering(t *testing.T) {
	if len(Categories) != CategoryCount {
		t.Fatalf("category count mismatch: %d vs %d", len(Categories), CategoryCount)
	}
	for i, c := range Categories {
		if c.Ordinal() != i {
			t.Fatalf("%s: expected ordinal %d got %d", c, i, c.Ordinal())
		}
		if i > 0 && !Categories[i-1].Less(c) {
			t.Fatalf("expected %s < %s", Categories[i-1], c)
		}
	}
	if Category("Gossip").Valid() {
		t.Fatalf("undeclared category reported valid")
	}
}

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory("DietAdvice")
	if err != nil || c != CategoryDietAdvice {
		t.Fatalf("parse: %v %s", err, c)
	}
	if _, err := ParseCategory("dietadvice"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input for wrong case, got %v", err)
	}
}

func TestResourceJSONRejectsUnknownFields(t *testing.T) {
	var r Resource
	if err := json.Unmarshal([]byte(`{"id":1,"title":"t","description":"d","category":"Research","created_at":1,"updated_at":1,"verified":false,"created_by":"alice"}`), &r); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if r.Category != CategoryResearch || r.CreatedBy != "alice" {
		t.Fatalf("unexpected decode %+v", r)
	}
	if err := json.Unmarshal([]byte(`{"id":1,"title":"t","rating":5}`), &r); err == nil {
		t.Fatalf("expected unknown field rejection")
	}
	if err := json.Unmarshal([]byte(`{"id":1,"category":"Gossip"}`), &r); err == nil {
		t.Fatalf("expected unknown category rejection")
	}
}
