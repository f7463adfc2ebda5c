package services

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
)

func TestDraftUnavailableWithoutKey(t *testing.T) {
	svc := NewDraftService(DraftConfig{}, zerolog.Nop())
	if _, err := svc.Draft(context.Background(), "invoice for car wash"); err != ErrDraftUnavailable {
		t.Fatalf("err = %v, want ErrDraftUnavailable", err)
	}
}

func TestParseDraft(t *testing.T) {
	draft, err := parseDraft("```json\n{\"title\":\"Car wash\",\"items\":[{\"description\":\"Wash\",\"quantity\":0,\"rate\":-5}]}\n```")
	if err != nil {
		t.Fatalf("parseDraft: %v", err)
	}
	if draft.Title != "Car wash" {
		t.Errorf("Title = %q", draft.Title)
	}
	// sanitization: zero quantity becomes 1, negative rate clamps to 0
	if draft.Items[0].Quantity != 1 || draft.Items[0].Rate != 0 {
		t.Errorf("item = %+v", draft.Items[0])
	}
}

func TestParseDraftRejectsEmptyAndBroken(t *testing.T) {
	if _, err := parseDraft(`{"title":"x","items":[]}`); err == nil {
		t.Error("expected error for empty items")
	}
	if _, err := parseDraft("not json"); err == nil {
		t.Error("expected error for invalid json")
	}
}
