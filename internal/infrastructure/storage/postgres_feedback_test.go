package storage

import (
	"context"
	"testing"

	"CredScore/internal/domain"
)

func TestNilDBAppendIsNoop(t *testing.T) {
	t.Parallel()

	repo := NewPostgresFeedback(nil)
	err := repo.Append(context.Background(), domain.LabeledExample{URL: "https://example.com", Label: 1})
	if err != nil {
		t.Fatalf("append with nil db: %v", err)
	}
}

func TestNilDBListReturnsNothing(t *testing.T) {
	t.Parallel()

	repo := NewPostgresFeedback(nil)
	examples, err := repo.ListExamples(context.Background(), 100)
	if err != nil {
		t.Fatalf("list with nil db: %v", err)
	}
	if len(examples) != 0 {
		t.Fatalf("expected no examples, got %d", len(examples))
	}
}
