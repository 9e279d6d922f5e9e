package validator

import (
	"errors"
	"testing"

	"github.com/forgeloop/forgeloop/pkg/models"
)

func feat(id int64, category string) models.Feature {
	return models.Feature{ID: id, Category: category}
}

func TestCheckContiguity_EmptyIsValid(t *testing.T) {
	if err := CheckContiguity(nil); err != nil {
		t.Errorf("CheckContiguity(nil) = %v, want nil", err)
	}
}

func TestCheckContiguity_SingleCategory(t *testing.T) {
	fs := []models.Feature{feat(1, "cat-x"), feat(2, "cat-x"), feat(3, "cat-x")}
	if err := CheckContiguity(fs); err != nil {
		t.Errorf("CheckContiguity = %v, want nil", err)
	}
}

func TestCheckContiguity_MultipleContiguousCategories(t *testing.T) {
	fs := []models.Feature{feat(1, "cat-x"), feat(2, "cat-x"), feat(3, "cat-y"), feat(4, "cat-y")}
	if err := CheckContiguity(fs); err != nil {
		t.Errorf("CheckContiguity = %v, want nil", err)
	}
}

// S3: Features {1/cat-x, 2/cat-y, 3/cat-x}. Validator fails (cat-x not
// contiguous: 1 then 3 with 2 between).
func TestCheckContiguity_DetectsInterleaving(t *testing.T) {
	fs := []models.Feature{feat(1, "cat-x"), feat(2, "cat-y"), feat(3, "cat-x")}

	err := CheckContiguity(fs)
	if err == nil {
		t.Fatal("expected contiguity violation, got nil")
	}

	var ce *ContiguityError
	if !errors.As(err, &ce) {
		t.Fatalf("error is not a *ContiguityError: %v", err)
	}
	if ce.Category != "cat-x" || ce.OffendingID != 3 {
		t.Errorf("ContiguityError = %+v, want category cat-x, offending id 3", ce)
	}
}

func TestCheckContiguity_ReopeningAfterMultipleIntervening(t *testing.T) {
	fs := []models.Feature{
		feat(1, "cat-x"),
		feat(2, "cat-y"),
		feat(3, "cat-z"),
		feat(4, "cat-x"),
	}
	err := CheckContiguity(fs)
	if err == nil {
		t.Fatal("expected contiguity violation, got nil")
	}
}
