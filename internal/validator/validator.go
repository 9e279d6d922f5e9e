// Package validator checks the Category Contiguity Invariant before the
// outer loop starts.
package validator

import (
	"fmt"

	"github.com/forgeloop/forgeloop/pkg/models"
)

// ContiguityError describes a Category Contiguity Invariant violation: a
// category that was closed (the walk moved on to a different category)
// reappearing later at OffendingID.
type ContiguityError struct {
	Category     string
	OffendingID  int64
	FirstID      int64
	LastClosedID int64
}

func (e *ContiguityError) Error() string {
	return fmt.Sprintf(
		"category %q is not contiguous: first seen at id %d, closed at id %d, reappeared at id %d",
		e.Category, e.FirstID, e.LastClosedID, e.OffendingID,
	)
}

// CheckContiguity walks features ordered by id, maintaining the current
// open category. A category closes when the walk moves to a different
// category; if a closed category reappears, the invariant is violated.
// An empty feature set is valid. featuresByID must already be sorted by
// id ascending.
func CheckContiguity(featuresByID []models.Feature) error {
	firstIDOf := make(map[string]int64)
	closedLastID := make(map[string]int64)

	var currentCategory string
	var lastIDSeen int64
	haveOpen := false

	for _, f := range featuresByID {
		if haveOpen && f.Category == currentCategory {
			lastIDSeen = f.ID
			continue
		}

		if _, wasClosed := closedLastID[f.Category]; wasClosed {
			return &ContiguityError{
				Category:     f.Category,
				OffendingID:  f.ID,
				FirstID:      firstIDOf[f.Category],
				LastClosedID: closedLastID[f.Category],
			}
		}

		if haveOpen {
			closedLastID[currentCategory] = lastIDSeen
		}

		firstIDOf[f.Category] = f.ID
		currentCategory = f.Category
		haveOpen = true
		lastIDSeen = f.ID
	}

	return nil
}
