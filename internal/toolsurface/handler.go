package toolsurface

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/forgeloop/forgeloop/internal/store"
	"github.com/forgeloop/forgeloop/pkg/models"
)

// DefaultMaxRetries is the retry budget used when a Handler is constructed
// with maxRetries <= 0, matching spec.md's MAX_RETRIES=3.
const DefaultMaxRetries = 3

// defaultListLimit is the list_features truncation default when the caller
// omits limit.
const defaultListLimit = 10

// Result is a tool invocation's outcome: Content is returned to the agent
// as the tool result text, IsError marks it as a tool-level failure (the
// agent sees it and can react, it is not a Runner-level error).
type Result struct {
	Content string
	IsError bool
}

// Handler dispatches the seven Control Tool Surface operations against a
// Store. One Handler per session; SessionID is stamped onto notes it writes.
type Handler struct {
	features   store.FeatureStore
	notes      store.NoteStore
	sessionID  int64
	maxRetries int
}

// New creates a Handler bound to sessionID, the session writing notes
// through it. maxRetries <= 0 falls back to DefaultMaxRetries.
func New(fs store.FeatureStore, ns store.NoteStore, sessionID int64, maxRetries int) *Handler {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	return &Handler{features: fs, notes: ns, sessionID: sessionID, maxRetries: maxRetries}
}

// Dispatch routes a tool call by name to its operation. Unknown tool names
// that are not part of the Control Tool Surface return IsError so the
// caller can route them elsewhere (coding tools, delegated browser/dev-server
// controls per spec.md §4.6's "out of scope but present at the boundary").
func (h *Handler) Dispatch(name string, input json.RawMessage) Result {
	switch name {
	case "feature_status":
		return h.featureStatus(input)
	case "feature_note":
		return h.featureNote(input)
	case "category_note":
		return h.categoryNote(input)
	case "global_note":
		return h.globalNote(input)
	case "get_notes":
		return h.getNotes(input)
	case "get_stats":
		return h.getStats(input)
	case "list_features":
		return h.listFeatures(input)
	default:
		return Result{Content: fmt.Sprintf("not a control tool surface operation: %s", name), IsError: true}
	}
}

func (h *Handler) featureStatus(input json.RawMessage) Result {
	var params struct {
		ID     int64  `json:"id"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(input, &params); err != nil {
		return Result{Content: fmt.Sprintf("invalid parameters: %v", err), IsError: true}
	}

	status := models.FeatureStatus(params.Status)
	switch status {
	case models.FeatureStatusInProgress, models.FeatureStatusCompleted, models.FeatureStatusPending:
	default:
		// failed is reachable only through Store.Retry crossing the retry
		// budget; the tool surface does not accept it directly.
		return Result{Content: fmt.Sprintf("unknown status: %q", params.Status), IsError: true}
	}

	if status == models.FeatureStatusPending {
		newStatus, count, err := h.features.Retry(params.ID, h.maxRetries)
		if err != nil {
			return Result{Content: fmt.Sprintf("retry failed: %v", err), IsError: true}
		}
		if newStatus == models.FeatureStatusFailed {
			return Result{Content: fmt.Sprintf(
				"feature %d retry count is now %d; auto-failed (limit %d reached)", params.ID, count, h.maxRetries)}
		}
		return Result{Content: fmt.Sprintf("feature %d retry count is now %d, status %s", params.ID, count, newStatus)}
	}

	if err := h.features.SetStatus(params.ID, status); err != nil {
		return Result{Content: fmt.Sprintf("set status failed: %v", err), IsError: true}
	}
	return Result{Content: fmt.Sprintf("feature %d status set to %s", params.ID, status)}
}

func (h *Handler) featureNote(input json.RawMessage) Result {
	var params struct {
		ID      int64  `json:"id"`
		Content string `json:"content"`
	}
	if err := json.Unmarshal(input, &params); err != nil {
		return Result{Content: fmt.Sprintf("invalid parameters: %v", err), IsError: true}
	}
	if _, err := h.notes.AddNote(&params.ID, "", params.Content, h.sessionID); err != nil {
		return Result{Content: fmt.Sprintf("add note failed: %v", err), IsError: true}
	}
	return Result{Content: fmt.Sprintf("note added to feature %d", params.ID)}
}

func (h *Handler) categoryNote(input json.RawMessage) Result {
	var params struct {
		Category string `json:"category"`
		Content  string `json:"content"`
	}
	if err := json.Unmarshal(input, &params); err != nil {
		return Result{Content: fmt.Sprintf("invalid parameters: %v", err), IsError: true}
	}
	if _, err := h.notes.AddNote(nil, params.Category, params.Content, h.sessionID); err != nil {
		return Result{Content: fmt.Sprintf("add note failed: %v", err), IsError: true}
	}
	return Result{Content: fmt.Sprintf("note added to category %s", params.Category)}
}

func (h *Handler) globalNote(input json.RawMessage) Result {
	var params struct {
		Content string `json:"content"`
	}
	if err := json.Unmarshal(input, &params); err != nil {
		return Result{Content: fmt.Sprintf("invalid parameters: %v", err), IsError: true}
	}
	if _, err := h.notes.AddNote(nil, "", params.Content, h.sessionID); err != nil {
		return Result{Content: fmt.Sprintf("add note failed: %v", err), IsError: true}
	}
	return Result{Content: "global note added"}
}

func (h *Handler) getNotes(input json.RawMessage) Result {
	var params struct {
		ID       *int64 `json:"id"`
		Category string `json:"category"`
	}
	if err := json.Unmarshal(input, &params); err != nil {
		return Result{Content: fmt.Sprintf("invalid parameters: %v", err), IsError: true}
	}

	notes, err := h.notes.NotesFor(params.ID, params.Category)
	if err != nil {
		return Result{Content: fmt.Sprintf("get notes failed: %v", err), IsError: true}
	}
	if len(notes) == 0 {
		return Result{Content: "no notes"}
	}

	var b strings.Builder
	for _, n := range notes {
		fmt.Fprintf(&b, "[%s] %s\n", n.Scope(), n.Content)
	}
	return Result{Content: b.String()}
}

func (h *Handler) getStats(input json.RawMessage) Result {
	var params struct {
		ByCategory bool `json:"by_category"`
	}
	json.Unmarshal(input, &params)

	stats, err := h.features.KanbanStats()
	if err != nil {
		return Result{Content: fmt.Sprintf("get stats failed: %v", err), IsError: true}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "total: %d\n", stats.Total)
	for status, count := range stats.ByStatus {
		fmt.Fprintf(&b, "  %s: %d\n", status, count)
	}
	if params.ByCategory {
		for cat, cs := range stats.ByCategory {
			fmt.Fprintf(&b, "%s: %d pending, %d in_progress, %d completed, %d failed\n",
				cat, cs.Pending, cs.InProgress, cs.Completed, cs.Failed)
		}
	}
	return Result{Content: b.String()}
}

func (h *Handler) listFeatures(input json.RawMessage) Result {
	var params struct {
		Status string `json:"status"`
		Limit  int    `json:"limit"`
	}
	if err := json.Unmarshal(input, &params); err != nil {
		return Result{Content: fmt.Sprintf("invalid parameters: %v", err), IsError: true}
	}

	status := models.FeatureStatus(params.Status)
	if status == "" {
		status = models.FeatureStatusPending
	}
	if !status.Valid() {
		return Result{Content: fmt.Sprintf("unknown status: %q", params.Status), IsError: true}
	}

	limit := params.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	features, err := h.features.FeaturesByStatus(status)
	if err != nil {
		return Result{Content: fmt.Sprintf("list features failed: %v", err), IsError: true}
	}

	total := len(features)
	truncated := total > limit
	if truncated {
		features = features[:limit]
	}

	var b strings.Builder
	for _, f := range features {
		fmt.Fprintf(&b, "%d\t%s\t%s\t%s\n", f.ID, f.Category, f.Status, f.Name)
	}
	if truncated {
		fmt.Fprintf(&b, "... %d more\n", total-limit)
	}
	return Result{Content: b.String()}
}
