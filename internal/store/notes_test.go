package store

import "testing"

func TestAddNote_And_NotesFor_GlobalScope(t *testing.T) {
	db := setupTestDB(t)
	sessionID, _ := db.StartSession()

	if _, err := db.AddNote(nil, "", "a global decision", sessionID); err != nil {
		t.Fatalf("AddNote: %v", err)
	}

	notes, err := db.NotesFor(nil, "")
	if err != nil {
		t.Fatalf("NotesFor: %v", err)
	}
	if len(notes) != 1 || notes[0].Content != "a global decision" {
		t.Errorf("notes = %+v, want one global note", notes)
	}
}

func TestNotesFor_MatchesFeatureOrCategoryOrGlobal(t *testing.T) {
	db := setupTestDB(t)
	sessionID, _ := db.StartSession()
	fid := int64(7)

	db.AddNote(&fid, "", "feature note", sessionID)
	db.AddNote(nil, "cat-x", "category note", sessionID)
	db.AddNote(nil, "", "global note", sessionID)
	otherFid := int64(99)
	db.AddNote(&otherFid, "", "unrelated feature note", sessionID)
	db.AddNote(nil, "cat-y", "unrelated category note", sessionID)

	notes, err := db.NotesFor(&fid, "cat-x")
	if err != nil {
		t.Fatalf("NotesFor: %v", err)
	}
	if len(notes) != 3 {
		t.Fatalf("len(notes) = %d, want 3", len(notes))
	}
}

func TestNotesFor_NewestFirst(t *testing.T) {
	db := setupTestDB(t)
	sessionID, _ := db.StartSession()

	db.AddNote(nil, "", "first", sessionID)
	db.AddNote(nil, "", "second", sessionID)
	db.AddNote(nil, "", "third", sessionID)

	notes, err := db.NotesFor(nil, "")
	if err != nil {
		t.Fatalf("NotesFor: %v", err)
	}
	if len(notes) != 3 {
		t.Fatalf("len(notes) = %d, want 3", len(notes))
	}
	if notes[0].Content != "third" {
		t.Errorf("notes[0].Content = %q, want %q (newest first)", notes[0].Content, "third")
	}
}
