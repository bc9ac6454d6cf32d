package outcome_test

import (
	"errors"
	"io/fs"
	"testing"

	"shelf/internal/outcome"
)

func TestWrapPreservesMarker(t *testing.T) {
	err := outcome.Wrap(outcome.ErrIntegrity, "organizer", "fallback copy", "digest mismatch", nil)
	if !errors.Is(err, outcome.ErrIntegrity) {
		t.Fatalf("marker lost: %v", err)
	}
}

func TestWrapNilMarkerDefaultsToTransient(t *testing.T) {
	err := outcome.Wrap(nil, "organizer", "move", "", errors.New("boom"))
	if !errors.Is(err, outcome.ErrTransientIO) {
		t.Fatalf("expected transient default, got %v", err)
	}
}

func TestActionForError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want outcome.Action
	}{
		{"unstable", outcome.ErrUnstable, outcome.ActionSkipped},
		{"transient", outcome.ErrTransientIO, outcome.ActionSkipped},
		{"not exist", fs.ErrNotExist, outcome.ActionSkipped},
		{"permission", outcome.ErrPermission, outcome.ActionFailed},
		{"integrity", outcome.ErrIntegrity, outcome.ActionFailed},
		{"unknown", errors.New("boom"), outcome.ActionFailed},
	}
	for _, tc := range cases {
		if got := outcome.ActionForError(tc.err); got != tc.want {
			t.Errorf("%s: got %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestClassifyMapsOSErrors(t *testing.T) {
	if err := outcome.Classify(fs.ErrNotExist); !errors.Is(err, outcome.ErrTransientIO) {
		t.Fatalf("not-exist should classify transient, got %v", err)
	}
	if err := outcome.Classify(fs.ErrPermission); !errors.Is(err, outcome.ErrPermission) {
		t.Fatalf("permission should classify permission, got %v", err)
	}
	tagged := outcome.Wrap(outcome.ErrIntegrity, "x", "y", "z", nil)
	if err := outcome.Classify(tagged); !errors.Is(err, outcome.ErrIntegrity) {
		t.Fatalf("already-tagged error should keep its tag, got %v", err)
	}
	if outcome.Classify(nil) != nil {
		t.Fatal("nil should stay nil")
	}
}

func TestNewRecordStampsIDAndTime(t *testing.T) {
	rec := outcome.NewRecord("/w/a.jpg", outcome.ActionMoved, "/w/Images/a.jpg", "")
	if rec.ID == "" {
		t.Fatal("missing record ID")
	}
	if rec.RecordedAt.IsZero() {
		t.Fatal("missing timestamp")
	}
	if rec.Action != outcome.ActionMoved {
		t.Fatalf("unexpected action %q", rec.Action)
	}
}
