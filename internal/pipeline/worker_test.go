package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/pagemark/pagemark/internal/extract"
)

type fakeParser struct {
	entries []extract.Entry
	errs    []error // consumed per call; nil entries fall through
	calls   int
}

func (f *fakeParser) ParseTOC(_ context.Context, _ string) ([]extract.Entry, error) {
	f.calls++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	return f.entries, nil
}

type fakeTexter struct {
	text string
	err  error
}

func (f *fakeTexter) PageText(_ string, _, _ int) (string, error) {
	return f.text, f.err
}

func discardLog() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newJob() *Job {
	now := time.Now()
	return &Job{
		ID:        NewULID(),
		DocPath:   "book.pdf",
		TOCStart:  5,
		TOCEnd:    7,
		Status:    StatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestWorkerProcessCompletes(t *testing.T) {
	parser := &fakeParser{entries: []extract.Entry{
		{Level: 1, Title: "Ch 1", Page: 1},
		{Level: 2, Title: "1.1", Page: 2},
	}}
	w := NewWorker(parser, &fakeTexter{text: "Ch 1 .... 1\n1.1 .... 2"}, discardLog())

	job := newJob()
	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusCompleted {
		t.Fatalf("status: %s, errors: %v", snap.Status, snap.Errors)
	}
	if snap.EntryCount != 2 {
		t.Errorf("entries: got %d, want 2", snap.EntryCount)
	}
	result := job.Result()
	if len(result) != 1 || result[0].Title != "Ch 1" || len(result[0].Children) != 1 {
		t.Errorf("result tree: %+v", result)
	}
}

func TestWorkerProcessEmptyPageText(t *testing.T) {
	w := NewWorker(&fakeParser{}, &fakeTexter{text: "   \n"}, discardLog())
	job := newJob()
	w.Process(context.Background(), job)

	if got := job.Snapshot().Status; got != StatusFailed {
		t.Errorf("status: %s, want failed", got)
	}
}

func TestWorkerProcessExtractionError(t *testing.T) {
	w := NewWorker(&fakeParser{}, &fakeTexter{err: errors.New("bad pdf")}, discardLog())
	job := newJob()
	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusFailed || len(snap.Errors) == 0 {
		t.Errorf("snapshot: %+v", snap)
	}
}

func TestWorkerRetriesTransientErrors(t *testing.T) {
	parser := &fakeParser{
		entries: []extract.Entry{{Level: 1, Title: "Ch", Page: 1}},
		errs:    []error{&extract.RetryableError{StatusCode: 429}, nil},
	}
	w := NewWorker(parser, &fakeTexter{text: "Ch 1"}, discardLog())
	job := newJob()
	w.Process(context.Background(), job)

	if got := job.Snapshot().Status; got != StatusCompleted {
		t.Fatalf("status: %s", got)
	}
	if parser.calls != 2 {
		t.Errorf("parser calls: got %d, want 2", parser.calls)
	}
}

func TestWorkerDoesNotRetryPermanentErrors(t *testing.T) {
	parser := &fakeParser{errs: []error{errors.New("api key invalid")}}
	w := NewWorker(parser, &fakeTexter{text: "Ch 1"}, discardLog())
	job := newJob()
	w.Process(context.Background(), job)

	if got := job.Snapshot().Status; got != StatusFailed {
		t.Fatalf("status: %s", got)
	}
	if parser.calls != 1 {
		t.Errorf("parser calls: got %d, want 1", parser.calls)
	}
}

func TestWorkerNoEntriesFails(t *testing.T) {
	w := NewWorker(&fakeParser{}, &fakeTexter{text: "unrelated prose"}, discardLog())
	job := newJob()
	w.Process(context.Background(), job)

	if got := job.Snapshot().Status; got != StatusFailed {
		t.Errorf("status: %s", got)
	}
}

func TestJobStoreTTL(t *testing.T) {
	store := NewJobStore(10 * time.Millisecond)
	job := newJob()
	store.Put(job)

	if store.Get(job.ID) == nil {
		t.Fatal("job should be retrievable")
	}
	time.Sleep(25 * time.Millisecond)
	store.Cleanup()
	if store.Get(job.ID) != nil {
		t.Error("expired job should be evicted")
	}
}

func TestULIDsAreUniqueAndSortable(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		id := NewULID()
		if len(id) != 26 {
			t.Fatalf("ulid length: %d", len(id))
		}
		if seen[id] {
			t.Fatalf("duplicate ulid %s", id)
		}
		seen[id] = true
	}
}
