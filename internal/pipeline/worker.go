package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pagemark/pagemark/internal/extract"
)

// TOCParser recognizes structured TOC entries from page text.
type TOCParser interface {
	ParseTOC(ctx context.Context, tocText string) ([]extract.Entry, error)
}

// PageTexter extracts plain text for a 1-based inclusive page range.
type PageTexter interface {
	PageText(path string, start, end int) (string, error)
}

// Worker processes a single recognition job.
type Worker struct {
	parser TOCParser
	pdf    PageTexter
	log    *slog.Logger
}

func NewWorker(parser TOCParser, pdf PageTexter, log *slog.Logger) *Worker {
	return &Worker{parser: parser, pdf: pdf, log: log}
}

// Process runs the full recognition pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "pages", fmt.Sprintf("%d-%d", job.TOCStart, job.TOCEnd))

	// Phase 1: extract the printed TOC pages' text.
	job.SetStatus(StatusExtracting)
	text, err := w.pdf.PageText(job.DocPath, job.TOCStart, job.TOCEnd)
	if err != nil {
		log.Error("page text extraction failed", "error", err)
		job.AddError(fmt.Sprintf("extract: %s", err))
		job.SetStatus(StatusFailed)
		return
	}
	if strings.TrimSpace(text) == "" {
		log.Warn("toc pages contain no extractable text")
		job.AddError("toc pages contain no extractable text")
		job.SetStatus(StatusFailed)
		return
	}

	// Phase 2: recognize entries, retrying transient model failures.
	job.SetStatus(StatusParsing)
	var entries []extract.Entry
	var lastErr error
	for attempt := 0; attempt < MaxRetries; attempt++ {
		entries, lastErr = w.parser.ParseTOC(ctx, text)
		if lastErr == nil || !IsRetryable(lastErr) {
			break
		}
		log.Warn("retryable recognition error", "attempt", attempt, "error", lastErr)
		select {
		case <-time.After(Backoff(attempt)):
		case <-ctx.Done():
			job.AddError(ctx.Err().Error())
			job.SetStatus(StatusFailed)
			return
		}
	}
	if lastErr != nil {
		log.Error("recognition failed", "error", lastErr)
		job.AddError(fmt.Sprintf("recognize: %s", lastErr))
		job.SetStatus(StatusFailed)
		return
	}
	if len(entries) == 0 {
		log.Warn("no toc entries recognized")
		job.AddError("no toc entries recognized")
		job.SetStatus(StatusFailed)
		return
	}

	// Phase 3: nest the flat entries into the outline shape.
	job.SetStatus(StatusBuilding)
	tree := extract.BuildTree(entries)
	job.SetResult(tree, len(entries))
	job.SetStatus(StatusCompleted)
	log.Info("recognition complete", "entries", len(entries), "roots", len(tree))
}
