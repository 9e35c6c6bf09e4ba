package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dgallion1/outlinexl/internal/outline"
)

// Worker processes a single conversion job.
type Worker struct {
	converter *Converter
	log       *slog.Logger
}

func NewWorker(converter *Converter, log *slog.Logger) *Worker {
	return &Worker{converter: converter, log: log}
}

// Process runs the full conversion for a job. Each job owns its document
// bytes and parse state exclusively; nothing is shared between jobs.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "doc_id", job.DocID, "filename", job.Filename)

	if ctx.Err() != nil {
		job.AddError(ctx.Err().Error())
		job.SetStatus(StatusFailed, "canceled")
		return
	}

	job.SetStatus(StatusExtracting, "extracting")
	text, err := w.converter.ExtractText(job.FileData(), job.Filename)
	if err != nil {
		if errors.Is(err, ErrEmptyDocument) {
			log.Warn("document had no extractable text")
		} else {
			log.Error("extraction failed", "error", err)
		}
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "extracting")
		return
	}

	job.SetStatus(StatusParsing, "parsing")
	records := outline.Parse(text)

	job.SetStatus(StatusRendering, "rendering")
	res, err := w.converter.Render(records)
	if err != nil {
		log.Error("render failed", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "rendering")
		return
	}

	job.SetResult(res.XLSX, res.Rows, res.Merges)
	job.SetStatus(StatusCompleted, "done")
	log.Info("job complete", "rows", res.Rows, "merges", res.Merges)
}
