package pipeline

import (
	"context"
	"log/slog"
)

// Worker processes a single batch job.
type Worker struct {
	proc *Processor
	log  *slog.Logger
}

func NewWorker(proc *Processor, log *slog.Logger) *Worker {
	return &Worker{proc: proc, log: log}
}

// Process parses, extracts and stores one job, then publishes its final
// state. Source failures are reported on the job and never retried.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "doc_id", job.DocID)
	defer w.proc.publish(ctx, job)

	data := job.FileData()

	// Phases 1 and 2: parse and extract.
	phase := "parsing"
	doc, err := w.proc.parse(data, job.Filename, func(s JobStatus) {
		phase = string(s)
		job.SetStatus(s, phase)
	})
	if err != nil {
		log.Error("parse failed", "filename", job.Filename, "error", err)
		job.Fail(phase, err.Error())
		return
	}
	log.Info("extraction complete",
		"experience", len(doc.Result.Experience),
		"projects", len(doc.Result.Projects),
		"skills", len(doc.Result.Skills),
		"internships", doc.Result.Internships,
	)

	// Phase 3: keep the original upload.
	job.SetStatus(StatusStoring, "storing")
	key, err := w.proc.storeUpload(ctx, data, job.Filename)
	if err != nil {
		log.Error("store failed", "error", err)
		job.Fail("storing", err.Error())
		return
	}

	job.Complete(doc.Result, key)
	log.Info("job complete", "stored_filename", key)
}
