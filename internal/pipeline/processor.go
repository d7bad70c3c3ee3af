package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/dgallion1/resumeparse/internal/metrics"
	"github.com/dgallion1/resumeparse/internal/notify"
	"github.com/dgallion1/resumeparse/internal/parser"
	"github.com/dgallion1/resumeparse/internal/resume"
	"github.com/dgallion1/resumeparse/internal/storage"
)

// Processor ties parsing to upload storage, metrics and job events. It is
// shared by the synchronous upload handler and the batch workers.
type Processor struct {
	store   storage.Store
	pub     notify.Publisher
	metrics *metrics.Metrics
	opts    parser.Options
	log     *slog.Logger
}

// NewProcessor wires a Processor. A nil store, publisher or metrics disables
// that concern.
func NewProcessor(store storage.Store, pub notify.Publisher, m *metrics.Metrics, opts parser.Options, log *slog.Logger) *Processor {
	if store == nil {
		store = storage.Noop{}
	}
	if pub == nil {
		pub = notify.Noop{}
	}
	return &Processor{
		store:   store,
		pub:     pub,
		metrics: m,
		opts:    opts,
		log:     log,
	}
}

// Upload is the outcome of a synchronous upload.
type Upload struct {
	OriginalFilename string        `json:"original_filename"`
	StoredFilename   string        `json:"stored_filename"`
	Result           resume.Result `json:"parsed_data"`
}

// Upload stores data under a fresh key and parses it. The stored copy is
// kept even when parsing fails.
func (p *Processor) Upload(ctx context.Context, data []byte, filename string) (*Upload, error) {
	if !parser.IsSupportedExtension(filename) {
		p.metrics.ObserveParse(filepath.Ext(filename), metrics.OutcomeUnsupported, 0)
		return nil, fmt.Errorf("%w: %q", parser.ErrUnsupportedFormat, filepath.Ext(filename))
	}

	key, err := p.storeUpload(ctx, data, filename)
	if err != nil {
		return nil, err
	}

	doc, err := p.Parse(data, filename)
	if err != nil {
		return nil, err
	}
	return &Upload{
		OriginalFilename: filename,
		StoredFilename:   key,
		Result:           doc.Result,
	}, nil
}

// Parse reads and extracts data, recording metrics for the attempt.
func (p *Processor) Parse(data []byte, filename string) (*Document, error) {
	return p.parse(data, filename, nil)
}

// parse runs the two parse phases, calling onPhase before each.
func (p *Processor) parse(data []byte, filename string, onPhase func(JobStatus)) (*Document, error) {
	format := filepath.Ext(filename)
	start := time.Now()

	if onPhase != nil {
		onPhase(StatusParsing)
	}
	lines, err := readLines(data, filename, p.opts)
	if err != nil {
		p.metrics.ObserveParse(format, outcomeFor(err), time.Since(start))
		return nil, err
	}

	if onPhase != nil {
		onPhase(StatusExtracting)
	}
	doc := NewDocument(lines)
	elapsed := time.Since(start)

	p.metrics.ObserveParse(format, metrics.OutcomeOK, elapsed)
	p.metrics.ObserveResult(resume.Found(doc.Sections), doc.Result)
	p.log.Debug("parsed document",
		"filename", filename,
		"lines", len(doc.Lines),
		"sections", len(doc.Sections),
		"duration_ms", elapsed.Milliseconds(),
	)
	return doc, nil
}

func (p *Processor) storeUpload(ctx context.Context, data []byte, filename string) (string, error) {
	key := storage.NewKey(filename)
	_, err := p.store.Put(ctx, key, bytes.NewReader(data), storage.PutOptions{
		Size:        int64(len(data)),
		ContentType: storage.ContentType(filename),
		Metadata:    map[string]string{"original-filename": filename},
	})
	if err != nil {
		p.metrics.ObserveParse(filepath.Ext(filename), metrics.OutcomeStoreError, 0)
		return "", fmt.Errorf("store upload: %w", err)
	}
	return key, nil
}

// OpenUpload returns the stored copy of an upload. The caller closes it.
func (p *Processor) OpenUpload(ctx context.Context, key string) (io.ReadCloser, storage.ObjectInfo, error) {
	return p.store.Get(ctx, key)
}

// DeleteUpload removes the stored copy of an upload.
func (p *Processor) DeleteUpload(ctx context.Context, key string) error {
	if err := p.store.Delete(ctx, key); err != nil {
		return err
	}
	p.log.Info("deleted upload", "stored_filename", key)
	return nil
}

func (p *Processor) publish(ctx context.Context, job *Job) {
	snap := job.Snapshot()
	ev := notify.Event{
		JobID:  snap.ID,
		DocID:  snap.DocID,
		Status: string(snap.Status),
		Result: snap.Result,
		Error:  snap.Error,
	}
	if err := p.pub.Publish(ctx, ev); err != nil {
		p.log.Warn("publish job event failed", "job_id", snap.ID, "status", snap.Status, "error", err)
	}
}

func outcomeFor(err error) string {
	if errors.Is(err, parser.ErrUnsupportedFormat) {
		return metrics.OutcomeUnsupported
	}
	return metrics.OutcomeSourceError
}
