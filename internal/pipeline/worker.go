package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/levindixon/WebMD/internal/convert"
	"github.com/levindixon/WebMD/internal/parser"
)

// Worker processes a single conversion job: parse the uploaded document
// into a doctree, then run the conversion in isolation so a failure in
// one job never takes down the pool.
type Worker struct {
	conv *convert.Converter
	log  *slog.Logger
}

func NewWorker(conv *convert.Converter, log *slog.Logger) *Worker {
	return &Worker{conv: conv, log: log}
}

// Process runs the full conversion pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)

	// Phase 1: Parse.
	job.SetStatus(StatusParsing, "parsing")
	p, err := parser.ForFile(job.Filename)
	if err != nil {
		log.Error("unsupported format", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "parsing")
		return
	}

	tree, err := p.Parse(bytes.NewReader(job.FileData()), job.Filename)
	if err != nil {
		log.Error("parse failed", "error", err)
		job.AddError(fmt.Sprintf("parse: %s", err))
		job.SetStatus(StatusFailed, "parsing")
		return
	}

	opts := job.Options()
	if opts.BaseURL == "" {
		// An HTML document may carry its own <base href>.
		opts.BaseURL = tree.Attribute(parser.BaseAttr)
	}

	// Phase 2: Convert, isolated from the worker goroutine.
	job.SetStatus(StatusConverting, "converting")
	out, err := w.conv.ConvertIsolated(ctx, tree, opts)
	if err != nil {
		log.Error("conversion failed", "error", err)
		job.AddError(fmt.Sprintf("convert: %s", err))
		job.SetStatus(StatusFailed, "converting")
		return
	}

	job.SetResult(out)
	job.SetStatus(StatusCompleted, "done")
	log.Info("conversion complete", "bytes", len(out))
}
