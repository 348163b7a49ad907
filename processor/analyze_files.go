package processor

import (
	"context"
	"sync"

	"github.com/lumenscan/lumenscan/lang"
)

// FileInput bundles one file's content and identity for a batch run.
type FileInput struct {
	Meta    FileMetadata
	Info    lang.Info
	Content string
}

// FileOutput pairs a FileInput's name with its analysis result.
type FileOutput struct {
	Name   string
	Result FileResult
}

// DefaultWorkers bounds AnalyzeFiles' concurrency when Options.Workers is
// left at zero.
const DefaultWorkers = 5

// AnalyzeFiles runs AnalyzeFile across every input. When opts.Parallel is
// set it fans work out across a bounded worker pool (a fixed pool of
// goroutines draining a buffered file channel); otherwise it walks files
// sequentially. tagWitness,
// when non-nil, is shared and mutated across every file in the batch (its
// internal mutex makes this safe under Parallel), enforcing "one witness per
// tag" batch-wide.
//
// ctx is checked between files; canceling it stops dispatching new file
// analyses but does not interrupt one already in flight (that file's own
// per-rule cancellation check in AnalyzeFile handles that).
func (p *Processor) AnalyzeFiles(ctx context.Context, inputs []FileInput, tagWitness *TagWitnessSet, opts Options) []FileOutput {
	out := make([]FileOutput, len(inputs))

	if !opts.Parallel || len(inputs) <= 1 {
		for i, in := range inputs {
			select {
			case <-ctx.Done():
				out[i] = FileOutput{Name: in.Meta.Name, Result: FileResult{Code: Canceled}}
				continue
			default:
			}
			out[i] = FileOutput{Name: in.Meta.Name, Result: p.AnalyzeFile(ctx, in.Content, in.Meta, in.Info, tagWitness, opts)}
		}
		return out
	}

	numWorkers := opts.Workers
	if numWorkers <= 0 {
		numWorkers = DefaultWorkers
	}
	if numWorkers > len(inputs) {
		numWorkers = len(inputs)
	}

	type job struct {
		index int
		input FileInput
	}
	jobs := make(chan job, len(inputs))
	var wg sync.WaitGroup

	worker := func() {
		defer wg.Done()
		for j := range jobs {
			select {
			case <-ctx.Done():
				out[j.index] = FileOutput{Name: j.input.Meta.Name, Result: FileResult{Code: Canceled}}
				continue
			default:
			}
			result := p.AnalyzeFile(ctx, j.input.Content, j.input.Meta, j.input.Info, tagWitness, opts)
			out[j.index] = FileOutput{Name: j.input.Meta.Name, Result: result}
		}
	}

	wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go worker()
	}
	for i, in := range inputs {
		jobs <- job{index: i, input: in}
	}
	close(jobs)
	wg.Wait()

	return out
}
