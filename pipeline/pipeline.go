// Package pipeline runs payloads from a Source through a chain of stages
// into a Sink, each stage running in its own goroutine(s).
package pipeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/hashicorp/go-multierror"
)

// Pipeline is an ordered list of stages.
type Pipeline struct {
	stages []StageRunner
}

// New returns a pipeline built from stages. A pipeline without stages
// passes payloads straight from the source to the sink.
func New(stages ...StageRunner) *Pipeline {
	return &Pipeline{stages: stages}
}

// Execute pumps every payload of src through the stages into sink. It
// blocks until the source is drained, a component fails or ctx is done,
// and returns the aggregated errors of all components. Execute may be
// called concurrently with different sources and sinks.
func (p *Pipeline) Execute(ctx context.Context, src Source, sink Sink) error {
	var wg sync.WaitGroup
	runCtx, cancel := context.WithCancel(ctx)

	// chans[i] feeds stage i; the last channel feeds the sink.
	chans := make([]chan Payload, len(p.stages)+1)
	for i := range chans {
		chans[i] = make(chan Payload)
	}

	// Room for one error per component so that none of them blocks.
	errChan := make(chan error, len(p.stages)+2)

	for i, stage := range p.stages {
		wg.Add(1)

		go func(i int, stage StageRunner) {
			defer wg.Done()

			stage.Run(runCtx, &stageParams{
				stage:   i,
				inChan:  chans[i],
				outChan: chans[i+1],
				errChan: errChan,
			})

			// Closing the output lets the next stage drain and exit.
			close(chans[i+1])
		}(i, stage)
	}

	wg.Add(2)

	go func() {
		defer wg.Done()

		runSource(runCtx, src, chans[0], errChan)
		close(chans[0])
	}()

	go func() {
		defer wg.Done()

		runSink(runCtx, sink, chans[len(chans)-1], errChan)
	}()

	go func() {
		wg.Wait()
		close(errChan)
		cancel()
	}()

	var err error
	for e := range errChan {
		err = multierror.Append(err, e)
		cancel()
	}

	return err
}

func runSource(ctx context.Context, src Source, out chan<- Payload, errChan chan<- error) {
	for src.Next(ctx) {
		select {
		case <-ctx.Done():
			return
		case out <- src.Payload():
		}
	}

	if err := src.Error(); err != nil {
		emitError(fmt.Errorf("pipeline source: %w", err), errChan)
	}
}

func runSink(ctx context.Context, sink Sink, in <-chan Payload, errChan chan<- error) {
	for {
		select {
		case <-ctx.Done():
			return
		case payload, ok := <-in:
			if !ok {
				return
			}

			if err := sink.Consume(ctx, payload); err != nil {
				emitError(fmt.Errorf("pipeline sink: %w", err), errChan)
				return
			}

			payload.MarkAsProcessed()
		}
	}
}

// emitError never blocks; once the buffer is full later errors are
// dropped.
func emitError(err error, errChan chan<- error) {
	select {
	case errChan <- err:
	default:
	}
}
