package pipeline

import (
	"context"
	"fmt"
	"sync"
)

type fifo struct {
	proc Processor
}

// NewFIFO returns a StageRunner that processes payloads one at a time,
// preserving their order.
func NewFIFO(proc Processor) StageRunner {
	return fifo{proc: proc}
}

// Run implements StageRunner.
func (r fifo) Run(ctx context.Context, params StageParams) {
	for {
		select {
		case <-ctx.Done():
			return
		case in, ok := <-params.Input():
			if !ok {
				return
			}

			out, err := r.proc.Process(ctx, in)
			if err != nil {
				emitError(fmt.Errorf("pipeline stage %d: %w", params.StageIndex(), err), params.Error())
				return
			}

			if out == nil {
				in.MarkAsProcessed()
				continue
			}

			select {
			case <-ctx.Done():
				return
			case params.Output() <- out:
			}
		}
	}
}

type fixedWorkerPool struct {
	workers []StageRunner
}

// NewFixedWorkerPool returns a StageRunner that spreads payloads over
// numWorkers FIFO workers sharing the stage's input and output channels.
// Output order is not preserved.
func NewFixedWorkerPool(proc Processor, numWorkers int) StageRunner {
	if numWorkers <= 0 {
		panic("NewFixedWorkerPool: numWorkers must be > 0")
	}

	workers := make([]StageRunner, numWorkers)
	for i := range workers {
		workers[i] = NewFIFO(proc)
	}

	return fixedWorkerPool{workers: workers}
}

// Run implements StageRunner.
func (r fixedWorkerPool) Run(ctx context.Context, params StageParams) {
	var wg sync.WaitGroup

	for _, w := range r.workers {
		wg.Add(1)

		go func(w StageRunner) {
			defer wg.Done()
			w.Run(ctx, params)
		}(w)
	}

	wg.Wait()
}
