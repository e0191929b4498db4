package pipeline

import "context"

// Source feeds payloads into a pipeline.
type Source interface {
	// Next advances to the next payload. It returns false once the source
	// is drained or has failed.
	Next(context.Context) bool

	// Payload returns the payload Next advanced to.
	Payload() Payload

	// Error returns the error that stopped the source, if any.
	Error() error
}

// Payload is a unit of work travelling through a pipeline.
type Payload interface {
	// MarkAsProcessed is called once the payload reached the sink or was
	// dropped by a stage. Implementations typically return themselves to a
	// pool here.
	MarkAsProcessed()
}

// Processor transforms payloads for a stage. Returning a nil payload drops
// it; returning an error stops the whole pipeline.
type Processor interface {
	Process(context.Context, Payload) (Payload, error)
}

// ProcessorFunc adapts a plain function to the Processor interface.
type ProcessorFunc func(context.Context, Payload) (Payload, error)

// Process calls f(ctx, p).
func (f ProcessorFunc) Process(ctx context.Context, p Payload) (Payload, error) {
	return f(ctx, p)
}

// StageRunner drives a Processor for one stage of the pipeline.
type StageRunner interface {
	// Run blocks until the input channel is closed, ctx is done or the
	// processor fails.
	Run(context.Context, StageParams)
}

// StageParams carries the channels wired to a stage.
type StageParams interface {
	StageIndex() int
	Input() <-chan Payload
	Output() chan<- Payload
	Error() chan<- error
}

// Sink receives the payloads that made it through every stage.
type Sink interface {
	Consume(context.Context, Payload) error
}

type stageParams struct {
	stage   int
	inChan  <-chan Payload
	outChan chan<- Payload
	errChan chan<- error
}

func (p *stageParams) StageIndex() int        { return p.stage }
func (p *stageParams) Input() <-chan Payload  { return p.inChan }
func (p *stageParams) Output() chan<- Payload { return p.outChan }
func (p *stageParams) Error() chan<- error    { return p.errChan }
