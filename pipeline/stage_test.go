package pipeline_test

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	check "gopkg.in/check.v1"

	"github.com/mycok/coursesearch/pipeline"
)

var _ = check.Suite(new(stageRunnerTestSuite))

type stageRunnerTestSuite struct{}

func (s *stageRunnerTestSuite) TestFIFO(c *check.C) {
	stages := make([]pipeline.StageRunner, 4)
	for i := range stages {
		stages[i] = pipeline.NewFIFO(passThrough())
	}

	src := &sliceSource{data: makePayloads(5)}
	sink := new(recordingSink)

	err := pipeline.New(stages...).Execute(context.TODO(), src, sink)
	c.Assert(err, check.IsNil)
	c.Assert(sink.data, check.DeepEquals, src.data)
	assertProcessed(c, src.data...)
}

func (s *stageRunnerTestSuite) TestFIFOProcessorError(c *check.C) {
	proc := pipeline.ProcessorFunc(func(context.Context, pipeline.Payload) (pipeline.Payload, error) {
		return nil, errors.New("bad payload")
	})

	src := &sliceSource{data: makePayloads(3)}
	err := pipeline.New(pipeline.NewFIFO(proc)).Execute(context.TODO(), src, new(recordingSink))
	c.Assert(err, check.ErrorMatches, "(?s).*pipeline stage 0: bad payload.*")
}

func (s *stageRunnerTestSuite) TestFixedWorkerPoolRunsInParallel(c *check.C) {
	const workers = 6

	var processed int32
	arrived := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})

	proc := pipeline.ProcessorFunc(func(context.Context, pipeline.Payload) (pipeline.Payload, error) {
		arrived <- struct{}{}
		<-release
		atomic.AddInt32(&processed, 1)

		return nil, nil
	})

	src := &sliceSource{data: makePayloads(workers)}

	go func() {
		err := pipeline.New(pipeline.NewFixedWorkerPool(proc, workers)).Execute(context.TODO(), src, nil)
		c.Check(err, check.IsNil)
		close(done)
	}()

	// Every payload is held by its own worker at the same time.
	for i := 0; i < workers; i++ {
		select {
		case <-arrived:
		case <-time.After(10 * time.Second):
			c.Fatalf("timed out waiting for worker %d", i)
		}
	}

	close(release)

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		c.Fatal("timed out waiting for pipeline to complete")
	}

	c.Assert(atomic.LoadInt32(&processed), check.Equals, int32(workers))
	assertProcessed(c, src.data...)
}

func (s *stageRunnerTestSuite) TestFixedWorkerPoolPanicsWithoutWorkers(c *check.C) {
	c.Assert(func() { pipeline.NewFixedWorkerPool(passThrough(), 0) }, check.PanicMatches, ".*numWorkers must be > 0")
}

func passThrough() pipeline.Processor {
	return pipeline.ProcessorFunc(func(_ context.Context, p pipeline.Payload) (pipeline.Payload, error) {
		return p, nil
	})
}
