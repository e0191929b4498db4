package indexer

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/juju/clock/testclock"
	check "gopkg.in/check.v1"

	orchestrator "github.com/mycok/coursesearch/indexer"
	"github.com/mycok/coursesearch/service/indexer/mocks"
	"github.com/mycok/coursesearch/service/partition"
)

var _ = check.Suite(new(ConfigTestSuite))
var _ = check.Suite(new(IndexerServiceTestSuite))

func Test(t *testing.T) {
	check.TestingT(t)
}

type ConfigTestSuite struct{}

func (s *ConfigTestSuite) TestConfigValidation(c *check.C) {
	ctrl := gomock.NewController(c)
	defer ctrl.Finish()

	originalConfig := Config{
		Indexer:        mocks.NewMockCollectionIndexer(ctrl),
		Courses:        []string{"6.002x"},
		UpdateInterval: time.Minute,
	}

	config := originalConfig
	c.Assert(config.validate(), check.IsNil)
	c.Assert(config.PartitionDetector, check.Not(check.IsNil), check.Commentf("default partition detector was not assigned"))
	c.Assert(config.Clock, check.Not(check.IsNil), check.Commentf("default clock was not assigned"))
	c.Assert(config.Logger, check.Not(check.IsNil), check.Commentf("default logger was not assigned"))

	config = originalConfig
	config.Indexer = nil
	c.Assert(config.validate(), check.ErrorMatches, "(?ms).*collection indexer not provided.*")

	config = originalConfig
	config.Courses = nil
	c.Assert(config.validate(), check.ErrorMatches, "(?ms).*course list not provided.*")

	config = originalConfig
	config.UpdateInterval = 0
	c.Assert(config.validate(), check.ErrorMatches, "(?ms).*invalid value for update interval.*")
}

type IndexerServiceTestSuite struct{}

func (s *IndexerServiceTestSuite) TestFullRun(c *check.C) {
	ctrl := gomock.NewController(c)
	defer ctrl.Finish()

	mockIndexer := mocks.NewMockCollectionIndexer(ctrl)
	clk := testclock.NewClock(time.Now())

	svc, err := New(Config{
		Indexer:           mockIndexer,
		Courses:           []string{"6.002x", "6.00x", "3.091x"},
		PartitionDetector: partition.Fixed{Partition: 0, NumOfPartitions: 2},
		Clock:             clk,
		UpdateInterval:    time.Minute,
	})
	c.Assert(err, check.IsNil)

	ctx, cancelFn := context.WithCancel(context.TODO())
	defer cancelFn()

	gomock.InOrder(
		mockIndexer.EXPECT().IndexCollection(gomock.Any(), "6.002x").Return(&orchestrator.Stats{Submitted: 3}, nil),
		mockIndexer.EXPECT().IndexCollection(gomock.Any(), "3.091x").Return(&orchestrator.Stats{Submitted: 1}, nil),
	)

	go func() {
		// Wait until the main loop calls After and advance the time to
		// trigger an indexing pass.
		c.Assert(clk.WaitAdvance(time.Minute, 10*time.Second, 1), check.IsNil)

		// Wait until the main loop calls After again and cancel the
		// context.
		c.Assert(clk.WaitAdvance(time.Millisecond, 10*time.Second, 1), check.IsNil)
		cancelFn()
	}()

	c.Assert(svc.Run(ctx), check.IsNil)
}

func (s *IndexerServiceTestSuite) TestFailedCourseDoesNotStopThePass(c *check.C) {
	ctrl := gomock.NewController(c)
	defer ctrl.Finish()

	mockIndexer := mocks.NewMockCollectionIndexer(ctrl)
	clk := testclock.NewClock(time.Now())

	svc, err := New(Config{
		Indexer:        mockIndexer,
		Courses:        []string{"6.002x", "6.00x"},
		Clock:          clk,
		UpdateInterval: time.Minute,
	})
	c.Assert(err, check.IsNil)

	ctx, cancelFn := context.WithCancel(context.TODO())
	defer cancelFn()

	gomock.InOrder(
		mockIndexer.EXPECT().IndexCollection(gomock.Any(), "6.002x").Return(new(orchestrator.Stats), fmt.Errorf("content store unreachable")),
		mockIndexer.EXPECT().IndexCollection(gomock.Any(), "6.00x").Return(new(orchestrator.Stats), nil),
	)

	go func() {
		c.Assert(clk.WaitAdvance(time.Minute, 10*time.Second, 1), check.IsNil)
		c.Assert(clk.WaitAdvance(time.Millisecond, 10*time.Second, 1), check.IsNil)
		cancelFn()
	}()

	c.Assert(svc.Run(ctx), check.IsNil)
}

func (s *IndexerServiceTestSuite) TestPassIsDeferredUntilPartitionDataIsAvailable(c *check.C) {
	ctrl := gomock.NewController(c)
	defer ctrl.Finish()

	mockIndexer := mocks.NewMockCollectionIndexer(ctrl)
	clk := testclock.NewClock(time.Now())

	svc, err := New(Config{
		Indexer:           mockIndexer,
		Courses:           []string{"6.002x"},
		PartitionDetector: detectorFunc(func() (int, int, error) { return -1, -1, partition.ErrNoPartitionDataAvailableYet }),
		Clock:             clk,
		UpdateInterval:    time.Minute,
	})
	c.Assert(err, check.IsNil)

	ctx, cancelFn := context.WithCancel(context.TODO())
	defer cancelFn()

	go func() {
		c.Assert(clk.WaitAdvance(time.Minute, 10*time.Second, 1), check.IsNil)
		c.Assert(clk.WaitAdvance(time.Millisecond, 10*time.Second, 1), check.IsNil)
		cancelFn()
	}()

	c.Assert(svc.Run(ctx), check.IsNil)
}

func (s *IndexerServiceTestSuite) TestPartitionErrorStopsTheService(c *check.C) {
	ctrl := gomock.NewController(c)
	defer ctrl.Finish()

	clk := testclock.NewClock(time.Now())

	svc, err := New(Config{
		Indexer:           mocks.NewMockCollectionIndexer(ctrl),
		Courses:           []string{"6.002x"},
		PartitionDetector: detectorFunc(func() (int, int, error) { return -1, -1, fmt.Errorf("no host name") }),
		Clock:             clk,
		UpdateInterval:    time.Minute,
	})
	c.Assert(err, check.IsNil)

	go func() {
		c.Assert(clk.WaitAdvance(time.Minute, 10*time.Second, 1), check.IsNil)
	}()

	c.Assert(svc.Run(context.TODO()), check.ErrorMatches, "no host name")
}

type detectorFunc func() (int, int, error)

func (f detectorFunc) PartitionInfo() (int, int, error) { return f() }
