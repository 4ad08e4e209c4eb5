package worker_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/okian/retention/internal/adapters/mq/queue"
	"github.com/okian/retention/internal/adapters/mq/worker"
	"github.com/okian/retention/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func await(t *testing.T, ch <-chan queue.Result) queue.Result {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for job result")
		return queue.Result{}
	}
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a worker reading from a channel", t, func() {
		source := make(chan queue.Job, 4)
		w := worker.NewInMemoryWorker(source, worker.WithName("w1"), worker.WithLogger(logger.Discard()))
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go w.Run(ctx)

		convey.Convey("When a job succeeds", func() {
			job, result := queue.NewJob("analyze", func(context.Context) (any, error) { return 42, nil })
			source <- job
			r := await(t, result)

			convey.Convey("Then its value is replied", func() {
				convey.So(r.Err, convey.ShouldBeNil)
				convey.So(r.Value, convey.ShouldEqual, 42)
			})
		})

		convey.Convey("When a job fails", func() {
			boom := errors.New("boom")
			job, result := queue.NewJob("analyze", func(context.Context) (any, error) { return nil, boom })
			source <- job
			r := await(t, result)

			convey.Convey("Then the error is replied", func() {
				convey.So(errors.Is(r.Err, boom), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a job panics", func() {
			job, result := queue.NewJob("compare", func(context.Context) (any, error) { panic("bad input") })
			source <- job
			r := await(t, result)

			convey.Convey("Then the panic becomes an error and the worker keeps running", func() {
				convey.So(errors.Is(r.Err, worker.ErrJobPanic), convey.ShouldBeTrue)
				next, nextResult := queue.NewJob("analyze", func(context.Context) (any, error) { return "ok", nil })
				source <- next
				convey.So(await(t, nextResult).Value, convey.ShouldEqual, "ok")
			})
		})

		convey.Convey("When a job has no task", func() {
			job, result := queue.NewJob("analyze", nil)
			source <- job
			convey.So(await(t, result).Err, convey.ShouldNotBeNil)
		})

		convey.Convey("When shutting down", func() {
			sctx, scancel := context.WithTimeout(context.Background(), time.Second)
			defer scancel()
			convey.So(w.Shutdown(sctx), convey.ShouldBeNil)
			convey.So(w.Shutdown(sctx), convey.ShouldBeNil)
		})
	})
}

func TestJobTimeout(t *testing.T) {
	convey.Convey("Given a worker with a short job timeout", t, func() {
		source := make(chan queue.Job, 1)
		w := worker.NewInMemoryWorker(source,
			worker.WithLogger(logger.Discard()),
			worker.WithJobTimeout(20*time.Millisecond),
		)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go w.Run(ctx)

		job, result := queue.NewJob("scrape", func(ctx context.Context) (any, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		})
		source <- job

		convey.So(errors.Is(await(t, result).Err, context.DeadlineExceeded), convey.ShouldBeTrue)
	})
}

func TestPool(t *testing.T) {
	convey.Convey("Given a pool over an in-memory queue", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(64))
		p := worker.NewPool(4, q, worker.WithPoolLogger(logger.Discard()))
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		p.Start(ctx)
		p.Start(ctx)

		convey.So(p.Size(), convey.ShouldEqual, 4)

		convey.Convey("When many jobs are submitted", func() {
			var ran atomic.Int64
			results := make([]<-chan queue.Result, 0, 32)
			for i := 0; i < 32; i++ {
				job, result := queue.NewJob("analyze", func(context.Context) (any, error) {
					ran.Add(1)
					return nil, nil
				})
				convey.So(q.Enqueue(ctx, job), convey.ShouldBeNil)
				results = append(results, result)
			}
			for _, r := range results {
				await(t, r)
			}

			convey.Convey("Then every job runs exactly once", func() {
				convey.So(ran.Load(), convey.ShouldEqual, 32)
				convey.So(p.Active(), convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When shutting down", func() {
			job, result := queue.NewJob("analyze", func(context.Context) (any, error) { return "drained", nil })
			convey.So(q.Enqueue(ctx, job), convey.ShouldBeNil)
			convey.So(p.Shutdown(context.Background()), convey.ShouldBeNil)

			convey.Convey("Then queued work drains and the queue refuses more", func() {
				convey.So(await(t, result).Value, convey.ShouldEqual, "drained")
				late, _ := queue.NewJob("analyze", nil)
				convey.So(errors.Is(q.Enqueue(ctx, late), queue.ErrClosed), convey.ShouldBeTrue)
			})
		})
	})
}
