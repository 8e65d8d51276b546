package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

type recordingLogger struct {
	mu       sync.Mutex
	messages []string
}

func (r *recordingLogger) Errorf(template string, args ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, fmt.Sprintf(template, args...))
}

func (r *recordingLogger) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.messages)
}

func TestScheduler(t *testing.T) {
	Convey("Given a Scheduler", t, func() {
		Convey("New function", func() {
			scheduler := New(nil)

			Convey("It should create a new scheduler successfully", func() {
				So(scheduler, ShouldNotBeNil)
				So(scheduler.cron, ShouldNotBeNil)
			})
		})

		Convey("AddJob with an interval spec", func() {
			scheduler := New(nil)
			var runs atomic.Int32

			err := scheduler.AddJob("@every 1s", func(ctx context.Context) error {
				runs.Add(1)
				return nil
			})

			Convey("It should run the job on the interval", func() {
				So(err, ShouldBeNil)

				scheduler.Start()
				time.Sleep(2500 * time.Millisecond)
				scheduler.Stop()

				So(runs.Load(), ShouldBeGreaterThanOrEqualTo, 2)
			})
		})

		Convey("AddJob with an invalid spec", func() {
			scheduler := New(nil)
			err := scheduler.AddJob("not a schedule", func(ctx context.Context) error { return nil })

			Convey("It should return an error", func() {
				So(err, ShouldNotBeNil)
			})
		})

		Convey("When a job iteration fails", func() {
			log := &recordingLogger{}
			scheduler := New(log)

			err := scheduler.AddJob("@every 1s", func(ctx context.Context) error {
				return errors.New("fetch failed")
			})
			So(err, ShouldBeNil)

			Convey("The failure should be logged and the schedule should keep going", func() {
				scheduler.Start()
				time.Sleep(2500 * time.Millisecond)
				scheduler.Stop()

				So(log.count(), ShouldBeGreaterThanOrEqualTo, 2)
			})
		})

		Convey("Stop should wait for a running iteration", func() {
			scheduler := New(nil)
			var finished atomic.Bool

			err := scheduler.AddJob("@every 1s", func(ctx context.Context) error {
				time.Sleep(500 * time.Millisecond)
				finished.Store(true)
				return nil
			})
			So(err, ShouldBeNil)

			scheduler.Start()
			time.Sleep(1200 * time.Millisecond)
			scheduler.Stop()

			Convey("The iteration in flight should have completed", func() {
				So(finished.Load(), ShouldBeTrue)
			})
		})
	})
}
