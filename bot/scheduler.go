// MIT License
//
// Copyright (c) 2021-2026 NorthIsUp
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package bot

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/reugn/go-quartz/job"
	quartzlogger "github.com/reugn/go-quartz/logger"
	"github.com/reugn/go-quartz/quartz"
	"go.uber.org/atomic"

	"github.com/NorthIsUp/cogloop/config"
	"github.com/NorthIsUp/cogloop/extension"
	"github.com/NorthIsUp/cogloop/internal/duration"
	"github.com/NorthIsUp/cogloop/log"
)

// boundTask couples one binding to the extension that declared it, together
// with the settings chain and logger the handler resolves through. The
// enablement switch is re-read on every trigger, so a task bound while its
// extension was enabled goes quiet the moment an operator flips it off.
type boundTask struct {
	ext     extension.Extension
	binding extension.Binding
	typed   *config.TypedChain
	logger  log.Logger

	// guards against a second trigger spawning a duplicate periodic loop
	looping *atomic.Bool
}

// label identifies the task in logs as <extension>.<handler>.
func (x *boundTask) label() string {
	return x.ext.Name() + "." + x.binding.Name()
}

// taskScheduler owns the topic registry, the periodic loops and the cron
// scheduler. Dispatching an event fans it out to every task bound to the
// topic; each handler runs in its own goroutine so a slow or failing
// extension cannot stall the rest.
type taskScheduler struct {
	mu     sync.RWMutex
	topics map[string][]*boundTask
	crons  []*boundTask

	quartzScheduler quartz.Scheduler
	started         *atomic.Bool
	handlers        sync.WaitGroup
	logger          log.Logger
}

func newTaskScheduler(logger log.Logger) *taskScheduler {
	// create an instance of quartz scheduler with logger off
	quartzScheduler, _ := quartz.NewStdScheduler(quartz.WithLogger(quartzlogger.NewSimpleLogger(nil, quartzlogger.LevelOff)))
	return &taskScheduler{
		topics:          make(map[string][]*boundTask),
		quartzScheduler: quartzScheduler,
		started:         atomic.NewBool(false),
		logger:          logger,
	}
}

// bind registers one task binding. Event-triggered and periodic bindings are
// indexed by their listener topic; cron bindings go to the cron scheduler
// when the host starts. Binding after start schedules cron work immediately.
func (x *taskScheduler) bind(ctx context.Context, ext extension.Extension, binding extension.Binding, typed *config.TypedChain, logger log.Logger) error {
	task := &boundTask{
		ext:     ext,
		binding: binding,
		typed:   typed,
		logger:  logger,
		looping: atomic.NewBool(false),
	}

	if binding.IsCron() {
		x.mu.Lock()
		defer x.mu.Unlock()
		if !x.started.Load() {
			x.crons = append(x.crons, task)
			return nil
		}
		return x.scheduleCron(ctx, task)
	}

	topic := binding.Listener()
	x.mu.Lock()
	x.topics[topic] = append(x.topics[topic], task)
	x.mu.Unlock()
	x.logger.Debugf("bound %s to %s", task.label(), topic)
	return nil
}

// dispatch fans the event out to every task bound to its topic. Handlers run
// concurrently under the supplied context; dispatch itself never blocks on
// handler execution and gives no ordering guarantee among handlers.
func (x *taskScheduler) dispatch(ctx context.Context, ev extension.Event) {
	x.mu.RLock()
	tasks := make([]*boundTask, len(x.topics[ev.Name]))
	copy(tasks, x.topics[ev.Name])
	x.mu.RUnlock()

	for _, task := range tasks {
		task := task
		x.handlers.Add(1)
		go func() {
			defer x.handlers.Done()
			x.invoke(ctx, task, ev)
		}()
	}
}

// invoke runs one task for one event occurrence: enablement first, filters
// second, then either a single contained run or the start of a periodic loop.
func (x *taskScheduler) invoke(ctx context.Context, task *boundTask, ev extension.Event) {
	if !extension.Enabled(ctx, task.typed, task.logger) {
		task.logger.Debugf("[%s] extension disabled, skipping %s", ev.Name, task.binding.Name())
		return
	}
	if filter := task.binding.Filter(); filter != nil && !filter(ev) {
		task.logger.Debugf("[%s] filter rejected %s", ev.Name, task.binding.Name())
		return
	}
	if filter := task.binding.InstanceFilter(); filter != nil && !filter(task.ext, ev) {
		task.logger.Debugf("[%s] instance filter rejected %s", ev.Name, task.binding.Name())
		return
	}

	if task.binding.IsPeriodic() {
		x.runLoop(ctx, task, ev)
		return
	}

	token := taskToken()
	task.logger.Debugf("[%s] starting %s (%s)", ev.Name, task.binding.Name(), token)
	x.runContained(ctx, task, ev, token)
	task.logger.Debugf("[%s] complete %s (%s)", ev.Name, task.binding.Name(), token)
}

// runLoop resolves the interval once, then runs the handler forever at that
// cadence. A failing iteration is logged and the loop continues; the loop
// only exits when the run context is canceled.
func (x *taskScheduler) runLoop(ctx context.Context, task *boundTask, ev extension.Event) {
	if !task.looping.CompareAndSwap(false, true) {
		task.logger.Debugf("[%s] periodic loop for %s already running", ev.Name, task.binding.Name())
		return
	}
	defer task.looping.Store(false)

	interval, err := task.binding.Interval().Resolve(ctx, task.typed)
	if err != nil {
		task.logger.Errorf("periodic - %s - interval did not resolve: %v", task.label(), err)
		return
	}

	suffix := ""
	for {
		token := taskToken()
		task.logger.Debugf("periodic - %s - every %gs%s", task.label(), interval.Seconds(), suffix)
		started := time.Now()
		x.runContained(ctx, task, ev, token)
		suffix = fmt.Sprintf(" - previous duration: %s", duration.Elapsed(time.Since(started)))

		select {
		case <-ctx.Done():
			task.logger.Debugf("periodic - %s - stopped", task.label())
			return
		case <-time.After(interval):
		}
	}
}

// runContained executes the handler with panic containment. Errors and
// panics are logged with the correlation token and swallowed so they never
// reach the dispatcher or other bound handlers.
func (x *taskScheduler) runContained(ctx context.Context, task *boundTask, ev extension.Event, token string) {
	defer x.recovery(task, ev, token)
	if err := task.binding.Handler()(ctx, ev); err != nil {
		task.logger.Errorf("[%s] %s (%s) failed: %v", ev.Name, task.binding.Name(), token, err)
	}
}

// recovery traps a panicking handler and logs where it blew up.
func (x *taskScheduler) recovery(task *boundTask, ev extension.Event, token string) {
	if r := recover(); r != nil {
		pc, fn, line, _ := runtime.Caller(2)
		switch err, ok := r.(error); {
		case ok:
			task.logger.Errorf("[%s] %s (%s) panicked: %v at %s[%s:%d]", ev.Name, task.binding.Name(), token, err, runtime.FuncForPC(pc).Name(), fn, line)
		default:
			task.logger.Errorf("[%s] %s (%s) panicked: %#v at %s[%s:%d]", ev.Name, task.binding.Name(), token, r, runtime.FuncForPC(pc).Name(), fn, line)
		}
	}
}

// start brings up the cron scheduler and schedules every cron binding
// collected before start. Cron handlers receive the supplied context.
func (x *taskScheduler) start(ctx context.Context) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.quartzScheduler.Start(ctx)
	x.started.Store(x.quartzScheduler.IsStarted())
	for _, task := range x.crons {
		if err := x.scheduleCron(ctx, task); err != nil {
			_ = x.quartzScheduler.Clear()
			x.quartzScheduler.Stop()
			x.started.Store(false)
			return err
		}
	}
	x.crons = nil
	return nil
}

// scheduleCron registers one cron binding with the quartz scheduler. The
// caller holds the lock.
func (x *taskScheduler) scheduleCron(ctx context.Context, task *boundTask) error {
	expression := task.binding.Cron()
	ev := extension.NewEvent("cron", map[string]any{"expression": expression})
	cronJob := job.NewFunctionJob[bool](
		func(jobCtx context.Context) (bool, error) {
			x.invoke(jobCtx, task, ev)
			return true, nil
		},
	)

	detail := quartz.NewJobDetail(cronJob, quartz.NewJobKey(uuid.NewString()))
	location := time.Now().Location()
	trigger, err := quartz.NewCronTriggerWithLoc(expression, location)
	if err != nil {
		x.logger.Error(fmt.Errorf("failed to schedule %s: %w", task.label(), err))
		return err
	}
	x.logger.Debugf("bound %s to cron %q", task.label(), expression)
	return x.quartzScheduler.ScheduleJob(detail, trigger)
}

// stop clears the cron scheduler and waits for in-flight handlers and
// periodic loops to drain, bounded by the supplied context. The run context
// must already be canceled or loops will hold the drain open until the
// deadline.
func (x *taskScheduler) stop(ctx context.Context) error {
	if !x.started.Load() {
		return nil
	}

	x.mu.Lock()
	_ = x.quartzScheduler.Clear()
	x.quartzScheduler.Stop()
	x.started.Store(x.quartzScheduler.IsStarted())
	x.mu.Unlock()

	x.quartzScheduler.Wait(ctx)

	drained := make(chan struct{})
	go func() {
		x.handlers.Wait()
		close(drained)
	}()
	select {
	case <-drained:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("draining task handlers: %w", ctx.Err())
	}
}

// taskToken returns a short correlation token distinguishing concurrent
// invocations of the same handler in logs.
func taskToken() string {
	return uuid.NewString()[:8]
}
