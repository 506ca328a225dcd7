// Package poller 周期任务：立即执行一次，之后按间隔执行，上一轮未结束时跳过本轮。
package poller

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/partshub/internal/logger"
)

// Func 单次轮询
type Func func(ctx context.Context) error

// Task 运行中的轮询任务
type Task struct {
	name     string
	interval time.Duration
	fn       Func

	cancel  context.CancelFunc
	running atomic.Bool
	stopped atomic.Bool
	skipped atomic.Int64
	runs    sync.WaitGroup
	done    chan struct{}
}

// Start 启动轮询任务，interval 非正数时只执行一次
func Start(ctx context.Context, name string, interval time.Duration, fn Func) *Task {
	ctx, cancel := context.WithCancel(ctx)
	t := &Task{
		name:     name,
		interval: interval,
		fn:       fn,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	go t.loop(ctx)
	return t
}

// Name 任务名称
func (t *Task) Name() string {
	return t.name
}

// Active 任务未被停止；停止后到达的结果应丢弃
func (t *Task) Active() bool {
	return !t.stopped.Load()
}

// Skipped 因上一轮未结束而跳过的次数
func (t *Task) Skipped() int64 {
	return t.skipped.Load()
}

// Stop 停止任务并等待进行中的执行退出
func (t *Task) Stop() {
	if !t.stopped.CompareAndSwap(false, true) {
		<-t.done
		return
	}
	t.cancel()
	<-t.done
	t.runs.Wait()
}

func (t *Task) loop(ctx context.Context) {
	defer close(t.done)
	t.tick(ctx)
	if t.interval <= 0 {
		return
	}
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.tick(ctx)
		}
	}
}

func (t *Task) tick(ctx context.Context) {
	if !t.running.CompareAndSwap(false, true) {
		t.skipped.Add(1)
		logger.Debugw("poller_tick_skipped", "task", t.name)
		return
	}
	t.runs.Add(1)
	go func() {
		defer t.runs.Done()
		defer t.running.Store(false)
		if err := t.fn(ctx); err != nil && ctx.Err() == nil {
			logger.Warnw("poller_tick_failed", "task", t.name, "error", err)
		}
	}()
}

// Group 按视图管理一组任务，视图卸载或会话失效时统一停止
type Group struct {
	mu    sync.Mutex
	tasks map[string]*Task
}

// NewGroup 创建任务组
func NewGroup() *Group {
	return &Group{tasks: make(map[string]*Task)}
}

// Start 启动任务；同名任务会先被停止
func (g *Group) Start(ctx context.Context, name string, interval time.Duration, fn Func) *Task {
	g.mu.Lock()
	previous := g.tasks[name]
	task := Start(ctx, name, interval, fn)
	g.tasks[name] = task
	g.mu.Unlock()

	if previous != nil {
		previous.Stop()
	}
	return task
}

// Stop 停止指定任务
func (g *Group) Stop(name string) {
	g.mu.Lock()
	task := g.tasks[name]
	delete(g.tasks, name)
	g.mu.Unlock()
	if task != nil {
		task.Stop()
	}
}

// StopAll 停止全部任务
func (g *Group) StopAll() {
	g.mu.Lock()
	tasks := g.tasks
	g.tasks = make(map[string]*Task)
	g.mu.Unlock()
	for _, task := range tasks {
		task.Stop()
	}
}

// Len 运行中的任务数
func (g *Group) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.tasks)
}
