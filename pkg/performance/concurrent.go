package performance

import (
	"context"
	"runtime"
	"sync"
)

// WorkerPool 工作协程池
type WorkerPool struct {
	jobQueue    chan func()
	workerCount int
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	closeOnce   sync.Once
}

// NewWorkerPool 创建并启动工作协程池，workerCount 不大于 0 时使用 CPU 核心数
func NewWorkerPool(ctx context.Context, workerCount int) *WorkerPool {
	if workerCount <= 0 {
		workerCount = runtime.NumCPU()
	}
	ctx, cancel := context.WithCancel(ctx)

	wp := &WorkerPool{
		jobQueue:    make(chan func(), workerCount*2),
		workerCount: workerCount,
		ctx:         ctx,
		cancel:      cancel,
	}

	for range workerCount {
		wp.wg.Add(1)
		go wp.run()
	}
	return wp
}

// Submit 提交任务，协程池已取消时返回 false
func (wp *WorkerPool) Submit(job func()) bool {
	select {
	case <-wp.ctx.Done():
		return false
	default:
	}

	select {
	case wp.jobQueue <- job:
		return true
	case <-wp.ctx.Done():
		return false
	}
}

// Wait 停止接收任务并等待已提交的任务完成
func (wp *WorkerPool) Wait() {
	wp.closeOnce.Do(func() { close(wp.jobQueue) })
	wp.wg.Wait()
	wp.cancel()
}

// Stop 取消尚未开始的任务并等待工作协程退出
func (wp *WorkerPool) Stop() {
	wp.cancel()
	wp.Wait()
}

// WorkerCount 工作协程数量
func (wp *WorkerPool) WorkerCount() int {
	return wp.workerCount
}

// run 工作协程运行方法
func (wp *WorkerPool) run() {
	defer wp.wg.Done()

	for {
		select {
		case job, ok := <-wp.jobQueue:
			if !ok {
				return
			}
			if wp.ctx.Err() != nil {
				continue
			}
			job()
		case <-wp.ctx.Done():
			// 排空队列直到关闭
			for range wp.jobQueue {
			}
			return
		}
	}
}
