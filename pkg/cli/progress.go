package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// ProgressReporter 进度报告接口
type ProgressReporter interface {
	SetTotal(total int64)
	SetCurrent(current int64)
	Finish()
}

// ProgressUnit 进度计数单位
type ProgressUnit int

const (
	UnitItems ProgressUnit = iota // 条目（文件对、测试组合）
	UnitBytes                     // 字节
)

// ProgressManager 进度管理器
type ProgressManager struct {
	enabled bool
	output  io.Writer
	mutex   sync.RWMutex
}

// NewProgressManager 创建进度管理器
func NewProgressManager(enabled bool) *ProgressManager {
	return &ProgressManager{
		enabled: enabled,
		output:  os.Stderr,
	}
}

// NewTask 创建新的进度任务
func (pm *ProgressManager) NewTask(name string, total int64, unit ProgressUnit) ProgressReporter {
	if !pm.enabled {
		return &NoOpProgress{}
	}

	pm.mutex.RLock()
	defer pm.mutex.RUnlock()

	task := &ProgressTask{
		name:      name,
		total:     total,
		unit:      unit,
		startTime: time.Now(),
		output:    pm.output,
	}

	task.render()
	return task
}

// SetOutput 设置输出流
func (pm *ProgressManager) SetOutput(output io.Writer) {
	pm.mutex.Lock()
	defer pm.mutex.Unlock()
	pm.output = output
}

// ProgressTask 进度任务
type ProgressTask struct {
	name      string
	total     int64
	current   int64
	unit      ProgressUnit
	startTime time.Time
	output    io.Writer
	finished  bool
	mutex     sync.RWMutex
}

// SetTotal 设置总量
func (pt *ProgressTask) SetTotal(total int64) {
	pt.mutex.Lock()
	defer pt.mutex.Unlock()
	pt.total = total
	pt.render()
}

// SetCurrent 设置当前值，超出总量时截断为总量
func (pt *ProgressTask) SetCurrent(current int64) {
	pt.mutex.Lock()
	defer pt.mutex.Unlock()
	pt.current = min(max(current, 0), pt.total)
	pt.render()
}

// Finish 完成进度
func (pt *ProgressTask) Finish() {
	pt.mutex.Lock()
	defer pt.mutex.Unlock()
	if pt.finished {
		return
	}
	pt.current = pt.total
	pt.render()
	pt.finished = true
	fmt.Fprintln(pt.output) // 换行
}

// format 按计数单位格式化数值
func (pt *ProgressTask) format(n int64) string {
	if pt.unit == UnitBytes {
		return formatBytes(n)
	}
	return fmt.Sprintf("%d", n)
}

// render 渲染进度条
func (pt *ProgressTask) render() {
	if pt.finished {
		return
	}

	// 计算百分比
	var percentage float64
	if pt.total > 0 {
		percentage = float64(pt.current) / float64(pt.total) * 100
	}

	// 计算速度和剩余时间
	elapsed := time.Since(pt.startTime)
	var speed float64
	var eta time.Duration

	if elapsed.Seconds() > 0 && pt.current > 0 {
		speed = float64(pt.current) / elapsed.Seconds()
		if speed > 0 && pt.total > pt.current {
			eta = time.Duration(float64(pt.total-pt.current)/speed) * time.Second
		}
	}

	// 构建进度条
	barWidth := 40
	filled := min(max(int(float64(barWidth)*percentage/100), 0), barWidth)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)

	output := fmt.Sprintf("\r%s: [%s] %.1f%% (%s/%s)",
		pt.name, bar, percentage, pt.format(pt.current), pt.format(pt.total))

	// 添加速度和ETA信息
	if speed > 0 {
		output += fmt.Sprintf(" | %s/s", pt.format(int64(speed)))
	}
	if eta > 0 {
		output += fmt.Sprintf(" | ETA: %s", formatDuration(eta))
	}

	fmt.Fprint(pt.output, output)
}

// NoOpProgress 空操作进度报告器
type NoOpProgress struct{}

func (nop *NoOpProgress) SetTotal(total int64)     {}
func (nop *NoOpProgress) SetCurrent(current int64) {}
func (nop *NoOpProgress) Finish()                  {}

// Spinner 旋转进度指示器
type Spinner struct {
	message string
	chars   []string
	index   int
	active  bool
	output  io.Writer
	ticker  *time.Ticker
	done    chan struct{}
	mutex   sync.Mutex
}

// NewSpinner 创建旋转指示器
func NewSpinner(message string) *Spinner {
	return &Spinner{
		message: message,
		chars:   []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		output:  os.Stderr,
	}
}

// Start 启动旋转指示器
func (s *Spinner) Start() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.active {
		return
	}

	s.active = true
	s.ticker = time.NewTicker(100 * time.Millisecond)
	s.done = make(chan struct{})
	ticker, done := s.ticker, s.done

	go func() {
		for {
			select {
			case <-ticker.C:
				s.mutex.Lock()
				if s.active {
					fmt.Fprintf(s.output, "\r%s %s", s.chars[s.index], s.message)
					s.index = (s.index + 1) % len(s.chars)
				}
				s.mutex.Unlock()
			case <-done:
				return
			}
		}
	}()
}

// Stop 停止旋转指示器
func (s *Spinner) Stop() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.active {
		return
	}

	s.active = false
	s.ticker.Stop()
	close(s.done)
	fmt.Fprint(s.output, "\r\033[K") // 清除当前行
}

// 辅助函数

// formatBytes 格式化字节数
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// formatDuration 格式化时间间隔
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}
