package observability

import (
	"log/slog"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shirou/gopsutil/process"
)

// HealthStats is the last sample of the server process and of the
// notification pipeline.
type HealthStats struct {
	PID                  int32
	Status               string
	CPUPercent           float64
	RSSBytes             uint64
	AllocMemMb           uint64
	NumGC                uint32
	Goroutines           int
	NotificationsSent    uint64
	NotificationsFailed  uint64
	NotificationsDropped uint64
	QueueLength          int
	QueueCapacity        int
	SampledAt            time.Time
}

// MonitoringManager keeps the counters updated by the notification pipeline
// and the latest process sample served by the Health RPC.
type MonitoringManager struct {
	log     *slog.Logger
	mu      sync.RWMutex
	latest  HealthStats
	process *process.Process

	sent    uint64
	failed  uint64
	dropped uint64
}

func NewMonitoringManager(log *slog.Logger) (*MonitoringManager, error) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, err
	}
	return &MonitoringManager{log: log, process: p}, nil
}

func (mm *MonitoringManager) IncrSent()    { atomic.AddUint64(&mm.sent, 1) }
func (mm *MonitoringManager) IncrFailed()  { atomic.AddUint64(&mm.failed, 1) }
func (mm *MonitoringManager) IncrDropped() { atomic.AddUint64(&mm.dropped, 1) }

// Sample refreshes the process metrics. A failing probe keeps the previous
// values and only updates the counters.
func (mm *MonitoringManager) Sample(queueLength, queueCapacity int) HealthStats {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	mm.mu.Lock()
	defer mm.mu.Unlock()
	stats := mm.latest
	stats.PID = mm.process.Pid
	if rss, cpu, status, err := selfStats(mm.process); err != nil {
		mm.log.Debug("Failed to collect self stats", "error", err)
	} else {
		stats.RSSBytes, stats.CPUPercent, stats.Status = rss, cpu, status
	}
	stats.AllocMemMb = mem.Alloc / 1024 / 1024
	stats.NumGC = mem.NumGC
	stats.Goroutines = runtime.NumGoroutine()
	stats.NotificationsSent = atomic.LoadUint64(&mm.sent)
	stats.NotificationsFailed = atomic.LoadUint64(&mm.failed)
	stats.NotificationsDropped = atomic.LoadUint64(&mm.dropped)
	stats.QueueLength, stats.QueueCapacity = queueLength, queueCapacity
	stats.SampledAt = time.Now().UTC()
	mm.latest = stats
	return stats
}

func (mm *MonitoringManager) GetLatest() HealthStats {
	mm.mu.RLock()
	defer mm.mu.RUnlock()
	return mm.latest
}

func selfStats(p *process.Process) (uint64, float64, string, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, "", err
	}
	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return 0, 0, "", err
	}
	status, err := p.Status()
	if err != nil {
		return 0, 0, "", err
	}
	return memInfo.RSS, cpuPercent, status, nil
}
