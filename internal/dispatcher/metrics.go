package dispatcher

import (
	"sort"
	"time"

	"github.com/dshills/xedit/internal/xerr"
)

// Metrics collects dispatch statistics.
type Metrics struct {
	// Per-command metrics, by verb or macro name
	commands map[string]*CommandMetrics

	// Global counters
	totalDispatches uint64
	totalErrors     uint64
	totalPanics     uint64
	totalMacros     uint64

	// Timing
	totalDuration time.Duration
}

// CommandMetrics holds metrics for one verb or macro.
type CommandMetrics struct {
	Name          string
	Macro         bool
	DispatchCount uint64
	ErrorCount    uint64
	TotalDuration time.Duration
	MinDuration   time.Duration
	MaxDuration   time.Duration
	LastCode      xerr.ReturnCode
	Codes         map[xerr.ReturnCode]uint64
	LastDispatch  time.Time
}

// NewMetrics creates a new metrics collector.
func NewMetrics() *Metrics {
	return &Metrics{commands: make(map[string]*CommandMetrics)}
}

// RecordDispatch records one command.
func (m *Metrics) RecordDispatch(name string, macro bool, duration time.Duration, rc xerr.ReturnCode) {
	m.totalDispatches++
	m.totalDuration += duration
	if macro {
		m.totalMacros++
	}
	if rc != xerr.RCOK {
		m.totalErrors++
	}

	cm := m.commands[name]
	if cm == nil {
		cm = &CommandMetrics{
			Name:        name,
			Macro:       macro,
			MinDuration: duration,
			MaxDuration: duration,
			Codes:       make(map[xerr.ReturnCode]uint64),
		}
		m.commands[name] = cm
	}

	cm.DispatchCount++
	cm.TotalDuration += duration
	cm.LastCode = rc
	cm.Codes[rc]++
	cm.LastDispatch = time.Now()
	if duration < cm.MinDuration {
		cm.MinDuration = duration
	}
	if duration > cm.MaxDuration {
		cm.MaxDuration = duration
	}
	if rc != xerr.RCOK {
		cm.ErrorCount++
	}
}

// RecordPanic records a panic recovery.
func (m *Metrics) RecordPanic(name string) {
	m.totalPanics++
}

// TotalDispatches returns the number of commands run.
func (m *Metrics) TotalDispatches() uint64 {
	return m.totalDispatches
}

// TotalErrors returns the number of commands with a nonzero return code.
func (m *Metrics) TotalErrors() uint64 {
	return m.totalErrors
}

// TotalPanics returns the number of panics recovered.
func (m *Metrics) TotalPanics() uint64 {
	return m.totalPanics
}

// TotalMacros returns the number of macro invocations.
func (m *Metrics) TotalMacros() uint64 {
	return m.totalMacros
}

// AverageDuration returns the average dispatch duration.
func (m *Metrics) AverageDuration() time.Duration {
	if m.totalDispatches == 0 {
		return 0
	}
	return m.totalDuration / time.Duration(m.totalDispatches)
}

// CommandStats returns a copy of the metrics of one command, or nil.
func (m *Metrics) CommandStats(name string) *CommandMetrics {
	cm := m.commands[name]
	if cm == nil {
		return nil
	}
	c := *cm
	c.Codes = make(map[xerr.ReturnCode]uint64, len(cm.Codes))
	for k, v := range cm.Codes {
		c.Codes[k] = v
	}
	return &c
}

// TopCommands returns the n most dispatched commands.
func (m *Metrics) TopCommands(n int) []*CommandMetrics {
	out := make([]*CommandMetrics, 0, len(m.commands))
	for name := range m.commands {
		out = append(out, m.CommandStats(name))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DispatchCount != out[j].DispatchCount {
			return out[i].DispatchCount > out[j].DispatchCount
		}
		return out[i].Name < out[j].Name
	})
	if n > len(out) {
		n = len(out)
	}
	return out[:n]
}

// Reset clears all metrics.
func (m *Metrics) Reset() {
	m.commands = make(map[string]*CommandMetrics)
	m.totalDispatches = 0
	m.totalErrors = 0
	m.totalPanics = 0
	m.totalMacros = 0
	m.totalDuration = 0
}

// AverageDuration returns the average duration of the command.
func (cm *CommandMetrics) AverageDuration() time.Duration {
	if cm.DispatchCount == 0 {
		return 0
	}
	return cm.TotalDuration / time.Duration(cm.DispatchCount)
}

// ErrorRate returns the share of failed runs as a percentage.
func (cm *CommandMetrics) ErrorRate() float64 {
	if cm.DispatchCount == 0 {
		return 0
	}
	return float64(cm.ErrorCount) / float64(cm.DispatchCount) * 100
}
