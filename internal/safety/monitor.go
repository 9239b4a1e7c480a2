// Package safety enforces the run-rate brake: hard daily and hourly caps on
// triage passes, persisted to disk so restarts cannot reset the budget.
package safety

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/hal9000y/mail-copilot/internal/observability"
)

const hourWindow = 3600 // seconds

// state is the persisted run ledger. Timestamps are unix seconds of runs
// within the last hour; DailyCount resets on date rollover.
type state struct {
	Date       string  `json:"date"`
	DailyCount int     `json:"daily_count"`
	Timestamps []int64 `json:"timestamps"`
}

// Monitor tracks triage pass frequency against hard caps. It fails closed:
// when the ledger cannot be persisted the run still counts in memory.
type Monitor struct {
	path       string
	maxPerDay  int
	maxPerHour int
	now        func() time.Time

	mu sync.Mutex
	st state
}

// NewMonitor loads the ledger at path, starting fresh when the file is
// missing or unreadable.
func NewMonitor(path string, maxPerDay, maxPerHour int) *Monitor {
	m := &Monitor{
		path:       path,
		maxPerDay:  maxPerDay,
		maxPerHour: maxPerHour,
		now:        time.Now,
	}
	m.st = loadState(path)
	return m
}

func loadState(path string) state {
	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			observability.Logger().Warn("safety ledger unreadable, starting fresh", "path", path, "error", err)
		}
		return state{}
	}

	var st state
	if err := json.Unmarshal(raw, &st); err != nil {
		observability.Logger().Warn("safety ledger corrupt, starting fresh", "path", path, "error", err)
		return state{}
	}

	return st
}

// CheckLimits reports whether another pass may run. When it may not, the
// second return value names the exhausted cap.
func (m *Monitor) CheckLimits() (bool, string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rollover()

	if m.st.DailyCount >= m.maxPerDay {
		return false, fmt.Sprintf("daily run limit reached (%d/%d)", m.st.DailyCount, m.maxPerDay)
	}
	if len(m.st.Timestamps) >= m.maxPerHour {
		return false, fmt.Sprintf("hourly run limit reached (%d/%d)", len(m.st.Timestamps), m.maxPerHour)
	}

	return true, ""
}

// RecordRun counts one pass and persists the ledger.
func (m *Monitor) RecordRun() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rollover()

	m.st.DailyCount++
	m.st.Timestamps = append(m.st.Timestamps, m.now().Unix())

	return m.persist()
}

// rollover resets the daily count on date change and prunes hour-window
// timestamps. Callers hold the lock.
func (m *Monitor) rollover() {
	today := m.now().Format("2006-01-02")
	if m.st.Date != today {
		m.st = state{Date: today}
		return
	}

	cutoff := m.now().Unix() - hourWindow
	kept := m.st.Timestamps[:0]
	for _, ts := range m.st.Timestamps {
		if ts > cutoff {
			kept = append(kept, ts)
		}
	}
	m.st.Timestamps = kept
}

func (m *Monitor) persist() error {
	raw, err := json.MarshalIndent(m.st, "", "  ")
	if err != nil {
		return fmt.Errorf("json.MarshalIndent failed: %w", err)
	}

	tmp := m.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(m.path), 0o700); err != nil {
		return fmt.Errorf("os.MkdirAll failed: %w", err)
	}
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("os.WriteFile failed: %w", err)
	}
	if err := os.Rename(tmp, m.path); err != nil {
		return fmt.Errorf("os.Rename failed: %w", err)
	}

	return nil
}
