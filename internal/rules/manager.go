package rules

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/smack-team/smack-go/internal/logging"
	"github.com/smack-team/smack-go/internal/smackfs"
)

// Manager configuration errors.
var (
	ErrNoRulesDir = errors.New("rules: no rules directory configured")
	ErrNoMount    = errors.New("rules: no control surface handle configured")
)

// Manager loads the rule files of a directory into Accesses handles and
// applies them to a control surface, with reload support for the
// directory watcher.
type Manager struct {
	mu     sync.Mutex
	dir    string
	mount  *smackfs.Mount
	logger logging.Logger

	reloadCount   uint64
	lastReload    time.Time
	lastError     error
	lastErrorTime time.Time
	labelCount    int
	ruleCount     int
}

// ManagerConfig holds configuration for a Manager.
type ManagerConfig struct {
	// Dir is the directory holding rule files, one rule per line.
	Dir string

	// Mount is the control surface the rules are applied to.
	Mount *smackfs.Mount

	// Logger for load and reload events. Defaults to a no-op logger.
	Logger logging.Logger
}

// NewManager creates a new Manager.
func NewManager(cfg *ManagerConfig) (*Manager, error) {
	if cfg == nil || cfg.Dir == "" {
		return nil, ErrNoRulesDir
	}
	if cfg.Mount == nil {
		return nil, ErrNoMount
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	return &Manager{
		dir:    cfg.Dir,
		mount:  cfg.Mount,
		logger: logger,
	}, nil
}

// LoadDir parses every rule file of dir into one Accesses handle.
// Files are read in name order; dotfiles are skipped, so editors and
// package managers can leave temporary files behind without breaking a
// load.
func LoadDir(dir string) (*Accesses, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("rules: read dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || e.Name()[0] == '.' {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	a := New()
	for _, name := range names {
		f, err := os.Open(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("rules: open %s: %w", name, err)
		}
		err = a.AddFromReader(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("rules: %s: %w", name, err)
		}
	}
	return a, nil
}

// Apply loads the rule directory and applies the rules to the control
// surface.
func (m *Manager) Apply() error {
	return m.run(false)
}

// Clear loads the rule directory and revokes every rule it defines.
func (m *Manager) Clear() error {
	return m.run(true)
}

func (m *Manager) run(clear bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, err := LoadDir(m.dir)
	if err != nil {
		m.fail(err)
		return err
	}

	if clear {
		err = a.Clear(m.mount)
	} else {
		err = a.Apply(m.mount)
	}
	if err != nil {
		m.fail(err)
		return err
	}

	m.labelCount = a.LabelCount()
	m.ruleCount = a.RuleCount()
	return nil
}

// fail records the error for Stats. Callers hold m.mu.
func (m *Manager) fail(err error) {
	m.lastError = err
	m.lastErrorTime = time.Now()
}

// Reload re-applies the rule directory. Used by the directory watcher;
// a failed reload leaves the kernel state as the failure left it and is
// recorded in Stats.
func (m *Manager) Reload() error {
	m.logger.Info("reloading rules", "dir", m.dir)

	if err := m.Apply(); err != nil {
		m.logger.Error("rules reload failed", "error", err)
		return err
	}

	m.mu.Lock()
	m.reloadCount++
	m.lastReload = time.Now()
	stats := m.statsLocked()
	m.mu.Unlock()

	m.logger.Info("rules reloaded",
		"labels", stats.Labels,
		"rules", stats.Rules,
		"reloadCount", stats.ReloadCount,
	)
	return nil
}

// Stats reports the manager's load metrics.
type Stats struct {
	Labels        int
	Rules         int
	ReloadCount   uint64
	LastReload    time.Time
	LastError     error
	LastErrorTime time.Time
}

// Stats returns a snapshot of the manager's metrics.
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.statsLocked()
}

func (m *Manager) statsLocked() Stats {
	return Stats{
		Labels:        m.labelCount,
		Rules:         m.ruleCount,
		ReloadCount:   m.reloadCount,
		LastReload:    m.lastReload,
		LastError:     m.lastError,
		LastErrorTime: m.lastErrorTime,
	}
}

// Dir returns the managed rule directory.
func (m *Manager) Dir() string { return m.dir }
