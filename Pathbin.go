package main

import (
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/cespare/xxhash"
	"golang.org/x/sys/unix"
)

// PathBinManager resolves command names to executable paths. The PATH
// directories are scanned once into a name-to-path map; the map is
// rebuilt whenever the xxhash digest of the current PATH value changes.
// Concurrent pipeline branches share the manager, hence the lock.
type PathBinManager struct {
	mu       sync.Mutex
	binMap   map[string]string
	pathHash uint64
}

var binManager = NewPathBinManager()

func NewPathBinManager() *PathBinManager {
	return &PathBinManager{}
}

// Lookup resolves a command name against PATH. Names containing a path
// separator bypass the search and are handed to the exec layer as-is.
// A cache miss falls back to a direct PATH search so a binary installed
// after the scan is still found.
func (m *PathBinManager) Lookup(name string) (string, bool) {
	if name == "" {
		return "", false
	}
	if strings.ContainsRune(name, '/') {
		return name, true
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	path := os.Getenv("PATH")
	hash := xxhash.Sum64String(path)
	if m.binMap == nil || hash != m.pathHash {
		m.rebuild(path)
		m.pathHash = hash
	}

	if p, found := m.binMap[name]; found {
		return p, true
	}
	if p, err := exec.LookPath(name); err == nil {
		m.binMap[name] = p
		return p, true
	}
	return "", false
}

// rebuild scans each PATH directory in order; the first directory
// providing a name wins, matching PATH precedence.
func (m *PathBinManager) rebuild(path string) {
	m.binMap = make(map[string]string)
	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			dir = "."
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			name := entry.Name()
			if _, taken := m.binMap[name]; taken {
				continue
			}
			full := filepath.Join(dir, name)
			if m.IsExecutableFile(full) {
				m.binMap[name] = full
			}
		}
	}
}

// IsExecutableFile reports whether path is a regular file this process
// may execute.
func (m *PathBinManager) IsExecutableFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	return unix.Access(path, unix.X_OK) == nil
}

// DebugList renders the cached map as sorted "name path" lines.
func (m *PathBinManager) DebugList() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	names := make([]string, 0, len(m.binMap))
	for name := range m.binMap {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	for _, name := range names {
		sb.WriteString(name)
		sb.WriteString(" ")
		sb.WriteString(m.binMap[name])
		sb.WriteString("\n")
	}
	return sb.String()
}
