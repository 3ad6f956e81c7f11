package feed

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

var knownProfiles = map[string]bool{
	ProfileRSS:       true,
	ProfilePinterest: true,
}

// ProfileCache holds per-route channel overrides loaded from a YAML file.
type ProfileCache struct {
	path  string
	cache map[string]Channel
	mu    sync.RWMutex
}

func NewProfileCache(path string) *ProfileCache {
	return &ProfileCache{
		path:  path,
		cache: make(map[string]Channel),
	}
}

// Run loads the profiles file. A missing or unset file leaves the cache empty.
func (pc *ProfileCache) Run() error {
	if pc.path == "" {
		return nil
	}

	if _, err := os.Stat(pc.path); os.IsNotExist(err) {
		slog.Debug("Profiles file not found, using environment settings only", "path", pc.path)
		return nil
	}

	profiles, err := pc.parseProfiles(pc.path)
	if err != nil {
		return fmt.Errorf("error loading %s: %w", pc.path, err)
	}

	if err := pc.validateProfiles(profiles); err != nil {
		return fmt.Errorf("invalid profiles file %s: %w", pc.path, err)
	}

	pc.mu.Lock()
	defer pc.mu.Unlock()
	for name, channel := range profiles {
		pc.cache[name] = channel
		slog.Debug("Profile loaded", "profile", name, "title", channel.Title, "language", channel.Language)
	}

	return nil
}

// GetProfile returns the overrides for name; the zero Channel when none are configured.
func (pc *ProfileCache) GetProfile(name string) Channel {
	pc.mu.RLock()
	defer pc.mu.RUnlock()
	return pc.cache[name]
}

// Resolve layers the named profile over fallback.
func (pc *ProfileCache) Resolve(name string, fallback Channel) Channel {
	return pc.GetProfile(name).Merge(fallback)
}

func (pc *ProfileCache) GetProfileCount() int {
	pc.mu.RLock()
	defer pc.mu.RUnlock()
	return len(pc.cache)
}

func (pc *ProfileCache) parseProfiles(path string) (map[string]Channel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var file profilesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	return file.Profiles, nil
}

func (pc *ProfileCache) validateProfiles(profiles map[string]Channel) error {
	for name := range profiles {
		if !knownProfiles[name] {
			return fmt.Errorf("unknown profile: %s", name)
		}
	}
	return nil
}
