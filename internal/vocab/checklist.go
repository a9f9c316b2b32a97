package vocab

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

// ChecklistCache is a set of accepted-name GUIDs loaded once from a
// single-column text file. Initialization is one-shot and serialized;
// Contains triggers the load on first call.
type ChecklistCache struct {
	path string

	once    sync.Once
	loadErr error
	guids   map[int]struct{}
}

// NewChecklistCache constructs a cache that will load path on first use.
func NewChecklistCache(path string) *ChecklistCache {
	return &ChecklistCache{path: path}
}

func (c *ChecklistCache) ensureLoaded() error {
	c.once.Do(func() {
		c.guids = make(map[int]struct{})
		if c.path == "" {
			return
		}
		f, err := os.Open(c.path)
		if err != nil {
			c.loadErr = fmt.Errorf("checklist cache: opening %q: %w", c.path, err)
			return
		}
		defer f.Close()

		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			guid, err := strconv.Atoi(line)
			if err != nil {
				continue
			}
			c.guids[guid] = struct{}{}
		}
		if err := scanner.Err(); err != nil {
			c.loadErr = fmt.Errorf("checklist cache: reading %q: %w", c.path, err)
		}
	})
	return c.loadErr
}

// Contains reports whether guid is present in the checklist, loading the
// backing file on first call.
func (c *ChecklistCache) Contains(guid int) (bool, error) {
	if err := c.ensureLoaded(); err != nil {
		return false, err
	}
	_, ok := c.guids[guid]
	return ok, nil
}

// Size returns the number of loaded GUIDs, loading the backing file on
// first call.
func (c *ChecklistCache) Size() (int, error) {
	if err := c.ensureLoaded(); err != nil {
		return 0, err
	}
	return len(c.guids), nil
}
