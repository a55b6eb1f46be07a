package learning

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/jonathan/career-path/internal/schemas"

	embedded "github.com/jonathan/career-path/schemas"
)

// Catalog is a read-only lookup of career name to a JSON document, loaded
// once from a file such as CAREER_INFO_PATH or CAREER_ROADMAP_PATH.
type Catalog struct {
	entries map[string]json.RawMessage
}

// LoadCatalog reads a catalog file. A missing file (or an empty path)
// yields an empty catalog; a present but invalid file is an error.
func LoadCatalog(path string) (*Catalog, error) {
	c := &Catalog{entries: map[string]json.RawMessage{}}
	if path == "" {
		return c, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes a catalog document after schema validation.
func ParseCatalog(data []byte) (*Catalog, error) {
	if err := schemas.Validate(embedded.Catalog, data); err != nil {
		return nil, err
	}
	c := &Catalog{}
	if err := json.Unmarshal(data, &c.entries); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return c, nil
}

// Lookup returns the entry for career, matched exactly.
func (c *Catalog) Lookup(career string) (json.RawMessage, bool) {
	if c == nil {
		return nil, false
	}
	entry, ok := c.entries[career]
	return entry, ok
}

// Len is the number of entries.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}
