// Package catalog maps item and destination ids to display names.
//
// A catalog file is JSON with three optional objects:
//
//	{
//	  "sizai":  {"0001": "extension reel"},
//	  "sandan": {"12": "light music club"},
//	  "room":   {"12": "room 2-3"}
//	}
//
// sizai names items, sandan names destinations and room gives the place of
// a destination. Names are for display only; the log stores raw ids.
package catalog

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/danieljhkim/lendlog/internal/fsops"
)

// Catalog holds the id to name tables. The zero value is an empty catalog.
type Catalog struct {
	Items        Names `json:"sizai"`
	Destinations Names `json:"sandan"`
	Rooms        Names `json:"room"`
}

// Names is one id to name table. Entries whose value is not a JSON string
// are ignored when decoding.
type Names map[string]string

// UnmarshalJSON implements json.Unmarshaler.
func (n *Names) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Names, len(raw))
	for id, v := range raw {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			continue
		}
		out[id] = s
	}
	*n = out
	return nil
}

// Load reads the catalog at path. An empty path yields an empty catalog.
func Load(fs fsops.FS, path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return &Catalog{}, nil
	}
	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes a catalog document.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return &c, nil
}

// ItemLabel renders an item id as "id (name)", or just the id when unnamed.
func (c *Catalog) ItemLabel(id string) string {
	if c == nil {
		return id
	}
	if name, ok := lookup(c.Items, id); ok {
		return fmt.Sprintf("%s (%s)", id, name)
	}
	return id
}

// DestinationLabel renders a destination id with its name and room:
// "id (name) (room)", "id (name)", "id (?) (room)" or just "id".
func (c *Catalog) DestinationLabel(id string) string {
	if c == nil {
		return id
	}
	name, hasName := lookup(c.Destinations, id)
	room, hasRoom := lookup(c.Rooms, id)
	switch {
	case hasName && hasRoom:
		return fmt.Sprintf("%s (%s) (%s)", id, name, room)
	case hasName:
		return fmt.Sprintf("%s (%s)", id, name)
	case hasRoom:
		return fmt.Sprintf("%s (?) (%s)", id, room)
	default:
		return id
	}
}

func lookup(names Names, id string) (string, bool) {
	if id == "" {
		return "", false
	}
	name, ok := names[id]
	return name, ok
}
