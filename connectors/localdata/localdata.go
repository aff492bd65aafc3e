// Package localdata loads the bundled fallback dataset used when the ERP
// endpoint is unreachable or unconfigured.
package localdata

import (
	"encoding/json"
	"fmt"
	"os"

	"labor-stats/domain/catalog"
)

// Load reads a db.json-style file and returns its row array. The file may
// hold a bare array or wrap it under "result" or "data".
func Load(path string) ([]catalog.RawRow, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("localdata: %w", err)
	}
	var payload any
	if err := json.Unmarshal(b, &payload); err != nil {
		return nil, fmt.Errorf("localdata: parsing %s: %w", path, err)
	}
	rows, err := catalog.ExtractRows(payload)
	if err != nil {
		return nil, fmt.Errorf("localdata: %s: %w", path, err)
	}
	return rows, nil
}

// Save writes rows back as {"result": [...]}, the shape Load accepts and
// the fetch command produces.
func Save(path string, rows []catalog.RawRow) error {
	b, err := json.MarshalIndent(map[string]any{"result": rows}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
