// Copyright 2025 The Alumap Authors
// SPDX-License-Identifier: Apache-2.0

package alumni

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// SeedData represents the JSON seed file format.
type SeedData struct {
	Version     string    `json:"version"`
	LastUpdated time.Time `json:"last_updated"`
	Alumni      []*Record `json:"alumni"`
}

// ExportToJSON exports all profiles, sorted by id, to a JSON file.
func ExportToJSON(repo Repository, filepath string) error {
	records, err := repo.All()
	if err != nil {
		return fmt.Errorf("listing profiles: %w", err)
	}

	seed := &SeedData{
		Version:     "1.0",
		LastUpdated: time.Now(),
		Alumni:      records,
	}

	data, err := json.MarshalIndent(seed, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}

	err = os.WriteFile(filepath, data, 0o600)
	if err != nil {
		return fmt.Errorf("writing file: %w", err)
	}

	return nil
}

// LoadSeed reads and parses a seed file without touching the store.
func LoadSeed(filepath string) (*SeedData, error) {
	data, err := os.ReadFile(filepath) // #nosec G304 - filepath is provided by admin
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	var seed SeedData
	if err := json.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}

	return &seed, nil
}

// ImportFromJSON imports profiles from a JSON file. Profiles whose id already
// exists are replaced.
func ImportFromJSON(repo Repository, filepath string) (int, error) {
	seed, err := LoadSeed(filepath)
	if err != nil {
		return 0, err
	}

	imported := 0

	for _, rec := range seed.Alumni {
		if err := repo.Save(rec); err != nil {
			return imported, fmt.Errorf("saving profile %q: %w", rec.Name, err)
		}

		imported++
	}

	return imported, nil
}

// SeedIfEmpty seeds the database from a JSON file if no profiles exist.
func SeedIfEmpty(repo Repository, filepath string) (bool, int, error) {
	count, err := repo.Count()
	if err != nil {
		return false, 0, fmt.Errorf("counting profiles: %w", err)
	}

	if count > 0 {
		return false, count, nil
	}

	if _, err := os.Stat(filepath); os.IsNotExist(err) {
		return false, 0, nil
	}

	imported, err := ImportFromJSON(repo, filepath)
	if err != nil {
		return false, 0, err
	}

	return true, imported, nil
}
