// Package rules loads and indexes the declarative archetype, variant, and
// fallback definitions for a format, plus the card color identity table.
// The repository is read once per run and frozen before classification
// starts, so it is safe for concurrent readers.
package rules

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ColorTable maps card names to color identity strings such as "WU".
// Cards absent from the table contribute nothing to color detection.
type ColorTable map[string]string

// Repository holds the frozen rule set for one format. Archetypes and
// Fallbacks preserve load order: definitions are evaluated first to last.
type Repository struct {
	Format     string
	Archetypes []ArchetypeDefinition
	Fallbacks  []FallbackDefinition
	Colors     ColorTable
}

// Load reads the rule set for format from dir. Expected layout:
//
//	dir/cards.json                      card name -> color identity (optional)
//	dir/<format>/archetypes/*.json      one ArchetypeDefinition per file
//	dir/<format>/fallbacks/*.json       one FallbackDefinition per file
//	dir/<format>/color_overrides.json   per-format additions to cards.json (optional)
//
// Files are loaded in lexical name order, which fixes the evaluation order of
// definitions. Any malformed definition aborts the load with an error naming
// the offending file; a partially loaded repository is never returned.
func Load(dir, format string, logger *slog.Logger) (*Repository, error) {
	if logger == nil {
		logger = slog.Default()
	}

	formatDir := filepath.Join(dir, format)
	if _, err := os.Stat(formatDir); err != nil {
		return nil, fmt.Errorf("rules for format %q: %w", format, err)
	}

	repo := &Repository{
		Format: format,
		Colors: make(ColorTable),
	}

	if err := loadColorTable(filepath.Join(dir, "cards.json"), repo.Colors, false); err != nil {
		return nil, err
	}
	if err := loadColorTable(filepath.Join(formatDir, "color_overrides.json"), repo.Colors, false); err != nil {
		return nil, err
	}

	archetypeFiles, err := listJSONFiles(filepath.Join(formatDir, "archetypes"))
	if err != nil {
		return nil, fmt.Errorf("list archetype definitions: %w", err)
	}
	if len(archetypeFiles) == 0 {
		return nil, fmt.Errorf("format %q has no archetype definitions", format)
	}
	for _, path := range archetypeFiles {
		var def ArchetypeDefinition
		if err := decodeJSONFile(path, &def); err != nil {
			return nil, err
		}
		if err := def.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		if len(def.Conditions) == 0 {
			// Vacuously true: the definition matches every deck. Legal but
			// almost always a rule-authoring mistake, so call it out.
			logger.Warn("archetype definition has no conditions and matches every deck",
				"archetype", def.Name, "file", filepath.Base(path))
		}
		repo.Archetypes = append(repo.Archetypes, def)
	}

	fallbackFiles, err := listJSONFiles(filepath.Join(formatDir, "fallbacks"))
	if err != nil {
		return nil, fmt.Errorf("list fallback definitions: %w", err)
	}
	for _, path := range fallbackFiles {
		var def FallbackDefinition
		if err := decodeJSONFile(path, &def); err != nil {
			return nil, err
		}
		if err := def.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		repo.Fallbacks = append(repo.Fallbacks, def)
	}

	logger.Info("loaded rule set",
		"format", format,
		"archetypes", len(repo.Archetypes),
		"fallbacks", len(repo.Fallbacks),
		"known_cards", len(repo.Colors))

	return repo, nil
}

// ArchetypeNames returns the defined archetype names in evaluation order.
func (r *Repository) ArchetypeNames() []string {
	names := make([]string, 0, len(r.Archetypes))
	for i := range r.Archetypes {
		names = append(names, r.Archetypes[i].Name)
	}
	return names
}

func listJSONFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

func decodeJSONFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return nil
}

func loadColorTable(path string, into ColorTable, required bool) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) && !required {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read color table %s: %w", filepath.Base(path), err)
	}
	var table map[string]string
	if err := json.Unmarshal(data, &table); err != nil {
		return fmt.Errorf("parse color table %s: %w", filepath.Base(path), err)
	}
	for name, identity := range table {
		into[name] = identity
	}
	return nil
}
