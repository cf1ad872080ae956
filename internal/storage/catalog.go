package storage

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jwebster45206/narrative-engine/pkg/drama"
	"github.com/jwebster45206/narrative-engine/pkg/interview"
)

// Content catalogs are static JSON files: data/drama/*.json each holds
// an array of drama templates, data/interviews/*.json an array of
// interview templates. Catalogs are read fresh on each call; the
// engine loads them once at startup.

func loadDramaCatalog(dataDir string, logger *slog.Logger) ([]*drama.Template, error) {
	var out []*drama.Template
	err := eachCatalogFile(filepath.Join(dataDir, "drama"), func(path string, data []byte) error {
		var templates []*drama.Template
		if err := json.Unmarshal(data, &templates); err != nil {
			return fmt.Errorf("parse drama catalog %s: %w", path, err)
		}
		out = append(out, templates...)
		return nil
	}, logger)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func loadInterviewCatalog(dataDir string, logger *slog.Logger) ([]*interview.Template, error) {
	var out []*interview.Template
	err := eachCatalogFile(filepath.Join(dataDir, "interviews"), func(path string, data []byte) error {
		var templates []*interview.Template
		if err := json.Unmarshal(data, &templates); err != nil {
			return fmt.Errorf("parse interview catalog %s: %w", path, err)
		}
		out = append(out, templates...)
		return nil
	}, logger)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// eachCatalogFile reads every .json file in dir in name order. A file
// that fails to read or parse is skipped with a warning; narrative
// content is supplementary and a bad file must not halt the host.
func eachCatalogFile(dir string, fn func(path string, data []byte) error, logger *slog.Logger) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read catalog dir %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("skipping unreadable catalog file", "path", path, "error", err)
			continue
		}
		if err := fn(path, data); err != nil {
			logger.Warn("skipping invalid catalog file", "path", path, "error", err)
		}
	}
	return nil
}
