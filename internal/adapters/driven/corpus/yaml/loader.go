// Package yaml loads the programme corpus from YAML files on disk.
//
// Each file under the data directory holds one programme wrapped in a
// metadata envelope (version, updated_at, program). Files whose name contains
// "content_index" are index files, not programmes, and are skipped.
package yaml

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/campusware/advisor/internal/core/domain"
	"github.com/campusware/advisor/internal/core/ports/driven"
	"github.com/campusware/advisor/internal/logger"
)

// Ensure Loader implements the interface.
var _ driven.CorpusLoader = (*Loader)(nil)

// programFile is the on-disk metadata envelope around one programme.
type programFile struct {
	Version   string         `yaml:"version"`
	UpdatedAt string         `yaml:"updated_at"`
	Program   domain.Program `yaml:"program"`
}

// Loader reads all programme YAML files from one directory. A file that fails
// to parse or validate is logged and skipped; it never aborts the whole load.
type Loader struct {
	dir string
}

// NewLoader creates a loader for the given data directory.
func NewLoader(dir string) *Loader {
	return &Loader{dir: dir}
}

// Dir returns the data directory being loaded.
func (l *Loader) Dir() string {
	return l.dir
}

// Load reads every *.yaml / *.yml file in the data directory and returns the
// programmes found, in file name order.
func (l *Loader) Load(ctx context.Context) ([]domain.Program, error) {
	if _, err := os.Stat(l.dir); err != nil {
		return nil, fmt.Errorf("data directory %s: %w", l.dir, err)
	}

	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(l.dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("globbing %s: %w", pattern, err)
		}
		files = append(files, matches...)
	}

	if len(files) == 0 {
		logger.Warn("no YAML files found in %s", l.dir)
		return nil, nil
	}

	logger.Info("loading %d program files from %s", len(files), l.dir)

	var programs []domain.Program
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		name := filepath.Base(file)
		if strings.Contains(strings.ToLower(name), "content_index") {
			logger.Debug("skipping index file: %s", name)
			continue
		}

		program, err := loadProgramFile(file)
		if err != nil {
			logger.Error("loading %s: %v", name, err)
			continue
		}
		programs = append(programs, *program)
		logger.Debug("loaded program: %s (%s)", program.Title, program.Code)
	}

	logger.Info("successfully loaded %d programs", len(programs))
	return programs, nil
}

func loadProgramFile(path string) (*domain.Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	var pf programFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}

	if pf.Program.Code == "" {
		return nil, fmt.Errorf("program has no code: %w", domain.ErrInvalidInput)
	}
	if pf.Program.Title == "" {
		return nil, fmt.Errorf("program %s has no title: %w", pf.Program.Code, domain.ErrInvalidInput)
	}

	return &pf.Program, nil
}
