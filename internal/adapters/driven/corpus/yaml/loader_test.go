package yaml

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validProgramYAML = `version: "1.0"
updated_at: "2026-02-01"
program:
  code: bsc_ai
  title: Artificial Intelligence (B.Sc.)
  degree_level: bachelor
  faculty: Applied Computer Science
  language_of_instruction: en
  duration_semesters: 7
  ects_total: 210
  fees:
    domestic_german:
      student_union_per_semester: "€62"
`

const secondProgramYAML = `version: "1.0"
updated_at: "2026-02-01"
program:
  code: msc_cyber
  title: Cyber Security (M.Eng.)
  degree_level: master
  language_of_instruction: en
`

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0600))
}

func TestLoader_LoadsPrograms(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bsc_ai.yaml", validProgramYAML)
	writeFile(t, dir, "msc_cyber.yml", secondProgramYAML)

	programs, err := NewLoader(dir).Load(context.Background())

	require.NoError(t, err)
	require.Len(t, programs, 2)

	codes := []string{programs[0].Code, programs[1].Code}
	assert.Contains(t, codes, "bsc_ai")
	assert.Contains(t, codes, "msc_cyber")

	for _, p := range programs {
		if p.Code == "bsc_ai" {
			assert.Equal(t, "Artificial Intelligence (B.Sc.)", p.Title)
			assert.Equal(t, 7, p.DurationSemesters)
			require.NotNil(t, p.Fees)
			require.NotNil(t, p.Fees.DomesticGerman)
			assert.Equal(t, "€62", p.Fees.DomesticGerman.StudentUnionPerSemester)
		}
	}
}

func TestLoader_SkipsContentIndex(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bsc_ai.yaml", validProgramYAML)
	writeFile(t, dir, "content_index.yaml", "entries:\n  - bsc_ai\n")

	programs, err := NewLoader(dir).Load(context.Background())

	require.NoError(t, err)
	assert.Len(t, programs, 1)
}

func TestLoader_SkipsMalformedFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bsc_ai.yaml", validProgramYAML)
	writeFile(t, dir, "broken.yaml", "program: [not: valid")
	writeFile(t, dir, "no_code.yaml", "program:\n  title: Missing Code\n")

	programs, err := NewLoader(dir).Load(context.Background())

	require.NoError(t, err)
	require.Len(t, programs, 1)
	assert.Equal(t, "bsc_ai", programs[0].Code)
}

func TestLoader_EmptyDirectory(t *testing.T) {
	programs, err := NewLoader(t.TempDir()).Load(context.Background())

	require.NoError(t, err)
	assert.Empty(t, programs)
}

func TestLoader_MissingDirectory(t *testing.T) {
	_, err := NewLoader(filepath.Join(t.TempDir(), "absent")).Load(context.Background())

	assert.Error(t, err)
}

func TestIsProgramFileEvent(t *testing.T) {
	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{
			name:  "yaml write",
			event: fsnotify.Event{Name: "/data/bsc_ai.yaml", Op: fsnotify.Write},
			want:  true,
		},
		{
			name:  "yml create",
			event: fsnotify.Event{Name: "/data/msc_cyber.yml", Op: fsnotify.Create},
			want:  true,
		},
		{
			name:  "yaml remove",
			event: fsnotify.Event{Name: "/data/bsc_ai.yaml", Op: fsnotify.Remove},
			want:  true,
		},
		{
			name:  "chmod only",
			event: fsnotify.Event{Name: "/data/bsc_ai.yaml", Op: fsnotify.Chmod},
			want:  false,
		},
		{
			name:  "non-yaml file",
			event: fsnotify.Event{Name: "/data/notes.txt", Op: fsnotify.Write},
			want:  false,
		},
		{
			name:  "index file",
			event: fsnotify.Event{Name: "/data/content_index.yaml", Op: fsnotify.Write},
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isProgramFileEvent(tt.event))
		})
	}
}

func TestWatcher_FiresOnChange(t *testing.T) {
	dir := t.TempDir()
	fired := make(chan struct{}, 1)

	w := NewWatcher(dir, 50*time.Millisecond, func(context.Context) {
		select {
		case fired <- struct{}{}:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	// Give the watcher a moment to register before writing.
	time.Sleep(100 * time.Millisecond)
	writeFile(t, dir, "bsc_ai.yaml", validProgramYAML)

	select {
	case <-fired:
	case <-time.After(3 * time.Second):
		t.Fatal("watcher did not fire after file change")
	}
}
