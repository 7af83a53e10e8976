package sshconfig

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

const (
	ModeAppend    = "append"
	ModeOverwrite = "overwrite"
	ModeManaged   = "managed"

	StdoutPath = "-"

	BeginMarker = "# BEGIN sshgen"
	EndMarker   = "# END sshgen"
)

// Writer stores rendered stanzas into the target file.
type Writer struct {
	path   string
	mode   string
	stdout io.Writer
}

// NewWriter validates the mode and expands "~/" in path.
func NewWriter(path string, mode string) (*Writer, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("sshconfig: empty output path")
	}
	mode = strings.ToLower(strings.TrimSpace(mode))
	if mode == "" {
		mode = ModeAppend
	}
	switch mode {
	case ModeAppend, ModeOverwrite, ModeManaged:
	default:
		return nil, fmt.Errorf("sshconfig: unsupported output mode:%s", mode)
	}
	if path != StdoutPath {
		p, err := ExpandHome(path)
		if err != nil {
			return nil, err
		}
		path = p
	}
	return &Writer{path: path, mode: mode, stdout: os.Stdout}, nil
}

func (w *Writer) Path() string {
	return w.path
}

func (w *Writer) Mode() string {
	return w.mode
}

// Write renders stanzas and stores them according to the writer mode.
func (w *Writer) Write(ctx context.Context, stanzas []*Stanza) error {
	text, err := RenderString(stanzas)
	if err != nil {
		return err
	}
	logger := logutil.GetLogger(ctx).With(zap.String("path", w.path), zap.String("mode", w.mode))
	if w.path == StdoutPath {
		_, err := io.WriteString(w.stdout, text)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(w.path), 0o700); err != nil {
		return fmt.Errorf("sshconfig: create output dir: %w", err)
	}
	switch w.mode {
	case ModeAppend:
		err = w.appendText(text)
	case ModeOverwrite:
		err = writeFileAtomic(w.path, []byte(text))
	case ModeManaged:
		err = w.replaceBlock(text)
	}
	if err != nil {
		logger.Error("write ssh config failed", zap.Error(err))
		return err
	}
	logger.Debug("write ssh config succ", zap.Int("host_count", len(stanzas)))
	return nil
}

func (w *Writer) appendText(text string) error {
	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("sshconfig: open %s: %w", w.path, err)
	}
	if _, err := f.WriteString(text); err != nil {
		f.Close()
		return fmt.Errorf("sshconfig: append %s: %w", w.path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("sshconfig: close %s: %w", w.path, err)
	}
	return nil
}

func (w *Writer) replaceBlock(text string) error {
	old, err := os.ReadFile(w.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("sshconfig: read %s: %w", w.path, err)
	}
	merged, err := ReplaceManagedBlock(string(old), text)
	if err != nil {
		return fmt.Errorf("sshconfig: %s: %w", w.path, err)
	}
	return writeFileAtomic(w.path, []byte(merged))
}

// ReplaceManagedBlock swaps the content between the sshgen markers with body,
// the block is appended when the markers are absent.
func ReplaceManagedBlock(existing string, body string) (string, error) {
	block := BeginMarker + "\n" + body + EndMarker + "\n"
	begin := strings.Index(existing, BeginMarker)
	end := strings.Index(existing, EndMarker)
	switch {
	case begin < 0 && end < 0:
		if existing != "" && !strings.HasSuffix(existing, "\n") {
			existing += "\n"
		}
		return existing + block, nil
	case begin < 0 || end < 0 || end < begin:
		return "", fmt.Errorf("unbalanced managed block markers")
	}
	tail := existing[end+len(EndMarker):]
	tail = strings.TrimPrefix(tail, "\n")
	return existing[:begin] + block + tail, nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("sshconfig: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("sshconfig: write temp file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("sshconfig: chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("sshconfig: close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("sshconfig: rename %s: %w", path, err)
	}
	return nil
}

// ExpandHome replaces a leading "~/" with the current user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
