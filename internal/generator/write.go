package generator

import (
	"context"
	stderrors "errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/vango-dev/projgen/internal/errors"
	"github.com/vango-dev/projgen/internal/templates"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// stagePrefix names staging directories inside the projects directory.
const stagePrefix = ".projgen-"

// writer performs the staged write of one descriptor.
type writer struct {
	projectsDir string
	projectDir  string
	stageName   string
	tracer      trace.Tracer
	logger      *slog.Logger
	emit        func(EventKind, string)
}

// write stages every file and commits the result. It reports whether the
// project directory was newly created.
func (w *writer) write(ctx context.Context, desc *templates.Descriptor) (created bool, err error) {
	ctx, span := w.tracer.Start(ctx, "projgen.write", trace.WithAttributes(
		attribute.String("projgen.dir", w.projectDir),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if err := os.MkdirAll(w.projectsDir, 0755); err != nil {
		return false, fsError(w.projectsDir, err)
	}

	stageDir := filepath.Join(w.projectsDir, w.stageName)
	if err := os.Mkdir(stageDir, 0755); err != nil {
		return false, fsError(stageDir, err)
	}
	committed := false
	defer func() {
		if committed {
			return
		}
		if rmErr := os.RemoveAll(stageDir); rmErr != nil {
			w.logger.Warn("could not remove staging directory", "dir", stageDir, "error", rmErr)
		}
	}()

	if err := w.stage(ctx, stageDir, desc); err != nil {
		return false, err
	}

	if err := ctx.Err(); err != nil {
		return false, errors.New("E104").Wrap(err)
	}

	info, err := os.Stat(w.projectDir)
	switch {
	case stderrors.Is(err, fs.ErrNotExist):
		err = os.Rename(stageDir, w.projectDir)
		if err == nil {
			committed = true
			w.logger.Debug("committed new project", "dir", w.projectDir)
			w.emit(EventCommitted, w.projectDir)
			return true, nil
		}
		// Another run created the directory between Stat and Rename.
		if _, statErr := os.Stat(w.projectDir); statErr != nil {
			return false, fsError(w.projectDir, err)
		}
	case err != nil:
		return false, fsError(w.projectDir, err)
	case !info.IsDir():
		return false, errors.New("E103").
			WithPath(w.projectDir).
			WithDetail("exists and is not a directory")
	}

	if err := w.replace(stageDir, desc); err != nil {
		return false, err
	}
	w.emit(EventCommitted, w.projectDir)
	return false, nil
}

// stage writes every file of desc under dir in order.
func (w *writer) stage(ctx context.Context, dir string, desc *templates.Descriptor) error {
	for _, sub := range desc.Dirs() {
		path := filepath.Join(dir, filepath.FromSlash(sub))
		if err := os.MkdirAll(path, 0755); err != nil {
			return fsError(path, err)
		}
	}

	for _, f := range desc.Files {
		if err := ctx.Err(); err != nil {
			return errors.New("E104").Wrap(err)
		}
		path := filepath.Join(dir, filepath.FromSlash(f.Path))
		if err := writeFileSync(path, f.Content, f.Mode); err != nil {
			return fsError(path, err)
		}
		w.emit(EventStaged, f.Path)
	}
	return nil
}

// replace moves each staged file over its counterpart in the existing
// project directory, in write order. Files not produced by the template
// are left alone.
func (w *writer) replace(stageDir string, desc *templates.Descriptor) error {
	for _, sub := range desc.Dirs() {
		path := filepath.Join(w.projectDir, filepath.FromSlash(sub))
		if err := os.MkdirAll(path, 0755); err != nil {
			return fsError(path, err)
		}
	}

	for _, f := range desc.Files {
		from := filepath.Join(stageDir, filepath.FromSlash(f.Path))
		to := filepath.Join(w.projectDir, filepath.FromSlash(f.Path))
		if err := os.Rename(from, to); err != nil {
			return fsError(to, err)
		}
	}
	w.logger.Debug("overwrote existing project", "dir", w.projectDir, "files", len(desc.Files))
	return nil
}

// writeFileSync writes data and flushes it to stable storage before closing.
func writeFileSync(path string, data []byte, perm fs.FileMode) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func fsError(path string, err error) error {
	return errors.New("E103").WithPath(path).Wrap(err)
}
