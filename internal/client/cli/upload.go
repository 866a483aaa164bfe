package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"fileforge/internal/client"
)

// Pick stages a local file for upload. Args: <path>. The staged file is
// consumed by the next upload, so it cannot be submitted twice.
func (a *App) Pick(args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: pick <path>")
		return fmt.Errorf("missing path")
	}
	path := args[0]
	info, err := os.Stat(path)
	if err != nil {
		fmt.Fprintln(a.out, "pick failed:", err)
		return err
	}
	if info.IsDir() {
		fmt.Fprintln(a.out, "pick failed:", path, "is a directory")
		return fmt.Errorf("%s is a directory", path)
	}
	// Reject unsupported types here so nothing is ever uploaded for them.
	if !a.formats.Supported(path) {
		fmt.Fprintf(a.out, "pick failed: unsupported file type %q (supported: %s)\n",
			filepath.Ext(path), strings.Join(a.formats.Extensions(), ", "))
		return fmt.Errorf("unsupported file type %q", filepath.Ext(path))
	}
	a.pending.Put(client.PendingFile{
		Path:     path,
		Filename: filepath.Base(path),
		Size:     info.Size(),
	})
	fmt.Fprintf(a.out, "Staged %s (%d bytes). Run 'upload' to convert it.\n", info.Name(), info.Size())
	return nil
}

// Upload converts the staged file, or the file named in args, streaming
// progress and then watching processing until it finishes.
// Args: [path] [strategy] [size] [overlap].
func (a *App) Upload(ctx context.Context, args []string) error {
	if len(args) > 0 {
		if err := a.Pick(args[:1]); err != nil {
			return err
		}
	}
	pf, ok := a.pending.Take()
	if !ok {
		fmt.Fprintln(a.out, "No file staged. Run 'pick <path>' first.")
		return fmt.Errorf("no pending file")
	}

	opts := client.ConvertOptions{
		ChunkStrategy: a.config.ChunkStrategy,
		ChunkSize:     a.config.ChunkSize,
		ChunkOverlap:  a.config.ChunkOverlap,
		Async:         true,
	}
	if len(args) > 1 {
		opts.ChunkStrategy = args[1]
	}
	if len(args) > 2 {
		if n, err := strconv.Atoi(args[2]); err == nil {
			opts.ChunkSize = n
		}
	}
	if len(args) > 3 {
		if n, err := strconv.Atoi(args[3]); err == nil {
			opts.ChunkOverlap = n
		}
	}

	f, err := os.Open(pf.Path)
	if err != nil {
		fmt.Fprintln(a.out, "upload failed:", err)
		return err
	}
	defer f.Close()

	opts.Progress = func(read int64) {
		pct := int64(100)
		if pf.Size > 0 {
			pct = read * 100 / pf.Size
		}
		fmt.Fprintf(a.out, "\ruploading %s... %d%%", pf.Filename, pct)
	}

	doc, err := a.store.Convert(ctx, pf.Filename, f, pf.Size, opts)
	fmt.Fprintln(a.out)
	if err != nil {
		fmt.Fprintln(a.out, "upload failed:", err)
		return err
	}

	fmt.Fprintf(a.out, "Uploaded as %s (status %s)\n", doc.ID, doc.Status)
	if !doc.Status.Terminal() {
		a.watch(ctx, doc.ID)
	}
	return nil
}

// Watch follows a document's status until it finishes. Args: <id>.
func (a *App) Watch(ctx context.Context, args []string) error {
	id, err := a.requireID(args, "watch <id>")
	if err != nil {
		return err
	}
	a.watch(ctx, id)
	return nil
}

// watch polls until the document reaches a terminal status.
func (a *App) watch(ctx context.Context, id string) {
	w := a.store.API().WatchStatus(ctx, id)
	defer w.Stop()

	for upd := range w.Updates() {
		if upd.Err != nil {
			fmt.Fprintln(a.out, "watch failed:", upd.Err)
			return
		}
		doc := upd.Document
		switch {
		case doc.Status.Terminal() && doc.ErrorMessage != "":
			fmt.Fprintf(a.out, "%s: %s (%s)\n", doc.ID, doc.Status, doc.ErrorMessage)
		case doc.Status.Terminal():
			fmt.Fprintf(a.out, "%s: %s, %d chunks, %d tokens\n",
				doc.ID, doc.Status, doc.TotalChunks, doc.TotalTokens)
		default:
			fmt.Fprintf(a.out, "%s: %s...\n", doc.ID, doc.Status)
		}
	}
}

// Preview renders a local, read-only view of a file before uploading it.
// Args: <path>.
func (a *App) Preview(args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: preview <path>")
		return fmt.Errorf("missing path")
	}
	m := a.preview.PreviewFile(args[0])
	if m.Note != "" {
		fmt.Fprintln(a.out, m.Note)
	}
	for i, page := range m.Pages {
		if len(m.Pages) > 1 {
			title := page.Title
			if title == "" {
				title = fmt.Sprintf("page %d", i+1)
			}
			fmt.Fprintf(a.out, "=== %s ===\n", title)
		} else if page.Title != "" {
			fmt.Fprintf(a.out, "=== %s ===\n", page.Title)
		}
		for _, line := range page.Lines {
			fmt.Fprintln(a.out, line)
		}
	}
	return nil
}
