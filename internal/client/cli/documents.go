package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"fileforge/internal/client"
)

// List prints a page of documents. Args: [status].
func (a *App) List(ctx context.Context, args []string) error {
	opts := client.ListOptions{Limit: 20}
	if len(args) > 0 {
		opts.Status = args[0]
	}
	list, err := a.store.Documents(ctx, opts)
	if err != nil {
		fmt.Fprintln(a.out, "list failed:", err)
		return err
	}
	if len(list.Items) == 0 {
		fmt.Fprintln(a.out, "No documents.")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tFILE\tTYPE\tSTATUS\tCHUNKS\tTOKENS")
	for _, d := range list.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\n",
			d.ID, d.OriginalFilename, d.FileType, d.Status, d.TotalChunks, d.TotalTokens)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%d of %d documents\n", len(list.Items), list.Total)
	return nil
}

// Show prints one document in detail. Args: <id>.
func (a *App) Show(ctx context.Context, args []string) error {
	id, err := a.requireID(args, "show <id>")
	if err != nil {
		return err
	}
	doc, err := a.store.Document(ctx, id)
	if err != nil {
		fmt.Fprintln(a.out, "show failed:", err)
		return err
	}

	fmt.Fprintf(a.out, "ID:        %s\n", doc.ID)
	fmt.Fprintf(a.out, "File:      %s (%s, %d bytes)\n", doc.OriginalFilename, doc.FileType, doc.Size)
	fmt.Fprintf(a.out, "Status:    %s\n", doc.Status)
	if doc.ErrorMessage != "" {
		fmt.Fprintf(a.out, "Error:     %s\n", doc.ErrorMessage)
	}
	fmt.Fprintf(a.out, "Chunking:  %s size=%d overlap=%d\n", doc.ChunkStrategy, doc.ChunkSize, doc.ChunkOverlap)
	fmt.Fprintf(a.out, "Chunks:    %d (%d tokens)\n", doc.TotalChunks, doc.TotalTokens)
	if doc.ProcessingDurationMS > 0 {
		fmt.Fprintf(a.out, "Processed: %dms\n", doc.ProcessingDurationMS)
	}
	fmt.Fprintf(a.out, "Created:   %s\n", doc.CreatedAt.Format("2006-01-02 15:04:05"))
	return nil
}

// Chunks prints the text segments of a document. Args: <id>.
func (a *App) Chunks(ctx context.Context, args []string) error {
	id, err := a.requireID(args, "chunks <id>")
	if err != nil {
		return err
	}
	list, err := a.store.Chunks(ctx, id)
	if err != nil {
		fmt.Fprintln(a.out, "chunks failed:", err)
		return err
	}
	for _, ch := range list.Items {
		header := fmt.Sprintf("--- chunk %d (%d tokens", ch.Index, ch.TokenCount)
		if ch.SourcePage > 0 {
			header += fmt.Sprintf(", page %d", ch.SourcePage)
		}
		header += ")"
		fmt.Fprintln(a.out, header)
		fmt.Fprintln(a.out, ch.Text)
	}
	fmt.Fprintf(a.out, "%d chunks\n", list.Total)
	return nil
}

// Delete removes a document and its chunks. Args: <id>.
func (a *App) Delete(ctx context.Context, args []string) error {
	id, err := a.requireID(args, "delete <id>")
	if err != nil {
		return err
	}
	confirm, err := GetSimpleText(a.reader, "Delete "+id+"? (y/N)", a.out)
	if err != nil {
		return err
	}
	if !strings.EqualFold(confirm, "y") {
		fmt.Fprintln(a.out, "Cancelled.")
		return nil
	}
	if err := a.store.DeleteDocument(ctx, id); err != nil {
		fmt.Fprintln(a.out, "delete failed:", err)
		return err
	}
	fmt.Fprintln(a.out, "Deleted.")
	return nil
}

// Reprocess re-runs conversion and watches the new run. Args: <id>.
func (a *App) Reprocess(ctx context.Context, args []string) error {
	id, err := a.requireID(args, "reprocess <id>")
	if err != nil {
		return err
	}
	doc, err := a.store.Reprocess(ctx, id)
	if err != nil {
		fmt.Fprintln(a.out, "reprocess failed:", err)
		return err
	}
	fmt.Fprintf(a.out, "Reprocessing %s (status %s)\n", doc.ID, doc.Status)
	if !doc.Status.Terminal() {
		a.watch(ctx, doc.ID)
	}
	return nil
}

// Export writes the LLM-ready JSON payload to a file. Args: <id> [path].
func (a *App) Export(ctx context.Context, args []string) error {
	id, err := a.requireID(args, "export <id> [path]")
	if err != nil {
		return err
	}
	path := id + ".json"
	if len(args) > 1 {
		path = args[1]
	}

	payload, err := a.store.API().LLMFormat(ctx, id, true)
	if err != nil {
		fmt.Fprintln(a.out, "export failed:", err)
		return err
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		fmt.Fprintln(a.out, "export failed:", err)
		return err
	}
	fmt.Fprintf(a.out, "Wrote %d chunks to %s\n", len(payload.Chunks), path)
	return nil
}

// Formats prints the extensions the server accepts.
func (a *App) Formats(ctx context.Context) error {
	exts, err := a.store.API().Formats(ctx)
	if err != nil {
		fmt.Fprintln(a.out, "formats failed:", err)
		return err
	}
	fmt.Fprintln(a.out, "Supported:", strings.Join(exts, " "))
	return nil
}

func (a *App) requireID(args []string, usage string) (string, error) {
	if len(args) == 0 || args[0] == "" {
		fmt.Fprintln(a.out, "Usage:", usage)
		return "", fmt.Errorf("missing document id")
	}
	return args[0], nil
}
