package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"fileforge/internal/client"
)

// KeysCreate mints a new API key and shows the secret once.
func (a *App) KeysCreate(ctx context.Context) error {
	name, err := GetSimpleText(a.reader, "Key name", a.out)
	if err != nil {
		return err
	}
	created, err := a.store.CreateKey(ctx, name, nil)
	if err != nil {
		fmt.Fprintln(a.out, "create failed:", err)
		return err
	}
	fmt.Fprintf(a.out, "Created %s (%s)\n", created.Key.Name, created.Key.ID)
	fmt.Fprintln(a.out, "Secret (shown once, store it now):")
	fmt.Fprintln(a.out, created.FullKey)
	return nil
}

// KeysList prints the caller's API keys.
func (a *App) KeysList(ctx context.Context) error {
	list, err := a.store.Keys(ctx)
	if err != nil {
		fmt.Fprintln(a.out, "keys failed:", err)
		return err
	}
	if len(list.Items) == 0 {
		fmt.Fprintln(a.out, "No API keys.")
		return nil
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPREFIX\tSTATUS\tRPM\tLAST USED")
	for _, k := range list.Items {
		last := "never"
		if k.LastUsedAt != nil {
			last = k.LastUsedAt.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
			k.ID, k.Name, k.KeyPrefix, k.Status, k.RateLimitRPM, last)
	}
	return tw.Flush()
}

// KeysRevoke marks a key as revoked so it stops authenticating. Args: <id>.
func (a *App) KeysRevoke(ctx context.Context, args []string) error {
	id, err := a.requireID(args, "keys revoke <id>")
	if err != nil {
		return err
	}
	status := "revoked"
	key, err := a.store.UpdateKey(ctx, id, client.KeyUpdate{Status: &status})
	if err != nil {
		fmt.Fprintln(a.out, "revoke failed:", err)
		return err
	}
	fmt.Fprintf(a.out, "%s is now %s\n", key.Name, key.Status)
	return nil
}

// KeysDelete removes a key permanently. Args: <id>.
func (a *App) KeysDelete(ctx context.Context, args []string) error {
	id, err := a.requireID(args, "keys delete <id>")
	if err != nil {
		return err
	}
	if err := a.store.DeleteKey(ctx, id); err != nil {
		fmt.Fprintln(a.out, "delete failed:", err)
		return err
	}
	fmt.Fprintln(a.out, "Deleted.")
	return nil
}
