package cli

import (
	"fmt"
	"strconv"
)

// Settings shows or changes the chunking defaults. Changes are written
// back to the config file so they survive the session.
// Usage: settings [strategy|size|overlap <value>].
func (a *App) Settings(args []string) error {
	if len(args) == 0 {
		fmt.Fprintf(a.out, "server:   %s\n", a.config.ServerURL)
		fmt.Fprintf(a.out, "strategy: %s\n", a.config.ChunkStrategy)
		fmt.Fprintf(a.out, "size:     %d\n", a.config.ChunkSize)
		fmt.Fprintf(a.out, "overlap:  %d\n", a.config.ChunkOverlap)
		return nil
	}
	if len(args) < 2 {
		fmt.Fprintln(a.out, "Usage: settings [strategy|size|overlap <value>]")
		return fmt.Errorf("missing value")
	}

	key, value := args[0], args[1]
	switch key {
	case "strategy":
		switch value {
		case "none", "fixed", "semantic":
			a.config.ChunkStrategy = value
		default:
			fmt.Fprintln(a.out, "strategy must be none, fixed or semantic")
			return fmt.Errorf("invalid strategy %q", value)
		}
	case "size", "overlap":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			fmt.Fprintln(a.out, key, "must be a non-negative number")
			return fmt.Errorf("invalid %s %q", key, value)
		}
		if key == "size" {
			a.config.ChunkSize = n
		} else {
			a.config.ChunkOverlap = n
		}
	default:
		fmt.Fprintln(a.out, "Unknown setting:", key)
		return fmt.Errorf("unknown setting %q", key)
	}
	if err := a.config.Save(); err != nil {
		fmt.Fprintln(a.out, "settings not saved:", err)
		return err
	}
	fmt.Fprintf(a.out, "%s set to %s (saved to %s)\n", key, value, a.config.Path)
	return nil
}
