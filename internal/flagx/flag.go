// Package flagx contains small helpers for parsing a subset of the
// command line without clashing with flags owned by other packages.
package flagx

import (
	"flag"
	"os"
	"strings"
)

// FilterArgs keeps only the allowed flags (and their values) from args.
// Both "-f value" and "--flag=value" forms are recognized.
func FilterArgs(args []string, allowed []string) []string {
	keep := make(map[string]struct{}, len(allowed))
	for _, f := range allowed {
		keep[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name := strings.SplitN(arg, "=", 2)[0]
			if _, ok := keep[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		if _, ok := keep[arg]; ok {
			filtered = append(filtered, arg)
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				filtered = append(filtered, args[i+1])
				i++
			}
		}
	}
	return filtered
}

// ConfigFileFlag extracts the config file path given via -c or -config,
// ignoring every other argument. Returns "" when neither flag is present.
func ConfigFileFlag() string {
	var path string

	args := FilterArgs(os.Args[1:], []string{"-c", "-config"})

	fs := flag.NewFlagSet("configfile", flag.ContinueOnError)
	fs.StringVar(&path, "config", "", "path to config file")
	fs.StringVar(&path, "c", "", "path to config file (short)")
	_ = fs.Parse(args)

	return path
}
