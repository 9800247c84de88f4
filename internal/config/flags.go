package config

import (
	"flag"
	"fmt"
	"io"
	"strings"
)

// parseFlags applies the command-line overrides:
//
//	-a string   HTTP listen address (e.g. ":8080")
//	-d string   PostgreSQL DSN
//	-l string   log level
//	-s string   local store backend: file, redis or memory
//
// -c is handled by parseJSON.
func parseFlags(c *Config, args []string) error {
	args = filterArgs(args, []string{"-a", "-d", "-l", "-s"})

	fs := flag.NewFlagSet("api", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&c.HTTPAddr, "a", c.HTTPAddr, "address and port to run server")
	fs.StringVar(&c.DatabaseURL, "d", c.DatabaseURL, "database DSN")
	fs.StringVar(&c.LogLevel, "l", c.LogLevel, "log level")
	fs.StringVar(&c.LocalStore, "s", c.LocalStore, "local store backend")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	return nil
}

// filterArgs keeps only the allowed flags and their values, so flags owned by other
// parsers (such as -c) do not make this one fail.
func filterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name := strings.SplitN(arg, "=", 2)[0]
			if _, ok := allowed[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		if _, ok := allowed[arg]; ok {
			filtered = append(filtered, arg)
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				filtered = append(filtered, args[i+1])
				i++
			}
		}
	}
	return filtered
}
