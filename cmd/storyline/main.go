package main

import (
	"os"
	"strings"

	"github.com/google/uuid"

	"storyline-cli/internal/cli"
)

func isNodeID(s string) bool {
	_, err := uuid.Parse(strings.TrimSpace(s))
	return err == nil
}

// rewriteDirectNodeLookupArgs turns `storyline <node-id>` into `storyline nodes show <node-id>`.
// Cobra treats the first positional token as a subcommand, so argv is rewritten before parsing.
// Persistent flags may come first, so the first positional token is searched for.
func rewriteDirectNodeLookupArgs(argv []string) []string {
	if len(argv) < 2 {
		return argv
	}

	// Unknown flags are skipped without consuming a value so a node id is never swallowed.
	valueFlags := map[string]bool{
		"--dir":    true,
		"--format": true,
	}

	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		if a == "" {
			continue
		}
		if a == "--" {
			if i+1 < len(argv) && isNodeID(argv[i+1]) {
				return spliceShow(argv, i+1)
			}
			return argv
		}
		if strings.HasPrefix(a, "-") {
			if !strings.Contains(a, "=") && valueFlags[a] {
				i++
			}
			continue
		}
		if isNodeID(a) {
			return spliceShow(argv, i)
		}
		return argv
	}
	return argv
}

func spliceShow(argv []string, at int) []string {
	out := make([]string, 0, len(argv)+2)
	out = append(out, argv[:at]...)
	out = append(out, "nodes", "show")
	return append(out, argv[at:]...)
}

func main() {
	os.Args = rewriteDirectNodeLookupArgs(os.Args)

	cmd := cli.NewRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
