// file: internal/mcp/prompt.go
package mcp

import (
	"sort"
	"strings"
)

// RenderPrompt replaces each {name} placeholder with args[name] in a single
// pass. Placeholders without a matching argument stay as they are, and
// substituted values are never scanned again.
func RenderPrompt(template string, args map[string]string) string {
	if len(args) == 0 {
		return template
	}
	names := make([]string, 0, len(args))
	for k := range args {
		names = append(names, k)
	}
	sort.Strings(names)
	pairs := make([]string, 0, 2*len(names))
	for _, k := range names {
		pairs = append(pairs, "{"+k+"}", args[k])
	}
	return strings.NewReplacer(pairs...).Replace(template)
}
