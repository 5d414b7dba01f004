package biosdb

import (
	"fmt"
	"strings"
)

// formatSQLForLog interpolates positional parameters into a statement string.
// Logging only, never fed back to the engine.
func formatSQLForLog(query string, args ...interface{}) string {
	if len(args) == 0 {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + len(args)*8)
	argIdx := 0
	for _, ch := range query {
		if ch == '?' && argIdx < len(args) {
			b.WriteString(formatSQLArg(args[argIdx]))
			argIdx++
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}

func formatSQLArg(arg interface{}) string {
	if arg == nil {
		return "NULL"
	}
	switch v := arg.(type) {
	case string:
		return "'" + strings.ReplaceAll(v, "'", "''") + "'"
	case []byte:
		return "'" + strings.ReplaceAll(string(v), "'", "''") + "'"
	default:
		return fmt.Sprintf("%v", arg)
	}
}
