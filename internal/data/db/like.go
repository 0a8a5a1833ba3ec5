package db

import "strings"

// LikeEscape is appended after a LIKE placeholder bound to ContainsPattern.
const LikeEscape = ` ESCAPE '\'`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContainsPattern lowercases s and escapes LIKE wildcards so it matches as a
// literal substring. An empty s yields "".
func ContainsPattern(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}
	return "%" + likeEscaper.Replace(s) + "%"
}
