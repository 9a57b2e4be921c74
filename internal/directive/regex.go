package directive

import "regexp"

var (
	tokenRegex    = regexp.MustCompile(`(?i)(add|delete|replace)==`)
	langCodeRegex = regexp.MustCompile(`^[A-Za-z]{2}$`)
)
