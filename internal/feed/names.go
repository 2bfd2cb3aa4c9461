// internal/feed/names.go
package feed

import "strings"

var knownNames = map[string]string{
	"client@client.com": "client",
	"amit@client.com":   "Amit",
}

// DisplayName returns a friendly name for an email: a known alias,
// otherwise the part before '@'.
func DisplayName(email string) string {
	if name, ok := knownNames[strings.ToLower(email)]; ok {
		return name
	}
	local, _, _ := strings.Cut(email, "@")
	return local
}
