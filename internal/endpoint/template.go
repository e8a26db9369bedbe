package endpoint

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/smartbusiness/api2-go/pkg/sbapi"
)

// Replacement substitutes one path placeholder. Placeholder may be given bare
// ("contactId") or braced ("{contactId}").
type Replacement struct {
	Placeholder string
	Value       string
}

// token returns the braced form of the placeholder.
func (r Replacement) token() string {
	name := strings.TrimSuffix(strings.TrimPrefix(r.Placeholder, "{"), "}")

	return "{" + name + "}"
}

// Resolve substitutes every replacement into template. Each replacement must
// name a placeholder present in template and no placeholder may remain
// afterwards.
func Resolve(template string, replacements ...Replacement) (string, error) {
	result := template

	for _, replacement := range replacements {
		token := replacement.token()
		if !strings.Contains(template, token) {
			return "", fmt.Errorf("%w: %s in %s", sbapi.ErrUnknownPlaceholder, token, template)
		}

		result = strings.ReplaceAll(result, token, replacement.Value)
	}

	if remaining := Placeholders(result); len(remaining) > 0 {
		return "", fmt.Errorf("%w: %s in %s", sbapi.ErrUnresolvedPlaceholder, strings.Join(remaining, ", "), template)
	}

	return result, nil
}

// Placeholders returns the braced tokens of template in order of appearance.
func Placeholders(template string) []string {
	var tokens []string

	rest := template
	for {
		start := strings.IndexByte(rest, '{')
		if start < 0 {
			return tokens
		}

		end := strings.IndexByte(rest[start:], '}')
		if end < 0 {
			return tokens
		}

		tokens = append(tokens, rest[start:start+end+1])
		rest = rest[start+end+1:]
	}
}

// JoinIDs joins identifiers with commas in input order.
func JoinIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}

	return strings.Join(parts, ",")
}
