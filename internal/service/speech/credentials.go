package speech

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// resolveAPIKey returns the trimmed key, or an error naming the missing variable.
func resolveAPIKey(key, envName string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", goerr.New("speech credential missing", goerr.V("env", envName))
	}
	return key, nil
}
