package secret

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
)

var envRefPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// ExpandEnvStrict expands environment variable references in s.
//
// Semantics:
//   - `$VAR` and `${VAR}` are expanded via os.ExpandEnv.
//   - A `${VAR}` reference to a variable missing from the environment
//     errors rather than silently producing an empty credential.
//   - `$$` emits a literal `$`.
func ExpandEnvStrict(s string) (string, error) {
	const escapedDollar = "\x00LLMCACHE_DOLLAR\x00"
	s = strings.ReplaceAll(s, "$$", escapedDollar)

	var missing []string
	seen := make(map[string]bool)
	for _, match := range envRefPattern.FindAllStringSubmatch(s, -1) {
		name := match[1]
		if seen[name] {
			continue
		}
		seen[name] = true
		if _, ok := os.LookupEnv(name); !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return "", fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	s = os.ExpandEnv(s)
	return strings.ReplaceAll(s, escapedDollar, "$"), nil
}
