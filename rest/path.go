package rest

import (
	"net/url"
	"regexp"
	"sort"

	"github.com/agenticflow/agenticflow"
)

var placeholder = regexp.MustCompile(`\{([^{}/]+)\}`)

// PathParams returns the deduplicated, sorted placeholder names in path.
func PathParams(path string) []string {
	matches := placeholder.FindAllStringSubmatch(path, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(matches))
	var names []string
	for _, m := range matches {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	sort.Strings(names)
	return names
}

// ExpandPath substitutes every {name} in path with the escaped value from
// params. If any name is missing the error lists every required name.
func ExpandPath(path string, params map[string]string) (string, error) {
	required := PathParams(path)
	for _, name := range required {
		if _, ok := params[name]; !ok {
			return "", agenticflow.MissingParameterError(path, required)
		}
	}
	if len(required) == 0 {
		return path, nil
	}
	return placeholder.ReplaceAllStringFunc(path, func(m string) string {
		return url.PathEscape(params[m[1:len(m)-1]])
	}), nil
}
