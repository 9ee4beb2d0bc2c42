package note

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const frontMatterDelimiter = "---"

var errNoFrontMatter = errors.New("no front matter")

type frontMatter struct {
	Title string `yaml:"title"`
}

// splitFrontMatter separates a leading "---" YAML block from a markdown body.
func splitFrontMatter(text string) (frontMatter, string, error) {
	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	if !strings.HasPrefix(normalized, frontMatterDelimiter+"\n") {
		return frontMatter{}, text, errNoFrontMatter
	}

	rest := normalized[len(frontMatterDelimiter)+1:]
	var block, body string
	switch {
	case strings.HasPrefix(rest, frontMatterDelimiter+"\n"):
		body = rest[len(frontMatterDelimiter)+1:]
	case rest == frontMatterDelimiter:
	default:
		end := strings.Index(rest, "\n"+frontMatterDelimiter+"\n")
		if end < 0 {
			if !strings.HasSuffix(rest, "\n"+frontMatterDelimiter) {
				return frontMatter{}, text, fmt.Errorf("front matter is not closed")
			}
			end = len(rest) - len(frontMatterDelimiter) - 1
			block = rest[:end]
		} else {
			block = rest[:end]
			body = rest[end+len(frontMatterDelimiter)+2:]
		}
	}

	var matter frontMatter
	if err := yaml.Unmarshal([]byte(block), &matter); err != nil {
		return frontMatter{}, text, fmt.Errorf("yaml.Unmarshal > %w", err)
	}
	return matter, body, nil
}
