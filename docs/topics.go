// Package docs holds the user documentation shown by the topic command.
package docs

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"
)

//go:embed *.md
var files embed.FS

// ErrUnknownTopic is returned for topics without documentation.
var ErrUnknownTopic = errors.New("unknown topic")

// Index is the topic listing every other topic.
const Index = "readme"

// Topic returns the markdown of a topic, "*" returns all the topics.
func Topic(name string) (string, error) {
	if name == "*" {
		names, err := Topics()
		if err != nil {
			return "", err
		}
		var b strings.Builder
		for _, n := range names {
			content, err := Topic(n)
			if err != nil {
				return "", err
			}
			b.WriteString(content)
			b.WriteString("\n")
		}
		return b.String(), nil
	}
	content, err := files.ReadFile(name + ".md")
	if err != nil {
		return "", fmt.Errorf("topic %q: %w", name, ErrUnknownTopic)
	}
	return string(content), nil
}

// Topics returns the names of the topics but the index, sorted.
func Topics() ([]string, error) {
	matches, err := fs.Glob(files, "*.md")
	if err != nil {
		return nil, err
	}
	var names []string
	for _, m := range matches {
		name := strings.TrimSuffix(path.Base(m), ".md")
		if name != Index {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names, nil
}
