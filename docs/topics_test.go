package docs_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/etnz/apcaledger"
	"github.com/etnz/apcaledger/alpaca"
	"github.com/etnz/apcaledger/docs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Kinds of fenced blocks checked against the code.
const (
	registryBlock   = "json registry"
	activitiesBlock = "json activities"
	ledgerBlock     = "ledger"
	accountsBlock   = "yaml"
)

func TestTopics(t *testing.T) {
	// every topic is listed in the index, and every listed topic exists.
	file, err := os.Open(docs.Index + ".md")
	require.NoError(t, err)
	defer file.Close()

	topicRegex := regexp.MustCompile(`^\*\s+([^:]+):.*$`)
	var listed []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if m := topicRegex.FindStringSubmatch(scanner.Text()); m != nil {
			listed = append(listed, strings.TrimSpace(m[1]))
		}
	}
	require.NoError(t, scanner.Err())

	topics, err := docs.Topics()
	require.NoError(t, err)
	assert.ElementsMatch(t, listed, topics)

	for _, topic := range listed {
		_, err := docs.Topic(topic)
		assert.NoError(t, err, topic)
	}
	_, err = docs.Topic("nope")
	assert.ErrorIs(t, err, docs.ErrUnknownTopic)

	all, err := docs.Topic("*")
	require.NoError(t, err)
	assert.Contains(t, all, "# Fees")
	assert.Contains(t, all, "# Journal entries")
}

// block is a fenced code block of a topic.
type block struct {
	kind    string
	content string
	line    int
}

func parseBlocks(t *testing.T, file string) []block {
	t.Helper()
	source, err := os.ReadFile(file)
	require.NoError(t, err)

	root := goldmark.DefaultParser().Parse(text.NewReader(source))
	var blocks []block
	err = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		fcb, ok := n.(*ast.FencedCodeBlock)
		if !entering || !ok || fcb.Info == nil {
			return ast.WalkContinue, nil
		}
		var content strings.Builder
		for i := 0; i < fcb.Lines().Len(); i++ {
			line := fcb.Lines().At(i)
			content.Write(line.Value(source))
		}
		offset := fcb.Info.Segment.Start
		blocks = append(blocks, block{
			kind:    string(fcb.Info.Segment.Value(source)),
			content: content.String(),
			line:    bytes.Count(source[:offset], []byte{'\n'}) + 1,
		})
		return ast.WalkContinue, nil
	})
	require.NoError(t, err)
	return blocks
}

// TestExamples replays the activities of each example and compares the
// output with the ledger block that follows them.
func TestExamples(t *testing.T) {
	files, err := filepath.Glob("*.md")
	require.NoError(t, err)

	for _, file := range files {
		t.Run(file, func(t *testing.T) {
			var registry apcaledger.SymbolRegistry
			var activities []apcaledger.Activity
			for _, b := range parseBlocks(t, file) {
				switch b.kind {
				case registryBlock:
					registry = nil
					require.NoError(t, json.Unmarshal([]byte(b.content), &registry), "%s:%d", file, b.line)
				case activitiesBlock:
					activities, err = alpaca.DecodeActivities(strings.NewReader(b.content))
					require.NoError(t, err, "%s:%d", file, b.line)
				case ledgerBlock:
					require.NotNil(t, activities, "%s:%d: no activities before the ledger block", file, b.line)
					p := &apcaledger.Pipeline{
						Feed:     apcaledger.NewMemoryFeed("USD", activities),
						Registry: registry,
						Accounts: apcaledger.DefaultAccounts(),
					}
					var out bytes.Buffer
					require.NoError(t, p.Run(context.Background(), &out), "%s:%d", file, b.line)
					assert.Equal(t, strings.TrimSpace(b.content), strings.TrimSpace(out.String()), "%s:%d", file, b.line)
					activities = nil
				case accountsBlock:
					// the documented accounts are the defaults.
					accounts, err := apcaledger.DecodeAccounts(strings.NewReader(b.content), apcaledger.Accounts{})
					require.NoError(t, err, "%s:%d", file, b.line)
					assert.Equal(t, apcaledger.DefaultAccounts(), accounts, "%s:%d", file, b.line)
				}
			}
		})
	}
}
