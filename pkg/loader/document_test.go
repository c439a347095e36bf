package loader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vanderheijden86/treeflat/pkg/flatten"
	"github.com/vanderheijden86/treeflat/pkg/node"
)

const sampleYAML = `
preview: 2
nodes:
  - id: inbox
    title: Inbox
    preview_enabled: true
    checkable: true
    children:
      - id: m1
        checked: true
      - id: m2
      - id: m3
        checked: true
  - id: archive
    expanded: true
    children:
      - id: a1
        title: Old mail
        expandable: false
`

func TestParseYAML(t *testing.T) {
	roots, err := Parse([]byte(sampleYAML), FormatYAML)
	require.NoError(t, err)
	require.Len(t, roots, 2)

	inbox := roots[0]
	require.Equal(t, "Inbox", inbox.Title)
	require.True(t, inbox.Has(node.CapPreview))
	require.True(t, inbox.PreviewEnabled)
	require.Equal(t, 2, inbox.PreviewCount())
	require.Equal(t, node.RoleParent, inbox.Role)
	require.Equal(t, "m1", inbox.Children[0].Title, "title falls back to id")
	require.Equal(t, 1, inbox.Children[0].Depth)
	require.Same(t, inbox, inbox.Children[0].Parent)

	a1 := roots[1].Children[0]
	require.False(t, a1.Has(node.CapExpandable))

	var checked []string
	for _, n := range node.CheckedChildren(inbox) {
		checked = append(checked, n.ID)
	}
	require.Equal(t, []string{"m1", "m3"}, checked)

	seq := flatten.NewSequence(roots...)
	require.Equal(t, []string{"inbox", "archive", "a1"}, seq.IDs())
}

func TestParseJSON(t *testing.T) {
	doc := `{"nodes": [{"id": "r", "preview": 1, "preview_enabled": true,
		"children": [{"id": "c1"}, {"id": "c2"}]}]}`
	roots, err := Parse([]byte(doc), FormatJSON)
	require.NoError(t, err)
	require.Equal(t, 1, roots[0].PreviewCount())

	e := flatten.New(flatten.NewSequence(roots...))
	require.Equal(t, 1, e.Expand(0, false, false))
	require.Equal(t, 1, e.Expand(0, false, false))
}

func TestParseRejectsInvalidDocuments(t *testing.T) {
	tests := []struct {
		name   string
		doc    string
		format Format
		want   error
	}{
		{"duplicate id", "nodes:\n  - id: a\n    children:\n      - id: a\n", FormatYAML, ErrDuplicateID},
		{"empty id", "nodes:\n  - title: nameless\n", FormatYAML, ErrEmptyID},
		{"unknown format", "", Format("toml"), ErrUnsupportedFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc), tt.format)
			require.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte("nodes:\n  - id: a\n    colour: red\n"), FormatYAML)
	require.Error(t, err)

	_, err = Parse([]byte(`{"nodes": [{"id": "a", "colour": "red"}]}`), FormatJSON)
	require.Error(t, err)
}

func TestParseEmptyYAML(t *testing.T) {
	roots, err := Parse(nil, FormatYAML)
	require.NoError(t, err)
	require.Empty(t, roots)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tree.yml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o644))

	roots, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, roots, 2)

	_, err = LoadFile(filepath.Join(dir, "tree.txt"))
	require.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}

func TestDefaultPreviewOption(t *testing.T) {
	doc := "nodes:\n  - id: r\n    preview_enabled: true\n    children: [{id: a}, {id: b}]\n"
	roots, err := Parse([]byte(doc), FormatYAML, WithDefaultPreview(1))
	require.NoError(t, err)
	require.Equal(t, 1, roots[0].PreviewCount())

	// A document-level preview wins over the option.
	roots, err = Parse([]byte("preview: -1\n"+doc), FormatYAML, WithDefaultPreview(1))
	require.NoError(t, err)
	require.Equal(t, -1, roots[0].PreviewCount())
}
