// Package loader reads tree documents and turns them into node forests.
//
// A document lists root nodes, each with optional children:
//
//	preview: 3              # default preview size for preview_enabled nodes
//	nodes:
//	  - id: inbox
//	    title: Inbox
//	    preview_enabled: true
//	    children:
//	      - id: m1
//	        title: First mail
//	        checked: true
//	  - id: archive
//	    expanded: true
//	    children: [...]
//
// YAML (.yaml, .yml) and JSON (.json) are supported.
package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/treeflat/pkg/node"
)

var (
	// ErrEmptyID is returned for a node without an id.
	ErrEmptyID = errors.New("node id is required")
	// ErrDuplicateID is returned when two nodes share an id.
	ErrDuplicateID = errors.New("duplicate node id")
	// ErrUnsupportedFormat is returned for unknown file extensions.
	ErrUnsupportedFormat = errors.New("unsupported document format")
)

// Format identifies a document encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFor picks a format from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Document is the on-disk shape of a tree.
type Document struct {
	// Preview is the preview size used by nodes that enable previews without
	// choosing their own (default: node.DefaultPreviewCount)
	Preview *int `yaml:"preview,omitempty" json:"preview,omitempty"`

	Nodes []NodeSpec `yaml:"nodes" json:"nodes"`
}

// NodeSpec is one node in a Document.
type NodeSpec struct {
	ID    string `yaml:"id" json:"id"`
	Title string `yaml:"title,omitempty" json:"title,omitempty"`

	// Expandable can be set to false for plain rows (default: true)
	Expandable *bool `yaml:"expandable,omitempty" json:"expandable,omitempty"`
	Expanded   bool  `yaml:"expanded,omitempty" json:"expanded,omitempty"`

	// Preview sets this node's preview size. Negative shows every child and
	// zero never previews.
	Preview        *int `yaml:"preview,omitempty" json:"preview,omitempty"`
	PreviewEnabled bool `yaml:"preview_enabled,omitempty" json:"preview_enabled,omitempty"`

	Checkable bool  `yaml:"checkable,omitempty" json:"checkable,omitempty"`
	Checked   *bool `yaml:"checked,omitempty" json:"checked,omitempty"`

	Children []NodeSpec `yaml:"children,omitempty" json:"children,omitempty"`
}

// GetTitle returns the display title, falling back to the id.
func (s *NodeSpec) GetTitle() string {
	if s.Title != "" {
		return s.Title
	}
	return s.ID
}

// IsExpandable returns whether the node can be expanded.
func (s *NodeSpec) IsExpandable() bool {
	if s.Expandable == nil {
		return true
	}
	return *s.Expandable
}

// Decode parses a document in the given format.
func Decode(r io.Reader, format Format) (*Document, error) {
	var doc Document
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parsing yaml document: %w", err)
		}
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("parsing json document: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return &doc, nil
}

// Validate checks that every node has a unique, non-empty id.
func (d *Document) Validate() error {
	seen := make(map[string]string)
	var check func(path string, specs []NodeSpec) error
	check = func(path string, specs []NodeSpec) error {
		for i := range specs {
			s := &specs[i]
			at := fmt.Sprintf("%s[%d]", path, i)
			if strings.TrimSpace(s.ID) == "" {
				return fmt.Errorf("%s: %w", at, ErrEmptyID)
			}
			if prev, ok := seen[s.ID]; ok {
				return fmt.Errorf("%s: %w %q (first at %s)", at, ErrDuplicateID, s.ID, prev)
			}
			seen[s.ID] = at
			if err := check(at+".children", s.Children); err != nil {
				return err
			}
		}
		return nil
	}
	return check("nodes", d.Nodes)
}

// Option adjusts how a Document is built.
type Option func(*options)

type options struct {
	preview int
}

// WithDefaultPreview sets the preview size for documents that don't set
// their own.
func WithDefaultPreview(count int) Option {
	return func(o *options) {
		o.preview = count
	}
}

// Build validates the document and returns the processed root nodes.
func (d *Document) Build(opts ...Option) ([]*node.Node, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	o := options{preview: node.DefaultPreviewCount}
	for _, opt := range opts {
		opt(&o)
	}
	preview := o.preview
	if d.Preview != nil {
		preview = *d.Preview
	}

	roots := make([]*node.Node, 0, len(d.Nodes))
	for i := range d.Nodes {
		roots = append(roots, buildNode(&d.Nodes[i], preview))
	}
	node.Process(roots)
	return roots, nil
}

func buildNode(s *NodeSpec, preview int) *node.Node {
	var opts []node.Option
	if !s.IsExpandable() {
		opts = append(opts, node.WithoutExpand())
	}
	switch {
	case s.Preview != nil:
		opts = append(opts, node.WithPreview(*s.Preview))
	case s.PreviewEnabled:
		opts = append(opts, node.WithPreview(preview))
	}
	if s.PreviewEnabled {
		opts = append(opts, node.WithPreviewEnabled())
	}
	if s.Checkable {
		opts = append(opts, node.WithCheckable())
	}
	if s.Checked != nil {
		opts = append(opts, node.WithChecked(*s.Checked))
	}
	if s.Expanded {
		opts = append(opts, node.WithExpanded())
	}
	for i := range s.Children {
		opts = append(opts, node.WithChildren(buildNode(&s.Children[i], preview)))
	}
	return node.New(s.ID, s.GetTitle(), opts...)
}

// Parse decodes and builds a document from bytes.
func Parse(data []byte, format Format, opts ...Option) ([]*node.Node, error) {
	doc, err := Decode(bytes.NewReader(data), format)
	if err != nil {
		return nil, err
	}
	return doc.Build(opts...)
}

// LoadFile reads the document at path, choosing the format by extension.
func LoadFile(path string, opts ...Option) ([]*node.Node, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading tree document: %w", err)
	}
	roots, err := Parse(data, format, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return roots, nil
}
