// Package loader reads query files: a funcsql expression optionally
// preceded by a YAML frontmatter block.
//
//	/*---
//	name: big_orders
//	relations:
//	  - [orders, customer_id, customers, id]
//	---*/
//	orders join(customers) filter(amount, >, 100)
package loader

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/funcsql/pkg/compiler"
)

// Extension is the file extension of query files.
const Extension = ".fsql"

// Frontmatter is the parsed YAML header of a query file.
// Unknown fields cause parse errors (use Meta for extensions).
type Frontmatter struct {
	Name            string         `yaml:"name"`
	Description     string         `yaml:"description"`
	Tags            []string       `yaml:"tags"`
	Relations       [][]string     `yaml:"relations"`
	DefaultRelation string         `yaml:"default_relation"`
	Meta            map[string]any `yaml:"meta"`
}

// Query is a loaded query file.
type Query struct {
	Path        string
	Frontmatter Frontmatter
	Source      string // expression after the frontmatter
	HasYAML     bool
}

// frontmatterPattern matches /*--- ... ---*/ blocks
var frontmatterPattern = regexp.MustCompile(`(?s)^\s*/\*---\s*\n(.*?)\s*---\*/`)

// Parse splits content into frontmatter and expression.
func Parse(content string) (*Query, error) {
	q := &Query{Source: strings.TrimSpace(content)}

	matches := frontmatterPattern.FindStringSubmatch(content)
	if len(matches) < 2 {
		return q, nil
	}
	q.HasYAML = true
	q.Source = strings.TrimSpace(frontmatterPattern.ReplaceAllString(content, ""))

	fm, err := parseFrontmatterYAML(matches[1])
	if err != nil {
		return nil, err
	}
	q.Frontmatter = *fm
	return q, nil
}

func parseFrontmatterYAML(content string) (*Frontmatter, error) {
	dec := yaml.NewDecoder(strings.NewReader(content))
	dec.KnownFields(true)

	var fm Frontmatter
	if err := dec.Decode(&fm); err != nil && !errors.Is(err, io.EOF) {
		if field, ok := unknownField(err); ok {
			return nil, &UnknownFieldError{Field: field}
		}
		return nil, &FrontmatterParseError{Message: fmt.Sprintf("invalid YAML: %v", err)}
	}

	for i, r := range fm.Relations {
		if len(r) != 4 {
			return nil, &FrontmatterParseError{
				Message: fmt.Sprintf("relations[%d]: want [table1, column1, table2, column2], got %d values", i, len(r)),
			}
		}
	}
	return &fm, nil
}

var unknownFieldPattern = regexp.MustCompile(`field (\S+) not found in type`)

// unknownField extracts the field name from a KnownFields decode error.
func unknownField(err error) (string, bool) {
	m := unknownFieldPattern.FindStringSubmatch(err.Error())
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ApplyTo declares the file's relations on c.
func (q *Query) ApplyTo(c *compiler.Compiler) error {
	for _, r := range q.Frontmatter.Relations {
		if err := c.AddRelation(r[0], r[1], r[2], r[3]); err != nil {
			return err
		}
	}
	if col := q.Frontmatter.DefaultRelation; col != "" {
		if err := c.AddDefaultRelation(col, col); err != nil {
			return err
		}
	}
	return nil
}

// Name returns the frontmatter name, or the file name without extension.
func (q *Query) Name() string {
	if q.Frontmatter.Name != "" {
		return q.Frontmatter.Name
	}
	base := q.Path[strings.LastIndexAny(q.Path, `/\`)+1:]
	return strings.TrimSuffix(base, Extension)
}

// FrontmatterParseError represents a frontmatter parsing error.
type FrontmatterParseError struct {
	File    string
	Message string
}

func (e *FrontmatterParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s: %s", e.File, e.Message)
	}
	return e.Message
}

// UnknownFieldError represents an error for unknown frontmatter fields.
type UnknownFieldError struct {
	File  string
	Field string
}

func (e *UnknownFieldError) Error() string {
	msg := fmt.Sprintf("unknown field %q in frontmatter, use \"meta\" field for custom fields", e.Field)
	if e.File != "" {
		return fmt.Sprintf("%s: %s", e.File, msg)
	}
	return msg
}
