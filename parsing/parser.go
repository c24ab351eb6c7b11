// Package parsing reads Java and Groovy source files into trees, using the
// tree-sitter Java grammar.
//
// Groovy files are read with the same grammar, after their statements are
// terminated and their closures are rewritten into lambdas. Anything the
// grammar still rejects is kept as an opaque region that is copied through
// untouched, and listed in the unit's Unparsed regions.
package parsing

import (
	"context"
	"fmt"

	"github.com/NickyBoy89/propmigrate/nodeutil"
	"github.com/NickyBoy89/propmigrate/tree"
	log "github.com/sirupsen/logrus"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"
)

// Parser turns source files into trees. A Parser must not be used from more
// than one goroutine at once
type Parser struct {
	parser *sitter.Parser
}

func NewParser() *Parser {
	parser := sitter.NewParser()
	parser.SetLanguage(java.GetLanguage())
	return &Parser{parser: parser}
}

// Parse reads a single file. If the file contains syntax errors, the unit is
// still returned, together with a *SyntaxError describing them
func (p *Parser) Parse(ctx context.Context, path string, source []byte) (unit *tree.SourceUnit, err error) {
	dialect := tree.DialectOf(path)
	text := source
	var groovy *groovySource
	if dialect == tree.Groovy {
		groovy = normalizeGroovy(source)
		text = groovy.text
	}

	parsed, err := p.parser.ParseCtx(ctx, nil, text)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	root := parsed.RootNode()

	// The converter asserts the shape of the nodes it reads, and panics on
	// anything unexpected
	defer func() {
		if r := recover(); r != nil {
			unit = nil
			err = &ConversionError{Path: path, Msg: fmt.Sprint(r)}
		}
	}()

	c := &converter{source: text, path: path}
	unit = c.unit(root)
	problems := nodeutil.Problems(root, text)
	if groovy != nil {
		groovy.remap(unit)
		for i, problem := range problems {
			problems[i] = groovy.problem(problem, source)
		}
	}
	unit.Path = path
	unit.Dialect = dialect
	unit.Source = source
	for _, problem := range problems {
		span := problem.Span
		if problem.Missing || !span.Valid() {
			continue
		}
		// Errors nested inside of an earlier one are part of its region
		if n := len(unit.Unparsed); n > 0 && unit.Unparsed[n-1].Start <= span.Start && span.End <= unit.Unparsed[n-1].End {
			continue
		}
		unit.Unparsed = append(unit.Unparsed, span)
	}

	if len(problems) > 0 {
		log.WithFields(log.Fields{
			"path":     path,
			"problems": len(problems),
		}).Debug("Recovered from syntax errors")
		return unit, &SyntaxError{Path: path, Problems: problems}
	}
	return unit, nil
}

// Parse reads a single file with a fresh parser
func Parse(ctx context.Context, path string, source []byte) (*tree.SourceUnit, error) {
	return NewParser().Parse(ctx, path, source)
}

type converter struct {
	source []byte
	path   string
}

func (c *converter) content(node *sitter.Node) string {
	return node.Content(c.source)
}

// unit converts the `program` node at the root of every file
func (c *converter) unit(node *sitter.Node) *tree.SourceUnit {
	nodeutil.AssertTypeIs(node, "program")

	unit := &tree.SourceUnit{Span: nodeutil.SpanOf(node)}
	for _, child := range nodeutil.Children(node) {
		switch child.Type() {
		case "package_declaration":
			// The package's name is the only non-annotation child
			for _, name := range nodeutil.Children(child) {
				switch name.Type() {
				case "identifier", "scoped_identifier":
					unit.Package = &tree.PackageDecl{Span: nodeutil.SpanOf(child), Name: c.content(name)}
				}
			}
		case "import_declaration":
			unit.Imports = append(unit.Imports, c.importDecl(child))
		case "class_declaration", "interface_declaration", "enum_declaration",
			"annotation_type_declaration", "record_declaration":
			unit.Types = append(unit.Types, c.classDecl(child))
		case "ERROR":
			// Nothing inside of a region that failed to parse is ever rewritten
		default:
			if nodeutil.IsComment(child) {
				continue
			}
			// Scripts have statements at the top level
			unit.Statements = append(unit.Statements, c.stmt(child))
		}
	}
	return unit
}

func (c *converter) importDecl(node *sitter.Node) *tree.Import {
	imp := &tree.Import{Span: nodeutil.SpanOf(node)}
	for _, child := range nodeutil.UnnamedChildren(node) {
		switch child.Type() {
		case "static":
			imp.Static = true
		case "asterisk":
			imp.Wildcard = true
		case "identifier", "scoped_identifier":
			imp.Path = c.content(child)
		}
	}
	return imp
}
