package tree

import (
	"fmt"
	"strings"
)

// Formatter renders synthesized nodes as source text
type Formatter struct {
	Dialect Dialect
	// Spanned renders a node that was parsed from source
	Spanned func(n Node) (string, error)
}

// Format renders a node in the given dialect, copying the text of any parsed
// node verbatim from the source
func Format(n Node, source []byte, dialect Dialect) (string, error) {
	f := &Formatter{
		Dialect: dialect,
		Spanned: func(n Node) (string, error) {
			return n.Pos().Text(source), nil
		},
	}
	return f.Format(n)
}

func (f *Formatter) Format(n Node) (string, error) {
	if n.Pos().Valid() {
		return f.Spanned(n)
	}

	var sb strings.Builder
	if err := f.format(&sb, n); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func (f *Formatter) format(sb *strings.Builder, n Node) error {
	write := func(child Node) error {
		text, err := f.Format(child)
		if err != nil {
			return err
		}
		sb.WriteString(text)
		return nil
	}

	switch n := n.(type) {
	case *Ident:
		sb.WriteString(n.Name)
	case *This:
		sb.WriteString("this")
	case *Literal:
		sb.WriteString(n.Text)
	case *Modifier:
		sb.WriteString(n.Keyword)
	case *Annotation:
		sb.WriteByte('@')
		sb.WriteString(n.Name)
	case *Import:
		sb.WriteString("import ")
		if n.Static {
			sb.WriteString("static ")
		}
		sb.WriteString(n.Path)
		if n.Wildcard {
			sb.WriteString(".*")
		}
		f.terminate(sb)
	case *TypeExpr:
		sb.WriteString(n.Name)
		if n.Bound != nil {
			if n.Super {
				sb.WriteString(" super ")
			} else {
				sb.WriteString(" extends ")
			}
			if err := write(n.Bound); err != nil {
				return err
			}
		}
		if len(n.Args) > 0 {
			sb.WriteByte('<')
			for i, arg := range n.Args {
				if i > 0 {
					sb.WriteString(", ")
				}
				if err := write(arg); err != nil {
					return err
				}
			}
			sb.WriteByte('>')
		}
		for i := 0; i < n.Dims; i++ {
			sb.WriteString("[]")
		}
	case *MethodCall:
		if n.Recv != nil {
			if err := write(n.Recv); err != nil {
				return err
			}
			sb.WriteByte('.')
		}
		sb.WriteString(n.Name)
		if err := f.args(sb, n.Args); err != nil {
			return err
		}
	case *FieldAccess:
		if err := write(n.X); err != nil {
			return err
		}
		sb.WriteByte('.')
		sb.WriteString(n.Name)
	case *New:
		if len(n.Body) > 0 {
			return fmt.Errorf("cannot format an anonymous class body")
		}
		sb.WriteString("new ")
		if err := write(n.Class); err != nil {
			return err
		}
		if err := f.args(sb, n.Args); err != nil {
			return err
		}
	case *Cast:
		sb.WriteByte('(')
		if err := write(n.Target); err != nil {
			return err
		}
		sb.WriteString(") ")
		if err := write(n.X); err != nil {
			return err
		}
	case *Paren:
		sb.WriteByte('(')
		if err := write(n.X); err != nil {
			return err
		}
		sb.WriteByte(')')
	case *ExprStmt:
		if err := write(n.X); err != nil {
			return err
		}
		f.terminate(sb)
	case *Return:
		sb.WriteString("return")
		if n.X != nil {
			sb.WriteByte(' ')
			if err := write(n.X); err != nil {
				return err
			}
		}
		f.terminate(sb)
	default:
		return fmt.Errorf("cannot format synthesized %T", n)
	}
	return nil
}

func (f *Formatter) args(sb *strings.Builder, args []Expr) error {
	sb.WriteByte('(')
	for i, arg := range args {
		if i > 0 {
			sb.WriteString(", ")
		}
		text, err := f.Format(arg)
		if err != nil {
			return err
		}
		sb.WriteString(text)
	}
	sb.WriteByte(')')
	return nil
}

// Groovy statements do not need a semicolon
func (f *Formatter) terminate(sb *strings.Builder) {
	if f.Dialect == Java {
		sb.WriteByte(';')
	}
}
