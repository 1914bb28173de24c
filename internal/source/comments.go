package source

import (
	"go/ast"
	"go/token"

	"github.com/toyz/axonroute/internal/annotations"
)

// docComments converts a doc comment group into parser input
func (l *Loader) docComments(doc *ast.CommentGroup) []annotations.Comment {
	if doc == nil {
		return nil
	}
	out := make([]annotations.Comment, 0, len(doc.List))
	for _, c := range doc.List {
		out = append(out, annotations.Comment{Text: c.Text, Location: l.location(c.Pos())})
	}
	return out
}

// paramComments assigns every comment inside a parameter list to the field
// it annotates. The result has one entry per declared parameter name, so a
// field declaring "a, b int" yields two entries sharing the same comments.
//
// A comment belongs to the first field starting after it on the same line,
// else to the last field ending before it on the same line, else to the
// first field starting after it.
func (l *Loader) paramComments(file *ast.File, params *ast.FieldList) [][]annotations.Comment {
	if params == nil || len(params.List) == 0 {
		return nil
	}

	perField := make([][]annotations.Comment, len(params.List))
	for _, group := range file.Comments {
		if group.End() < params.Opening || group.Pos() > params.Closing {
			continue
		}
		for _, c := range group.List {
			i := l.owningField(params.List, c)
			if i < 0 {
				continue
			}
			perField[i] = append(perField[i], annotations.Comment{Text: c.Text, Location: l.location(c.Pos())})
		}
	}

	var out [][]annotations.Comment
	for i, field := range params.List {
		n := len(field.Names)
		if n == 0 {
			n = 1
		}
		for range n {
			out = append(out, perField[i])
		}
	}
	return out
}

func (l *Loader) owningField(fields []*ast.Field, c *ast.Comment) int {
	line := l.line(c.Pos())

	for i, f := range fields {
		if f.Pos() >= c.End() && l.line(f.Pos()) == line {
			return i
		}
	}
	for i := len(fields) - 1; i >= 0; i-- {
		if fields[i].End() <= c.Pos() && l.line(fields[i].End()) == line {
			return i
		}
	}
	for i, f := range fields {
		if f.Pos() >= c.End() {
			return i
		}
	}
	return -1
}

func (l *Loader) line(pos token.Pos) int {
	return l.fset.Position(pos).Line
}
