package macro

import (
	"strings"

	"go.starlark.net/syntax"

	"github.com/leapstack-labs/funcsql/pkg/core"
)

// Param is one parameter of a macro function.
type Param struct {
	Name     string
	Default  string // source text of the default value
	Variadic bool   // *name
	Keywords bool   // **name
}

func (p Param) String() string {
	switch {
	case p.Name == "":
		return "*"
	case p.Variadic:
		return "*" + p.Name
	case p.Keywords:
		return "**" + p.Name
	case p.Default != "":
		return p.Name + "=" + p.Default
	}
	return p.Name
}

// Signature is the shape of a macro function as written in its file.
// The first parameter receives the column, the rest the query values.
type Signature struct {
	Name   string
	Params []Param
	Doc    string
	Line   int
}

// Usage renders the call as written in a query.
func (s *Signature) Usage(namespace string) string {
	parts := make([]string, len(s.Params))
	for i, p := range s.Params {
		parts[i] = p.String()
	}
	return namespace + "." + s.Name + "(" + strings.Join(parts, ", ") + ")"
}

// Arity returns the number of positional arguments a call needs and
// accepts. max is -1 when a *args parameter takes the rest.
func (s *Signature) Arity() (required, accepted int) {
	for _, p := range s.Params {
		switch {
		case p.Variadic:
			return required, -1
		case p.Keywords, p.Name == "":
			// bare * ends the positional parameters
			return required, accepted
		}
		if p.Default == "" {
			required++
		}
		accepted++
	}
	return required, accepted
}

// checkArgs validates the number of positional arguments of a call,
// column included.
func (s *Signature) checkArgs(macro string, n int) error {
	required, accepted := s.Arity()
	if accepted >= 0 && n > accepted {
		return core.Errorf(core.ArgumentCount, core.ErrTooManyArguments)
	}
	if n < required {
		return core.Errorf(core.ArgumentCount, ErrMacroTooFew, macro, required-1)
	}
	return nil
}

// signatures reads the public function definitions of a parsed file.
func signatures(f *syntax.File, src []byte) map[string]*Signature {
	lines := strings.Split(string(src), "\n")
	out := make(map[string]*Signature)
	for _, stmt := range f.Stmts {
		def, ok := stmt.(*syntax.DefStmt)
		if !ok || strings.HasPrefix(def.Name.Name, "_") {
			continue
		}
		sig := &Signature{
			Name: def.Name.Name,
			Line: int(def.Name.NamePos.Line),
			Doc:  docstring(def.Body),
		}
		for _, param := range def.Params {
			sig.Params = append(sig.Params, readParam(param, lines))
		}
		out[sig.Name] = sig
	}
	return out
}

func readParam(e syntax.Expr, lines []string) Param {
	switch p := e.(type) {
	case *syntax.Ident:
		return Param{Name: p.Name}
	case *syntax.BinaryExpr:
		if id, ok := p.X.(*syntax.Ident); ok {
			return Param{Name: id.Name, Default: sourceText(p.Y, lines)}
		}
	case *syntax.UnaryExpr:
		var name string
		if id, ok := p.X.(*syntax.Ident); ok {
			name = id.Name
		}
		if name == "" {
			return Param{}
		}
		return Param{Name: name, Variadic: p.Op == syntax.STAR, Keywords: p.Op == syntax.STARSTAR}
	}
	return Param{}
}

// sourceText returns the text of e as written. Expressions spanning
// lines are elided.
func sourceText(e syntax.Expr, lines []string) string {
	start, end := e.Span()
	if start.Line != end.Line || int(start.Line) > len(lines) {
		return "..."
	}
	line := []rune(lines[start.Line-1])
	from, to := int(start.Col)-1, int(end.Col)-1
	if from < 0 || to > len(line) || from >= to {
		return "..."
	}
	return string(line[from:to])
}

func docstring(body []syntax.Stmt) string {
	if len(body) == 0 {
		return ""
	}
	expr, ok := body[0].(*syntax.ExprStmt)
	if !ok {
		return ""
	}
	lit, ok := expr.X.(*syntax.Literal)
	if !ok || lit.Token != syntax.STRING {
		return ""
	}
	s, _ := lit.Value.(string)
	return strings.TrimSpace(s)
}
