package compiler

import (
	"github.com/leapstack-labs/funcsql/pkg/core"
	"github.com/leapstack-labs/funcsql/pkg/relation"
	"github.com/leapstack-labs/funcsql/pkg/token"
)

// parser is the state of one Compile call.
type parser struct {
	registry  *Registry
	relations *relation.Table
	maxDepth  int

	tokens []token.Token
	pos    int
	last   token.Token
	depth  int
}

func (p *parser) next() token.Token {
	if p.pos >= len(p.tokens) {
		return p.last
	}
	p.last = p.tokens[p.pos]
	if p.last.Type != token.EOF {
		p.pos++
	}
	return p.last
}

func (p *parser) peek() token.Token {
	if p.pos >= len(p.tokens) {
		return token.Token{Type: token.EOF}
	}
	return p.tokens[p.pos]
}

func (p *parser) enter() error {
	p.depth++
	if p.depth > p.maxDepth {
		return core.Errorf(core.NestingDepth, core.ErrNestingDepth, p.maxDepth)
	}
	return nil
}

func (p *parser) leave() { p.depth-- }

// parseRoot parses the whole source as one statement closed by the
// synthesized bracket.
func (p *parser) parseRoot() (string, error) {
	root := core.NewStatement(core.Context{Relations: p.relations})
	if err := p.parseStatement(root); err != nil {
		return "", err
	}
	if tok := p.peek(); tok.Type != token.EOF {
		p.next()
		return "", core.Errorf(core.MissingBracket, core.ErrUnexpectedClosingBracket)
	}
	return root.SQL(), nil
}

// parseStatement reads a drive table or nested statement followed by
// commands without separators, up to the statement's closing bracket.
func (p *parser) parseStatement(stmt *core.Statement) error {
	if err := p.enter(); err != nil {
		return err
	}
	defer p.leave()

	ctx := stmt.Context()
	for {
		switch tok := p.peek(); tok.Type {
		case token.EOF:
			p.next()
			return core.Errorf(core.ArgumentCount, core.ErrUnexpectedEndOfStatement)
		case token.RPAREN:
			p.next()
			if !stmt.Machine().CanClose() {
				return core.Errorf(core.ArgumentCount, core.ErrUnexpectedEndOfStatement)
			}
			return stmt.Execute()
		case token.COMMA:
			p.next()
			return core.Errorf(core.UnknownCommand, core.ErrUnknownCommand, tok.Literal)
		default:
			if err := p.parseArgument(stmt, ctx); err != nil {
				return err
			}
		}
	}
}

// parseCommand reads "( arg, arg, ... )" into cmd and executes it.
func (p *parser) parseCommand(cmd core.Command, ctx core.Context) error {
	if err := p.enter(); err != nil {
		return err
	}
	defer p.leave()

	if tok := p.next(); tok.Type != token.LPAREN {
		return core.Errorf(core.MissingBracket, core.ErrExpectedOpeningBracket)
	}

	m := cmd.Machine()
	if p.peek().Type == token.RPAREN {
		p.next()
		if !m.AllowsEmpty() {
			return core.Errorf(core.ArgumentCount, core.ErrNoArguments)
		}
		return cmd.Execute()
	}

	for {
		if err := p.parseArgument(cmd, ctx); err != nil {
			return err
		}

		switch tok := p.next(); tok.Type {
		case token.RPAREN:
			if !m.CanClose() {
				return core.Errorf(core.ArgumentCount, core.ErrUnexpectedEndOfCommand)
			}
			return cmd.Execute()
		case token.COMMA:
			if m.Finished() {
				return core.Errorf(core.ArgumentCount, core.ErrTooManyArguments)
			}
		case token.EOF:
			return core.Errorf(core.ArgumentCount, core.ErrUnexpectedEndOfCommand)
		default:
			return core.Errorf(core.MissingComma, core.ErrExpectedComma, tok.Literal)
		}
	}
}

// parseArgument reads one argument of parent and feeds it to parent's
// machine. ctx is the context parent was built with.
func (p *parser) parseArgument(parent core.Command, ctx core.Context) error {
	m := parent.Machine()

	switch tok := p.next(); tok.Type {
	case token.EOF, token.RPAREN:
		return core.Errorf(core.ArgumentCount, core.ErrUnexpectedEndOfCommand)

	case token.COMMA:
		return core.Errorf(core.ArgumentCount, core.ErrExpectedArgument, tok.Literal)

	case token.QUOTE:
		literal, err := p.quoted()
		if err != nil {
			return err
		}
		return p.feedLiteral(parent, ctx, literal)

	case token.LPAREN:
		if err := m.Admit(core.StatementName, core.StatementKind); err != nil {
			return err
		}
		child := core.NewStatement(p.childContext(core.StatementName, parent, ctx))
		if err := p.parseStatement(child); err != nil {
			return err
		}
		return m.FeedCommand(child)

	default:
		factory, ok := p.registry.Get(tok.Literal)
		if !ok {
			return p.feedLiteral(parent, ctx, tok.Literal)
		}
		return p.parseNested(tok.Literal, factory, parent, ctx)
	}
}

// parseNested builds, parses and executes a nested command, then feeds its
// result to parent.
func (p *parser) parseNested(name string, factory core.Factory, parent core.Command, ctx core.Context) error {
	m := parent.Machine()
	childCtx := p.childContext(name, parent, ctx)
	cmd := factory(childCtx)

	if ref, ok := cmd.(core.Referencer); ok {
		if !m.ExpectsTableOrColumn() {
			return core.Errorf(core.UnexpectedArgument, core.ErrCannotUseCommand, name, parent.Name())
		}
		if err := p.parseCommand(cmd, childCtx); err != nil {
			return err
		}
		return m.FeedLiteral(ref.Reference())
	}

	if err := m.Admit(name, cmd.Kind()); err != nil {
		return err
	}
	if err := p.parseCommand(cmd, childCtx); err != nil {
		return err
	}
	return m.FeedCommand(cmd)
}

// quoted reassembles the span after an opening quote into 'text'.
func (p *parser) quoted() (string, error) {
	text := p.next()
	if text.Type != token.STRING {
		return "", core.Errorf(core.MissingQuote, core.ErrMissingEndQuote)
	}
	if closing := p.next(); closing.Type != token.QUOTE {
		return "", core.Errorf(core.MissingQuote, core.ErrMissingEndQuote)
	}
	return "'" + text.Literal + "'", nil
}

// feedLiteral resolves v when parent expects a table or column and feeds it.
func (p *parser) feedLiteral(parent core.Command, ctx core.Context, v string) error {
	m := parent.Machine()
	if m.ExpectsTableOrColumn() {
		resolved, err := resolve(scopeOf(parent, ctx), v)
		if err != nil {
			return err
		}
		v = resolved
	}
	return m.FeedLiteral(v)
}

// childContext derives the context of a command nested in parent.
func (p *parser) childContext(name string, parent core.Command, ctx core.Context) core.Context {
	child := core.Context{
		Name:      name,
		Statement: ctx.Statement,
		Sink:      ctx.Sink,
		Relations: p.relations,
	}
	if s, ok := parent.(core.Scoper); ok {
		child.Statement = s.Scope()
		child.Sink = child.Statement
	}
	if s, ok := parent.(core.SinkProvider); ok {
		child.Sink = s.Sink()
	}
	if d, ok := parent.(core.DriveProvider); ok {
		child.Drive = d.Drive()
	}
	return child
}

// scopeOf returns the statement the arguments of cmd resolve against.
func scopeOf(cmd core.Command, ctx core.Context) *core.Statement {
	if s, ok := cmd.(core.Scoper); ok {
		return s.Scope()
	}
	return ctx.Statement
}
