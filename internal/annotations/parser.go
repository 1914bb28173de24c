package annotations

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/toyz/axonroute/internal/errors"
)

// directiveAST is the participle grammar root for one directive comment,
// after the comment markers have been stripped
type directiveAST struct {
	Axon *axonAST `parser:"  @@"`
	At   *atAST   `parser:"| '@' @@"`
}

type axonAST struct {
	Kind string    `parser:"Prefix @Word"`
	Args []*argAST `parser:"@@*"`
}

type atAST struct {
	Name string    `parser:"@Word"`
	Call *callAST  `parser:"@@?"`
	Args []*argAST `parser:"@@*"`
}

type callAST struct {
	Open   string   `parser:"@'('"`
	Values []string `parser:"( @(String | Word | Path | Number) ( ',' @(String | Word | Path | Number) )* )? ')'"`
}

type argAST struct {
	Flag  *flagAST `parser:"  @@"`
	Value *string  `parser:"| @(String | Path | Brace | Number | Word)"`
}

type flagAST struct {
	Name   string   `parser:"@Flag"`
	Values []string `parser:"( '=' @(Word | String | Path | Number) ( ',' @(Word | String | Path | Number) )* )?"`
}

var directiveLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Prefix", Pattern: `axon::`},
	{Name: "String", Pattern: `"(\\"|[^"])*"`},
	{Name: "Path", Pattern: `/[^\s,()"]*`},
	{Name: "Brace", Pattern: `\{[a-zA-Z_]+\}`},
	{Name: "Flag", Pattern: `-[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Number", Pattern: `[0-9]+(\.[0-9]+)?`},
	{Name: "Word", Pattern: `[a-zA-Z_*\[][a-zA-Z0-9_.\-/*\[\]]*`},
	{Name: "Punct", Pattern: `[()=,@]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// Parser recognizes directive comments and normalizes them into Tags
type Parser struct {
	grammar  *participle.Parser[directiveAST]
	registry SchemaRegistry
	enabled  map[Vocabulary]bool
}

// NewParser creates a parser over registry (DefaultRegistry when nil) that
// recognizes the given vocabularies, or all of them when none are given
func NewParser(registry SchemaRegistry, vocabularies ...Vocabulary) *Parser {
	if registry == nil {
		registry = DefaultRegistry()
	}
	if len(vocabularies) == 0 {
		vocabularies = AllVocabularies
	}
	enabled := make(map[Vocabulary]bool, len(vocabularies))
	for _, v := range vocabularies {
		enabled[v] = true
	}

	grammar := participle.MustBuild[directiveAST](
		participle.Lexer(directiveLexer),
		participle.Elide("Whitespace"),
		participle.UseLookahead(2),
	)

	return &Parser{grammar: grammar, registry: registry, enabled: enabled}
}

// Recognize returns the directive key of comment, or false when the comment
// is not a directive of an enabled vocabulary. Unknown axon:: directives are
// recognized so that Parse can report them.
func (p *Parser) Recognize(comment string) (string, bool) {
	content := stripComment(comment)

	if rest, ok := strings.CutPrefix(content, "axon::"); ok {
		if !p.enabled[VocabularyAxon] {
			return "", false
		}
		return "axon::" + leadingWord(rest), true
	}

	rest, ok := strings.CutPrefix(content, "@")
	if !ok {
		return "", false
	}
	name := leadingWord(rest)
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	schema, ok := p.registry.Lookup("@" + name)
	if !ok || !p.enabled[schema.Vocabulary] {
		return "", false
	}
	return schema.Key, true
}

// Parse parses comment as a directive attached at level. It returns nil and
// no error when the comment is not a directive.
func (p *Parser) Parse(comment string, level Level, loc SourceLocation) (*Tag, error) {
	key, ok := p.Recognize(comment)
	if !ok {
		return nil, nil
	}

	schema, ok := p.registry.Lookup(key)
	if !ok {
		return nil, NewSyntaxError(key, "unknown directive", loc,
			fmt.Sprintf("known directives: %s", strings.Join(p.registry.Keys(), ", ")))
	}

	content := stripComment(comment)
	ast, err := p.grammar.ParseString(loc.File, content)
	if err != nil {
		return nil, NewSyntaxError(key, err.Error(), loc, exampleHint(schema))
	}

	directive, err := toDirective(key, ast, loc)
	if err != nil {
		return nil, NewSyntaxError(key, err.Error(), loc, exampleHint(schema))
	}

	if err := validateDirective(schema, directive, level); err != nil {
		return nil, err
	}

	tag := &Tag{
		Vocabulary: schema.Vocabulary,
		Intent:     schema.Intent,
		Key:        schema.Key,
		Location:   loc,
		Raw:        strings.TrimSpace(comment),
	}
	if err := schema.Build(directive, tag); err != nil {
		return nil, NewValidationError(key, "", err.Error(), loc, exampleHint(schema))
	}
	return tag, nil
}

// ParseAll parses every comment at level and returns the tags in order. All
// directive errors are reported, not only the first.
func (p *Parser) ParseAll(comments []Comment, level Level) ([]Tag, error) {
	var tags []Tag
	errs := errors.NewMultipleErrors()
	for _, c := range comments {
		tag, err := p.Parse(c.Text, level, c.Location)
		if err != nil {
			errs.Add(err)
			continue
		}
		if tag != nil {
			tags = append(tags, *tag)
		}
	}
	return tags, errs.ErrorOrNil()
}

// Comment is one comment line with its location
type Comment struct {
	Text     string
	Location SourceLocation
}

func toDirective(key string, ast *directiveAST, loc SourceLocation) (*Directive, error) {
	d := &Directive{Key: key, Flags: map[string][]string{}, Location: loc}

	var args []*argAST
	switch {
	case ast.Axon != nil:
		args = ast.Axon.Args
	case ast.At != nil:
		args = ast.At.Args
		if ast.At.Call != nil {
			d.HasCall = true
			for _, v := range ast.At.Call.Values {
				value, err := unquote(v)
				if err != nil {
					return nil, err
				}
				d.Call = append(d.Call, value)
			}
		}
	}

	for _, arg := range args {
		if arg.Flag != nil {
			name := strings.TrimPrefix(arg.Flag.Name, "-")
			if _, dup := d.Flags[name]; dup {
				return nil, fmt.Errorf("flag -%s given twice", name)
			}
			values := make([]string, 0, len(arg.Flag.Values))
			for _, v := range arg.Flag.Values {
				value, err := unquote(v)
				if err != nil {
					return nil, err
				}
				values = append(values, value)
			}
			d.Flags[name] = values
			continue
		}
		value, err := unquote(*arg.Value)
		if err != nil {
			return nil, err
		}
		d.Args = append(d.Args, value)
	}
	return d, nil
}

func validateDirective(schema DirectiveSchema, d *Directive, level Level) error {
	if schema.Levels&level == 0 {
		return NewValidationError(schema.Key, "", fmt.Sprintf("not allowed on a %s, only on a %s", level, schema.Levels),
			d.Location, exampleHint(schema))
	}
	if len(d.Args) < schema.MinArgs {
		return NewValidationError(schema.Key, "", fmt.Sprintf("expects at least %d argument(s), got %d", schema.MinArgs, len(d.Args)),
			d.Location, exampleHint(schema))
	}
	if schema.MaxArgs >= 0 && len(d.Args) > schema.MaxArgs {
		return NewValidationError(schema.Key, "", fmt.Sprintf("expects at most %d argument(s), got %d", schema.MaxArgs, len(d.Args)),
			d.Location, exampleHint(schema))
	}
	if d.HasCall && schema.MaxCall == 0 {
		return NewValidationError(schema.Key, "", "takes no parenthesized value", d.Location, exampleHint(schema))
	}
	if len(d.Call) > schema.MaxCall && schema.MaxCall > 0 {
		return NewValidationError(schema.Key, "", fmt.Sprintf("takes at most %d value(s)", schema.MaxCall),
			d.Location, exampleHint(schema))
	}
	for name, values := range d.Flags {
		spec, ok := schema.Flags[name]
		if !ok {
			return NewValidationError(schema.Key, "-"+name, "unknown flag", d.Location, exampleHint(schema))
		}
		if spec.Validator != nil {
			if err := spec.Validator(values); err != nil {
				return NewValidationError(schema.Key, "-"+name, err.Error(), d.Location, exampleHint(schema))
			}
		}
	}
	return nil
}

// stripComment removes the comment markers and surrounding whitespace
func stripComment(comment string) string {
	c := strings.TrimSpace(comment)
	switch {
	case strings.HasPrefix(c, "//"):
		c = strings.TrimPrefix(c, "//")
	case strings.HasPrefix(c, "/*"):
		c = strings.TrimSuffix(strings.TrimPrefix(c, "/*"), "*/")
	}
	return strings.TrimSpace(c)
}

func leadingWord(s string) string {
	end := strings.IndexFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '('
	})
	if end < 0 {
		return s
	}
	return s[:end]
}

func unquote(s string) (string, error) {
	if !strings.HasPrefix(s, `"`) {
		return s, nil
	}
	v, err := strconv.Unquote(s)
	if err != nil {
		return "", fmt.Errorf("invalid string %s: %w", s, err)
	}
	return v, nil
}

func exampleHint(schema DirectiveSchema) string {
	if len(schema.Examples) == 0 {
		return ""
	}
	return "example: " + schema.Examples[len(schema.Examples)-1]
}
