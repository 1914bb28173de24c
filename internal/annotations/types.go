package annotations

import (
	"fmt"
	"strings"

	"github.com/toyz/axonroute/internal/errors"
	"github.com/toyz/axonroute/pkg/route"
)

// SourceLocation is the position of a directive comment
type SourceLocation = errors.SourceLocation

// Vocabulary identifies the annotation dialect a directive belongs to
type Vocabulary int

const (
	// VocabularyAxon covers //axon::name directives
	VocabularyAxon Vocabulary = iota
	// VocabularyJAXRS covers //@GET, //@QueryParam("q") style directives
	VocabularyJAXRS
	// VocabularySwag covers swaggo comments such as // @Router /p [get]
	VocabularySwag
)

// String returns the string representation of the vocabulary
func (v Vocabulary) String() string {
	switch v {
	case VocabularyAxon:
		return "axon"
	case VocabularyJAXRS:
		return "jaxrs"
	case VocabularySwag:
		return "swag"
	default:
		return "unknown"
	}
}

// ParseVocabulary converts a vocabulary name to a Vocabulary
func ParseVocabulary(s string) (Vocabulary, error) {
	switch strings.ToLower(s) {
	case "axon":
		return VocabularyAxon, nil
	case "jaxrs":
		return VocabularyJAXRS, nil
	case "swag":
		return VocabularySwag, nil
	default:
		return 0, fmt.Errorf("unknown annotation vocabulary: %s", s)
	}
}

// AllVocabularies lists every supported vocabulary
var AllVocabularies = []Vocabulary{VocabularyAxon, VocabularyJAXRS, VocabularySwag}

// Intent is the vocabulary-independent meaning of a directive
type Intent int

const (
	IntentRoute Intent = iota
	IntentBinding
	IntentNameOverride
	IntentResponse
	IntentController
	IntentDeferred
	IntentDispatch
)

// String returns the string representation of the intent
func (i Intent) String() string {
	switch i {
	case IntentRoute:
		return "route"
	case IntentBinding:
		return "binding"
	case IntentNameOverride:
		return "name-override"
	case IntentResponse:
		return "response"
	case IntentController:
		return "controller"
	case IntentDeferred:
		return "deferred"
	case IntentDispatch:
		return "dispatch"
	default:
		return "unknown"
	}
}

// Level is the kind of declaration a directive is attached to
type Level uint8

const (
	LevelMethod Level = 1 << iota
	LevelParam
	LevelType
)

// String returns the string representation of the level
func (l Level) String() string {
	var parts []string
	if l&LevelMethod != 0 {
		parts = append(parts, "method")
	}
	if l&LevelParam != 0 {
		parts = append(parts, "parameter")
	}
	if l&LevelType != 0 {
		parts = append(parts, "type")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// Tag is a directive normalized to its intent. Only the fields relevant to
// Intent are set.
type Tag struct {
	Vocabulary Vocabulary
	Intent     Intent
	Key        string // directive key, e.g. "axon::query" or "@QueryParam"

	Method     string       // IntentRoute, upper case
	Path       string       // IntentRoute
	Middleware []string     // IntentRoute
	Source     route.Source // IntentBinding
	Name       string       // IntentBinding, IntentNameOverride, IntentDispatch
	TypeExpr   string       // IntentResponse, a Go type expression; empty means no body

	Location SourceLocation
	Raw      string
}

func (t Tag) String() string {
	return fmt.Sprintf("%s (%s)", strings.TrimSpace(t.Raw), t.Intent)
}

// Directive is the raw, vocabulary-specific shape of a parsed directive
// before normalization.
type Directive struct {
	Key      string
	Args     []string
	Call     []string
	HasCall  bool
	Flags    map[string][]string
	Location SourceLocation
}

// FlagSpec describes an axon -Flag or -Flag=a,b parameter
type FlagSpec struct {
	Description string
	Validator   func([]string) error
}

// BuildFunc fills the intent-specific fields of tag from d
type BuildFunc func(d *Directive, tag *Tag) error

// DirectiveSchema describes a recognized directive
type DirectiveSchema struct {
	Key         string
	Vocabulary  Vocabulary
	Intent      Intent
	Levels      Level
	MinArgs     int
	MaxArgs     int // -1 for unlimited
	MaxCall     int // jaxrs call arguments, e.g. @Path("/x")
	Flags       map[string]FlagSpec
	Build       BuildFunc
	Description string
	Examples    []string
}

// FilterTags returns the tags with the given intent, in order
func FilterTags(tags []Tag, intent Intent) []Tag {
	var out []Tag
	for _, t := range tags {
		if t.Intent == intent {
			out = append(out, t)
		}
	}
	return out
}

// HasIntent reports whether any tag carries the intent
func HasIntent(tags []Tag, intent Intent) bool {
	for _, t := range tags {
		if t.Intent == intent {
			return true
		}
	}
	return false
}
