// Package source enumerates handler methods by loading Go packages with
// golang.org/x/tools/go/packages and reading directive comments from their
// syntax.
package source

import (
	"cmp"
	"context"
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/tools/go/packages"

	"github.com/toyz/axonroute/internal/annotations"
	"github.com/toyz/axonroute/internal/discovery"
	"github.com/toyz/axonroute/internal/errors"
	"github.com/toyz/axonroute/internal/registry"
	"github.com/toyz/axonroute/internal/resolver"
	"github.com/toyz/axonroute/internal/utils"
	"github.com/toyz/axonroute/pkg/route"
)

const loadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedSyntax |
	packages.NeedTypes |
	packages.NeedTypesInfo |
	packages.NeedImports |
	packages.NeedModule

// Config configures a Loader
type Config struct {
	// Module is the module the entry package belongs to. Only packages of
	// this module are read from source.
	Module      utils.ModuleInfo
	BuildTags   []string
	Parser      *annotations.Parser
	Types       *registry.TypeRegistry
	Diagnostics *utils.DiagnosticSystem
}

// Loader is a discovery.HandlerEnumerator over the controllers reachable
// from an entry type
type Loader struct {
	cfg       Config
	pkgPath   string
	typeName  string
	fset      *token.FileSet
	ctx       context.Context
	packages  map[string]*sourcePackage
	visited   map[string]bool
	typeLevel map[string]typeInfo
}

type sourcePackage struct {
	pkg   *packages.Package
	funcs map[token.Pos]funcInfo
	types map[token.Pos]typeSpecInfo
}

type funcInfo struct {
	decl *ast.FuncDecl
	file *ast.File
}

type typeSpecInfo struct {
	spec *ast.TypeSpec
	doc  *ast.CommentGroup
}

type typeInfo struct {
	tags []annotations.Tag
}

var _ discovery.HandlerEnumerator = (*Loader)(nil)

// New creates a loader for the entry type typeName declared in package
// pkgPath
func New(cfg Config, pkgPath, typeName string) *Loader {
	if cfg.Parser == nil {
		cfg.Parser = annotations.NewParser(nil)
	}
	if cfg.Types == nil {
		cfg.Types = registry.NewBuiltinTypeRegistry()
	}
	if cfg.Diagnostics == nil {
		cfg.Diagnostics = utils.NewSilentDiagnostics()
	}
	return &Loader{cfg: cfg, pkgPath: pkgPath, typeName: typeName}
}

// Handlers loads the entry package and returns the handler methods of the
// entry type and of every controller reachable through its fields, in
// source order
func (l *Loader) Handlers(ctx context.Context) ([]discovery.Handler, error) {
	l.ctx = ctx
	l.fset = token.NewFileSet()
	l.packages = make(map[string]*sourcePackage)
	l.visited = make(map[string]bool)
	l.typeLevel = make(map[string]typeInfo)

	entry, err := l.load(l.pkgPath)
	if err != nil {
		return nil, err
	}

	obj, ok := entry.pkg.Types.Scope().Lookup(l.typeName).(*types.TypeName)
	if !ok {
		return nil, errors.NewEntryNotFoundError(l.pkgPath, l.typeName)
	}

	var handlers []discovery.Handler
	if _, err := l.walk(obj.Type(), true, &handlers); err != nil {
		return nil, err
	}

	for _, h := range handlers {
		for _, t := range h.Results {
			if err := l.requireTypes(t); err != nil {
				return nil, err
			}
		}
	}

	l.cfg.Diagnostics.Debug("Enumerated %d handler(s) from %s.%s", len(handlers), l.pkgPath, l.typeName)
	return handlers, nil
}

// load reads a package from source once and registers its deferred types
func (l *Loader) load(path string) (*sourcePackage, error) {
	if sp, ok := l.packages[path]; ok {
		return sp, nil
	}
	if err := l.ctx.Err(); err != nil {
		return nil, err
	}

	l.cfg.Diagnostics.Debug("Loading package %s", path)

	cfg := &packages.Config{
		Context: l.ctx,
		Mode:    loadMode,
		Dir:     l.cfg.Module.Root,
		Fset:    l.fset,
	}
	if len(l.cfg.BuildTags) > 0 {
		cfg.BuildFlags = []string{"-tags=" + strings.Join(l.cfg.BuildTags, ",")}
	}

	pkgs, err := packages.Load(cfg, path)
	if err != nil {
		return nil, errors.WrapLoadError(path, err)
	}
	if len(pkgs) != 1 {
		return nil, errors.WrapLoadError(path, fmt.Errorf("pattern matched %d packages", len(pkgs)))
	}

	pkg := pkgs[0]
	if len(pkg.Errors) > 0 {
		msgs := make([]string, len(pkg.Errors))
		for i, e := range pkg.Errors {
			msgs[i] = e.Error()
		}
		return nil, errors.WrapLoadError(path, fmt.Errorf("%s", strings.Join(msgs, "; ")))
	}

	sp := &sourcePackage{
		pkg:   pkg,
		funcs: make(map[token.Pos]funcInfo),
		types: make(map[token.Pos]typeSpecInfo),
	}
	for _, file := range pkg.Syntax {
		for _, decl := range file.Decls {
			switch d := decl.(type) {
			case *ast.FuncDecl:
				sp.funcs[d.Name.Pos()] = funcInfo{decl: d, file: file}
			case *ast.GenDecl:
				if d.Tok != token.TYPE {
					continue
				}
				for _, spec := range d.Specs {
					ts := spec.(*ast.TypeSpec)
					doc := ts.Doc
					if doc == nil && len(d.Specs) == 1 {
						doc = d.Doc
					}
					sp.types[ts.Name.Pos()] = typeSpecInfo{spec: ts, doc: doc}
				}
			}
		}
	}
	l.packages[path] = sp

	if err := l.registerDeferred(sp); err != nil {
		return nil, err
	}
	return sp, nil
}

// registerDeferred records every //axon::deferred type of sp
func (l *Loader) registerDeferred(sp *sourcePackage) error {
	scope := sp.pkg.Types.Scope()
	for _, name := range scope.Names() {
		obj, ok := scope.Lookup(name).(*types.TypeName)
		if !ok {
			continue
		}
		info, err := l.typeTags(sp, obj)
		if err != nil {
			return err
		}
		if !annotations.HasIntent(info.tags, annotations.IntentDeferred) {
			continue
		}
		named, ok := obj.Type().(*types.Named)
		if !ok || named.TypeParams().Len() == 0 {
			return errors.Newf(errors.ValidationErrorCode, "deferred type %s.%s must be generic", sp.pkg.PkgPath, name).
				WithLocation(l.location(obj.Pos()))
		}
		qualified := sp.pkg.PkgPath + "." + name
		if err := l.cfg.Types.RegisterDeferred(qualified); err != nil {
			return err
		}
		l.cfg.Diagnostics.Debug("Registered deferred type %s", qualified)
	}
	return nil
}

// typeTags parses the type-level directives of obj once
func (l *Loader) typeTags(sp *sourcePackage, obj *types.TypeName) (typeInfo, error) {
	key := sp.pkg.PkgPath + "." + obj.Name()
	if info, ok := l.typeLevel[key]; ok {
		return info, nil
	}

	var info typeInfo
	if ts, ok := sp.types[obj.Pos()]; ok {
		tags, err := l.cfg.Parser.ParseAll(l.docComments(ts.doc), annotations.LevelType)
		if err != nil {
			return typeInfo{}, err
		}
		info.tags = tags
	}
	l.typeLevel[key] = info
	return info, nil
}

// source returns the source-loaded counterpart of a named type, instantiated
// like n, or nil when its package is outside the module
func (l *Loader) source(n *types.Named) (*types.Named, *sourcePackage, error) {
	obj := n.Origin().Obj()
	if obj.Pkg() == nil {
		return nil, nil, nil
	}
	path := obj.Pkg().Path()
	if _, loaded := l.packages[path]; !loaded && !l.cfg.Module.Contains(path) {
		return nil, nil, nil
	}

	sp, err := l.load(path)
	if err != nil {
		return nil, nil, err
	}
	srcObj, ok := sp.pkg.Types.Scope().Lookup(obj.Name()).(*types.TypeName)
	if !ok {
		return nil, nil, nil
	}
	named, ok := srcObj.Type().(*types.Named)
	if !ok {
		return nil, nil, nil
	}

	if args := n.TypeArgs(); args.Len() > 0 {
		targs := make([]types.Type, args.Len())
		for i := range targs {
			targs[i] = args.At(i)
		}
		inst, err := types.Instantiate(nil, named, targs, false)
		if err != nil {
			return nil, nil, errors.Wrapf(errors.TypeResolutionErrorCode, err, "cannot instantiate %s", types.TypeString(n, nil))
		}
		named = inst.(*types.Named)
	}
	return named, sp, nil
}

// walk appends the handlers of t, then of its fields, depth first. It
// reports whether t is a controller or declares handlers; only such types
// (and the entry type) are descended into.
func (l *Loader) walk(t types.Type, entry bool, handlers *[]discovery.Handler) (bool, error) {
	n, ok := resolver.Deref(t).(*types.Named)
	if !ok {
		return false, nil
	}

	key := types.TypeString(n, nil)
	if l.visited[key] {
		return false, nil
	}
	l.visited[key] = true

	named, sp, err := l.source(n)
	if err != nil || named == nil {
		return false, err
	}

	info, err := l.typeTags(sp, named.Origin().Obj())
	if err != nil {
		return false, err
	}

	found, err := l.methods(named, sp, info, handlers)
	if err != nil {
		return false, err
	}

	relevant := found > 0 || annotations.HasIntent(info.tags, annotations.IntentController)
	if !relevant && !entry {
		return false, nil
	}

	st, ok := named.Underlying().(*types.Struct)
	if !ok {
		return relevant, nil
	}
	for i := 0; i < st.NumFields(); i++ {
		if _, err := l.walk(st.Field(i).Type(), false, handlers); err != nil {
			return false, err
		}
	}
	return relevant, nil
}

// methods appends the handler methods declared on named in source order and
// returns how many were found
func (l *Loader) methods(named *types.Named, sp *sourcePackage, info typeInfo, handlers *[]discovery.Handler) (int, error) {
	methods := make([]*types.Func, named.NumMethods())
	for i := range methods {
		methods[i] = named.Method(i)
	}
	slices.SortFunc(methods, func(a, b *types.Func) int {
		return cmp.Compare(a.Origin().Pos(), b.Origin().Pos())
	})

	var dispatch string
	if tags := annotations.FilterTags(info.tags, annotations.IntentDispatch); len(tags) > 0 {
		dispatch = tags[len(tags)-1].Name
	}

	found := 0
	for _, m := range methods {
		fn, ok := sp.funcs[m.Origin().Pos()]
		if !ok {
			continue
		}
		h, ok := l.handler(named, m, fn, sp)
		if !ok {
			continue
		}
		h.Dispatch = dispatch
		*handlers = append(*handlers, h)
		found++
	}
	return found, nil
}

// handler describes m when its doc carries a route directive. A method whose
// directives fail to parse is reported as a handler with Err set.
func (l *Loader) handler(named *types.Named, m *types.Func, fn funcInfo, sp *sourcePackage) (discovery.Handler, bool) {
	id := resolver.QualifiedName(named) + "." + m.Name()
	location := l.position(fn.decl.Name.Pos())

	tags, err := l.cfg.Parser.ParseAll(l.docComments(fn.decl.Doc), annotations.LevelMethod)
	if err == nil && !annotations.HasIntent(tags, annotations.IntentRoute) {
		return discovery.Handler{}, false
	}

	h := discovery.Handler{ID: id, Location: location, Tags: tags}
	if err != nil {
		h.Err = errors.Wrapf(errors.DiscoveryErrorCode, err, "%s", id).WithContext("handler", id)
		return h, true
	}

	sig := m.Type().(*types.Signature)
	comments := l.paramComments(fn.file, fn.decl.Type.Params)
	paramErrs := errors.NewMultipleErrors()

	for i := 0; i < sig.Params().Len(); i++ {
		v := sig.Params().At(i)
		p := discovery.Param{Name: v.Name(), Type: v.Type(), Position: l.position(v.Pos())}
		if i < len(comments) {
			ptags, err := l.cfg.Parser.ParseAll(comments[i], annotations.LevelParam)
			paramErrs.Add(err)
			p.Tags = ptags
		}
		h.Params = append(h.Params, p)
	}
	for i := 0; i < sig.Results().Len(); i++ {
		h.Results = append(h.Results, sig.Results().At(i).Type())
	}
	if !paramErrs.IsEmpty() {
		h.Err = errors.Wrapf(errors.DiscoveryErrorCode, paramErrs, "%s", id).WithContext("handler", id)
		return h, true
	}

	for _, t := range annotations.FilterTags(tags, annotations.IntentResponse) {
		if t.TypeExpr == "" {
			continue
		}
		tv, err := types.Eval(l.fset, sp.pkg.Types, fn.decl.Pos(), t.TypeExpr)
		if err == nil && !tv.IsType() {
			err = fmt.Errorf("%s is not a type", t.TypeExpr)
		}
		if err != nil {
			h.Err = &route.UnresolvedTypeError{
				Method:   id,
				Type:     t.TypeExpr,
				Reason:   "response type does not evaluate",
				Position: t.Location.String(),
				Cause:    err,
			}
			return h, true
		}
		h.Response = tv.Type
		break
	}

	return h, true
}

// requireTypes loads the module packages declaring the named types in t so
// that their deferred directives are known before resolution
func (l *Loader) requireTypes(t types.Type) error {
	switch tt := types.Unalias(t).(type) {
	case *types.Pointer:
		return l.requireTypes(tt.Elem())
	case *types.Slice:
		return l.requireTypes(tt.Elem())
	case *types.Array:
		return l.requireTypes(tt.Elem())
	case *types.Chan:
		return l.requireTypes(tt.Elem())
	case *types.Map:
		return l.requireTypes(tt.Elem())
	case *types.Signature:
		for i := 0; i < tt.Results().Len(); i++ {
			if err := l.requireTypes(tt.Results().At(i).Type()); err != nil {
				return err
			}
		}
	case *types.Named:
		obj := tt.Origin().Obj()
		if obj.Pkg() != nil && l.cfg.Module.Contains(obj.Pkg().Path()) {
			if _, err := l.load(obj.Pkg().Path()); err != nil {
				return err
			}
		}
		for i := 0; i < tt.TypeArgs().Len(); i++ {
			if err := l.requireTypes(tt.TypeArgs().At(i)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (l *Loader) location(pos token.Pos) annotations.SourceLocation {
	p := l.fset.Position(pos)
	return annotations.SourceLocation{File: l.relative(p.Filename), Line: p.Line, Column: p.Column}
}

// position renders pos as "file:line" relative to the module root
func (l *Loader) position(pos token.Pos) string {
	p := l.fset.Position(pos)
	if !p.IsValid() {
		return ""
	}
	return fmt.Sprintf("%s:%d", l.relative(p.Filename), p.Line)
}

func (l *Loader) relative(filename string) string {
	if l.cfg.Module.Root == "" {
		return filename
	}
	if rel, err := filepath.Rel(l.cfg.Module.Root, filename); err == nil && !strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(rel)
	}
	return filename
}
