package symbols

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"os"
	"strconv"
	"strings"
)

// Extract parses the Go file at path.
func Extract(path, moduleName, relPath string, level ResolutionLevel) (*ModuleInfo, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", relPath, err)
	}
	return ExtractSource(src, moduleName, relPath, level)
}

// ExtractSource parses Go source text.
func ExtractSource(src []byte, moduleName, relPath string, level ResolutionLevel) (*ModuleInfo, error) {
	fset := token.NewFileSet()
	mode := parser.ParseComments | parser.SkipObjectResolution
	file, err := parser.ParseFile(fset, relPath, src, mode)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", relPath, err)
	}

	x := &extractor{fset: fset, level: level, classIndex: map[string]int{}}
	info := &ModuleInfo{
		Name:    moduleName,
		Package: file.Name.Name,
		Path:    relPath,
		Doc:     docText(file.Doc),
	}
	if level < Modules {
		return info, nil
	}

	for _, imp := range file.Imports {
		info.Imports = append(info.Imports, importLine(imp))
	}
	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.GenDecl:
			x.genDecl(info, d)
		case *ast.FuncDecl:
			x.funcDecl(info, d)
		}
	}
	x.finish(info)
	return info, nil
}

type extractor struct {
	fset       *token.FileSet
	level      ResolutionLevel
	classIndex map[string]int
	classes    []ClassInfo
}

func (x *extractor) line(p token.Pos) int {
	return x.fset.Position(p).Line
}

func (x *extractor) genDecl(info *ModuleInfo, d *ast.GenDecl) {
	switch d.Tok {
	case token.CONST, token.VAR:
		// Constants without values repeat the previous spec's type and values.
		var lastType string
		var lastValues []ast.Expr
		for _, spec := range d.Specs {
			vs := spec.(*ast.ValueSpec)
			typ, values := exprString(vs.Type), vs.Values
			if d.Tok == token.CONST && len(values) == 0 && vs.Type == nil {
				typ, values = lastType, lastValues
			}
			for i, name := range vs.Names {
				if name.Name == "_" {
					continue
				}
				a := AttributeInfo{Name: name.Name, Line: x.line(name.Pos()), Const: d.Tok == token.CONST}
				if x.level >= Signatures {
					a.Annotation = typ
					if i < len(values) {
						a.Default = exprString(values[i])
					}
				}
				info.Constants = append(info.Constants, a)
			}
			lastType, lastValues = typ, values
		}
	case token.TYPE:
		for _, spec := range d.Specs {
			ts := spec.(*ast.TypeSpec)
			doc := ts.Doc
			if doc == nil && len(d.Specs) == 1 {
				doc = d.Doc
			}
			x.typeSpec(ts, doc)
		}
	}
}

func (x *extractor) class(name string, line int) *ClassInfo {
	if i, ok := x.classIndex[name]; ok {
		return &x.classes[i]
	}
	x.classIndex[name] = len(x.classes)
	x.classes = append(x.classes, ClassInfo{Name: name, Line: line})
	return &x.classes[len(x.classes)-1]
}

func (x *extractor) typeSpec(ts *ast.TypeSpec, doc *ast.CommentGroup) {
	c := x.class(ts.Name.Name, x.line(ts.Name.Pos()))
	c.Line = x.line(ts.Name.Pos())
	c.Doc = docText(doc)
	if x.level < Signatures {
		return
	}

	switch t := ts.Type.(type) {
	case *ast.StructType:
		c.Kind = "struct"
		for _, f := range t.Fields.List {
			typ := exprString(f.Type)
			if len(f.Names) == 0 {
				c.Bases = append(c.Bases, typ)
				continue
			}
			for _, n := range f.Names {
				c.Attributes = append(c.Attributes, AttributeInfo{Name: n.Name, Line: x.line(n.Pos()), Annotation: typ})
			}
		}
	case *ast.InterfaceType:
		c.Kind = "interface"
		for _, f := range t.Methods.List {
			ft, ok := f.Type.(*ast.FuncType)
			if !ok || len(f.Names) == 0 {
				c.Bases = append(c.Bases, exprString(f.Type))
				continue
			}
			fn := x.function(f.Names[0].Name, x.line(f.Names[0].Pos()), ft, nil)
			fn.Doc = docText(f.Doc)
			c.Methods = append(c.Methods, fn)
		}
	default:
		c.Kind = exprString(ts.Type)
		if ts.Assign.IsValid() {
			c.Kind = "= " + c.Kind
		}
	}
	if ts.TypeParams != nil {
		c.TypeParams = "[" + fieldList(ts.TypeParams) + "]"
	}
}

func (x *extractor) funcDecl(info *ModuleInfo, d *ast.FuncDecl) {
	line := x.line(d.Name.Pos())
	if d.Recv == nil || len(d.Recv.List) == 0 {
		fn := FunctionInfo{Name: d.Name.Name, Line: line, Doc: docText(d.Doc)}
		if x.level >= Signatures {
			fn = x.function(d.Name.Name, line, d.Type, nil)
			fn.Doc = docText(d.Doc)
		}
		info.Functions = append(info.Functions, fn)
		return
	}

	recv := d.Recv.List[0].Type
	c := x.class(receiverName(recv), line)
	fn := FunctionInfo{Name: d.Name.Name, Line: line, Doc: docText(d.Doc), Receiver: exprString(recv)}
	if x.level >= Signatures {
		fn = x.function(d.Name.Name, line, d.Type, recv)
		fn.Doc = docText(d.Doc)
	}
	c.Methods = append(c.Methods, fn)
}

func (x *extractor) function(name string, line int, ft *ast.FuncType, recv ast.Expr) FunctionInfo {
	fn := FunctionInfo{Name: name, Line: line}
	if recv != nil {
		fn.Receiver = exprString(recv)
	}

	var sig strings.Builder
	if ft.TypeParams != nil {
		sig.WriteString("[" + fieldList(ft.TypeParams) + "]")
	}
	sig.WriteString("(" + fieldList(ft.Params) + ")")
	fn.Returns = results(ft.Results)
	if fn.Returns != "" {
		sig.WriteString(" " + fn.Returns)
	}
	fn.Signature = sig.String()

	if ft.Params != nil {
		for _, f := range ft.Params.List {
			typ := f.Type
			variadic := false
			if e, ok := typ.(*ast.Ellipsis); ok {
				variadic = true
				typ = e.Elt
			}
			if len(f.Names) == 0 {
				fn.Parameters = append(fn.Parameters, ParameterInfo{Annotation: exprString(typ), Variadic: variadic})
				continue
			}
			for _, n := range f.Names {
				fn.Parameters = append(fn.Parameters, ParameterInfo{Name: n.Name, Annotation: exprString(typ), Variadic: variadic})
			}
		}
	}
	return fn
}

// finish attaches collected types and marks method-less structs.
func (x *extractor) finish(info *ModuleInfo) {
	for i := range x.classes {
		c := &x.classes[i]
		c.IsDataclass = c.Kind == "struct" && len(c.Methods) == 0
	}
	info.Classes = x.classes
}

func receiverName(e ast.Expr) string {
	for {
		switch t := e.(type) {
		case *ast.StarExpr:
			e = t.X
		case *ast.ParenExpr:
			e = t.X
		case *ast.IndexExpr:
			e = t.X
		case *ast.IndexListExpr:
			e = t.X
		case *ast.Ident:
			return t.Name
		default:
			return exprString(e)
		}
	}
}

func fieldList(fl *ast.FieldList) string {
	if fl == nil {
		return ""
	}
	parts := make([]string, 0, len(fl.List))
	for _, f := range fl.List {
		typ := exprString(f.Type)
		if len(f.Names) == 0 {
			parts = append(parts, typ)
			continue
		}
		names := make([]string, 0, len(f.Names))
		for _, n := range f.Names {
			names = append(names, n.Name)
		}
		parts = append(parts, strings.Join(names, ", ")+" "+typ)
	}
	return strings.Join(parts, ", ")
}

func results(fl *ast.FieldList) string {
	if fl == nil || len(fl.List) == 0 {
		return ""
	}
	if len(fl.List) == 1 && len(fl.List[0].Names) == 0 {
		return exprString(fl.List[0].Type)
	}
	return "(" + fieldList(fl) + ")"
}

func exprString(e ast.Expr) string {
	if e == nil {
		return ""
	}
	return types.ExprString(e)
}

func importLine(imp *ast.ImportSpec) string {
	path := imp.Path.Value
	if p, err := strconv.Unquote(path); err == nil {
		path = strconv.Quote(p)
	}
	if imp.Name != nil {
		return "import " + imp.Name.Name + " " + path
	}
	return "import " + path
}

func docText(cg *ast.CommentGroup) string {
	if cg == nil {
		return ""
	}
	return strings.TrimSpace(cg.Text())
}
