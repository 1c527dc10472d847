package symbols

import (
	"sort"
	"strings"
)

// Render emits a deterministic Go stub of info: doc comment, package clause,
// imports, package-level values, function signatures and type declarations
// with their methods. Function bodies are omitted.
func Render(info *ModuleInfo) string {
	var lines []string
	if info.Doc != "" {
		for _, l := range strings.Split(info.Doc, "\n") {
			lines = append(lines, strings.TrimRight("// "+l, " "))
		}
	}
	pkg := info.Package
	if pkg == "" {
		pkg = info.Name
	}
	lines = append(lines, "package "+pkg)

	if len(info.Imports) > 0 {
		lines = append(lines, "")
		lines = append(lines, info.Imports...)
	}

	if len(info.Constants) > 0 {
		lines = append(lines, "")
		consts := append([]AttributeInfo(nil), info.Constants...)
		sort.SliceStable(consts, func(i, j int) bool { return byLine(consts[i].Line, consts[i].Name, consts[j].Line, consts[j].Name) })
		for _, c := range consts {
			kw := "var "
			if c.Const {
				kw = "const "
			}
			lines = append(lines, kw+attribute(c))
		}
	}

	funcs := append([]FunctionInfo(nil), info.Functions...)
	sortFunctions(funcs)
	for _, fn := range funcs {
		lines = append(lines, "", "func "+fn.Name+signature(fn))
	}

	classes := append([]ClassInfo(nil), info.Classes...)
	sort.SliceStable(classes, func(i, j int) bool { return byLine(classes[i].Line, classes[i].Name, classes[j].Line, classes[j].Name) })
	for _, c := range classes {
		lines = append(lines, renderClass(c)...)
	}

	return strings.TrimRight(strings.Join(lines, "\n"), "\n ") + "\n"
}

func renderClass(c ClassInfo) []string {
	var out []string
	head := "type " + c.Name + c.TypeParams
	switch c.Kind {
	case "":
		// Declared in another file, or extracted without signatures.
	case "struct", "interface":
		var body []string
		for _, b := range c.Bases {
			body = append(body, "\t"+b)
		}
		attrs := append([]AttributeInfo(nil), c.Attributes...)
		sort.SliceStable(attrs, func(i, j int) bool { return byLine(attrs[i].Line, attrs[i].Name, attrs[j].Line, attrs[j].Name) })
		for _, a := range attrs {
			body = append(body, "\t"+attribute(a))
		}
		if c.Kind == "interface" {
			methods := append([]FunctionInfo(nil), c.Methods...)
			sortFunctions(methods)
			for _, m := range methods {
				body = append(body, "\t"+m.Name+signature(m))
			}
		}
		out = append(out, "")
		if len(body) == 0 {
			out = append(out, head+" "+c.Kind+"{}")
		} else {
			out = append(out, head+" "+c.Kind+" {")
			out = append(out, body...)
			out = append(out, "}")
		}
	default:
		out = append(out, "", head+" "+c.Kind)
	}

	if c.Kind == "interface" {
		return out
	}
	methods := append([]FunctionInfo(nil), c.Methods...)
	sortFunctions(methods)
	for _, m := range methods {
		recv := m.Receiver
		if recv == "" {
			recv = c.Name
		}
		out = append(out, "", "func ("+recv+") "+m.Name+signature(m))
	}
	return out
}

func attribute(a AttributeInfo) string {
	switch {
	case a.Annotation != "" && a.Default != "":
		return a.Name + " " + a.Annotation + " = " + a.Default
	case a.Annotation != "":
		return a.Name + " " + a.Annotation
	case a.Default != "":
		return a.Name + " = " + a.Default
	}
	return a.Name
}

func signature(fn FunctionInfo) string {
	if fn.Signature == "" {
		return "()"
	}
	return fn.Signature
}

func sortFunctions(fns []FunctionInfo) {
	sort.SliceStable(fns, func(i, j int) bool { return byLine(fns[i].Line, fns[i].Name, fns[j].Line, fns[j].Name) })
}

func byLine(li int, ni string, lj int, nj string) bool {
	if li != lj {
		return li < lj
	}
	return ni < nj
}
