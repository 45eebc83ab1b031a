package formfile

import (
	"fmt"
	"slices"
	"strings"

	"github.com/amp-labs/amp-wizard/wizard"
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
)

const (
	definedFunc = "defined"
	nullName    = "null"
)

// reservedName reports whether a field path would be shadowed in show_when
// expressions, which bind the top-level names null and defined themselves.
func reservedName(path string) bool {
	head, _, _ := strings.Cut(path, ".")

	return head == definedFunc || head == nullName
}

// condition is a parsed show_when expression.
type condition struct {
	source string
	deps   []string
}

func parseCondition(source string) (*condition, error) {
	tree, err := parser.Parse(source)
	if err != nil {
		return nil, err
	}

	collector := &pathCollector{}
	ast.Walk(&tree.Node, collector)

	return &condition{source: source, deps: collector.paths()}, nil
}

// eval runs the expression against the snapshot. Compiling per evaluation
// lets the environment carry exactly the paths set so far.
func (c *condition) eval(snap wizard.Snapshot) (bool, error) {
	env := snap.Map()
	env[nullName] = nil

	defined := expr.Function(
		definedFunc,
		func(params ...any) (any, error) {
			path, ok := params[0].(string)
			if !ok {
				return false, fmt.Errorf("defined() expects string path argument, got %T", params[0])
			}

			return snap.IsSet(path), nil
		},
		new(func(string) bool),
	)

	// expr.Env must come before AllowUndefinedVariables.
	program, err := expr.Compile(c.source, expr.Env(env), expr.AllowUndefinedVariables(), defined)
	if err != nil {
		return false, err
	}

	out, err := expr.Run(program, env)
	if err != nil {
		return false, err
	}

	switch v := out.(type) {
	case bool:
		return v, nil
	case nil:
		return false, nil
	default:
		return false, fmt.Errorf("%w: %q gave %T", ErrNotBoolean, c.source, out)
	}
}

// pathCollector gathers the state paths an expression reads: identifiers,
// member chains with constant keys (a.b, a?.b, a["b"]) and the arguments of
// defined("...").
type pathCollector struct {
	found []string
}

func (p *pathCollector) Visit(node *ast.Node) {
	switch n := (*node).(type) {
	case *ast.IdentifierNode:
		if n.Value != definedFunc && n.Value != nullName {
			p.found = append(p.found, n.Value)
		}
	case *ast.MemberNode:
		if path, ok := memberPath(n); ok {
			p.found = append(p.found, path)
		}
	case *ast.CallNode:
		callee, ok := n.Callee.(*ast.IdentifierNode)
		if !ok || callee.Value != definedFunc || len(n.Arguments) != 1 {
			return
		}

		if arg, ok := n.Arguments[0].(*ast.StringNode); ok {
			p.found = append(p.found, arg.Value)
		}
	}
}

// paths returns the most specific paths found: a path that only leads to
// another one ("bucket" for "bucket.name") is dropped.
func (p *pathCollector) paths() []string {
	var out []string

	for _, path := range p.found {
		leads := slices.ContainsFunc(p.found, func(other string) bool {
			return strings.HasPrefix(other, path+".")
		})

		if !leads && !slices.Contains(out, path) {
			out = append(out, path)
		}
	}

	return out
}

func memberPath(node ast.Node) (string, bool) {
	switch n := node.(type) {
	case *ast.IdentifierNode:
		return n.Value, true
	case *ast.ChainNode:
		return memberPath(n.Node)
	case *ast.MemberNode:
		base, ok := memberPath(n.Node)
		if !ok {
			return "", false
		}

		key, ok := n.Property.(*ast.StringNode)
		if !ok {
			return "", false
		}

		return base + "." + key.Value, true
	default:
		return "", false
	}
}
