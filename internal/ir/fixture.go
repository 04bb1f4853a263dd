package ir

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sunholo/checkercore/internal/external"
	"github.com/sunholo/checkercore/internal/rtype"
)

// Fixture is the YAML document shape LoadFixtureFile reads: a small, flat
// declaration set exercising the kinds of expressions/statements
// cmd/typecheck's demo and internal/ir's fixture test need, not a full
// surface-language grammar. Grounded on the teacher's test-fixture
// loading convention in internal/test (YAML-driven golden suites), swapped
// from its eval-trace schema to this CORE's declaration/expr/stmt schema.
type Fixture struct {
	Entities  []entityYAML   `yaml:"entities"`
	Functions []functionYAML `yaml:"functions"`
}

type entityYAML struct {
	Name   string            `yaml:"name"`
	Fields map[string]string `yaml:"fields"`
}

type paramYAML struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Optional bool   `yaml:"optional"`
}

type functionYAML struct {
	Namespace string      `yaml:"namespace"`
	Name      string      `yaml:"name"`
	Params    []paramYAML `yaml:"params"`
	Result    string      `yaml:"result"`
	Body      nodeYAML    `yaml:"body"`
}

// nodeYAML is a generic tagged node: Kind selects which Expr/Stmt
// constructor field decode interprets, the rest are populated best-effort.
type nodeYAML struct {
	Kind     string     `yaml:"kind"`
	Value    *yaml.Node `yaml:"value"`
	Name     string     `yaml:"name"`
	Type     string     `yaml:"type"`
	Op       string     `yaml:"op"`
	Left     *nodeYAML  `yaml:"left"`
	Right    *nodeYAML  `yaml:"right"`
	Cond     *nodeYAML  `yaml:"cond"`
	Then     *nodeYAML  `yaml:"then"`
	Else     *nodeYAML  `yaml:"else"`
	Root     *nodeYAML  `yaml:"root"`
	Field    string     `yaml:"field"`
	Args     []nodeYAML `yaml:"args"`
	Stmts    []nodeYAML `yaml:"stmts"`
	Branches []struct {
		Cond nodeYAML   `yaml:"cond"`
		Body []nodeYAML `yaml:"body"`
	} `yaml:"branches"`
}

// LoadFixtureFile reads a YAML fixture from disk and builds an *Assembly
// plus the FunctionDecl list it declares, resolving every declared type
// name against the entities the same fixture registers.
func LoadFixtureFile(path string) (*Assembly, []*external.FunctionDecl, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("ir: reading fixture %s: %w", path, err)
	}
	var fx Fixture
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return nil, nil, fmt.Errorf("ir: parsing fixture %s: %w", path, err)
	}
	return buildFixture(fx)
}

func buildFixture(fx Fixture) (*Assembly, []*external.FunctionDecl, error) {
	asm := NewAssembly()
	for _, e := range fx.Entities {
		fields := make(map[string]FieldSpec, len(e.Fields))
		for name, typeName := range e.Fields {
			t, ok := resolveBuiltinOrEntity(asm, typeName)
			if !ok {
				return nil, nil, fmt.Errorf("ir: entity %s field %s: unknown type %q", e.Name, name, typeName)
			}
			fields[name] = FieldSpec{Type: t}
		}
		asm.DefineEntity(&EntityDecl{Name: e.Name, Fields: fields})
	}

	var decls []*external.FunctionDecl
	for _, fn := range fx.Functions {
		sig, err := buildSignature(asm, fn)
		if err != nil {
			return nil, nil, err
		}
		body, err := buildBody(fn.Body)
		if err != nil {
			return nil, nil, fmt.Errorf("ir: function %s.%s body: %w", fn.Namespace, fn.Name, err)
		}
		key := "fn:" + fn.Namespace + "." + fn.Name
		decls = append(decls, &external.FunctionDecl{
			Namespace: fn.Namespace, Name: fn.Name, Sig: sig, Body: body, Key: key,
		})
		asm.Namespace(fn.Namespace).Functions[fn.Name] = MethodSpec{
			Params: toRtypeParams(sig.Params), Rest: restType(sig.Rest), Result: sig.Result,
		}
	}
	return asm, decls, nil
}

func toRtypeParams(params []external.Param) []rtype.Param {
	out := make([]rtype.Param, len(params))
	for i, p := range params {
		out[i] = rtype.Param{Name: p.Name, Type: p.Type, Optional: p.Optional}
	}
	return out
}

func restType(p *external.Param) *rtype.ResolvedType {
	if p == nil {
		return nil
	}
	return p.Type
}

func resolveBuiltinOrEntity(asm *Assembly, name string) (*rtype.ResolvedType, bool) {
	switch name {
	case "None":
		return rtype.None(), true
	case "Any":
		return rtype.Any(), true
	case "Bool":
		return asm.BoolType(), true
	case "Int":
		return asm.IntType(), true
	case "String":
		return asm.StringType(), true
	case "GUID":
		return asm.GUIDType(), true
	}
	return asm.ResolveTypeName(name)
}

func buildSignature(asm *Assembly, fn functionYAML) (external.Signature, error) {
	var sig external.Signature
	for _, p := range fn.Params {
		t, ok := resolveBuiltinOrEntity(asm, p.Type)
		if !ok {
			return sig, fmt.Errorf("ir: function %s.%s param %s: unknown type %q", fn.Namespace, fn.Name, p.Name, p.Type)
		}
		sig.Params = append(sig.Params, external.Param{Name: p.Name, Type: t, Optional: p.Optional})
	}
	if fn.Result != "" {
		t, ok := resolveBuiltinOrEntity(asm, fn.Result)
		if !ok {
			return sig, fmt.Errorf("ir: function %s.%s: unknown result type %q", fn.Namespace, fn.Name, fn.Result)
		}
		sig.Result = t
	}
	return sig, nil
}

func buildBody(n nodeYAML) (external.Body2, error) {
	switch n.Kind {
	case "", "block":
		block, err := buildBlock(n)
		if err != nil {
			return external.Body2{}, err
		}
		return external.Body2{Kind: external.BodyBlock, Block: block}, nil
	default:
		e, err := buildExpr(n)
		if err != nil {
			return external.Body2{}, err
		}
		return external.Body2{Kind: external.BodyExpr, Expr: e}, nil
	}
}

func buildBlock(n nodeYAML) (*external.BlockStmt, error) {
	stmts := make([]external.Stmt, 0, len(n.Stmts))
	for _, s := range n.Stmts {
		st, err := buildStmt(s)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, st)
	}
	return &external.BlockStmt{Stmts: stmts}, nil
}

func buildStmt(n nodeYAML) (external.Stmt, error) {
	switch n.Kind {
	case "var":
		var init external.Expr
		var err error
		if n.Value != nil || n.Left != nil {
			init, err = buildExprFromEither(n)
			if err != nil {
				return nil, err
			}
		}
		var declared *string
		if n.Type != "" {
			declared = &n.Type
		}
		return &external.VarDeclStmt{Name: n.Name, DeclaredType: declared, Init: init}, nil

	case "assign":
		v, err := buildExprFromEither(n)
		if err != nil {
			return nil, err
		}
		return &external.AssignStmt{Name: n.Name, Value: v}, nil

	case "if":
		ifs := &external.IfStmt{}
		for _, br := range n.Branches {
			cond, err := buildExpr(br.Cond)
			if err != nil {
				return nil, err
			}
			body, err := buildBlock(nodeYAML{Stmts: br.Body})
			if err != nil {
				return nil, err
			}
			ifs.Branches = append(ifs.Branches, external.IfBranch{Cond: cond, Body: body})
		}
		if n.Else != nil {
			elseBlock, err := buildBlock(*n.Else)
			if err != nil {
				return nil, err
			}
			ifs.Else = elseBlock
		}
		return ifs, nil

	case "return":
		if n.Value == nil && n.Left == nil {
			return &external.ReturnStmt{}, nil
		}
		v, err := buildExprFromEither(n)
		if err != nil {
			return nil, err
		}
		return &external.ReturnStmt{Value: v}, nil

	case "assert":
		v, err := buildExpr(*n.Left)
		if err != nil {
			return nil, err
		}
		return &external.AssertStmt{Test: v}, nil

	case "block":
		return buildBlock(n)

	default:
		return nil, fmt.Errorf("unrecognized statement kind %q", n.Kind)
	}
}

func buildExprFromEither(n nodeYAML) (external.Expr, error) {
	if n.Left != nil {
		return buildExpr(*n.Left)
	}
	return buildExprFromScalar(n)
}

func buildExprFromScalar(n nodeYAML) (external.Expr, error) {
	if n.Value != nil {
		return litFromYAMLNode(n.Value)
	}
	return nil, fmt.Errorf("missing value expression")
}

func buildExpr(n nodeYAML) (external.Expr, error) {
	switch n.Kind {
	case "lit":
		return litFromYAMLNode(n.Value)
	case "var":
		return &external.VarExpr{Name: n.Name}, nil
	case "binop":
		l, err := buildExpr(*n.Left)
		if err != nil {
			return nil, err
		}
		r, err := buildExpr(*n.Right)
		if err != nil {
			return nil, err
		}
		return &external.BinOpExpr{Op: n.Op, Left: l, Right: r}, nil
	case "select":
		c, err := buildExpr(*n.Cond)
		if err != nil {
			return nil, err
		}
		t, err := buildExpr(*n.Then)
		if err != nil {
			return nil, err
		}
		e, err := buildExpr(*n.Else)
		if err != nil {
			return nil, err
		}
		return &external.SelectExpr{Cond: c, Then: t, Else: e}, nil
	case "call":
		args := make([]external.Arg, 0, len(n.Args))
		for _, a := range n.Args {
			av, err := buildExpr(a)
			if err != nil {
				return nil, err
			}
			args = append(args, external.Arg{Value: av})
		}
		return &external.CallExpr{Kind: external.CallNamespaceFunction, Namespace: n.Name, Name: n.Field, Args: args}, nil
	case "access":
		root, err := buildExpr(*n.Root)
		if err != nil {
			return nil, err
		}
		return &external.PostfixExpr{Root: root, Ops: []external.PostfixOp{{Kind: external.PostAccessName, Name: n.Field}}}, nil
	default:
		return nil, fmt.Errorf("unrecognized expression kind %q", n.Kind)
	}
}

func litFromYAMLNode(v *yaml.Node) (external.Expr, error) {
	if v == nil {
		return &external.LitExpr{Kind: external.LitNone}, nil
	}
	switch v.Tag {
	case "!!bool":
		var b bool
		if err := v.Decode(&b); err != nil {
			return nil, err
		}
		return &external.LitExpr{Kind: external.LitBool, Value: b}, nil
	case "!!int":
		var i int64
		if err := v.Decode(&i); err != nil {
			return nil, err
		}
		return &external.LitExpr{Kind: external.LitInt, Value: i}, nil
	case "!!str":
		var s string
		if err := v.Decode(&s); err != nil {
			return nil, err
		}
		return &external.LitExpr{Kind: external.LitString, Value: s}, nil
	case "!!null":
		return &external.LitExpr{Kind: external.LitNone}, nil
	default:
		return nil, fmt.Errorf("unsupported literal tag %q", v.Tag)
	}
}
