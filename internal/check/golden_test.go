package check_test

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sunholo/checkercore/internal/cerrors"
	"github.com/sunholo/checkercore/internal/check"
	"github.com/sunholo/checkercore/internal/external"
	"github.com/sunholo/checkercore/internal/ir"
	"github.com/sunholo/checkercore/testutil"
)

type goldenReport struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// TestCheckerErrorsMatchGolden runs the checker against a fixed set of
// known-bad declarations and compares the resulting diagnostic codes and
// messages against a checked-in golden file (testdata/check/checker_errors.golden.json),
// catching accidental error-code or message-text drift across the whole
// C3-C7 pipeline. Compares only the golden file's "data" payload, not its
// build-machine Meta block, since that varies by Go version/OS/arch.
func TestCheckerErrorsMatchGolden(t *testing.T) {
	cases := []struct {
		name string
		decl func(asm *ir.Assembly) *external.FunctionDecl
	}{
		{"redundant_coalesce", func(asm *ir.Assembly) *external.FunctionDecl {
			intT := asm.IntType()
			return &external.FunctionDecl{
				Namespace: "t", Name: "f", Key: "fn:t.f",
				Sig: external.Signature{Params: []external.Param{{Name: "n", Type: intT}}, Result: intT},
				Body: external.Body2{Kind: external.BodyExpr, Expr: &external.CoalesceExpr{
					Left:  &external.VarExpr{Name: "n"},
					Right: &external.LitExpr{Kind: external.LitInt, Value: int64(0)},
				}},
			}
		}},
		{"string_arith", func(asm *ir.Assembly) *external.FunctionDecl {
			strT := asm.StringType()
			return &external.FunctionDecl{
				Namespace: "t", Name: "g", Key: "fn:t.g",
				Sig: external.Signature{Params: []external.Param{{Name: "a", Type: strT}, {Name: "b", Type: strT}}, Result: strT},
				Body: external.Body2{Kind: external.BodyExpr, Expr: &external.BinOpExpr{
					Op:    "+",
					Left:  &external.VarExpr{Name: "a"},
					Right: &external.VarExpr{Name: "b"},
				}},
			}
		}},
		{"ordinary_entity_equality", func(asm *ir.Assembly) *external.FunctionDecl {
			pointT := pointDecl(asm)
			boolT := asm.BoolType()
			return &external.FunctionDecl{
				Namespace: "t", Name: "h", Key: "fn:t.h",
				Sig: external.Signature{Params: []external.Param{{Name: "a", Type: pointT}, {Name: "b", Type: pointT}}, Result: boolT},
				Body: external.Body2{Kind: external.BodyExpr, Expr: &external.BinOpExpr{
					Op:    "==",
					Left:  &external.VarExpr{Name: "a"},
					Right: &external.VarExpr{Name: "b"},
				}},
			}
		}},
	}

	var got []goldenReport
	for _, tc := range cases {
		asm := ir.NewAssembly()
		emit := ir.NewEmitter()
		errs := cerrors.NewChannel()
		c := check.New(asm, emit, ir.NewIRAssembly(), errs, nil)
		_ = c.CheckFunctionDecl(tc.decl(asm))
		for _, r := range errs.Reports() {
			got = append(got, goldenReport{Code: r.Code, Message: r.Message})
		}
	}

	actualJSON, err := json.Marshal(got)
	require.NoError(t, err)
	var actual interface{}
	require.NoError(t, json.Unmarshal(actualJSON, &actual))

	expected := testutil.LoadGoldenFile(t, "check", "checker_errors")
	if !reflect.DeepEqual(expected, actual) {
		t.Errorf("checker diagnostics drifted from golden file:\n%s", testutil.DiffJSON(expected, actual))
	}
}
