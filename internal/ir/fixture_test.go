package ir_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sunholo/checkercore/internal/check"
	"github.com/sunholo/checkercore/internal/cerrors"
	"github.com/sunholo/checkercore/internal/ir"
)

func TestLoadFixtureFileChecksEveryDeclaration(t *testing.T) {
	asm, decls, err := ir.LoadFixtureFile("../../cmd/typecheck/testdata/basic.yaml")
	require.NoError(t, err)
	require.Len(t, decls, 2)

	errs := cerrors.NewChannel()
	for _, d := range decls {
		emit := ir.NewEmitter()
		c := check.New(asm, emit, ir.NewIRAssembly(), errs, nil)
		err := c.CheckFunctionDecl(d)
		require.NoError(t, err, "declaration %s.%s", d.Namespace, d.Name)
		require.Greater(t, emit.GetBody().OpcodeCount(), 0)
	}
	require.Equal(t, 0, errs.Count())
}
