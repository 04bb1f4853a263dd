package check

import (
	"github.com/sunholo/checkercore/internal/cerrors"
	"github.com/sunholo/checkercore/internal/external"
	"github.com/sunholo/checkercore/internal/rtype"
	"github.com/sunholo/checkercore/internal/tenv"
)

// CheckFunctionDecl implements spec.md §4.7's namespace-function driver:
// build the initial environment from the signature's templates and
// parameters, set the lambda-keying prefix, and check the body.
func (c *Checker) CheckFunctionDecl(d *external.FunctionDecl) error {
	c.beginDecl(d.Key)
	env := c.envForSignature(tenv.New(), d.Sig)
	c.logDecl("function", d.Namespace+"."+d.Name)
	return c.checkBody(env, d.Sig, d.Body)
}

// CheckMethodDecl implements the instance-method driver: additionally
// binds `this` to the declared owner type before delegating to C6.
func (c *Checker) CheckMethodDecl(d *external.MethodDecl) error {
	c.beginDecl(d.Key)
	env := tenv.New()
	for name, t := range d.ReceiverBinds {
		env = env.WithTerm(name, t)
	}
	env = env.Define("this", tenv.VarInfo{
		DeclaredType: d.OwnerType, FlowType: d.OwnerType, MustDefined: true, Kind: tenv.AccessArg,
	})
	env = c.envForSignature(env, d.Sig)
	c.logDecl("method", d.Name)
	return c.checkBody(env, d.Sig, d.Body)
}

// CheckStaticDecl implements the static-function driver: no `this`
// binding, but the owner type's own template binds are still in scope.
func (c *Checker) CheckStaticDecl(d *external.StaticDecl) error {
	c.beginDecl(d.Key)
	env := tenv.New()
	if ent, ok := uniqueEntity(d.OwnerType); ok {
		for name, t := range ent.Binds {
			env = env.WithTerm(name, t)
		}
	}
	env = c.envForSignature(env, d.Sig)
	c.logDecl("static", d.Name)
	return c.checkBody(env, d.Sig, d.Body)
}

// CheckGlobalDecl implements the namespace-level mutable global driver: the
// initializer must conform to the declared type, and its register is
// registered with the IR assembly under the global's key.
func (c *Checker) CheckGlobalDecl(d *external.GlobalDecl) error {
	c.beginDecl(d.Key)
	c.logDecl("global", d.Namespace+"."+d.Name)
	reg, mf, err := c.CheckExpr(tenv.New(), d.Init, d.DeclaredType)
	if err != nil {
		return err
	}
	if err := mf.Validate(); err != nil {
		return c.fail(d.Init.Span(), cerrors.CHK006RedundantTruth, err.Error(), nil)
	}
	joined := tenv.Join(mf...)
	initType, _ := joined.Result()
	if !c.Asm.SubtypeOf(initType, d.DeclaredType) {
		return c.fail(d.Init.Span(), cerrors.CHK001TypeMismatch, "global "+d.Name+" initializer does not conform to its declared type", nil)
	}
	c.Emit.RegisterVar(d.Name, reg, d.DeclaredType)
	c.IR.RegisterTypeInstantiation(d.Key, d.DeclaredType)
	return nil
}

// CheckConstDecl implements the constant driver: identical to a global
// except the binding is immutable, which the IR assembly records the same
// way a global does — constness is a language-level property enforced by
// checkAssign rejecting writes, not a distinct IR registration.
func (c *Checker) CheckConstDecl(d *external.ConstDecl) error {
	c.beginDecl(d.Key)
	c.logDecl("const", d.Namespace+"."+d.Name)
	reg, mf, err := c.CheckExpr(tenv.New(), d.Init, d.DeclaredType)
	if err != nil {
		return err
	}
	if err := mf.Validate(); err != nil {
		return c.fail(d.Init.Span(), cerrors.CHK006RedundantTruth, err.Error(), nil)
	}
	joined := tenv.Join(mf...)
	initType, _ := joined.Result()
	if !c.Asm.SubtypeOf(initType, d.DeclaredType) {
		return c.fail(d.Init.Span(), cerrors.CHK001TypeMismatch, "const "+d.Name+" initializer does not conform to its declared type", nil)
	}
	c.Emit.RegisterVar(d.Name, reg, d.DeclaredType)
	c.IR.RegisterTypeInstantiation(d.Key, d.DeclaredType)
	return nil
}

// CheckInvariantDecl implements spec.md §4.7's invariant driver: `this` is
// bound as for a method, and a post-condition additionally binds
// `_return_` to the mutating method's own result type recorded on OwnerType
// lookup — CORE has no direct access to the method it guards, so a post
// invariant's `_return_` is bound to Any when the caller hasn't threaded a
// narrower type through (callers that have one pass it via WithTerm before
// invoking this driver is out of CORE's scope; this driver only guarantees
// the binding exists).
func (c *Checker) CheckInvariantDecl(d *external.InvariantDecl) error {
	c.beginDecl(d.Key)
	env := tenv.New().Define("this", tenv.VarInfo{
		DeclaredType: d.OwnerType, FlowType: d.OwnerType, MustDefined: true, Kind: tenv.AccessArg,
	})
	if !d.IsPre {
		env = env.Define("_return_", tenv.VarInfo{
			DeclaredType: c.Asm.AnyType(), FlowType: c.Asm.AnyType(), MustDefined: true, Kind: tenv.AccessArg,
		})
	}
	c.logDecl("invariant", d.Key)

	reg, mf, err := c.CheckExpr(env, d.Test, c.Asm.BoolType())
	if err != nil {
		return err
	}
	if err := mf.Validate(); err != nil {
		return c.fail(d.Test.Span(), cerrors.CHK006RedundantTruth, err.Error(), nil)
	}
	joined := tenv.Join(mf...)
	testType, _ := joined.Result()
	if !c.Asm.SubtypeOf(testType, c.Asm.BoolType()) {
		return c.fail(d.Test.Span(), cerrors.CHK001TypeMismatch, "invariant test must be Bool", nil)
	}
	c.Emit.EmitAssert(reg)
	return nil
}

// CheckOOTypeDecl implements the entity/concept per-type driver: each
// field's default-value expression must conform to the field's own
// declared type.
func (c *Checker) CheckOOTypeDecl(d *external.OOTypeDecl) error {
	c.beginDecl(d.Key)
	c.logDecl("type", d.Key)
	for _, fd := range d.FieldDefaults {
		if fd.Init == nil {
			continue
		}
		reg, mf, err := c.CheckExpr(tenv.New(), fd.Init, fd.DeclaredType)
		if err != nil {
			return err
		}
		if err := mf.Validate(); err != nil {
			return c.fail(fd.Init.Span(), cerrors.CHK006RedundantTruth, err.Error(), nil)
		}
		joined := tenv.Join(mf...)
		defType, _ := joined.Result()
		if !c.Asm.SubtypeOf(defType, fd.DeclaredType) {
			return c.fail(fd.Init.Span(), cerrors.CHK001TypeMismatch, "default value for field "+fd.Name+" does not conform to its declared type", nil)
		}
		c.Emit.RegisterVar(fd.Name, reg, fd.DeclaredType)
	}
	return nil
}

// envForSignature binds a signature's template parameters (as term binds,
// approximated by their declared bound) and its ordinary/rest parameters
// (as AccessArg locals) into env. An optional parameter with no declared
// default is seen inside the body as Type|None, matching what C2 actually
// fills it with when the caller omits it.
func (c *Checker) envForSignature(env *tenv.TypeEnvironment, sig external.Signature) *tenv.TypeEnvironment {
	for _, t := range sig.Templates {
		bound := t.Bound
		if bound == nil {
			bound = c.Asm.AnyType()
		}
		env = env.WithTerm(t.Name, bound)
	}
	for _, p := range sig.Params {
		flowType := p.Type
		if p.Optional && p.Default == nil {
			flowType = rtype.Union(p.Type, c.Asm.GetSpecialNoneType())
		}
		env = env.Define(p.Name, tenv.VarInfo{
			DeclaredType: p.Type, FlowType: flowType, MustDefined: true, Kind: tenv.AccessArg,
		})
	}
	if sig.Rest != nil {
		env = env.Define(sig.Rest.Name, tenv.VarInfo{
			DeclaredType: sig.Rest.Type, FlowType: sig.Rest.Type, MustDefined: true, Kind: tenv.AccessArg,
		})
	}
	return env
}

// beginDecl resets the per-declaration error counter and sets the lambda-
// keying prefix, run at the start of every C7 driver entry point.
func (c *Checker) beginDecl(key string) {
	c.declErrors = 0
	c.enclosingKey = key
}

func (c *Checker) logDecl(kind, name string) {
	c.Log.WithField("kind", kind).WithField("name", name).Debug("checking declaration")
}
