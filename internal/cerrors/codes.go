// Package cerrors provides the checker's structured error codes and report
// channel. Error kinds mirror spec.md §7; codes follow the teacher's
// per-phase CODE### taxonomy (internal/errors/codes.go), using the CHK
// prefix since every error here originates in the checker phase.
package cerrors

// Error code constants, one per observable error kind from spec.md §7.
const (
	// CHK001 indicates a value's type is not a subtype of an expected type.
	CHK001TypeMismatch = "CHK001"

	// CHK002 indicates a referenced name has no binding in scope.
	CHK002UnknownName = "CHK002"

	// CHK003 indicates a name is bound more than once where uniqueness is required.
	CHK003DuplicateName = "CHK003"

	// CHK004 indicates a required slot (field, parameter) was left unfilled.
	CHK004MissingRequired = "CHK004"

	// CHK005 indicates a None-check can never take its None branch.
	CHK005RedundantNullCheck = "CHK005"

	// CHK006 indicates a boolean test can never take one of its branches.
	CHK006RedundantTruth = "CHK006"

	// CHK007 indicates a call target cannot be resolved to a single signature.
	CHK007AmbiguousCall = "CHK007"

	// CHK008 indicates a field/method name resolves to more than one unrelated declaration.
	CHK008AmbiguousField = "CHK008"

	// CHK009 indicates code that can never execute under any incoming flow.
	CHK009UnreachableCode = "CHK009"

	// CHK010 indicates a local declaration illegally shadows an existing binding.
	CHK010IllegalShadowing = "CHK010"

	// CHK011 indicates an assignment target is declared const.
	CHK011AssignToConst = "CHK011"

	// CHK012 indicates a variable is read before it is definitely assigned.
	CHK012UseBeforeDef = "CHK012"

	// CHK013 indicates a parameter list mixes optional/required/rest illegally.
	CHK013BadParameterOrder = "CHK013"

	// CHK014 indicates a record property shadows a universal method name.
	CHK014RecordMasksAnyMethod = "CHK014"

	// CHK015 indicates a typed-string target type does not provide Parsable.
	CHK015NotParsable = "CHK015"

	// CHK016 indicates an operator is applied to operand types it does not support.
	CHK016UnsupportedOp = "CHK016"
)

// CatastrophicThreshold is the error count at which the checker halts the
// entire compilation rather than continuing declaration by declaration.
const CatastrophicThreshold = 20

// ErrorInfo describes a code's phase/category for tooling and documentation,
// mirroring the teacher's ErrorRegistry in internal/errors/codes.go.
type ErrorInfo struct {
	Code        string
	Phase       string
	Category    string
	Description string
}

// Registry maps every CHK code to its descriptive info.
var Registry = map[string]ErrorInfo{
	CHK001TypeMismatch:         {CHK001TypeMismatch, "check", "subtyping", "Type mismatch"},
	CHK002UnknownName:          {CHK002UnknownName, "check", "scope", "Unknown name"},
	CHK003DuplicateName:        {CHK003DuplicateName, "check", "scope", "Duplicate name"},
	CHK004MissingRequired:      {CHK004MissingRequired, "check", "arguments", "Missing required slot"},
	CHK005RedundantNullCheck:   {CHK005RedundantNullCheck, "check", "flow", "Redundant null check"},
	CHK006RedundantTruth:       {CHK006RedundantTruth, "check", "flow", "Redundant truth check"},
	CHK007AmbiguousCall:        {CHK007AmbiguousCall, "check", "dispatch", "Ambiguous call"},
	CHK008AmbiguousField:       {CHK008AmbiguousField, "check", "dispatch", "Ambiguous field"},
	CHK009UnreachableCode:      {CHK009UnreachableCode, "check", "flow", "Unreachable code"},
	CHK010IllegalShadowing:     {CHK010IllegalShadowing, "check", "scope", "Illegal shadowing"},
	CHK011AssignToConst:        {CHK011AssignToConst, "check", "scope", "Assignment to const"},
	CHK012UseBeforeDef:         {CHK012UseBeforeDef, "check", "flow", "Use before definite assignment"},
	CHK013BadParameterOrder:    {CHK013BadParameterOrder, "check", "signature", "Bad parameter order"},
	CHK014RecordMasksAnyMethod: {CHK014RecordMasksAnyMethod, "check", "structural", "Record masks universal method"},
	CHK015NotParsable:          {CHK015NotParsable, "check", "typed-string", "Type is not Parsable"},
	CHK016UnsupportedOp:        {CHK016UnsupportedOp, "check", "operators", "Unsupported operator"},
}

// GetErrorInfo looks up a code's descriptive info.
func GetErrorInfo(code string) (ErrorInfo, bool) {
	info, ok := Registry[code]
	return info, ok
}
