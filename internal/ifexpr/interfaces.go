package ifexpr

// VariableStore is the read-only key->string lookup plus environment
// lookup and regex-capture writers the evaluator depends on. Owned and
// implemented externally; this package only consumes it.
type VariableStore interface {
	Get(name string) (string, bool)
	IsDefined(name string) bool
	GetEnv(name string) (string, bool)
	ClearMatches()
	StoreMatches(whole string, groups []string)
}

// PolicyStatus mirrors CMake's externally-sourced compatibility-policy
// enum (OLD, NEW, WARN, REQUIRED_IF_USED, REQUIRED_ALWAYS).
type PolicyStatus int

const (
	PolicyOld PolicyStatus = iota
	PolicyNew
	PolicyWarn
	PolicyRequiredIfUsed
	PolicyRequiredAlways
)

func (s PolicyStatus) String() string {
	switch s {
	case PolicyOld:
		return "OLD"
	case PolicyNew:
		return "NEW"
	case PolicyWarn:
		return "WARN"
	case PolicyRequiredIfUsed:
		return "REQUIRED_IF_USED"
	case PolicyRequiredAlways:
		return "REQUIRED_ALWAYS"
	default:
		return "UNKNOWN"
	}
}

// PolicyStore reports compatibility status for named policies and
// memoizes the per-source-location "already warned" flag.
type PolicyStore interface {
	Status(policyID string) PolicyStatus
	HasWarnedHere(location string) bool
	MarkWarnedHere(location string)
	WarningText(policyID string) string
	PolicyExists(name string) bool
}

// FilesystemProbe is the blocking filesystem collaborator behind
// EXISTS, IS_DIRECTORY, IS_SYMLINK, IS_ABSOLUTE, IS_NEWER_THAN.
type FilesystemProbe interface {
	FileExists(path string) bool
	IsDirectory(path string) bool
	IsSymlink(path string) bool
	IsAbsolute(path string) bool
	// MTimeCompare reports ok=false when either file's modification
	// time could not be determined; inability to determine is itself
	// treated as "newer" by the caller.
	MTimeCompare(a, b string) (ok bool, aNewerOrEqual bool)
}

// Registries is the external command/target existence lookup behind
// COMMAND(...) and TARGET(...).
type Registries interface {
	CommandExists(name string) bool
	TargetExists(name string) bool
}
