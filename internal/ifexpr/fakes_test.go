package ifexpr

// fakeVars is a minimal in-memory VariableStore for tests.
type fakeVars struct {
	values map[string]string
	env    map[string]string
	match0 string
	groups []string
}

func newFakeVars(values map[string]string) *fakeVars {
	return &fakeVars{values: values, env: map[string]string{}}
}

func (f *fakeVars) Get(name string) (string, bool) {
	v, ok := f.values[name]
	return v, ok
}

func (f *fakeVars) IsDefined(name string) bool {
	_, ok := f.values[name]
	return ok
}

func (f *fakeVars) GetEnv(name string) (string, bool) {
	v, ok := f.env[name]
	return v, ok
}

func (f *fakeVars) ClearMatches() {
	f.match0 = ""
	f.groups = nil
}

func (f *fakeVars) StoreMatches(whole string, groups []string) {
	f.match0 = whole
	f.groups = groups
}

// fakePolicy is a minimal PolicyStore for tests.
type fakePolicy struct {
	autoDeref    PolicyStatus
	quotedDemote PolicyStatus
	warnedAt     map[string]bool
	knownPolicy  map[string]bool
}

func newFakePolicy(autoDeref, quotedDemote PolicyStatus) *fakePolicy {
	return &fakePolicy{
		autoDeref:    autoDeref,
		quotedDemote: quotedDemote,
		warnedAt:     map[string]bool{},
		knownPolicy:  map[string]bool{"CMP0054": true},
	}
}

func (p *fakePolicy) Status(policyID string) PolicyStatus {
	switch policyID {
	case "policy-auto-deref":
		return p.autoDeref
	case "policy-quoted-demote":
		return p.quotedDemote
	default:
		return PolicyNew
	}
}

func (p *fakePolicy) HasWarnedHere(location string) bool { return p.warnedAt[location] }
func (p *fakePolicy) MarkWarnedHere(location string)      { p.warnedAt[location] = true }
func (p *fakePolicy) WarningText(policyID string) string  { return "policy warning: " + policyID }
func (p *fakePolicy) PolicyExists(name string) bool       { return p.knownPolicy[name] }

// fakeFS is a minimal FilesystemProbe for tests.
type fakeFS struct {
	files       map[string]bool
	dirs        map[string]bool
	symlinks    map[string]bool
	newer       map[[2]string]bool
	mtimeKnown  map[[2]string]bool
}

func newFakeFS() *fakeFS {
	return &fakeFS{
		files: map[string]bool{}, dirs: map[string]bool{}, symlinks: map[string]bool{},
		newer: map[[2]string]bool{}, mtimeKnown: map[[2]string]bool{},
	}
}

func (f *fakeFS) FileExists(path string) bool    { return f.files[path] || f.dirs[path] }
func (f *fakeFS) IsDirectory(path string) bool    { return f.dirs[path] }
func (f *fakeFS) IsSymlink(path string) bool      { return f.symlinks[path] }
func (f *fakeFS) IsAbsolute(path string) bool     { return len(path) > 0 && path[0] == '/' }
func (f *fakeFS) MTimeCompare(a, b string) (bool, bool) {
	key := [2]string{a, b}
	if !f.mtimeKnown[key] {
		return false, false
	}
	return true, f.newer[key]
}

// fakeRegistries is a minimal Registries for tests.
type fakeRegistries struct {
	commands map[string]bool
	targets  map[string]bool
}

func newFakeRegistries() *fakeRegistries {
	return &fakeRegistries{commands: map[string]bool{}, targets: map[string]bool{}}
}

func (r *fakeRegistries) CommandExists(name string) bool { return r.commands[name] }
func (r *fakeRegistries) TargetExists(name string) bool   { return r.targets[name] }

func args(values ...string) []Arg {
	out := make([]Arg, len(values))
	for i, v := range values {
		out[i] = Arg{Value: v}
	}
	return out
}

func quotedArg(v string) Arg {
	return Arg{Value: v, WasQuoted: true}
}
