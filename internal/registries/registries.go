// Package registries implements ifexpr.Registries over static,
// explicitly populated command and target name sets.
package registries

// Registries tracks the command and target names known to the
// running configuration.
type Registries struct {
	commands map[string]bool
	targets  map[string]bool
}

// New returns an empty Registries.
func New() *Registries {
	return &Registries{commands: map[string]bool{}, targets: map[string]bool{}}
}

// RegisterCommand marks name as a known command, as the surface
// language's function()/macro() definitions would.
func (r *Registries) RegisterCommand(name string) { r.commands[name] = true }

// RegisterTarget marks name as a known build target, as add_library()
// and add_executable() would.
func (r *Registries) RegisterTarget(name string) { r.targets[name] = true }

// CommandExists implements ifexpr.Registries.
func (r *Registries) CommandExists(name string) bool { return r.commands[name] }

// TargetExists implements ifexpr.Registries.
func (r *Registries) TargetExists(name string) bool { return r.targets[name] }
