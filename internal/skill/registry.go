package skill

import (
	"fmt"
	"sort"
	"sync"

	"github.com/wsrun/wsrun/internal/graph"
)

// DuplicateSkillError reports a second registration under an existing name.
type DuplicateSkillError struct {
	Name string
}

func (e *DuplicateSkillError) Error() string {
	return fmt.Sprintf("skill already registered: %s", e.Name)
}

// UnknownSkillError reports a lookup of a name the registry never saw.
type UnknownSkillError struct {
	Name string
}

func (e *UnknownSkillError) Error() string {
	return fmt.Sprintf("unknown skill: %s", e.Name)
}

// Registry maps skill names to their definitions. Registration happens at
// startup; afterwards the registry is read-only and safe for concurrent use.
type Registry struct {
	skills map[string]*Skill
	mu     sync.RWMutex
}

// NewRegistry creates an empty skill registry.
func NewRegistry() *Registry {
	return &Registry{skills: make(map[string]*Skill)}
}

// Register validates and adds a skill definition.
func (r *Registry) Register(s *Skill) error {
	if s == nil {
		return fmt.Errorf("cannot register nil skill")
	}
	if err := s.compile(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.skills[s.Name]; exists {
		return &DuplicateSkillError{Name: s.Name}
	}
	r.skills[s.Name] = s
	return nil
}

// Resolve returns the skill registered under the given name.
func (r *Registry) Resolve(name string) (*Skill, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, exists := r.skills[name]
	if !exists {
		return nil, &UnknownSkillError{Name: name}
	}
	return s, nil
}

// Names returns all registered skill names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.skills))
	for name := range r.skills {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered skills.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.skills)
}

// AppliesTo reports whether a package declares the capability the skill
// requires. Packages failing this check are skipped, never attempted.
func (s *Skill) AppliesTo(p *graph.Package) bool {
	return p.HasCapability(s.RequiredCapability())
}
