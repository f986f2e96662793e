package config

import (
	"github.com/arthur-debert/rrr/pkg/errors"
	"github.com/arthur-debert/rrr/pkg/rules"
)

// Ruleset is the compiled result of a full configuration load: one
// immutable rule set per profile. Inputs are matched within exactly one
// profile at a time.
type Ruleset struct {
	profiles map[string]*rules.Set
}

// Profile returns the compiled rule set for the named profile
func (r *Ruleset) Profile(name string) (*rules.Set, error) {
	set, ok := r.profiles[name]
	if !ok {
		return nil, errors.Newf(errors.ErrProfileNotFound, "profile '%s' does not exist", name)
	}
	return set, nil
}

// Profiles returns the names of every loaded profile
func (r *Ruleset) Profiles() []string {
	names := make([]string, 0, len(r.profiles))
	for name := range r.profiles {
		names = append(names, name)
	}
	return names
}
