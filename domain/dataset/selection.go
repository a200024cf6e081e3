package dataset

import (
	"sort"
	"strings"
)

// Role is the functional role a column plays in an analysis
type Role string

const (
	RoleTarget  Role = "target"
	RoleFeature Role = "feature"
	RoleGroup   Role = "group"
	RoleTime    Role = "time"
	RoleCluster Role = "cluster"
)

// Selection holds the role-tagged column references of one analysis screen.
// Group doubles as the treatment indicator and Time as the period indicator
// for causal designs; for cross-tabulation Group is the row variable and
// Target the column variable.
type Selection struct {
	Target   string   `json:"target,omitempty"`
	Features []string `json:"features,omitempty"`
	Group    string   `json:"group,omitempty"`
	Time     string   `json:"time,omitempty"`
	Cluster  string   `json:"cluster,omitempty"`
}

// Assignment is one column bound to one role
type Assignment struct {
	Column string `json:"column"`
	Role   Role   `json:"role"`
}

// Conflict reports a column that fills more than one role
type Conflict struct {
	Column string `json:"column"`
	Roles  []Role `json:"roles"`
}

// Normalize trims names, drops empty features and removes duplicate features
// while keeping the first occurrence order.
func (s Selection) Normalize() Selection {
	out := Selection{
		Target:  strings.TrimSpace(s.Target),
		Group:   strings.TrimSpace(s.Group),
		Time:    strings.TrimSpace(s.Time),
		Cluster: strings.TrimSpace(s.Cluster),
	}
	seen := make(map[string]bool, len(s.Features))
	for _, f := range s.Features {
		f = strings.TrimSpace(f)
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		out.Features = append(out.Features, f)
	}
	return out
}

// Assignments lists every filled role in a fixed order
func (s Selection) Assignments() []Assignment {
	var out []Assignment
	if s.Target != "" {
		out = append(out, Assignment{Column: s.Target, Role: RoleTarget})
	}
	for _, f := range s.Features {
		out = append(out, Assignment{Column: f, Role: RoleFeature})
	}
	if s.Group != "" {
		out = append(out, Assignment{Column: s.Group, Role: RoleGroup})
	}
	if s.Time != "" {
		out = append(out, Assignment{Column: s.Time, Role: RoleTime})
	}
	if s.Cluster != "" {
		out = append(out, Assignment{Column: s.Cluster, Role: RoleCluster})
	}
	return out
}

// Columns returns the distinct referenced columns in assignment order
func (s Selection) Columns() []string {
	seen := make(map[string]bool)
	var out []string
	for _, a := range s.Assignments() {
		if !seen[a.Column] {
			seen[a.Column] = true
			out = append(out, a.Column)
		}
	}
	return out
}

// Conflicts returns the columns bound to two or more roles, sorted by name
func (s Selection) Conflicts() []Conflict {
	roles := make(map[string][]Role)
	for _, a := range s.Assignments() {
		roles[a.Column] = append(roles[a.Column], a.Role)
	}
	var out []Conflict
	for col, rs := range roles {
		if len(rs) > 1 {
			out = append(out, Conflict{Column: col, Roles: rs})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Column < out[j].Column })
	return out
}

// Equal compares two selections role by role
func (s Selection) Equal(o Selection) bool {
	if s.Target != o.Target || s.Group != o.Group || s.Time != o.Time || s.Cluster != o.Cluster {
		return false
	}
	if len(s.Features) != len(o.Features) {
		return false
	}
	for i := range s.Features {
		if s.Features[i] != o.Features[i] {
			return false
		}
	}
	return true
}

// IsEmpty reports whether no role is filled
func (s Selection) IsEmpty() bool {
	return len(s.Assignments()) == 0
}
