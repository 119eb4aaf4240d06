// Package groups provides the user/group directory consumed during
// group-share fan-out. The directory itself is external to the core;
// the static implementation here is backed by the config file.
package groups

import "context"

// Group is a named set of user ids.
type Group struct {
	Name    string
	Members []string
}

// Directory resolves group names to memberships. GetGroup returns
// (nil, nil) for an unknown group.
type Directory interface {
	GetGroup(ctx context.Context, name string) (*Group, error)
}

// StaticDirectory is a Directory backed by a fixed name -> members map.
type StaticDirectory map[string][]string

func (d StaticDirectory) GetGroup(_ context.Context, name string) (*Group, error) {
	members, ok := d[name]
	if !ok {
		return nil, nil
	}
	return &Group{Name: name, Members: append([]string(nil), members...)}, nil
}
