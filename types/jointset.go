package types

import (
	"sort"

	"skillcode-go/errcode"
)

// JointSet is the validated joint universe for one robot, built once from
// the robot config. Unknown joint names are rejected at construction, not
// at use. The order is deterministic (sorted by name).
type JointSet struct {
	names []string
	ids   map[string]int
}

// NewJointSet builds a set from a name → actuator-id map.
func NewJointSet(jointMap map[string]int) (*JointSet, error) {
	if len(jointMap) == 0 {
		return nil, errcode.New(errcode.InvalidConfig, "jointset.new", "empty joint map")
	}
	js := &JointSet{ids: make(map[string]int, len(jointMap))}
	seen := make(map[int]string, len(jointMap))
	for name, id := range jointMap {
		if name == "" {
			return nil, errcode.New(errcode.InvalidConfig, "jointset.new", "empty joint name")
		}
		if prev, dup := seen[id]; dup {
			return nil, errcode.New(errcode.InvalidConfig, "jointset.new",
				"actuator id shared by "+prev+" and "+name)
		}
		seen[id] = name
		js.ids[name] = id
		js.names = append(js.names, name)
	}
	sort.Strings(js.names)
	return js, nil
}

// Subset restricts the set to the named joints, rejecting unknown names.
func (js *JointSet) Subset(names []string) (*JointSet, error) {
	m := make(map[string]int, len(names))
	for _, n := range names {
		id, ok := js.ids[n]
		if !ok {
			return nil, errcode.New(errcode.UnknownJoint, "jointset.subset", n)
		}
		m[n] = id
	}
	return NewJointSet(m)
}

// Names returns the joints in deterministic order. Callers must not mutate.
func (js *JointSet) Names() []string { return js.names }

// Len returns the number of joints.
func (js *JointSet) Len() int { return len(js.names) }

// Contains reports whether the set knows the joint.
func (js *JointSet) Contains(name string) bool {
	_, ok := js.ids[name]
	return ok
}

// ID returns the actuator id for a joint name.
func (js *JointSet) ID(name string) (int, error) {
	id, ok := js.ids[name]
	if !ok {
		return 0, errcode.New(errcode.UnknownJoint, "jointset.id", name)
	}
	return id, nil
}
