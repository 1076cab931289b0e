package pod

import "errors"

// ErrDuplicatePodName is returned when a create/adopt operation would add
// a Pod whose name already exists in the roster, violating spec §3's
// uniqueness invariant.
var ErrDuplicatePodName = errors.New("duplicate pod name")

// ErrStoreParseError is wrapped around a Pod store file that exists but
// fails to parse as JSON, per spec §7 rule 3: a corrupt store is reported,
// never silently discarded.
var ErrStoreParseError = errors.New("pod store parse error")

// FindByName returns the Pod named name, or nil if no such Pod exists.
func FindByName(pods []Pod, name string) *Pod {
	for i := range pods {
		if pods[i].Name == name {
			return &pods[i]
		}
	}
	return nil
}
