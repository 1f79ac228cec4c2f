package runq

import (
	"errors"
	"fmt"

	"k8s.io/utils/cpuset"

	"krunq/internal/target"
)

// ErrInvalidSpec marks a malformed CPU filter or one naming CPUs outside
// the online set. Commands report it and abort without printing anything.
var ErrInvalidSpec = errors.New("invalid cpu spec")

// SelectCPUs resolves the CPU filter against the target's online set. An
// empty spec selects every online CPU. A non-empty spec ("0,2-4") selects
// the intersection, preserving the ascending order of the online
// enumeration rather than the order the filter names CPUs in. Any requested
// CPU that is not online fails the whole selection.
func SelectCPUs(t target.Target, spec string) ([]int, error) {
	online, err := t.OnlineCPUs()
	if err != nil {
		return nil, err
	}
	if spec == "" {
		return online, nil
	}

	set, err := cpuset.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidSpec, spec, err)
	}

	isOnline := make(map[int]bool, len(online))
	for _, cpu := range online {
		isOnline[cpu] = true
	}
	for _, cpu := range set.List() {
		if !isOnline[cpu] {
			return nil, fmt.Errorf("%w: cpu %d is not online", ErrInvalidSpec, cpu)
		}
	}

	selected := make([]int, 0, set.Size())
	for _, cpu := range online {
		if set.Contains(cpu) {
			selected = append(selected, cpu)
		}
	}
	return selected, nil
}
