package runq

import (
	"errors"

	"krunq/internal/target"
)

// onlineOnlyTarget serves the CPU enumerator tests, which never touch
// memory.
type onlineOnlyTarget struct {
	online []int
}

func (f *onlineOnlyTarget) OnlineCPUs() ([]int, error) {
	return append([]int(nil), f.online...), nil
}

func (f *onlineOnlyTarget) Symbol(string) (target.Object, error) {
	return nil, errors.New("not backed by memory")
}

func (f *onlineOnlyTarget) PerCPU(string, int) (target.Object, error) {
	return nil, errors.New("not backed by memory")
}
