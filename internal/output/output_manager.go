package output

import "github.com/guangyu-he/ls-net/internal/shared"

// Output interface for different output types
type Output interface {
	Render(s *shared.Snapshot) error
	Close() error
}

// OutputManager manages multiple outputs
type OutputManager struct {
	outputs []Output
}

func (om *OutputManager) Register(o Output) {
	om.outputs = append(om.outputs, o)
}

// Render passes the snapshot to every registered output. The first render
// error stops the fan-out.
func (om *OutputManager) Render(s *shared.Snapshot) error {
	for _, o := range om.outputs {
		if err := o.Render(s); err != nil {
			return err
		}
	}
	return nil
}

func (om *OutputManager) Close() {
	for _, o := range om.outputs {
		o.Close()
	}
}
