package output

import (
	"encoding/json"
	"io"
	"os"
	"sync"

	"github.com/guangyu-he/ls-net/internal/shared"
)

// JSONOutput writes the snapshot as a single JSON document. Unlike the text
// report it is never filtered: the document always carries every section the
// inspection collected.
type JSONOutput struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewJSONOutput returns a JSON output writing to w, or to stdout when w is
// nil. The writer stays owned by the caller.
func NewJSONOutput(w io.Writer) *JSONOutput {
	if w == nil {
		w = os.Stdout
	}
	return &JSONOutput{enc: json.NewEncoder(w)}
}

func (j *JSONOutput) Render(s *shared.Snapshot) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	return j.enc.Encode(s)
}

func (j *JSONOutput) Close() error {
	return nil
}
