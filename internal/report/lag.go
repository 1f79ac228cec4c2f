package report

import (
	"fmt"
	"io"

	"krunq/internal/runq"
)

// WriteLags emits the cross-CPU lag listing. Entries arrive pre-sorted from
// the metrics engine and are only computed once every requested CPU's clock
// has been read, so this writer never produces partial output.
func WriteLags(w io.Writer, lags []runq.LagEntry) error {
	for _, e := range lags {
		if _, err := fmt.Fprintf(w, "CPU %d: %.2f secs\n", e.CPU, e.Seconds()); err != nil {
			return err
		}
	}
	return nil
}
