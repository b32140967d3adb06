package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/mesh-intelligence/wawi/pkg/types"
)

func printJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	fmt.Fprintln(w, string(out))
	return nil
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func writeProducts(w io.Writer, products []*types.Product) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE\tQUANTITY")
	for _, p := range products {
		fmt.Fprintf(tw, "%d\t%s\t%.2f\t%d\n", p.ID, p.Name, p.Price, p.Quantity)
	}
	return tw.Flush()
}

func writeCustomers(w io.Writer, customers []*types.Customer) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tADDRESS\tEMAIL\tPHONE")
	for _, c := range customers {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", c.ID, c.Name, c.Address, c.Email, c.Phone)
	}
	return tw.Flush()
}

// parseIDs converts positional arguments to entity ids.
func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil || id <= 0 {
			return nil, usageError{fmt.Errorf("invalid id %q", arg)}
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// removal is the JSON shape of a batch remove result.
type removal struct {
	Removed []int64          `json:"removed"`
	Failed  map[int64]string `json:"failed,omitempty"`
}

// reportRemoval prints what a batch remove did and passes err through so
// the exit code reflects failures.
func (a *app) reportRemoval(w io.Writer, kind string, removed []int64, err error) error {
	res := removal{Removed: removed}
	if res.Removed == nil {
		res.Removed = []int64{}
	}
	var batch *types.BatchError
	if errors.As(err, &batch) {
		res.Failed = make(map[int64]string, len(batch.Failed))
		for id, cause := range batch.Failed {
			res.Failed[id] = cause.Error()
		}
	}

	if a.jsonMode {
		if perr := printJSON(w, res); perr != nil {
			return perr
		}
		return err
	}
	fmt.Fprintf(w, "Removed %d %s\n", len(removed), kind)
	if batch != nil {
		for _, id := range batch.IDs() {
			fmt.Fprintf(w, "  %d: %s\n", id, batch.Failed[id])
		}
	}
	return err
}
