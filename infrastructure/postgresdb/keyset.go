package postgresdb

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

// Set of directions for data ordering.
const (
	ASC  = "ASC"
	DESC = "DESC"
)

// Keyset describes one page of a scan over a unique, ordered key.
type Keyset[K any] struct {
	PKField   string
	Direction string
	// From is the first key of the page, inclusive. Nil starts at the top.
	From *K
	// Limit is the number of rows to fetch. Callers ask for one more than
	// the page size so they can tell whether another page follows.
	Limit int
}

// Apply appends the key bound, ordering and limit to buf. buf must already
// hold a WHERE clause; the bound is joined with AND.
func (k Keyset[K]) Apply(buf *strings.Builder, args pgx.NamedArgs) error {
	quoted, err := QuoteIdentifier(k.PKField)
	if err != nil {
		return fmt.Errorf("invalid pk field: %w", err)
	}

	dir := strings.ToUpper(k.Direction)
	if dir != ASC && dir != DESC {
		return fmt.Errorf("invalid direction: %q", k.Direction)
	}

	if k.From != nil {
		op := ">="
		if dir == DESC {
			op = "<="
		}
		fmt.Fprintf(buf, " AND %s %s @cursor_pk", quoted, op)
		args["cursor_pk"] = *k.From
	}

	fmt.Fprintf(buf, " ORDER BY %s %s", quoted, dir)

	if k.Limit > 0 {
		buf.WriteString(" LIMIT @limit")
		args["limit"] = k.Limit
	}

	return nil
}
