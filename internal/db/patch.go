package db

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/lib/pq"
)

var ErrEmptyPatch = errors.New("no fields to update")

// BuildUpdate renders "UPDATE <table> SET ... WHERE id = $n" for the given
// patch. Columns outside allowed are rejected. Columns are emitted in sorted
// order so the same patch always produces the same statement.
func BuildUpdate(table string, allowed map[string]bool, patch map[string]any, key any) (string, []any, error) {
	if len(patch) == 0 {
		return "", nil, ErrEmptyPatch
	}

	columns := make([]string, 0, len(patch))
	for column := range patch {
		if !allowed[column] {
			return "", nil, fmt.Errorf("invalid field name: %s", column)
		}
		columns = append(columns, column)
	}
	sort.Strings(columns)

	setClauses := make([]string, 0, len(columns))
	args := make([]any, 0, len(columns)+1)
	for i, column := range columns {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", pq.QuoteIdentifier(column), i+1))
		args = append(args, patch[column])
	}
	args = append(args, key)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d",
		pq.QuoteIdentifier(table), strings.Join(setClauses, ", "), len(args))
	return query, args, nil
}
