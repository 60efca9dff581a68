package db

import (
	"fmt"
	"strings"

	"github.com/tgienger/tasknest/internal/models"
)

// assignments collects the "column = ?" pairs of the fields a patch sets
type assignments struct {
	cols []string
	args []any
}

func (a *assignments) add(col string, v any) {
	a.cols = append(a.cols, col+" = ?")
	a.args = append(a.args, v)
}

func (a *assignments) empty() bool {
	return len(a.cols) == 0
}

// statement renders an UPDATE of the row with the given id
func (a *assignments) statement(table string, id int64) (string, []any) {
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", table, strings.Join(a.cols, ", "))
	return query, append(a.args, id)
}

func set[T any](a *assignments, col string, v *T) {
	if v != nil {
		a.add(col, *v)
	}
}

func setNullable[T any](a *assignments, col string, v *models.Nullable[T]) {
	if v != nil {
		a.add(col, v.Arg())
	}
}
