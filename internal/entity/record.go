package entity

// Record is one row as seen by the record store: column name to value.
type Record = map[string]any

// CondOp is a comparison supported by SelectQuery conditions.
type CondOp string

const (
	CondEQ  CondOp = "="
	CondLTE CondOp = "<="
	CondGTE CondOp = ">="
)

// Cond restricts a select to rows where Column Op Value holds.
type Cond struct {
	Column string
	Op     CondOp
	Value  any
}

// SelectQuery describes a read against one table. Empty Columns selects all
// columns; conditions are AND-ed; OrderBy columns sort ascending.
type SelectQuery struct {
	Columns []string
	Where   []Cond
	OrderBy []string
	Limit   int
}
