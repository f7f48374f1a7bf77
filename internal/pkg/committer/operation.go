package committer

import "fmt"

// OpKind tags an Operation.
type OpKind int

const (
	OpInsert OpKind = iota
	OpUpdate
	OpDelete
)

func (k OpKind) String() string {
	switch k {
	case OpInsert:
		return "insert"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	}
	return fmt.Sprintf("OpKind(%d)", int(k))
}

// Param is one column/value pair of an operation.
type Param struct {
	Column string
	Value  any
}

// Operation is a single persistence intent.
//
//   - Insert: Set holds the columns to write.
//   - Update: Set holds the SET clause, Keys the WHERE clause.
//   - Delete: Keys holds the WHERE clause.
type Operation struct {
	Kind   OpKind
	Table  string
	Set    []Param
	Keys   []Param
	Record any
}

// Insert builds an insert operation.
func Insert(table string, record any, set []Param) Operation {
	return Operation{Kind: OpInsert, Table: table, Set: set, Record: record}
}

// Update builds an update operation.
func Update(table string, record any, set, keys []Param) Operation {
	return Operation{Kind: OpUpdate, Table: table, Set: set, Keys: keys, Record: record}
}

// Delete builds a delete operation.
func Delete(table string, record any, keys []Param) Operation {
	return Operation{Kind: OpDelete, Table: table, Keys: keys, Record: record}
}

// Columns returns the names of ps in order.
func Columns(ps []Param) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Column
	}
	return out
}

// Values returns the values of ps in order.
func Values(ps []Param) []any {
	out := make([]any, len(ps))
	for i, p := range ps {
		out[i] = p.Value
	}
	return out
}

func (op Operation) String() string {
	switch op.Kind {
	case OpInsert:
		return fmt.Sprintf("insert %s %v", op.Table, Columns(op.Set))
	case OpUpdate:
		return fmt.Sprintf("update %s set %v where %v", op.Table, Columns(op.Set), Columns(op.Keys))
	case OpDelete:
		return fmt.Sprintf("delete %s where %v", op.Table, Columns(op.Keys))
	}
	return op.Kind.String()
}
