package committer

// Plan is an ordered list of operations that must be applied atomically.
type Plan struct {
	ops []Operation
}

func NewPlan() *Plan {
	return &Plan{
		ops: make([]Operation, 0),
	}
}

func (p *Plan) Add(op Operation) {
	p.ops = append(p.ops, op)
}

func (p *Plan) IsEmpty() bool {
	return p == nil || len(p.ops) == 0
}

func (p *Plan) Len() int {
	if p == nil {
		return 0
	}
	return len(p.ops)
}

// Operations returns the planned operations in execution order.
func (p *Plan) Operations() []Operation {
	if p == nil {
		return nil
	}
	return p.ops
}

// Counts returns how many operations of each kind the plan holds.
func (p *Plan) Counts() (inserts, updates, deletes int) {
	for _, op := range p.Operations() {
		switch op.Kind {
		case OpInsert:
			inserts++
		case OpUpdate:
			updates++
		case OpDelete:
			deletes++
		}
	}
	return inserts, updates, deletes
}
