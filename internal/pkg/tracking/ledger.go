package tracking

// ledger is an insertion-ordered set of records.
type ledger[T comparable] struct {
	items []T
	index map[T]struct{}
}

func (l *ledger[T]) add(item T) bool {
	if l.index == nil {
		l.index = make(map[T]struct{})
	}
	if _, ok := l.index[item]; ok {
		return false
	}
	l.index[item] = struct{}{}
	l.items = append(l.items, item)
	return true
}

func (l *ledger[T]) remove(item T) bool {
	if _, ok := l.index[item]; !ok {
		return false
	}
	delete(l.index, item)
	for i, v := range l.items {
		if v == item {
			l.items = append(l.items[:i], l.items[i+1:]...)
			break
		}
	}
	return true
}

func (l *ledger[T]) len() int {
	return len(l.items)
}

func (l *ledger[T]) list() []T {
	out := make([]T, len(l.items))
	copy(out, l.items)
	return out
}

func (l *ledger[T]) clear() {
	l.items = nil
	l.index = nil
}
