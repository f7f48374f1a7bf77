package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/murkotick/contact-sync-service/internal/app/contact/domain"
	"github.com/murkotick/contact-sync-service/internal/pkg/tracking"
)

// listFlag collects repeated flag values.
type listFlag []string

func (l *listFlag) String() string { return strings.Join(*l, ",") }

func (l *listFlag) Set(v string) error {
	*l = append(*l, v)
	return nil
}

type edits struct {
	add     listFlag // id=name[,email]
	rename  listFlag // id=name
	remove  listFlag // id
	selects listFlag // id
}

// apply runs the edit script against coll: renames, then selections, then
// removals, then additions.
func (e *edits) apply(coll *tracking.Collection[*domain.Contact]) error {
	for _, v := range e.rename {
		id, name, err := splitPair(v)
		if err != nil {
			return fmt.Errorf("-rename %q: %w", v, err)
		}
		c, err := find(coll, id)
		if err != nil {
			return err
		}
		if err := c.Rename(name); err != nil {
			return fmt.Errorf("-rename %q: %w", v, err)
		}
	}
	for _, v := range e.selects {
		c, err := findString(coll, v)
		if err != nil {
			return err
		}
		c.SetSelected(!c.Selected())
	}
	for _, v := range e.remove {
		c, err := findString(coll, v)
		if err != nil {
			return err
		}
		coll.Remove(c)
	}
	added := make([]*domain.Contact, 0, len(e.add))
	for _, v := range e.add {
		id, rest, err := splitPair(v)
		if err != nil {
			return fmt.Errorf("-add %q: %w", v, err)
		}
		name, email, _ := strings.Cut(rest, ",")
		c, err := domain.NewContact(id, name, email)
		if err != nil {
			return fmt.Errorf("-add %q: %w", v, err)
		}
		added = append(added, c)
	}
	return coll.AddRange(added)
}

func splitPair(v string) (int64, string, error) {
	k, rest, ok := strings.Cut(v, "=")
	if !ok {
		return 0, "", fmt.Errorf("expected id=value")
	}
	id, err := strconv.ParseInt(strings.TrimSpace(k), 10, 64)
	if err != nil {
		return 0, "", err
	}
	return id, rest, nil
}

func findString(coll *tracking.Collection[*domain.Contact], v string) (*domain.Contact, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("contact id %q: %w", v, err)
	}
	return find(coll, id)
}

func find(coll *tracking.Collection[*domain.Contact], id int64) (*domain.Contact, error) {
	for _, c := range coll.Items() {
		if c.ID() == id {
			return c, nil
		}
	}
	return nil, fmt.Errorf("contact %d: %w", id, domain.ErrContactNotFound)
}
