package domain

import (
	"strings"
	"unicode/utf8"

	"github.com/murkotick/contact-sync-service/internal/pkg/tracking"
)

// Field names reported to the change tracker.
const (
	FieldName  = "name"
	FieldEmail = "email"
	// FieldSelected is UI state and is never persisted.
	FieldSelected = "selected"
)

const maxNameLength = 255

// Contact is a person in the address book. Setters report real value changes
// to the embedded tracker so that a collection can follow its state.
type Contact struct {
	tracking.Tracked

	id       int64
	name     string
	email    string
	selected bool
}

// NewContact validates and builds a contact. The returned contact is detached:
// its state is set by the collection it joins.
func NewContact(id int64, name, email string) (*Contact, error) {
	if id <= 0 {
		return nil, ErrInvalidContactID
	}
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return nil, err
	}
	return &Contact{id: id, name: name, email: strings.TrimSpace(email)}, nil
}

// Getters
func (c *Contact) ID() int64      { return c.id }
func (c *Contact) Name() string   { return c.name }
func (c *Contact) Email() string  { return c.email }
func (c *Contact) Selected() bool { return c.selected }

// Rename changes the display name.
func (c *Contact) Rename(name string) error {
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return err
	}
	if name == c.name {
		return nil
	}
	c.name = name
	c.NotifyFieldChanged(FieldName)
	return nil
}

// SetEmail changes the email address. An empty address is allowed.
func (c *Contact) SetEmail(email string) {
	email = strings.TrimSpace(email)
	if email == c.email {
		return
	}
	c.email = email
	c.NotifyFieldChanged(FieldEmail)
}

// SetSelected toggles the selection flag.
func (c *Contact) SetSelected(selected bool) {
	if selected == c.selected {
		return
	}
	c.selected = selected
	c.NotifyFieldChanged(FieldSelected)
}

func validateName(name string) error {
	if name == "" {
		return ErrEmptyContactName
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return ErrContactNameTooLong
	}
	return nil
}
