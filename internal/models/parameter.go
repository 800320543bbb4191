package models

// Parameter is a tunable name/value setting read from the parameters table.
type Parameter struct {
	ID       int64   `db:"id" json:"id"`
	Name     string  `db:"name" json:"ident"`
	Value    string  `db:"value" json:"valor"`
	FormType *string `db:"type_form" json:"type_form,omitempty"`
	Group    *string `db:"group" json:"group,omitempty"`
}
