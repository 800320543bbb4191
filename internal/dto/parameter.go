package dto

// ParameterItem represents a parameter exposed via API.
type ParameterItem struct {
	ID       int64  `json:"id"`
	Name     string `json:"ident"`
	Value    string `json:"valor"`
	FormType string `json:"type_form,omitempty"`
	Group    string `json:"group,omitempty"`
}
