package models

type Selection struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	ResourceID *int64  `json:"resourceId"`
	Reference  *string `json:"reference"`
}
