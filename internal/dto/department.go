package dto

// CreateDepartmentRequest registers a department.
type CreateDepartmentRequest struct {
	Name           string `json:"name" validate:"required,max=150"`
	Code           string `json:"code" validate:"required,max=20"`
	AutoRegenerate bool   `json:"auto_regenerate"`
}

// UpdateDepartmentRequest replaces the editable fields of a department.
type UpdateDepartmentRequest struct {
	Name           string `json:"name" validate:"required,max=150"`
	Code           string `json:"code" validate:"required,max=20"`
	AutoRegenerate *bool  `json:"auto_regenerate"`
}
