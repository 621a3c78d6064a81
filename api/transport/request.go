package transport

import "encoding/json"

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ProfileUpdateRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

type TaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     string `json:"due_date"`
	AssignedTo  string `json:"assigned_to"`
}

// TaskUpdateRequest uses pointers so absent fields stay untouched. Version is
// the last-seen task version and is required.
type TaskUpdateRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	DueDate     *string `json:"due_date"`
	AssignedTo  *string `json:"assigned_to"`
	Status      *string `json:"status"`
	Version     *int    `json:"version"`
}

type CommentRequest struct {
	Text string `json:"text"`
}

// BulkCreateRequest defers decoding of the tasks field so a non-array payload
// can be rejected explicitly.
type BulkCreateRequest struct {
	Tasks json.RawMessage `json:"tasks"`
}

type BulkDeleteRequest struct {
	IDs json.RawMessage `json:"ids"`
}
