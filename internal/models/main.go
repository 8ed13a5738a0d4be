// Package models defines the core data structures for users and to-do items,
// and the JSON shapes exchanged with clients.
package models

// User represents an application user with credentials.
type User struct {
	// ID is the unique identifier for the user.
	ID string
	// Username is the login name chosen by the user.
	Username string
	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash string
}

// Todo is a single to-do item owned by exactly one user.
type Todo struct {
	// ID is the unique identifier for the item. Always assigned by the server.
	ID string `json:"id"`
	// Title is the free-form text of the item.
	Title string `json:"title"`
	// Done reports whether the item is completed.
	Done bool `json:"done"`
	// UserID identifies the owner. Never taken from the client.
	UserID string `json:"userId"`
}

// UserDTO is the user representation sent to and received from clients.
// Password is only ever read from requests; Token is only set on signin.
type UserDTO struct {
	ID       string `json:"id,omitempty"`
	Username string `json:"username"`
	Password string `json:"password,omitempty"`
	Token    string `json:"token,omitempty"`
}

// TodoDTO is the request payload for to-do operations.
type TodoDTO struct {
	ID    string `json:"id,omitempty"`
	Title string `json:"title"`
	Done  bool   `json:"done"`
}

// ResponseDTO is the success envelope. Data is an empty list rather than null
// when there is nothing to return.
type ResponseDTO[T any] struct {
	Data []T `json:"data"`
}

// ErrorDTO is the failure envelope.
type ErrorDTO struct {
	Error string `json:"error"`
}
