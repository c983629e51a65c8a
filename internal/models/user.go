package models

// User is the decoded form of a user profile document.
type User struct {
	ID       string
	Name     string
	Email    string
	Username string
	// Groups lists ids of the groups the user belongs to.
	Groups []string
}
