package domain

// User is the identity handed over by the upstream session layer.
type User struct {
	ID    string
	Name  string
	Admin bool
}
