package service

// CreateRequest holds parameters for creating a record.
type CreateRequest struct {
	Name        string
	Description string
	RemoteAddr  string // client address recorded in the audit log
}
