package cliclient

// Record is a component or role as returned by the API.
type Record struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CreateRequest is the body of a create call.
type CreateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// MessageResponse is returned by ping, create and failures.
type MessageResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type recordResponse struct {
	Status string `json:"status"`
	Data   Record `json:"data"`
}

type listResponse struct {
	Status string              `json:"status"`
	Data   map[string][]Record `json:"data"`
}

// Info describes a running service.
type Info struct {
	ServerID  string `json:"server_id"`
	Service   string `json:"service"`
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	GoVersion string `json:"go_version"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}
