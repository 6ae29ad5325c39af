package error

import "net/http"

// CollaboratorError marks a failure talking to an external module (base de
// datos, backend, IA o respuestas). The dispatcher catches it and degrades to
// a best-effort reply instead of propagating.
type CollaboratorError string

func (err CollaboratorError) Error() string {
	return string(err)
}

func (err CollaboratorError) ErrCode() string {
	return "COLLABORATOR_UNAVAILABLE"
}

func (err CollaboratorError) StatusCode() int {
	return http.StatusBadGateway
}
