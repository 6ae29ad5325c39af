package error

// GenericError is the contract every typed error of the system satisfies so
// the REST layer can translate it into an HTTP response without switching on
// concrete types.
type GenericError interface {
	Error() string
	ErrCode() string
	StatusCode() int
}
