package server

// HandshakeError is returned to a client in a handshake-reject package.
type HandshakeError struct {
	Reason string
}

func (e *HandshakeError) Error() string {
	return e.Reason
}

var (
	ErrTableFull     = &HandshakeError{Reason: "table is full"}
	ErrIdentityInUse = &HandshakeError{Reason: "identity is already seated"}
	ErrBadHandshake  = &HandshakeError{Reason: "bad handshake"}
)
