package util

var (
	ErrInvalid              = NewError("invalid")
	ErrDaemonAlreadyStarted = NewError("daemon already started")
	ErrDaemonAlreadyStopped = NewError("daemon already stopped")
)
