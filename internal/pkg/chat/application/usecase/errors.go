package usecase

import "errors"

// ErrPersistence indicates an infrastructure/repository failure inside a use
// case. Handlers surface it as an operation-failed error event; the
// connection stays open.
var ErrPersistence = errors.New("chat use case persistence error")
