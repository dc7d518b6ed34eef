package rpc

import (
	"errors"
	"fmt"
)

// ErrNoEndpoint is the cause of a CommunicationError when neither an
// endpoint nor a local fallback is configured.
var ErrNoEndpoint = errors.New("nenhum endpoint configurado")

// CommunicationError reports a transport-level failure: unreachable
// endpoint, non-2xx status or an undecodable body.
type CommunicationError struct {
	Action Action
	Err    error
}

func (e *CommunicationError) Error() string {
	return fmt.Sprintf("Não foi possível se comunicar com o servidor. Verifique sua conexão. Detalhes: %v", e.Err)
}

func (e *CommunicationError) Unwrap() error {
	return e.Err
}

// ApplicationError carries the message of an explicit failure envelope.
type ApplicationError struct {
	Action  Action
	Message string
}

func (e *ApplicationError) Error() string {
	return e.Message
}

// StatusError is the cause recorded for a non-2xx HTTP response.
type StatusError struct {
	Code   int
	Status string
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("Erro na API: %s - %s", e.Status, e.Body)
}

// IsCommunication reports whether err is or wraps a CommunicationError.
func IsCommunication(err error) bool {
	var ce *CommunicationError
	return errors.As(err, &ce)
}

// IsApplication reports whether err is or wraps an ApplicationError.
func IsApplication(err error) bool {
	var ae *ApplicationError
	return errors.As(err, &ae)
}
