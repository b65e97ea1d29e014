package serviceerrors

import "errors"

type ErrorKind int

const (
	KindNotFound ErrorKind = iota
	KindDuplicateKey
	KindValidation
	KindInvalidRequest
	KindStorageUnavailable
	KindSchema
	KindConfiguration
)

func IsOfKind(err error, kind ErrorKind) bool {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.Kind == kind
	}
	return false
}

type ServiceError struct {
	Kind    ErrorKind
	Message string
	cause   error
}

func (e *ServiceError) Error() string {
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.cause
}

func NewNotFoundError(message string) *ServiceError {
	return &ServiceError{Kind: KindNotFound, Message: message}
}

func NewDuplicateKeyError(message string) *ServiceError {
	return &ServiceError{Kind: KindDuplicateKey, Message: message}
}

func NewValidationError(message string) *ServiceError {
	return &ServiceError{Kind: KindValidation, Message: message}
}

func NewInvalidRequestError(message string) *ServiceError {
	return &ServiceError{Kind: KindInvalidRequest, Message: message}
}

// NewStorageUnavailableError wraps a medium-level failure (file system,
// database) so the fallback path can recognize and absorb it.
func NewStorageUnavailableError(message string, cause error) *ServiceError {
	return &ServiceError{Kind: KindStorageUnavailable, Message: message, cause: cause}
}

func NewSchemaError(message string, cause error) *ServiceError {
	return &ServiceError{Kind: KindSchema, Message: message, cause: cause}
}

func NewConfigurationError(message string) *ServiceError {
	return &ServiceError{Kind: KindConfiguration, Message: message}
}
