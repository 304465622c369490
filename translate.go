package txscope

import (
	"errors"

	"github.com/aretw0/txscope/pkg/domain"
)

// Translate classifies a handler failure into an application error. The
// mapping is total, deterministic and side-effect free; classification rules
// are checked in order and fall through to returning the error unchanged so
// the enclosing pipeline's default handling applies.
//
// Only handler failures are ever translated. Commit, abort and end failures
// never reach this function; the coordinator swallows them after logging.
func Translate(err error) error {
	if err == nil {
		return nil
	}

	var storageErr *domain.StorageError
	if errors.As(err, &storageErr) {
		return domain.Internal(storageErr.Error(), err)
	}

	var remoteErr *domain.RemoteError
	if errors.As(err, &remoteErr) {
		return domain.Internal(remoteErr.Error(), err)
	}

	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		return domain.BadRequest(validationErr.Error(), err)
	}

	return err
}
