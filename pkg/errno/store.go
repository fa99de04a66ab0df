package errno

import (
	"errors"

	"VidTube.com/pkg/store"
)

// FromStore maps store sentinels to their kinds; any other error passes
// through unchanged.
func FromStore(err error, notFoundMsg string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return NotFoundErr.WithMessage(notFoundMsg)
	case errors.Is(err, store.ErrDuplicateKey):
		return ConflictErr
	}
	return err
}
