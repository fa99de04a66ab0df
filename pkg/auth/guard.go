package auth

import (
	"VidTube.com/pkg/errno"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Owned is any entity with an owner field.
type Owned interface {
	OwnerID() primitive.ObjectID
}

// Authorize permits a mutation of e only by its owner. It performs no I/O.
func Authorize(p *Principal, e Owned) error {
	if _, err := Require(p); err != nil {
		return err
	}
	if e == nil || p.UserID != e.OwnerID() {
		return errno.ForbiddenErr
	}
	return nil
}
