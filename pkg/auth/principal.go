// Package auth resolves the acting principal and guards owned entities.
package auth

import (
	"VidTube.com/pkg/errno"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Principal is the authenticated user of a request. A nil *Principal is an
// anonymous caller.
type Principal struct {
	UserID primitive.ObjectID
}

func NewPrincipal(id primitive.ObjectID) *Principal {
	return &Principal{UserID: id}
}

// Require returns the caller's id or Unauthenticated.
func Require(p *Principal) (primitive.ObjectID, error) {
	if p == nil || p.UserID.IsZero() {
		return primitive.NilObjectID, errno.UnauthenticatedErr
	}
	return p.UserID, nil
}

// Is reports whether p is the user id.
func (p *Principal) Is(id primitive.ObjectID) bool {
	return p != nil && !p.UserID.IsZero() && p.UserID == id
}
