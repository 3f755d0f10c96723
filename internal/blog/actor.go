// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package blog

import "github.com/google/uuid"

// Actor is the identity a request acts as. The zero value is an anonymous
// visitor.
type Actor struct {
	UserID   uuid.UUID
	Username string
}

// Anonymous returns the visitor identity.
func Anonymous() Actor { return Actor{} }

// IsAnonymous reports whether no user is signed in.
func (a Actor) IsAnonymous() bool { return a.UserID == uuid.Nil }
