// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// DefaultPointHeader is used when a point is saved without a header.
const DefaultPointHeader = "HEADER"

// PostPoint is one step of a post. Points are shown in Position order.
type PostPoint struct {
	ID        uuid.UUID `json:"id"`
	PostID    uuid.UUID `json:"post_id"`
	Position  int       `json:"position"`
	Header    string    `json:"header"`
	Text      string    `json:"text"`
	Image     *string   `json:"image,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
