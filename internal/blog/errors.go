// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package blog

import "errors"

var (
	// ErrPermissionDenied is returned before any write when the actor may
	// not mutate the target (not signed in, or not the post's author).
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNotPublished is returned when commenting on a draft.
	ErrNotPublished = errors.New("post is not published")

	// ErrMailUnavailable is returned by SharePost when no mail relay is set up.
	ErrMailUnavailable = errors.New("mail delivery is not configured")
)
