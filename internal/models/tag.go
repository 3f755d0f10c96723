// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"myblog/internal/slug"
)

// TagMaxLength bounds both a tag's name and its slug (tags.name and
// tags.slug are VARCHAR(100)).
const TagMaxLength = 100

// Tag labels posts. Tags are shared between posts and never removed
// automatically.
type Tag struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`
}

// ParseTags splits a comma separated tag field into trimmed, non-empty,
// de-duplicated names, keeping the first spelling of each.
func ParseTags(raw string) []string {
	names := lo.FilterMap(strings.Split(raw, ","), func(s string, _ int) (string, bool) {
		s = strings.TrimSpace(s)
		return s, s != ""
	})
	return lo.UniqBy(names, strings.ToLower)
}

// JoinTags is the inverse of ParseTags, used to refill edit forms.
func JoinTags(tags []Tag) string {
	return strings.Join(lo.Map(tags, func(t Tag, _ int) string { return t.Name }), ", ")
}

// TagSlug is the slug a tag called name is stored under. Transliteration
// can make it longer than the name, so it is cut to TagMaxLength.
func TagSlug(name string) string {
	return slug.Shorten(slug.Generate(name), TagMaxLength)
}
