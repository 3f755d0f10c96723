// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug provides URL-friendly slug generation from arbitrary strings.
package slug

import (
	"strconv"
	"strings"

	gosimple "github.com/gosimple/slug"
	"github.com/samber/lo"
)

// MaxLength leaves room for a "-NN" suffix inside the 250 char column.
const MaxLength = 240

// Generate creates a lower-case, transliterated, hyphenated slug.
// Example: "Борщ 2026" → "borshch-2026"
func Generate(s string) string {
	return Shorten(gosimple.Make(strings.TrimSpace(s)), MaxLength)
}

// Shorten cuts a generated slug to at most n bytes without leaving a
// trailing hyphen. Slugs are ASCII, so bytes and characters agree.
func Shorten(sl string, n int) string {
	if len(sl) <= n {
		return sl
	}
	return strings.TrimRight(sl[:n], "-")
}

// Unique returns base if it is not in taken, otherwise the first of
// base-2, base-3, ... that is free. The result only depends on the inputs.
func Unique(base string, taken []string) string {
	if !lo.Contains(taken, base) {
		return base
	}
	for n := 2; ; n++ {
		candidate := base + "-" + strconv.Itoa(n)
		if !lo.Contains(taken, candidate) {
			return candidate
		}
	}
}
