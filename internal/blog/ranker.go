// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package blog

import (
	"cmp"
	"slices"

	"github.com/samber/lo"

	"myblog/internal/models"
)

// SimilarLimit is how many related posts the detail page shows.
const SimilarLimit = 4

// RankSimilar orders candidates by shared tag count, most first, breaking
// ties by publish time, newest first, and keeps at most limit. Candidates
// that tie on both keys keep their input order.
func RankSimilar(cands []models.SimilarPost, limit int) []models.Post {
	sorted := slices.Clone(cands)
	slices.SortStableFunc(sorted, func(a, b models.SimilarPost) int {
		if c := cmp.Compare(b.SameTags, a.SameTags); c != 0 {
			return c
		}
		return b.Post.Publish.Compare(a.Post.Publish)
	})

	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return lo.Map(sorted, func(c models.SimilarPost, _ int) models.Post { return c.Post })
}
