// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package paginate turns a total count and a raw ?page= value into a
// clamped page window.
package paginate

import "strconv"

// Page describes one page of a listing. Number is 1-based.
type Page struct {
	Number   int
	PerPage  int
	Total    int
	NumPages int
}

// New builds the page for the raw query value. A value that is not an
// integer yields the first page; an integer outside 1..NumPages yields the
// last page. An empty listing still has one (empty) page.
func New(total, perPage int, raw string) Page {
	if perPage < 1 {
		perPage = 1
	}
	numPages := (total + perPage - 1) / perPage
	if numPages < 1 {
		numPages = 1
	}

	p := Page{PerPage: perPage, Total: total, NumPages: numPages}

	n, err := strconv.Atoi(raw)
	switch {
	case err != nil:
		p.Number = 1
	case n < 1 || n > numPages:
		p.Number = numPages
	default:
		p.Number = n
	}
	return p
}

// Offset is the number of rows to skip.
func (p Page) Offset() int { return (p.Number - 1) * p.PerPage }

func (p Page) HasPrevious() bool { return p.Number > 1 }
func (p Page) HasNext() bool     { return p.Number < p.NumPages }
func (p Page) Previous() int     { return p.Number - 1 }
func (p Page) Next() int         { return p.Number + 1 }
