// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package email

import "fmt"

// Share is a "recommend this post" message.
type Share struct {
	Name    string // sender's name
	Email   string // sender's address
	To      string
	Comment string
	Title   string // post title
	URL     string // absolute post URL
}

// Subject returns `{name} ({email}) recommends you reading "{title}"`.
func (m Share) Subject() string {
	return fmt.Sprintf("%s (%s) recommends you reading \"%s\"", m.Name, m.Email, m.Title)
}

// Body links the post and quotes the sender's comment.
func (m Share) Body() string {
	return fmt.Sprintf("Read \"%s\" at %s\n\n%s's comments:%s", m.Title, m.URL, m.Name, m.Comment)
}

// SendShare delivers m to its recipient.
func (s *Service) SendShare(m Share) error {
	return s.Send([]string{m.To}, m.Subject(), m.Body())
}
