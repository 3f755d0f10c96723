// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package email sends plain text mail via SMTP.
package email

import (
	"errors"
	"fmt"
	"mime"
	"net/smtp"
	"strings"
)

// ErrNotConfigured is returned by Send when no SMTP host is set.
var ErrNotConfigured = errors.New("email not configured")

// Config holds SMTP configuration.
type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	FromName string
}

// Service sends mail through a single SMTP relay.
type Service struct {
	config Config
	server string
	auth   smtp.Auth

	// sendMail is smtp.SendMail, swapped out in tests.
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewService creates a new email service.
func NewService(config Config) *Service {
	var auth smtp.Auth
	if config.Username != "" {
		auth = smtp.PlainAuth("", config.Username, config.Password, config.Host)
	}
	return &Service{
		config:   config,
		server:   config.Host + ":" + config.Port,
		auth:     auth,
		sendMail: smtp.SendMail,
	}
}

// IsConfigured returns true if email is configured.
func (s *Service) IsConfigured() bool {
	return s.config.Host != "" && s.config.Port != "" && s.config.From != ""
}

// Send delivers a plain text message.
func (s *Service) Send(to []string, subject, body string) error {
	if !s.IsConfigured() {
		return ErrNotConfigured
	}
	return s.sendMail(s.server, s.auth, s.config.From, to, s.compose(to, subject, body))
}

func (s *Service) compose(to []string, subject, body string) []byte {
	from := s.config.From
	if s.config.FromName != "" {
		from = fmt.Sprintf("%s <%s>", headerSafe(s.config.FromName), s.config.From)
	}

	return []byte(fmt.Sprintf(
		"To: %s\r\n"+
			"From: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/plain; charset=UTF-8\r\n"+
			"\r\n"+
			"%s",
		headerSafe(strings.Join(to, ", ")),
		from,
		mime.QEncoding.Encode("utf-8", headerSafe(subject)),
		body,
	))
}

// headerSafe drops CR and LF so user input cannot add header lines.
func headerSafe(s string) string {
	return strings.NewReplacer("\r", "", "\n", " ").Replace(s)
}
