// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package render

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
)

// flashCookie carries one-time messages across a redirect.
const flashCookie = "myblog_flash"

// Flash represents a one-time notification message displayed to the user.
type Flash struct {
	Type    string `json:"type"` // "success", "error", "info"
	Message string `json:"message"`
}

// SetFlash queues a message for the next rendered page.
func SetFlash(w http.ResponseWriter, typ, message string) {
	payload, err := json.Marshal([]Flash{{Type: typ, Message: message}})
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    base64.RawURLEncoding.EncodeToString(payload),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// PopFlashes returns queued messages and clears the cookie.
func PopFlashes(w http.ResponseWriter, r *http.Request) []Flash {
	c, err := r.Cookie(flashCookie)
	if err != nil {
		return nil
	}
	http.SetCookie(w, &http.Cookie{Name: flashCookie, Path: "/", MaxAge: -1})

	raw, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return nil
	}
	var flashes []Flash
	if err := json.Unmarshal(raw, &flashes); err != nil {
		return nil
	}
	return flashes
}
