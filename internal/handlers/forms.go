// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"strings"
	"time"

	"myblog/internal/models"
)

// publishLayout is the value format of <input type="datetime-local">.
const publishLayout = "2006-01-02T15:04"

// postForm mirrors the post form fields as strings so invalid input can be
// shown back to the author unchanged.
type postForm struct {
	Title            string
	ShortDescription string
	Image            string
	Tags             string
	Status           string
	Publish          string
}

func postFormFrom(p *models.Post) postForm {
	return postForm{
		Title:            p.Title,
		ShortDescription: p.ShortDescription,
		Image:            p.Image,
		Tags:             models.JoinTags(p.Tags),
		Status:           string(p.Status),
		Publish:          p.Publish.UTC().Format(publishLayout),
	}
}

// parsePostForm reads the text fields. The image key never comes from the
// client: image is the post's current key, replaced later by an upload.
func parsePostForm(r *http.Request, image string) postForm {
	return postForm{
		Title:            strings.TrimSpace(r.FormValue("title")),
		ShortDescription: strings.TrimSpace(r.FormValue("short_description")),
		Image:            image,
		Tags:             r.FormValue("tags"),
		Status:           r.FormValue("status"),
		Publish:          strings.TrimSpace(r.FormValue("publish")),
	}
}

// input converts the form into a PostInput. An unparsable publish time is
// reported as a field error; an empty one leaves the current value.
func (f postForm) input() (models.PostInput, models.FieldErrors) {
	in := models.PostInput{
		Title:            f.Title,
		ShortDescription: f.ShortDescription,
		Image:            f.Image,
		Tags:             models.ParseTags(f.Tags),
		Status:           models.PostStatus(f.Status),
	}

	errs := in.Validate()
	if f.Publish != "" {
		t, err := time.ParseInLocation(publishLayout, f.Publish, time.UTC)
		if err != nil {
			if errs == nil {
				errs = models.FieldErrors{}
			}
			errs["publish"] = "Enter a valid date/time."
		} else {
			in.Publish = &t
		}
	}
	return in, errs
}

// pointForm mirrors the point form.
type pointForm struct {
	Header string
	Text   string
	Image  *string
}

func pointFormFrom(pt *models.PostPoint) pointForm {
	return pointForm{Header: pt.Header, Text: pt.Text, Image: pt.Image}
}

func parsePointForm(r *http.Request) pointForm {
	return pointForm{
		Header: strings.TrimSpace(r.FormValue("header")),
		Text:   strings.TrimSpace(r.FormValue("text")),
	}
}

func (f pointForm) input() models.PointInput {
	return models.PointInput{Header: f.Header, Text: f.Text, Image: f.Image}
}

func parseCommentForm(r *http.Request) models.CommentInput {
	return models.CommentInput{
		Name:  strings.TrimSpace(r.FormValue("name")),
		Email: strings.TrimSpace(r.FormValue("email")),
		Body:  strings.TrimSpace(r.FormValue("body")),
	}
}

func parseShareForm(r *http.Request) models.ShareInput {
	return models.ShareInput{
		Name:    strings.TrimSpace(r.FormValue("name")),
		Email:   strings.TrimSpace(r.FormValue("email")),
		To:      strings.TrimSpace(r.FormValue("to")),
		Comment: strings.TrimSpace(r.FormValue("comment")),
	}
}

func parseLoginForm(r *http.Request) models.LoginInput {
	return models.LoginInput{
		Username: strings.TrimSpace(r.FormValue("username")),
		Password: r.FormValue("password"),
	}
}

func parseSignUpForm(r *http.Request) models.SignUpInput {
	return models.SignUpInput{
		Username:  strings.TrimSpace(r.FormValue("username")),
		FirstName: strings.TrimSpace(r.FormValue("first_name")),
		LastName:  strings.TrimSpace(r.FormValue("last_name")),
		Email:     strings.TrimSpace(r.FormValue("email")),
		Password:  r.FormValue("password"),
		Password2: r.FormValue("password2"),
	}
}

func parseProfileForm(r *http.Request) models.ProfileInput {
	return models.ProfileInput{
		FirstName: strings.TrimSpace(r.FormValue("first_name")),
		LastName:  strings.TrimSpace(r.FormValue("last_name")),
		Email:     strings.TrimSpace(r.FormValue("email")),
	}
}
