// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// FieldErrors maps a form field name to a user-facing message. A non-empty
// FieldErrors is returned as an error by the service layer so handlers can
// re-display the form.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+fe[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Err returns fe as an error, or nil when there are no field errors.
func (fe FieldErrors) Err() error {
	if len(fe) == 0 {
		return nil
	}
	return fe
}

var (
	validate = newValidator()

	// usernameChars mirrors the usual account rule: letters, digits and @.+-_
	usernameChars = regexp.MustCompile(`^[\p{L}\p{N}@.+\-_]+$`)
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report errors under the form field name rather than the Go field name.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernameChars.MatchString(fl.Field().String())
	})
	return v
}

// check runs struct validation and converts the result into FieldErrors.
func check(in any) FieldErrors {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return FieldErrors{"__all__": err.Error()}
	}

	fe := FieldErrors{}
	for _, e := range verrs {
		field := e.Field()
		if _, seen := fe[field]; seen {
			continue
		}
		fe[field] = message(e)
	}
	return fe
}

func message(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters.", e.Param())
	case "min":
		return fmt.Sprintf("Ensure this value has at least %s characters.", e.Param())
	case "email":
		return "Enter a valid email address."
	case "oneof":
		return "Select a valid choice."
	case "eqfield":
		return "The two password fields didn't match."
	case "username":
		return "Enter a valid username."
	default:
		return "Enter a valid value."
	}
}

// PostInput carries the editable fields of a post.
type PostInput struct {
	Title            string     `form:"title" validate:"required,max=250"`
	ShortDescription string     `form:"short_description" validate:"required,max=400"`
	Image            string     `form:"image" validate:"required,max=255"`
	Tags             []string   `form:"tags" validate:"dive,max=100"`
	Status           PostStatus `form:"status" validate:"omitempty,oneof=draft published"`
	Publish          *time.Time `form:"publish"`
}

// Validate checks field constraints.
func (in PostInput) Validate() FieldErrors {
	return check(in)
}

// PointInput carries the editable fields of a post point.
type PointInput struct {
	Header string  `form:"header" validate:"max=250"`
	Text   string  `form:"text" validate:"required"`
	Image  *string `form:"image" validate:"omitempty,max=255"`
}

func (in PointInput) Validate() FieldErrors {
	return check(in)
}

// CommentInput is what a visitor submits under a post.
type CommentInput struct {
	Name  string `form:"name" validate:"required,max=25"`
	Email string `form:"email" validate:"required,email,max=254"`
	Body  string `form:"body"`
}

func (in CommentInput) Validate() FieldErrors {
	return check(in)
}

// ShareInput is the recommend-by-email form.
type ShareInput struct {
	Name    string `form:"name" validate:"required,max=25"`
	Email   string `form:"email" validate:"required,email"`
	To      string `form:"to" validate:"required,email"`
	Comment string `form:"comment"`
}

func (in ShareInput) Validate() FieldErrors {
	return check(in)
}

// SignUpInput is the registration form.
type SignUpInput struct {
	Username  string `form:"username" validate:"required,max=150,username"`
	FirstName string `form:"first_name" validate:"max=150"`
	LastName  string `form:"last_name" validate:"max=150"`
	Email     string `form:"email" validate:"omitempty,email,max=254"`
	Password  string `form:"password" validate:"required,min=8,max=72"`
	Password2 string `form:"password2" validate:"required,eqfield=Password"`
}

func (in SignUpInput) Validate() FieldErrors {
	return check(in)
}

// ProfileInput is the profile edit form.
type ProfileInput struct {
	FirstName string `form:"first_name" validate:"max=150"`
	LastName  string `form:"last_name" validate:"max=150"`
	Email     string `form:"email" validate:"omitempty,email,max=254"`
}

func (in ProfileInput) Validate() FieldErrors {
	return check(in)
}

// LoginInput is the login form.
type LoginInput struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

func (in LoginInput) Validate() FieldErrors {
	return check(in)
}
