package core

import (
	"errors"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"
)

// DisplayNamePlaceholder stands in for a blank creator name or handle.
const DisplayNamePlaceholder = "XYZ"

var (
	ErrEmptyName         = errors.New("empty creator name")
	ErrNameTooLong       = errors.New("creator name too long (max 100 characters)")
	ErrFollowerLabelLong = errors.New("follower label too long (max 32 characters)")
	ErrInvalidLink       = errors.New("profile link must be an http(s) URL")
)

// FeaturedCreator is one row of the featured creators directory.
type FeaturedCreator struct {
	ID            int64
	Name          string
	FollowerLabel string // free text, e.g. "1.2M"
	ProfileLink   string
	IsActive      bool
	CreatedAt     time.Time
}

func (c FeaturedCreator) Validate() error {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return ErrEmptyName
	}
	if utf8.RuneCountInString(name) > 100 {
		return ErrNameTooLong
	}
	if utf8.RuneCountInString(c.FollowerLabel) > 32 {
		return ErrFollowerLabelLong
	}
	if c.ProfileLink != "" {
		u, err := url.Parse(c.ProfileLink)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return ErrInvalidLink
		}
	}
	return nil
}

// NormalizeDisplayName trims s and substitutes the placeholder when
// nothing is left.
func NormalizeDisplayName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return DisplayNamePlaceholder
	}
	return s
}
