// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the portfolio document tree and the account types
// used throughout the application. The document is plain data: it is
// serialized as JSON into the portfolios table and carries no behavior
// beyond copying, normalizing and validating itself.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// PageID names a page (tab) of the site, e.g. "HOME".
type PageID string

// Color is a CSS color value, usually "#rrggbb".
type Color string

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Valid reports whether c is a 3 or 6 digit hex color, the only form the
// color pickers produce and the only form written into style attributes.
func (c Color) Valid() bool { return hexColor.MatchString(string(c)) }

// FontName is a Google Fonts family name from FontOptions.
type FontName string

// MediaRef points at an image or video: an http(s) URL or a data URL.
type MediaRef string

// MaxMediaBytes is the largest file accepted for embedding.
const MaxMediaBytes = 50 << 20

// IsVideo reports whether the ref is a video data URL or a link to an
// .mp4, .webm or .mov file.
func (m MediaRef) IsVideo() bool {
	s := string(m)
	if strings.HasPrefix(s, "data:video") {
		return true
	}
	if strings.HasPrefix(s, "data:") {
		return false
	}
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	switch strings.ToLower(path.Ext(s)) {
	case ".mp4", ".webm", ".mov":
		return true
	}
	return false
}

// Safe reports whether the ref may be used as a src attribute: an http(s)
// URL, a site-relative path, or an image or video data URL.
func (m MediaRef) Safe() bool {
	s := strings.ToLower(strings.TrimSpace(string(m)))
	switch {
	case strings.HasPrefix(s, "https://"), strings.HasPrefix(s, "http://"):
		return true
	case strings.HasPrefix(s, "data:image/"), strings.HasPrefix(s, "data:video/"):
		return true
	case strings.HasPrefix(s, "/") && !strings.HasPrefix(s, "//"):
		return true
	}
	return false
}

// SocialKind selects the icon rendered for a social link.
type SocialKind string

const (
	SocialFacebook  SocialKind = "facebook"
	SocialTwitter   SocialKind = "twitter"
	SocialInstagram SocialKind = "instagram"
	SocialLinkedIn  SocialKind = "linkedin"
	SocialEmail     SocialKind = "email"
	SocialWhatsApp  SocialKind = "whatsapp"
)

// SocialKinds lists the kinds offered by the social link editor.
var SocialKinds = []SocialKind{
	SocialFacebook, SocialTwitter, SocialInstagram,
	SocialLinkedIn, SocialEmail, SocialWhatsApp,
}

// DecorationKind is the shape of a decoration.
type DecorationKind string

const (
	DecorationCircle DecorationKind = "circle"
	DecorationRect   DecorationKind = "rect"
)

// ID identifies an element inside one of the document's collections.
// Older documents stored numeric ids, so ID also decodes JSON numbers.
type ID string

// UnmarshalJSON accepts both JSON strings and numbers.
func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id: expected string or number, got %s", b)
	}
	if i, err := n.Int64(); err == nil {
		*id = ID(strconv.FormatInt(i, 10))
		return nil
	}
	*id = ID(n.String())
	return nil
}

// Document is the full serializable content of one owner's site.
type Document struct {
	Theme       Theme        `json:"theme"`
	Socials     []Social     `json:"socials"`
	Decorations []Decoration `json:"decorations"`
	Nav         Nav          `json:"nav"`
	Footer      Footer       `json:"footer"`
	Sections    []Section    `json:"sections"`
}

// Theme holds the four palette colors and the two font slots.
type Theme struct {
	Primary   Color `json:"primary"`
	Secondary Color `json:"secondary"`
	Accent    Color `json:"accent"`
	Bg        Color `json:"bg"`
	Fonts     Fonts `json:"fonts"`
}

// Fonts assigns a font family to titles and body text.
type Fonts struct {
	Title FontName `json:"title"`
	Body  FontName `json:"body"`
}

// Social is one link in the navigation bar's social strip.
type Social struct {
	ID   ID         `json:"id"`
	Type SocialKind `json:"type"`
	URL  string     `json:"url"`
}

// Decoration is a free-floating shape drawn over one page.
type Decoration struct {
	ID        ID             `json:"id"`
	Kind      DecorationKind `json:"type"`
	X         float64        `json:"x"`
	Y         float64        `json:"y"`
	Size      float64        `json:"size"`
	Color     Color          `json:"color"`
	Opacity   float64        `json:"opacity"`
	Page      PageID         `json:"page"`
	Animation AnimationKind  `json:"animation"`
}

// Nav is the sticky navigation bar.
type Nav struct {
	LogoText     string     `json:"logoText"`
	LogoImage    MediaRef   `json:"logoImage"`
	UseImageLogo bool       `json:"useImageLogo"`
	Menu         []MenuItem `json:"menu"`
}

// MenuItem is one tab of the site. Its ID is the PageID sections point to.
type MenuItem struct {
	ID   PageID `json:"id"`
	Text string `json:"text"`
}

// Footer holds the two footer lines.
type Footer struct {
	Text    string `json:"text"`
	Tagline string `json:"tagline"`
}

// HasPage reports whether the menu contains a page with the given id.
func (d *Document) HasPage(page PageID) bool {
	for _, m := range d.Nav.Menu {
		if m.ID == page {
			return true
		}
	}
	return false
}

// SectionIndex returns the index of the section with the given id, or -1.
func (d *Document) SectionIndex(id ID) int {
	for i := range d.Sections {
		if d.Sections[i].ID == id {
			return i
		}
	}
	return -1
}

// SectionsOn returns the sections assigned to page, in document order.
func (d *Document) SectionsOn(page PageID) []Section {
	var out []Section
	for _, s := range d.Sections {
		if s.Page == page {
			out = append(out, s)
		}
	}
	return out
}

// DecorationsOn returns the decorations assigned to page.
func (d *Document) DecorationsOn(page PageID) []Decoration {
	var out []Decoration
	for _, dec := range d.Decorations {
		if dec.Page == page {
			out = append(out, dec)
		}
	}
	return out
}

// FirstPage returns the first menu page, or "" for an empty menu.
func (d *Document) FirstPage() PageID {
	if len(d.Nav.Menu) == 0 {
		return ""
	}
	return d.Nav.Menu[0].ID
}

// Clone returns a deep copy. Mutating the copy never affects d.
func (d Document) Clone() Document {
	out := d
	out.Socials = slices.Clone(d.Socials)
	out.Decorations = slices.Clone(d.Decorations)
	out.Nav.Menu = slices.Clone(d.Nav.Menu)
	out.Sections = make([]Section, len(d.Sections))
	for i, s := range d.Sections {
		out.Sections[i] = s.Clone()
	}
	return out
}

// Normalize clamps skill percents to 0..100 and opacities to 0..1, and
// replaces nil collections with empty ones so the JSON form always has
// arrays rather than nulls.
func (d *Document) Normalize() {
	if d.Socials == nil {
		d.Socials = []Social{}
	}
	if d.Decorations == nil {
		d.Decorations = []Decoration{}
	}
	if d.Nav.Menu == nil {
		d.Nav.Menu = []MenuItem{}
	}
	if d.Sections == nil {
		d.Sections = []Section{}
	}
	for i := range d.Decorations {
		d.Decorations[i].Opacity = ClampOpacity(d.Decorations[i].Opacity)
	}
	for i := range d.Sections {
		d.Sections[i].normalize()
	}
}

// ClampPercent limits a skill percentage to 0..100.
func ClampPercent(p int) int {
	return min(max(p, 0), 100)
}

// ClampOpacity limits an opacity to 0..1.
func ClampOpacity(o float64) float64 {
	return min(max(o, 0), 1)
}
