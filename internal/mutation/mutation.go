// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package mutation implements the operations that produce a new draft
// document from an old one. Every operation takes the document by value,
// works on a deep copy and returns the copy; the input is never modified,
// so discarding a result is all it takes to undo it. A rejected operation
// returns the input unchanged together with a *ValidationError.
package mutation

import (
	"fmt"
	"slices"

	"github.com/google/uuid"

	"folio/internal/models"
)

// Direction moves a section towards the top or the bottom of its page.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// Decoration spawn defaults.
const (
	decorationX       = 100
	decorationY       = 100
	decorationSize    = 100
	decorationOpacity = 0.2
)

// finish normalizes and validates the result of op. On failure the
// original document is returned.
func finish(op string, orig, next models.Document) (models.Document, error) {
	next.Normalize()
	if err := next.Validate(); err != nil {
		return orig, invalid(op, "%v", err)
	}
	return next, nil
}

// editSection applies fn to a copy of the section with the given id.
func editSection(op string, doc models.Document, id models.ID, fn func(*models.Section) error) (models.Document, error) {
	i := doc.SectionIndex(id)
	if i < 0 {
		return doc, invalid(op, "no section with id %q", id)
	}
	next := doc.Clone()
	if err := fn(&next.Sections[i]); err != nil {
		return doc, invalid(op, "section %s: %v", id, err)
	}
	return finish(op, doc, next)
}

// SetField replaces one field of a section's payload.
func SetField(doc models.Document, sectionID models.ID, field string, value any) (models.Document, error) {
	return editSection("setField", doc, sectionID, func(s *models.Section) error {
		p, err := setPayloadField(s.Data, field, value)
		if err != nil {
			return err
		}
		s.Data = p
		return nil
	})
}

// SetNestedField replaces key in element index of the list field.
func SetNestedField(doc models.Document, sectionID models.ID, field string, index int, key string, value any) (models.Document, error) {
	return editSection("setNestedField", doc, sectionID, func(s *models.Section) error {
		p, err := setPayloadNested(s.Data, field, index, key, value)
		if err != nil {
			return err
		}
		s.Data = p
		return nil
	})
}

// AppendItem appends item to the list field. A nil item appends the
// list's default element.
func AppendItem(doc models.Document, sectionID models.ID, field string, item any) (models.Document, error) {
	return editSection("appendItem", doc, sectionID, func(s *models.Section) error {
		p, err := appendPayloadItem(s.Data, field, item)
		if err != nil {
			return err
		}
		s.Data = p
		return nil
	})
}

// RemoveItem removes the selected element of the list field.
func RemoveItem(doc models.Document, sectionID models.ID, field string, sel Selector) (models.Document, error) {
	return editSection("removeItem", doc, sectionID, func(s *models.Section) error {
		p, err := removePayloadItem(s.Data, field, sel)
		if err != nil {
			return err
		}
		s.Data = p
		return nil
	})
}

// ReorderSection swaps a section with its nearest neighbor on the same
// page. Moving the first section up or the last one down returns the
// document unchanged.
func ReorderSection(doc models.Document, sectionID models.ID, dir Direction) (models.Document, error) {
	const op = "reorderSection"
	i := doc.SectionIndex(sectionID)
	if i < 0 {
		return doc, invalid(op, "no section with id %q", sectionID)
	}
	page := doc.Sections[i].Page
	j := -1
	switch dir {
	case Up:
		for k := i - 1; k >= 0; k-- {
			if doc.Sections[k].Page == page {
				j = k
				break
			}
		}
	case Down:
		for k := i + 1; k < len(doc.Sections); k++ {
			if doc.Sections[k].Page == page {
				j = k
				break
			}
		}
	default:
		return doc, invalid(op, "unknown direction %q", dir)
	}
	if j < 0 {
		return doc, nil
	}
	next := doc.Clone()
	next.Sections[i], next.Sections[j] = next.Sections[j], next.Sections[i]
	return finish(op, doc, next)
}

// SetSectionAnimation sets the animation class of a section.
func SetSectionAnimation(doc models.Document, sectionID models.ID, anim models.AnimationKind) (models.Document, error) {
	return editSection("setSectionAnimation", doc, sectionID, func(s *models.Section) error {
		if !anim.Valid() {
			return fmt.Errorf("unknown animation %q", anim)
		}
		s.Animation = anim
		return nil
	})
}

// AddSection appends a section of type t to page. A nil payload gets the
// type's default content. The new section fades in.
func AddSection(doc models.Document, page models.PageID, t models.SectionType, payload models.Payload) (models.Document, models.ID, error) {
	const op = "addSection"
	if !doc.HasPage(page) {
		return doc, "", invalid(op, "unknown page %q", page)
	}
	if payload == nil {
		p, err := defaultPayload(t)
		if err != nil {
			return doc, "", invalid(op, "%v", err)
		}
		payload = p
	}
	if payload.SectionType() != t {
		return doc, "", invalid(op, "payload is %s, not %s", payload.SectionType(), t)
	}
	id := models.ID(string(t) + "-" + uuid.NewString())
	next := doc.Clone()
	next.Sections = append(next.Sections, models.Section{
		ID:        id,
		Type:      t,
		Page:      page,
		Animation: models.AnimationFadeIn,
		Data:      payload,
	}.Clone())
	next, err := finish(op, doc, next)
	if err != nil {
		return doc, "", err
	}
	return next, id, nil
}

func defaultPayload(t models.SectionType) (models.Payload, error) {
	if t == models.SectionGeneric {
		return models.GenericData{Title: "New", Text: "Content"}, nil
	}
	return models.NewPayload(t)
}

// RemoveSection deletes a section.
func RemoveSection(doc models.Document, sectionID models.ID) (models.Document, error) {
	const op = "removeSection"
	i := doc.SectionIndex(sectionID)
	if i < 0 {
		return doc, invalid(op, "no section with id %q", sectionID)
	}
	next := doc.Clone()
	next.Sections = slices.Delete(next.Sections, i, i+1)
	return finish(op, doc, next)
}

func decorationIndex(doc models.Document, id models.ID) int {
	return slices.IndexFunc(doc.Decorations, func(d models.Decoration) bool { return d.ID == id })
}

// AddDecoration spawns a shape on page at the default position, size and
// opacity, colored with the current accent color.
func AddDecoration(doc models.Document, page models.PageID, kind models.DecorationKind) (models.Document, models.ID, error) {
	const op = "addDecoration"
	if !doc.HasPage(page) {
		return doc, "", invalid(op, "unknown page %q", page)
	}
	if !kind.Valid() {
		return doc, "", invalid(op, "unknown shape %q", kind)
	}
	id := models.ID(uuid.NewString())
	next := doc.Clone()
	next.Decorations = append(next.Decorations, models.Decoration{
		ID:        id,
		Kind:      kind,
		X:         decorationX,
		Y:         decorationY,
		Size:      decorationSize,
		Color:     doc.Theme.Accent,
		Opacity:   decorationOpacity,
		Page:      page,
		Animation: models.AnimationFloat,
	})
	next, err := finish(op, doc, next)
	if err != nil {
		return doc, "", err
	}
	return next, id, nil
}

// MoveDecoration commits a new position for a shape.
func MoveDecoration(doc models.Document, id models.ID, x, y float64) (models.Document, error) {
	const op = "moveDecoration"
	i := decorationIndex(doc, id)
	if i < 0 {
		return doc, invalid(op, "no decoration with id %q", id)
	}
	next := doc.Clone()
	next.Decorations[i].X = x
	next.Decorations[i].Y = y
	return finish(op, doc, next)
}

// RemoveDecoration deletes a shape.
func RemoveDecoration(doc models.Document, id models.ID) (models.Document, error) {
	const op = "removeDecoration"
	i := decorationIndex(doc, id)
	if i < 0 {
		return doc, invalid(op, "no decoration with id %q", id)
	}
	next := doc.Clone()
	next.Decorations = slices.Delete(next.Decorations, i, i+1)
	return finish(op, doc, next)
}

// SetTheme sets one palette color: primary, secondary, accent or bg.
func SetTheme(doc models.Document, key string, value models.Color) (models.Document, error) {
	const op = "setTheme"
	if !value.Valid() {
		return doc, invalid(op, "%q is not a hex color", value)
	}
	next := doc.Clone()
	switch key {
	case "primary":
		next.Theme.Primary = value
	case "secondary":
		next.Theme.Secondary = value
	case "accent":
		next.Theme.Accent = value
	case "bg":
		next.Theme.Bg = value
	default:
		return doc, invalid(op, "unknown theme key %q", key)
	}
	return finish(op, doc, next)
}

// SetFonts assigns a catalog font to the title or body slot.
func SetFonts(doc models.Document, slot string, font models.FontName) (models.Document, error) {
	const op = "setFonts"
	if !font.Valid() {
		return doc, invalid(op, "font %q is not in the catalog", font)
	}
	next := doc.Clone()
	switch slot {
	case "title":
		next.Theme.Fonts.Title = font
	case "body":
		next.Theme.Fonts.Body = font
	default:
		return doc, invalid(op, "unknown font slot %q", slot)
	}
	return finish(op, doc, next)
}

// SetNav sets logoText, logoImage or useImageLogo.
func SetNav(doc models.Document, field string, value any) (models.Document, error) {
	const op = "setNav"
	next := doc.Clone()
	var err error
	switch field {
	case "logoText":
		next.Nav.LogoText, err = asString(value)
	case "logoImage":
		next.Nav.LogoImage, err = asMedia(value)
	case "useImageLogo":
		next.Nav.UseImageLogo, err = asBool(value)
	default:
		return doc, invalid(op, "unknown nav field %q", field)
	}
	if err != nil {
		return doc, invalid(op, "%s: %v", field, err)
	}
	return finish(op, doc, next)
}

// SetMenuText renames the tab of page. Page ids themselves are fixed.
func SetMenuText(doc models.Document, page models.PageID, text string) (models.Document, error) {
	const op = "setMenuText"
	i := slices.IndexFunc(doc.Nav.Menu, func(m models.MenuItem) bool { return m.ID == page })
	if i < 0 {
		return doc, invalid(op, "unknown page %q", page)
	}
	next := doc.Clone()
	next.Nav.Menu[i].Text = text
	return finish(op, doc, next)
}

// SetFooter sets the footer text or tagline.
func SetFooter(doc models.Document, field, value string) (models.Document, error) {
	const op = "setFooter"
	next := doc.Clone()
	switch field {
	case "text":
		next.Footer.Text = value
	case "tagline":
		next.Footer.Tagline = value
	default:
		return doc, invalid(op, "unknown footer field %q", field)
	}
	return finish(op, doc, next)
}

func socialIndex(doc models.Document, id models.ID) int {
	return slices.IndexFunc(doc.Socials, func(s models.Social) bool { return s.ID == id })
}

// SetSocial sets the type or url of a social link.
func SetSocial(doc models.Document, id models.ID, field, value string) (models.Document, error) {
	const op = "setSocial"
	i := socialIndex(doc, id)
	if i < 0 {
		return doc, invalid(op, "no social link with id %q", id)
	}
	next := doc.Clone()
	switch field {
	case "type":
		kind := models.SocialKind(value)
		if !kind.Valid() {
			return doc, invalid(op, "unknown social type %q", value)
		}
		next.Socials[i].Type = kind
	case "url":
		next.Socials[i].URL = value
	default:
		return doc, invalid(op, "unknown social field %q", field)
	}
	return finish(op, doc, next)
}

// AddSocial appends a facebook link pointing at "#".
func AddSocial(doc models.Document) (models.Document, models.ID, error) {
	id := models.ID(uuid.NewString())
	next := doc.Clone()
	next.Socials = append(next.Socials, models.Social{ID: id, Type: models.SocialFacebook, URL: "#"})
	next, err := finish("addSocial", doc, next)
	if err != nil {
		return doc, "", err
	}
	return next, id, nil
}

// RemoveSocial deletes a social link.
func RemoveSocial(doc models.Document, id models.ID) (models.Document, error) {
	const op = "removeSocial"
	i := socialIndex(doc, id)
	if i < 0 {
		return doc, invalid(op, "no social link with id %q", id)
	}
	next := doc.Clone()
	next.Socials = slices.Delete(next.Socials, i, i+1)
	return finish(op, doc, next)
}
