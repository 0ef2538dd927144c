// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package mutation

import (
	"fmt"
	"slices"

	"github.com/google/uuid"

	"folio/internal/models"
)

// Selector picks one element of a list field, either by position or, for
// lists whose elements carry ids, by id.
type Selector struct {
	Index int
	ID    models.ID
	byID  bool
}

// AtIndex selects the element at position i.
func AtIndex(i int) Selector { return Selector{Index: i} }

// WithID selects the element whose id is id.
func WithID(id models.ID) Selector { return Selector{ID: id, byID: true} }

func (s Selector) String() string {
	if s.byID {
		return fmt.Sprintf("id %q", s.ID)
	}
	return fmt.Sprintf("index %d", s.Index)
}

// setPayloadField replaces one field of a payload. List fields accept a
// whole replacement list.
func setPayloadField(p models.Payload, field string, v any) (models.Payload, error) {
	var err error
	switch p := p.(type) {
	case models.HeroData:
		switch field {
		case "greeting":
			p.Greeting, err = asString(v)
		case "name":
			p.Name, err = asString(v)
		case "tagline":
			p.Tagline, err = asString(v)
		case "scrollText":
			p.ScrollText, err = asString(v)
		case "image":
			p.Image, err = asMedia(v)
		default:
			return nil, unknownField(p, field)
		}
		return p, err

	case models.AboutData:
		switch field {
		case "title":
			p.Title, err = asString(v)
		case "subtitle":
			p.Subtitle, err = asString(v)
		case "image":
			p.Image, err = asMedia(v)
		case "quote":
			p.Quote, err = asString(v)
		case "signature":
			p.Signature, err = asString(v)
		case "cvLink":
			p.CVLink, err = asString(v)
		case "btnText":
			p.BtnText, err = asString(v)
		case "info":
			p.Info, err = coerce[[]models.InfoRow](v)
		case "skills":
			p.Skills, err = coerce[[]models.Skill](v)
			for i := range p.Skills {
				p.Skills[i].Percent = models.ClampPercent(p.Skills[i].Percent)
			}
		default:
			return nil, unknownField(p, field)
		}
		return p, err

	case models.GenericData:
		switch field {
		case "title":
			p.Title, err = asString(v)
		case "text":
			p.Text, err = asString(v)
		case "image":
			p.Image, err = asMedia(v)
		default:
			return nil, unknownField(p, field)
		}
		return p, err

	case models.PortfolioData:
		switch field {
		case "title":
			p.Title, err = asString(v)
		case "subtitle":
			p.Subtitle, err = asString(v)
		case "items":
			p.Items, err = coerce[[]models.WorkItem](v)
		default:
			return nil, unknownField(p, field)
		}
		return p, err
	}
	return nil, fmt.Errorf("section has no data")
}

// setPayloadNested replaces key of element index in list field.
func setPayloadNested(p models.Payload, field string, index int, key string, v any) (models.Payload, error) {
	var err error
	switch p := p.(type) {
	case models.AboutData:
		switch field {
		case "info":
			if err := checkIndex(index, len(p.Info)); err != nil {
				return nil, err
			}
			row := &p.Info[index]
			switch key {
			case "label":
				row.Label, err = asString(v)
			case "value":
				row.Value, err = asString(v)
			default:
				return nil, fmt.Errorf("info has no key %q", key)
			}
		case "skills":
			if err := checkIndex(index, len(p.Skills)); err != nil {
				return nil, err
			}
			sk := &p.Skills[index]
			switch key {
			case "name":
				sk.Name, err = asString(v)
			case "percent":
				var n int
				n, err = asInt(v)
				sk.Percent = models.ClampPercent(n)
			default:
				return nil, fmt.Errorf("skills has no key %q", key)
			}
		default:
			return nil, unknownList(p, field)
		}
		return p, err

	case models.PortfolioData:
		if field != "items" {
			return nil, unknownList(p, field)
		}
		if err := checkIndex(index, len(p.Items)); err != nil {
			return nil, err
		}
		it := &p.Items[index]
		switch key {
		case "title":
			it.Title, err = asString(v)
		case "category":
			it.Category, err = asString(v)
		case "image":
			it.Image, err = asMedia(v)
		case "hasPlay":
			it.HasPlay, err = asBool(v)
		default:
			return nil, fmt.Errorf("items has no key %q", key)
		}
		return p, err

	case nil:
		return nil, fmt.Errorf("section has no data")
	}
	return nil, unknownList(p, field)
}

// appendPayloadItem appends item to list field. A nil item appends the
// element the editor's add buttons create.
func appendPayloadItem(p models.Payload, field string, item any) (models.Payload, error) {
	switch p := p.(type) {
	case models.AboutData:
		switch field {
		case "info":
			row := models.InfoRow{Label: "Label", Value: "Value"}
			if item != nil {
				var err error
				if row, err = coerce[models.InfoRow](item); err != nil {
					return nil, err
				}
			}
			p.Info = append(p.Info, row)
		case "skills":
			sk := models.Skill{Name: "New Skill", Percent: 50}
			if item != nil {
				var err error
				if sk, err = coerce[models.Skill](item); err != nil {
					return nil, err
				}
			}
			sk.Percent = models.ClampPercent(sk.Percent)
			p.Skills = append(p.Skills, sk)
		default:
			return nil, unknownList(p, field)
		}
		return p, nil

	case models.PortfolioData:
		if field != "items" {
			return nil, unknownList(p, field)
		}
		it := models.WorkItem{Title: "New Work", Category: "WEB"}
		if item != nil {
			var err error
			if it, err = coerce[models.WorkItem](item); err != nil {
				return nil, err
			}
		}
		if it.ID == "" {
			it.ID = models.ID(uuid.NewString())
		}
		if slices.ContainsFunc(p.Items, func(w models.WorkItem) bool { return w.ID == it.ID }) {
			return nil, fmt.Errorf("item id %q already exists", it.ID)
		}
		p.Items = append(p.Items, it)
		return p, nil

	case nil:
		return nil, fmt.Errorf("section has no data")
	}
	return nil, unknownList(p, field)
}

// removePayloadItem removes the selected element of list field.
func removePayloadItem(p models.Payload, field string, sel Selector) (models.Payload, error) {
	switch p := p.(type) {
	case models.AboutData:
		if sel.byID {
			return nil, fmt.Errorf("%s elements have no id", field)
		}
		switch field {
		case "info":
			if err := checkIndex(sel.Index, len(p.Info)); err != nil {
				return nil, err
			}
			p.Info = slices.Delete(p.Info, sel.Index, sel.Index+1)
		case "skills":
			if err := checkIndex(sel.Index, len(p.Skills)); err != nil {
				return nil, err
			}
			p.Skills = slices.Delete(p.Skills, sel.Index, sel.Index+1)
		default:
			return nil, unknownList(p, field)
		}
		return p, nil

	case models.PortfolioData:
		if field != "items" {
			return nil, unknownList(p, field)
		}
		i := sel.Index
		if sel.byID {
			i = slices.IndexFunc(p.Items, func(w models.WorkItem) bool { return w.ID == sel.ID })
			if i < 0 {
				return nil, fmt.Errorf("no item with id %q", sel.ID)
			}
		}
		if err := checkIndex(i, len(p.Items)); err != nil {
			return nil, err
		}
		p.Items = slices.Delete(p.Items, i, i+1)
		return p, nil

	case nil:
		return nil, fmt.Errorf("section has no data")
	}
	return nil, unknownList(p, field)
}

func checkIndex(i, n int) error {
	if i < 0 || i >= n {
		return fmt.Errorf("index %d out of range [0,%d)", i, n)
	}
	return nil
}

func asMedia(v any) (models.MediaRef, error) {
	s, err := asString(v)
	return models.MediaRef(s), err
}

func unknownField(p models.Payload, field string) error {
	return fmt.Errorf("%s section has no field %q", p.SectionType(), field)
}

func unknownList(p models.Payload, field string) error {
	return fmt.Errorf("%s section has no list %q", p.SectionType(), field)
}
