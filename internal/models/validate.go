// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"errors"
	"fmt"
)

// Validate checks the document invariants: every section and decoration
// points at a menu page, ids are unique within their collection, percents
// lie in 0..100 and opacities in 0..1. It returns all violations joined,
// or nil.
func (d *Document) Validate() error {
	var errs []error

	pages := make(map[PageID]bool, len(d.Nav.Menu))
	for _, m := range d.Nav.Menu {
		if pages[m.ID] {
			errs = append(errs, fmt.Errorf("menu: duplicate page %q", m.ID))
		}
		pages[m.ID] = true
	}

	seen := make(map[ID]bool, len(d.Sections))
	for _, s := range d.Sections {
		if seen[s.ID] {
			errs = append(errs, fmt.Errorf("section %q: duplicate id", s.ID))
		}
		seen[s.ID] = true
		if !pages[s.Page] {
			errs = append(errs, fmt.Errorf("section %q: unknown page %q", s.ID, s.Page))
		}
		if s.Data == nil {
			errs = append(errs, fmt.Errorf("section %q: missing data", s.ID))
			continue
		}
		if s.Data.SectionType() != s.Type {
			errs = append(errs, fmt.Errorf("section %q: type %q does not match data", s.ID, s.Type))
		}
		errs = append(errs, validatePayload(s.ID, s.Data)...)
	}

	seen = make(map[ID]bool, len(d.Decorations))
	for _, dec := range d.Decorations {
		if seen[dec.ID] {
			errs = append(errs, fmt.Errorf("decoration %q: duplicate id", dec.ID))
		}
		seen[dec.ID] = true
		if !pages[dec.Page] {
			errs = append(errs, fmt.Errorf("decoration %q: unknown page %q", dec.ID, dec.Page))
		}
		if dec.Opacity < 0 || dec.Opacity > 1 {
			errs = append(errs, fmt.Errorf("decoration %q: opacity %v out of range", dec.ID, dec.Opacity))
		}
	}

	seen = make(map[ID]bool, len(d.Socials))
	for _, s := range d.Socials {
		if seen[s.ID] {
			errs = append(errs, fmt.Errorf("social %q: duplicate id", s.ID))
		}
		seen[s.ID] = true
	}

	return errors.Join(errs...)
}

func validatePayload(id ID, p Payload) []error {
	var errs []error
	switch p := p.(type) {
	case AboutData:
		for i, sk := range p.Skills {
			if sk.Percent < 0 || sk.Percent > 100 {
				errs = append(errs, fmt.Errorf("section %q: skill %d percent %d out of range", id, i, sk.Percent))
			}
		}
	case PortfolioData:
		seen := make(map[ID]bool, len(p.Items))
		for _, it := range p.Items {
			if seen[it.ID] {
				errs = append(errs, fmt.Errorf("section %q: duplicate item id %q", id, it.ID))
			}
			seen[it.ID] = true
		}
	}
	return errs
}

// Repair moves sections and decorations that point at a page missing from
// the menu onto the first page, and realigns section types with their
// data. It reports whether anything changed. Duplicate ids are left for
// Validate to report.
func (d *Document) Repair() bool {
	first := d.FirstPage()
	if first == "" {
		return false
	}
	changed := false
	for i := range d.Sections {
		s := &d.Sections[i]
		if !d.HasPage(s.Page) {
			s.Page = first
			changed = true
		}
		if s.Data != nil && s.Data.SectionType() != s.Type {
			s.Type = s.Data.SectionType()
			changed = true
		}
	}
	for i := range d.Decorations {
		if !d.HasPage(d.Decorations[i].Page) {
			d.Decorations[i].Page = first
			changed = true
		}
	}
	return changed
}
