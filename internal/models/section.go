// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"encoding/json"
	"fmt"
	"slices"
)

// SectionType tags the payload variant of a section.
type SectionType string

const (
	SectionHero      SectionType = "hero"
	SectionAbout     SectionType = "about"
	SectionGeneric   SectionType = "generic"
	SectionPortfolio SectionType = "portfolio"
)

// Section is one content block assigned to exactly one page. Its Data is
// one of HeroData, AboutData, GenericData or PortfolioData; Type always
// mirrors the dynamic type of Data.
type Section struct {
	ID        ID
	Type      SectionType
	Page      PageID
	Animation AnimationKind
	Data      Payload
}

// Payload is the closed set of section payloads. The unexported method
// keeps other packages from adding variants, so a type switch over the
// four payload types is exhaustive.
type Payload interface {
	SectionType() SectionType
	clone() Payload
}

// HeroData is the landing block: greeting, name, tagline and a portrait.
type HeroData struct {
	Greeting   string   `json:"greeting"`
	Name       string   `json:"name"`
	Tagline    string   `json:"tagline"`
	ScrollText string   `json:"scrollText"`
	Image      MediaRef `json:"image"`
}

// AboutData is the biography block with info rows and skill bars.
type AboutData struct {
	Title     string    `json:"title"`
	Subtitle  string    `json:"subtitle"`
	Image     MediaRef  `json:"image"`
	Quote     string    `json:"quote"`
	Signature string    `json:"signature"`
	CVLink    string    `json:"cvLink"`
	Info      []InfoRow `json:"info"`
	Skills    []Skill   `json:"skills"`
	BtnText   string    `json:"btnText"`
}

// InfoRow is a "label: value" line of the about block.
type InfoRow struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Skill is a named skill with a 0..100 proficiency.
type Skill struct {
	Name    string `json:"name"`
	Percent int    `json:"percent"`
}

// GenericData is a two-column title, text and media block.
type GenericData struct {
	Title string   `json:"title"`
	Text  string   `json:"text"`
	Image MediaRef `json:"image"`
}

// PortfolioData is a titled grid of work items.
type PortfolioData struct {
	Title    string     `json:"title"`
	Subtitle string     `json:"subtitle"`
	Items    []WorkItem `json:"items"`
}

// WorkItem is one tile of the portfolio grid.
type WorkItem struct {
	ID       ID       `json:"id"`
	Title    string   `json:"title"`
	Category string   `json:"category"`
	Image    MediaRef `json:"image"`
	HasPlay  bool     `json:"hasPlay"`
}

func (HeroData) SectionType() SectionType      { return SectionHero }
func (AboutData) SectionType() SectionType     { return SectionAbout }
func (GenericData) SectionType() SectionType   { return SectionGeneric }
func (PortfolioData) SectionType() SectionType { return SectionPortfolio }

func (p HeroData) clone() Payload    { return p }
func (p GenericData) clone() Payload { return p }

func (p AboutData) clone() Payload {
	p.Info = slices.Clone(p.Info)
	p.Skills = slices.Clone(p.Skills)
	return p
}

func (p PortfolioData) clone() Payload {
	p.Items = slices.Clone(p.Items)
	return p
}

// Clone returns a deep copy of the section, including its payload lists.
func (s Section) Clone() Section {
	if s.Data != nil {
		s.Data = s.Data.clone()
	}
	return s
}

func (s *Section) normalize() {
	switch p := s.Data.(type) {
	case AboutData:
		if p.Info == nil {
			p.Info = []InfoRow{}
		}
		if p.Skills == nil {
			p.Skills = []Skill{}
		}
		for i := range p.Skills {
			p.Skills[i].Percent = ClampPercent(p.Skills[i].Percent)
		}
		s.Data = p
	case PortfolioData:
		if p.Items == nil {
			p.Items = []WorkItem{}
		}
		s.Data = p
	}
}

// NewPayload returns the zero payload for a section type.
func NewPayload(t SectionType) (Payload, error) {
	switch t {
	case SectionHero:
		return HeroData{}, nil
	case SectionAbout:
		return AboutData{Info: []InfoRow{}, Skills: []Skill{}}, nil
	case SectionGeneric:
		return GenericData{}, nil
	case SectionPortfolio:
		return PortfolioData{Items: []WorkItem{}}, nil
	}
	return nil, fmt.Errorf("unknown section type %q", t)
}

// sectionJSON is the wire shape shared with the stored documents.
type sectionJSON struct {
	ID        ID              `json:"id"`
	Type      SectionType     `json:"type"`
	Page      PageID          `json:"page"`
	Animation AnimationKind   `json:"animation"`
	Data      json.RawMessage `json:"data"`
}

// MarshalJSON writes the section with its payload under "data".
func (s Section) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(s.Data)
	if err != nil {
		return nil, fmt.Errorf("section %s data: %w", s.ID, err)
	}
	t := s.Type
	if s.Data != nil {
		t = s.Data.SectionType()
	}
	return json.Marshal(sectionJSON{
		ID:        s.ID,
		Type:      t,
		Page:      s.Page,
		Animation: s.Animation,
		Data:      data,
	})
}

// UnmarshalJSON decodes "data" into the payload variant named by "type".
func (s *Section) UnmarshalJSON(b []byte) error {
	var raw sectionJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	var payload Payload
	var err error
	switch raw.Type {
	case SectionHero:
		payload, err = decodePayload[HeroData](raw.Data)
	case SectionAbout:
		payload, err = decodePayload[AboutData](raw.Data)
	case SectionGeneric:
		payload, err = decodePayload[GenericData](raw.Data)
	case SectionPortfolio:
		payload, err = decodePayload[PortfolioData](raw.Data)
	default:
		return fmt.Errorf("section %s: unknown type %q", raw.ID, raw.Type)
	}
	if err != nil {
		return fmt.Errorf("section %s data: %w", raw.ID, err)
	}

	*s = Section{
		ID:        raw.ID,
		Type:      raw.Type,
		Page:      raw.Page,
		Animation: raw.Animation,
		Data:      payload,
	}
	s.normalize()
	return nil
}

func decodePayload[T Payload](data json.RawMessage) (Payload, error) {
	var p T
	if len(data) == 0 || string(data) == "null" {
		return p, nil
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return p, nil
}
