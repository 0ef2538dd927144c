// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package mutation

import (
	"encoding/json"
	"fmt"

	"folio/internal/models"
)

// Intent is the wire form of a mutation. Edit-mode controls carry a
// partial intent in their data-intent attribute; the browser fills in
// Value (or X and Y for a drag) and sends it back.
type Intent struct {
	Op        string        `json:"op"`
	Section   models.ID     `json:"section,omitempty"`
	Field     string        `json:"field,omitempty"`
	Index     *int          `json:"index,omitempty"`
	Key       string        `json:"key,omitempty"`
	ID        models.ID     `json:"id,omitempty"`
	Page      models.PageID `json:"page,omitempty"`
	Type      string        `json:"type,omitempty"`
	Direction Direction     `json:"direction,omitempty"`
	X         *float64      `json:"x,omitempty"`
	Y         *float64      `json:"y,omitempty"`
	Value     any           `json:"value,omitempty"`
}

// Result is the outcome of a successfully applied intent. Created is the
// id of the entity an add operation created, if any.
type Result struct {
	Doc     models.Document
	Created models.ID
}

// ParseIntent decodes an intent from JSON.
func ParseIntent(b []byte) (Intent, error) {
	var in Intent
	if err := json.Unmarshal(b, &in); err != nil {
		return in, &ValidationError{Op: "decode", Reason: err.Error()}
	}
	if in.Op == "" {
		return in, &ValidationError{Op: "decode", Reason: "missing op"}
	}
	return in, nil
}

// Apply dispatches an intent to the matching operation.
func Apply(doc models.Document, in Intent) (Result, error) {
	var (
		next    models.Document
		created models.ID
		err     error
	)
	switch in.Op {
	case "setField":
		next, err = SetField(doc, in.Section, in.Field, in.Value)
	case "setNestedField":
		if in.Index == nil {
			return Result{Doc: doc}, invalid(in.Op, "missing index")
		}
		next, err = SetNestedField(doc, in.Section, in.Field, *in.Index, in.Key, in.Value)
	case "appendItem":
		next, err = AppendItem(doc, in.Section, in.Field, in.Value)
	case "removeItem":
		var sel Selector
		switch {
		case in.ID != "":
			sel = WithID(in.ID)
		case in.Index != nil:
			sel = AtIndex(*in.Index)
		default:
			return Result{Doc: doc}, invalid(in.Op, "missing index or id")
		}
		next, err = RemoveItem(doc, in.Section, in.Field, sel)
	case "reorderSection":
		next, err = ReorderSection(doc, in.Section, in.Direction)
	case "setSectionAnimation":
		var s string
		if s, err = asString(in.Value); err != nil {
			return Result{Doc: doc}, invalid(in.Op, "%v", err)
		}
		next, err = SetSectionAnimation(doc, in.Section, models.AnimationKind(s))
	case "addSection":
		var payload models.Payload
		if in.Value != nil {
			if payload, err = decodePayload(models.SectionType(in.Type), in.Value); err != nil {
				return Result{Doc: doc}, invalid(in.Op, "%v", err)
			}
		}
		next, created, err = AddSection(doc, in.Page, models.SectionType(in.Type), payload)
	case "removeSection":
		next, err = RemoveSection(doc, in.Section)
	case "addDecoration":
		next, created, err = AddDecoration(doc, in.Page, models.DecorationKind(in.Type))
	case "moveDecoration":
		if in.X == nil || in.Y == nil {
			return Result{Doc: doc}, invalid(in.Op, "missing position")
		}
		next, err = MoveDecoration(doc, in.ID, *in.X, *in.Y)
	case "removeDecoration":
		next, err = RemoveDecoration(doc, in.ID)
	case "setTheme":
		var s string
		if s, err = asString(in.Value); err != nil {
			return Result{Doc: doc}, invalid(in.Op, "%v", err)
		}
		next, err = SetTheme(doc, in.Field, models.Color(s))
	case "setFonts":
		var s string
		if s, err = asString(in.Value); err != nil {
			return Result{Doc: doc}, invalid(in.Op, "%v", err)
		}
		next, err = SetFonts(doc, in.Field, models.FontName(s))
	case "setNav":
		next, err = SetNav(doc, in.Field, in.Value)
	case "setMenuText":
		var s string
		if s, err = asString(in.Value); err != nil {
			return Result{Doc: doc}, invalid(in.Op, "%v", err)
		}
		next, err = SetMenuText(doc, in.Page, s)
	case "setFooter":
		var s string
		if s, err = asString(in.Value); err != nil {
			return Result{Doc: doc}, invalid(in.Op, "%v", err)
		}
		next, err = SetFooter(doc, in.Field, s)
	case "setSocial":
		var s string
		if s, err = asString(in.Value); err != nil {
			return Result{Doc: doc}, invalid(in.Op, "%v", err)
		}
		next, err = SetSocial(doc, in.ID, in.Field, s)
	case "addSocial":
		next, created, err = AddSocial(doc)
	case "removeSocial":
		next, err = RemoveSocial(doc, in.ID)
	default:
		return Result{Doc: doc}, invalid("apply", "unknown op %q", in.Op)
	}
	if err != nil {
		return Result{Doc: doc}, err
	}
	return Result{Doc: next, Created: created}, nil
}

func decodePayload(t models.SectionType, v any) (models.Payload, error) {
	switch t {
	case models.SectionHero:
		return coerce[models.HeroData](v)
	case models.SectionAbout:
		return coerce[models.AboutData](v)
	case models.SectionGeneric:
		return coerce[models.GenericData](v)
	case models.SectionPortfolio:
		return coerce[models.PortfolioData](v)
	}
	return nil, fmt.Errorf("unknown section type %q", t)
}
