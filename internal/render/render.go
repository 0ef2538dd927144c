// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render turns a portfolio document into HTML. Every piece of
// content is emitted in one of two modes: read-only for visitors, or as
// editable controls carrying mutation intents for the owner. Rendering
// never changes the document; edits travel back as intents and are
// applied by the mutation package.
package render

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"strings"

	"folio/internal/models"
	"folio/internal/mutation"
)

//go:embed templates/*.html
var templateFS embed.FS

// PageData holds everything the page templates need.
type PageData struct {
	Mode        Mode
	Doc         models.Document
	Active      models.PageID
	Owner       bool   // the viewer may edit this document
	CSRFToken   string // token for state-changing requests
	Version     uint64 // draft version the page was rendered from
	Notice      string // non-blocking message for the owner, e.g. a load failure
	GateEnabled bool   // footer triple-tap opens the gate prompt
}

// Sections returns the sections on the active page.
func (p PageData) Sections() []models.Section { return p.Doc.SectionsOn(p.Active) }

// Decorations returns the decorations on the active page.
func (p PageData) Decorations() []models.Decoration { return p.Doc.DecorationsOn(p.Active) }

// ThemeSlot is one color picker of the toolbar.
type ThemeSlot struct {
	Key   string
	Label string
	Value models.Color
}

// ThemeSlots lists the palette in toolbar order.
func (p PageData) ThemeSlots() []ThemeSlot {
	t := p.Doc.Theme
	return []ThemeSlot{
		{Key: "primary", Label: "Text", Value: t.Primary},
		{Key: "secondary", Label: "Muted", Value: t.Secondary},
		{Key: "accent", Label: "Accent", Value: t.Accent},
		{Key: "bg", Label: "Background", Value: t.Bg},
	}
}

// sectionView is the data handed to a section body template.
type sectionView struct {
	Mode    Mode
	Section models.Section
	Data    models.Payload
	Label   string
	Body    template.HTML
}

// Renderer executes the embedded page templates.
type Renderer struct {
	tmpl *template.Template
}

// New parses the embedded templates.
func New() (*Renderer, error) {
	rn := &Renderer{}
	funcs := template.FuncMap{
		"field": func(mode Mode, value string, in mutation.Intent, kind string) template.HTML {
			if kind == "multi" {
				return Field(mode, value, in, MultiLine)
			}
			return Field(mode, value, in, SingleLine)
		},
		"number":     Number,
		"media":      Media,
		"text":       Text,
		"intent":     buildIntent,
		"intentAttr": IntentAttr,
		// set and nested are the two intents nearly every section field uses.
		"set": func(section models.ID, field string) mutation.Intent {
			return mutation.Intent{Op: "setField", Section: section, Field: field}
		},
		"nested": func(section models.ID, field string, index int, key string) mutation.Intent {
			return mutation.Intent{Op: "setNestedField", Section: section, Field: field, Index: &index, Key: key}
		},
		"section":     rn.Section,
		"animations":  func() []models.AnimationOption { return models.AnimationOptions },
		"fonts":       func() []models.FontName { return models.FontOptions },
		"socialKinds": func() []models.SocialKind { return models.SocialKinds },
		"socialIcon":  socialIcon,
		"fontsURL":    models.GoogleFontsURL,
		"decorStyle":  decorStyle,
		"themeStyle":  themeStyle,
	}

	tmpl, err := template.New("folio").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	rn.tmpl = tmpl
	return rn, nil
}

// Section renders one section, wrapped in Edit mode with its label,
// animation selector and move and delete controls.
func (rn *Renderer) Section(mode Mode, s models.Section) (template.HTML, error) {
	var name, label string
	switch s.Data.(type) {
	case models.HeroData:
		name, label = "hero", "Hero"
	case models.AboutData:
		name, label = "about", "About"
	case models.GenericData:
		name, label = "generic", "Content"
	case models.PortfolioData:
		name, label = "portfolio", "Portfolio"
	default:
		return "", fmt.Errorf("section %s: no data", s.ID)
	}

	view := sectionView{Mode: mode, Section: s, Data: s.Data, Label: label}
	var body bytes.Buffer
	if err := rn.tmpl.ExecuteTemplate(&body, name, view); err != nil {
		return "", fmt.Errorf("render %s section %s: %w", name, s.ID, err)
	}
	view.Body = template.HTML(body.String())

	var out bytes.Buffer
	if err := rn.tmpl.ExecuteTemplate(&out, "section", view); err != nil {
		return "", fmt.Errorf("render section %s: %w", s.ID, err)
	}
	return template.HTML(out.String()), nil
}

// Page writes the complete HTML document.
func (rn *Renderer) Page(w io.Writer, data PageData) error {
	return rn.tmpl.ExecuteTemplate(w, "page", data)
}

// Main writes only the active page's sections and decorations. The live
// channel sends it when the visitor switches tabs or the owner's edit
// changes the page structure.
func (rn *Renderer) Main(w io.Writer, data PageData) error {
	return rn.tmpl.ExecuteTemplate(w, "main", data)
}

// Body writes everything inside <body>. Edit responses carry it so the
// browser can replace the whole view, theme included, in one step.
func (rn *Renderer) Body(w io.Writer, data PageData) error {
	return rn.tmpl.ExecuteTemplate(w, "body", data)
}

// BodyHTML is Body into a string.
func (rn *Renderer) BodyHTML(data PageData) (string, error) {
	var b strings.Builder
	if err := rn.Body(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}

// MainHTML is Main into a string.
func (rn *Renderer) MainHTML(data PageData) (string, error) {
	var b strings.Builder
	if err := rn.Main(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}

// buildIntent assembles an intent from key/value pairs named after the
// intent's JSON fields, e.g. intent "op" "removeSocial" "id" .ID.
func buildIntent(kv ...any) (mutation.Intent, error) {
	var in mutation.Intent
	if len(kv)%2 != 0 {
		return in, fmt.Errorf("intent: odd number of arguments")
	}
	m := make(map[string]any, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok {
			return in, fmt.Errorf("intent: key %v is not a string", kv[i])
		}
		m[k] = kv[i+1]
	}
	b, err := json.Marshal(m)
	if err != nil {
		return in, fmt.Errorf("intent: %w", err)
	}
	if err := json.Unmarshal(b, &in); err != nil {
		return in, fmt.Errorf("intent: %w", err)
	}
	return in, nil
}

func socialIcon(k models.SocialKind) string {
	switch k {
	case models.SocialFacebook:
		return "fb"
	case models.SocialTwitter:
		return "x"
	case models.SocialInstagram:
		return "ig"
	case models.SocialLinkedIn:
		return "in"
	case models.SocialEmail:
		return "@"
	case models.SocialWhatsApp:
		return "wa"
	}
	return "link"
}

func safeColor(c, fallback models.Color) models.Color {
	if c.Valid() {
		return c
	}
	return fallback
}

func decorStyle(d models.Decoration) template.CSS {
	radius := "0"
	if d.Kind == models.DecorationCircle {
		radius = "50%"
	}
	return template.CSS(fmt.Sprintf(
		"left:%gpx;top:%gpx;width:%gpx;height:%gpx;background:%s;opacity:%g;border-radius:%s",
		d.X, d.Y, d.Size, d.Size, safeColor(d.Color, "#000000"), models.ClampOpacity(d.Opacity), radius))
}

func fontStack(f models.FontName, fallback models.FontName, generic string) string {
	if !f.Valid() {
		f = fallback
	}
	return fmt.Sprintf("'%s', %s", f, generic)
}

func themeStyle(t models.Theme) template.CSS {
	return template.CSS(fmt.Sprintf(
		":root{--primary:%s;--secondary:%s;--accent:%s;--bg:%s;--font-title:%s;--font-body:%s}",
		safeColor(t.Primary, "#1a1a1a"),
		safeColor(t.Secondary, "#666666"),
		safeColor(t.Accent, "#4834d4"),
		safeColor(t.Bg, "#ffffff"),
		fontStack(t.Fonts.Title, "Playfair Display", "serif"),
		fontStack(t.Fonts.Body, "Poppins", "sans-serif"),
	))
}
