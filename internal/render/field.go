// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package render

import (
	"encoding/json"
	"fmt"
	"html/template"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"folio/internal/models"
	"folio/internal/mutation"
)

// Mode selects how content is emitted: as read-only text for visitors or
// as editable controls for the owner.
type Mode int

const (
	ReadOnly Mode = iota
	Edit
)

// ModeFor returns Edit while a draft is open and ReadOnly otherwise.
func ModeFor(editing bool) Mode {
	if editing {
		return Edit
	}
	return ReadOnly
}

// Editing reports whether m is Edit.
func (m Mode) Editing() bool { return m == Edit }

func (m Mode) String() string {
	if m == Edit {
		return "edit"
	}
	return "readonly"
}

// TextKind selects a single-line input or a multi-line textarea in Edit
// mode. ReadOnly output is the same for both.
type TextKind int

const (
	SingleLine TextKind = iota
	MultiLine
)

// strict allows no tags at all. It runs over already escaped text, so it
// only guarantees that nothing the owner typed becomes markup.
var strict = bluemonday.StrictPolicy()

// Text renders plain text for ReadOnly output: the value is escaped so it
// reads exactly as typed, and newlines become line breaks.
func Text(value string) template.HTML {
	clean := strict.Sanitize(template.HTMLEscapeString(value))
	clean = strings.ReplaceAll(clean, "\r\n", "\n")
	return template.HTML(strings.ReplaceAll(clean, "\n", "<br>"))
}

// IntentAttr encodes an intent for a data-intent attribute value.
func IntentAttr(in mutation.Intent) string {
	b, err := json.Marshal(in)
	if err != nil {
		return "{}"
	}
	return string(b)
}

func attr(s string) string { return template.HTMLEscapeString(s) }

// Field renders one text field. In Edit mode the control carries the
// intent that the browser completes with the control's value and sends
// back on every input event.
func Field(mode Mode, value string, in mutation.Intent, kind TextKind) template.HTML {
	if !mode.Editing() {
		return Text(value)
	}
	if kind == MultiLine {
		return template.HTML(fmt.Sprintf(
			`<textarea class="folio-field" rows="3" data-intent="%s">%s</textarea>`,
			attr(IntentAttr(in)), attr(value)))
	}
	return template.HTML(fmt.Sprintf(
		`<input type="text" class="folio-field" value="%s" data-intent="%s">`,
		attr(value), attr(IntentAttr(in))))
}

// Number renders a 0..100 number, used for skill percents.
func Number(mode Mode, value int, in mutation.Intent) template.HTML {
	if !mode.Editing() {
		return template.HTML(strconv.Itoa(value))
	}
	return template.HTML(fmt.Sprintf(
		`<input type="number" class="folio-field folio-number" min="0" max="100" value="%d" data-intent="%s">`,
		value, attr(IntentAttr(in))))
}

// Media renders an image or a video. Videos play muted and looped and
// show controls only while editing. In Edit mode an upload control is
// overlaid; the browser posts the chosen file together with the intent.
func Media(mode Mode, ref models.MediaRef, in mutation.Intent) template.HTML {
	var b strings.Builder
	b.WriteString(`<div class="folio-media">`)
	switch {
	case ref == "" || !ref.Safe():
		b.WriteString(`<div class="folio-media-empty">No media</div>`)
	case ref.IsVideo():
		fmt.Fprintf(&b, `<video src="%s" muted loop autoplay playsinline`, attr(string(ref)))
		if mode.Editing() {
			b.WriteString(" controls")
		}
		b.WriteString(`></video>`)
	default:
		fmt.Fprintf(&b, `<img src="%s" alt="" loading="lazy">`, attr(string(ref)))
	}
	if mode.Editing() {
		fmt.Fprintf(&b,
			`<label class="folio-upload">Upload<input type="file" accept="image/*,video/*" data-max-bytes="%d" data-intent="%s"></label>`,
			models.MaxMediaBytes, attr(IntentAttr(in)))
	}
	b.WriteString(`</div>`)
	return template.HTML(b.String())
}
