// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "strings"

// AnimationKind is a CSS animation class applied to a section or decoration.
// The empty kind means no animation.
type AnimationKind string

const (
	AnimationNone     AnimationKind = ""
	AnimationFadeIn   AnimationKind = "animate-fade-in"
	AnimationBounce   AnimationKind = "animate-bounce"
	AnimationPulse    AnimationKind = "animate-pulse"
	AnimationSpinSlow AnimationKind = "animate-spin-slow"
	AnimationFloat    AnimationKind = "animate-float"
)

// AnimationOption is one entry of the animation selector.
type AnimationOption struct {
	Label string
	Value AnimationKind
}

// AnimationOptions lists the selectable animations in display order.
var AnimationOptions = []AnimationOption{
	{Label: "None", Value: AnimationNone},
	{Label: "Fade In", Value: AnimationFadeIn},
	{Label: "Bounce", Value: AnimationBounce},
	{Label: "Pulse", Value: AnimationPulse},
	{Label: "Spin (Slow)", Value: AnimationSpinSlow},
	{Label: "Float", Value: AnimationFloat},
}

// Valid reports whether a is one of AnimationOptions.
func (a AnimationKind) Valid() bool {
	for _, o := range AnimationOptions {
		if o.Value == a {
			return true
		}
	}
	return false
}

// FontOptions is the font catalog offered for the title and body slots.
var FontOptions = []FontName{
	"Poppins", "Playfair Display", "Roboto", "Open Sans", "Lato",
	"Montserrat", "Merriweather", "Nunito", "Raleway", "Oswald",
	"Source Sans Pro", "Slabo 27px", "PT Sans", "Roboto Slab", "Work Sans",
	"Lora", "Quicksand", "Barlow", "Inconsolata", "Allura",
	"Dancing Script", "Pacifico", "Satisfy", "Great Vibes", "Courier Prime",
	"Fira Code", "Inter", "DM Sans", "Manrope", "Crimson Text",
}

// Valid reports whether f is in the font catalog.
func (f FontName) Valid() bool {
	for _, o := range FontOptions {
		if o == f {
			return true
		}
	}
	return false
}

// GoogleFontsURL returns the stylesheet URL importing every catalog font.
func GoogleFontsURL() string {
	families := make([]string, len(FontOptions))
	for i, f := range FontOptions {
		families[i] = strings.ReplaceAll(string(f), " ", "+")
	}
	return "https://fonts.googleapis.com/css2?family=" + strings.Join(families, "|") + "&display=swap"
}

// Valid reports whether k is a known social kind.
func (k SocialKind) Valid() bool {
	for _, s := range SocialKinds {
		if s == k {
			return true
		}
	}
	return false
}

// Valid reports whether k is a known decoration shape.
func (k DecorationKind) Valid() bool {
	return k == DecorationCircle || k == DecorationRect
}
