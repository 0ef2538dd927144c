// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

// Default returns the document shown before an owner has saved anything.
// It has one section on each of the four pages HOME, ABOUT, OFFER and
// PORTFOLIO.
func Default() Document {
	const portrait = "https://images.unsplash.com/photo-1506794778202-cad84cf45f1d?ixlib=rb-1.2.1&auto=format&fit=crop&w=800&q=80"

	return Document{
		Theme: Theme{
			Primary:   "#1a1a1a",
			Secondary: "#666666",
			Accent:    "#4834d4",
			Bg:        "#ffffff",
			Fonts:     Fonts{Title: "Playfair Display", Body: "Poppins"},
		},
		Socials: []Social{
			{ID: "1", Type: SocialInstagram, URL: "https://instagram.com"},
			{ID: "2", Type: SocialLinkedIn, URL: "https://linkedin.com"},
			{ID: "3", Type: SocialEmail, URL: "mailto:me@mail.com"},
		},
		Decorations: []Decoration{},
		Nav: Nav{
			LogoText: "AW",
			Menu: []MenuItem{
				{ID: "HOME", Text: "HOME"},
				{ID: "ABOUT", Text: "ABOUT"},
				{ID: "OFFER", Text: "SERVICES"},
				{ID: "PORTFOLIO", Text: "WORKS"},
			},
		},
		Footer: Footer{
			Text:    "© 2026 Abrar Wall - All Rights Reserved.",
			Tagline: "Designed by Me",
		},
		Sections: []Section{
			{
				ID: "hero", Type: SectionHero, Page: "HOME", Animation: AnimationFadeIn,
				Data: HeroData{
					Greeting:   "Hello !",
					Name:       "I am ABRAR WALL",
					Tagline:    "Think Deeply But Do Simple",
					ScrollText: "Scroll ↓",
					Image:      portrait,
				},
			},
			{
				ID: "about", Type: SectionAbout, Page: "ABOUT", Animation: AnimationFadeIn,
				Data: AboutData{
					Title:     "About Me",
					Subtitle:  "Introduce",
					Image:     portrait,
					Quote:     "Donec tincidunt arcu a interdum efficitur. Nullam egestas bibendum tristique.",
					Signature: "Lili Dian",
					CVLink:    "#",
					Info: []InfoRow{
						{Label: "Name", Value: "Abrar Wall"},
						{Label: "Age", Value: "27 Years"},
						{Label: "Email", Value: "info.abrar@gmail.com"},
						{Label: "Phone", Value: "+62 123 4567 890"},
					},
					Skills: []Skill{
						{Name: "Photoshop", Percent: 99},
						{Name: "Web Dev", Percent: 90},
					},
					BtnText: "Download CV",
				},
			},
			{
				ID: "services", Type: SectionGeneric, Page: "OFFER", Animation: AnimationFadeIn,
				Data: GenericData{
					Title: "What I Offer",
					Text:  "I offer high quality digital services for your business.",
					Image: "https://images.unsplash.com/photo-1522202176988-66273c2fd55f?auto=format&fit=crop&w=1000&q=80",
				},
			},
			{
				ID: "works", Type: SectionPortfolio, Page: "PORTFOLIO", Animation: AnimationFadeIn,
				Data: PortfolioData{
					Title:    "Selected Works",
					Subtitle: "Portfolio",
					Items: []WorkItem{
						{ID: "1", Title: "Mobile UI", Category: "DESIGN", Image: "https://images.unsplash.com/photo-1551650975-87deedd944c3?auto=format&fit=crop&w=800&q=80"},
						{ID: "2", Title: "Web Platform", Category: "WEB", Image: "https://images.unsplash.com/photo-1460925895917-afdab827c52f?auto=format&fit=crop&w=800&q=80"},
					},
				},
			},
		},
	}
}
