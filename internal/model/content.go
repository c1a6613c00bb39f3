// Copyright (c) 2025-2026 Acme Inc.
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"encoding/json"
	"fmt"
)

// Content section names. Each corresponds to one row in website_content.
const (
	SectionHero     = "hero"
	SectionAbout    = "about"
	SectionProjects = "projects"
	SectionContact  = "contact"
)

// SectionNames returns the editable section names in display order.
func SectionNames() []string {
	return []string{SectionHero, SectionAbout, SectionProjects, SectionContact}
}

// IsValidSection checks if a section name is one of the editable sections.
func IsValidSection(name string) bool {
	for _, s := range SectionNames() {
		if s == name {
			return true
		}
	}
	return false
}

// SectionData is the stored shape of one content section: a flat mapping
// from field name to value. Values are strings except for the list fields
// (about.values, projects.items), which are ordered lists of sub-records.
type SectionData map[string]any

// HeroContent is the typed view of the hero section.
type HeroContent struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	CtaText  string `json:"ctaText"`
}

// AboutValue is one entry of the about section's values list.
type AboutValue struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// AboutContent is the typed view of the about section.
type AboutContent struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Vision      string       `json:"vision"`
	Values      []AboutValue `json:"values"`
}

// ProjectItem is one entry of the projects section's items list.
type ProjectItem struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image"`
	Category    string `json:"category"`
}

// ProjectsContent is the typed view of the projects section.
type ProjectsContent struct {
	Title    string        `json:"title"`
	Subtitle string        `json:"subtitle"`
	Items    []ProjectItem `json:"items"`
}

// ContactContent is the typed view of the contact section.
type ContactContent struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Address  string `json:"address"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

// DefaultContent returns the built-in value for every section. A section
// missing from the database keeps its full default; a section present in
// the database replaces the default wholesale.
func DefaultContent() map[string]SectionData {
	return map[string]SectionData{
		SectionHero: {
			"title":    "Innovate. Transform. Succeed.",
			"subtitle": "We build cutting-edge solutions that help businesses grow and thrive in the digital age.",
			"ctaText":  "Get Started",
		},
		SectionAbout: {
			"title":       "About Acme Inc",
			"description": "Founded in 2010, Acme Inc has been at the forefront of technological innovation for over a decade. We specialize in creating custom software solutions that address complex business challenges and drive meaningful results for our clients.",
			"vision":      "Our vision is to empower businesses through technology, making digital transformation accessible and impactful for organizations of all sizes.",
			"values": []any{
				map[string]any{"title": "Innovation", "description": "We constantly explore new ideas and technologies to deliver cutting-edge solutions."},
				map[string]any{"title": "Quality", "description": "We are committed to excellence in everything we do, from code to customer service."},
				map[string]any{"title": "Integrity", "description": "We operate with transparency and honesty in all our business relationships."},
				map[string]any{"title": "Collaboration", "description": "We believe in the power of teamwork and partnership with our clients."},
			},
		},
		SectionProjects: {
			"title":    "Our Projects",
			"subtitle": "Discover our innovative solutions that have helped businesses transform and grow.",
			"items": []any{
				map[string]any{
					"title":       "E-Commerce Platform",
					"description": "A comprehensive online shopping solution with advanced inventory management and payment processing capabilities.",
					"image":       "/static/placeholder.svg",
					"category":    "Web Development",
				},
				map[string]any{
					"title":       "Financial Analytics Dashboard",
					"description": "Real-time data visualization tool for financial institutions to monitor market trends and make informed decisions.",
					"image":       "/static/placeholder.svg",
					"category":    "Data Analytics",
				},
				map[string]any{
					"title":       "Healthcare Management System",
					"description": "Integrated solution for hospitals to streamline patient records, appointments, and billing processes.",
					"image":       "/static/placeholder.svg",
					"category":    "Healthcare IT",
				},
				map[string]any{
					"title":       "Smart Home IoT Application",
					"description": "Mobile app to control and monitor connected home devices with advanced automation features.",
					"image":       "/static/placeholder.svg",
					"category":    "IoT Solutions",
				},
			},
		},
		SectionContact: {
			"title":    "Get in Touch",
			"subtitle": "Have a project in mind? We'd love to hear from you.",
			"address":  "123 Business Avenue, Suite 200, San Francisco, CA 94103",
			"email":    "info@acmeinc.com",
			"phone":    "(555) 123-4567",
		},
	}
}

// DefaultSection returns the built-in value for a single section,
// or nil for an unknown section name.
func DefaultSection(name string) SectionData {
	return DefaultContent()[name]
}

// DecodeSection converts a SectionData map into a typed view struct via a
// JSON round-trip. The target must be a pointer to one of the *Content types.
func DecodeSection(data SectionData, target any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encoding section: %w", err)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decoding section: %w", err)
	}
	return nil
}

// Clone returns a deep copy of the section data. Callers mutate copies,
// never the cached maps themselves.
func (d SectionData) Clone() SectionData {
	if d == nil {
		return nil
	}
	out := make(SectionData, len(d))
	for k, v := range d {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(val))
		for k, inner := range val {
			m[k] = cloneValue(inner)
		}
		return m
	case []any:
		s := make([]any, len(val))
		for i, inner := range val {
			s[i] = cloneValue(inner)
		}
		return s
	default:
		return v
	}
}
