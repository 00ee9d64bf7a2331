// Package landing composes the curated home page: hero, call-to-action
// buttons, the learning path cards, the daily schedule and a closing call to
// action. Every link targets a site-relative route and is validated by the
// build before rendering.
package landing

import (
	"time"

	"github.com/a-h/templ"

	"git.home.luguber.info/inful/studysite/internal/config"
)

// Page is the composed landing page.
type Page struct {
	Title           string // document <title>
	Description     string
	Hero            Hero
	OverviewHeading string
	Cards           []Card
	Schedule        Schedule
	CallToAction    CallToAction
	Copyright       string
}

type Hero struct {
	Title   string
	Tagline string
	Buttons []Button
}

// Button is a link styled as a button.
type Button struct {
	Label   string
	To      string
	Variant string // primary|secondary|outline
	Large   bool
	Block   bool
	Extra   string
}

// Class returns the button's CSS classes.
func (b Button) Class() string {
	return templ.Classes(
		"button",
		"button--"+b.Variant,
		templ.KV("button--lg", b.Large),
		templ.KV("button--block", b.Block),
		templ.KV(b.Extra, b.Extra != ""),
	).String()
}

// Card summarizes one week of the learning path.
type Card struct {
	Icon     string
	Week     string
	Topic    string
	Summary  string
	Bullets  []string
	Button   Button
	Featured bool // rendered wider, centered and with a stronger shadow
}

func (c Card) ColumnClass() string {
	return templ.Classes(
		"col",
		templ.KV("col--4 margin-bottom--lg", !c.Featured),
		templ.KV("col--6 col--offset-3", c.Featured),
	).String()
}

func (c Card) CardClass() string {
	return templ.Classes(
		"card",
		templ.KV("shadow--md", !c.Featured),
		templ.KV("shadow--lg", c.Featured),
	).String()
}

type Schedule struct {
	Heading  string
	Subtitle string
	Slots    []Slot
}

type Slot struct {
	Icon     string
	Name     string
	Hours    string
	Activity string
}

type CallToAction struct {
	Heading string
	Text    string
	Button  Button
}

// Compose builds the landing page for site. The copyright year is taken from now.
func Compose(site *config.Site, now time.Time) Page {
	week := func(icon, name, topic, summary string, bullets []string, to string, featured bool) Card {
		return Card{
			Icon:     icon,
			Week:     name,
			Topic:    topic,
			Summary:  summary,
			Bullets:  bullets,
			Featured: featured,
			Button:   Button{Label: "Start " + name, To: to, Variant: "primary", Block: featured},
		}
	}

	return Page{
		Title:       "Welcome to " + site.Title,
		Description: "4-week intensive learning path to become a certified Salesforce Platform Developer I",
		Hero: Hero{
			Title:   site.Title,
			Tagline: site.Tagline,
			Buttons: []Button{
				{Label: "Get Started Now 🚀", To: "/docs/GETTING_STARTED", Variant: "secondary", Large: true},
				{Label: "Quick Reference 📚", To: "/docs/QUICK_REFERENCE", Variant: "outline", Large: true},
			},
		},
		OverviewHeading: "Learning Path Overview",
		Cards: []Card{
			week("📅", "Week 1", "Admin & Flow",
				"Foundation: Understand Salesforce platform capabilities without code.",
				[]string{"Objects & Security", "Flow Builder", "Project Management App"}, "/docs/week1", false),
			week("💻", "Week 2", "Apex & SOQL",
				"Backend: Master Salesforce's Java-like programming language.",
				[]string{"Triggers & Classes", "SOQL Queries", "Test Coverage"}, "/docs/week2", false),
			week("⚡", "Week 3", "Lightning Web Components",
				"Frontend: Build modern web components on Salesforce.",
				[]string{"@wire Service", "Event Handling", "Revenue Dashboard"}, "/docs/week3", false),
			week("🎯", "Week 4", "Exam Preparation",
				"Intensive study and AI integration for certification.",
				[]string{"500+ Practice Questions", "Governor Limits", "Prompt Builder"}, "/docs/week4", true),
		},
		Schedule: Schedule{
			Heading:  "Daily Schedule",
			Subtitle: `Disciplined "steel" routine for maximum results`,
			Slots: []Slot{
				{Icon: "🌅", Name: "Morning", Hours: "8:00 - 12:00", Activity: "Trailhead Theory"},
				{Icon: "☀️", Name: "Afternoon", Hours: "13:00 - 18:00", Activity: "Coding Practice"},
				{Icon: "🌙", Name: "Evening", Hours: "20:00 - 22:00", Activity: "Practice Questions"},
			},
		},
		CallToAction: CallToAction{
			Heading: "💪 Ready to Start?",
			Text:    "Begin your 4-week journey to becoming a certified Salesforce Platform Developer I",
			Button:  Button{Label: "Start Learning Now 🚀", To: "/docs/GETTING_STARTED", Variant: "primary", Large: true, Extra: "margin-top--sm"},
		},
		Copyright: site.Copyright(now),
	}
}

// StandardCards returns the regular (non featured) cards.
func (p Page) StandardCards() []Card {
	var out []Card
	for _, c := range p.Cards {
		if !c.Featured {
			out = append(out, c)
		}
	}
	return out
}

// FeaturedCards returns the cards rendered in their own row.
func (p Page) FeaturedCards() []Card {
	var out []Card
	for _, c := range p.Cards {
		if c.Featured {
			out = append(out, c)
		}
	}
	return out
}

// Targets lists every link target of the page in display order.
func (p Page) Targets() []string {
	var out []string
	for _, b := range p.Hero.Buttons {
		out = append(out, b.To)
	}
	for _, c := range p.Cards {
		out = append(out, c.Button.To)
	}
	return append(out, p.CallToAction.Button.To)
}
