package content

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"
)

const dataJSHeader = `/**
 * Site Data - JSON structure for academic homepage
 * Edit this file to update the website content
 * Generated: %s
 */

const siteData = `

// EncodeDataJS writes s as a data.js source file: a generated header comment
// followed by a siteData constant holding the JSON form.
func EncodeDataJS(w io.Writer, s Site, generated time.Time) error {
	b, err := MarshalIndent(s)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	fmt.Fprintf(&buf, dataJSHeader, isoTime(generated))
	buf.Write(b)
	buf.WriteString(";\n")
	_, err = w.Write(buf.Bytes())
	return err
}

// EncodeMarkdown writes a human readable summary of s. News HTML is stripped.
func EncodeMarkdown(w io.Writer, s Site, generated time.Time) error {
	s = s.Clone()
	s.Normalize()

	var b strings.Builder
	b.WriteString("# Academic Homepage Data\n\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", isoTime(generated))

	b.WriteString("## Profile\n\n")
	fmt.Fprintf(&b, "- Name: %s\n", s.Profile.Name["en"])
	fmt.Fprintf(&b, "- Title: %s\n", s.Profile.Title)
	fmt.Fprintf(&b, "- Institution: %s\n", s.Profile.Institution.Name)
	fmt.Fprintf(&b, "- Email: %s\n", s.Profile.Email)
	fmt.Fprintf(&b, "- Location: %s\n\n", s.Profile.Location)

	b.WriteString("## About\n\n")
	b.WriteString(strings.Join(s.About.Description, "\n\n"))
	b.WriteString("\n\n### Research Interests\n\n")
	b.WriteString(strings.Join(s.About.ResearchInterests, ", "))
	b.WriteString("\n\n")

	b.WriteString("## Publications\n\n")
	for i, p := range s.Publications.Items {
		fmt.Fprintf(&b, "### %d. %s\n\n", i+1, p.Title)
		fmt.Fprintf(&b, "**Authors:** %s\n\n", p.Authors)
		fmt.Fprintf(&b, "**Venue:** %s\n\n", p.Venue)
		if len(p.Badges) > 0 {
			fmt.Fprintf(&b, "**Badges:** %s\n\n", strings.Join(p.Badges, ", "))
		}
		if len(p.Links) > 0 {
			links := make([]string, len(p.Links))
			for j, l := range p.Links {
				links[j] = fmt.Sprintf("[%s](%s)", l.Label, l.URL)
			}
			fmt.Fprintf(&b, "**Links:** %s\n\n", strings.Join(links, " | "))
		}
		b.WriteString("---\n\n")
	}

	b.WriteString("## Awards\n\n")
	for _, a := range s.Awards {
		fmt.Fprintf(&b, "- **%s** - %s (%s)\n", a.Date, a.Name, a.Institution)
	}
	b.WriteString("\n\n")

	b.WriteString("## Experience\n\n")
	for _, e := range s.Experience {
		fmt.Fprintf(&b, "### %s\n\n", e.Date)
		fmt.Fprintf(&b, "**%s**\n\n", e.Title)
		fmt.Fprintf(&b, "%s\n\n", e.Institution)
		if e.Supervisor != "" {
			fmt.Fprintf(&b, "*%s*\n\n", e.Supervisor)
		}
		b.WriteString("---\n\n")
	}

	b.WriteString("## News\n\n")
	for _, n := range s.News {
		fmt.Fprintf(&b, "- **%s** %s %s\n", n.Date, n.Icon, StripHTML(n.Content))
	}
	b.WriteString("\n\n")

	b.WriteString("## Services\n\n")
	b.WriteString("### Reviewer\n\n")
	for _, r := range s.Services.Reviewer {
		fmt.Fprintf(&b, "- %s\n", r)
	}
	b.WriteString("\n\n")
	if len(s.Services.PCMember) > 0 {
		b.WriteString("### PC Member\n\n")
		for _, p := range s.Services.PCMember {
			fmt.Fprintf(&b, "- %s\n", p)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func isoTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}
