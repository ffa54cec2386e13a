package registration

import (
	"strings"
)

// SummaryLine is one labelled value of a registration summary.
type SummaryLine struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Summary lists the details shown to the attendee after registering.
// Special requirements are only included when present.
func (r Record) Summary() []SummaryLine {
	lines := []SummaryLine{
		{"Full Name", r.FullName()},
		{"Email", r.Email},
		{"Phone", r.Phone},
		{"Gender", r.Gender},
		{"College", r.College},
		{"Department", r.Department},
		{"Year", r.Year},
		{"Student ID", r.StudentID},
		{"Events Interested In", FormatList(r.EventsInterested)},
		{"T-Shirt Size", r.TShirtSize},
		{"Dietary Restrictions", orNone(FormatList(r.DietaryRestrictions))},
	}
	if r.SpecialRequirements != nil && *r.SpecialRequirements != "" {
		lines = append(lines, SummaryLine{"Special Requirements", *r.SpecialRequirements})
	}
	lines = append(lines, SummaryLine{"Heard About Us From", r.HearAboutUs})
	return lines
}

// FormatList capitalises each value and replaces its first hyphen with a
// space, joining the results with commas: ["gluten-free"] -> "Gluten free".
func FormatList(values []string) string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		v = strings.Replace(v, "-", " ", 1)
		out = append(out, strings.ToUpper(v[:1])+v[1:])
	}
	return strings.Join(out, ", ")
}

func orNone(s string) string {
	if s == "" {
		return "None"
	}
	return s
}
