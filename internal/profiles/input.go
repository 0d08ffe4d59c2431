package profiles

import (
	"strings"
	"time"

	"devconnect/internal/apperr"
)

// Input is the flat profile payload. Blank fields are treated as absent.
type Input struct {
	Company        string `json:"company"`
	Website        string `json:"website"`
	Location       string `json:"location"`
	Bio            string `json:"bio"`
	Status         string `json:"status"`
	GitHubUsername string `json:"githubusername"`
	Skills         string `json:"skills"`
	Youtube        string `json:"youtube"`
	Twitter        string `json:"twitter"`
	Facebook       string `json:"facebook"`
	Linkedin       string `json:"linkedin"`
	Instagram      string `json:"instagram"`
}

// Fields is the validated write set built from an Input: the values to store
// and the columns that carry them.
type Fields struct {
	Profile Profile
	Columns []string
}

// BuildFields validates in and assembles the partial write set. Only present
// fields are assigned and listed in Columns.
func BuildFields(in Input) (Fields, error) {
	var v apperr.Validator
	v.Required("status", in.Status, "Status is required")
	v.Required("skills", in.Skills, "Skills is required")
	if err := v.Err(); err != nil {
		return Fields{}, err
	}

	var f Fields
	set := func(column, value string, dst *string) {
		value = strings.TrimSpace(value)
		if value == "" {
			return
		}
		*dst = value
		f.Columns = append(f.Columns, column)
	}

	p := &f.Profile
	set("company", in.Company, &p.Company)
	set("website", in.Website, &p.Website)
	set("location", in.Location, &p.Location)
	set("bio", in.Bio, &p.Bio)
	set("status", in.Status, &p.Status)
	set("github_username", in.GitHubUsername, &p.GitHubUsername)

	if skills := SplitSkills(in.Skills); len(skills) > 0 {
		p.Skills = skills
		f.Columns = append(f.Columns, "skills")
	}

	set("social_youtube", in.Youtube, &p.Social.Youtube)
	set("social_twitter", in.Twitter, &p.Social.Twitter)
	set("social_facebook", in.Facebook, &p.Social.Facebook)
	set("social_linkedin", in.Linkedin, &p.Social.Linkedin)
	set("social_instagram", in.Instagram, &p.Social.Instagram)

	return f, nil
}

// SplitSkills splits a comma separated list, trimming each element and
// dropping blanks while keeping order.
func SplitSkills(raw string) []string {
	var skills []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			skills = append(skills, s)
		}
	}
	return skills
}

// ExperienceInput is the payload for a new experience entry.
type ExperienceInput struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	From        string `json:"from"`
	To          string `json:"to"`
	Current     bool   `json:"current"`
	Description string `json:"description"`
}

// Build validates the payload and returns the entry to store.
func (in ExperienceInput) Build() (*Experience, error) {
	var v apperr.Validator
	v.Required("title", in.Title, "Title is required")
	v.Required("company", in.Company, "Company is required")
	v.Required("from", in.From, "From date is required")
	from, to := parseRange(&v, in.From, in.To, in.Current)
	if err := v.Err(); err != nil {
		return nil, err
	}

	return &Experience{
		Title:       strings.TrimSpace(in.Title),
		Company:     strings.TrimSpace(in.Company),
		Location:    strings.TrimSpace(in.Location),
		From:        from,
		To:          to,
		Current:     in.Current,
		Description: strings.TrimSpace(in.Description),
	}, nil
}

// EducationInput is the payload for a new education entry.
type EducationInput struct {
	School       string `json:"school"`
	Degree       string `json:"degree"`
	FieldOfStudy string `json:"fieldofstudy"`
	From         string `json:"from"`
	To           string `json:"to"`
	Current      bool   `json:"current"`
	Description  string `json:"description"`
}

// Build validates the payload and returns the entry to store.
func (in EducationInput) Build() (*Education, error) {
	var v apperr.Validator
	v.Required("school", in.School, "School is required")
	v.Required("degree", in.Degree, "Degree is required")
	v.Required("fieldofstudy", in.FieldOfStudy, "Field of study is required")
	v.Required("from", in.From, "From date is required")
	from, to := parseRange(&v, in.From, in.To, in.Current)
	if err := v.Err(); err != nil {
		return nil, err
	}

	return &Education{
		School:       strings.TrimSpace(in.School),
		Degree:       strings.TrimSpace(in.Degree),
		FieldOfStudy: strings.TrimSpace(in.FieldOfStudy),
		From:         from,
		To:           to,
		Current:      in.Current,
		Description:  strings.TrimSpace(in.Description),
	}, nil
}

var dateLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04"}

// ParseDate accepts a calendar date, an RFC 3339 timestamp, or the value of an
// HTML datetime-local input.
func ParseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// parseRange records invalid dates on v. A current entry has no end date.
func parseRange(v *apperr.Validator, rawFrom, rawTo string, current bool) (time.Time, *time.Time) {
	var from time.Time
	if strings.TrimSpace(rawFrom) != "" {
		t, ok := ParseDate(rawFrom)
		v.Check(ok, "from", rawFrom, "From date is invalid")
		from = t
	}

	if current || strings.TrimSpace(rawTo) == "" {
		return from, nil
	}

	to, ok := ParseDate(rawTo)
	v.Check(ok, "to", rawTo, "To date is invalid")
	if !ok {
		return from, nil
	}
	v.Check(from.IsZero() || !to.Before(from), "to", rawTo, "To date must not be before From date")
	return from, &to
}
