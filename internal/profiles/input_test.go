package profiles

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devconnect/internal/apperr"
)

func TestSplitSkills(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"trims and keeps order", "a, b ,c", []string{"a", "b", "c"}},
		{"single", "go", []string{"go"}},
		{"drops blanks", "go,, ,rust,", []string{"go", "rust"}},
		{"only separators", " , ", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitSkills(tt.raw))
		})
	}
}

func TestBuildFields(t *testing.T) {
	t.Run("requires status and skills", func(t *testing.T) {
		_, err := BuildFields(Input{})

		var appErr *apperr.Error
		require.ErrorAs(t, err, &appErr)
		require.Len(t, appErr.Fields, 2)
		assert.Equal(t, "Status is required", appErr.Fields[0].Msg)
		assert.Equal(t, "status", appErr.Fields[0].Param)
		assert.Equal(t, "Skills is required", appErr.Fields[1].Msg)
	})

	t.Run("only present fields become columns", func(t *testing.T) {
		f, err := BuildFields(Input{
			Status:  "Developer",
			Skills:  "go, sql",
			Company: "  ",
			Twitter: "https://twitter.com/dev",
		})
		require.NoError(t, err)

		assert.Equal(t, []string{"status", "skills", "social_twitter"}, f.Columns)
		assert.Equal(t, "Developer", f.Profile.Status)
		assert.Equal(t, []string{"go", "sql"}, f.Profile.Skills)
		assert.Equal(t, "https://twitter.com/dev", f.Profile.Social.Twitter)
		assert.Empty(t, f.Profile.Company)
	})

	t.Run("no social columns when all links are absent", func(t *testing.T) {
		f, err := BuildFields(Input{Status: "Student", Skills: "html"})
		require.NoError(t, err)

		for _, c := range f.Columns {
			assert.NotContains(t, c, "social_")
		}
	})
}

func TestExperienceInputBuild(t *testing.T) {
	t.Run("required fields", func(t *testing.T) {
		_, err := ExperienceInput{}.Build()

		var appErr *apperr.Error
		require.ErrorAs(t, err, &appErr)
		msgs := make([]string, 0, len(appErr.Fields))
		for _, f := range appErr.Fields {
			msgs = append(msgs, f.Msg)
		}
		assert.Equal(t, []string{"Title is required", "Company is required", "From date is required"}, msgs)
	})

	t.Run("parses dates", func(t *testing.T) {
		exp, err := ExperienceInput{Title: "Eng", Company: "Acme", From: "2020-01-01", To: "2021-06-30"}.Build()
		require.NoError(t, err)

		assert.Equal(t, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), exp.From)
		require.NotNil(t, exp.To)
		assert.Equal(t, time.Date(2021, 6, 30, 0, 0, 0, 0, time.UTC), *exp.To)
	})

	t.Run("current entry has no end date", func(t *testing.T) {
		exp, err := ExperienceInput{Title: "Eng", Company: "Acme", From: "2020-01-01", To: "2021-01-01", Current: true}.Build()
		require.NoError(t, err)
		assert.Nil(t, exp.To)
		assert.True(t, exp.Current)
	})

	t.Run("rejects bad dates", func(t *testing.T) {
		_, err := ExperienceInput{Title: "Eng", Company: "Acme", From: "yesterday"}.Build()
		assert.True(t, apperr.IsKind(err, apperr.KindValidation))

		_, err = ExperienceInput{Title: "Eng", Company: "Acme", From: "2021-01-01", To: "2020-01-01"}.Build()
		assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	})
}

func TestEducationInputBuild(t *testing.T) {
	_, err := EducationInput{From: "2019-09-01"}.Build()

	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	require.Len(t, appErr.Fields, 3)
	assert.Equal(t, "School is required", appErr.Fields[0].Msg)
	assert.Equal(t, "Degree is required", appErr.Fields[1].Msg)
	assert.Equal(t, "Field of study is required", appErr.Fields[2].Msg)

	edu, err := EducationInput{
		School: "MIT", Degree: "BSc", FieldOfStudy: "CS", From: "2019-09-01T00:00:00Z",
	}.Build()
	require.NoError(t, err)
	assert.Equal(t, "CS", edu.FieldOfStudy)
	assert.Nil(t, edu.To)
}

func TestParseDate(t *testing.T) {
	for _, raw := range []string{"2020-01-02", "2020-01-02T10:00:00Z", "2020-01-02T10:00"} {
		d, ok := ParseDate(raw)
		assert.True(t, ok, raw)
		assert.Equal(t, 2020, d.Year())
	}
	_, ok := ParseDate("02/01/2020")
	assert.False(t, ok)
}
