package resume

import (
	"strings"
	"unicode/utf8"

	"github.com/jonathan/career-path/internal/types"
)

// CommonSkills are the keywords searched for in résumé text.
var CommonSkills = []string{"Python", "Java", "JavaScript", "SQL", "React", "AWS", "Docker", "Machine Learning"}

// Fallback values when nothing can be derived from the text.
var (
	DefaultSkills    = []string{"Programming", "Problem Solving"}
	DefaultInterests = []string{"Technology", "Innovation"}
)

// Prediction defaults for résumé uploads, which carry no structured
// education or experience.
const (
	DefaultEducation       = "Bachelor"
	DefaultYearsExperience = 2

	// MaxStoredChars is how much résumé text is kept with the record.
	MaxStoredChars = 5000
)

// ExtractSkills returns the CommonSkills that occur in text, matched as
// case-insensitive substrings, in list order. "Java" therefore also
// matches text that only mentions JavaScript.
func ExtractSkills(text string) []string {
	lower := strings.ToLower(text)
	var skills []string
	for _, skill := range CommonSkills {
		if strings.Contains(lower, strings.ToLower(skill)) {
			skills = append(skills, skill)
		}
	}
	if len(skills) == 0 {
		return append([]string(nil), DefaultSkills...)
	}
	return skills
}

// ParsedData is the structured part stored with a résumé.
type ParsedData struct {
	Skills    []string `json:"skills"`
	Interests []string `json:"interests"`
}

// Parse derives ParsedData from résumé text.
func Parse(text string) ParsedData {
	return ParsedData{
		Skills:    ExtractSkills(text),
		Interests: append([]string(nil), DefaultInterests...),
	}
}

// CareerInput builds the prediction input for parsed résumé data.
func (p ParsedData) CareerInput() *types.CareerInput {
	return &types.CareerInput{
		Education:       DefaultEducation,
		YearsExperience: DefaultYearsExperience,
		Skills:          p.Skills,
		Interests:       p.Interests,
		Certifications:  []string{},
	}
}

// Sanitize makes extracted text storable in a Postgres TEXT column:
// invalid UTF-8 is replaced and NUL bytes are dropped.
func Sanitize(s string) string {
	s = strings.ToValidUTF8(s, string(utf8.RuneError))
	return strings.ReplaceAll(s, "\x00", "")
}

// Truncate cuts s to at most n characters without splitting a rune.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
