// Package noise decides whether an extracted candidate string is a plausible
// performer name or surrounding junk (dates, ticketing copy, navigation
// labels, OCR artifacts).
//
// Rules favor strong structural signals: admitting the occasional piece of
// noise is cheaper than dropping a real name.
package noise

import (
	"regexp"
	"strings"
	"unicode"
)

// Rule is a single named noise predicate. A candidate matching any rule in a
// profile is classified as noise.
type Rule struct {
	Name  string
	Match func(s string) bool
}

// Profile is an ordered list of rules for one input source.
type Profile struct {
	rules []Rule
}

// IsNoise reports whether the candidate matches any rule in the profile.
func (p *Profile) IsNoise(candidate string) bool {
	_, noisy := p.Explain(candidate)
	return noisy
}

// Explain returns the name of the first matching rule, if any.
func (p *Profile) Explain(candidate string) (rule string, noisy bool) {
	s := strings.TrimSpace(candidate)
	for _, r := range p.rules {
		if r.Match(s) {
			return r.Name, true
		}
	}
	return "", false
}

// Rules returns the profile's rules in evaluation order.
func (p *Profile) Rules() []Rule { return p.rules }

var (
	// Dates in the forms posters and lineup pages use: "14/06", "14-16",
	// "14th June", "June 14-16", "Friday 21", bare years.
	datePattern = regexp.MustCompile(`(?i)^(` +
		`\d{1,2}[/\-.]\d{1,2}([/\-.]\d{2,4})?|` +
		`\d{1,2}\s*(st|nd|rd|th)?\s*(of\s+)?(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)\w*|` +
		`(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)\w*\s+\d{1,2}\s*(st|nd|rd|th)?(\s*[-–]\s*\d{1,2}\s*(st|nd|rd|th)?)?|` +
		`(mon|tue|wed|thu|fri|sat|sun)\w*\s+\d{1,2}|` +
		`\d{1,2}\s*(st|nd|rd|th)\s+(mon|tue|wed|thu|fri|sat|sun)\w*|` +
		`20\d{2}|19\d{2}` +
		`)$`)

	// Poster/ticketing vocabulary: stage and day labels, calls to action,
	// legal boilerplate, domains, hashtags.
	posterVocabulary = regexp.MustCompile(`(?i)^(` +
		`presents?|featuring|feat\.?|ft\.?|with|and more|` +
		`tickets?|buy\s+(now|tickets?)|get\s+tickets?|on\s+sale|sold\s+out|presale|` +
		`vip|general\s+admission|early\s+bird|` +
		`main\s+stage\s*\d*|stage\s*\d*|tent|arena|` +
		`day\s*\d+|day\s+(one|two|three)|` +
		`doors?\s+open|set\s+times?|schedule|line\s*-?\s*up|` +
		`sponsored\s+by|presented\s+by|powered\s+by|` +
		`follow\s+us|share|copyright|©|all\s+rights|` +
		`terms|privacy|cookie|info|www\..*|` +
		`sign\s+up|subscribe|newsletter|rsvp|` +
		`more\s+(info|artists?|acts?|tba|tbc)|` +
		`free|ages?\s+\d+|all\s+ages|18\+|21\+|` +
		`parking|camping|lodging|directions|map|` +
		`food|drink|merch|vendor|` +
		`fest(ival)?(\s+\d{4})?|music\s+festival|` +
		`phase\s+\d+|announcement|reveal|` +
		`[a-z0-9-]+\.(com|org|net|co|io|uk)|` +
		`#\w+` +
		`)$`)

	// Web-page vocabulary: the poster terms plus navigation and footer labels.
	webVocabulary = regexp.MustCompile(`(?i)^(` +
		`buy\s+tickets?|get\s+tickets?|sold\s+out|on\s+sale|presale|` +
		`vip|general\s+admission|early\s+bird|` +
		`main\s+stage\s*\d*|stage\s*\d*|tent|arena|` +
		`day\s*\d+|friday|saturday|sunday|monday|tuesday|wednesday|thursday|` +
		`jan(uary)?|feb(ruary)?|mar(ch)?|apr(il)?|may|june?|july?|` +
		`aug(ust)?|sep(tember)?|oct(ober)?|nov(ember)?|dec(ember)?|` +
		`\d{1,2}[:/]\d{2}|\d{1,2}\s*(am|pm)|` +
		`doors?\s+open|set\s+times?|schedule|line\s*-?\s*up|` +
		`sponsored\s+by|presented\s+by|powered\s+by|` +
		`follow\s+us|share|copyright|©|\d{4}|` +
		`terms|privacy|cookie|faq|contact|about|home|menu|` +
		`sign\s+up|subscribe|newsletter|email|` +
		`more\s+info|learn\s+more|read\s+more|see\s+more|` +
		`fest(ival)?(\s+\d{4})?|music\s+festival|` +
		`free|ages?\s+\d+|all\s+ages|18\+|21\+|` +
		`parking|camping|lodging|directions|map|` +
		`food|drink|merch|vendor` +
		`)$`)

	sentencePunct = regexp.MustCompile(`[.!?;]`)
	multiComma    = regexp.MustCompile(`,.*,`)
)

func tooShort(s string) bool { return len(s) < 2 }

func hasColon(s string) bool { return strings.Contains(s, ":") }

func mostlyDigits(s string) bool {
	digits := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			digits++
		}
	}
	return digits*2 > len(s)
}

func tooManyWords(s string) bool { return len(strings.Fields(s)) > 6 }

func tooFewLetters(s string) bool {
	letters := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			letters++
		}
	}
	return letters < 2
}

// Web returns the rule profile for candidates extracted from web pages.
// Mid-name punctuation is tolerated here: page markup already separates
// names, so dots in a name like "Fred again.." carry no structural signal.
func Web() *Profile {
	return &Profile{rules: []Rule{
		{Name: "too-short", Match: tooShort},
		{Name: "multiple-commas", Match: multiComma.MatchString},
		{Name: "colon", Match: hasColon},
		{Name: "date", Match: datePattern.MatchString},
		{Name: "web-vocabulary", Match: webVocabulary.MatchString},
		{Name: "mostly-digits", Match: mostlyDigits},
		{Name: "too-many-words", Match: tooManyWords},
		{Name: "too-few-letters", Match: tooFewLetters},
	}}
}

// OCR returns the rule profile for candidates produced by text recognition.
// OCR output loses layout, so sentence punctuation is a strong noise signal
// that would be a false positive on structured web extractions.
func OCR() *Profile {
	return &Profile{rules: []Rule{
		{Name: "too-short", Match: tooShort},
		{Name: "sentence-punctuation", Match: sentencePunct.MatchString},
		{Name: "multiple-commas", Match: multiComma.MatchString},
		{Name: "colon", Match: hasColon},
		{Name: "date", Match: datePattern.MatchString},
		{Name: "poster-vocabulary", Match: posterVocabulary.MatchString},
		{Name: "mostly-digits", Match: mostlyDigits},
		{Name: "too-many-words", Match: tooManyWords},
		{Name: "too-few-letters", Match: tooFewLetters},
	}}
}
