package idcard

import (
	"regexp"
	"strings"

	"ProjectKYC/internal/entity"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type field int

const (
	fieldIDNumber field = iota
	fieldSurname
	fieldGivenNames
	fieldFullName
	fieldDateOfBirth
	fieldGender
	fieldNationality
	fieldDistrictOfBirth
	fieldPlaceOfIssue
	fieldDateOfIssue
	fieldExpiryDate
)

// rule is one labeled-field pattern: the label anchors the match, the value
// pattern runs over the capture region between the label and the next
// recognized label (or end of text). First successful match per field wins.
type rule struct {
	field field
	scope entity.DocumentType // empty scope applies to every document type
	label *regexp.Regexp
	value *regexp.Regexp
	clean func(string) string
}

var titleCaser = cases.Title(language.English)

var (
	valueDigits = regexp.MustCompile(`\d[\d ]*\d|\d`)
	valueToken  = regexp.MustCompile(`[a-z0-9]+`)
	valueDate   = regexp.MustCompile(`\d{1,2}\s*[.\-/]\s*\d{1,2}\s*[.\-/]\s*\d{2,4}`)
	valueName   = regexp.MustCompile(`[a-z][a-z'-]*(?:\s+[a-z][a-z'-]*)*`)
	valueWord   = regexp.MustCompile(`[a-z]+`)
	valuePlace  = regexp.MustCompile(`[a-z]+(?:\s+[a-z]+){0,2}`)
	valueGender = regexp.MustCompile(`\b(?:male|female|man|woman|mwanaume|mwanamke|m|f)\b`)
)

func cleanNumber(s string) string {
	return strings.ToUpper(strings.ReplaceAll(s, " ", ""))
}

func cleanDate(s string) string {
	return strings.Join(strings.Fields(s), "")
}

func cleanTitle(s string) string {
	return titleCaser.String(strings.TrimSpace(s))
}

func cleanGender(s string) string {
	switch strings.TrimSpace(s) {
	case "male", "man", "mwanaume", "m":
		return string(entity.Male)
	default:
		return string(entity.Female)
	}
}

// Label anchors. The Kenyan national ID uses English labels, the Huduma card
// mixes English and Swahili; patterns run against the lowercased text.
var (
	labelIDNumber    = regexp.MustCompile(`\bid\s*(?:no\.?|number)|namba\s*ya\s*kitambulisho`)
	labelSurname     = regexp.MustCompile(`surname`)
	labelGivenNames  = regexp.MustCompile(`given\s*names?`)
	labelFullNames   = regexp.MustCompile(`full\s*names?|jina\s*kamili`)
	labelNames       = regexp.MustCompile(`\bnames?\b`)
	labelDOB         = regexp.MustCompile(`date\s*of\s*birth|siku\s*ya\s*kuzaliwa|\bdob\b`)
	labelGender      = regexp.MustCompile(`\bsex\b|\bgender\b|\bjinsia\b`)
	labelNationality = regexp.MustCompile(`nationality|\buraia\b`)
	labelDistrict    = regexp.MustCompile(`district\s*of\s*birth|birth\s*district|place\s*of\s*birth|mahali\s*pa\s*kuzaliwa`)
	labelIssuePlace  = regexp.MustCompile(`place\s*of\s*issue|issued\s*at|issue\s*place`)
	labelIssueDate   = regexp.MustCompile(`date\s*of\s*issue|issued\s*on|tarehe\s*ya\s*kutolewa`)
	labelExpiry      = regexp.MustCompile(`date\s*of\s*expiry|expiry\s*date|tarehe\s*ya\s*kuisha`)

	// Boundary-only anchors: never extracted from, but they terminate the
	// capture region of the field before them.
	labelSerial  = regexp.MustCompile(`serial\s*number`)
	labelHeaders = regexp.MustCompile(`republic\s*of\s*kenya|jamhuri\s*ya\s*kenya|national\s*identity\s*card|huduma\s*(?:card|namba)|holder'?s?\s*sign`)
)

// boundaryLabels is every anchor that can end a capture region.
var boundaryLabels = []*regexp.Regexp{
	labelIDNumber, labelSurname, labelGivenNames, labelFullNames, labelNames,
	labelDOB, labelGender, labelNationality, labelDistrict, labelIssuePlace,
	labelIssueDate, labelExpiry, labelSerial, labelHeaders,
}

// rules is evaluated in order; the ordering resolves overlapping labels
// (leftmost/first-found wins) and keeps document-specific patterns ahead of
// generic ones.
var rules = []rule{
	{fieldIDNumber, entity.HudumaCard, labelIDNumber, valueToken, cleanNumber},
	{fieldIDNumber, "", labelIDNumber, valueDigits, cleanNumber},
	{fieldSurname, entity.NationalID, labelSurname, valueName, cleanTitle},
	{fieldGivenNames, entity.NationalID, labelGivenNames, valueName, cleanTitle},
	{fieldFullName, entity.HudumaCard, labelFullNames, valueName, cleanTitle},
	{fieldFullName, "", labelFullNames, valueName, cleanTitle},
	{fieldFullName, entity.HudumaCard, labelNames, valueName, cleanTitle},
	{fieldDateOfBirth, "", labelDOB, valueDate, cleanDate},
	{fieldGender, "", labelGender, valueGender, cleanGender},
	{fieldNationality, "", labelNationality, valueWord, cleanTitle},
	{fieldDistrictOfBirth, "", labelDistrict, valuePlace, cleanTitle},
	{fieldPlaceOfIssue, "", labelIssuePlace, valuePlace, cleanTitle},
	{fieldDateOfIssue, "", labelIssueDate, valueDate, cleanDate},
	{fieldExpiryDate, "", labelExpiry, valueDate, cleanDate},
}

// Fallback patterns for documents whose labels the recognizer mangled.
var (
	fallbackIDNumber = regexp.MustCompile(`\b\d{7,9}\b`)
	headerKeywords   = map[string]struct{}{
		"republic": {}, "kenya": {}, "national": {}, "identity": {},
		"card": {}, "huduma": {}, "namba": {}, "serial": {}, "jamhuri": {},
	}
)
