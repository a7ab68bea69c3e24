// Package idcard parses the unstructured text an OCR engine recognizes on a
// Kenyan identity document into structured fields. Matching is a cascade of
// label-anchored rules; the capture region of each rule runs from its label
// to the next recognized label or the end of the text, so rules stay
// declarative and new document layouts only add table entries.
package idcard

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"ProjectKYC/internal/entity"
)

// ID-number digit lengths observed across Kenyan documents differ between
// sources; both bounds are deployment configuration with these defaults.
const (
	DefaultMinDigits = 7
	DefaultMaxDigits = 9
)

var digitsOnly = regexp.MustCompile(`^\d+$`)

// ValidateNumber reports whether id is a plausible Kenyan ID number under the
// configured digit-length bounds.
func ValidateNumber(id string, minDigits, maxDigits int) bool {
	return len(id) >= minDigits && len(id) <= maxDigits && digitsOnly.MatchString(id)
}

// Extract parses recognized text into an ExtractedIdentity. It never fails:
// empty text yields a record with every optional field absent, and an
// internal matching panic degrades to a partial record with a diagnostic
// note.
func Extract(rawText string) (result *entity.ExtractedIdentity) {
	result = &entity.ExtractedIdentity{RawText: rawText}

	defer func() {
		if r := recover(); r != nil {
			result.Note = fmt.Sprintf("partial extraction: %v", r)
		}
	}()

	text := strings.ToLower(rawText)
	if strings.TrimSpace(text) == "" {
		return result
	}

	result.DocumentType = classify(text)

	boundaries := boundaryStarts(text)
	found := make(map[field]string)

	for _, r := range rules {
		if r.scope != "" && r.scope != result.DocumentType {
			continue
		}
		if _, ok := found[r.field]; ok {
			continue
		}

		loc := r.label.FindStringIndex(text)
		if loc == nil {
			continue
		}

		end := len(text)
		if b := nextBoundary(boundaries, loc[1]); b >= 0 {
			end = b
		}
		region := text[loc[1]:end]
		match := r.value.FindString(region)
		if match == "" {
			continue
		}

		if value := r.clean(match); value != "" {
			found[r.field] = value
		}
	}

	result.IDNumber = found[fieldIDNumber]
	result.FullName = found[fieldFullName]
	result.DateOfBirth = found[fieldDateOfBirth]
	result.Gender = entity.Gender(found[fieldGender])
	result.Nationality = found[fieldNationality]
	result.DistrictOfBirth = found[fieldDistrictOfBirth]
	result.PlaceOfIssue = found[fieldPlaceOfIssue]
	result.DateOfIssue = found[fieldDateOfIssue]
	result.ExpiryDate = found[fieldExpiryDate]

	// National IDs print SURNAME then GIVEN NAME(S); compose given-name-first
	// so the extracted name reads the way a person writes it.
	if result.FullName == "" {
		surname, givenNames := found[fieldSurname], found[fieldGivenNames]
		switch {
		case surname != "" && givenNames != "":
			result.FullName = givenNames + " " + surname
		case surname != "":
			result.FullName = surname
		case givenNames != "":
			result.FullName = givenNames
		}
	}

	if result.IDNumber == "" {
		result.IDNumber = fallbackIDNumber.FindString(text)
	}
	if result.FullName == "" {
		result.FullName = fallbackName(rawText)
	}

	return result
}

func classify(lowerText string) entity.DocumentType {
	if strings.Contains(lowerText, "huduma") {
		return entity.HudumaCard
	}
	if strings.Contains(lowerText, "national") && strings.Contains(lowerText, "identity") {
		return entity.NationalID
	}
	return entity.UnknownDoc
}

func boundaryStarts(lowerText string) []int {
	var starts []int
	for _, label := range boundaryLabels {
		for _, loc := range label.FindAllStringIndex(lowerText, -1) {
			starts = append(starts, loc[0])
		}
	}
	sort.Ints(starts)
	return starts
}

func nextBoundary(starts []int, after int) int {
	i := sort.SearchInts(starts, after)
	if i < len(starts) {
		return starts[i]
	}
	return -1
}

// fallbackName scans the first lines of the document for something shaped
// like a printed name: at least two words, each starting with an uppercase
// letter, no digits, and none of the document's own header words.
func fallbackName(rawText string) string {
	lines := strings.Split(rawText, "\n")
	if len(lines) > 5 {
		lines = lines[:5]
	}

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.ContainsFunc(line, unicode.IsDigit) {
			continue
		}

		words := strings.Fields(line)
		if len(words) < 2 {
			continue
		}

		nameLike := true
		for _, word := range words {
			runes := []rune(word)
			if !unicode.IsUpper(runes[0]) {
				nameLike = false
				break
			}
			if _, header := headerKeywords[strings.ToLower(word)]; header {
				nameLike = false
				break
			}
		}
		if nameLike {
			return cleanTitle(strings.ToLower(line))
		}
	}
	return ""
}
