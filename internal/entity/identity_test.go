package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeFrontPriority(t *testing.T) {
	front := &ExtractedIdentity{
		IDNumber:     "12345678",
		FullName:     "John Kamau",
		DocumentType: NationalID,
	}
	back := &ExtractedIdentity{
		IDNumber:        "99999999",
		DateOfIssue:     "01/01/2010",
		DistrictOfBirth: "Kisumu",
		DocumentType:    UnknownDoc,
	}

	merged := front.Merge(back)

	assert.Equal(t, "12345678", merged.IDNumber)
	assert.Equal(t, "John Kamau", merged.FullName)
	assert.Equal(t, NationalID, merged.DocumentType)
	assert.Equal(t, "01/01/2010", merged.DateOfIssue)
	assert.Equal(t, "Kisumu", merged.DistrictOfBirth)
}

func TestMergeUnknownDocumentTypeReplaced(t *testing.T) {
	front := &ExtractedIdentity{DocumentType: UnknownDoc}
	back := &ExtractedIdentity{DocumentType: HudumaCard}

	assert.Equal(t, HudumaCard, front.Merge(back).DocumentType)
}

func TestMergeNilBack(t *testing.T) {
	front := &ExtractedIdentity{IDNumber: "12345678"}
	assert.Same(t, front, front.Merge(nil))
}
