package entities

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDocumentID(t *testing.T) {
	id, err := ParseDocumentID(" 42 ")
	require.NoError(t, err)
	assert.Equal(t, DocumentID(42), id)
	assert.Equal(t, "42", id.String())

	for _, input := range []string{"", "0", "-3", "abc", "4.2"} {
		_, err := ParseDocumentID(input)
		assert.Error(t, err, "input %q", input)
	}
}

func TestIDFromLocation(t *testing.T) {
	tests := []struct {
		location string
		want     DocumentID
		wantErr  bool
	}{
		{location: "/api/slides/17", want: 17},
		{location: "http://localhost:8080/api/slides/17", want: 17},
		{location: "/api/slides/17/", want: 17},
		{location: "17", want: 17},
		{location: "", wantErr: true},
		{location: "/api/slides/", wantErr: true},
		{location: "/api/slides/abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			id, err := IDFromLocation(tt.location)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, id)
		})
	}
}

func TestAccessLevel_Validate(t *testing.T) {
	assert.NoError(t, AccessPublic.Validate())
	assert.NoError(t, AccessPrivate.Validate())
	assert.Error(t, AccessLevel("private").Validate())
	assert.Error(t, AccessLevel("").Validate())
}

func TestDocument_Summary(t *testing.T) {
	created := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	doc := &Document{
		ID:          5,
		Title:       "Deck",
		Subtitle:    "Sub",
		Author:      "Jo",
		PresentedAt: "GopherCon",
		Content:     "not in summary",
		AccessLevel: AccessPublic,
		CreatedAt:   created,
		UpdatedAt:   created.Add(time.Hour),
	}

	summary := doc.Summary()

	assert.Equal(t, DocumentSummary{
		ID:          5,
		Title:       "Deck",
		Subtitle:    "Sub",
		Author:      "Jo",
		PresentedAt: "GopherCon",
		AccessLevel: AccessPublic,
		CreatedAt:   created,
		UpdatedAt:   created.Add(time.Hour),
	}, summary)
}

func TestDocumentPayload_Validate(t *testing.T) {
	valid := DocumentPayload{Title: "Deck", AccessLevel: AccessPrivate}
	assert.NoError(t, valid.Validate())

	err := DocumentPayload{Title: " ", AccessLevel: AccessPrivate}.Validate()
	assert.ErrorIs(t, err, ErrValidation)

	err = DocumentPayload{Title: "Deck", AccessLevel: "SECRET"}.Validate()
	assert.ErrorIs(t, err, ErrValidation)
}

func TestParsedDocument_Payload(t *testing.T) {
	parsed := ParsedDocument{
		Metadata: map[string]string{
			"title":       "Deck",
			"subtitle":    "",
			"author":      "Jo",
			"presentedAt": "Meetup",
			"extra":       "ignored",
		},
		Content: "body",
	}

	payload := parsed.Payload("raw text", AccessPublic, "Fallback")

	assert.Equal(t, DocumentPayload{
		Title:       "Deck",
		Author:      "Jo",
		PresentedAt: "Meetup",
		Content:     "raw text",
		AccessLevel: AccessPublic,
	}, payload)

	untitled := ParsedDocument{Metadata: map[string]string{}}.Payload("x", AccessPrivate, "Fallback")
	assert.Equal(t, "Fallback", untitled.Title)
}

func TestParsedDocument_Lookup(t *testing.T) {
	parsed := ParsedDocument{Metadata: map[string]string{"a": "1", "blank": " "}}

	v, ok := parsed.Lookup("a")
	assert.True(t, ok)
	assert.Equal(t, "1", v)

	_, ok = parsed.Lookup("blank")
	assert.False(t, ok)

	_, ok = parsed.Lookup("missing")
	assert.False(t, ok)
}

func TestOperationError(t *testing.T) {
	err := &OperationError{Op: "update", ID: 9, Err: ErrNotFound}
	assert.Equal(t, "update #9 failed: not found", err.Error())
	assert.True(t, errors.Is(err, ErrNotFound))

	anonymous := &OperationError{Op: "create", Err: ErrNetwork}
	assert.Equal(t, "create failed: network error", anonymous.Error())

	wrapped := fmt.Errorf("saving: %w", err)
	var opErr *OperationError
	require.True(t, errors.As(wrapped, &opErr))
	assert.Equal(t, DocumentID(9), opErr.ID)
}
