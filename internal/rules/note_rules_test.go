package rules

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"notekeep-be/internal/dto"
	"notekeep-be/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestValidateCreate(t *testing.T) {
	tests := []struct {
		name       string
		req        dto.CreateNoteRequest
		wantReason Reason
	}{
		{
			name:       "title and content absent",
			req:        dto.CreateNoteRequest{},
			wantReason: ReasonEmptyNote,
		},
		{
			name:       "title and content whitespace",
			req:        dto.CreateNoteRequest{Title: "   ", Content: "\n\t"},
			wantReason: ReasonEmptyNote,
		},
		{
			name:       "title too long",
			req:        dto.CreateNoteRequest{Title: strings.Repeat("a", 201)},
			wantReason: ReasonTitleTooLong,
		},
		{
			name:       "whitespace title alongside content",
			req:        dto.CreateNoteRequest{Title: "   ", Content: "groceries"},
			wantReason: ReasonTitleBlank,
		},
		{
			name:       "content too long",
			req:        dto.CreateNoteRequest{Content: strings.Repeat("x", 10001)},
			wantReason: ReasonContentTooLong,
		},
		{
			name:       "off palette color",
			req:        dto.CreateNoteRequest{Title: "a", Color: "#123456"},
			wantReason: ReasonColorNotAllowed,
		},
		{
			name: "title only",
			req:  dto.CreateNoteRequest{Title: "Shopping"},
		},
		{
			name: "content only with lowercase palette color",
			req:  dto.CreateNoteRequest{Content: "milk", Color: " #faafa8 "},
		},
		{
			name: "whitespace color is ignored",
			req:  dto.CreateNoteRequest{Content: "milk", Color: "  "},
		},
		{
			name: "limits are inclusive",
			req: dto.CreateNoteRequest{
				Title:   strings.Repeat("é", 200),
				Content: strings.Repeat("x", 10000),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCreate(&tt.req)
			if tt.wantReason == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantReason, ReasonOf(err))
		})
	}
}

func TestValidateCreate_TitleTooLongBeatsTitleBlank(t *testing.T) {
	err := ValidateCreate(&dto.CreateNoteRequest{Title: strings.Repeat(" ", 250), Content: "body"})
	assert.ErrorIs(t, err, ErrTitleTooLong)
}

func decodeUpdate(t *testing.T, body string) dto.UpdateNoteRequest {
	t.Helper()
	var req dto.UpdateNoteRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	return req
}

func TestValidateUpdate(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantReason Reason
	}{
		{name: "nothing supplied", body: `{}`},
		{name: "clear title only", body: `{"title": ""}`},
		{name: "clear content with null", body: `{"content": null}`},
		{name: "both cleared", body: `{"title": " ", "content": null}`, wantReason: ReasonEmptyNote},
		{name: "set title", body: `{"title": "New title"}`},
		{
			name:       "title too long",
			body:       fmt.Sprintf(`{"title": %q}`, strings.Repeat("t", 201)),
			wantReason: ReasonTitleTooLong,
		},
		{
			name:       "blank but long title still length checked",
			body:       fmt.Sprintf(`{"title": %q, "content": "x"}`, strings.Repeat(" ", 201)),
			wantReason: ReasonTitleTooLong,
		},
		{
			name:       "content too long",
			body:       fmt.Sprintf(`{"content": %q}`, strings.Repeat("c", 10001)),
			wantReason: ReasonContentTooLong,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := decodeUpdate(t, tt.body)
			err := ValidateUpdate(&req)
			if tt.wantReason == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantReason, ReasonOf(err))
		})
	}
}

func TestValidateUpdate_EmptyNoteMessageDiffersFromCreate(t *testing.T) {
	req := dto.UpdateNoteRequest{Title: dto.Clear(), Content: dto.Clear()}
	err := ValidateUpdate(&req)

	assert.ErrorIs(t, err, ErrEmptyNote)
	assert.NotEqual(t, ErrEmptyNote.Message, err.Error())
}

func TestValidateColor(t *testing.T) {
	tests := []struct {
		color      string
		wantReason Reason
	}{
		{color: "", wantReason: ReasonColorRequired},
		{color: "   ", wantReason: ReasonColorRequired},
		{color: "FFFFFF", wantReason: ReasonInvalidColorFormat},
		{color: "#FFF", wantReason: ReasonInvalidColorFormat},
		{color: "#GGGGGG", wantReason: ReasonInvalidColorFormat},
		{color: "#FFFFFF0", wantReason: ReasonInvalidColorFormat},
		{color: "#000000", wantReason: ReasonColorNotAllowed},
		{color: "#FFFFFF"},
		{color: "#e8eaed"},
		{color: "  #fbbc04\t"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.color), func(t *testing.T) {
			err := ValidateColor(tt.color)
			if tt.wantReason == "" {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tt.wantReason, ReasonOf(err))
		})
	}
}

func TestPalette(t *testing.T) {
	p := Palette()
	assert.Len(t, p, 23)
	assert.Equal(t, entity.DefaultNoteColor, p[0])

	p[0] = "#000000"
	assert.Equal(t, entity.DefaultNoteColor, Palette()[0], "Palette must return a copy")
}

func testValidateColor_NormalizedIsIdempotent(t *rapid.T) {
	base := rapid.SampledFrom(Palette()).Draw(t, "color")
	lower := rapid.Bool().Draw(t, "lower")
	pad := rapid.StringMatching(`[ \t]{0,3}`).Draw(t, "pad")

	input := base
	if lower {
		input = strings.ToLower(input)
	}
	input = pad + input + pad

	if err := ValidateColor(input); err != nil {
		t.Fatalf("palette color %q rejected: %v", input, err)
	}
	normalized := NormalizeColor(input)
	if normalized != base {
		t.Fatalf("NormalizeColor(%q) = %q, want %q", input, normalized, base)
	}
	if err := ValidateColor(normalized); err != nil {
		t.Fatalf("normalized color %q rejected: %v", normalized, err)
	}
}

func TestValidateColor_NormalizedIsIdempotent(t *testing.T) {
	rapid.Check(t, testValidateColor_NormalizedIsIdempotent)
}

func testValidateColor_WellFormedNeverInvalidFormatAfterPass(t *rapid.T) {
	color := rapid.StringMatching(`#[A-Fa-f0-9]{6}`).Draw(t, "color")

	err := ValidateColor(color)
	if errors.Is(err, ErrInvalidColorFormat) {
		t.Fatalf("well formed %q reported as bad format", color)
	}
	if err == nil && ReasonOf(ValidateColor(NormalizeColor(color))) != "" {
		t.Fatalf("normalized %q failed after passing once", color)
	}
}

func TestValidateColor_WellFormedNeverInvalidFormatAfterPass(t *testing.T) {
	rapid.Check(t, testValidateColor_WellFormedNeverInvalidFormatAfterPass)
}

func TestValidateSearchQuery(t *testing.T) {
	tests := []struct {
		query      string
		wantReason Reason
	}{
		{query: "", wantReason: ReasonEmptyQuery},
		{query: "    ", wantReason: ReasonEmptyQuery},
		{query: "a", wantReason: ReasonQueryTooShort},
		{query: "  a ", wantReason: ReasonQueryTooShort},
		{query: strings.Repeat("q", 201), wantReason: ReasonQueryTooLong},
		{query: "  " + strings.Repeat("q", 200) + "  "},
		{query: "ab"},
		{query: " groceries "},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.query), func(t *testing.T) {
			err := ValidateSearchQuery(tt.query)
			if tt.wantReason == "" {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tt.wantReason, ReasonOf(err))
		})
	}
}

func sequentialIds(n int) []int64 {
	ids := make([]int64, n)
	for i := range ids {
		ids[i] = int64(i + 1)
	}
	return ids
}

func TestValidateBulkDelete(t *testing.T) {
	tests := []struct {
		name string
		ids  []int64
		want error
	}{
		{name: "nil", ids: nil, want: ErrNoIdsProvided},
		{name: "empty", ids: []int64{}, want: ErrNoIdsProvided},
		{name: "duplicates", ids: []int64{1, 2, 2}, want: ErrDuplicateIds},
		{name: "negative", ids: []int64{-1}, want: ErrInvalidId},
		{name: "zero", ids: []int64{3, 0}, want: ErrInvalidId},
		{name: "too many", ids: sequentialIds(101), want: ErrTooManyIds},
		{name: "too many wins over duplicates", ids: append(sequentialIds(101), 1), want: ErrTooManyIds},
		{name: "duplicates win over invalid", ids: []int64{-1, -1}, want: ErrDuplicateIds},
		{name: "exactly one hundred", ids: sequentialIds(100)},
		{name: "single", ids: []int64{42}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBulkDelete(tt.ids)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func testValidateBulkDelete_DistinctPositiveWithinLimitPasses(t *rapid.T) {
	ids := rapid.SliceOfNDistinct(rapid.Int64Range(1, 1_000_000), 1, MaxBulkDeleteIds, rapid.ID[int64]).Draw(t, "ids")
	if err := ValidateBulkDelete(ids); err != nil {
		t.Fatalf("ValidateBulkDelete(%v) = %v", ids, err)
	}
}

func TestValidateBulkDelete_DistinctPositiveWithinLimitPasses(t *testing.T) {
	rapid.Check(t, testValidateBulkDelete_DistinctPositiveWithinLimitPasses)
}

func TestValidateOrderBatch(t *testing.T) {
	tests := []struct {
		name  string
		items []entity.NoteOrderItem
		want  error
	}{
		{name: "empty", want: ErrNoIdsProvided},
		{
			name:  "duplicate note",
			items: []entity.NoteOrderItem{{NoteId: 1, DisplayOrder: 0}, {NoteId: 1, DisplayOrder: 1}},
			want:  ErrDuplicateIds,
		},
		{
			name:  "invalid id",
			items: []entity.NoteOrderItem{{NoteId: 0, DisplayOrder: 0}},
			want:  ErrInvalidId,
		},
		{
			name:  "negative order",
			items: []entity.NoteOrderItem{{NoteId: 4, DisplayOrder: -2}},
			want:  ErrInvalidDisplayOrder,
		},
		{
			name:  "order at int max",
			items: []entity.NoteOrderItem{{NoteId: 4, DisplayOrder: 0}, {NoteId: 7, DisplayOrder: math.MaxInt}},
			want:  ErrDisplayOrderTooLarge,
		},
		{
			name:  "order at cap",
			items: []entity.NoteOrderItem{{NoteId: 4, DisplayOrder: MaxDisplayOrder}},
		},
		{
			name:  "valid",
			items: []entity.NoteOrderItem{{NoteId: 4, DisplayOrder: 0}, {NoteId: 7, DisplayOrder: 1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOrderBatch(tt.items)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestEnsureNotEmpty(t *testing.T) {
	assert.ErrorIs(t, EnsureNotEmpty(" ", ""), ErrEmptyNote)
	assert.NoError(t, EnsureNotEmpty("", "body"))
}

func TestReasonOf_Wrapped(t *testing.T) {
	err := fmt.Errorf("create note: %w", ErrTitleBlank)
	assert.Equal(t, ReasonTitleBlank, ReasonOf(err))
	assert.Equal(t, Reason(""), ReasonOf(errors.New("boom")))
}
