package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/dropofflens/dropofflens/errors"
)

func TestParseCSV_FeedbackColumn(t *testing.T) {
	content := []byte("id,Customer Feedback,date\n1,Too slow,2024-01-01\n2,  Too expensive  ,2024-01-02\n3,,2024-01-03\n4,Support was great,2024-01-04\n")

	result, err := ParseCSV(content)
	require.NoError(t, err)

	assert.Equal(t, []string{"Too slow", "Too expensive", "Support was great"}, result.Entries)
	assert.Equal(t, "Customer Feedback", result.Header)
}

func TestParseCSV_KeywordIsCaseInsensitive(t *testing.T) {
	for _, header := range []string{"FEEDBACK", "user_comment", "Review Text", "Message"} {
		content := []byte(header + "\nfirst entry\n")
		result, err := ParseCSV(content)
		require.NoError(t, err, "header %q should match", header)
		assert.Equal(t, []string{"first entry"}, result.Entries)
	}
}

func TestParseCSV_FirstMatchingColumnWins(t *testing.T) {
	content := []byte("review,comment\nfrom review,from comment\n")

	result, err := ParseCSV(content)
	require.NoError(t, err)

	assert.Equal(t, []string{"from review"}, result.Entries)
	assert.Equal(t, "review", result.Header)
}

func TestParseCSV_PreviewIsFirstFive(t *testing.T) {
	content := []byte("feedback\na\nb\nc\nd\ne\nf\ng\n")

	result, err := ParseCSV(content)
	require.NoError(t, err)

	assert.Len(t, result.Entries, 7)
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, result.Preview)
}

func TestParseCSV_NoFeedbackColumn(t *testing.T) {
	content := []byte("id,name,date\n1,Alice,2024-01-01\n")

	_, err := ParseCSV(content)
	require.Error(t, err)

	appErr, ok := apperrors.IsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrorCode_CSV_PARSE_FAILED, appErr.Code)
	assert.Contains(t, appErr.Message, "id, name, date")
}

func TestParseCSV_Empty(t *testing.T) {
	_, err := ParseCSV([]byte(""))
	require.Error(t, err)

	appErr, ok := apperrors.IsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrorCode_CSV_PARSE_FAILED, appErr.Code)
}

func TestParseCSV_OnlyEmptyCells(t *testing.T) {
	content := []byte("feedback\n\n   \n")

	_, err := ParseCSV(content)
	require.Error(t, err)
}

func TestParseCSV_QuotedCells(t *testing.T) {
	content := []byte("feedback\n\"Too slow, and buggy\"\n")

	result, err := ParseCSV(content)
	require.NoError(t, err)

	assert.Equal(t, []string{"Too slow, and buggy"}, result.Entries)
}
