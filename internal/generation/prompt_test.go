package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainErrors "github.com/polkiloo/youwow/internal/domain/errors"
)

func TestParseSongInput(t *testing.T) {
	in, err := ParseSongInput(json.RawMessage(`{"recipientName":"Lena","phrases":["sunny day"," "]}`))
	require.NoError(t, err)
	assert.Equal(t, "Lena", in.RecipientName)

	_, err = ParseSongInput(json.RawMessage(`{"genre":"rock"}`))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = ParseSongInput(json.RawMessage(`not json`))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestBuildSongPrompt(t *testing.T) {
	prompt := BuildSongPrompt(SongInput{
		RecipientName: "Lena",
		Occasion:      "birthday",
		Phrases:       []string{"sunny day", " "},
	})

	assert.Contains(t, prompt, "Recipient: Lena\n")
	assert.Contains(t, prompt, "Occasion: birthday\n")
	assert.Contains(t, prompt, `Phrases that must appear verbatim: "sunny day"`)
	assert.Contains(t, prompt, "[Verse], [Chorus]")
	assert.NotContains(t, prompt, "Genre:")
}

func TestTarotInputAndPrompt(t *testing.T) {
	_, err := ParseTarotInput(json.RawMessage(`{"name":"Ann"}`))
	assert.ErrorIs(t, err, ErrInvalidInput)

	in, err := ParseTarotInput(json.RawMessage(`{"name":"Ann","question":"Will I move?"}`))
	require.NoError(t, err)

	prompt := BuildTarotPrompt(in)
	assert.Contains(t, prompt, "Question: Will I move?\n")
	assert.Contains(t, prompt, "Spread: three cards: past, present, future\n")
	assert.False(t, strings.Contains(prompt, "Date of birth"))
}

func TestHumanMessageHidesCauses(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{stageErr(StageAudio, ErrTimeout), "took too long"},
		{context.DeadlineExceeded, "took too long"},
		{stageErr(StageAudio, ErrNoAudio), "did not return a track"},
		{stageErr(StageInput, ErrInvalidInput), "missing required details"},
		{fmt.Errorf("%w: santa", domainErrors.ErrUnsupportedService), "not available yet"},
		{fmt.Errorf("%w: HTTP 500 internal secret", ErrBackend), "reported an error"},
		{errors.New("pq: connection refused"), "Something went wrong"},
	}

	for _, tc := range cases {
		msg := HumanMessage(tc.err)
		assert.Contains(t, msg, tc.want)
		assert.NotContains(t, msg, "secret")
		assert.NotContains(t, msg, "pq:")
	}
}

func TestStageErrorUnwraps(t *testing.T) {
	err := stageErr(StageText, ErrEmptyText)

	var stage *StageError
	require.ErrorAs(t, err, &stage)
	assert.Equal(t, StageText, stage.Stage)
	assert.ErrorIs(t, err, ErrEmptyText)
	assert.Equal(t, "text stage: backend returned empty text", err.Error())
	assert.Nil(t, stageErr(StageText, nil))
}
