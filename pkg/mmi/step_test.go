package mmi

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const searchDescription = `
        Using the Implementation Under Test (IUT), perform a search for the PTS.
        If found, click OK.
        `

func okHandler(calls *int) Handler {
	return func(context.Context, *Request) (string, error) {
		*calls++
		return AnswerOK, nil
	}
}

func TestStepTable_InteractRunsHandler(t *testing.T) {
	calls := 0
	table := NewStepTable(Step{Name: "TSC_iut_search", Description: searchDescription, Handle: okHandler(&calls)})

	answer, err := table.Interact(context.Background(), &Request{
		Name:        "TSC_iut_search",
		Description: "Using the Implementation Under Test (IUT), perform a search for the PTS. If found, click OK.",
	})
	require.NoError(t, err)
	assert.Equal(t, AnswerOK, answer)
	assert.Equal(t, 1, calls)
}

func TestStepTable_EmptyDescriptionSkipsCheck(t *testing.T) {
	calls := 0
	table := NewStepTable(Step{Name: "TSC_iut_search", Description: searchDescription, Handle: okHandler(&calls)})

	_, err := table.Interact(context.Background(), &Request{Name: "TSC_iut_search"})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestStepTable_DescriptionMismatch(t *testing.T) {
	calls := 0
	table := NewStepTable(Step{Name: "TSC_iut_search", Description: searchDescription, Handle: okHandler(&calls)})

	_, err := table.Interact(context.Background(), &Request{
		Name:        "TSC_iut_search",
		Description: "Make the IUT connectable, then click Ok.",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDescriptionMismatch))

	var mismatch *DescriptionMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, "TSC_iut_search", mismatch.MMI)
	assert.Equal(t, "Make the IUT connectable, then click Ok.", mismatch.Got)
	assert.Zero(t, calls, "handler must not run on mismatch")
}

func TestStepTable_UnknownMMI(t *testing.T) {
	table := NewStepTable()

	_, err := table.Interact(context.Background(), &Request{Name: "TSC_unknown"})
	assert.ErrorIs(t, err, ErrUnknownMMI)
	assert.ErrorContains(t, err, "TSC_unknown")
}

func TestStepTable_RegisterReplacesAndKeepsOrder(t *testing.T) {
	first, second := 0, 0
	table := NewStepTable(
		Step{Name: "a", Handle: okHandler(&first)},
		Step{Name: "b", Handle: okHandler(&first)},
	)
	table.Register(Step{Name: "a", Handle: okHandler(&second)})

	assert.Equal(t, []string{"a", "b"}, table.Names())

	_, err := table.Interact(context.Background(), &Request{Name: "a"})
	require.NoError(t, err)
	assert.Equal(t, 0, first)
	assert.Equal(t, 1, second)
}

func TestNormalizeDescription(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"  click  Ok  ", "click Ok"},
		{"Click Ok, then\n\t  initiate a service level connection", "Click Ok, then initiate a service level connection"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeDescription(tt.in))
	}
}
