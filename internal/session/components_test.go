package session

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimerExpiresOnce(t *testing.T) {
	timer := NewTimer()
	timer.Start(5)

	fired := 0
	for i := 0; i < 5; i++ {
		if timer.Tick() {
			fired++
		}
	}
	assert.Equal(t, 1, fired)
	assert.Equal(t, 0, timer.Remaining())
	assert.True(t, timer.HasExpired())

	for i := 0; i < 3; i++ {
		assert.False(t, timer.Tick())
	}
	assert.Equal(t, 0, timer.Remaining())

	select {
	case <-timer.Expired():
	default:
		t.Fatal("expected expiry channel to be closed")
	}
}

func TestTimerStop(t *testing.T) {
	timer := NewTimer()
	timer.Start(10)
	timer.Tick()
	timer.Stop()
	timer.Stop()

	assert.False(t, timer.Tick())
	assert.Equal(t, 9, timer.Remaining())
	assert.False(t, timer.HasExpired())
}

func TestTimerUnstartedAndNegative(t *testing.T) {
	timer := NewTimer()
	assert.False(t, timer.Tick())

	timer.Start(-4)
	assert.Equal(t, 0, timer.Remaining())
	assert.True(t, timer.Tick())
	assert.Equal(t, 0, timer.Remaining())
}

func TestFormatClock(t *testing.T) {
	cases := map[int]string{
		0:    "00:00",
		5:    "00:05",
		65:   "01:05",
		600:  "10:00",
		7500: "125:00",
		-3:   "00:00",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatClock(in), "seconds=%d", in)
	}
}

func TestCursorStaysInBounds(t *testing.T) {
	const length = 5
	c := NewCursor(length)
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 1000; i++ {
		switch rng.Intn(3) {
		case 0:
			c.Next()
		case 1:
			c.Previous()
		default:
			c.JumpTo(rng.Intn(length*3) - length)
		}
		require.GreaterOrEqual(t, c.Index(), 0)
		require.Less(t, c.Index(), length)
	}
}

func TestCursorBoundaries(t *testing.T) {
	c := NewCursor(3)
	assert.False(t, c.Previous())
	assert.True(t, c.Next())
	assert.True(t, c.Next())
	assert.False(t, c.Next())
	assert.Equal(t, 2, c.Index())

	assert.False(t, c.JumpTo(3))
	assert.False(t, c.JumpTo(-1))
	assert.Equal(t, 2, c.Index())
	assert.True(t, c.JumpTo(0))
	assert.True(t, c.IsFirst())
}

func TestAnswerStoreOverwrite(t *testing.T) {
	s := NewAnswerStore()
	_, ok := s.Get(1)
	assert.False(t, ok)

	s.Set(1, Choice("a"))
	s.Set(1, Choice("b"))
	s.Set(2, Text("free text"))
	s.Set(2, Text("edited"))
	s.Set(3, Choices("a", "c"))

	a, ok := s.Get(1)
	require.True(t, ok)
	assert.Equal(t, "b", a.Value())
	a, _ = s.Get(2)
	assert.Equal(t, "edited", a.Value())
	a, _ = s.Get(3)
	assert.Equal(t, []string{"a", "c"}, a.Values())
	assert.Equal(t, 3, s.AnsweredCount())

	s.Set(2, Text(""))
	assert.Equal(t, 2, s.AnsweredCount())
}

func TestFlagSetToggle(t *testing.T) {
	f := NewFlagSet()
	assert.True(t, f.Toggle(3))
	assert.True(t, f.Toggle(1))
	assert.True(t, f.IsFlagged(3))
	assert.Equal(t, []int{1, 3}, f.IDs())

	assert.False(t, f.Toggle(3))
	assert.False(t, f.IsFlagged(3))
	assert.Equal(t, 1, f.Len())
}

func TestScoreMultiSelectAndTrueFalse(t *testing.T) {
	qs := []Question{
		MultipleChoice{ID: 1, Correct: []string{"a", "c"}},
		TrueFalse{ID: 2, Correct: false},
		MultipleChoice{ID: 3, Correct: []string{"b"}},
	}
	answers := NewAnswerStore()
	answers.Set(1, Choices("c", "a"))
	answers.Set(2, Choice(OptionFalse))
	answers.Set(3, Choices("b", "a"))

	score, breakdown := Score(qs, answers)
	assert.Equal(t, 67, score)
	require.Len(t, breakdown, 3)
	assert.Equal(t, "correct", breakdown[0].Outcome)
	assert.Equal(t, "correct", breakdown[1].Outcome)
	assert.Equal(t, "incorrect", breakdown[2].Outcome)
}

func TestParseKindAndView(t *testing.T) {
	k, err := ParseKind("true_false")
	require.NoError(t, err)
	assert.Equal(t, KindTrueFalse, k)

	_, err = ParseKind("essay")
	assert.ErrorIs(t, err, ErrUnknownKind)

	v := View(TrueFalse{ID: 4, Text: "Go has generics", Correct: true})
	assert.Equal(t, 4, v.ID)
	assert.Len(t, v.Options, 2)

	v = View(MultipleChoice{ID: 1, Options: []Option{{ID: "a"}}, Correct: []string{"a", "b"}})
	assert.True(t, v.Multi)
}
