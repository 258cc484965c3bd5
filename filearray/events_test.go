package filearray

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEventsDelivered(t *testing.T) {
	var got []Event
	var from *Store
	sink := SinkFunc(func(s *Store, e Event) {
		from = s
		got = append(got, e)
	})
	s, _ := newStoreWith(t, &Options{Sink: sink})
	defer s.Close()

	_, err := s.Append([]byte("a"))
	require.NoError(t, err)
	_, err = s.InsertAt(0, []byte("b"))
	require.NoError(t, err)
	require.NoError(t, s.MoveTo(0, 1))
	require.NoError(t, s.Swap(0, 1))
	require.NoError(t, s.SetRecord(0, []byte("bb")))
	require.NoError(t, s.SetID(1, 10))
	require.Error(t, s.SetID(0, 10), "failed mutations emit nothing")
	require.NoError(t, s.Remove(1))
	require.NoError(t, s.MoveTo(0, 0), "no-op moves emit nothing")

	require.Same(t, s, from)
	require.Equal(t, []Event{
		{Op: RecordInserted, Pos: 0},
		{Op: RecordInserted, Pos: 0},
		{Op: RecordMoved, Pos: 0, To: 1},
		{Op: RecordsSwapped, Pos: 0, To: 1},
		{Op: RecordChanged, Pos: 0},
		{Op: RecordChanged, Pos: 1},
		{Op: RecordRemoved, Pos: 1},
	}, got)
}

func TestEventTranslate(t *testing.T) {
	tests := []struct {
		name string
		e    Event
		in   []int
		want []int // -1 means the record is gone
	}{
		{"insert", Event{Op: RecordInserted, Pos: 2}, []int{0, 1, 2, 3}, []int{0, 1, 3, 4}},
		{"remove", Event{Op: RecordRemoved, Pos: 1}, []int{0, 1, 2, 3}, []int{0, -1, 1, 2}},
		{"move forward", Event{Op: RecordMoved, Pos: 1, To: 3}, []int{0, 1, 2, 3, 4}, []int{0, 3, 1, 2, 4}},
		{"move back", Event{Op: RecordMoved, Pos: 3, To: 1}, []int{0, 1, 2, 3, 4}, []int{0, 2, 3, 1, 4}},
		{"swap", Event{Op: RecordsSwapped, Pos: 0, To: 2}, []int{0, 1, 2}, []int{2, 1, 0}},
		{"change", Event{Op: RecordChanged, Pos: 1}, []int{0, 1, 2}, []int{0, 1, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i, p := range tt.in {
				got, ok := tt.e.Translate(p)
				if tt.want[i] < 0 {
					require.False(t, ok, "pos %d", p)
					continue
				}
				require.True(t, ok, "pos %d", p)
				require.Equal(t, tt.want[i], got, "pos %d", p)
			}
		})
	}
}

func TestEventString(t *testing.T) {
	require.Equal(t, "inserted(3)", Event{Op: RecordInserted, Pos: 3}.String())
	require.Equal(t, "moved(1,4)", Event{Op: RecordMoved, Pos: 1, To: 4}.String())
	require.Equal(t, "Op(42)", Op(42).String())
}
