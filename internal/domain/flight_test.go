package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseSeatClass(t *testing.T) {
	testCases := []struct {
		in       string
		expected SeatClass
		wantErr  bool
	}{
		{in: "economy", expected: Economy},
		{in: "Business", expected: Business},
		{in: "FIRST", expected: First},
		{in: "premium", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			class, err := ParseSeatClass(tc.in)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidInput)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.expected, class)
		})
	}
}

func TestSeatClass_Letter(t *testing.T) {
	assert.Equal(t, "E", Economy.Letter())
	assert.Equal(t, "B", Business.Letter())
	assert.Equal(t, "F", First.Letter())
}

func TestFlight_TotalSeatsAndRemaining(t *testing.T) {
	f := &Flight{
		Capacity: ClassCounts{100, 20, 8},
		Sold:     ClassCounts{90, 20, 3},
	}

	assert.Equal(t, 128, f.TotalSeats())
	assert.Equal(t, 10, f.Remaining(Economy))
	assert.Equal(t, 0, f.Remaining(Business))
	assert.Equal(t, 5, f.Remaining(First))
}

func TestFlight_Duration(t *testing.T) {
	f := &Flight{
		DepartureTime: time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC),
		ArrivalTime:   time.Date(2026, 9, 1, 13, 30, 0, 0, time.UTC),
	}
	assert.Equal(t, 3*time.Hour+30*time.Minute, f.Duration())
}

func TestConnectionOption_Layover(t *testing.T) {
	o := ConnectionOption{
		FirstLeg:  ConnectionLeg{ArrivalTime: time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)},
		SecondLeg: ConnectionLeg{DepartureTime: time.Date(2026, 9, 1, 14, 30, 0, 0, time.UTC)},
	}
	assert.Equal(t, 2*time.Hour+30*time.Minute, o.Layover())
}

func TestParseSortKey(t *testing.T) {
	key, err := ParseSortKey("price")
	assert.NoError(t, err)
	assert.Equal(t, SortByPrice, key)

	key, err = ParseSortKey("DURATION")
	assert.NoError(t, err)
	assert.Equal(t, SortByDuration, key)

	_, err = ParseSortKey("rating")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
