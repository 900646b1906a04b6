package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// 2025-03-02 is a Sunday.
func at(weekday int, clock string) time.Time {
	t, _ := time.Parse("2006-01-02 15:04", "2025-03-02 "+clock)
	return t.AddDate(0, 0, weekday)
}

func TestOpenAt_NoHoursIsOpen(t *testing.T) {
	b := &Business{}
	assert.True(t, b.OpenAt(at(1, "03:00")))
}

func TestOpenAt_DayMissingIsClosed(t *testing.T) {
	b := &Business{OpeningHours: []OpeningHours{{Day: 1, Ranges: []TimeRange{{Open: "09:00", Close: "17:00"}}}}}
	assert.False(t, b.OpenAt(at(2, "10:00")))
}

func TestOpenAt_ClosedDay(t *testing.T) {
	b := &Business{OpeningHours: []OpeningHours{{Day: 6, Closed: true}}}
	assert.False(t, b.OpenAt(at(6, "12:00")))
}

func TestOpenAt_DayWithoutRangesIsOpen(t *testing.T) {
	b := &Business{OpeningHours: []OpeningHours{{Day: 0}}}
	assert.True(t, b.OpenAt(at(0, "23:30")))
}

func TestOpenAt_Ranges(t *testing.T) {
	b := &Business{OpeningHours: []OpeningHours{{
		Day: 3,
		Ranges: []TimeRange{
			{Open: "08:00", Close: "12:00"},
			{Open: "16:00", Close: "20:00"},
		},
	}}}

	assert.True(t, b.OpenAt(at(3, "08:00")))
	assert.True(t, b.OpenAt(at(3, "12:00")))
	assert.False(t, b.OpenAt(at(3, "13:30")))
	assert.True(t, b.OpenAt(at(3, "19:59")))
	assert.False(t, b.OpenAt(at(3, "20:01")))
}

func TestVisible(t *testing.T) {
	assert.True(t, (&Business{Active: true, Status: StatusApproved}).Visible())
	assert.False(t, (&Business{Active: false, Status: StatusApproved}).Visible())
	assert.False(t, (&Business{Active: true, Status: StatusPending}).Visible())
	assert.False(t, (&Business{Active: true, Status: StatusRejected}).Visible())
}

func TestDecorate(t *testing.T) {
	b := &Business{Status: StatusApproved}
	b.Decorate(at(1, "10:00"))

	assert.True(t, b.Approved)
	assert.True(t, b.IsOpen)
}

func TestServiceIDs(t *testing.T) {
	b := &Business{Services: []BusinessService{{ServiceID: "s-1"}, {ServiceID: "s-2"}}}
	assert.Equal(t, []string{"s-1", "s-2"}, b.ServiceIDs())
	assert.Empty(t, (&Business{}).ServiceIDs())
}

func TestParseReviewSort(t *testing.T) {
	s, ok := ParseReviewSort("")
	assert.True(t, ok)
	assert.Equal(t, ReviewSortNewest, s)

	s, ok = ParseReviewSort("helpful")
	assert.True(t, ok)
	assert.Equal(t, ReviewSortHelpful, s)

	_, ok = ParseReviewSort("random")
	assert.False(t, ok)
}

func TestIsValidReportReason(t *testing.T) {
	for _, r := range ValidReportReasons() {
		assert.True(t, IsValidReportReason(r))
	}
	assert.False(t, IsValidReportReason("boring"))
}
