package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pmr-assist-service/pkg/logger"
)

func newTestParser() *NoticeParser {
	return NewNoticeParser(logger.NewNopLogger())
}

func TestParseDelayNotice(t *testing.T) {
	body := `Dear partner,

Voyage: VOY-1234
Segment: SEG-2
New arrival: 2026-08-28T15:40:00Z
Delay: 45 minutes
Operator: SNCF

Regards`

	notice, err := newTestParser().ParseDelayNotice(body)

	require.NoError(t, err)
	assert.Equal(t, "VOY-1234", notice.VoyageID)
	assert.Equal(t, "SEG-2", notice.SegmentID)
	assert.Equal(t, time.Date(2026, 8, 28, 15, 40, 0, 0, time.UTC), notice.NewArrivalUTC)
	assert.Equal(t, 45, notice.DelayMinutes)
	assert.Equal(t, "SNCF", notice.Operator)
}

func TestParseDelayNoticeStripsHTML(t *testing.T) {
	body := `<html><body><p>Voyage: VOY-9</p>
<p>Segment: SEG-1</p>
<p>New arrival: 2026-08-28 15:40:00</p>
<p>Delay: 10 minutes</p></body></html>`

	notice, err := newTestParser().ParseDelayNotice(body)

	require.NoError(t, err)
	assert.Equal(t, "VOY-9", notice.VoyageID)
	assert.Equal(t, time.Date(2026, 8, 28, 15, 40, 0, 0, time.UTC), notice.NewArrivalUTC)
	assert.Equal(t, 10, notice.DelayMinutes)
}

func TestParseDelayNoticeMissingFields(t *testing.T) {
	parser := newTestParser()

	_, err := parser.ParseDelayNotice("Segment: SEG-1\nNew arrival: 2026-08-28T15:40:00Z")
	assert.ErrorContains(t, err, "missing voyage id")

	_, err = parser.ParseDelayNotice("Voyage: VOY-1\nNew arrival: 2026-08-28T15:40:00Z")
	assert.ErrorContains(t, err, "missing segment id")

	_, err = parser.ParseDelayNotice("Voyage: VOY-1\nSegment: SEG-1")
	assert.ErrorContains(t, err, "missing new arrival")
}

func TestParseDelayNoticeBadArrivalTime(t *testing.T) {
	_, err := newTestParser().ParseDelayNotice("Voyage: VOY-1\nSegment: SEG-1\nNew arrival: tomorrow-ish")

	assert.ErrorContains(t, err, "unparseable arrival time")
}

func TestParseDelayNoticeOptionalFieldsDefault(t *testing.T) {
	notice, err := newTestParser().ParseDelayNotice("Voyage: VOY-1\nSegment: SEG-1\nNew arrival: 2026-08-28T15:40:00Z")

	require.NoError(t, err)
	assert.Equal(t, 0, notice.DelayMinutes)
	assert.Empty(t, notice.Operator)
}

func TestParseVoyageRef(t *testing.T) {
	parser := newTestParser()

	ref, err := parser.ParseVoyageRef("Please arrange assistance.\nVoyage: VOY-77\nThanks")
	require.NoError(t, err)
	assert.Equal(t, "VOY-77", ref)

	_, err = parser.ParseVoyageRef("Please arrange assistance for my trip next week.")
	assert.ErrorContains(t, err, "missing voyage id")
}

func TestParseBookingRef(t *testing.T) {
	parser := newTestParser()

	ref, err := parser.ParseBookingRef("<p>Rebooking accepted.</p>\nBooking: PMR-AB12CD34\n")
	require.NoError(t, err)
	assert.Equal(t, "PMR-AB12CD34", ref)

	_, err = parser.ParseBookingRef("Rebooking accepted, see attached.")
	assert.ErrorContains(t, err, "missing booking reference")
}
