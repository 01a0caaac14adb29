package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"pmr-assist-service/pkg/logger"
)

// NoticeParser extracts delay notices from operator email bodies
type NoticeParser struct {
	logger logger.Logger
}

// NewNoticeParser creates a new notice parser
func NewNoticeParser(logger logger.Logger) *NoticeParser {
	return &NoticeParser{logger: logger}
}

var (
	voyageRe     = regexp.MustCompile(`(?mi)^\s*Voyage:\s*(\S+)`)
	segmentRe    = regexp.MustCompile(`(?mi)^\s*Segment:\s*(\S+)`)
	newArrivalRe = regexp.MustCompile(`(?mi)^\s*New arrival:\s*(.+)$`)
	bookingRe    = regexp.MustCompile(`(?mi)^\s*Booking:\s*(\S+)`)
	delayRe      = regexp.MustCompile(`(?mi)^\s*Delay:\s*(\d+)`)
	operatorRe   = regexp.MustCompile(`(?mi)^\s*Operator:\s*(.+)$`)
)

// cleanHTMLText removes HTML tags and cleans up text
func (p *NoticeParser) cleanHTMLText(text string) string {
	re := regexp.MustCompile(`<[^>]*>`)
	cleaned := re.ReplaceAllString(text, "")

	cleaned = strings.ReplaceAll(cleaned, "&nbsp;", " ")
	cleaned = strings.ReplaceAll(cleaned, "&amp;", "&")
	cleaned = strings.ReplaceAll(cleaned, "&lt;", "<")
	cleaned = strings.ReplaceAll(cleaned, "&gt;", ">")
	cleaned = strings.ReplaceAll(cleaned, "&#39;", "'")
	cleaned = strings.ReplaceAll(cleaned, "&quot;", "\"")

	return strings.TrimSpace(cleaned)
}

// ParseDelayNotice extracts a delay notice from an email body. Operators
// send a line-oriented block:
//
//	Voyage: VOY-1234
//	Segment: SEG-2
//	New arrival: 2026-08-28T15:40:00Z
//	Delay: 45 minutes
//	Operator: SNCF
//
// Missing voyage, segment or arrival fields make the notice unusable.
func (p *NoticeParser) ParseDelayNotice(body string) (*DelayNotice, error) {
	cleaned := p.cleanHTMLText(body)

	notice := &DelayNotice{}

	if m := voyageRe.FindStringSubmatch(cleaned); m != nil {
		notice.VoyageID = m[1]
	} else {
		return nil, fmt.Errorf("delay notice missing voyage id")
	}

	if m := segmentRe.FindStringSubmatch(cleaned); m != nil {
		notice.SegmentID = m[1]
	} else {
		return nil, fmt.Errorf("delay notice missing segment id")
	}

	if m := newArrivalRe.FindStringSubmatch(cleaned); m != nil {
		arrival, err := parseNoticeTime(strings.TrimSpace(m[1]))
		if err != nil {
			return nil, fmt.Errorf("delay notice has unparseable arrival time: %w", err)
		}
		notice.NewArrivalUTC = arrival
	} else {
		return nil, fmt.Errorf("delay notice missing new arrival time")
	}

	if m := delayRe.FindStringSubmatch(cleaned); m != nil {
		minutes, err := strconv.Atoi(m[1])
		if err == nil {
			notice.DelayMinutes = minutes
		}
	}

	if m := operatorRe.FindStringSubmatch(cleaned); m != nil {
		notice.Operator = strings.TrimSpace(m[1])
	}

	p.logger.Debug("Parsed delay notice",
		"voyageId", notice.VoyageID,
		"segmentId", notice.SegmentID,
		"delayMinutes", notice.DelayMinutes)
	return notice, nil
}

// ParseVoyageRef extracts just the voyage reference from a message body.
// Assistance requests carry a single "Voyage: <id>" line.
func (p *NoticeParser) ParseVoyageRef(body string) (string, error) {
	cleaned := p.cleanHTMLText(body)
	if m := voyageRe.FindStringSubmatch(cleaned); m != nil {
		return m[1], nil
	}
	return "", fmt.Errorf("message missing voyage id")
}

// ParseBookingRef extracts the assistance booking reference from a message
// body. Rebooking confirmations carry a single "Booking: <reference>" line.
func (p *NoticeParser) ParseBookingRef(body string) (string, error) {
	cleaned := p.cleanHTMLText(body)
	if m := bookingRe.FindStringSubmatch(cleaned); m != nil {
		return m[1], nil
	}
	return "", fmt.Errorf("message missing booking reference")
}

func parseNoticeTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unrecognized time format %q", s)
}
