package templates

import (
	"context"
	"strings"

	"pmr-assist-service/internal/domain/entity"
	"pmr-assist-service/internal/usecase"
	"pmr-assist-service/pkg/logger"
	"pmr-assist-service/pkg/utils"
)

// DelayNoticeHandler handles operator delay-notice messages
type DelayNoticeHandler struct {
	monitor *usecase.PerturbationMonitor
	parser  *utils.NoticeParser
	logger  logger.Logger
}

// NewDelayNoticeHandler creates a new delay notice handler
func NewDelayNoticeHandler(monitor *usecase.PerturbationMonitor, parser *utils.NoticeParser, logger logger.Logger) *DelayNoticeHandler {
	return &DelayNoticeHandler{
		monitor: monitor,
		parser:  parser,
		logger:  logger,
	}
}

// CanHandle determines if this handler can process the given message subject
func (h *DelayNoticeHandler) CanHandle(subject string) bool {
	subjectUpper := strings.ToUpper(subject)
	return strings.Contains(subjectUpper, "DELAY NOTICE")
}

// Process parses the notice and hands the delay event to the monitor
func (h *DelayNoticeHandler) Process(ctx context.Context, msg *entity.OperatorMessage) error {
	notice, err := h.parser.ParseDelayNotice(msg.Body)
	if err != nil {
		h.logger.Error("Failed to parse delay notice", "messageID", msg.MessageID, "error", err)
		return err
	}

	assessment, err := h.monitor.HandleDelay(ctx, entity.DelayEvent{
		VoyageID:      notice.VoyageID,
		SegmentID:     notice.SegmentID,
		NewArrivalUTC: notice.NewArrivalUTC,
		DelayMinutes:  notice.DelayMinutes,
		Source:        msg.From,
	})
	if err != nil {
		h.logger.Error("Failed to handle delay event",
			"messageID", msg.MessageID,
			"voyageId", notice.VoyageID,
			"error", err)
		return err
	}

	h.logger.Info("Delay notice handled",
		"messageID", msg.MessageID,
		"voyageId", notice.VoyageID,
		"impact", assessment.Impact)
	return nil
}
