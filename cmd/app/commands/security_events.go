package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	auditDomain "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/audit/domain"
	auditUseCase "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/audit/usecase"
)

// RunSecurityEvents lists failed, invalid, expired, duplicate and unauthorized
// scan or confirm attempts recorded in the trailing window, newest first.
// Mirrors the GET /v1/security-events endpoint for operators without API
// access.
//
// Requirements: Database must be migrated and accessible.
func RunSecurityEvents(
	ctx context.Context,
	recorder auditUseCase.RecorderUseCase,
	logger *slog.Logger,
	out io.Writer,
	windowMinutes int,
	limit int,
	format string,
) error {
	if windowMinutes <= 0 {
		return fmt.Errorf("window minutes must be a positive number, got: %d", windowMinutes)
	}
	if limit <= 0 {
		return fmt.Errorf("limit must be a positive number, got: %d", limit)
	}

	window := time.Duration(windowMinutes) * time.Minute

	logger.Info("listing security events",
		slog.Duration("window", window),
		slog.Int("limit", limit),
	)

	entries, err := recorder.RecentSecurityEvents(ctx, window, limit)
	if err != nil {
		return fmt.Errorf("failed to list security events: %w", err)
	}

	count, err := recorder.SecurityEventCount(ctx, window, auditDomain.SecurityEventFilter{})
	if err != nil {
		return fmt.Errorf("failed to count security events: %w", err)
	}

	// Output result based on format
	if format == "json" {
		if err := outputSecurityEventsJSON(out, entries, count, window); err != nil {
			return fmt.Errorf("failed to output JSON: %w", err)
		}
	} else {
		outputSecurityEventsText(out, entries, count, window)
	}

	logger.Info("security event listing completed",
		slog.Int64("count", count),
		slog.Int("listed", len(entries)),
	)

	return nil
}

// outputSecurityEventsText outputs the result in human-readable text format.
func outputSecurityEventsText(out io.Writer, entries []*auditDomain.Entry, count int64, window time.Duration) {
	fmt.Fprintf(out, "%d security event(s) in the last %s\n", count, window)

	for _, entry := range entries {
		line := fmt.Sprintf("%s  %s/%s", entry.ScanTimestamp.Format(time.RFC3339), entry.Action, entry.Status)
		if entry.OrderID != nil {
			line += fmt.Sprintf("  order=%s", entry.OrderID)
		}
		if entry.DeviceID != nil {
			line += fmt.Sprintf("  device=%s", entry.DeviceID)
		}
		if entry.IPAddress != nil {
			line += fmt.Sprintf("  ip=%s", *entry.IPAddress)
		}
		if entry.ErrorMessage != nil {
			line += fmt.Sprintf("  error=%q", *entry.ErrorMessage)
		}
		fmt.Fprintln(out, line)
	}
}

// outputSecurityEventsJSON outputs the result in JSON format for machine consumption.
func outputSecurityEventsJSON(out io.Writer, entries []*auditDomain.Entry, count int64, window time.Duration) error {
	type eventRecord struct {
		Timestamp    time.Time `json:"timestamp"`
		Action       string    `json:"action"`
		Status       string    `json:"status"`
		OrderID      *string   `json:"order_id,omitempty"`
		DeviceID     *string   `json:"device_id,omitempty"`
		IPAddress    *string   `json:"ip_address,omitempty"`
		ErrorMessage *string   `json:"error_message,omitempty"`
	}

	records := make([]eventRecord, 0, len(entries))
	for _, entry := range entries {
		record := eventRecord{
			Timestamp:    entry.ScanTimestamp,
			Action:       string(entry.Action),
			Status:       string(entry.Status),
			IPAddress:    entry.IPAddress,
			ErrorMessage: entry.ErrorMessage,
		}
		if entry.OrderID != nil {
			id := entry.OrderID.String()
			record.OrderID = &id
		}
		if entry.DeviceID != nil {
			id := entry.DeviceID.String()
			record.DeviceID = &id
		}
		records = append(records, record)
	}

	result := map[string]interface{}{
		"count":          count,
		"window_minutes": int(window.Minutes()),
		"events":         records,
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	fmt.Fprintln(out, string(jsonBytes))
	return nil
}
