package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	tokenUseCase "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/paymenttoken/usecase"
)

// RunCleanExpiredTokens deletes token records that passed the retention period.
// Supports dry-run mode to preview the deletion count and both text/JSON output
// formats. The dry-run path only counts matching rows via the repository; the
// real run goes through the issuer use case.
//
// Requirements: Database must be migrated and accessible.
func RunCleanExpiredTokens(
	ctx context.Context,
	issuer tokenUseCase.IssuerUseCase,
	tokens tokenUseCase.TokenRepository,
	logger *slog.Logger,
	out io.Writer,
	retentionDays int,
	dryRun bool,
	format string,
) error {
	// Validate retention parameter
	if retentionDays <= 0 {
		return fmt.Errorf("retention days must be a positive number, got: %d", retentionDays)
	}

	logger.Info("cleaning expired tokens",
		slog.Int("retention_days", retentionDays),
		slog.Bool("dry_run", dryRun),
	)

	var count int64
	var err error

	if dryRun {
		cutoff := time.Now().AddDate(0, 0, -retentionDays)
		count, err = tokens.CountIssuedBefore(ctx, cutoff)
		if err != nil {
			return fmt.Errorf("failed to count expired tokens: %w", err)
		}
	} else {
		count, err = issuer.CleanupExpired(ctx)
		if err != nil {
			return fmt.Errorf("failed to cleanup expired tokens: %w", err)
		}
	}

	// Output result based on format
	if format == "json" {
		outputCleanExpiredJSON(out, count, retentionDays, dryRun)
	} else {
		outputCleanExpiredText(out, count, retentionDays, dryRun)
	}

	logger.Info("cleanup completed",
		slog.Int64("count", count),
		slog.Bool("dry_run", dryRun),
	)

	return nil
}

// outputCleanExpiredText outputs the result in human-readable text format.
func outputCleanExpiredText(out io.Writer, count int64, days int, dryRun bool) {
	if dryRun {
		fmt.Fprintf(out, "Dry-run mode: Would delete %d token(s) issued more than %d day(s) ago\n", count, days)
	} else {
		fmt.Fprintf(out, "Successfully deleted %d token(s) issued more than %d day(s) ago\n", count, days)
	}
}

// outputCleanExpiredJSON outputs the result in JSON format for machine consumption.
func outputCleanExpiredJSON(out io.Writer, count int64, days int, dryRun bool) {
	result := map[string]interface{}{
		"count":          count,
		"retention_days": days,
		"dry_run":        dryRun,
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintf(out, "failed to marshal JSON: %v\n", err)
		return
	}

	fmt.Fprintln(out, string(jsonBytes))
}
