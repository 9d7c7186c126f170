package orchestrators

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"strings"

	"gymdesk/internal/adapters/storage"
	"gymdesk/internal/domain/lead"
)

// ImportLeadsInput carries the parsed CSV reader and import options.
// PRE: Reader is a valid CSV stream with a header row
// POST: Returns aggregate counts and per-row errors; writes are skipped when DryRun=true
type ImportLeadsInput struct {
	Reader         io.Reader
	AdminAccountID string
	DryRun         bool
}

// ImportLeadsResult holds aggregate counts and per-row errors from an import run.
type ImportLeadsResult struct {
	Total   int                   `json:"total"`
	Created int                   `json:"created"`
	Updated int                   `json:"updated"`
	Errors  []ImportLeadsRowError `json:"errors"`
	DryRun  bool                  `json:"dryRun"`
	Unknown []string              `json:"unknownColumns"`
}

// ImportLeadsRowError describes a validation or processing error for a single CSV row.
type ImportLeadsRowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ImportLeadsValidationError is returned when the CSV structure is invalid (e.g. missing required columns).
type ImportLeadsValidationError struct {
	Message string
}

// Error implements the error interface.
func (e *ImportLeadsValidationError) Error() string {
	return e.Message
}

var importLeadColumns = map[string]bool{
	"NAME": true, "PHONE": true, "EMAIL": true, "SOURCE": true,
	"INTEREST": true, "STATUS": true, "NOTES": true, "JOINDATE": true,
}

// ExecuteImportLeads parses a CSV stream and upserts one lead per row, keyed by normalized phone.
// PRE: Input.Reader contains a CSV with at least NAME and PHONE columns
// POST: Rows sharing a phone with an existing lead merge into it; per-row failures never abort the run
// INVARIANT: When DryRun=true no writes occur
func ExecuteImportLeads(ctx context.Context, input ImportLeadsInput, deps LeadDeps) (ImportLeadsResult, error) {
	cr := csv.NewReader(input.Reader)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return ImportLeadsResult{}, &ImportLeadsValidationError{Message: "CSV is empty or unreadable"}
	}

	colIdx := make(map[string]int, len(header))
	var unknownCols []string
	for i, h := range header {
		key := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(h), "_", ""))
		colIdx[key] = i
		if !importLeadColumns[key] {
			unknownCols = append(unknownCols, h)
		}
	}
	for _, required := range []string{"NAME", "PHONE"} {
		if _, ok := colIdx[required]; !ok {
			return ImportLeadsResult{}, &ImportLeadsValidationError{Message: "CSV missing required column: " + required}
		}
	}

	getCol := func(row []string, col string) string {
		i, ok := colIdx[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	result := ImportLeadsResult{DryRun: input.DryRun, Unknown: unknownCols, Errors: []ImportLeadsRowError{}}
	rowNum := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		rowNum++
		if err != nil {
			result.Total++
			result.Errors = append(result.Errors, ImportLeadsRowError{Row: rowNum, Message: "malformed row"})
			continue
		}
		result.Total++

		in := LeadInput{
			Name:     getCol(row, "NAME"),
			Phone:    getCol(row, "PHONE"),
			Email:    getCol(row, "EMAIL"),
			Source:   getCol(row, "SOURCE"),
			Interest: getCol(row, "INTEREST"),
			Status:   getCol(row, "STATUS"),
			Notes:    getCol(row, "NOTES"),
			JoinDate: getCol(row, "JOINDATE"),
		}
		if in.Source == "" {
			in.Source = "import"
		}
		phone := lead.NormalizePhone(in.Phone)
		if phone == "" {
			result.Errors = append(result.Errors, ImportLeadsRowError{Row: rowNum, Message: "phone is required"})
			continue
		}

		_, lookupErr := deps.LeadStore.GetByPhone(ctx, phone)
		exists := lookupErr == nil
		if lookupErr != nil && !errors.Is(lookupErr, storage.ErrNotFound) {
			slog.Error("leads_import_lookup_failed", "row", rowNum, "err", lookupErr)
			result.Errors = append(result.Errors, ImportLeadsRowError{Row: rowNum, Message: "lookup failed (see server log)"})
			continue
		}
		if !exists && in.Name == "" {
			result.Errors = append(result.Errors, ImportLeadsRowError{Row: rowNum, Message: "name is required"})
			continue
		}

		if input.DryRun {
			if exists {
				result.Updated++
			} else {
				result.Created++
			}
			continue
		}

		res, err := ExecuteUpsertLead(ctx, in, deps)
		if err != nil {
			if isValidation(err) {
				result.Errors = append(result.Errors, ImportLeadsRowError{Row: rowNum, Message: err.Error()})
				continue
			}
			slog.Error("leads_import_save_failed", "row", rowNum, "phone", phone, "err", err)
			result.Errors = append(result.Errors, ImportLeadsRowError{Row: rowNum, Message: "save failed (see server log)"})
			continue
		}
		if res.Created {
			result.Created++
		} else {
			result.Updated++
		}
	}

	slog.Info("leads_import",
		"admin", input.AdminAccountID,
		"dry_run", input.DryRun,
		"total", result.Total,
		"created", result.Created,
		"updated", result.Updated,
		"errors", len(result.Errors),
	)
	return result, nil
}
