package audit

import (
	"sync"

	"github.com/goliatone/go-masker"
	"github.com/goliatone/go-rbac/pkg/types"
)

// SanitizerConfig controls the masker used for audit sanitization.
type SanitizerConfig struct {
	Masker *masker.Masker
}

var defaultMaskerOnce sync.Once

// DefaultMasker returns a configured masker instance with the default denylist.
func DefaultMasker() *masker.Masker {
	defaultMaskerOnce.Do(func() {
		if masker.Default == nil {
			return
		}
		registerDefaultMaskFields(masker.Default)
	})
	return masker.Default
}

// SanitizeRecord masks sensitive values in the audit record data payload.
func SanitizeRecord(mask *masker.Masker, record types.AuditRecord) types.AuditRecord {
	if len(record.Data) == 0 {
		return record
	}
	if mask == nil {
		mask = DefaultMasker()
	}
	if mask == nil {
		record.Data = map[string]any{}
		return record
	}

	cloned := cloneMap(record.Data)
	masked, err := mask.Mask(cloned)
	if err != nil {
		record.Data = map[string]any{}
		return record
	}

	switch masked := masked.(type) {
	case map[string]any:
		record.Data = masked
	default:
		record.Data = map[string]any{}
	}
	return record
}

// SanitizeRecords masks sensitive values for every record in the slice.
func SanitizeRecords(mask *masker.Masker, records []types.AuditRecord) []types.AuditRecord {
	if len(records) == 0 {
		return records
	}
	out := make([]types.AuditRecord, 0, len(records))
	for _, record := range records {
		out = append(out, SanitizeRecord(mask, record))
	}
	return out
}

func registerDefaultMaskFields(mask *masker.Masker) {
	if mask == nil {
		return
	}
	mask.RegisterMaskField("Secret", "filled4")
	mask.RegisterMaskField("secret", "filled4")
	mask.RegisterMaskField("token", "filled4")
}
