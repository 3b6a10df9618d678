package punch

import (
	"time"
)

// RawPunch is one biometric event as it was captured by a device or an import file.
// DigitKey and NameKey hold the memoised normalizer output for DeviceCode and RawName.
type RawPunch struct {
	ID           string
	DeviceCode   string
	RawName      string
	Timestamp    time.Time
	RawTimestamp string
	DeviceState  string
	DigitKey     string
	NameKey      string
	DedupeKey    string
	ResolvedName *string
	BatchID      *string
	SourceRow    int
	CreatedAt    time.Time
}

// HasValidTimestamp reports whether the punch carries a usable instant.
func (p RawPunch) HasValidTimestamp() bool {
	return !p.Timestamp.IsZero()
}

// PunchFilter narrows a punch store query. Empty key sets mean "any".
// When both DigitKeys and NameKeys are set a row matching either is returned.
type PunchFilter struct {
	DigitKeys []string
	NameKeys  []string
	From      time.Time
	To        time.Time
}

// InvalidRow is a punch that was excluded from processing, with the reason.
type InvalidRow struct {
	SourceRow    int    `json:"source_row,omitempty"`
	DeviceCode   string `json:"device_code"`
	RawName      string `json:"raw_name"`
	RawTimestamp string `json:"raw_timestamp"`
	Reason       string `json:"reason"`
}

func NewInvalidRow(p RawPunch, reason string) InvalidRow {
	return InvalidRow{
		SourceRow:    p.SourceRow,
		DeviceCode:   p.DeviceCode,
		RawName:      p.RawName,
		RawTimestamp: p.RawTimestamp,
		Reason:       reason,
	}
}
