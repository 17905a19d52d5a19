package logs

import (
	"encoding/json"
	"errors"
	"time"
)

// Volume and unit conversion constants for log measurement.
const (
	cftFactor = 2.2072
	cmPerInch = 2.54
)

// Grade classifies a log by timber quality.
type Grade string

const (
	GradeA        Grade = "A"
	GradeB        Grade = "B"
	GradeC        Grade = "C"
	GradeD        Grade = "D"
	GradeRejected Grade = "Rejected"
)

// IsValid reports whether the grade is a known value.
func (g Grade) IsValid() bool {
	switch g {
	case GradeA, GradeB, GradeC, GradeD, GradeRejected:
		return true
	}
	return false
}

// Status tracks a log through the mill.
type Status string

const (
	StatusAvailable Status = "available"
	StatusInProcess Status = "in_process"
	StatusProcessed Status = "processed"
)

var statusRank = map[Status]int{
	StatusAvailable: 0,
	StatusInProcess: 1,
	StatusProcessed: 2,
}

// IsValid reports whether the status is a known value.
func (s Status) IsValid() bool {
	_, ok := statusRank[s]
	return ok
}

// CanAdvanceTo reports whether next is the immediate forward step.
// Reverse and skipping transitions are rejected.
func (s Status) CanAdvanceTo(next Status) bool {
	cur, ok := statusRank[s]
	if !ok {
		return false
	}
	nxt, ok := statusRank[next]
	if !ok {
		return false
	}
	return nxt == cur+1
}

// ErrInvalidTransition indicates a backward or skipping status change.
var ErrInvalidTransition = errors.New("sawmill: invalid status transition")

// CFT returns the log volume in cubic feet.
func CFT(girthCM, lengthMeter float64) float64 {
	return girthCM * girthCM * lengthMeter * cftFactor / 10000
}

// GirthInch converts a girth measurement from centimeters to inches.
func GirthInch(girthCM float64) float64 {
	return girthCM / cmPerInch
}

// Log is a tagged physical log in the yard.
type Log struct {
	ID          int64     `json:"id"`
	CompanyID   int64     `json:"company_id"`
	TagNumber   string    `json:"tag_number"`
	GirthCM     float64   `json:"girth_cm"`
	GirthInch   float64   `json:"girth_inch"`
	LengthMeter float64   `json:"length_meter"`
	Grade       Grade     `json:"grade"`
	CFT         float64   `json:"cft"`
	Status      Status    `json:"status"`
	QRData      string    `json:"qr_data"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// qrPayload is the snapshot encoded into qr_data at registration.
// It is a point-in-time capture and is never re-derived afterwards.
type qrPayload struct {
	TagNumber   string  `json:"tag_number"`
	GirthCM     float64 `json:"girth_cm"`
	GirthInch   float64 `json:"girth_inch"`
	LengthMeter float64 `json:"length_meter"`
	Grade       Grade   `json:"grade"`
	CFT         float64 `json:"cft"`
	RecordedAt  string  `json:"recorded_at"`
}

func encodeQR(l Log, at time.Time) (string, error) {
	raw, err := json.Marshal(qrPayload{
		TagNumber:   l.TagNumber,
		GirthCM:     l.GirthCM,
		GirthInch:   l.GirthInch,
		LengthMeter: l.LengthMeter,
		Grade:       l.Grade,
		CFT:         l.CFT,
		RecordedAt:  at.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
