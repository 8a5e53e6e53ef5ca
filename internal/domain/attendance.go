package domain

import (
	"database/sql/driver"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Status of an attendance record.
type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusLate    Status = "late"
)

// NormalizeStatus maps arbitrary input to a valid status.
// Unrecognized values default to present.
func NormalizeStatus(s string) Status {
	switch Status(s) {
	case StatusAbsent:
		return StatusAbsent
	case StatusLate:
		return StatusLate
	default:
		return StatusPresent
	}
}

// Method records how an attendance mark was produced. It is an audit
// tag only and never participates in dedup decisions.
type Method string

const (
	MethodFace   Method = "face"
	MethodManual Method = "manual"

	// maxMethodLen bounds the stored method string
	maxMethodLen = 32
)

// NormalizeMethod truncates the method to the stored bound, defaulting
// to manual when empty.
func NormalizeMethod(m string) Method {
	if m == "" {
		return MethodManual
	}
	if utf8.RuneCountInString(m) > maxMethodLen {
		runes := []rune(m)
		m = string(runes[:maxMethodLen])
	}
	return Method(m)
}

const dateLayout = "2006-01-02"

// Date is a calendar day with no time-of-day component. It marshals
// as "YYYY-MM-DD" and scans from a Postgres date column.
type Date struct {
	time.Time
}

// NewDate truncates t to day granularity in its own location.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, t.Location())}
}

// Today returns the current local calendar day.
func Today() Date {
	return NewDate(time.Now())
}

// ParseDate parses "YYYY-MM-DD".
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{t}, nil
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

// Equal compares day identity, ignoring location.
func (d Date) Equal(other Date) bool {
	return d.String() == other.String()
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" || s == `""` {
		*d = Date{}
		return nil
	}
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid date %s", s)
	}
	parsed, err := ParseDate(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Scan implements sql.Scanner so pgx can read date columns.
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*d = NewDate(v)
		return nil
	case string:
		parsed, err := ParseDate(v)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Date", src)
	}
}

// Value implements driver.Valuer.
func (d Date) Value() (driver.Value, error) {
	return d.Time, nil
}

// AttendanceRecord is one mark for one student on one calendar day.
// The authoritative store holds at most one record per (StudentID, Date).
type AttendanceRecord struct {
	ID         uuid.UUID `json:"id,omitempty"`
	StudentID  int64     `json:"student_id"`
	Date       Date      `json:"date"`
	Status     Status    `json:"status"`
	Method     Method    `json:"method"`
	Confidence *float64  `json:"confidence,omitempty"`
	CreatedAt  time.Time `json:"created_at,omitempty"`
}

// Detection is an ephemeral face-match event produced by the capture
// loop. It is never persisted as-is.
type Detection struct {
	Identity   Identity
	Distance   float64
	CapturedAt time.Time
}

// Confidence derives a [0,1] confidence from the match distance.
func (d Detection) Confidence() float64 {
	c := 1 - d.Distance
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}
