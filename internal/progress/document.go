package progress

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/2beens/elite30/internal/program"
)

const (
	DateLayout       = "2006-01-02"
	DefaultStartDate = "2025-12-29"
	DefaultWeight    = 70.0
	MaxWeight        = 500.0
	// ProteinPerKg is grams of protein per kilogram of body weight per day.
	ProteinPerKg = 2.0
)

// DayRecord is the completion entry of a single day.
type DayRecord struct {
	Completed   bool     `json:"completed"`
	Date        string   `json:"date"`
	Note        string   `json:"note"`
	Protein     int      `json:"protein"`
	Supplements []string `json:"supplements,omitempty"`
}

// Document is the whole persisted user state. It is stored as one JSON string.
type Document struct {
	CurrentDay int                  `json:"current_day"`
	StartDate  string               `json:"start_date"`
	Weight     float64              `json:"weight"`
	History    map[string]DayRecord `json:"history"`
}

// Entry holds the user input submitted when completing a day.
type Entry struct {
	Note        string
	Protein     int
	Supplements []string
}

func Default() *Document {
	return &Document{
		CurrentDay: 1,
		StartDate:  DefaultStartDate,
		Weight:     DefaultWeight,
		History:    map[string]DayRecord{},
	}
}

// Decode parses a stored document. Absent fields keep their default values.
// Any failure is reported wrapped in ErrParse.
func Decode(raw string) (*Document, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("%w: empty document", ErrParse)
	}

	doc := Default()
	if err := json.Unmarshal([]byte(raw), doc); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrParse, err)
	}
	if doc.History == nil {
		doc.History = map[string]DayRecord{}
	}

	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrParse, err)
	}

	return doc, nil
}

func (d *Document) Encode() (string, error) {
	docJson, err := json.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("marshal progress document: %w", err)
	}
	return string(docJson), nil
}

func (d *Document) Validate() error {
	if err := program.ValidateDay(d.CurrentDay); err != nil {
		return fmt.Errorf("current day: %w", err)
	}
	if !validWeight(d.Weight) {
		return fmt.Errorf("%w: %v", ErrInvalidWeight, d.Weight)
	}
	if _, err := time.Parse(DateLayout, d.StartDate); err != nil {
		return fmt.Errorf("start date [%s]: %w", d.StartDate, err)
	}
	return nil
}

// validWeight also rejects NaN, since every comparison with it is false.
func validWeight(weight float64) bool {
	return weight > 0 && weight <= MaxWeight
}

// ProteinTarget is the daily protein goal in grams, floor(weight * 2.0).
func (d *Document) ProteinTarget() int {
	return ProteinTarget(d.Weight)
}

func ProteinTarget(weight float64) int {
	return int(math.Floor(weight * ProteinPerKg))
}

func (d *Document) Start() (time.Time, error) {
	start, err := time.Parse(DateLayout, d.StartDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse start date [%s]: %w", d.StartDate, err)
	}
	return start, nil
}

// DateForDay maps a program day to its calendar date: start + (day-1) days.
func (d *Document) DateForDay(day int) (time.Time, error) {
	if err := program.ValidateDay(day); err != nil {
		return time.Time{}, err
	}
	start, err := d.Start()
	if err != nil {
		return time.Time{}, err
	}
	return start.AddDate(0, 0, day-1), nil
}

func (d *Document) SetStartDate(date time.Time) {
	d.StartDate = date.Format(DateLayout)
}

func (d *Document) SetWeight(weight float64) error {
	if !validWeight(weight) {
		return fmt.Errorf("%w: %v", ErrInvalidWeight, weight)
	}
	d.Weight = weight
	return nil
}

// CompleteDay records the day as completed (overwriting an earlier submission)
// and moves the current day forward when the completed day is the current one.
// It reports whether the current day advanced.
func (d *Document) CompleteDay(day int, entry Entry, completedOn time.Time) (bool, error) {
	if err := program.ValidateDay(day); err != nil {
		return false, err
	}
	if d.History == nil {
		d.History = map[string]DayRecord{}
	}

	d.History[strconv.Itoa(day)] = DayRecord{
		Completed:   true,
		Date:        completedOn.Format(DateLayout),
		Note:        entry.Note,
		Protein:     entry.Protein,
		Supplements: append([]string(nil), entry.Supplements...),
	}

	if day == d.CurrentDay && day < program.Days {
		d.CurrentDay++
		return true, nil
	}
	return false, nil
}

// Record returns the history entry for the day, if any.
func (d *Document) Record(day int) (DayRecord, bool) {
	rec, ok := d.History[strconv.Itoa(day)]
	return rec, ok
}

func (d *Document) IsCompleted(day int) bool {
	rec, ok := d.Record(day)
	return ok && rec.Completed
}

func (d *Document) CompletedDays() int {
	completed := 0
	for _, rec := range d.History {
		if rec.Completed {
			completed++
		}
	}
	return completed
}

// CompletionRatio is completed days / program length.
func (d *Document) CompletionRatio() float64 {
	return float64(d.CompletedDays()) / float64(program.Days)
}

func (d *Document) Clone() *Document {
	c := *d
	c.History = make(map[string]DayRecord, len(d.History))
	for k, v := range d.History {
		v.Supplements = append([]string(nil), v.Supplements...)
		c.History[k] = v
	}
	return &c
}
