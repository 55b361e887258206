package program

import (
	"errors"
	"fmt"
)

// Days is the length of the program.
const Days = 30

var ErrInvalidDay = errors.New("invalid program day")

// Code identifies a module in the catalog.
type Code string

const (
	CodeA     Code = "A"
	CodeB     Code = "B"
	CodeC     Code = "C"
	CodeRest  Code = "Rest"
	CodeFinal Code = "Final"
)

func (c Code) String() string {
	return string(c)
}

type Exercise struct {
	Name          string `json:"name"`
	TargetReps    string `json:"targetReps"`
	ReferenceLink string `json:"referenceLink,omitempty"`
	CoachingNote  string `json:"coachingNote,omitempty"`
}

// Module is a named bundle of exercises assigned to a training day.
type Module struct {
	Code      Code       `json:"code"`
	Name      string     `json:"name"`
	Focus     string     `json:"focus"`
	Rest      bool       `json:"rest"`
	Exercises []Exercise `json:"exercises"`
}

var weeklyPattern = [7]Code{CodeA, CodeRest, CodeB, CodeC, CodeA, CodeB, CodeC}

// schedule is the weekly pattern four times, one more A day and the final test.
var schedule = [Days]Code{
	CodeA, CodeRest, CodeB, CodeC, CodeA, CodeB, CodeC,
	CodeA, CodeRest, CodeB, CodeC, CodeA, CodeB, CodeC,
	CodeA, CodeRest, CodeB, CodeC, CodeA, CodeB, CodeC,
	CodeA, CodeRest, CodeB, CodeC, CodeA, CodeB, CodeC,
	CodeA,
	CodeFinal,
}

// ValidateDay returns ErrInvalidDay when day is outside 1..Days.
func ValidateDay(day int) error {
	if day < 1 || day > Days {
		return fmt.Errorf("%w: %d (must be 1-%d)", ErrInvalidDay, day, Days)
	}
	return nil
}

// CodeForDay returns the module code scheduled for the given day.
func CodeForDay(day int) (Code, error) {
	if err := ValidateDay(day); err != nil {
		return "", err
	}
	return schedule[day-1], nil
}

// ModuleForDay returns the module scheduled for the given day.
func ModuleForDay(day int) (Module, error) {
	code, err := CodeForDay(day)
	if err != nil {
		return Module{}, err
	}
	return ModuleByCode(code)
}

func ModuleByCode(code Code) (Module, error) {
	m, ok := catalog[code]
	if !ok {
		return Module{}, fmt.Errorf("unknown module code [%s]", code)
	}
	return cloneModule(m), nil
}

// Modules returns every catalog module, ordered by code.
func Modules() []Module {
	modules := make([]Module, 0, len(moduleOrder))
	for _, code := range moduleOrder {
		modules = append(modules, cloneModule(catalog[code]))
	}
	return modules
}

// Schedule returns a copy of the full day-to-module schedule, index 0 being day 1.
func Schedule() []Code {
	s := make([]Code, Days)
	copy(s, schedule[:])
	return s
}

func WeeklyPattern() []Code {
	p := make([]Code, len(weeklyPattern))
	copy(p, weeklyPattern[:])
	return p
}

// IsFinalDay reports whether day is the last day of the program.
func IsFinalDay(day int) bool {
	return day == Days
}

func cloneModule(m Module) Module {
	m.Exercises = append([]Exercise(nil), m.Exercises...)
	return m
}
