package importer

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// RosterFile is the top-level structure of a roster input file. JSON files
// are read through the same YAML decoder.
type RosterFile struct {
	Horizon     HorizonImport      `yaml:"horizon" validate:"required"`
	Constraints *ConstraintsImport `yaml:"constraints,omitempty"`
	Doctors     []DoctorImport     `yaml:"doctors" validate:"required,min=1,dive"`
}

// HorizonImport lists the dates to staff. Either give weekdays and holidays
// explicitly, or a from/to range in which weekends (plus any listed
// holidays) are holidays.
type HorizonImport struct {
	From     string   `yaml:"from,omitempty" validate:"omitempty,datestr"`
	To       string   `yaml:"to,omitempty" validate:"omitempty,datestr"`
	Weekdays []string `yaml:"weekdays,omitempty" validate:"dive,datestr"`
	Holidays []string `yaml:"holidays,omitempty" validate:"dive,datestr"`
}

// ConstraintsImport overrides engine settings; unset fields keep defaults.
type ConstraintsImport struct {
	MaxConsecutiveDays *int `yaml:"max_consecutive_days,omitempty" validate:"omitempty,min=1"`
	BeamWidth          *int `yaml:"beam_width,omitempty" validate:"omitempty,min=1"`
	CSPTimeoutSecs     *int `yaml:"csp_timeout_secs,omitempty" validate:"omitempty,min=1"`
	NeighborExpansion  *int `yaml:"neighbor_expansion,omitempty" validate:"omitempty,min=1"`
	MaxBacktracks      *int `yaml:"max_backtracks,omitempty" validate:"omitempty,min=1"`
	SwapSearchDepth    *int `yaml:"swap_search_depth,omitempty" validate:"omitempty,min=1"`
	SearchBudgetSecs   *int `yaml:"search_budget_secs,omitempty" validate:"omitempty,min=1"`
}

type DoctorImport struct {
	Name         string   `yaml:"name" validate:"required"`
	Role         string   `yaml:"role" validate:"required,oneof=attending resident"`
	WeekdayQuota int      `yaml:"weekday_quota" validate:"min=0"`
	HolidayQuota int      `yaml:"holiday_quota" validate:"min=0"`
	Unavailable  []string `yaml:"unavailable,omitempty" validate:"dive,datestr"`
	Preferred    []string `yaml:"preferred,omitempty" validate:"dive,datestr"`
}

// ScheduleFile is an externally prepared schedule to check against a roster.
type ScheduleFile struct {
	Assignments []AssignmentImport `yaml:"assignments" validate:"dive"`
}

type AssignmentImport struct {
	Date      string `yaml:"date" validate:"required,datestr"`
	Attending string `yaml:"attending,omitempty"`
	Resident  string `yaml:"resident,omitempty"`
}

// LoadRosterFile reads and parses a roster file.
func LoadRosterFile(path string) (*RosterFile, error) {
	var f RosterFile
	if err := decodeFile(path, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// ParseRosterFile parses roster file contents.
func ParseRosterFile(data []byte) (*RosterFile, error) {
	var f RosterFile
	if err := decode(data, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// LoadScheduleFile reads and parses a schedule file.
func LoadScheduleFile(path string) (*ScheduleFile, error) {
	var f ScheduleFile
	if err := decodeFile(path, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

func decodeFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := decode(data, v); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// decode rejects unknown keys so typos in field names surface early.
func decode(data []byte, v any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("parsing input file: file is empty")
		}
		return fmt.Errorf("parsing input file: %w", err)
	}
	return nil
}
