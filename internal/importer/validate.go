package importer

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/alexanderramin/dutyroster/internal/domain"
)

// Quotas above these are accepted but probably a typo.
const (
	weekdayQuotaWarn = 20
	holidayQuotaWarn = 10
)

var (
	validate   *validator.Validate
	translator ut.Translator
)

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := validate.RegisterValidation("datestr", func(fl validator.FieldLevel) bool {
		_, err := domain.ParseDate(fl.Field().String())
		return err == nil
	}); err != nil {
		panic(err)
	}

	english := en.New()
	translator, _ = ut.New(english, english).GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(validate, translator); err != nil {
		panic(err)
	}
	if err := validate.RegisterTranslation("datestr", translator,
		func(t ut.Translator) error {
			return t.Add("datestr", "{0} must be a YYYY-MM-DD date", true)
		},
		func(t ut.Translator, fe validator.FieldError) string {
			msg, _ := t.T("datestr", fe.Field())
			return msg
		},
	); err != nil {
		panic(err)
	}
}

// ValidateRosterFile checks a roster file before conversion and returns
// every problem found.
func ValidateRosterFile(f *RosterFile) []error {
	if f == nil {
		return []error{errors.New("roster file is empty")}
	}
	errs := structErrors(f)
	errs = append(errs, validateHorizon(&f.Horizon)...)
	errs = append(errs, validateDoctors(f.Doctors)...)
	return errs
}

// RosterWarnings lists suspicious but accepted values.
func RosterWarnings(f *RosterFile) []string {
	var warnings []string
	for i, d := range f.Doctors {
		if d.WeekdayQuota > weekdayQuotaWarn {
			warnings = append(warnings, fmt.Sprintf("doctors[%d] %s: weekday_quota %d is unusually high", i, d.Name, d.WeekdayQuota))
		}
		if d.HolidayQuota > holidayQuotaWarn {
			warnings = append(warnings, fmt.Sprintf("doctors[%d] %s: holiday_quota %d is unusually high", i, d.Name, d.HolidayQuota))
		}
	}
	return warnings
}

// ValidateScheduleFile checks the shape of a schedule file; roster-level
// checks happen when the schedule is validated against a roster.
func ValidateScheduleFile(f *ScheduleFile) []error {
	if f == nil {
		return []error{errors.New("schedule file is empty")}
	}
	errs := structErrors(f)
	seen := make(map[string]bool)
	for i, a := range f.Assignments {
		if seen[a.Date] {
			errs = append(errs, fmt.Errorf("assignments[%d]: duplicate date %s", i, a.Date))
		}
		seen[a.Date] = true
	}
	return errs
}

// structErrors runs the tag validations and renders them with yaml paths.
func structErrors(v any) []error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []error{err}
	}
	errs := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		path := fe.Namespace()
		if i := strings.IndexByte(path, '.'); i >= 0 {
			path = path[i+1:]
		}
		errs = append(errs, fmt.Errorf("%s: %s", path, fe.Translate(translator)))
	}
	return errs
}

func validateHorizon(h *HorizonImport) []error {
	var errs []error
	if h.From != "" || h.To != "" {
		if h.From == "" || h.To == "" {
			errs = append(errs, errors.New("horizon: from and to must be given together"))
			return errs
		}
		if len(h.Weekdays) > 0 {
			errs = append(errs, errors.New("horizon: weekdays cannot be combined with a from/to range"))
		}
		from, fromErr := domain.ParseDate(h.From)
		to, toErr := domain.ParseDate(h.To)
		if fromErr == nil && toErr == nil && to.Before(from) {
			errs = append(errs, fmt.Errorf("horizon.to %s is before horizon.from %s", h.To, h.From))
		}
		return errs
	}

	if len(h.Weekdays) == 0 && len(h.Holidays) == 0 {
		errs = append(errs, errors.New("horizon: no dates given"))
	}
	weekdays := make(map[string]bool, len(h.Weekdays))
	for _, d := range h.Weekdays {
		weekdays[d] = true
	}
	for _, d := range h.Holidays {
		if weekdays[d] {
			errs = append(errs, fmt.Errorf("horizon: %s is listed as both weekday and holiday", d))
		}
	}
	return errs
}

func validateDoctors(doctors []DoctorImport) []error {
	var errs []error
	names := make(map[string]int, len(doctors))
	for i, d := range doctors {
		if d.Name != "" {
			if first, ok := names[d.Name]; ok {
				errs = append(errs, fmt.Errorf("doctors[%d]: name %q already used by doctors[%d]", i, d.Name, first))
			} else {
				names[d.Name] = i
			}
		}
		unavailable := make(map[string]bool, len(d.Unavailable))
		for _, date := range d.Unavailable {
			unavailable[date] = true
		}
		for _, date := range d.Preferred {
			if unavailable[date] {
				errs = append(errs, fmt.Errorf("doctors[%d] %s: %s is both unavailable and preferred", i, d.Name, date))
			}
		}
	}
	return errs
}

// FormatErrors joins validation errors into one error.
func FormatErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = "  - " + e.Error()
	}
	return fmt.Errorf("%d validation error(s):\n%s", len(errs), strings.Join(msgs, "\n"))
}
