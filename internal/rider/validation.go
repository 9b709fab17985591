package rider

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("station", func(fl validator.FieldLevel) bool {
		return IsKnownStation(fl.Field().String())
	})
	return v
}

// Validate checks the structural rules of the signup and the date of birth against today.
func (i SignupInput) Validate(today time.Time) error {
	if err := validate.Struct(i); err != nil {
		return describe(err)
	}
	dob, _ := time.Parse(dateLayout, i.DOB)
	if dob.After(dayOf(today)) {
		return errors.New("dob must not be in the future")
	}
	return nil
}

// Validate checks the structural rules of the journey, that it is not dated in the future
// and that it ends after it starts.
func (i JourneyInput) Validate(today time.Time) error {
	if err := validate.Struct(i); err != nil {
		return describe(err)
	}

	var problems []string
	date, _ := time.Parse(dateLayout, i.Date)
	if date.After(dayOf(today)) {
		problems = append(problems, "date must not be in the future")
	}
	start, _ := time.Parse(timeLayout, i.StartTime)
	end, _ := time.Parse(timeLayout, i.EndTime)
	if !end.After(start) {
		problems = append(problems, "end_time must be after start_time")
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// dayOf returns midnight UTC of t's calendar date in t's own location.
func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func describe(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	problems := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		problems = append(problems, fieldProblem(fe))
	}
	return errors.New(strings.Join(problems, "; "))
}

func fieldProblem(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "datetime":
		if fe.Param() == timeLayout {
			return fmt.Sprintf("%s must be HH:MM", fe.Field())
		}
		return fmt.Sprintf("%s must be yyyy-mm-dd", fe.Field())
	case "station":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), strings.Join(scottishStations, ", "))
	case "nefield":
		return "start_station and end_station must differ"
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "lte", "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
