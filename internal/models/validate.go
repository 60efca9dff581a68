package models

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

const (
	TitleMinLength       = 3
	TitleMaxLength       = 100
	DescriptionMaxLength = 500
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	// Patch values validate as the value they write; Null skips omitempty rules.
	v.RegisterCustomTypeFunc(nullableValue[string], Nullable[string]{})
	return v
}

func nullableValue[T any](field reflect.Value) any {
	n := field.Interface().(Nullable[T])
	if n.Null {
		return nil
	}
	return n.Value
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// check runs the struct's validate tags and reports failures as ErrValidation
func check(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return invalid("%v", err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		msgs = append(msgs, fmt.Sprintf("%s fails %s", fe.Field(), rule))
	}
	return invalid("%s", strings.Join(msgs, "; "))
}

// validateTitle counts runes after trimming, which no tag expresses
func validateTitle(title string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(title))
	if n < TitleMinLength || n > TitleMaxLength {
		return invalid("title must be %d-%d characters", TitleMinLength, TitleMaxLength)
	}
	return nil
}

// Validate checks the fields required to insert a task
func (t NewTask) Validate() error {
	if err := validateTitle(t.Title); err != nil {
		return err
	}
	return check(t)
}

func (p TaskPatch) Validate() error {
	if p.Title != nil {
		if err := validateTitle(*p.Title); err != nil {
			return err
		}
	}
	return check(p)
}

// ValidateCompletion checks a completion percentage
func ValidateCompletion(pct int) error {
	if err := validate.Var(pct, "gte=0,lte=100"); err != nil {
		return invalid("completion percentage %d out of range 0-100", pct)
	}
	return nil
}

func (c Category) Validate() error      { return check(c) }
func (p CategoryPatch) Validate() error { return check(p) }
func (t Tag) Validate() error           { return check(t) }
func (p TagPatch) Validate() error      { return check(p) }
func (p Project) Validate() error       { return check(p) }
func (p ProjectPatch) Validate() error  { return check(p) }
func (p SettingsPatch) Validate() error { return check(p) }
