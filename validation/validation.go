package validation

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/go-playground/validator"
	"github.com/meghashyamc/marketsearch/logger"
	"github.com/meghashyamc/marketsearch/services/search"
)

const (
	minQueryLength = 2
	maxQueryLength = 200
	minPage        = 1
	maxPage        = 1000
	minLimit       = 1
	maxLimit       = 100
)

type Validator struct {
	validator                *validator.Validate
	logger                   logger.Logger
	tagValidationDetailsOnce sync.Once
	tagValidationDetailsMap  map[string]tagValidationDetails
}

type tagValidationDetails struct {
	validatorFunc validator.Func
	err           error
}

func New(logger logger.Logger) (*Validator, error) {
	validator := &Validator{validator: validator.New(), logger: logger}
	validator.validator.RegisterTagNameFunc(useJSONFieldNames)
	if err := validator.registerCustomValidatorsForTags(); err != nil {
		return nil, err
	}

	return validator, nil
}

// Validate checks i against its struct tags. Fields are checked in declaration
// order and each field's tags left to right; the first failure is returned.
func (v *Validator) Validate(i any) error {

	if err := v.validator.Struct(i); err != nil {
		v.logger.Warn("validation failed", "err", err.Error())
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) && len(validationErrs) > 0 {

			tagValidationDetails, ok := v.getTagValidationDetails()[validationErrs[0].Tag()]
			if ok {
				return tagValidationDetails.err
			}

			switch validationErrs[0].Tag() {
			case "required":
				return fmt.Errorf("missing required field '%s'", validationErrs[0].Field())

			case "min", "max":
				return fmt.Errorf("value or length of field '%s' is not in the expected range", validationErrs[0].Field())

			}
		}
		return err
	}
	return nil
}

func (v *Validator) getTagValidationDetails() map[string]tagValidationDetails {
	v.tagValidationDetailsOnce.Do(func() {
		v.tagValidationDetailsMap = map[string]tagValidationDetails{
			"query_required": {validatorFunc: v.isQueryPresent, err: errors.New("Query parameter is required")},
			"query_min":      {validatorFunc: v.isQueryLongEnough, err: fmt.Errorf("Query must be at least %d characters long", minQueryLength)},
			"query_max":      {validatorFunc: v.isQueryShortEnough, err: fmt.Errorf("Query must be less than %d characters", maxQueryLength)},
			"search_type": {
				validatorFunc: v.isValidSearchType,
				err:           fmt.Errorf("Invalid type. Valid types are: %s", strings.Join(append([]string{search.TypeAll}, search.Types()...), ", ")),
			},
			"page_int":   {validatorFunc: isInteger, err: errors.New("Page must be a valid integer")},
			"page_min":   {validatorFunc: isAtLeast(minPage), err: fmt.Errorf("Page must be at least %d", minPage)},
			"page_max":   {validatorFunc: isAtMost(maxPage), err: fmt.Errorf("Page must be at most %d", maxPage)},
			"limit_int":  {validatorFunc: isInteger, err: errors.New("Limit must be a valid integer")},
			"limit_min":  {validatorFunc: isAtLeast(minLimit), err: fmt.Errorf("Limit must be at least %d", minLimit)},
			"limit_max":  {validatorFunc: isAtMost(maxLimit), err: fmt.Errorf("Limit must be at most %d", maxLimit)},
			"sort_mode":  {validatorFunc: isValidSortMode, err: errors.New("Invalid sort. Valid values are: relevance, date, title")},
			"valid_path": {validatorFunc: v.isValidPath, err: errors.New("path must be an absolute path to an existing directory")},
		}
	})
	return v.tagValidationDetailsMap
}

func (v *Validator) registerCustomValidatorsForTags() error {

	tagValidationDetailsMap := v.getTagValidationDetails()

	for tag, tagValidationDetails := range tagValidationDetailsMap {
		if err := v.validator.RegisterValidation(tag, tagValidationDetails.validatorFunc); err != nil {
			v.logger.Error("failed to register customer validator function", "err", err.Error())
			return err
		}
	}
	return nil
}

func useJSONFieldNames(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

func queryLength(fl validator.FieldLevel) int {
	return utf8.RuneCountInString(strings.TrimSpace(fl.Field().String()))
}

func (v *Validator) isQueryPresent(fl validator.FieldLevel) bool {
	return queryLength(fl) > 0
}

func (v *Validator) isQueryLongEnough(fl validator.FieldLevel) bool {
	return queryLength(fl) >= minQueryLength
}

func (v *Validator) isQueryShortEnough(fl validator.FieldLevel) bool {
	if queryLength(fl) > maxQueryLength {
		v.logger.Info("query too long", "length", queryLength(fl))
		return false
	}
	return true
}

func (v *Validator) isValidSearchType(fl validator.FieldLevel) bool {
	return search.IsValidType(fl.Field().String())
}

func isInteger(fl validator.FieldLevel) bool {
	_, err := strconv.Atoi(strings.TrimSpace(fl.Field().String()))
	return err == nil
}

// isAtLeast and isAtMost assume an earlier tag already checked the value is an integer.
func isAtLeast(bound int) validator.Func {
	return func(fl validator.FieldLevel) bool {
		n, err := strconv.Atoi(strings.TrimSpace(fl.Field().String()))
		return err == nil && n >= bound
	}
}

func isAtMost(bound int) validator.Func {
	return func(fl validator.FieldLevel) bool {
		n, err := strconv.Atoi(strings.TrimSpace(fl.Field().String()))
		return err == nil && n <= bound
	}
}

func isValidSortMode(fl validator.FieldLevel) bool {
	return search.IsValidSortMode(fl.Field().String())
}

func (v *Validator) isValidPath(fl validator.FieldLevel) bool {
	path := fl.Field().String()
	if !filepath.IsAbs(path) {
		return false
	}

	info, err := os.Stat(path)
	if err != nil {
		v.logger.Info("import path is not accessible", "path", path, "err", err.Error())
		return false
	}
	return info.IsDir()
}
