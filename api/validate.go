package api

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/warp/stipend-engine/allowance"
)

var (
	validate   *validator.Validate
	translator ut.Translator

	// custom validation tags
	notBlankTag      = "notblank"
	activityTag      = "activity_id"
	destinationTag   = "destination_id"
	dateOrWorkDayTag = "date_or_work_day"
)

func init() {
	validate = validator.New()

	// English error messages for validation errors.
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation(notBlankTag, notBlankValidation)
	_ = validate.RegisterValidation(activityTag, activityValidation)
	_ = validate.RegisterValidation(destinationTag, destinationValidation)
	validate.RegisterStructValidation(eligibilityStructValidation, EligibilityRequest{})
	validate.RegisterStructValidation(calculateStructValidation, CalculateRequest{})

	registerCustomTranslations(notBlankTag, activityTag, destinationTag, dateOrWorkDayTag)
}

// registerCustomTranslations registers messages for the custom tags. The
// registration func is a no-op because the default translations are
// already installed.
func registerCustomTranslations(tags ...string) {
	registerFn := func(ut.Translator) error { return nil }
	for _, tag := range tags {
		_ = validate.RegisterTranslation(tag, translator, registerFn, translateCustom)
	}
}

func translateCustom(_ ut.Translator, fe validator.FieldError) string {
	switch fe.Tag() {
	case notBlankTag:
		return "this field cannot be blank"
	case activityTag:
		return "unknown activity"
	case destinationTag:
		return "unknown destination"
	case dateOrWorkDayTag:
		return "one of date or work_day is required"
	default:
		return ""
	}
}

func notBlankValidation(fl validator.FieldLevel) bool {
	if str, ok := fl.Field().Interface().(string); ok {
		return strings.TrimSpace(str) != ""
	}
	return false
}

// activityValidation accepts catalog ids, the legacy OTHER code and stored
// display labels.
func activityValidation(fl validator.FieldLevel) bool {
	raw, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	id := parseActivity(raw)
	if id == allowance.ActivityOther {
		return true
	}
	_, known := allowance.LookupActivity(id)
	return known
}

func destinationValidation(fl validator.FieldLevel) bool {
	raw, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	_, known := allowance.LookupDestination(allowance.ParseDestination(raw))
	return known
}

func eligibilityStructValidation(sl validator.StructLevel) {
	if req, ok := sl.Current().Interface().(EligibilityRequest); ok {
		if req.Date == "" && req.WorkDay == nil {
			sl.ReportError(req.WorkDay, "work_day", "WorkDay", dateOrWorkDayTag, "")
		}
	}
}

func calculateStructValidation(sl validator.StructLevel) {
	if req, ok := sl.Current().Interface().(CalculateRequest); ok {
		if req.Date == "" && req.WorkDay == nil {
			sl.ReportError(req.WorkDay, "work_day", "WorkDay", dateOrWorkDayTag, "")
		}
	}
}

// parseActivity maps a form value to an activity id. Display labels are
// accepted for records written before ids were stored.
func parseActivity(raw string) allowance.ActivityID {
	if id, ok := allowance.ActivityByLabel(strings.TrimSpace(raw)); ok {
		return id
	}
	return allowance.ParseActivity(raw)
}

// fieldErrors flattens validator errors into json-field -> message.
func fieldErrors(err error) (map[string]string, bool) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, false
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		key := strings.TrimPrefix(fe.Namespace(), strings.SplitN(fe.Namespace(), ".", 2)[0]+".")
		out[key] = fe.Translate(translator)
	}
	return out, true
}
