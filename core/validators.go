package core

import (
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	// custom validation tags & texts
	PhoneTag   = "phone"
	phoneText  = "Please enter a valid 10-digit phone number."
	phoneRegex = regexp.MustCompile(`^[0-9]{10}$`)

	PincodeTag   = "pincode"
	pincodeText  = "Please enter a valid 6-digit pincode."
	pincodeRegex = regexp.MustCompile(`^[0-9]{6}$`)

	SimpleEmailTag   = "simpleemail"
	simpleEmailText  = "Please enter a valid email address."
	simpleEmailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

	PositiveTag  = "positive"
	positiveText = "Please enter a number greater than zero."

	CountTag  = "count"
	countText = "Please enter a whole number greater than zero."

	requiredTag  = "required"
	requiredText = "This field is required."

	// CustomTags lists the tags whose messages are looked up under "validation.<tag>" by translators.
	CustomTags = []string{PhoneTag, PincodeTag, SimpleEmailTag, PositiveTag, CountTag, requiredTag}
)

// InitValidators instantiates the validator for use.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// register custom validators
	_ = validate.RegisterValidation(PhoneTag, regexValidation(phoneRegex))
	RegisterCustomTranslation(validate, translator, PhoneTag, phoneText)

	_ = validate.RegisterValidation(PincodeTag, regexValidation(pincodeRegex))
	RegisterCustomTranslation(validate, translator, PincodeTag, pincodeText)

	_ = validate.RegisterValidation(SimpleEmailTag, regexValidation(simpleEmailRegex))
	RegisterCustomTranslation(validate, translator, SimpleEmailTag, simpleEmailText)

	_ = validate.RegisterValidation(PositiveTag, positiveValidation)
	RegisterCustomTranslation(validate, translator, PositiveTag, positiveText)

	_ = validate.RegisterValidation(CountTag, countValidation)
	RegisterCustomTranslation(validate, translator, CountTag, countText)

	RegisterCustomTranslation(validate, translator, requiredTag, requiredText, true)
}

// RegisterCustomTranslation registers a custom translation for the specified validation tag.
func RegisterCustomTranslation(validate *validator.Validate, translator ut.Translator, tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// Custom Global Validators

func regexValidation(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(strings.TrimSpace(fl.Field().String()))
	}
}

// positiveValidation accepts finite numbers, or strings holding one, greater than zero.
func positiveValidation(fl validator.FieldLevel) bool {
	field := fl.Field()
	switch field.Kind() {
	case reflect.String:
		n, err := strconv.ParseFloat(strings.TrimSpace(field.String()), 64)
		return err == nil && isFinite(n) && n > 0
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return field.Int() > 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return field.Uint() > 0
	case reflect.Float32, reflect.Float64:
		return isFinite(field.Float()) && field.Float() > 0
	}
	return false
}

// countValidation accepts whole numbers, or strings holding one, greater than zero.
func countValidation(fl validator.FieldLevel) bool {
	field := fl.Field()
	switch field.Kind() {
	case reflect.String:
		n, err := strconv.Atoi(strings.TrimSpace(field.String()))
		return err == nil && n > 0
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return field.Int() > 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return field.Uint() > 0 && field.Uint() <= math.MaxInt32
	}
	return false
}

func isFinite(n float64) bool { return !math.IsInf(n, 0) && !math.IsNaN(n) }
