package validation

import (
	"errors"
	"reflect"
	"strings"
	"unicode"

	"prompt-cms/models"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"gopkg.in/go-playground/validator.v9"
	en_translations "gopkg.in/go-playground/validator.v9/translations/en"
)

// Validator wraps validator.v9 with English messages and the custom rules
// used by the admin forms.
type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

type customRule struct {
	tag     string
	message string
	fn      validator.Func
}

var customRules = []customRule{
	{
		tag:     "tagname",
		message: "{0} must be lowercase letters and numbers separated by single hyphens",
		fn: func(fl validator.FieldLevel) bool {
			return IsSlug(fl.Field().String())
		},
	},
	{
		tag:     "nospecial",
		message: "{0} contains unsupported characters",
		fn: func(fl validator.FieldLevel) bool {
			for _, r := range fl.Field().String() {
				if unicode.IsControl(r) && r != '\n' && r != '\r' && r != '\t' {
					return false
				}
			}
			return true
		},
	},
}

func New() *Validator {
	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")

	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = en_translations.RegisterDefaultTranslations(v, trans)

	for _, rule := range customRules {
		rule := rule
		_ = v.RegisterValidation(rule.tag, rule.fn)
		_ = v.RegisterTranslation(rule.tag, trans, func(t ut.Translator) error {
			return t.Add(rule.tag, rule.message, true)
		}, func(t ut.Translator, fe validator.FieldError) string {
			msg, _ := t.T(rule.tag, fe.Field())
			return msg
		})
	}

	return &Validator{validate: v, translator: trans}
}

// Struct checks every declared rule on s. A failing struct yields a
// models.ErrorValidation keyed by json field name.
func (v *Validator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	return v.Translate(verrs)
}

func (v *Validator) Translate(verrs validator.ValidationErrors) models.ErrorValidation {
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, ok := fields[fe.Field()]; ok {
			continue
		}
		fields[fe.Field()] = fe.Translate(v.translator)
	}
	return models.ErrorValidation{Fields: fields}
}

type categoryName struct {
	Name string `json:"name" validate:"required,min=2,max=50,tagname"`
}

type tagName struct {
	Name string `json:"name" validate:"required,min=2,max=30,tagname"`
}

// CategoryName normalizes raw and checks it against the category rules.
func (v *Validator) CategoryName(raw string) (string, error) {
	name := NormalizeName(raw)
	if err := v.Struct(categoryName{Name: name}); err != nil {
		return "", err
	}
	return name, nil
}

// TagName normalizes raw and checks it against the tag rules.
func (v *Validator) TagName(raw string) (string, error) {
	name := NormalizeName(raw)
	if err := v.Struct(tagName{Name: name}); err != nil {
		return "", err
	}
	return name, nil
}

// Tags parses a comma separated list and validates every entry. All
// invalid entries are reported together.
func (v *Validator) Tags(raw string) ([]string, error) {
	names := ParseTags(raw)
	fields := map[string]string{}
	for _, name := range names {
		if err := v.Struct(tagName{Name: name}); err != nil {
			var verr models.ErrorValidation
			if errors.As(err, &verr) {
				fields["tags."+name] = "Tag \"" + name + "\": " + verr.Fields["name"]
				continue
			}
			return nil, err
		}
	}
	if len(fields) > 0 {
		return nil, models.ErrorValidation{Fields: fields}
	}
	return names, nil
}
