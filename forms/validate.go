package forms

import (
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mbolis/promo-forms/errs"
	"github.com/mbolis/promo-forms/model"
)

var (
	validate = newValidator()

	reNoIdent  = regexp.MustCompile(`\W+`)
	rePhone    = regexp.MustCompile(`^\+?[0-9]{6,15}$`)
	phoneStrip = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "")
)

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// normalizeSpecs trims labels and validates every spec, reporting each
// offending attribute as "fields[i].attr".
func normalizeSpecs(specs []model.FieldSpec) ([]model.FieldSpec, error) {
	if len(specs) == 0 {
		return nil, errs.Validation("a form needs at least one field")
	}

	out := make([]model.FieldSpec, len(specs))
	var bad []string
	for i, spec := range specs {
		spec.Label = strings.TrimSpace(spec.Label)
		out[i] = spec

		if err := validate.Struct(spec); err != nil {
			verrs, ok := err.(validator.ValidationErrors)
			if !ok {
				return nil, err
			}
			for _, fe := range verrs {
				bad = append(bad, fmt.Sprintf("fields[%d].%s", i, strings.SplitN(fe.Field(), "[", 2)[0]))
			}
			continue
		}
		if spec.Type.HasOptions() && len(spec.Options) == 0 {
			bad = append(bad, fmt.Sprintf("fields[%d].options", i))
		}
	}
	if len(bad) > 0 {
		return nil, errs.Validation("invalid field definitions", bad...)
	}
	return out, nil
}

// fieldNames derives a machine name from each label, suffixing repeats
// with "__N".
func fieldNames(specs []model.FieldSpec) []string {
	names := make([]string, len(specs))
	used := make(map[string]bool, len(specs))
	for i, f := range specs {
		base := strings.ToLower(f.Label)
		base = reNoIdent.ReplaceAllLiteralString(base, " ")
		base = strings.Join(strings.Fields(base), "_")
		if base == "" {
			base = "field"
		}

		name := base
		for n := 1; used[name]; n++ {
			name = fmt.Sprintf("%s__%d", base, n)
		}
		used[name] = true
		names[i] = name
	}
	return names
}

// checkValue validates a non-blank answer against its field type.
func checkValue(f model.FormField, v string) bool {
	switch f.Type {
	case model.FieldNumber:
		_, err := strconv.ParseFloat(v, 64)
		return err == nil
	case model.FieldEmail:
		return validate.Var(v, "email") == nil
	case model.FieldPhone:
		return rePhone.MatchString(phoneStrip.Replace(v))
	case model.FieldDate:
		_, err := time.Parse(model.DateLayout, v)
		return err == nil
	case model.FieldCheckbox:
		_, err := strconv.ParseBool(v)
		return err == nil
	case model.FieldChoice:
		return slices.Contains(f.Options, v)
	case model.FieldMultichoice:
		var picked []string
		if json.Unmarshal([]byte(v), &picked) != nil || len(picked) == 0 {
			return false
		}
		for _, p := range picked {
			if !slices.Contains(f.Options, p) {
				return false
			}
		}
		return true
	}
	return true
}
