package forms

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/mbolis/promo-forms/errs"
)

// NormalizeAnswers turns a decoded JSON answers object, keyed by field id,
// into the text values stored for each field.
func NormalizeAnswers(raw map[string]any) (map[int64]string, error) {
	answers := make(map[int64]string, len(raw))
	var bad []string
	for key, v := range raw {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil || id <= 0 {
			bad = append(bad, key)
			continue
		}

		switch v := v.(type) {
		case nil:
			answers[id] = ""
		case string:
			answers[id] = v
		case float64:
			answers[id] = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			answers[id] = strconv.FormatBool(v)
		case []any:
			b, err := json.Marshal(v)
			if err != nil {
				bad = append(bad, key)
				continue
			}
			answers[id] = string(b)
		default:
			bad = append(bad, key)
		}
	}
	if len(bad) > 0 {
		sort.Strings(bad)
		return nil, errs.Validation("answers must be keyed by field id with scalar or list values", bad...)
	}
	return answers, nil
}

func idList(ids []int64) []string {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = fmt.Sprint(id)
	}
	return out
}
