package http

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	apierrors "github.com/han30230/Stock-filtering/internal/errors"
	api "github.com/han30230/Stock-filtering/pkg/contracts/api/v1"
)

// boundParams maps query-string prefixes to request ranges. Each prefix is
// read as <prefix>_min and <prefix>_max.
var boundParams = []struct {
	prefix string
	field  func(*api.ScreenRequest) **api.BoundsRequest
}{
	{"price", func(r *api.ScreenRequest) **api.BoundsRequest { return &r.Price }},
	{"eps", func(r *api.ScreenRequest) **api.BoundsRequest { return &r.EPS }},
	{"per", func(r *api.ScreenRequest) **api.BoundsRequest { return &r.PER }},
	{"peg", func(r *api.ScreenRequest) **api.BoundsRequest { return &r.PEG }},
	{"rev12", func(r *api.ScreenRequest) **api.BoundsRequest { return &r.RevenueGrowthQ1Q2 }},
	{"rev23", func(r *api.ScreenRequest) **api.BoundsRequest { return &r.RevenueGrowthQ2Q3 }},
	{"profit12", func(r *api.ScreenRequest) **api.BoundsRequest { return &r.ProfitGrowthQ1Q2 }},
}

// ParseScreenQuery reads dashboard form values into a ScreenRequest.
// Blank inputs are treated as absent. The result still needs validation.
func ParseScreenQuery(q url.Values) (api.ScreenRequest, error) {
	var req api.ScreenRequest
	var errs []apierrors.ValidationError
	fail := func(field, msg string) {
		errs = append(errs, apierrors.ValidationError{Field: field, Message: msg})
	}

	if v := strings.TrimSpace(q.Get("filters")); v != "" {
		b, err := parseBool(v)
		if err != nil {
			fail("filters", "filters must be on or off")
		} else {
			req.FiltersEnabled = &b
		}
	}
	if v := strings.TrimSpace(q.Get("require_eps")); v != "" {
		b, err := parseBool(v)
		if err != nil {
			fail("require_eps", "require_eps must be on or off")
		} else {
			req.RequirePositiveEPS = &b
		}
	}

	if industries, ok := q["industry"]; ok {
		req.Industries = make([]string, 0, len(industries))
		for _, ind := range industries {
			if ind = strings.TrimSpace(ind); ind != "" {
				req.Industries = append(req.Industries, ind)
			}
		}
	}

	if v, ok, err := optionalFloat(q, "min_price"); err != nil {
		fail("min_price", err.Error())
	} else if ok {
		req.MinPrice = &v
	}

	for _, bp := range boundParams {
		lo, hasLo, errLo := optionalFloat(q, bp.prefix+"_min")
		hi, hasHi, errHi := optionalFloat(q, bp.prefix+"_max")
		if errLo != nil {
			fail(bp.prefix+"_min", errLo.Error())
		}
		if errHi != nil {
			fail(bp.prefix+"_max", errHi.Error())
		}
		if !hasLo && !hasHi {
			continue
		}
		b := &api.BoundsRequest{}
		if hasLo {
			b.Min = &lo
		}
		if hasHi {
			b.Max = &hi
		}
		*bp.field(&req) = b
	}

	if v := strings.TrimSpace(q.Get("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			fail("limit", "limit must be an integer")
		} else {
			req.Limit = n
		}
	}

	if len(errs) > 0 {
		return req, apierrors.NewValidationErrors(errs)
	}
	return req, nil
}

func optionalFloat(q url.Values, key string) (float64, bool, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false, fmt.Errorf("%s must be a number", key)
	}
	return v, true, nil
}

func parseBool(v string) (bool, error) {
	switch strings.ToLower(v) {
	case "on", "1", "true", "yes":
		return true, nil
	case "off", "0", "false", "no":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean %q", v)
	}
}
