package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ayoisaiah/worklog/internal/timeutil"
	"github.com/ayoisaiah/worklog/tracker"
)

// maxBodyBytes caps the size of an adjust request body.
const maxBodyBytes = 1 << 16

var (
	plusFields  = []string{"plus", "add", "increase"}
	minusFields = []string{"minus", "sub", "subtract", "decrease"}
)

type adjustKind int

const (
	adjustDescription adjustKind = iota
	adjustPlus
	adjustMinus
)

// adjustment is the decoded body of PUT /trackers/{key}.
type adjustment struct {
	description string
	using       string
	duration    time.Duration
	kind        adjustKind
}

// pick returns the single field of body named by one of names. It fails when
// more than one alias is present.
func pick(body map[string]json.RawMessage, names []string) (string, json.RawMessage, error) {
	var (
		name  string
		value json.RawMessage
	)

	for _, n := range names {
		v, ok := body[n]
		if !ok {
			continue
		}

		if name != "" {
			return "", nil, errBadRequest.Fmt(
				fmt.Sprintf("%q and %q cannot be combined", name, n),
			)
		}

		name, value = n, v
	}

	return name, value, nil
}

func parseAdjustment(body map[string]json.RawMessage) (adjustment, error) {
	if raw, ok := body["description"]; ok {
		if len(body) != 1 {
			return adjustment{}, errBadRequest.Fmt("description cannot be combined with other fields")
		}

		var description *string
		if err := json.Unmarshal(raw, &description); err != nil {
			return adjustment{}, errBadRequest.Fmt("description must be a string or null")
		}

		a := adjustment{kind: adjustDescription}
		if description != nil {
			a.description = *description
		}

		return a, nil
	}

	a := adjustment{kind: adjustPlus}
	otherFields := []string{"using", "from"}

	durField, raw, err := pick(body, plusFields)
	if err != nil {
		return adjustment{}, err
	}

	if durField == "" {
		a.kind = adjustMinus
		otherFields = []string{"using", "to"}

		durField, raw, err = pick(body, minusFields)
		if err != nil {
			return adjustment{}, err
		}
	}

	if durField == "" {
		return adjustment{}, errBadRequest.Fmt(
			"expected one of description, " +
				strings.Join(slices.Concat(plusFields, minusFields), ", "),
		)
	}

	var s string
	if err = json.Unmarshal(raw, &s); err != nil {
		return adjustment{}, errBadRequest.Fmt(durField + " must be a duration string")
	}

	a.duration, err = timeutil.ParseDuration(s)
	if err != nil {
		return adjustment{}, errBadRequest.Fmt(err.Error())
	}

	usingField, usingRaw, err := pick(body, otherFields)
	if err != nil {
		return adjustment{}, err
	}

	if usingField != "" {
		var using *string
		if err = json.Unmarshal(usingRaw, &using); err != nil {
			return adjustment{}, errBadRequest.Fmt(usingField + " must be a tracker key")
		}

		if using != nil {
			a.using = *using
		}
	}

	allowed := 1
	if usingField != "" {
		allowed++
	}

	if len(body) != allowed {
		return adjustment{}, errBadRequest.Fmt("unexpected fields alongside " + durField)
	}

	return a, nil
}

// adjust applies a description change or a duration adjustment. A duration
// added to key with "using" is first taken from the other tracker; a
// duration taken from key with "using" is given to the other tracker.
func (s *Server) adjust(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	var body map[string]json.RawMessage

	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body)
	if err != nil {
		s.writeError(w, r, errBadRequest.Fmt(err.Error()))
		return
	}

	a, err := parseAdjustment(body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var v tracker.View

	switch {
	case a.kind == adjustDescription:
		v, err = s.manager.SetDescription(key, a.description)
	case a.kind == adjustPlus && a.using != "":
		_, v, err = s.manager.Transfer(a.using, key, a.duration)
	case a.kind == adjustPlus:
		v, err = s.manager.AdjustPositive(key, a.duration)
	case a.using != "":
		v, _, err = s.manager.Transfer(key, a.using, a.duration)
	default:
		v, err = s.manager.AdjustNegative(key, a.duration)
	}

	s.respond(w, r)(v, err)
}
