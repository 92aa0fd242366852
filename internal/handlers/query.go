package handlers

import (
	stderrors "errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"superstore-dashboard/internal/charts"
	"superstore-dashboard/internal/errors"
	"superstore-dashboard/internal/models"
	"superstore-dashboard/internal/services"
	"superstore-dashboard/internal/ui/templates"
)

const maxLimit = 1000

var validate = validator.New()

// filterQuery is the raw filter state of a request, from the query string or
// from datastar signals.
type filterQuery struct {
	Region      string `validate:"max=128"`
	State       string `validate:"max=128"`
	Category    string `validate:"max=128"`
	SubCategory string `validate:"max=128"`
	From        string `validate:"omitempty,datetime=2006-01-02"`
	To          string `validate:"omitempty,datetime=2006-01-02"`
	Compare     string `validate:"omitempty,oneof=true false 1 0"`
	KPI         string `validate:"max=32"`
	Granularity string `validate:"omitempty,oneof=day week month daily weekly monthly"`
	Limit       string `validate:"omitempty,number"`
}

func queryFromValues(v url.Values) filterQuery {
	return filterQuery{
		Region:      strings.TrimSpace(v.Get("region")),
		State:       strings.TrimSpace(v.Get("state")),
		Category:    strings.TrimSpace(v.Get("category")),
		SubCategory: strings.TrimSpace(v.Get("sub_category")),
		From:        strings.TrimSpace(v.Get("from")),
		To:          strings.TrimSpace(v.Get("to")),
		Compare:     strings.ToLower(strings.TrimSpace(v.Get("compare"))),
		KPI:         strings.TrimSpace(v.Get("kpi")),
		Granularity: strings.ToLower(strings.TrimSpace(v.Get("granularity"))),
		Limit:       strings.TrimSpace(v.Get("limit")),
	}
}

func queryFromState(s templates.FilterState) filterQuery {
	return filterQuery{
		Region:      strings.TrimSpace(s.Region),
		State:       strings.TrimSpace(s.State),
		Category:    strings.TrimSpace(s.Category),
		SubCategory: strings.TrimSpace(s.SubCategory),
		From:        strings.TrimSpace(s.From),
		To:          strings.TrimSpace(s.To),
		Compare:     strconv.FormatBool(s.Compare),
		KPI:         strings.TrimSpace(s.KPI),
	}
}

func (q filterQuery) check() error {
	if err := validate.Struct(q); err != nil {
		var verrs validator.ValidationErrors
		if stderrors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return errors.ValidationWrap(err, fmt.Sprintf("invalid %s parameter", strings.ToLower(fe.Field()))).
				WithDetails(fmt.Sprintf("%q failed the %s check", fe.Value(), fe.Tag()))
		}
		return errors.ValidationWrap(err, "invalid query parameters")
	}
	return nil
}

// Filter validates q and converts it.
func (q filterQuery) Filter() (models.Filter, error) {
	if err := q.check(); err != nil {
		return models.Filter{}, err
	}

	f := models.Filter{
		Region:      q.Region,
		State:       q.State,
		Category:    q.Category,
		SubCategory: q.SubCategory,
	}
	var err error
	if f.From, err = parseDate(q.From); err != nil {
		return models.Filter{}, err
	}
	if f.To, err = parseDate(q.To); err != nil {
		return models.Filter{}, err
	}
	if q.Compare != "" {
		f.Compare, _ = strconv.ParseBool(q.Compare)
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.From.After(f.To) {
		return models.Filter{}, errors.ValidationWrap(services.ErrInvalidRange, services.InvalidRangeMessage)
	}
	return f, nil
}

func (q filterQuery) kpi() (models.KPI, error) {
	k, err := models.ParseKPI(q.KPI)
	if err != nil {
		return "", errors.BadRequestWrap(err, err.Error())
	}
	return k, nil
}

func (q filterQuery) granularity() (services.Granularity, error) {
	g, err := services.ParseGranularity(q.Granularity)
	if err != nil {
		return "", errors.BadRequestWrap(err, err.Error())
	}
	return g, nil
}

// limit returns def when no limit was given; 0 means unlimited.
func (q filterQuery) limit(def int) int {
	if q.Limit == "" {
		return def
	}
	n, err := strconv.Atoi(q.Limit)
	if err != nil || n < 0 {
		return def
	}
	return min(n, maxLimit)
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(models.DateLayout, s)
	if err != nil {
		return time.Time{}, errors.ValidationWrap(err, "dates must use the YYYY-MM-DD format")
	}
	return t, nil
}

// appError maps service errors onto API errors.
func appError(err error) *errors.AppError {
	var appErr *errors.AppError
	switch {
	case stderrors.As(err, &appErr):
		return appErr
	case stderrors.Is(err, services.ErrInvalidRange):
		return errors.ValidationWrap(err, services.InvalidRangeMessage)
	case stderrors.Is(err, services.ErrUnknownDimension),
		stderrors.Is(err, services.ErrUnknownGranularity),
		stderrors.Is(err, models.ErrUnknownKPI):
		return errors.BadRequestWrap(err, err.Error())
	case stderrors.Is(err, charts.ErrUnknownChart):
		return errors.NotFound(err.Error())
	case stderrors.Is(err, charts.ErrNoData):
		return errors.NoData(services.NoDataWarning)
	default:
		return errors.InternalWrap(err, "An unexpected error occurred")
	}
}
