package repositories

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	DefaultPage  = 1
	DefaultLimit = 100
	MaxLimit     = 1000
)

var (
	operatorKey = regexp.MustCompile(`^(\w+)\[(gte|gt|lte|lt)\]$`)

	sqlOperators = map[string]string{
		"eq":  "=",
		"gt":  ">",
		"gte": ">=",
		"lt":  "<",
		"lte": "<=",
	}

	reservedParams = map[string]bool{"page": true, "sort": true, "limit": true, "fields": true}
)

type Filter struct {
	Field string
	Op    string
	Value string
}

// Query is the parsed form of the list endpoints' query string:
// ?price[lt]=1000&difficulty=easy&sort=-ratingsAverage,price&fields=name,price&page=2&limit=10
type Query struct {
	Filters []Filter
	Sort    []string
	Fields  []string
	Page    int
	Limit   int
}

// Columns whitelists the JSON field names a query may filter and sort on.
type Columns map[string]string

func ParseQuery(values url.Values) Query {
	q := Query{Page: DefaultPage, Limit: DefaultLimit}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := values.Get(key)
		switch key {
		case "sort":
			q.Sort = splitList(value)
		case "fields":
			q.Fields = splitList(value)
		case "page":
			if n, err := strconv.Atoi(value); err == nil && n > 0 {
				q.Page = n
			}
		case "limit":
			if n, err := strconv.Atoi(value); err == nil && n > 0 {
				q.Limit = min(n, MaxLimit)
			}
		default:
			if m := operatorKey.FindStringSubmatch(key); m != nil {
				q.Filters = append(q.Filters, Filter{Field: m[1], Op: m[2], Value: value})
				continue
			}
			q.Filters = append(q.Filters, Filter{Field: key, Op: "eq", Value: value})
		}
	}
	return q
}

// Where adds an equality filter, replacing any filter already set on the field.
func (q Query) Where(field, value string) Query {
	filters := make([]Filter, 0, len(q.Filters)+1)
	for _, f := range q.Filters {
		if f.Field != field {
			filters = append(filters, f)
		}
	}
	q.Filters = append(filters, Filter{Field: field, Op: "eq", Value: value})
	return q
}

func (q Query) Offset() int {
	page := q.Page
	if page < 1 {
		page = DefaultPage
	}
	return (page - 1) * q.limit()
}

func (q Query) limit() int {
	if q.Limit < 1 {
		return DefaultLimit
	}
	return q.Limit
}

// apply adds filters, ordering and pagination. Fields outside the whitelist are ignored.
func (q Query) apply(db *gorm.DB, cols Columns, defaultSort string) *gorm.DB {
	for _, f := range q.Filters {
		col, ok := cols[f.Field]
		if !ok || reservedParams[f.Field] {
			continue
		}
		op, ok := sqlOperators[f.Op]
		if !ok {
			continue
		}
		db = db.Where(fmt.Sprintf("%s %s ?", col, op), coerce(f.Value))
	}

	sorted := false
	for _, s := range q.Sort {
		desc := strings.HasPrefix(s, "-")
		col, ok := cols[strings.TrimPrefix(s, "-")]
		if !ok {
			continue
		}
		db = db.Order(clause.OrderByColumn{Column: clause.Column{Name: col}, Desc: desc})
		sorted = true
	}
	if !sorted && defaultSort != "" {
		db = db.Order(defaultSort)
	}

	return db.Offset(q.Offset()).Limit(q.limit())
}

func coerce(v string) any {
	if b, err := strconv.ParseBool(v); err == nil && (v == "true" || v == "false") {
		return b
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	return v
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
