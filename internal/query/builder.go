package query

import (
	"net/url"
	"regexp"
	"slices"
	"sort"
	"strconv"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
)

var reserved = map[string]struct{}{
	"page": {}, "limit": {}, "fields": {}, "sort": {}, "keyword": {},
}

var operatorKey = regexp.MustCompile(`^([A-Za-z0-9_]+)\[(gt|gte|lt|lte|ne)\]$`)

var naming = schema.NamingStrategy{}

// Options describe what a resource exposes to the builder. Columns are snake_case.
type Options struct {
	Columns       []string
	SearchColumns []string
	DefaultSort   string
	// KeyColumns are kept in every projection; defaults to id.
	KeyColumns    []string
}

// Builder composes filter, search, sort, projection and pagination from query-string values.
// Every step returns a new Builder; nothing touches the database until Apply.
type Builder struct {
	params url.Values
	opts   Options

	conds   []clause.Expression
	order   []clause.OrderByColumn
	selects []string

	paginated bool
	page      int
	limit     int
}

func New(params url.Values, opts Options) Builder {
	if opts.DefaultSort == "" {
		opts.DefaultSort = "created_at"
	}
	if len(opts.KeyColumns) == 0 {
		opts.KeyColumns = []string{"id"}
	}
	return Builder{params: params, opts: opts, page: DefaultPage, limit: DefaultLimit}
}

func (b Builder) clone() Builder {
	b.conds = slices.Clone(b.conds)
	b.order = slices.Clone(b.order)
	b.selects = slices.Clone(b.selects)
	return b
}

// All applies every step in the order the list endpoints use.
func (b Builder) All() Builder {
	return b.Filter().Search().Sort().Fields().Paginate()
}

// Filter turns the non-reserved keys into conditions. `price[gte]=10` becomes price >= 10,
// repeated plain keys become IN. A key naming an unknown column matches nothing.
func (b Builder) Filter() Builder {
	out := b.clone()

	keys := make([]string, 0, len(b.params))
	for k := range b.params {
		if _, skip := reserved[k]; !skip {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	for _, key := range keys {
		values := b.params[key]
		if len(values) == 0 {
			continue
		}
		field, op := key, ""
		if m := operatorKey.FindStringSubmatch(key); m != nil {
			field, op = m[1], m[2]
		}
		col, ok := b.column(field)
		if !ok {
			out.conds = append(out.conds, clause.Expr{SQL: "1 = 0"})
			continue
		}
		out.conds = append(out.conds, comparison(col, op, values))
	}
	return out
}

func comparison(col, op string, values []string) clause.Expression {
	c := clause.Column{Name: col}
	v := values[len(values)-1]
	switch op {
	case "gt":
		return clause.Gt{Column: c, Value: v}
	case "gte":
		return clause.Gte{Column: c, Value: v}
	case "lt":
		return clause.Lt{Column: c, Value: v}
	case "lte":
		return clause.Lte{Column: c, Value: v}
	case "ne":
		return clause.Neq{Column: c, Value: v}
	}
	if len(values) > 1 {
		vals := make([]any, len(values))
		for i := range values {
			vals[i] = values[i]
		}
		return clause.IN{Column: c, Values: vals}
	}
	return clause.Eq{Column: c, Value: v}
}

// Search adds a case-insensitive substring match of keyword over the search columns, ORed.
func (b Builder) Search() Builder {
	kw := strings.TrimSpace(b.params.Get("keyword"))
	if kw == "" || len(b.opts.SearchColumns) == 0 {
		return b
	}
	out := b.clone()
	pattern := "%" + escapeLike(strings.ToLower(kw)) + "%"

	exprs := make([]clause.Expression, 0, len(b.opts.SearchColumns))
	for _, col := range b.opts.SearchColumns {
		exprs = append(exprs, clause.Expr{
			SQL:  `LOWER(?) LIKE ? ESCAPE '\'`,
			Vars: []any{clause.Column{Name: col}, pattern},
		})
	}
	// a single-element OrConditions is joined with OR by gorm's WHERE builder
	if len(exprs) == 1 {
		out.conds = append(out.conds, exprs[0])
	} else {
		out.conds = append(out.conds, clause.Or(exprs...))
	}
	return out
}

// Sort reads `sort=a,-b`; without a usable field it orders by DefaultSort, newest first.
func (b Builder) Sort() Builder {
	out := b.clone()
	out.order = out.order[:0]
	for _, f := range splitList(b.params.Get("sort")) {
		desc := strings.HasPrefix(f, "-")
		col, ok := b.column(strings.TrimPrefix(f, "-"))
		if !ok {
			continue
		}
		out.order = append(out.order, clause.OrderByColumn{Column: clause.Column{Name: col}, Desc: desc})
	}
	if len(out.order) == 0 {
		out.order = append(out.order, clause.OrderByColumn{Column: clause.Column{Name: b.opts.DefaultSort}, Desc: true})
	}
	return out
}

// Fields restricts the projection; the key columns are always selected, ahead of the rest.
func (b Builder) Fields() Builder {
	out := b.clone()
	out.selects = out.selects[:0]
	var picked []string
	for _, f := range splitList(b.params.Get("fields")) {
		col, ok := b.column(f)
		if !ok || slices.Contains(picked, col) {
			continue
		}
		picked = append(picked, col)
	}
	if len(picked) == 0 {
		return out
	}
	out.selects = append(out.selects, b.opts.KeyColumns...)
	for _, col := range picked {
		if !slices.Contains(out.selects, col) {
			out.selects = append(out.selects, col)
		}
	}
	return out
}

// Paginate fixes the window; malformed or non-positive page/limit fall back to 1 and 20.
func (b Builder) Paginate() Builder {
	out := b.clone()
	out.paginated = true
	out.page = positiveOr(b.params.Get("page"), DefaultPage)
	out.limit = positiveOr(b.params.Get("limit"), DefaultLimit)
	return out
}

func (b Builder) Page() int  { return b.page }
func (b Builder) Limit() int { return b.limit }
func (b Builder) Skip() int  { return (b.page - 1) * b.limit }

func (b Builder) Conditions() []clause.Expression  { return slices.Clone(b.conds) }
func (b Builder) OrderBy() []clause.OrderByColumn { return slices.Clone(b.order) }
func (b Builder) Selected() []string              { return slices.Clone(b.selects) }

// Where applies only the conditions, for counting.
func (b Builder) Where(db *gorm.DB) *gorm.DB {
	if len(b.conds) == 0 {
		return db
	}
	return db.Clauses(clause.Where{Exprs: slices.Clone(b.conds)})
}

// Apply composes every configured step onto db; the window goes last.
func (b Builder) Apply(db *gorm.DB) *gorm.DB {
	tx := b.Where(db)
	for _, o := range b.order {
		tx = tx.Order(o)
	}
	if len(b.selects) > 0 {
		tx = tx.Select(b.selects)
	}
	if b.paginated {
		tx = tx.Offset(b.Skip()).Limit(b.limit)
	}
	return tx
}

func (b Builder) column(name string) (string, bool) {
	if name == "" {
		return "", false
	}
	col := naming.ColumnName("", name)
	if slices.Contains(b.opts.Columns, col) {
		return col, true
	}
	return "", false
}

func splitList(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
}

func positiveOr(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return def
	}
	return n
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
