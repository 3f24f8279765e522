package query

type Meta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
	HasPrev    bool  `json:"has_prev"`
	HasNext    bool  `json:"has_next"`
}

type Page[T any] struct {
	Data []T `json:"data"`
	Meta Meta `json:"meta"`
}

func NewPage[T any](b Builder, items []T, total int64) Page[T] {
	if items == nil {
		items = []T{}
	}
	limit := int64(b.Limit())
	return Page[T]{
		Data: items,
		Meta: Meta{
			Page:       b.Page(),
			Limit:      b.Limit(),
			Total:      total,
			TotalPages: (total + limit - 1) / limit,
			HasPrev:    b.Page() > 1,
			HasNext:    int64(b.Skip())+limit < total,
		},
	}
}
