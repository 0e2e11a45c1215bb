package utils

import "gorm.io/gorm"

// PageResult carries the page metadata returned next to the data slice.
type PageResult struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
	Total      int64 `json:"total"`
}

// NormalizePageLimit defaults non-positive page/limit instead of erroring.
func NormalizePageLimit(page, limit int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}
	return page, limit
}

// TotalPages is ceil(total/limit).
func TotalPages(total int64, limit int) int {
	return int((total + int64(limit) - 1) / int64(limit))
}

// Paginate runs the given query twice: once for the total count and once for
// the requested page, loading the rows into dest. A page past the end yields
// an empty dest with totalPages computed normally.
func Paginate(query *gorm.DB, page, limit int, dest interface{}) (PageResult, error) {
	page, limit = NormalizePageLimit(page, limit)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return PageResult{}, err
	}

	if err := query.Offset((page - 1) * limit).Limit(limit).Find(dest).Error; err != nil {
		return PageResult{}, err
	}

	return PageResult{
		Page:       page,
		Limit:      limit,
		TotalPages: TotalPages(total, limit),
		Total:      total,
	}, nil
}
