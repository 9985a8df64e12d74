// Package page provides the paginated result wrapper returned by list endpoints.
package page

import "fmt"

// ValidationError reports an argument that cannot produce a valid value.
type ValidationError struct {
	Field string
	Value any
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s <%v>", e.Field, e.Value)
}

// Result is one page of T together with the counts needed to page through the rest.
type Result[T any] struct {
	CurrentPage int64 `json:"currentPage"`
	PageSize    int64 `json:"pageSize"`
	Total       int64 `json:"total"`
	TotalPage   int64 `json:"totalPage"`
	Data        []T   `json:"data"`
}

// Of builds a Result. It rejects a negative currentPage or total and a
// non-positive pageSize; TotalPage is total divided by pageSize rounded up.
func Of[T any](currentPage, pageSize, total int64, data []T) (*Result[T], error) {
	switch {
	case currentPage < 0:
		return nil, &ValidationError{Field: "currentPage", Value: currentPage}
	case pageSize <= 0:
		return nil, &ValidationError{Field: "pageSize", Value: pageSize}
	case total < 0:
		return nil, &ValidationError{Field: "total", Value: total}
	}
	if data == nil {
		data = []T{}
	}
	totalPage := total / pageSize
	if total%pageSize != 0 {
		totalPage++
	}
	return &Result[T]{
		CurrentPage: currentPage,
		PageSize:    pageSize,
		Total:       total,
		TotalPage:   totalPage,
		Data:        data,
	}, nil
}
