package models

import "strings"

// SortOrder is a gallery listing order.
type SortOrder string

const (
	SortNewest   SortOrder = "newest"
	SortOldest   SortOrder = "oldest"
	SortLargest  SortOrder = "largest"
	SortSmallest SortOrder = "smallest"
	SortName     SortOrder = "name"
)

// SortOrders lists the accepted orders, default first.
var SortOrders = []SortOrder{SortNewest, SortOldest, SortLargest, SortSmallest, SortName}

// ParseSortOrder maps s to a SortOrder. An empty string is SortNewest.
func ParseSortOrder(s string) (SortOrder, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return SortNewest, true
	}
	for _, o := range SortOrders {
		if string(o) == s {
			return o, true
		}
	}
	return "", false
}

// ImageQuery filters and orders a listing. Search matches a
// case-insensitive substring of OriginalName; an empty Search matches all.
type ImageQuery struct {
	Search string
	Sort   SortOrder
}
