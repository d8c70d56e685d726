package catalog

import "fmt"

// QueryField names a searchable item field. Exactly one field is active per
// search request.
type QueryField string

const (
	QueryID        QueryField = "id"
	QueryTitle     QueryField = "title"
	QueryISBN      QueryField = "isbn"
	QueryAuthor    QueryField = "author"
	QueryPublisher QueryField = "publisher"
	QueryExtra     QueryField = "extra"
)

// QueryFields lists the searchable fields in display order.
var QueryFields = []QueryField{
	QueryID,
	QueryTitle,
	QueryISBN,
	QueryAuthor,
	QueryPublisher,
	QueryExtra,
}

func ParseQueryField(s string) (QueryField, error) {
	for _, f := range QueryFields {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown search field %q (one of: id, title, isbn, author, publisher, extra)", s)
}
