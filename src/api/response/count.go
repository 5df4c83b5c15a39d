package response

// Number of records matched by a bulk operation
type Count struct {
	Count int64 `json:"count"`
}
