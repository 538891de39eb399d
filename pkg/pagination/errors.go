package pagination

import "fmt"

// LimitError is returned when a pagination run has fetched more records
// than its configured limit allows. It is distinct from data errors so
// callers can raise the limit deliberately.
type LimitError struct {
	Op      string
	Limit   int
	Records int
}

// Error implements the error interface.
func (e *LimitError) Error() string {
	return fmt.Sprintf("pagination(%s): fetched %d records which exceeds the limit %d; consider adding or adjusting a filter to reduce the total number of items fetched",
		e.Op, e.Records, e.Limit)
}

// FetchError wraps a failure raised by the page fetch function, carrying
// the position of the run when it failed.
type FetchError struct {
	Op      string
	Offset  int
	Pages   int
	Records int
	Err     error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	return fmt.Sprintf("pagination(%s): page fetch failed at offset=%d (pages=%d, records fetched so far=%d): %v",
		e.Op, e.Offset, e.Pages, e.Records, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// ExtractError wraps a failure raised by the record extraction function.
type ExtractError struct {
	Op      string
	Offset  int
	Pages   int
	Records int
	Err     error
}

// Error implements the error interface.
func (e *ExtractError) Error() string {
	return fmt.Sprintf("pagination(%s): record extraction failed at offset=%d (pages=%d, records fetched so far=%d): %v",
		e.Op, e.Offset, e.Pages, e.Records, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *ExtractError) Unwrap() error {
	return e.Err
}
