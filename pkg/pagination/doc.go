// Package pagination turns a single-page fetch function into a lazy,
// safety-bounded sequence of pages.
//
// The Sypht API paginates several listing endpoints with a zero-based page
// offset and signals end-of-data with an empty page rather than a total
// count. The pager drives such endpoints sequentially: it invokes the fetch
// function with strictly increasing offsets, extracts the records from each
// response, stops cleanly on the first empty page, and aborts with a limit
// error once the running record total passes a configurable bound. The
// bound exists so a misbehaving or unbounded resource cannot be vacuumed
// indefinitely.
//
// Example usage:
//
//	pager := pagination.New("list_widgets",
//		func(ctx context.Context, offset int) ([]Widget, error) {
//			return client.ListWidgets(ctx, offset)
//		},
//		pagination.Identity[Widget],
//		pagination.WithRecordLimit(5000),
//	)
//	for {
//		page, ok, err := pager.Next(ctx)
//		if err != nil {
//			return err
//		}
//		if !ok {
//			break
//		}
//		// use page
//	}
//
// A pager is single-use: consuming it advances internal offset and record
// state that is never reset. Build a fresh pager to iterate again.
package pagination
