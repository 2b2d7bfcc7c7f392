// Package httputil provides the HTTP plumbing used to fetch remote reference
// tables.
//
// # Overview
//
//   - [Client]: GET requests with status classification and observability hooks
//   - [Retry]: Automatic retry with exponential backoff
//
// # Retry
//
// [Retry] only retries errors wrapped in [RetryableError]. [Client] wraps
// network failures and 5xx responses that way, so the two compose:
//
//	var body []byte
//	err := httputil.RetryWithBackoff(ctx, func() (err error) {
//	    body, err = client.Get(ctx, url)
//	    return err
//	})
//
// A 404 maps to [ErrNotFound] and is never retried.
package httputil
