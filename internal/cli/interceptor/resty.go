package interceptor

import (
	"errors"

	"github.com/go-resty/resty/v2"
)

// Attach installs the interceptor as resty request/response/error hooks, the
// global-interceptor flavour used by the mobile shell. The client must not set
// a base URL of its own.
func (i *Interceptor) Attach(c *resty.Client) *resty.Client {
	c.OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
		original := r.URL

		target, err := i.env.DispatchURL(original)
		if err != nil {
			return err
		}
		r.URL = target.String()
		i.Authorize(r.Header)

		i.logger.Debug().
			Str("method", r.Method).
			Str("original_url", original).
			Str("url", r.URL).
			Msg("Processed request URL")
		return nil
	})

	c.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		return i.HandleResponse(resp.Request.Context(), resp.StatusCode(), resp.Request.URL)
	})

	c.OnError(func(r *resty.Request, err error) {
		// Auth failures were already handled by the response hook
		if errors.Is(err, ErrAuthExpired) {
			return
		}
		i.HandleFailure(r.Context(), r.URL, err)
	})

	return c
}
