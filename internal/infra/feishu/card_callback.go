package feishu

import (
	"fmt"
	"io"
	"net/http"

	larkevent "github.com/larksuite/oapi-sdk-go/v3/event"
)

const maxCardCallbackBodyBytes = 1 << 20

// CardCallbackHandler returns an HTTP handler for card callbacks delivered
// to a request URL instead of the long connection.
func (c *Client) CardCallbackHandler(verificationToken, encryptKey string) http.Handler {
	d := c.newDispatcher(verificationToken, encryptKey)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		body, err := io.ReadAll(io.LimitReader(r.Body, maxCardCallbackBodyBytes))
		if err != nil {
			http.Error(w, fmt.Sprintf("read body: %v", err), http.StatusBadRequest)
			return
		}

		resp := d.Handle(r.Context(), &larkevent.EventReq{
			Header:     r.Header,
			Body:       body,
			RequestURI: r.RequestURI,
		})
		if resp == nil {
			http.Error(w, "empty response", http.StatusInternalServerError)
			return
		}
		for key, values := range resp.Header {
			for _, value := range values {
				w.Header().Add(key, value)
			}
		}
		w.WriteHeader(resp.StatusCode)
		_, _ = w.Write(resp.Body)
	})
}
