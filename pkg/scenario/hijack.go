package scenario

import (
	"log/slog"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// installMocks routes every request of page through mocks. Matched requests
// are fulfilled with the mock's response; the rest continue to the network.
// The returned router runs on its own goroutine until stopped.
func installMocks(page *rod.Page, mocks *MockSet, log *slog.Logger) (*rod.HijackRouter, error) {
	router := page.HijackRequests()
	err := router.Add("*", "", func(h *rod.Hijack) {
		req := Request{
			Method: h.Request.Method(),
			URL:    h.Request.URL().String(),
			Header: make(map[string]string),
			Body:   h.Request.Body(),
		}
		for k, v := range h.Request.Headers() {
			req.Header[k] = v.Str()
		}

		resp, ok, err := mocks.Serve(req)
		if err != nil {
			log.Error("mock responder failed", "method", req.Method, "url", req.URL, "error", err)
			h.Response.Fail(proto.NetworkErrorReasonFailed)
			return
		}
		if !ok {
			log.Debug("request not mocked", "method", req.Method, "url", req.URL)
			h.ContinueRequest(&proto.FetchContinueRequest{})
			return
		}

		log.Debug("request mocked", "method", req.Method, "url", req.URL, "status", resp.Status)
		h.Response.Payload().ResponseCode = resp.Status
		for k, v := range resp.Header {
			h.Response.SetHeader(k, v)
		}
		h.Response.SetBody(resp.Body)
	})
	if err != nil {
		return nil, err
	}

	go router.Run()
	return router, nil
}
