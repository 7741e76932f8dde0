// Package fetch provides an asynchronous request controller with an observable
// lifecycle.
//
// # Overview
//
// A [Controller] issues one HTTP request per [Controller.Trigger] call and
// tracks the outcome as a [State]:
//
//	Idle --trigger--> Loading --(2xx + valid JSON)--> Success
//	                    |------(anything else)------> Failure
//	Success|Failure --trigger--> Loading
//
// Loading is published synchronously, before Trigger returns, so a caller that
// reads [Controller.State] right after triggering always sees it with data and
// error cleared. The request runs on its own goroutine.
//
// # Usage
//
//	ctrl := fetch.New[[]npms.PackageResult](fetch.WithDoer(httpClient))
//	cancel := ctrl.Subscribe(func(s fetch.State[[]npms.PackageResult]) {
//	    fmt.Println(s.Phase)
//	})
//	defer cancel()
//
//	ctrl.Trigger(ctx, url, fetch.Options{Method: http.MethodGet})
//	ctrl.Wait()
//
//	if s := ctrl.State(); s.Failed() {
//	    fmt.Println("error:", s.Message())
//	}
//
// # Failures
//
// Nothing is returned or re-thrown to the caller; every failure becomes a
// Failure state whose Err is an [errors.Error]:
//
//   - NETWORK_ERROR / TIMEOUT: the transport failed. The message is the
//     underlying error's, or [errors.DefaultMessage] if it has none.
//   - HTTP_STATUS: a non-2xx response. The message is the status text, or
//     "Received a <code> http code => <body>" when the server sent none.
//     The cause is a [*StatusError].
//   - DECODE_ERROR: a 2xx response whose body is not valid JSON for T.
//
// # Stale Results
//
// [Controller.StopObserving] suppresses publication from requests that are in
// flight, for callers that have lost interest (a closed view, an exiting
// command). It does not abort the transfer; cancel the request context for
// that.
//
// Independently, each trigger is tagged with a sequence number and only the
// most recent one may publish, so a slow older response can never overwrite a
// newer one.
package fetch
