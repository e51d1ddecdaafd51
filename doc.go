// Package bresult lets HTTP route handlers complete by returning: a value, a deferred value or an error, instead of
// writing the response and calling the continuation by hand.
//
// # Overview
//
// The package contains a small continuation-style server, [Server], and an adapter, [Adapt], that turns
// value-returning handlers into handlers for that server. [Install] puts the adapter in front of every route
// registration of a server, so handlers can be registered as-is:
//
//	srv := bresult.NewServer()
//	if err := bresult.Install(srv, bresult.Options{}); err != nil {
//	    return err
//	}
//
//	srv.Get("/items/{id}", func(ctx context.Context, w bresult.ResponseWriter, r *http.Request, next bresult.Next) (any, error) {
//	    item, err := db.GetItem(ctx, r.PathValue("id"))
//	    if err != nil {
//	        return nil, bresult.NewError(bresult.CodeNotFound, err)
//	    }
//	    return item, nil
//	})
//
// # Handler Signature
//
// The server's native handlers, [NextHandler], receive a continuation, [Next]. A handler calls next(nil) to let the
// route proceed or next(err) to fail it. Value-returning handlers, [Handler], have the same arguments but also
// return a value and an error:
//
//	func(ctx context.Context, w bresult.ResponseWriter, r *http.Request, next bresult.Next) (any, error)
//
// What the adapted handler does depends on what the handler returns:
//
//   - a non-nil value is sent as the response body, encoded as JSON unless it is a string or byte slice
//   - a [Deferred] (for example a [Promise] from [Go]) or an [AsyncFunc] is awaited, its value is sent
//   - an error, a panic or a rejection is passed to next
//   - nil means the handler took care of the response and the continuation itself
//   - any other function is invalid and results in [ErrInvalidReturn]
//
// Next is called once at most. Handlers may call it themselves and still return a value: whatever completes first
// wins. A response that was already sent is never sent again.
//
// # Status Codes
//
// Bodies are sent with status 200. A map body may choose another status with a "statusCode" key, which is removed
// before the body is encoded:
//
//	return map[string]any{"created": true, "statusCode": http.StatusCreated}, nil
//
// Other bodies can implement [StatusCoder] or be wrapped with [WithStatus].
//
// # Error Handling
//
// Errors never reach the response directly. The adapter logs them with [Options.Logger], replaces them with
// [Options.ErrorTransformer] and passes the result to next. The server then resets the buffered response and
// renders the error: errors carrying a status (see [NewError] and [StatusCodeOf]) get that status, all other errors
// become a 500 response naming their cause.
//
// # Versions
//
// [ByVersion] combines handlers for several API versions into one. The version the request declares, see
// [RequestVersion], picks the handler; requests that do not declare one get the highest version.
//
// # Buffered Response Writer
//
// Handlers write to a [ResponseWriter] that holds everything in memory until the route is done. This allows the
// server to replace a half-written response with an error response. [ResponseWriter.Status] and
// [ResponseWriter.Send] send complete responses, [ResponseWriter.HeadersSent] and [ResponseWriter.Finished] tell if
// that already happened.
//
// # Middleware
//
// [Middleware] wraps the complete handler chain of every route registered after [Server.Use] and sees the error the
// chain ended with.
package bresult
