/*
Package loginsdk is a Go client for the kakaologin JSON API, plus the wire
types the server itself encodes.

The client keeps a cookie jar, so the session cookie set by the callback is
sent on every later call, the way a browser would:

	client, err := loginsdk.NewClient("http://localhost:8080")

	start, err := client.AuthURL(ctx)
	// send the user to start.AuthURL; Kakao redirects back with ?code=...

	login, err := client.Callback(ctx, code)
	me, err := client.CurrentUser(ctx)
	_, err = client.Logout(ctx)

Non-2xx responses come back as *APIError:

	var apiErr *loginsdk.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
		// not logged in
	}
*/
package loginsdk
