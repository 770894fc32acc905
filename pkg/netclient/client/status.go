package client

// StatusMessage maps a common HTTP status code to its user-visible
// message. Unknown codes return the empty string; callers decide how to
// phrase those.
func StatusMessage(statusCode int) string {
	switch statusCode {
	case 400:
		return "400 Bad Request: The server could not understand the request."
	case 401:
		return "401 Unauthorized: Authentication is required."
	case 403:
		return "403 Forbidden: You do not have permission to access this resource."
	case 404:
		return "404 Not Found: The requested resource could not be found."
	case 500:
		return "500 Internal Server Error: The server encountered an error."
	case 502:
		return "502 Bad Gateway: The server received an invalid response from the upstream server."
	case 503:
		return "503 Service Unavailable: The server is currently unable to handle the request."
	}
	return ""
}
