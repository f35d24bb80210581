// Package http implements the HTTP handlers of the sales dashboard service.
// Handlers stay thin: they parse the query string into a filter.Request,
// call the service layer and render the result with chi/render.
//
// # Error Handling
//
// Every failure goes through errors.ErrorHandler and is rendered as an
// RFC 7807 problem document:
//
//	{
//	    "type": "/errors/sales/invalid-filter",
//	    "title": "Invalid Filter",
//	    "status": 400,
//	    "detail": "unknown month \"Smarch\"",
//	    "instance": "/api/sales/dashboard"
//	}
//
// # Downloads
//
// Report and export endpoints render the whole document into memory before
// writing headers, so a failed export still produces a problem response
// instead of a truncated file.
package http
