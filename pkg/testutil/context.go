package testutil

import (
	"net/http"

	id "bioclock/pkg/domain"
	"bioclock/pkg/requestcontext"
)

// WithSubjectID authenticates req as subjectID the way the auth middleware
// would. A value that is not a UUID leaves the request anonymous.
func WithSubjectID(req *http.Request, subjectID string) *http.Request {
	parsed, err := id.ParseSubjectID(subjectID)
	if err != nil {
		return req
	}
	return req.WithContext(requestcontext.WithSubjectID(req.Context(), parsed))
}

// WithOperator grants the operator role used for manual attendance.
func WithOperator(req *http.Request) *http.Request {
	return req.WithContext(requestcontext.WithOperator(req.Context(), true))
}
