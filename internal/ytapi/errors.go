package ytapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"
)

var ErrNotFound = errors.New("broadcast not found")

// rateLimitReasons are the structured reasons the Data API attaches to a 403
// when the per-user request rate is the problem. These are transient: backing
// off and reissuing the same call is expected to succeed.
var rateLimitReasons = map[string]bool{
	"userRequestsExceedRateLimit": true,
	"rateLimitExceeded":           true,
}

// quotaReasons indicate an exhausted quota or a platform-imposed limit in the
// broader sense. Retrying cannot help within the same run.
var quotaReasons = map[string]bool{
	"quotaExceeded":               true,
	"dailyLimitExceeded":          true,
	"rateLimitExceeded":           true,
	"userRateLimitExceeded":       true,
	"userRequestsExceedRateLimit": true,
	"liveStreamingNotEnabled":     true,
}

// CreationLimitError reports that a remote write kept hitting the rate limit
// until the retry budget ran out. It is distinct from the raw API error so
// that callers can tell "the platform will not accept more writes right now"
// apart from an ordinary failed call.
type CreationLimitError struct {
	Op     string
	Reason string
}

func (e *CreationLimitError) Error() string {
	return fmt.Sprintf("creation limit reached on %s (%s)", e.Op, e.Reason)
}

// ThumbnailError reports that a freshly created broadcast could not get its
// thumbnail replicated and was rolled back. The broadcast named by BroadcastId
// no longer exists by the time this error is returned.
type ThumbnailError struct {
	BroadcastId string
	URL         string
	Err         error
}

func (e *ThumbnailError) Error() string {
	return fmt.Sprintf("failed to copy thumbnail onto broadcast %s: %v", e.BroadcastId, e.Err)
}

func (e *ThumbnailError) Unwrap() error {
	return e.Err
}

// errorReason digs the first structured reason out of a Data API error.
func errorReason(apiErr *googleapi.Error) string {
	for _, item := range apiErr.Errors {
		if item.Reason != "" {
			return item.Reason
		}
	}
	return ""
}

// isRateLimited classifies transient per-user rate limiting: a 403 whose
// structured reason names the request-rate ceiling, and nothing else.
func isRateLimited(err error) (bool, string) {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) || apiErr.Code != http.StatusForbidden {
		return false, ""
	}
	reason := errorReason(apiErr)
	if !rateLimitReasons[reason] {
		return false, ""
	}
	return true, reason
}

// IsQuotaOrLimit classifies quota exhaustion and platform limits: either a
// structured reason from the known set, or a 403/429 whose message talks about
// quotas or limits. Under these conditions the run should stop creating
// instead of retrying.
func IsQuotaOrLimit(err error) (bool, string) {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return false, ""
	}
	if reason := errorReason(apiErr); quotaReasons[reason] {
		return true, reason
	}
	if apiErr.Code == http.StatusForbidden || apiErr.Code == http.StatusTooManyRequests {
		msg := strings.ToLower(apiErr.Message)
		for _, marker := range []string{"quota", "limit", "exceeded"} {
			if strings.Contains(msg, marker) {
				return true, apiErr.Message
			}
		}
	}
	return false, ""
}
