package snapshot

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aws/smithy-go"
	"github.com/zgpcy/cloud-cost-collector/internal/provider"
)

// PublishErrorKind classifies a failed publish
type PublishErrorKind string

// Publish failure classes
const (
	PublishErrConnectivity  PublishErrorKind = "connectivity"
	PublishErrAuthorization PublishErrorKind = "authorization"
	PublishErrSerialization PublishErrorKind = "serialization"
	PublishErrValidation    PublishErrorKind = "validation"
)

// PublishError is the only error type Publish returns. Publishes are a
// single attempt, so the error is terminal for the run: it degrades the
// provider's contribution to the job but does not abort the other
// provider's pipeline.
type PublishError struct {
	Provider provider.ProviderType
	Kind     PublishErrorKind
	Err      error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("%s publish failed (%s): %v", e.Provider, e.Kind, e.Err)
}

func (e *PublishError) Unwrap() error {
	return e.Err
}

// AsPublishError extracts a *PublishError from an error chain
func AsPublishError(err error) (*PublishError, bool) {
	var pe *PublishError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// classifyStoreErr separates authorization rejections from plain
// connectivity failures using the S3 API error code when one is present
func classifyStoreErr(err error) PublishErrorKind {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch", "ExpiredToken":
			return PublishErrAuthorization
		}
	}
	// MinIO surfaces some auth failures as plain 403 messages
	if strings.Contains(err.Error(), "403") {
		return PublishErrAuthorization
	}
	return PublishErrConnectivity
}
