package ports

import (
	"context"

	"pharmacy/internal/core/domain/model/conversation"
)

// IntentClassifier determines the routing intent for an inbound message.
// Implementations call an external text-understanding service; callers must
// treat any error as recoverable and fall back to a general inquiry.
type IntentClassifier interface {
	ClassifyIntent(
		ctx context.Context,
		message string,
		patientCtx conversation.PatientContext,
		historyWindow []conversation.Message,
	) (conversation.IntentResult, error)
}

// EntityExtractor turns free-form text into structured order entities.
// Implementations call an external text-understanding service; on failure
// callers receive a needs-clarification result rather than an error that
// would surface to the end user.
type EntityExtractor interface {
	ExtractEntities(
		ctx context.Context,
		message string,
		patientCtx conversation.PatientContext,
		historyWindow []conversation.Message,
	) (conversation.ExtractionResult, error)
}
