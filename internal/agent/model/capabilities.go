package model

import "context"

// IntentClassifier maps free text to an intent tag.
type IntentClassifier interface {
	Classify(ctx context.Context, text string) (IntentTag, error)
}

// EntityExtractor returns the entities mentioned in free text. An empty list
// is a valid result.
type EntityExtractor interface {
	Extract(ctx context.Context, text string) (EntityList, error)
}

// RecordSource fetches the structured record of one entity.
type RecordSource interface {
	Fetch(ctx context.Context, name string) (StructuredRecord, error)
}

// SemanticQA answers a fully formed query over the document index. When
// nothing relevant is found the answer carries NoAnswer.
type SemanticQA interface {
	Ask(ctx context.Context, query string) (RetrievalResult, error)
}

// GenericAnswerer produces an open-domain answer with no grounding.
type GenericAnswerer interface {
	Answer(ctx context.Context, text string) (string, error)
}

// Capabilities bundles the collaborators a turn needs.
type Capabilities struct {
	Classifier IntentClassifier
	Extractor  EntityExtractor
	Records    RecordSource
	QA         SemanticQA
	Generic    GenericAnswerer
}
