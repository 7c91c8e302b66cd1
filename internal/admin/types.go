package admin

// Question is a visitor question and its curated answer
type Question struct {
	QuestionID string  `json:"question_id" yaml:"question_id"`
	Question   string  `json:"question" yaml:"question"`
	Answer     *string `json:"answer" yaml:"answer"`
	Processed  bool    `json:"processed" yaml:"processed"`
}

// Answered reports whether the question has a non-empty answer
func (q Question) Answered() bool {
	return q.Answer != nil && *q.Answer != ""
}

// UpdateQuestionPayload edits a question. Nil fields are left out.
type UpdateQuestionPayload struct {
	Question *string `json:"question,omitempty"`
	Answer   *string `json:"answer,omitempty"`
}

// IngestionJob describes a knowledge base ingestion started by a sync
type IngestionJob struct {
	KnowledgeBaseID string `json:"knowledgeBaseId" yaml:"knowledge_base_id"`
	DataSourceID    string `json:"dataSourceId" yaml:"data_source_id"`
	IngestionJobID  string `json:"ingestionJobId" yaml:"ingestion_job_id"`
	Status          string `json:"status" yaml:"status"`
	CreatedAt       string `json:"createdAt" yaml:"created_at"`
	UpdatedAt       string `json:"updatedAt" yaml:"updated_at"`
}

// SyncResponse is returned when a knowledge base sync is requested
type SyncResponse struct {
	Status       string        `json:"status" yaml:"status"`
	IngestionJob *IngestionJob `json:"ingestionJob" yaml:"ingestion_job"`
}

// Visitor is a chat visitor who left contact details
type Visitor struct {
	VisitorID string `json:"visitor_id" yaml:"visitor_id"`
	Name      string `json:"name" yaml:"name"`
	Email     string `json:"email" yaml:"email"`
	Timestamp string `json:"timestamp" yaml:"timestamp"`
}

type addQuestionRequest struct {
	Question string  `json:"question"`
	Answer   *string `json:"answer"`
}

type answerQuestionRequest struct {
	Answer string `json:"answer"`
}
