package query

import "context"

// AnswerService is the external retrieval+completion service. It answers a
// question against one remote index and reports which remote files
// grounded the answer.
type AnswerService interface {
	Answer(ctx context.Context, remoteIndexID, question string, history []Turn) (text string, attributedFileIDs []string, err error)
}
