package query

// Turn is one prior question/answer exchange. History is ordered
// most-recent-last and supplied by the caller on every request; nothing is
// cached or persisted between calls.
type Turn struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Source attributes part of an answer to a document. DocumentID is empty
// when the remote file id could not be mapped to a local record.
type Source struct {
	DocumentID   string `json:"document_id,omitempty"`
	Filename     string `json:"filename,omitempty"`
	RemoteFileID string `json:"remote_file_id"`
}

// Answer is a grounded response plus its source attributions.
type Answer struct {
	Text    string   `json:"text"`
	Sources []Source `json:"sources"`
}
